package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/ourledger/pkg/api"
)

// EntryServiceName is the fully-qualified name of the EntryService.
const EntryServiceName = packageName + "EntryService"

// Procedure paths of the EntryService.
const (
	EntryServiceListEntriesProcedure       = "/" + EntryServiceName + "/ListEntries"
	EntryServiceGetEntryProcedure          = "/" + EntryServiceName + "/GetEntry"
	EntryServiceCreateEntryProcedure       = "/" + EntryServiceName + "/CreateEntry"
	EntryServiceUpdateEntryProcedure       = "/" + EntryServiceName + "/UpdateEntry"
	EntryServiceDeleteEntryProcedure       = "/" + EntryServiceName + "/DeleteEntry"
	EntryServiceBulkDeleteEntriesProcedure = "/" + EntryServiceName + "/BulkDeleteEntries"
	EntryServiceListCategoriesProcedure    = "/" + EntryServiceName + "/ListCategories"
	EntryServiceCreateCategoryProcedure    = "/" + EntryServiceName + "/CreateCategory"
	EntryServiceUpdateCategoryProcedure    = "/" + EntryServiceName + "/UpdateCategory"
	EntryServiceDeleteCategoryProcedure    = "/" + EntryServiceName + "/DeleteCategory"
	EntryServiceCreateSubcategoryProcedure = "/" + EntryServiceName + "/CreateSubcategory"
	EntryServiceUpdateSubcategoryProcedure = "/" + EntryServiceName + "/UpdateSubcategory"
	EntryServiceDeleteSubcategoryProcedure = "/" + EntryServiceName + "/DeleteSubcategory"
)

// EntryServiceHandler is implemented by the server side of the EntryService.
type EntryServiceHandler interface {
	ListEntries(context.Context, *connect.Request[api.ListEntriesRequest]) (*connect.Response[api.ListEntriesResponse], error)
	GetEntry(context.Context, *connect.Request[api.GetEntryRequest]) (*connect.Response[api.GetEntryResponse], error)
	CreateEntry(context.Context, *connect.Request[api.CreateEntryRequest]) (*connect.Response[api.CreateEntryResponse], error)
	UpdateEntry(context.Context, *connect.Request[api.UpdateEntryRequest]) (*connect.Response[api.UpdateEntryResponse], error)
	DeleteEntry(context.Context, *connect.Request[api.DeleteEntryRequest]) (*connect.Response[api.DeleteEntryResponse], error)
	BulkDeleteEntries(context.Context, *connect.Request[api.BulkDeleteEntriesRequest]) (*connect.Response[api.BulkDeleteEntriesResponse], error)
	ListCategories(context.Context, *connect.Request[api.ListCategoriesRequest]) (*connect.Response[api.ListCategoriesResponse], error)
	CreateCategory(context.Context, *connect.Request[api.CreateCategoryRequest]) (*connect.Response[api.CreateCategoryResponse], error)
	UpdateCategory(context.Context, *connect.Request[api.UpdateCategoryRequest]) (*connect.Response[api.UpdateCategoryResponse], error)
	DeleteCategory(context.Context, *connect.Request[api.DeleteCategoryRequest]) (*connect.Response[api.DeleteCategoryResponse], error)
	CreateSubcategory(context.Context, *connect.Request[api.CreateSubcategoryRequest]) (*connect.Response[api.CreateSubcategoryResponse], error)
	UpdateSubcategory(context.Context, *connect.Request[api.UpdateSubcategoryRequest]) (*connect.Response[api.UpdateSubcategoryResponse], error)
	DeleteSubcategory(context.Context, *connect.Request[api.DeleteSubcategoryRequest]) (*connect.Response[api.DeleteSubcategoryResponse], error)
}

// NewEntryServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewEntryServiceHandler(svc EntryServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return route("EntryService", map[string]http.Handler{
		EntryServiceListEntriesProcedure:       unary(EntryServiceListEntriesProcedure, svc.ListEntries, opts),
		EntryServiceGetEntryProcedure:          unary(EntryServiceGetEntryProcedure, svc.GetEntry, opts),
		EntryServiceCreateEntryProcedure:       unary(EntryServiceCreateEntryProcedure, svc.CreateEntry, opts),
		EntryServiceUpdateEntryProcedure:       unary(EntryServiceUpdateEntryProcedure, svc.UpdateEntry, opts),
		EntryServiceDeleteEntryProcedure:       unary(EntryServiceDeleteEntryProcedure, svc.DeleteEntry, opts),
		EntryServiceBulkDeleteEntriesProcedure: unary(EntryServiceBulkDeleteEntriesProcedure, svc.BulkDeleteEntries, opts),
		EntryServiceListCategoriesProcedure:    unary(EntryServiceListCategoriesProcedure, svc.ListCategories, opts),
		EntryServiceCreateCategoryProcedure:    unary(EntryServiceCreateCategoryProcedure, svc.CreateCategory, opts),
		EntryServiceUpdateCategoryProcedure:    unary(EntryServiceUpdateCategoryProcedure, svc.UpdateCategory, opts),
		EntryServiceDeleteCategoryProcedure:    unary(EntryServiceDeleteCategoryProcedure, svc.DeleteCategory, opts),
		EntryServiceCreateSubcategoryProcedure: unary(EntryServiceCreateSubcategoryProcedure, svc.CreateSubcategory, opts),
		EntryServiceUpdateSubcategoryProcedure: unary(EntryServiceUpdateSubcategoryProcedure, svc.UpdateSubcategory, opts),
		EntryServiceDeleteSubcategoryProcedure: unary(EntryServiceDeleteSubcategoryProcedure, svc.DeleteSubcategory, opts),
	})
}

// EntryServiceClient is a client for the EntryService.
type EntryServiceClient interface {
	ListEntries(context.Context, *connect.Request[api.ListEntriesRequest]) (*connect.Response[api.ListEntriesResponse], error)
	GetEntry(context.Context, *connect.Request[api.GetEntryRequest]) (*connect.Response[api.GetEntryResponse], error)
	CreateEntry(context.Context, *connect.Request[api.CreateEntryRequest]) (*connect.Response[api.CreateEntryResponse], error)
	UpdateEntry(context.Context, *connect.Request[api.UpdateEntryRequest]) (*connect.Response[api.UpdateEntryResponse], error)
	DeleteEntry(context.Context, *connect.Request[api.DeleteEntryRequest]) (*connect.Response[api.DeleteEntryResponse], error)
	BulkDeleteEntries(context.Context, *connect.Request[api.BulkDeleteEntriesRequest]) (*connect.Response[api.BulkDeleteEntriesResponse], error)
	ListCategories(context.Context, *connect.Request[api.ListCategoriesRequest]) (*connect.Response[api.ListCategoriesResponse], error)
	CreateCategory(context.Context, *connect.Request[api.CreateCategoryRequest]) (*connect.Response[api.CreateCategoryResponse], error)
	UpdateCategory(context.Context, *connect.Request[api.UpdateCategoryRequest]) (*connect.Response[api.UpdateCategoryResponse], error)
	DeleteCategory(context.Context, *connect.Request[api.DeleteCategoryRequest]) (*connect.Response[api.DeleteCategoryResponse], error)
	CreateSubcategory(context.Context, *connect.Request[api.CreateSubcategoryRequest]) (*connect.Response[api.CreateSubcategoryResponse], error)
	UpdateSubcategory(context.Context, *connect.Request[api.UpdateSubcategoryRequest]) (*connect.Response[api.UpdateSubcategoryResponse], error)
	DeleteSubcategory(context.Context, *connect.Request[api.DeleteSubcategoryRequest]) (*connect.Response[api.DeleteSubcategoryResponse], error)
}

// NewEntryServiceClient constructs a client for the EntryService. The baseURL is the
// server root, e.g. http://localhost:8080.
func NewEntryServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) EntryServiceClient {
	return &entryServiceClient{
		listEntries:       client[api.ListEntriesRequest, api.ListEntriesResponse](httpClient, baseURL, EntryServiceListEntriesProcedure, opts),
		getEntry:          client[api.GetEntryRequest, api.GetEntryResponse](httpClient, baseURL, EntryServiceGetEntryProcedure, opts),
		createEntry:       client[api.CreateEntryRequest, api.CreateEntryResponse](httpClient, baseURL, EntryServiceCreateEntryProcedure, opts),
		updateEntry:       client[api.UpdateEntryRequest, api.UpdateEntryResponse](httpClient, baseURL, EntryServiceUpdateEntryProcedure, opts),
		deleteEntry:       client[api.DeleteEntryRequest, api.DeleteEntryResponse](httpClient, baseURL, EntryServiceDeleteEntryProcedure, opts),
		bulkDeleteEntries: client[api.BulkDeleteEntriesRequest, api.BulkDeleteEntriesResponse](httpClient, baseURL, EntryServiceBulkDeleteEntriesProcedure, opts),
		listCategories:    client[api.ListCategoriesRequest, api.ListCategoriesResponse](httpClient, baseURL, EntryServiceListCategoriesProcedure, opts),
		createCategory:    client[api.CreateCategoryRequest, api.CreateCategoryResponse](httpClient, baseURL, EntryServiceCreateCategoryProcedure, opts),
		updateCategory:    client[api.UpdateCategoryRequest, api.UpdateCategoryResponse](httpClient, baseURL, EntryServiceUpdateCategoryProcedure, opts),
		deleteCategory:    client[api.DeleteCategoryRequest, api.DeleteCategoryResponse](httpClient, baseURL, EntryServiceDeleteCategoryProcedure, opts),
		createSubcategory: client[api.CreateSubcategoryRequest, api.CreateSubcategoryResponse](httpClient, baseURL, EntryServiceCreateSubcategoryProcedure, opts),
		updateSubcategory: client[api.UpdateSubcategoryRequest, api.UpdateSubcategoryResponse](httpClient, baseURL, EntryServiceUpdateSubcategoryProcedure, opts),
		deleteSubcategory: client[api.DeleteSubcategoryRequest, api.DeleteSubcategoryResponse](httpClient, baseURL, EntryServiceDeleteSubcategoryProcedure, opts),
	}
}

type entryServiceClient struct {
	listEntries       *connect.Client[api.ListEntriesRequest, api.ListEntriesResponse]
	getEntry          *connect.Client[api.GetEntryRequest, api.GetEntryResponse]
	createEntry       *connect.Client[api.CreateEntryRequest, api.CreateEntryResponse]
	updateEntry       *connect.Client[api.UpdateEntryRequest, api.UpdateEntryResponse]
	deleteEntry       *connect.Client[api.DeleteEntryRequest, api.DeleteEntryResponse]
	bulkDeleteEntries *connect.Client[api.BulkDeleteEntriesRequest, api.BulkDeleteEntriesResponse]
	listCategories    *connect.Client[api.ListCategoriesRequest, api.ListCategoriesResponse]
	createCategory    *connect.Client[api.CreateCategoryRequest, api.CreateCategoryResponse]
	updateCategory    *connect.Client[api.UpdateCategoryRequest, api.UpdateCategoryResponse]
	deleteCategory    *connect.Client[api.DeleteCategoryRequest, api.DeleteCategoryResponse]
	createSubcategory *connect.Client[api.CreateSubcategoryRequest, api.CreateSubcategoryResponse]
	updateSubcategory *connect.Client[api.UpdateSubcategoryRequest, api.UpdateSubcategoryResponse]
	deleteSubcategory *connect.Client[api.DeleteSubcategoryRequest, api.DeleteSubcategoryResponse]
}

func (c *entryServiceClient) ListEntries(ctx context.Context, req *connect.Request[api.ListEntriesRequest]) (*connect.Response[api.ListEntriesResponse], error) {
	return c.listEntries.CallUnary(ctx, req)
}

func (c *entryServiceClient) GetEntry(ctx context.Context, req *connect.Request[api.GetEntryRequest]) (*connect.Response[api.GetEntryResponse], error) {
	return c.getEntry.CallUnary(ctx, req)
}

func (c *entryServiceClient) CreateEntry(ctx context.Context, req *connect.Request[api.CreateEntryRequest]) (*connect.Response[api.CreateEntryResponse], error) {
	return c.createEntry.CallUnary(ctx, req)
}

func (c *entryServiceClient) UpdateEntry(ctx context.Context, req *connect.Request[api.UpdateEntryRequest]) (*connect.Response[api.UpdateEntryResponse], error) {
	return c.updateEntry.CallUnary(ctx, req)
}

func (c *entryServiceClient) DeleteEntry(ctx context.Context, req *connect.Request[api.DeleteEntryRequest]) (*connect.Response[api.DeleteEntryResponse], error) {
	return c.deleteEntry.CallUnary(ctx, req)
}

func (c *entryServiceClient) BulkDeleteEntries(ctx context.Context, req *connect.Request[api.BulkDeleteEntriesRequest]) (*connect.Response[api.BulkDeleteEntriesResponse], error) {
	return c.bulkDeleteEntries.CallUnary(ctx, req)
}

func (c *entryServiceClient) ListCategories(ctx context.Context, req *connect.Request[api.ListCategoriesRequest]) (*connect.Response[api.ListCategoriesResponse], error) {
	return c.listCategories.CallUnary(ctx, req)
}

func (c *entryServiceClient) CreateCategory(ctx context.Context, req *connect.Request[api.CreateCategoryRequest]) (*connect.Response[api.CreateCategoryResponse], error) {
	return c.createCategory.CallUnary(ctx, req)
}

func (c *entryServiceClient) UpdateCategory(ctx context.Context, req *connect.Request[api.UpdateCategoryRequest]) (*connect.Response[api.UpdateCategoryResponse], error) {
	return c.updateCategory.CallUnary(ctx, req)
}

func (c *entryServiceClient) DeleteCategory(ctx context.Context, req *connect.Request[api.DeleteCategoryRequest]) (*connect.Response[api.DeleteCategoryResponse], error) {
	return c.deleteCategory.CallUnary(ctx, req)
}

func (c *entryServiceClient) CreateSubcategory(ctx context.Context, req *connect.Request[api.CreateSubcategoryRequest]) (*connect.Response[api.CreateSubcategoryResponse], error) {
	return c.createSubcategory.CallUnary(ctx, req)
}

func (c *entryServiceClient) UpdateSubcategory(ctx context.Context, req *connect.Request[api.UpdateSubcategoryRequest]) (*connect.Response[api.UpdateSubcategoryResponse], error) {
	return c.updateSubcategory.CallUnary(ctx, req)
}

func (c *entryServiceClient) DeleteSubcategory(ctx context.Context, req *connect.Request[api.DeleteSubcategoryRequest]) (*connect.Response[api.DeleteSubcategoryResponse], error) {
	return c.deleteSubcategory.CallUnary(ctx, req)
}
