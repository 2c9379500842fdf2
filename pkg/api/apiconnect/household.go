package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/ourledger/pkg/api"
)

// HouseholdServiceName is the fully-qualified name of the HouseholdService.
const HouseholdServiceName = packageName + "HouseholdService"

// Procedure paths of the HouseholdService.
const (
	HouseholdServiceGetHouseholdProcedure    = "/" + HouseholdServiceName + "/GetHousehold"
	HouseholdServiceCreateHouseholdProcedure = "/" + HouseholdServiceName + "/CreateHousehold"
	HouseholdServiceJoinHouseholdProcedure   = "/" + HouseholdServiceName + "/JoinHousehold"
	HouseholdServiceListMembersProcedure     = "/" + HouseholdServiceName + "/ListMembers"
)

// HouseholdServiceHandler is implemented by the server side of the HouseholdService.
type HouseholdServiceHandler interface {
	GetHousehold(context.Context, *connect.Request[api.GetHouseholdRequest]) (*connect.Response[api.GetHouseholdResponse], error)
	CreateHousehold(context.Context, *connect.Request[api.CreateHouseholdRequest]) (*connect.Response[api.CreateHouseholdResponse], error)
	JoinHousehold(context.Context, *connect.Request[api.JoinHouseholdRequest]) (*connect.Response[api.JoinHouseholdResponse], error)
	ListMembers(context.Context, *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error)
}

// NewHouseholdServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewHouseholdServiceHandler(svc HouseholdServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return route("HouseholdService", map[string]http.Handler{
		HouseholdServiceGetHouseholdProcedure:    unary(HouseholdServiceGetHouseholdProcedure, svc.GetHousehold, opts),
		HouseholdServiceCreateHouseholdProcedure: unary(HouseholdServiceCreateHouseholdProcedure, svc.CreateHousehold, opts),
		HouseholdServiceJoinHouseholdProcedure:   unary(HouseholdServiceJoinHouseholdProcedure, svc.JoinHousehold, opts),
		HouseholdServiceListMembersProcedure:     unary(HouseholdServiceListMembersProcedure, svc.ListMembers, opts),
	})
}

// HouseholdServiceClient is a client for the HouseholdService.
type HouseholdServiceClient interface {
	GetHousehold(context.Context, *connect.Request[api.GetHouseholdRequest]) (*connect.Response[api.GetHouseholdResponse], error)
	CreateHousehold(context.Context, *connect.Request[api.CreateHouseholdRequest]) (*connect.Response[api.CreateHouseholdResponse], error)
	JoinHousehold(context.Context, *connect.Request[api.JoinHouseholdRequest]) (*connect.Response[api.JoinHouseholdResponse], error)
	ListMembers(context.Context, *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error)
}

// NewHouseholdServiceClient constructs a client for the HouseholdService. The baseURL is the
// server root, e.g. http://localhost:8080.
func NewHouseholdServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) HouseholdServiceClient {
	return &householdServiceClient{
		getHousehold:    client[api.GetHouseholdRequest, api.GetHouseholdResponse](httpClient, baseURL, HouseholdServiceGetHouseholdProcedure, opts),
		createHousehold: client[api.CreateHouseholdRequest, api.CreateHouseholdResponse](httpClient, baseURL, HouseholdServiceCreateHouseholdProcedure, opts),
		joinHousehold:   client[api.JoinHouseholdRequest, api.JoinHouseholdResponse](httpClient, baseURL, HouseholdServiceJoinHouseholdProcedure, opts),
		listMembers:     client[api.ListMembersRequest, api.ListMembersResponse](httpClient, baseURL, HouseholdServiceListMembersProcedure, opts),
	}
}

type householdServiceClient struct {
	getHousehold    *connect.Client[api.GetHouseholdRequest, api.GetHouseholdResponse]
	createHousehold *connect.Client[api.CreateHouseholdRequest, api.CreateHouseholdResponse]
	joinHousehold   *connect.Client[api.JoinHouseholdRequest, api.JoinHouseholdResponse]
	listMembers     *connect.Client[api.ListMembersRequest, api.ListMembersResponse]
}

func (c *householdServiceClient) GetHousehold(ctx context.Context, req *connect.Request[api.GetHouseholdRequest]) (*connect.Response[api.GetHouseholdResponse], error) {
	return c.getHousehold.CallUnary(ctx, req)
}

func (c *householdServiceClient) CreateHousehold(ctx context.Context, req *connect.Request[api.CreateHouseholdRequest]) (*connect.Response[api.CreateHouseholdResponse], error) {
	return c.createHousehold.CallUnary(ctx, req)
}

func (c *householdServiceClient) JoinHousehold(ctx context.Context, req *connect.Request[api.JoinHouseholdRequest]) (*connect.Response[api.JoinHouseholdResponse], error) {
	return c.joinHousehold.CallUnary(ctx, req)
}

func (c *householdServiceClient) ListMembers(ctx context.Context, req *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error) {
	return c.listMembers.CallUnary(ctx, req)
}
