package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/ourledger/pkg/api"
)

// SummaryServiceName is the fully-qualified name of the SummaryService.
const SummaryServiceName = packageName + "SummaryService"

// Procedure paths of the SummaryService.
const (
	SummaryServiceGetSummaryProcedure = "/" + SummaryServiceName + "/GetSummary"
)

// SummaryServiceHandler is implemented by the server side of the SummaryService.
type SummaryServiceHandler interface {
	GetSummary(context.Context, *connect.Request[api.GetSummaryRequest]) (*connect.Response[api.GetSummaryResponse], error)
}

// NewSummaryServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewSummaryServiceHandler(svc SummaryServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return route("SummaryService", map[string]http.Handler{
		SummaryServiceGetSummaryProcedure: unary(SummaryServiceGetSummaryProcedure, svc.GetSummary, opts),
	})
}

// SummaryServiceClient is a client for the SummaryService.
type SummaryServiceClient interface {
	GetSummary(context.Context, *connect.Request[api.GetSummaryRequest]) (*connect.Response[api.GetSummaryResponse], error)
}

// NewSummaryServiceClient constructs a client for the SummaryService. The baseURL is the
// server root, e.g. http://localhost:8080.
func NewSummaryServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SummaryServiceClient {
	return &summaryServiceClient{
		getSummary: client[api.GetSummaryRequest, api.GetSummaryResponse](httpClient, baseURL, SummaryServiceGetSummaryProcedure, opts),
	}
}

type summaryServiceClient struct {
	getSummary *connect.Client[api.GetSummaryRequest, api.GetSummaryResponse]
}

func (c *summaryServiceClient) GetSummary(ctx context.Context, req *connect.Request[api.GetSummaryRequest]) (*connect.Response[api.GetSummaryResponse], error) {
	return c.getSummary.CallUnary(ctx, req)
}
