package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/ourledger/pkg/api"
)

// SettlementServiceName is the fully-qualified name of the SettlementService.
const SettlementServiceName = packageName + "SettlementService"

// Procedure paths of the SettlementService.
const (
	SettlementServiceGetSettlementProcedure           = "/" + SettlementServiceName + "/GetSettlement"
	SettlementServiceSaveSettlementProcedure          = "/" + SettlementServiceName + "/SaveSettlement"
	SettlementServiceFinalizeSettlementProcedure      = "/" + SettlementServiceName + "/FinalizeSettlement"
	SettlementServiceReopenSettlementProcedure        = "/" + SettlementServiceName + "/ReopenSettlement"
	SettlementServiceGetCumulativeSettlementProcedure = "/" + SettlementServiceName + "/GetCumulativeSettlement"
	SettlementServiceRecordPaymentProcedure           = "/" + SettlementServiceName + "/RecordPayment"
	SettlementServiceListPaymentsProcedure            = "/" + SettlementServiceName + "/ListPayments"
	SettlementServiceDeletePaymentProcedure           = "/" + SettlementServiceName + "/DeletePayment"
)

// SettlementServiceHandler is implemented by the server side of the SettlementService.
type SettlementServiceHandler interface {
	GetSettlement(context.Context, *connect.Request[api.GetSettlementRequest]) (*connect.Response[api.GetSettlementResponse], error)
	SaveSettlement(context.Context, *connect.Request[api.SaveSettlementRequest]) (*connect.Response[api.SaveSettlementResponse], error)
	FinalizeSettlement(context.Context, *connect.Request[api.FinalizeSettlementRequest]) (*connect.Response[api.FinalizeSettlementResponse], error)
	ReopenSettlement(context.Context, *connect.Request[api.ReopenSettlementRequest]) (*connect.Response[api.ReopenSettlementResponse], error)
	GetCumulativeSettlement(context.Context, *connect.Request[api.GetCumulativeSettlementRequest]) (*connect.Response[api.GetCumulativeSettlementResponse], error)
	RecordPayment(context.Context, *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error)
	ListPayments(context.Context, *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error)
	DeletePayment(context.Context, *connect.Request[api.DeletePaymentRequest]) (*connect.Response[api.DeletePaymentResponse], error)
}

// NewSettlementServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return route("SettlementService", map[string]http.Handler{
		SettlementServiceGetSettlementProcedure:           unary(SettlementServiceGetSettlementProcedure, svc.GetSettlement, opts),
		SettlementServiceSaveSettlementProcedure:          unary(SettlementServiceSaveSettlementProcedure, svc.SaveSettlement, opts),
		SettlementServiceFinalizeSettlementProcedure:      unary(SettlementServiceFinalizeSettlementProcedure, svc.FinalizeSettlement, opts),
		SettlementServiceReopenSettlementProcedure:        unary(SettlementServiceReopenSettlementProcedure, svc.ReopenSettlement, opts),
		SettlementServiceGetCumulativeSettlementProcedure: unary(SettlementServiceGetCumulativeSettlementProcedure, svc.GetCumulativeSettlement, opts),
		SettlementServiceRecordPaymentProcedure:           unary(SettlementServiceRecordPaymentProcedure, svc.RecordPayment, opts),
		SettlementServiceListPaymentsProcedure:            unary(SettlementServiceListPaymentsProcedure, svc.ListPayments, opts),
		SettlementServiceDeletePaymentProcedure:           unary(SettlementServiceDeletePaymentProcedure, svc.DeletePayment, opts),
	})
}

// SettlementServiceClient is a client for the SettlementService.
type SettlementServiceClient interface {
	GetSettlement(context.Context, *connect.Request[api.GetSettlementRequest]) (*connect.Response[api.GetSettlementResponse], error)
	SaveSettlement(context.Context, *connect.Request[api.SaveSettlementRequest]) (*connect.Response[api.SaveSettlementResponse], error)
	FinalizeSettlement(context.Context, *connect.Request[api.FinalizeSettlementRequest]) (*connect.Response[api.FinalizeSettlementResponse], error)
	ReopenSettlement(context.Context, *connect.Request[api.ReopenSettlementRequest]) (*connect.Response[api.ReopenSettlementResponse], error)
	GetCumulativeSettlement(context.Context, *connect.Request[api.GetCumulativeSettlementRequest]) (*connect.Response[api.GetCumulativeSettlementResponse], error)
	RecordPayment(context.Context, *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error)
	ListPayments(context.Context, *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error)
	DeletePayment(context.Context, *connect.Request[api.DeletePaymentRequest]) (*connect.Response[api.DeletePaymentResponse], error)
}

// NewSettlementServiceClient constructs a client for the SettlementService. The baseURL is the
// server root, e.g. http://localhost:8080.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SettlementServiceClient {
	return &settlementServiceClient{
		getSettlement:           client[api.GetSettlementRequest, api.GetSettlementResponse](httpClient, baseURL, SettlementServiceGetSettlementProcedure, opts),
		saveSettlement:          client[api.SaveSettlementRequest, api.SaveSettlementResponse](httpClient, baseURL, SettlementServiceSaveSettlementProcedure, opts),
		finalizeSettlement:      client[api.FinalizeSettlementRequest, api.FinalizeSettlementResponse](httpClient, baseURL, SettlementServiceFinalizeSettlementProcedure, opts),
		reopenSettlement:        client[api.ReopenSettlementRequest, api.ReopenSettlementResponse](httpClient, baseURL, SettlementServiceReopenSettlementProcedure, opts),
		getCumulativeSettlement: client[api.GetCumulativeSettlementRequest, api.GetCumulativeSettlementResponse](httpClient, baseURL, SettlementServiceGetCumulativeSettlementProcedure, opts),
		recordPayment:           client[api.RecordPaymentRequest, api.RecordPaymentResponse](httpClient, baseURL, SettlementServiceRecordPaymentProcedure, opts),
		listPayments:            client[api.ListPaymentsRequest, api.ListPaymentsResponse](httpClient, baseURL, SettlementServiceListPaymentsProcedure, opts),
		deletePayment:           client[api.DeletePaymentRequest, api.DeletePaymentResponse](httpClient, baseURL, SettlementServiceDeletePaymentProcedure, opts),
	}
}

type settlementServiceClient struct {
	getSettlement           *connect.Client[api.GetSettlementRequest, api.GetSettlementResponse]
	saveSettlement          *connect.Client[api.SaveSettlementRequest, api.SaveSettlementResponse]
	finalizeSettlement      *connect.Client[api.FinalizeSettlementRequest, api.FinalizeSettlementResponse]
	reopenSettlement        *connect.Client[api.ReopenSettlementRequest, api.ReopenSettlementResponse]
	getCumulativeSettlement *connect.Client[api.GetCumulativeSettlementRequest, api.GetCumulativeSettlementResponse]
	recordPayment           *connect.Client[api.RecordPaymentRequest, api.RecordPaymentResponse]
	listPayments            *connect.Client[api.ListPaymentsRequest, api.ListPaymentsResponse]
	deletePayment           *connect.Client[api.DeletePaymentRequest, api.DeletePaymentResponse]
}

func (c *settlementServiceClient) GetSettlement(ctx context.Context, req *connect.Request[api.GetSettlementRequest]) (*connect.Response[api.GetSettlementResponse], error) {
	return c.getSettlement.CallUnary(ctx, req)
}

func (c *settlementServiceClient) SaveSettlement(ctx context.Context, req *connect.Request[api.SaveSettlementRequest]) (*connect.Response[api.SaveSettlementResponse], error) {
	return c.saveSettlement.CallUnary(ctx, req)
}

func (c *settlementServiceClient) FinalizeSettlement(ctx context.Context, req *connect.Request[api.FinalizeSettlementRequest]) (*connect.Response[api.FinalizeSettlementResponse], error) {
	return c.finalizeSettlement.CallUnary(ctx, req)
}

func (c *settlementServiceClient) ReopenSettlement(ctx context.Context, req *connect.Request[api.ReopenSettlementRequest]) (*connect.Response[api.ReopenSettlementResponse], error) {
	return c.reopenSettlement.CallUnary(ctx, req)
}

func (c *settlementServiceClient) GetCumulativeSettlement(ctx context.Context, req *connect.Request[api.GetCumulativeSettlementRequest]) (*connect.Response[api.GetCumulativeSettlementResponse], error) {
	return c.getCumulativeSettlement.CallUnary(ctx, req)
}

func (c *settlementServiceClient) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	return c.recordPayment.CallUnary(ctx, req)
}

func (c *settlementServiceClient) ListPayments(ctx context.Context, req *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error) {
	return c.listPayments.CallUnary(ctx, req)
}

func (c *settlementServiceClient) DeletePayment(ctx context.Context, req *connect.Request[api.DeletePaymentRequest]) (*connect.Response[api.DeletePaymentResponse], error) {
	return c.deletePayment.CallUnary(ctx, req)
}
