package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/ourledger/pkg/api"
)

// AccountServiceName is the fully-qualified name of the AccountService.
const AccountServiceName = packageName + "AccountService"

// Procedure paths of the AccountService.
const (
	AccountServiceListAccountsProcedure  = "/" + AccountServiceName + "/ListAccounts"
	AccountServiceGetAccountProcedure    = "/" + AccountServiceName + "/GetAccount"
	AccountServiceCreateAccountProcedure = "/" + AccountServiceName + "/CreateAccount"
	AccountServiceUpdateAccountProcedure = "/" + AccountServiceName + "/UpdateAccount"
	AccountServiceDeleteAccountProcedure = "/" + AccountServiceName + "/DeleteAccount"
)

// AccountServiceHandler is implemented by the server side of the AccountService.
type AccountServiceHandler interface {
	ListAccounts(context.Context, *connect.Request[api.ListAccountsRequest]) (*connect.Response[api.ListAccountsResponse], error)
	GetAccount(context.Context, *connect.Request[api.GetAccountRequest]) (*connect.Response[api.GetAccountResponse], error)
	CreateAccount(context.Context, *connect.Request[api.CreateAccountRequest]) (*connect.Response[api.CreateAccountResponse], error)
	UpdateAccount(context.Context, *connect.Request[api.UpdateAccountRequest]) (*connect.Response[api.UpdateAccountResponse], error)
	DeleteAccount(context.Context, *connect.Request[api.DeleteAccountRequest]) (*connect.Response[api.DeleteAccountResponse], error)
}

// NewAccountServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewAccountServiceHandler(svc AccountServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return route("AccountService", map[string]http.Handler{
		AccountServiceListAccountsProcedure:  unary(AccountServiceListAccountsProcedure, svc.ListAccounts, opts),
		AccountServiceGetAccountProcedure:    unary(AccountServiceGetAccountProcedure, svc.GetAccount, opts),
		AccountServiceCreateAccountProcedure: unary(AccountServiceCreateAccountProcedure, svc.CreateAccount, opts),
		AccountServiceUpdateAccountProcedure: unary(AccountServiceUpdateAccountProcedure, svc.UpdateAccount, opts),
		AccountServiceDeleteAccountProcedure: unary(AccountServiceDeleteAccountProcedure, svc.DeleteAccount, opts),
	})
}

// AccountServiceClient is a client for the AccountService.
type AccountServiceClient interface {
	ListAccounts(context.Context, *connect.Request[api.ListAccountsRequest]) (*connect.Response[api.ListAccountsResponse], error)
	GetAccount(context.Context, *connect.Request[api.GetAccountRequest]) (*connect.Response[api.GetAccountResponse], error)
	CreateAccount(context.Context, *connect.Request[api.CreateAccountRequest]) (*connect.Response[api.CreateAccountResponse], error)
	UpdateAccount(context.Context, *connect.Request[api.UpdateAccountRequest]) (*connect.Response[api.UpdateAccountResponse], error)
	DeleteAccount(context.Context, *connect.Request[api.DeleteAccountRequest]) (*connect.Response[api.DeleteAccountResponse], error)
}

// NewAccountServiceClient constructs a client for the AccountService. The baseURL is the
// server root, e.g. http://localhost:8080.
func NewAccountServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AccountServiceClient {
	return &accountServiceClient{
		listAccounts:  client[api.ListAccountsRequest, api.ListAccountsResponse](httpClient, baseURL, AccountServiceListAccountsProcedure, opts),
		getAccount:    client[api.GetAccountRequest, api.GetAccountResponse](httpClient, baseURL, AccountServiceGetAccountProcedure, opts),
		createAccount: client[api.CreateAccountRequest, api.CreateAccountResponse](httpClient, baseURL, AccountServiceCreateAccountProcedure, opts),
		updateAccount: client[api.UpdateAccountRequest, api.UpdateAccountResponse](httpClient, baseURL, AccountServiceUpdateAccountProcedure, opts),
		deleteAccount: client[api.DeleteAccountRequest, api.DeleteAccountResponse](httpClient, baseURL, AccountServiceDeleteAccountProcedure, opts),
	}
}

type accountServiceClient struct {
	listAccounts  *connect.Client[api.ListAccountsRequest, api.ListAccountsResponse]
	getAccount    *connect.Client[api.GetAccountRequest, api.GetAccountResponse]
	createAccount *connect.Client[api.CreateAccountRequest, api.CreateAccountResponse]
	updateAccount *connect.Client[api.UpdateAccountRequest, api.UpdateAccountResponse]
	deleteAccount *connect.Client[api.DeleteAccountRequest, api.DeleteAccountResponse]
}

func (c *accountServiceClient) ListAccounts(ctx context.Context, req *connect.Request[api.ListAccountsRequest]) (*connect.Response[api.ListAccountsResponse], error) {
	return c.listAccounts.CallUnary(ctx, req)
}

func (c *accountServiceClient) GetAccount(ctx context.Context, req *connect.Request[api.GetAccountRequest]) (*connect.Response[api.GetAccountResponse], error) {
	return c.getAccount.CallUnary(ctx, req)
}

func (c *accountServiceClient) CreateAccount(ctx context.Context, req *connect.Request[api.CreateAccountRequest]) (*connect.Response[api.CreateAccountResponse], error) {
	return c.createAccount.CallUnary(ctx, req)
}

func (c *accountServiceClient) UpdateAccount(ctx context.Context, req *connect.Request[api.UpdateAccountRequest]) (*connect.Response[api.UpdateAccountResponse], error) {
	return c.updateAccount.CallUnary(ctx, req)
}

func (c *accountServiceClient) DeleteAccount(ctx context.Context, req *connect.Request[api.DeleteAccountRequest]) (*connect.Response[api.DeleteAccountResponse], error) {
	return c.deleteAccount.CallUnary(ctx, req)
}
