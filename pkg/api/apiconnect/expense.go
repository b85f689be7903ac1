package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

// ExpenseServiceName is the fully-qualified name of the ExpenseService.
const ExpenseServiceName = "settleup.v1.ExpenseService"

// Procedure paths of the ExpenseService.
const (
	ExpenseServiceAddExpenseProcedure      = "/settleup.v1.ExpenseService/AddExpense"
	ExpenseServiceAddGroupExpenseProcedure = "/settleup.v1.ExpenseService/AddGroupExpense"
	ExpenseServiceGetExpenseProcedure      = "/settleup.v1.ExpenseService/GetExpense"
	ExpenseServiceListExpensesProcedure    = "/settleup.v1.ExpenseService/ListExpenses"
	ExpenseServiceDeleteExpenseProcedure   = "/settleup.v1.ExpenseService/DeleteExpense"
)

// ExpenseServiceHandler is implemented by the server side of the service.
// ExpenseService records and removes expenses.
type ExpenseServiceHandler interface {
	AddExpense(context.Context, *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error)
	AddGroupExpense(context.Context, *connect.Request[api.AddGroupExpenseRequest]) (*connect.Response[api.AddGroupExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
}

// NewExpenseServiceHandler builds an HTTP handler for svc. It returns the path to
// mount it on.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(ExpenseServiceAddExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceAddExpenseProcedure, svc.AddExpense, opts...))
	mux.Handle(ExpenseServiceAddGroupExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceAddGroupExpenseProcedure, svc.AddGroupExpense, opts...))
	mux.Handle(ExpenseServiceGetExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceGetExpenseProcedure, svc.GetExpense, opts...))
	mux.Handle(ExpenseServiceListExpensesProcedure, connect.NewUnaryHandler(ExpenseServiceListExpensesProcedure, svc.ListExpenses, opts...))
	mux.Handle(ExpenseServiceDeleteExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...))
	return "/" + ExpenseServiceName + "/", mux
}

// ExpenseServiceClient is a client for the ExpenseService.
type ExpenseServiceClient interface {
	AddExpense(context.Context, *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error)
	AddGroupExpense(context.Context, *connect.Request[api.AddGroupExpenseRequest]) (*connect.Response[api.AddGroupExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
}

// NewExpenseServiceClient returns a client for the service at baseURL
// (for example, http://localhost:8080).
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ExpenseServiceClient {
	return &expenseServiceClient{
		addExpense:      newClient[api.AddExpenseRequest, api.AddExpenseResponse](httpClient, baseURL, ExpenseServiceAddExpenseProcedure, opts),
		addGroupExpense: newClient[api.AddGroupExpenseRequest, api.AddGroupExpenseResponse](httpClient, baseURL, ExpenseServiceAddGroupExpenseProcedure, opts),
		getExpense:      newClient[api.GetExpenseRequest, api.GetExpenseResponse](httpClient, baseURL, ExpenseServiceGetExpenseProcedure, opts),
		listExpenses:    newClient[api.ListExpensesRequest, api.ListExpensesResponse](httpClient, baseURL, ExpenseServiceListExpensesProcedure, opts),
		deleteExpense:   newClient[api.DeleteExpenseRequest, api.DeleteExpenseResponse](httpClient, baseURL, ExpenseServiceDeleteExpenseProcedure, opts),
	}
}

type expenseServiceClient struct {
	addExpense      *connect.Client[api.AddExpenseRequest, api.AddExpenseResponse]
	addGroupExpense *connect.Client[api.AddGroupExpenseRequest, api.AddGroupExpenseResponse]
	getExpense      *connect.Client[api.GetExpenseRequest, api.GetExpenseResponse]
	listExpenses    *connect.Client[api.ListExpensesRequest, api.ListExpensesResponse]
	deleteExpense   *connect.Client[api.DeleteExpenseRequest, api.DeleteExpenseResponse]
}

func (c *expenseServiceClient) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	return c.addExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) AddGroupExpense(ctx context.Context, req *connect.Request[api.AddGroupExpenseRequest]) (*connect.Response[api.AddGroupExpenseResponse], error) {
	return c.addGroupExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	return c.getExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *expenseServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}
