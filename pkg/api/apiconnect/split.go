package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

// SplitServiceName is the fully-qualified name of the SplitService.
const SplitServiceName = "settleup.v1.SplitService"

// Procedure paths of the SplitService.
const (
	SplitServiceGetSplitProcedure            = "/settleup.v1.SplitService/GetSplit"
	SplitServiceMarkSplitPaidProcedure       = "/settleup.v1.SplitService/MarkSplitPaid"
	SplitServiceMarkSplitSettledProcedure    = "/settleup.v1.SplitService/MarkSplitSettled"
	SplitServiceListSplitsByUserProcedure    = "/settleup.v1.SplitService/ListSplitsByUser"
	SplitServiceListSplitsByExpenseProcedure = "/settleup.v1.SplitService/ListSplitsByExpense"
	SplitServiceGetTotalOwedProcedure        = "/settleup.v1.SplitService/GetTotalOwed"
	SplitServiceGetGroupBalanceProcedure     = "/settleup.v1.SplitService/GetGroupBalance"
	SplitServiceListPendingSplitsProcedure   = "/settleup.v1.SplitService/ListPendingSplits"
	SplitServiceGetGroupSummaryProcedure     = "/settleup.v1.SplitService/GetGroupSummary"
)

// SplitServiceHandler is implemented by the server side of the service.
// SplitService moves splits through their lifecycle and answers balance queries.
type SplitServiceHandler interface {
	GetSplit(context.Context, *connect.Request[api.GetSplitRequest]) (*connect.Response[api.GetSplitResponse], error)
	MarkSplitPaid(context.Context, *connect.Request[api.MarkSplitPaidRequest]) (*connect.Response[api.MarkSplitPaidResponse], error)
	MarkSplitSettled(context.Context, *connect.Request[api.MarkSplitSettledRequest]) (*connect.Response[api.MarkSplitSettledResponse], error)
	ListSplitsByUser(context.Context, *connect.Request[api.ListSplitsByUserRequest]) (*connect.Response[api.ListSplitsByUserResponse], error)
	ListSplitsByExpense(context.Context, *connect.Request[api.ListSplitsByExpenseRequest]) (*connect.Response[api.ListSplitsByExpenseResponse], error)
	GetTotalOwed(context.Context, *connect.Request[api.GetTotalOwedRequest]) (*connect.Response[api.GetTotalOwedResponse], error)
	GetGroupBalance(context.Context, *connect.Request[api.GetGroupBalanceRequest]) (*connect.Response[api.GetGroupBalanceResponse], error)
	ListPendingSplits(context.Context, *connect.Request[api.ListPendingSplitsRequest]) (*connect.Response[api.ListPendingSplitsResponse], error)
	GetGroupSummary(context.Context, *connect.Request[api.GetGroupSummaryRequest]) (*connect.Response[api.GetGroupSummaryResponse], error)
}

// NewSplitServiceHandler builds an HTTP handler for svc. It returns the path to
// mount it on.
func NewSplitServiceHandler(svc SplitServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(SplitServiceGetSplitProcedure, connect.NewUnaryHandler(SplitServiceGetSplitProcedure, svc.GetSplit, opts...))
	mux.Handle(SplitServiceMarkSplitPaidProcedure, connect.NewUnaryHandler(SplitServiceMarkSplitPaidProcedure, svc.MarkSplitPaid, opts...))
	mux.Handle(SplitServiceMarkSplitSettledProcedure, connect.NewUnaryHandler(SplitServiceMarkSplitSettledProcedure, svc.MarkSplitSettled, opts...))
	mux.Handle(SplitServiceListSplitsByUserProcedure, connect.NewUnaryHandler(SplitServiceListSplitsByUserProcedure, svc.ListSplitsByUser, opts...))
	mux.Handle(SplitServiceListSplitsByExpenseProcedure, connect.NewUnaryHandler(SplitServiceListSplitsByExpenseProcedure, svc.ListSplitsByExpense, opts...))
	mux.Handle(SplitServiceGetTotalOwedProcedure, connect.NewUnaryHandler(SplitServiceGetTotalOwedProcedure, svc.GetTotalOwed, opts...))
	mux.Handle(SplitServiceGetGroupBalanceProcedure, connect.NewUnaryHandler(SplitServiceGetGroupBalanceProcedure, svc.GetGroupBalance, opts...))
	mux.Handle(SplitServiceListPendingSplitsProcedure, connect.NewUnaryHandler(SplitServiceListPendingSplitsProcedure, svc.ListPendingSplits, opts...))
	mux.Handle(SplitServiceGetGroupSummaryProcedure, connect.NewUnaryHandler(SplitServiceGetGroupSummaryProcedure, svc.GetGroupSummary, opts...))
	return "/" + SplitServiceName + "/", mux
}

// SplitServiceClient is a client for the SplitService.
type SplitServiceClient interface {
	GetSplit(context.Context, *connect.Request[api.GetSplitRequest]) (*connect.Response[api.GetSplitResponse], error)
	MarkSplitPaid(context.Context, *connect.Request[api.MarkSplitPaidRequest]) (*connect.Response[api.MarkSplitPaidResponse], error)
	MarkSplitSettled(context.Context, *connect.Request[api.MarkSplitSettledRequest]) (*connect.Response[api.MarkSplitSettledResponse], error)
	ListSplitsByUser(context.Context, *connect.Request[api.ListSplitsByUserRequest]) (*connect.Response[api.ListSplitsByUserResponse], error)
	ListSplitsByExpense(context.Context, *connect.Request[api.ListSplitsByExpenseRequest]) (*connect.Response[api.ListSplitsByExpenseResponse], error)
	GetTotalOwed(context.Context, *connect.Request[api.GetTotalOwedRequest]) (*connect.Response[api.GetTotalOwedResponse], error)
	GetGroupBalance(context.Context, *connect.Request[api.GetGroupBalanceRequest]) (*connect.Response[api.GetGroupBalanceResponse], error)
	ListPendingSplits(context.Context, *connect.Request[api.ListPendingSplitsRequest]) (*connect.Response[api.ListPendingSplitsResponse], error)
	GetGroupSummary(context.Context, *connect.Request[api.GetGroupSummaryRequest]) (*connect.Response[api.GetGroupSummaryResponse], error)
}

// NewSplitServiceClient returns a client for the service at baseURL
// (for example, http://localhost:8080).
func NewSplitServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SplitServiceClient {
	return &splitServiceClient{
		getSplit:            newClient[api.GetSplitRequest, api.GetSplitResponse](httpClient, baseURL, SplitServiceGetSplitProcedure, opts),
		markSplitPaid:       newClient[api.MarkSplitPaidRequest, api.MarkSplitPaidResponse](httpClient, baseURL, SplitServiceMarkSplitPaidProcedure, opts),
		markSplitSettled:    newClient[api.MarkSplitSettledRequest, api.MarkSplitSettledResponse](httpClient, baseURL, SplitServiceMarkSplitSettledProcedure, opts),
		listSplitsByUser:    newClient[api.ListSplitsByUserRequest, api.ListSplitsByUserResponse](httpClient, baseURL, SplitServiceListSplitsByUserProcedure, opts),
		listSplitsByExpense: newClient[api.ListSplitsByExpenseRequest, api.ListSplitsByExpenseResponse](httpClient, baseURL, SplitServiceListSplitsByExpenseProcedure, opts),
		getTotalOwed:        newClient[api.GetTotalOwedRequest, api.GetTotalOwedResponse](httpClient, baseURL, SplitServiceGetTotalOwedProcedure, opts),
		getGroupBalance:     newClient[api.GetGroupBalanceRequest, api.GetGroupBalanceResponse](httpClient, baseURL, SplitServiceGetGroupBalanceProcedure, opts),
		listPendingSplits:   newClient[api.ListPendingSplitsRequest, api.ListPendingSplitsResponse](httpClient, baseURL, SplitServiceListPendingSplitsProcedure, opts),
		getGroupSummary:     newClient[api.GetGroupSummaryRequest, api.GetGroupSummaryResponse](httpClient, baseURL, SplitServiceGetGroupSummaryProcedure, opts),
	}
}

type splitServiceClient struct {
	getSplit            *connect.Client[api.GetSplitRequest, api.GetSplitResponse]
	markSplitPaid       *connect.Client[api.MarkSplitPaidRequest, api.MarkSplitPaidResponse]
	markSplitSettled    *connect.Client[api.MarkSplitSettledRequest, api.MarkSplitSettledResponse]
	listSplitsByUser    *connect.Client[api.ListSplitsByUserRequest, api.ListSplitsByUserResponse]
	listSplitsByExpense *connect.Client[api.ListSplitsByExpenseRequest, api.ListSplitsByExpenseResponse]
	getTotalOwed        *connect.Client[api.GetTotalOwedRequest, api.GetTotalOwedResponse]
	getGroupBalance     *connect.Client[api.GetGroupBalanceRequest, api.GetGroupBalanceResponse]
	listPendingSplits   *connect.Client[api.ListPendingSplitsRequest, api.ListPendingSplitsResponse]
	getGroupSummary     *connect.Client[api.GetGroupSummaryRequest, api.GetGroupSummaryResponse]
}

func (c *splitServiceClient) GetSplit(ctx context.Context, req *connect.Request[api.GetSplitRequest]) (*connect.Response[api.GetSplitResponse], error) {
	return c.getSplit.CallUnary(ctx, req)
}

func (c *splitServiceClient) MarkSplitPaid(ctx context.Context, req *connect.Request[api.MarkSplitPaidRequest]) (*connect.Response[api.MarkSplitPaidResponse], error) {
	return c.markSplitPaid.CallUnary(ctx, req)
}

func (c *splitServiceClient) MarkSplitSettled(ctx context.Context, req *connect.Request[api.MarkSplitSettledRequest]) (*connect.Response[api.MarkSplitSettledResponse], error) {
	return c.markSplitSettled.CallUnary(ctx, req)
}

func (c *splitServiceClient) ListSplitsByUser(ctx context.Context, req *connect.Request[api.ListSplitsByUserRequest]) (*connect.Response[api.ListSplitsByUserResponse], error) {
	return c.listSplitsByUser.CallUnary(ctx, req)
}

func (c *splitServiceClient) ListSplitsByExpense(ctx context.Context, req *connect.Request[api.ListSplitsByExpenseRequest]) (*connect.Response[api.ListSplitsByExpenseResponse], error) {
	return c.listSplitsByExpense.CallUnary(ctx, req)
}

func (c *splitServiceClient) GetTotalOwed(ctx context.Context, req *connect.Request[api.GetTotalOwedRequest]) (*connect.Response[api.GetTotalOwedResponse], error) {
	return c.getTotalOwed.CallUnary(ctx, req)
}

func (c *splitServiceClient) GetGroupBalance(ctx context.Context, req *connect.Request[api.GetGroupBalanceRequest]) (*connect.Response[api.GetGroupBalanceResponse], error) {
	return c.getGroupBalance.CallUnary(ctx, req)
}

func (c *splitServiceClient) ListPendingSplits(ctx context.Context, req *connect.Request[api.ListPendingSplitsRequest]) (*connect.Response[api.ListPendingSplitsResponse], error) {
	return c.listPendingSplits.CallUnary(ctx, req)
}

func (c *splitServiceClient) GetGroupSummary(ctx context.Context, req *connect.Request[api.GetGroupSummaryRequest]) (*connect.Response[api.GetGroupSummaryResponse], error) {
	return c.getGroupSummary.CallUnary(ctx, req)
}
