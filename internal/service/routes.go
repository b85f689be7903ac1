package service

import (
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

// Deps are the collaborators the RPC services need.
type Deps struct {
	Store         storage.Store
	Splits        *ledger.SplitLedger
	Balances      *ledger.BalanceAggregator
	Expenses      *ledger.ExpenseService
	Authenticator auth.Authenticator
	JWT           *auth.JWTManager
	Metrics       *metrics.Metrics // optional
	Logger        *slog.Logger
}

// Mount registers every Connect service on mux. All procedures except
// PublicProcedures require a bearer token.
func Mount(mux *http.ServeMux, d Deps) {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	interceptors := connect.WithInterceptors(
		middleware.MetricsInterceptor(d.Metrics),
		middleware.RequireAuth(d.JWT, PublicProcedures...),
		middleware.LoggingInterceptor(),
	)

	mux.Handle(apiconnect.NewExpenseServiceHandler(NewExpenseService(d.Store, d.Expenses), interceptors))
	mux.Handle(apiconnect.NewSplitServiceHandler(NewSplitService(d.Store, d.Splits, d.Balances), interceptors))
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(d.Store), interceptors))
	mux.Handle(apiconnect.NewUserServiceHandler(NewUserService(d.Store), interceptors))
	mux.Handle(apiconnect.NewAuthServiceHandler(NewAuthService(d.Authenticator, d.JWT, d.Store, logger), interceptors))
}
