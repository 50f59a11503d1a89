// Package server exposes the ledger over connect RPC with a JSON codec.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/splitsmart/internal/auth"
	"github.com/mmynk/splitsmart/internal/metrics"
	"github.com/mmynk/splitsmart/internal/middleware"
	"github.com/mmynk/splitsmart/internal/service"
)

// ServiceName is the fully-qualified name of the ledger service.
const ServiceName = "splitsmart.v1.LedgerService"

// Procedure paths, relative to the server's base URL.
const (
	AddUserProcedure      = "/" + ServiceName + "/AddUser"
	ListUsersProcedure    = "/" + ServiceName + "/ListUsers"
	CreateGroupProcedure  = "/" + ServiceName + "/CreateGroup"
	AddMembersProcedure   = "/" + ServiceName + "/AddMembers"
	GetGroupProcedure     = "/" + ServiceName + "/GetGroup"
	ListGroupsProcedure   = "/" + ServiceName + "/ListGroups"
	AddExpenseProcedure   = "/" + ServiceName + "/AddExpense"
	SettleUpProcedure     = "/" + ServiceName + "/SettleUp"
	GetDebtsProcedure     = "/" + ServiceName + "/GetDebts"
	GetBalancesProcedure  = "/" + ServiceName + "/GetBalances"
	ListExpensesProcedure = "/" + ServiceName + "/ListExpenses"
)

// Codec is the JSON codec every handler and client of this service uses.
var Codec connect.Codec = jsonCodec{}

// Options configures the HTTP handler.
type Options struct {
	// Currency prefixes formatted debt amounts.
	Currency string
	// JWT enables bearer token authentication when set.
	JWT *auth.JWTManager
	// RequireAuth rejects unauthenticated calls. Without it a valid token
	// only attributes settlements to its user.
	RequireAuth bool
	// Metrics, when set, counts RPCs and serves /metrics.
	Metrics *metrics.Recorder
}

// New builds the HTTP handler serving every ledger procedure.
func New(svc *service.LedgerService, opts Options) http.Handler {
	h := &ledgerHandler{svc: svc, currency: opts.Currency}

	var interceptors []connect.Interceptor
	if opts.JWT != nil {
		if opts.RequireAuth {
			interceptors = append(interceptors, middleware.RequireAuth(opts.JWT))
		} else {
			interceptors = append(interceptors, middleware.OptionalAuth(opts.JWT))
		}
	}
	interceptors = append(interceptors,
		middleware.LoggingInterceptor(),
		middleware.MetricsInterceptor(opts.Metrics),
	)
	handlerOpts := []connect.HandlerOption{
		connect.WithCodec(Codec),
		connect.WithInterceptors(interceptors...),
	}

	mux := http.NewServeMux()
	handle(mux, AddUserProcedure, h.AddUser, handlerOpts...)
	handle(mux, ListUsersProcedure, h.ListUsers, handlerOpts...)
	handle(mux, CreateGroupProcedure, h.CreateGroup, handlerOpts...)
	handle(mux, AddMembersProcedure, h.AddMembers, handlerOpts...)
	handle(mux, GetGroupProcedure, h.GetGroup, handlerOpts...)
	handle(mux, ListGroupsProcedure, h.ListGroups, handlerOpts...)
	handle(mux, AddExpenseProcedure, h.AddExpense, handlerOpts...)
	handle(mux, SettleUpProcedure, h.SettleUp, handlerOpts...)
	handle(mux, GetDebtsProcedure, h.GetDebts, handlerOpts...)
	handle(mux, GetBalancesProcedure, h.GetBalances, handlerOpts...)
	handle(mux, ListExpensesProcedure, h.ListExpenses, handlerOpts...)

	if opts.Metrics != nil {
		mux.Handle("/metrics", opts.Metrics.Handler())
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return loggingMiddleware(corsMiddleware(mux))
}

func handle[Req, Res any](
	mux *http.ServeMux,
	procedure string,
	fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error),
	opts ...connect.HandlerOption,
) {
	mux.Handle(procedure, connect.NewUnaryHandler(procedure, fn, opts...))
}

// NewClient returns a connect client for one procedure of the service at baseURL.
func NewClient[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string, opts ...connect.ClientOption) *connect.Client[Req, Res] {
	opts = append([]connect.ClientOption{connect.WithCodec(Codec)}, opts...)
	return connect.NewClient[Req, Res](httpClient, baseURL+procedure, opts...)
}

// Run serves handler on addr until ctx is cancelled, then shuts down gracefully.
// Connections are served over HTTP/2 without TLS as well as HTTP/1.1.
func Run(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		slog.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
