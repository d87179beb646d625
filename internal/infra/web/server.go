package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"tapzar-billing/internal/usecase"
)

// Limiter throttles the abuse-prone endpoints. Nil disables throttling.
type Limiter interface {
	AllowInitiate(ctx context.Context, userID string) (bool, error)
	AllowWebhook(ctx context.Context, gatewayPaymentID string) (bool, error)
}

// Server wires the billing HTTP surface.
type Server struct {
	paymentUC usecase.PaymentUseCase
	subUC     usecase.SubscriptionUseCase
	webhookUC usecase.WebhookUseCase
	auth      *AuthManager
	limiter   Limiter
	log       *zerolog.Logger

	srv *http.Server
}

func NewServer(
	paymentUC usecase.PaymentUseCase,
	subUC usecase.SubscriptionUseCase,
	webhookUC usecase.WebhookUseCase,
	auth *AuthManager,
	limiter Limiter,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		paymentUC: paymentUC,
		subUC:     subUC,
		webhookUC: webhookUC,
		auth:      auth,
		limiter:   limiter,
		log:       logger,
	}
}

// Router builds the chi mux. Exposed separately so tests can drive it with
// httptest without binding a port.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// The gateway authenticates with its signature, not a session.
		r.Post("/webhooks/freedompay", s.handleWebhook)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.Middleware)
			r.Post("/payments", s.handleInitiate)
			r.Get("/payments/status", s.handleStatus)
			r.Get("/payments/history", s.handleHistory)
			r.Post("/payments/simulate", s.handleSimulate)
			r.Get("/subscriptions/current", s.handleCurrentSubscription)
		})
	})
	return r
}

func (s *Server) Start(port int) error {
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Int("port", port).Msg("http server listening")
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
