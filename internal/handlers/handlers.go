package handlers

//go:generate mockgen -source=handlers.go -destination=mock_handlers.go -package=handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/lifestylelure/payouts/docs"
	commissionhandlers "github.com/lifestylelure/payouts/internal/handlers/commissions"
	webhookhandlers "github.com/lifestylelure/payouts/internal/handlers/webhook"
	"github.com/lifestylelure/payouts/internal/metrics"
	"github.com/lifestylelure/payouts/internal/service"
	"github.com/lifestylelure/payouts/pkg/auth"
)

type WebhookHandler interface {
	Handle(w http.ResponseWriter, r *http.Request)
}

type CommissionHandler interface {
	GetBalance(w http.ResponseWriter, r *http.Request)
	GetCommissions(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	WebhookHandler    WebhookHandler
	CommissionHandler CommissionHandler
	Tokens            auth.TokenValidator
}

func New(s *service.Services, verifier webhookhandlers.Verifier, tokens auth.TokenValidator) *Handlers {
	return &Handlers{
		WebhookHandler:    webhookhandlers.New(verifier, s.PayoutService),
		CommissionHandler: commissionhandlers.New(s.BalanceService),
		Tokens:            tokens,
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		metrics.Middleware,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Post("/webhook", h.WebhookHandler.Handle)

	r.Route("/api/user", func(r chi.Router) {
		r.Use(auth.AuthMiddleware(h.Tokens))
		r.Get("/balance", h.CommissionHandler.GetBalance)
		r.Get("/commissions", h.CommissionHandler.GetCommissions)
	})

	return r
}
