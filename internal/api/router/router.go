// Package router assembles the HTTP surface.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/scottvalleyhvac/voice-agent/internal/http/handlers"
	httpmiddleware "github.com/scottvalleyhvac/voice-agent/internal/http/middleware"
	"github.com/scottvalleyhvac/voice-agent/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger   *logging.Logger
	Handlers *handlers.Handlers

	// WebhookRateLimit is requests/sec per IP on the public webhook route;
	// zero disables the limiter.
	WebhookRateLimit float64
	WebhookBurst     int

	MetricsHandler http.Handler
}

// New builds the chi router.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	h := cfg.Handlers

	r.Get("/health", h.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// The webhook route is the only unauthenticated write surface, so it
	// carries its own per-IP limiter.
	r.Group(func(public chi.Router) {
		if cfg.WebhookRateLimit > 0 {
			public.Use(httpmiddleware.RateLimit(cfg.WebhookRateLimit, cfg.WebhookBurst))
		}
		public.Post("/webhooks/ghl", h.Webhook)
	})

	// Function endpoints invoked by the voice platform during calls.
	r.Route("/functions", func(fn chi.Router) {
		fn.Post("/check-availability", h.CheckAvailability)
		fn.Post("/create-contact", h.CreateContact)
		fn.Post("/book-appointment", h.BookAppointment)
		fn.Post("/classify-call-type", h.ClassifyCallType)
		fn.Post("/send-confirmation", h.SendConfirmation)
		fn.Post("/check-service-area", h.CheckServiceArea)
		fn.Post("/initiate-warm-transfer", h.InitiateWarmTransfer)
		fn.Get("/business-hours", h.BusinessHours)
	})

	return r
}
