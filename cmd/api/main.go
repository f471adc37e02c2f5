package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scottvalleyhvac/voice-agent/internal/api/router"
	"github.com/scottvalleyhvac/voice-agent/internal/availability"
	"github.com/scottvalleyhvac/voice-agent/internal/booking"
	appconfig "github.com/scottvalleyhvac/voice-agent/internal/config"
	"github.com/scottvalleyhvac/voice-agent/internal/contacts"
	"github.com/scottvalleyhvac/voice-agent/internal/ghl"
	"github.com/scottvalleyhvac/voice-agent/internal/http/handlers"
	"github.com/scottvalleyhvac/voice-agent/internal/leadflow"
	"github.com/scottvalleyhvac/voice-agent/internal/observability/metrics"
	"github.com/scottvalleyhvac/voice-agent/internal/schedule"
	"github.com/scottvalleyhvac/voice-agent/internal/twilio"
	"github.com/scottvalleyhvac/voice-agent/internal/vapi"
	"github.com/scottvalleyhvac/voice-agent/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting voice-agent API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ghlClient, err := ghl.New(ghl.Config{
		BaseURL:    cfg.GHLBaseURL,
		APIKey:     cfg.GHLAPIKey,
		LocationID: cfg.GHLLocationID,
		Timeout:    cfg.UpstreamTimeout,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("ghl client init failed", "error", err)
		os.Exit(1)
	}
	vapiClient, err := vapi.New(vapi.Config{
		BaseURL: cfg.VapiBaseURL,
		APIKey:  cfg.VapiAPIKey,
		Timeout: cfg.UpstreamTimeout,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("vapi client init failed", "error", err)
		os.Exit(1)
	}
	twilioClient, err := twilio.New(twilio.Config{
		AccountSID: cfg.TwilioAccountSID,
		AuthToken:  cfg.TwilioAuthToken,
		FromNumber: cfg.TwilioFromNumber,
		Timeout:    cfg.UpstreamTimeout,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("twilio client init failed", "error", err)
		os.Exit(1)
	}

	m := metrics.New()

	// Field definitions live in the CRM; make sure the lifecycle fields
	// exist before webhooks start writing them.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.UpstreamTimeout)
		defer cancel()
		if err := contacts.EnsureFieldDefinitions(ctx, ghlClient, logger); err != nil {
			logger.Warn("custom field bootstrap incomplete", "error", err)
		}
	}()

	availabilitySvc := availability.NewService(ghlClient, schedule.FieldHours(), logger, nil)
	contactsSvc := contacts.NewService(ghlClient, logger)
	bookingSvc := booking.NewService(ghlClient, twilioClient, twilioClient, availabilitySvc, m, logger, nil)
	orchestrator := leadflow.New(leadflow.Config{
		LocationID:    cfg.GHLLocationID,
		AssistantID:   cfg.VapiOutboundAssistantID,
		PhoneNumberID: cfg.VapiPhoneNumberID,
		FallbackDelay: cfg.SMSFallbackDelay,
		BusinessName:  cfg.BusinessName,
		BusinessPhone: cfg.BusinessPhone,
	}, ghlClient, vapiClient, twilioClient, nil, m, logger)

	h := handlers.New(orchestrator, contactsSvc, bookingSvc, cfg.WebhookSecret, m, logger)

	r := router.New(&router.Config{
		Logger:           logger,
		Handlers:         h,
		WebhookRateLimit: cfg.WebhookRateLimit,
		WebhookBurst:     cfg.WebhookRateBurst,
		MetricsHandler:   promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
