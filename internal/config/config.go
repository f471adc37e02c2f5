package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration. It is loaded once at startup and
// injected into the components that need it; nothing reads the environment
// after Load returns.
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	PublicBaseURL string

	// GoHighLevel CRM
	GHLAPIKey     string
	GHLLocationID string
	GHLBaseURL    string

	// Vapi voice platform
	VapiAPIKey              string
	VapiBaseURL             string
	VapiOutboundAssistantID string
	VapiPhoneNumberID       string

	// Twilio SMS
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	// Webhook security
	WebhookSecret string

	// Lead flow tuning
	SMSFallbackDelay time.Duration
	UpstreamTimeout  time.Duration

	// Business identity used in SMS templates
	BusinessName  string
	BusinessPhone string

	// Rate limiting for public webhook routes
	WebhookRateLimit float64
	WebhookRateBurst int
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),

		GHLAPIKey:     getEnv("GHL_API_KEY", ""),
		GHLLocationID: getEnv("GHL_LOCATION_ID", ""),
		GHLBaseURL:    getEnv("GHL_BASE_URL", "https://services.leadconnectorhq.com"),

		VapiAPIKey:              getEnv("VAPI_API_KEY", ""),
		VapiBaseURL:             getEnv("VAPI_BASE_URL", "https://api.vapi.ai"),
		VapiOutboundAssistantID: getEnv("VAPI_OUTBOUND_ASSISTANT_ID", ""),
		VapiPhoneNumberID:       getEnv("VAPI_PHONE_NUMBER_ID", ""),

		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_FROM_NUMBER", ""),

		WebhookSecret: getEnv("WEBHOOK_SECRET", ""),

		SMSFallbackDelay: getEnvAsDuration("SMS_FALLBACK_DELAY", 30*time.Second),
		UpstreamTimeout:  getEnvAsDuration("UPSTREAM_TIMEOUT", 30*time.Second),

		BusinessName:  getEnv("BUSINESS_NAME", "Scott Valley HVAC"),
		BusinessPhone: getEnv("BUSINESS_PHONE", "971-712-6763"),

		WebhookRateLimit: getEnvAsFloat("WEBHOOK_RATE_LIMIT", 10),
		WebhookRateBurst: getEnvAsInt("WEBHOOK_RATE_BURST", 30),
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
