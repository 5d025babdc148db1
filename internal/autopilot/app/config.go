package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	BaseURL  string // Public origin of this service, used for OAuth redirect URIs (default: http://localhost:8080)
	AppURL   string // Web UI origin OAuth callbacks return to (default: BaseURL)
	LoginURL string // Login page unauthenticated browser flows redirect to (default: AppURL + /login)

	SessionSecret string        // Required: HS256 secret for session tokens
	Issuer        string        // Optional: issuer claim for session tokens (default: autopilot)
	SessionTTL    time.Duration // Optional: session lifetime (default: 12h)
	StateTTL      time.Duration // Optional: OAuth state lifetime (default: 10m)

	MetaClientID         string // Meta Ads OAuth app credentials
	MetaClientSecret     string
	LinkedInClientID     string // LinkedIn Ads OAuth app credentials
	LinkedInClientSecret string

	RendererURL    string // Required: HTML-to-PDF rendering service base URL
	RendererAPIKey string
	MailerURL      string // Required: transactional email provider base URL
	MailerAPIKey   string
	MailerFrom     string // From address on report deliveries (default: reports@agencydesk.io)

	DatabaseFile         string        // Optional: path to SQLite database file (default: ./autopilot.db)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	SchedulerInterval    time.Duration // Report scheduler tick interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		BaseURL:  getEnvOrDefault("AUTOPILOT_BASE_URL", "http://localhost:8080"),
		AppURL:   os.Getenv("AUTOPILOT_APP_URL"),
		LoginURL: os.Getenv("AUTOPILOT_LOGIN_URL"),

		SessionSecret: os.Getenv("AUTOPILOT_SESSION_SECRET"),
		Issuer:        getEnvOrDefault("AUTOPILOT_ISSUER", "autopilot"),
		SessionTTL:    getEnvDurationOrDefault("AUTOPILOT_SESSION_TTL", 12*time.Hour),
		StateTTL:      getEnvDurationOrDefault("AUTOPILOT_STATE_TTL", 10*time.Minute),

		MetaClientID:         os.Getenv("META_CLIENT_ID"),
		MetaClientSecret:     os.Getenv("META_CLIENT_SECRET"),
		LinkedInClientID:     os.Getenv("LINKEDIN_CLIENT_ID"),
		LinkedInClientSecret: os.Getenv("LINKEDIN_CLIENT_SECRET"),

		RendererURL:    os.Getenv("RENDERER_URL"),
		RendererAPIKey: os.Getenv("RENDERER_API_KEY"),
		MailerURL:      os.Getenv("MAILER_URL"),
		MailerAPIKey:   os.Getenv("MAILER_API_KEY"),
		MailerFrom:     getEnvOrDefault("MAILER_FROM", "reports@agencydesk.io"),

		DatabaseFile:         getEnvOrDefault("AUTOPILOT_DATABASE_FILE", "autopilot.db"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		SchedulerInterval:    getEnvDurationOrDefault("SCHEDULER_INTERVAL", 1*time.Hour),
	}

	if cfg.AppURL == "" {
		cfg.AppURL = cfg.BaseURL
	}
	if cfg.LoginURL == "" {
		cfg.LoginURL = cfg.AppURL + "/login"
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Integer values are read as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
