package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the voice relay gateway.
type Config struct {
	BindAddr                 string
	ShutdownTimeout          time.Duration
	SessionInactivityTimeout time.Duration
	MetricsNamespace         string

	AllowAnyOrigin bool

	AppToken string

	GeminiAPIKey    string
	ModelCandidates []string
	UpstreamMode    string

	// UpstreamTimeout bounds one model invocation. Zero disables the deadline
	// and leaves the call bounded only by the transport.
	UpstreamTimeout time.Duration

	DatabaseURL string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:                 strings.TrimSpace(os.Getenv("APP_BIND_ADDR")),
		MetricsNamespace:         envOrDefault("APP_METRICS_NAMESPACE", "relayvox"),
		AllowAnyOrigin:           false,
		AppToken:                 strings.TrimSpace(os.Getenv("APP_TOKEN")),
		GeminiAPIKey:             strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		UpstreamMode:             envOrDefault("UPSTREAM_MODE", "auto"),
		DatabaseURL:              strings.TrimSpace(os.Getenv("DATABASE_URL")),
		ShutdownTimeout:          15 * time.Second,
		SessionInactivityTimeout: 2 * time.Minute,
		UpstreamTimeout:          0,
	}

	// Render-style platforms only expose PORT; APP_BIND_ADDR wins when both are set.
	if cfg.BindAddr == "" {
		if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
			if _, err := strconv.Atoi(port); err != nil {
				return Config{}, fmt.Errorf("PORT parse error: %w", err)
			}
			cfg.BindAddr = ":" + port
		} else {
			cfg.BindAddr = ":8080"
		}
	}

	candidates := envOrDefault("GEMINI_MODEL_CANDIDATES", "gemini-2.0-flash,gemini-1.5-flash,gemini-1.5-pro")
	for _, name := range strings.Split(candidates, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		cfg.ModelCandidates = append(cfg.ModelCandidates, name)
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionInactivityTimeout, err = durationFromEnv("APP_SESSION_INACTIVITY_TIMEOUT", cfg.SessionInactivityTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.UpstreamTimeout, err = durationFromEnv("APP_UPSTREAM_TIMEOUT", cfg.UpstreamTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	if len(cfg.ModelCandidates) == 0 {
		return Config{}, fmt.Errorf("GEMINI_MODEL_CANDIDATES must list at least one model")
	}
	if cfg.SessionInactivityTimeout < 5*time.Second {
		return Config{}, fmt.Errorf("APP_SESSION_INACTIVITY_TIMEOUT must be at least 5s")
	}
	if cfg.UpstreamTimeout < 0 {
		return Config{}, fmt.Errorf("APP_UPSTREAM_TIMEOUT must not be negative")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
