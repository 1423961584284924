package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config contains runtime configuration values.
type Config struct {
	Environment string
	HTTPPort    string
	ServiceName string

	// IMS service-account credentials for the demo token endpoint.
	IMSClientID           string
	IMSClientSecret       string
	IMSTechnicalAccountID string
	IMSOrg                string
	IMSPrivateKeyPEM      string
	IMSScopes             string
	IMSEndpoint           string

	// DAM repository the proxy forwards asset calls to.
	DAMHost   string
	DAMAPIKey string

	UpstreamTimeout time.Duration

	TelemetryEndpoint  string
	TelemetryInsecure  bool
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
}

// Load reads configuration from environment variables with sane defaults.
// Credentials are optional at startup: the relay endpoint works with
// caller-supplied credentials, and only the server-side token endpoint
// needs the IMS_* variables.
func Load() (Config, error) {
	cfg := Config{
		Environment:           getEnv("APP_ENV", "development"),
		HTTPPort:              getEnv("HTTP_PORT", "8080"),
		ServiceName:           getEnv("SERVICE_NAME", "asset-selector-proxy"),
		IMSClientID:           os.Getenv("IMS_CLIENT_ID"),
		IMSClientSecret:       os.Getenv("IMS_CLIENT_SECRET"),
		IMSTechnicalAccountID: os.Getenv("IMS_TECHNICAL_ACCOUNT_ID"),
		IMSOrg:                os.Getenv("IMS_ORG"),
		IMSPrivateKeyPEM:      os.Getenv("IMS_PRIVATE_KEY"),
		IMSScopes:             getEnv("IMS_SCOPES", "ent_aem_cloud_api"),
		IMSEndpoint:           getEnv("IMS_ENDPOINT", "ims-na1.adobelogin.com"),
		DAMHost:               os.Getenv("DAM_HOST"),
		DAMAPIKey:             os.Getenv("DAM_API_KEY"),
		UpstreamTimeout:       getDuration("UPSTREAM_TIMEOUT", 30*time.Second),
		TelemetryEndpoint:     os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		TelemetryInsecure:     getBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		CORSAllowedOrigins:    getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		CORSAllowedMethods:    getList("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "OPTIONS"}),
		CORSAllowedHeaders:    getList("CORS_ALLOWED_HEADERS", []string{"Authorization", "Content-Type", "X-Api-Key"}),
	}

	if keyPath := os.Getenv("IMS_PRIVATE_KEY_FILE"); cfg.IMSPrivateKeyPEM == "" && keyPath != "" {
		data, err := os.ReadFile(keyPath)
		if err != nil {
			return Config{}, fmt.Errorf("read IMS_PRIVATE_KEY_FILE: %w", err)
		}
		cfg.IMSPrivateKeyPEM = string(data)
	}

	if cfg.IMSEndpoint == "" {
		return Config{}, fmt.Errorf("IMS_ENDPOINT must not be empty")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(v) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}

func getList(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok {
		parts := strings.Split(v, ",")
		var cleaned []string
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
		if len(cleaned) > 0 {
			return cleaned
		}
	}
	return def
}
