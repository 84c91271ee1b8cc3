package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv    string
	Port      string
	Storage   StorageConfig
	Identity  IdentityConfig
	Cookie    CookieConfig
	CSRF      CSRFConfig
	Telemetry TelemetryConfig
}

type StorageConfig struct {
	DataDir         string
	FallbackDataDir string
	SnapshotFile    string
	SaveDelay       time.Duration
	SeedDemo        bool
}

type IdentityConfig struct {
	HandleCookieName string
	SecretCookieName string
	TTL              time.Duration
}

type CookieConfig struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
	Path     string
}

// CSRFConfig holds the gorilla/csrf key. An empty Key means "generate one
// per process", which is only accepted outside prod.
type CSRFConfig struct {
	Key            []byte
	TrustedOrigins []string
}

type TelemetryConfig struct {
	ServiceName          string
	ServiceVersion       string
	OTLPEndpoint         string
	OTLPTracesEndpoint   string
	OTLPMetricsEndpoint  string
	OTLPProtocol         string
	OTLPHeaders          map[string]string
	OTLPInsecure         bool
	ExportTimeout        time.Duration
	MetricExportInterval time.Duration
}

func Load() (Config, error) {
	appEnv := getEnv("APP_ENV", "dev")
	port := getEnv("PORT", getEnv("APP_PORT", "8080"))

	saveDelay, err := time.ParseDuration(getEnv("SAVE_DELAY", "150ms"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SAVE_DELAY: %w", err)
	}
	if saveDelay <= 0 {
		return Config{}, errors.New("SAVE_DELAY must be positive")
	}

	identityTTL, err := time.ParseDuration(getEnv("IDENTITY_TTL", "8760h"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid IDENTITY_TTL: %w", err)
	}

	cookieSecure := getEnvBool("COOKIE_SECURE", appEnv == "prod")
	sameSite, err := parseSameSite(getEnv("COOKIE_SAMESITE", "lax"))
	if err != nil {
		return Config{}, err
	}

	csrfKey, err := parseCSRFKey(os.Getenv("CSRF_KEY"))
	if err != nil {
		return Config{}, err
	}
	if csrfKey == nil && appEnv == "prod" {
		return Config{}, errors.New("CSRF_KEY must be set in prod")
	}

	exportTimeout, err := time.ParseDuration(getEnv("OTEL_EXPORTER_OTLP_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid OTEL_EXPORTER_OTLP_TIMEOUT: %w", err)
	}
	metricInterval, err := time.ParseDuration(getEnv("OTEL_METRIC_EXPORT_INTERVAL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid OTEL_METRIC_EXPORT_INTERVAL: %w", err)
	}

	cfg := Config{
		AppEnv: appEnv,
		Port:   port,
		Storage: StorageConfig{
			DataDir:         getEnv("DATA_DIR", "/data"),
			FallbackDataDir: getEnv("FALLBACK_DATA_DIR", "./data"),
			SnapshotFile:    getEnv("SNAPSHOT_FILE", "profiles.json"),
			SaveDelay:       saveDelay,
			SeedDemo:        getEnvBool("SEED_DEMO", true),
		},
		Identity: IdentityConfig{
			HandleCookieName: getEnv("IDENTITY_HANDLE_COOKIE", "mm_handle"),
			SecretCookieName: getEnv("IDENTITY_SECRET_COOKIE", "mm_secret"),
			TTL:              identityTTL,
		},
		Cookie: CookieConfig{
			Domain:   getEnv("COOKIE_DOMAIN", ""),
			Secure:   cookieSecure,
			SameSite: sameSite,
			Path:     getEnv("COOKIE_PATH", "/"),
		},
		CSRF: CSRFConfig{
			Key:            csrfKey,
			TrustedOrigins: parseCSV(getEnv("CSRF_TRUSTED_ORIGINS", "localhost:"+port)),
		},
		Telemetry: TelemetryConfig{
			ServiceName:          getEnv("OTEL_SERVICE_NAME", "maker-profiles"),
			ServiceVersion:       getEnv("SERVICE_VERSION", "dev"),
			OTLPEndpoint:         os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			OTLPTracesEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"),
			OTLPMetricsEndpoint:  os.Getenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT"),
			OTLPProtocol:         getEnv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"),
			OTLPHeaders:          parseHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS")),
			OTLPInsecure:         getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", appEnv != "prod"),
			ExportTimeout:        exportTimeout,
			MetricExportInterval: metricInterval,
		},
	}

	if cfg.Identity.HandleCookieName == cfg.Identity.SecretCookieName {
		return Config{}, errors.New("IDENTITY_HANDLE_COOKIE and IDENTITY_SECRET_COOKIE must differ")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseCSV(value string) []string {
	parts := strings.Split(value, ",")
	var results []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

// parseHeaders reads the OTLP "k1=v1,k2=v2" header format.
func parseHeaders(value string) map[string]string {
	headers := make(map[string]string)
	for _, pair := range parseCSV(value) {
		key, val, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			continue
		}
		headers[strings.TrimSpace(key)] = strings.TrimSpace(val)
	}
	return headers
}

func parseCSRFKey(value string) ([]byte, error) {
	if value == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(strings.TrimSpace(value))
	if err != nil || len(key) != 32 {
		return nil, errors.New("CSRF_KEY must be 64 hex characters (32 bytes)")
	}
	return key, nil
}

func parseSameSite(value string) (http.SameSite, error) {
	switch strings.ToLower(value) {
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return http.SameSiteDefaultMode, fmt.Errorf("invalid COOKIE_SAMESITE: %s", value)
	}
}
