package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	CatalogBaseURL     string
	CatalogConcurrency int
	JWTSecret          string
	TokenTTL           time.Duration
	TokenIssuer        string
	TokenAudience      string
	PaymentProcessor   string
	PayeeEmail         string
	PaymentReturnURL   string
	PaymentCancelURL   string
	PlaceholderDomain  string
	TaxRates           map[string]int
	DefaultTaxBps      int
	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		CatalogBaseURL:     k.String("CATALOG_BASE_URL"),
		CatalogConcurrency: parseInt(k.String("CATALOG_CONCURRENCY"), 8),
		JWTSecret:          k.String("JWT_SECRET"),
		TokenTTL:           parseDuration(k.String("TOKEN_TTL"), "1h"),
		TokenIssuer:        valueOrDefault(k.String("TOKEN_ISSUER"), "backend-checkout"),
		TokenAudience:      valueOrDefault(k.String("TOKEN_AUDIENCE"), "checkout-clients"),
		PaymentProcessor:   valueOrDefault(k.String("PAYMENT_PROCESSOR"), "paypal"),
		PayeeEmail:         k.String("PAYEE_EMAIL"),
		PaymentReturnURL:   k.String("PAYMENT_RETURN_URL"),
		PaymentCancelURL:   k.String("PAYMENT_CANCEL_URL"),
		PlaceholderDomain:  valueOrDefault(k.String("PLACEHOLDER_EMAIL_DOMAIN"), "guest.invalid"),
		TaxRates:           parseTaxTable(k.String("TAX_TABLE")),
		DefaultTaxBps:      parseInt(k.String("DEFAULT_TAX_BPS"), 0),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.CatalogBaseURL == "" {
		return nil, errors.New("CATALOG_BASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.PayeeEmail == "" {
		return nil, errors.New("PAYEE_EMAIL is required")
	}
	if cfg.PaymentReturnURL == "" || cfg.PaymentCancelURL == "" {
		return nil, errors.New("PAYMENT_RETURN_URL and PAYMENT_CANCEL_URL are required")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// parseTaxTable parses "STD=1000,REDUCED=700" into a code to basis-points map.
func parseTaxTable(value string) map[string]int {
	rates := map[string]int{}
	for _, pair := range strings.Split(value, ",") {
		trimmed := strings.TrimSpace(pair)
		if trimmed == "" {
			continue
		}
		code, bps, ok := strings.Cut(trimmed, "=")
		if !ok {
			continue
		}
		parsed, err := strconv.Atoi(strings.TrimSpace(bps))
		if err != nil || parsed < 0 {
			continue
		}
		rates[strings.ToUpper(strings.TrimSpace(code))] = parsed
	}
	return rates
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return fallback
	}
	return parsed
}
