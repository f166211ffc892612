package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/order-settlement/internal/domain/order"
)

// Config holds the complete application configuration, loadable from
// environment variables (SETTLE_ prefix), flags, or YAML config files.
type Config struct {
	Addr         string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL  string `usage:"PostgreSQL connection URL (SETTLE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	APIKeyPepper string `usage:"HMAC pepper for API key hashing; empty disables auth (SETTLE_API_KEY_PEPPER)" flag:"api-key-pepper"`
	Limits       LimitsConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	Graceful     GracefulConfig
}

// LimitsConfig holds the settlement policy bounds. MaxOrderTotal is kept as
// a string so it parses into an exact decimal, never through a float.
type LimitsConfig struct {
	MaxOrderTotal string `default:"999999.99" usage:"Ceiling on the product total of a single order" flag:"max-order-total"`
	MinQuantity   int64  `default:"1"   usage:"Minimum product line quantity" flag:"min-quantity"`
	MaxQuantity   int64  `default:"100" usage:"Maximum product line quantity" flag:"max-quantity"`
}

// Parse converts the configured policy into validator Limits.
func (c LimitsConfig) Parse() (order.Limits, error) {
	maxTotal, err := decimal.NewFromString(c.MaxOrderTotal)
	if err != nil {
		return order.Limits{}, errors.Wrapf(err, "parse max order total %q", c.MaxOrderTotal)
	}
	if c.MinQuantity > c.MaxQuantity {
		return order.Limits{}, errors.Errorf("min quantity %d exceeds max quantity %d", c.MinQuantity, c.MaxQuantity)
	}
	return order.Limits{
		MaxOrderTotal: maxTotal,
		MinQuantity:   c.MinQuantity,
		MaxQuantity:   c.MaxQuantity,
	}, nil
}

// RateLimitConfig controls the per-client rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and platform defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "SETTLE",
		Files:     []string{"config.yaml", "/etc/settle/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set SETTLE_DATABASE_URL or DATABASE_URL")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables
// (Railway, Render, etc.) that use standard names like DATABASE_URL and PORT
// onto the SETTLE_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
