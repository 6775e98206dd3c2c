package config

import (
	"strings"
	"time"

	"github.com/Skotchmaster/pawtopia/pkg/config"
)

const DefaultAPIURL = "https://it342-pawtopia-10.onrender.com"

type Config struct {
	APIURL   string
	AdminURL string

	HTTPTimeout    time.Duration
	HTTPRetries    int
	HTTPRatePerSec float64

	SessionDSN string

	KafkaBrokers []string
	KafkaTopic   string

	PaymentReturnAddr string
	PaymentFallback   time.Duration

	LogLevel string
}

// FromEnv reads the configuration from the process environment.
func FromEnv() Config {
	api := strings.TrimRight(config.EnvDefault("PAWTOPIA_API_URL", DefaultAPIURL), "/")

	return Config{
		APIURL:            api,
		AdminURL:          strings.TrimRight(config.EnvDefault("PAWTOPIA_ADMIN_URL", api+"/admin"), "/"),
		HTTPTimeout:       config.EnvDurationDefault("HTTP_TIMEOUT", 15*time.Second),
		HTTPRetries:       config.EnvIntDefault("HTTP_RETRIES", 2),
		HTTPRatePerSec:    config.EnvFloatDefault("HTTP_RATE_PER_SEC", 10),
		SessionDSN:        config.EnvDefault("SESSION_DSN", "file:pawtopia.db"),
		KafkaBrokers:      config.CSV(config.EnvDefault("KAFKA_BROKERS", "")),
		KafkaTopic:        config.EnvDefault("KAFKA_TOPIC", "checkout_events"),
		PaymentReturnAddr: config.EnvDefault("PAYMENT_RETURN_ADDR", "127.0.0.1:8765"),
		PaymentFallback:   config.EnvDurationDefault("PAYMENT_FALLBACK", 30*time.Second),
		LogLevel:          config.EnvDefault("LOG_LEVEL", "info"),
	}
}

// Load reads .env (if present) and the environment, and exits on invalid required values.
func Load() Config {
	config.LoadDotenv(".env")

	cfg := FromEnv()
	config.MustURL(cfg.APIURL, "PAWTOPIA_API_URL")
	config.MustURL(cfg.AdminURL, "PAWTOPIA_ADMIN_URL")
	config.MustNonEmpty(cfg.SessionDSN, "SESSION_DSN")
	return cfg
}
