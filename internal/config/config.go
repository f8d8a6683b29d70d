package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration. Values come from the environment,
// optionally backed by a local .env file.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	LogLevel    string

	HTTPAddr string
	RootPath string

	// Address of the standalone /metrics listener used by processes that
	// carry no API server of their own.
	MetricsAddr string

	// Path to the pricing YAML used to seed the catalogue at startup.
	// Empty means no seeding.
	PricingConfig string

	SQLDriver   string
	SQLHost     string
	SQLPort     string
	SQLUser     string
	SQLPassword string
	SQLDatabase string
	SQLSchema   string

	SQLMaxIdleConn int
	SQLMaxOpenConn int

	KafkaBrokers       []string
	KafkaConsumerGroup string

	TopicBillingEvents     string
	TopicWorkspaceSettings string
	TopicRateSamples       string

	OtelEnabled          bool
	OtelExporterEndpoint string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "accounting"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		HTTPAddr: getenv("HTTP_ADDR", ":8080"),
		RootPath: normalizeRootPath(getenv("ROOT_PATH", "/api/")),

		MetricsAddr: getenv("METRICS_ADDR", ":9090"),

		PricingConfig: strings.TrimSpace(getenv("PRICING_CONFIG", "")),

		SQLDriver:   getenv("SQL_DRIVER", "postgres"),
		SQLHost:     getenv("SQL_HOST", "localhost"),
		SQLPort:     getenv("SQL_PORT", "5432"),
		SQLUser:     getenv("SQL_USER", "postgres"),
		SQLPassword: getenv("SQL_PASSWORD", ""),
		SQLDatabase: getenv("SQL_DATABASE", "accounting"),
		SQLSchema:   getenv("SQL_SCHEMA", "public"),

		SQLMaxIdleConn: getenvInt("SQL_MAX_IDLE_CONN", 2),
		SQLMaxOpenConn: getenvInt("SQL_MAX_OPEN_CONN", 10),

		KafkaBrokers:       splitList(getenv("KAFKA_BROKERS", "localhost:9092")),
		KafkaConsumerGroup: getenv("KAFKA_CONSUMER_GROUP", "accounting"),

		TopicBillingEvents:     getenv("TOPIC_BILLING_EVENTS", "billing-events"),
		TopicWorkspaceSettings: getenv("TOPIC_WORKSPACE_SETTINGS", "workspace-settings"),
		TopicRateSamples:       getenv("TOPIC_RATE_SAMPLES", "billing-events-consumption-rate-samples"),

		OtelEnabled:          getenvBool("OTEL_ENABLED", false),
		OtelExporterEndpoint: getenv("OTEL_EXPORTER_ENDPOINT", "localhost:4317"),
	}
}

var Module = fx.Module("config",
	fx.Provide(Load),
)

func (c Config) Debug() bool {
	return c.Environment != "production"
}

// normalizeRootPath guarantees a leading slash and no trailing slash so the
// value can be used directly as a gin route group prefix.
func normalizeRootPath(raw string) string {
	p := strings.TrimSpace(raw)
	if p == "" {
		return "/api"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	p = strings.TrimRight(p, "/")
	if p == "" {
		return "/"
	}
	return p
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
