package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	HTTPAddr           string
	CORSAllowedOrigins []string

	NRM2TemplatePath string
	NRM2Watch        bool

	SeedOnStart   bool
	SnowflakeNode int64

	LogLevel  string
	LogFormat string

	TracingEnabled bool
	OTLPEndpoint   string
	OTLPProtocol   string
	TraceSampling  float64
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:            getenv("APP_SERVICE", "costmodel"),
		AppVersion:         getenv("APP_VERSION", "0.1.0"),
		Environment:        strings.ToLower(getenv("ENVIRONMENT", "development")),
		HTTPAddr:           getenv("HTTP_ADDR", ":8080"),
		CORSAllowedOrigins: parseList(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		NRM2TemplatePath:   strings.TrimSpace(getenv("NRM2_TEMPLATE_PATH", "")),
		NRM2Watch:          getenvBool("NRM2_WATCH", false),
		SeedOnStart:        getenvBool("SEED_ON_START", false),
		SnowflakeNode:      getenvInt64("SNOWFLAKE_NODE", 1),
		LogLevel:           strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(getenv("LOG_FORMAT", "json")),
		TracingEnabled:     getenvBool("OTEL_ENABLED", false),
		OTLPEndpoint:       strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")),
		OTLPProtocol:       strings.ToLower(getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")),
		TraceSampling:      getenvFloat("OTEL_SAMPLING_RATIO", 1),
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment is true for local and test environments and when debug
// logging was asked for explicitly.
func (c Config) IsDevelopment() bool {
	if c.LogLevel == "debug" {
		return true
	}
	switch c.Environment {
	case "development", "local", "test":
		return true
	}
	return false
}

var Module = fx.Module("config",
	fx.Provide(Load),
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
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

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func parseList(raw string) []string {
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
