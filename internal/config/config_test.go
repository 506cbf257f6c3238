package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("SEED_ON_START", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg := Load()
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.False(t, cfg.SeedOnStart)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.IsProduction())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadObservabilitySettings(t *testing.T) {
	t.Setenv("ENVIRONMENT", "staging")
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", " collector:4318 ")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "HTTP")
	t.Setenv("OTEL_SAMPLING_RATIO", "0.25")

	cfg := Load()
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.TracingEnabled)
	assert.Equal(t, "collector:4318", cfg.OTLPEndpoint)
	assert.Equal(t, "http", cfg.OTLPProtocol)
	assert.Equal(t, 0.25, cfg.TraceSampling)
	assert.False(t, cfg.IsDevelopment())

	t.Setenv("OTEL_SAMPLING_RATIO", "most")
	assert.Equal(t, 1.0, Load().TraceSampling)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ENVIRONMENT", "Production")
	t.Setenv("SEED_ON_START", "yes")
	t.Setenv("SNOWFLAKE_NODE", "7")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("NRM2_TEMPLATE_PATH", " /etc/costmodel/nrm2.json ")

	cfg := Load()
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.SeedOnStart)
	assert.Equal(t, int64(7), cfg.SnowflakeNode)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "/etc/costmodel/nrm2.json", cfg.NRM2TemplatePath)
}

func TestGetenvBoolFallsBackOnGarbage(t *testing.T) {
	t.Setenv("NRM2_WATCH", "maybe")
	assert.True(t, getenvBool("NRM2_WATCH", true))
}
