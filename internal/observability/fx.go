// Package observability wires logging, tracing and prometheus metrics from
// the application config.
package observability

import (
	"github.com/wajidashraf/CostModelAppTraining/internal/config"
	"github.com/wajidashraf/CostModelAppTraining/internal/observability/logger"
	"github.com/wajidashraf/CostModelAppTraining/internal/observability/metrics"
	"github.com/wajidashraf/CostModelAppTraining/internal/observability/tracing"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		LoggerConfig,
		TracingConfig,
		MetricsConfig,
		logger.New,
		tracing.NewProvider,
		metrics.NewRegistry,
		metrics.New,
		metrics.NewHTTPMetrics,
	),
)

func LoggerConfig(cfg config.Config) logger.Config {
	return logger.Config{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
		Version:     cfg.AppVersion,
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: cfg.IsDevelopment(),
	}
}

// TracingConfig enables OTLP export only when OTEL_ENABLED is set; spans are
// still recorded for log correlation otherwise.
func TracingConfig(cfg config.Config) tracing.Config {
	return tracing.Config{
		Enabled:          cfg.TracingEnabled,
		ServiceName:      cfg.AppName,
		ServiceVersion:   cfg.AppVersion,
		Environment:      cfg.Environment,
		ExporterEndpoint: cfg.OTLPEndpoint,
		ExporterProtocol: cfg.OTLPProtocol,
		SamplingRatio:    cfg.TraceSampling,
	}
}

func MetricsConfig(cfg config.Config) metrics.Config {
	return metrics.Config{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
	}
}
