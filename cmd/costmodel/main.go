package main

import (
	"context"

	"github.com/wajidashraf/CostModelAppTraining/internal/clock"
	"github.com/wajidashraf/CostModelAppTraining/internal/config"
	"github.com/wajidashraf/CostModelAppTraining/internal/costmodel"
	"github.com/wajidashraf/CostModelAppTraining/internal/costmodel/domain"
	"github.com/wajidashraf/CostModelAppTraining/internal/idgen"
	"github.com/wajidashraf/CostModelAppTraining/internal/nrm2"
	"github.com/wajidashraf/CostModelAppTraining/internal/observability"
	"github.com/wajidashraf/CostModelAppTraining/internal/providers/pdf"
	"github.com/wajidashraf/CostModelAppTraining/internal/server"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	fx.New(options()...).Run()
}

func options() []fx.Option {
	return []fx.Option{
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),

		// Core infrastructure
		config.Module,
		observability.Module,
		clock.Module,
		idgen.Module,

		// Cost model domain
		nrm2.Module,
		costmodel.Module,
		pdf.Module,

		server.Module,
		fx.Invoke(seedOnStart),
	}
}

func seedOnStart(lc fx.Lifecycle, cfg config.Config, svc domain.Service) {
	if !cfg.SeedOnStart {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			svc.SeedSample(ctx)
			return nil
		},
	})
}
