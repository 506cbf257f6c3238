package nrm2

import (
	"github.com/wajidashraf/CostModelAppTraining/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func provide(cfg config.Config, log *zap.Logger) (*Provider, error) {
	p := NewProvider(cfg.NRM2TemplatePath, log)
	if cfg.NRM2Watch {
		if err := p.Watch(); err != nil {
			return nil, err
		}
	}
	return p, nil
}

var Module = fx.Module("nrm2",
	fx.Provide(
		provide,
		func(p *Provider) Source { return p },
	),
)
