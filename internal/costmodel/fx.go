package costmodel

import (
	"github.com/wajidashraf/CostModelAppTraining/internal/costmodel/repository"
	"github.com/wajidashraf/CostModelAppTraining/internal/costmodel/service"
	"go.uber.org/fx"
)

var Module = fx.Module("costmodel.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
