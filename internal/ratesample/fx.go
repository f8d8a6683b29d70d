package ratesample

import (
	"github.com/usageworks/accounting/internal/ratesample/repository"
	"github.com/usageworks/accounting/internal/ratesample/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ratesample.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
