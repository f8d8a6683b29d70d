package catalog

import (
	"github.com/usageworks/accounting/internal/catalog/repository"
	"github.com/usageworks/accounting/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
