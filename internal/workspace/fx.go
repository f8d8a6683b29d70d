package workspace

import (
	"github.com/usageworks/accounting/internal/workspace/repository"
	"github.com/usageworks/accounting/internal/workspace/service"
	"go.uber.org/fx"
)

var Module = fx.Module("workspace.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
