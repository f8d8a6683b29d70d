package billingevent

import (
	"github.com/usageworks/accounting/internal/billingevent/repository"
	"github.com/usageworks/accounting/internal/billingevent/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billingevent.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
