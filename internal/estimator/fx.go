package estimator

import "go.uber.org/fx"

var Module = fx.Module("estimator.service",
	fx.Provide(New),
)
