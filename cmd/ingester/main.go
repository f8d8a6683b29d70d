// The ingester binary consumes the three accounting topics from the
// bus: billing events, workspace settings, and consumption rate
// samples. Rate samples additionally drive the hourly estimator.
package main

import (
	"github.com/usageworks/accounting/internal/billingevent"
	"github.com/usageworks/accounting/internal/catalog"
	"github.com/usageworks/accounting/internal/config"
	"github.com/usageworks/accounting/internal/estimator"
	"github.com/usageworks/accounting/internal/ingest"
	"github.com/usageworks/accounting/internal/migration"
	"github.com/usageworks/accounting/internal/observability"
	"github.com/usageworks/accounting/internal/ratesample"
	"github.com/usageworks/accounting/internal/workspace"
	"github.com/usageworks/accounting/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		observability.MetricsServerModule,
		db.Module,
		migration.Module,

		catalog.Module,
		workspace.Module,
		billingevent.Module,
		ratesample.Module,
		estimator.Module,

		ingest.Module,
	)
	app.Run()
}
