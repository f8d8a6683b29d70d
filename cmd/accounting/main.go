// The accounting binary serves the read API: usage data per workspace
// and per billing account, the SKU catalogue, and current prices.
package main

import (
	"github.com/usageworks/accounting/internal/billingevent"
	"github.com/usageworks/accounting/internal/catalog"
	"github.com/usageworks/accounting/internal/config"
	"github.com/usageworks/accounting/internal/migration"
	"github.com/usageworks/accounting/internal/observability"
	"github.com/usageworks/accounting/internal/seed"
	"github.com/usageworks/accounting/internal/server"
	"github.com/usageworks/accounting/internal/workspace"
	"github.com/usageworks/accounting/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		db.Module,
		migration.Module,

		catalog.Module,
		workspace.Module,
		billingevent.Module,
		seed.Module,

		server.Module,
	)
	app.Run()
}
