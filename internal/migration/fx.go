package migration

import (
	"github.com/usageworks/accounting/internal/config"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// Migrations are written for PostgreSQL. The sqlite driver exists for
		// tests, which build their schema with AutoMigrate instead.
		if cfg.SQLDriver != "postgres" {
			return nil
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
