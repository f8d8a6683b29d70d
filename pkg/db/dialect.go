package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/usageworks/accounting/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Dialect(cfg config.Config) (gorm.Dialector, error) {
	switch cfg.SQLDriver {
	case "postgres":
		return postgres.Open(fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable search_path=%s TimeZone=UTC",
			cfg.SQLHost,
			cfg.SQLUser,
			cfg.SQLPassword,
			cfg.SQLDatabase,
			cfg.SQLPort,
			cfg.SQLSchema,
		)), nil
	case "sqlite":
		return sqlite.Open(fmt.Sprintf("file:%s?cache=shared", cfg.SQLDatabase)), nil
	default:
		return nil, fmt.Errorf("unsupported %s driver", cfg.SQLDriver)
	}
}
