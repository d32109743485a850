package main

import (
	"fmt"

	appcatalog "github.com/bizops/backend/internal/application/catalog"
	appledger "github.com/bizops/backend/internal/application/ledger"
	"github.com/bizops/backend/internal/infrastructure/config"
	"github.com/bizops/backend/internal/infrastructure/logger"
	"github.com/bizops/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

// app holds the services a command runs against
type app struct {
	db        *persistence.Database
	log       *zap.Logger
	ledger    *appledger.LedgerService
	materials *appcatalog.MaterialService
}

// openApp connects to the configured database. Logs go to stderr so they
// never mix with rendered reports.
func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:  "warn",
		Format: "console",
		Output: "stderr",
	})
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(logger.NewGormLogger(log, logger.GormLevel("warn"))))
	if err != nil {
		return nil, err
	}
	if db.Driver() == persistence.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate sqlite schema: %w", err)
		}
	}

	return &app{
		db:  db,
		log: log,
		ledger: appledger.NewLedgerService(
			persistence.NewGormCustomerRepository(db.DB),
			persistence.NewGormActivityRepository(db.DB),
			persistence.NewGormTransactionScope(db.DB),
			cfg.Ledger,
			appledger.WithLogger(log),
		),
		materials: appcatalog.NewMaterialService(persistence.NewGormMaterialRepository(db.DB), cfg.Ledger, log),
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.log.Warn("Failed to close database", zap.Error(err))
	}
	_ = a.log.Sync()
}
