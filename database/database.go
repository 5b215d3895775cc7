package database

import (
	"fmt"

	"sportsledger/config"
	"sportsledger/logger"
	"sportsledger/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// activeTxnIndex keeps at most one active record per transaction id. Both
// postgres and sqlite accept partial indexes in this form.
const activeTxnIndex = `CREATE UNIQUE INDEX IF NOT EXISTS uk_wager_active_txn ON wager_records (transaction_id) WHERE active`

// Connect opens the postgres pool and migrates the schema when enabled.
func Connect(cfg config.DBConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger:         logger.NewGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	logger.InfoGlobal().Msg("connected to database")

	if cfg.AutoMigrate {
		logger.InfoGlobal().Msg("starting auto-migration")
		if err := Migrate(db); err != nil {
			return nil, err
		}
		logger.InfoGlobal().Msg("auto-migration completed")
	}
	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Branch{},
		&models.Player{},
		&models.Session{},
		&models.WagerRecord{},
	); err != nil {
		return fmt.Errorf("database: auto-migrate: %w", err)
	}
	if err := db.Exec(activeTxnIndex).Error; err != nil {
		return fmt.Errorf("database: active index: %w", err)
	}
	return nil
}
