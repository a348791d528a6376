package infra

import (
	"fmt"

	"github.com/glebarez/sqlite"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"herotime/internal/config"
	"herotime/internal/models/db_models"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// OpenDatabase connects to the configured store and migrates the schema.
func OpenDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DialectPostgres, "":
		if cfg.URL == "" {
			return nil, fmt.Errorf("POSTGRES_URL is not set")
		}
		dialector = postgres.Open(cfg.URL)
	case DialectSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", dialector.Name(), err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the users and generations tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&db_models.User{}, &db_models.Generation{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func CloseDatabase(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Warn("get database handle")
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.WithError(err).Warn("close database")
	} else {
		log.Info("database connection closed")
	}
}

func IsSQLite(db *gorm.DB) bool {
	return db != nil && db.Dialector != nil && db.Dialector.Name() == DialectSQLite
}
