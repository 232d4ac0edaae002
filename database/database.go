package database

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/lshigami/examcore/config"
	"github.com/lshigami/examcore/internal/model"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the configured database. Postgres is the production
// driver; sqlite is meant for local runs and tests.
func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "sqlite":
		dsn := cfg.Database.DSN
		if dsn == "" {
			dsn = "examcore.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
		}
		dialector = sqlite.Open(dsn)
	case "postgres", "":
		dsn := cfg.Database.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
				cfg.Database.Host, cfg.Database.User, cfg.Database.Password, cfg.Database.Name, cfg.Database.Port)
		}
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		log.Error().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to connect to database")
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	if cfg.Database.Driver == "sqlite" {
		// a single writer avoids SQLITE_BUSY under concurrent requests
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	log.Info().Str("driver", cfg.Database.Driver).Msg("Database connection established")
	return db, nil
}

// AutoMigrate creates or updates every table the service owns, including
// the unique constraints the lifecycle relies on.
func AutoMigrate(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Specialization{},
		&model.User{},
		&model.Exam{},
		&model.Question{},
		&model.QuestionOption{},
		&model.ExamAssignment{},
		&model.StudentResponse{},
		&model.SuspiciousActivity{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
