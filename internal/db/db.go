package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/neuroplay/neuroplay-backend/internal/logger"
	"github.com/neuroplay/neuroplay-backend/internal/types"
	"github.com/neuroplay/neuroplay-backend/internal/utils"
)

type Service struct {
	db     *gorm.DB
	driver string
	log    *logger.Logger
}

// NewService opens the durable store. DB_DRIVER selects postgres
// (default) or sqlite for local development and tests.
func NewService(log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "DBService")

	driver := utils.GetEnv("DB_DRIVER", "postgres", log)

	var (
		gdb *gorm.DB
		err error
	)
	switch driver {
	case "postgres":
		postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
		postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
		postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
		postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
		postgresName := utils.GetEnv("POSTGRES_NAME", "neuroplay", log)
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

		log.Info("Connecting to Postgres...")
		gdb, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
			TranslateError:                           true,
		})
		if err != nil {
			log.Error("Failed to connect to Postgres", "error", err)
			return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
		}
		if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
			log.Error("Failed to enable uuid-ossp extension", "error", err)
			return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
		}
	case "sqlite":
		path := utils.GetEnv("SQLITE_PATH", "neuroplay.db", log)
		log.Info("Opening SQLite database...", "path", path)
		gdb, err = gorm.Open(sqlite.Open(path), &gorm.Config{TranslateError: true})
		if err != nil {
			log.Error("Failed to open SQLite database", "error", err)
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	return &Service{db: gdb, driver: driver, log: serviceLog}, nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	err := s.db.AutoMigrate(
		&types.Observer{},
		&types.ObserverToken{},
		&types.Learner{},
		&types.Session{},
		&types.PatternSnapshot{},
		&types.TrendSummary{},
		&types.Report{},
	)
	if err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if s.driver != "postgres" {
		return nil
	}
	s.log.Info("Configuring foreign key relationships...")
	constraints := []struct {
		name string
		stmt string
	}{
		{"fk_observer_token_observer_id", `
			ALTER TABLE "observer_token"
			ADD CONSTRAINT "fk_observer_token_observer_id"
			FOREIGN KEY ("observer_id")
			REFERENCES "observer"("id")
			ON DELETE CASCADE`},
		{"fk_learner_observer_id", `
			ALTER TABLE "learner"
			ADD CONSTRAINT "fk_learner_observer_id"
			FOREIGN KEY ("observer_id")
			REFERENCES "observer"("id")
			ON DELETE CASCADE`},
		{"fk_session_learner_id", `
			ALTER TABLE "session"
			ADD CONSTRAINT "fk_session_learner_id"
			FOREIGN KEY ("learner_id")
			REFERENCES "learner"("id")
			ON DELETE CASCADE`},
		{"fk_pattern_snapshot_learner_id", `
			ALTER TABLE "pattern_snapshot"
			ADD CONSTRAINT "fk_pattern_snapshot_learner_id"
			FOREIGN KEY ("learner_id")
			REFERENCES "learner"("id")
			ON DELETE CASCADE`},
		{"fk_pattern_snapshot_session_id", `
			ALTER TABLE "pattern_snapshot"
			ADD CONSTRAINT "fk_pattern_snapshot_session_id"
			FOREIGN KEY ("session_id")
			REFERENCES "session"("id")
			ON DELETE CASCADE`},
		{"fk_trend_summary_learner_id", `
			ALTER TABLE "trend_summary"
			ADD CONSTRAINT "fk_trend_summary_learner_id"
			FOREIGN KEY ("learner_id")
			REFERENCES "learner"("id")
			ON DELETE CASCADE`},
		{"fk_report_learner_id", `
			ALTER TABLE "report"
			ADD CONSTRAINT "fk_report_learner_id"
			FOREIGN KEY ("learner_id")
			REFERENCES "learner"("id")
			ON DELETE CASCADE`},
	}
	for _, c := range constraints {
		drop := fmt.Sprintf(`ALTER TABLE %s DROP CONSTRAINT IF EXISTS %q`, tableOf(c.name), c.name)
		if err := s.db.Exec(drop).Error; err != nil {
			return fmt.Errorf("failed to drop %s: %w", c.name, err)
		}
		if err := s.db.Exec(c.stmt).Error; err != nil {
			return fmt.Errorf("failed to add %s: %w", c.name, err)
		}
	}
	return nil
}

// tableOf maps a constraint name back to its table. Constraint names
// are fk_<table>_<column> with a known column suffix.
func tableOf(constraint string) string {
	switch constraint {
	case "fk_observer_token_observer_id":
		return `"observer_token"`
	case "fk_learner_observer_id":
		return `"learner"`
	case "fk_session_learner_id":
		return `"session"`
	case "fk_pattern_snapshot_learner_id", "fk_pattern_snapshot_session_id":
		return `"pattern_snapshot"`
	case "fk_trend_summary_learner_id":
		return `"trend_summary"`
	case "fk_report_learner_id":
		return `"report"`
	}
	return ""
}

func (s *Service) DB() *gorm.DB {
	return s.db
}

func (s *Service) Driver() string {
	return s.driver
}
