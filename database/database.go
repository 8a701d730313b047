package database

import (
	"fmt"
	"strings"

	"github.com/lshigami/jlpt-assessment/config"
	"github.com/lshigami/jlpt-assessment/internal/model"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// NewDatabase opens the relational store. TranslateError is on so unique
// violations surface as gorm.ErrDuplicatedKey on every driver.
func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
	}

	var dialector gorm.Dialector
	switch strings.ToLower(cfg.Database.Driver) {
	case "sqlite":
		name := cfg.Database.Name
		if name == "" {
			name = "file::memory:?cache=shared"
		}
		dialector = sqlite.Open(name)
	case "postgres", "":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name, cfg.Database.SSLMode)
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		log.Error().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to connect to database")
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info().Str("driver", cfg.Database.Driver).Msg("Database connection established")
	return db, nil
}

// Migrate creates the schema plus the indexes gorm tags cannot express.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&model.Test{}, "QuestionSets", &model.TestQuestionSet{}); err != nil {
		return fmt.Errorf("setup test_question_sets join table: %w", err)
	}

	err := db.AutoMigrate(
		&model.Language{},
		&model.Translation{},
		&model.Test{},
		&model.QuestionSet{},
		&model.TestQuestionSet{},
		&model.Question{},
		&model.Answer{},
		&model.QuestionSetQuestion{},
		&model.Entitlement{},
		&model.Attempt{},
		&model.AnswerLog{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// At most one live attempt per (user, test). Both postgres and sqlite
	// support partial unique indexes.
	liveIdx := `CREATE UNIQUE INDEX IF NOT EXISTS idx_attempts_live ON attempts (user_id, test_id) WHERE status = 'IN_PROGRESS'`
	if err := db.Exec(liveIdx).Error; err != nil {
		return fmt.Errorf("create idx_attempts_live: %w", err)
	}
	return nil
}
