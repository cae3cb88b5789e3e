package database

import (
	"fmt"
	"time"

	"github.com/bynikesh/findmyai-sub001/internal/config"
	"github.com/bynikesh/findmyai-sub001/internal/logger"
	"github.com/bynikesh/findmyai-sub001/internal/models"
	"github.com/bynikesh/findmyai-sub001/internal/telemetry"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the database connection
var DB *gorm.DB

// Initialize opens the configured database and installs it as DB
func Initialize(cfg *config.Config) error {
	gormLogger := gormlogger.Default.LogMode(gormlogger.Warn)
	if cfg.Environment == "development" {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Database.Driver {
	case "sqlite":
		db, err = openSQLite(cfg.Database.Path, gormLogger)
	default:
		db, err = openPostgres(postgresDSN(cfg), gormLogger)
	}
	if err != nil {
		return err
	}

	if cfg.Telemetry.Enabled {
		system := "postgresql"
		if cfg.Database.Driver == "sqlite" {
			system = "sqlite"
		}
		if err := db.Use(telemetry.GORMTracingPlugin(system)); err != nil {
			logger.Log.Warn("Failed to install GORM tracing plugin", zap.Error(err))
		}
	}

	DB = db
	logger.Log.Info("Database connected", zap.String("driver", cfg.Database.Driver))
	return nil
}

// OpenSQLite opens a SQLite database. Pass ":memory:" for an ephemeral store.
func OpenSQLite(path string) (*gorm.DB, error) {
	return openSQLite(path, gormlogger.Default.LogMode(gormlogger.Silent))
}

func openSQLite(path string, l gormlogger.Interface) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig(l))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	// every :memory: connection is its own database
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

func openPostgres(dsn string, l gormlogger.Interface) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig(l))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func gormConfig(l gormlogger.Interface) *gorm.Config {
	return &gorm.Config{
		Logger:         l,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func postgresDSN(cfg *config.Config) string {
	if cfg.Database.URL != "" {
		return cfg.Database.URL
	}
	d := cfg.Database
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// Migrate runs auto-migration for all models on DB
func Migrate() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	if err := MigrateDB(DB); err != nil {
		return err
	}
	logger.Log.Info("Database migrations completed")
	return nil
}

// MigrateDB creates or updates the schema on db
func MigrateDB(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Tag{},
		&models.Tool{},
		&models.ToolView{},
		&models.ToolClick{},
		&models.Review{},
		&models.ImportRun{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func createIndexes(db *gorm.DB) error {
	statements := []string{
		// case-insensitive name lookups during import dedup and login
		"CREATE INDEX IF NOT EXISTS idx_tools_name_lower ON tools (LOWER(name))",
		"CREATE INDEX IF NOT EXISTS idx_users_email_lower ON users (LOWER(email))",
		"CREATE INDEX IF NOT EXISTS idx_tools_trending ON tools (is_trending, trending_score DESC)",
		"CREATE INDEX IF NOT EXISTS idx_import_runs_created ON import_runs (created_at DESC)",
	}
	if db.Dialector.Name() == "postgres" {
		statements = append(statements,
			"CREATE INDEX IF NOT EXISTS idx_tools_search ON tools USING gin(to_tsvector('english', name || ' ' || coalesce(description, '')))",
		)
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health checks database connectivity
func Health() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
