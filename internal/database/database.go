package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xelth-com/ecktms/internal/config"
	"github.com/xelth-com/ecktms/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB wraps gorm.DB and remembers which driver opened it
type DB struct {
	*gorm.DB
	Driver string
}

// Connect opens the local cache database (sqlite file or PostgreSQL)
func Connect(cfg config.CacheConfig) (*DB, error) {
	log := logger.For("database")

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create cache directory: %w", err)
			}
		}
		log.Infof("📦 Mode: [SQLite] - Opening local cache at %s", cfg.Path)
		dialector = sqlite.Open(cfg.Path)
	case "postgres":
		db := cfg.Database
		log.Infof("🌐 Mode: [External PostgreSQL] - Connecting to %s:%s", db.Host, db.Port)
		dsn := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			db.Host,
			db.Port,
			db.Username,
			db.Password,
			db.Database,
		)
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	logLevel := gormlogger.Warn
	if cfg.Database.Silent {
		logLevel = gormlogger.Silent
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err == nil {
		if cfg.Driver == "sqlite" {
			// One writer at a time keeps sqlite out of "database is locked"
			sqlDB.SetMaxOpenConns(1)
		} else {
			sqlDB.SetMaxIdleConns(10)
			sqlDB.SetMaxOpenConns(100)
		}
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	log.Info("✅ Database connection established")

	return &DB{DB: db, Driver: cfg.Driver}, nil
}

// Close closes the underlying connection pool
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrate triggers GORM schema synchronization
func (db *DB) AutoMigrate(models ...interface{}) error {
	return db.DB.AutoMigrate(models...)
}
