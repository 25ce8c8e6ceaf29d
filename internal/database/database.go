package database

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/reading-tracker/internal/config"
	"github.com/mrlokans/reading-tracker/internal/entities"
)

const (
	// DefaultUserID owns all data when authentication is disabled.
	DefaultUserID   uint = 1
	DefaultUsername      = "local"
)

// Models lists every persisted entity in dependency order.
func Models() []interface{} {
	return []interface{}{
		&entities.User{},
		&entities.Book{},
		&entities.Category{},
		&entities.BookCategory{},
		&entities.Challenge{},
		&entities.ReadingSession{},
		&entities.Highlight{},
		&entities.AuditEvent{},
	}
}

type Database struct {
	DB *gorm.DB
}

func NewDatabase(cfg config.Database, log *zap.Logger) (*Database, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == config.DriverMySQL {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db}
	if err := database.seedDefaultUser(); err != nil {
		return nil, fmt.Errorf("failed to seed default user: %w", err)
	}

	log.Info("database initialized",
		zap.String("driver", driverName(cfg)),
		zap.String("target", target(cfg)),
	)

	return database, nil
}

// Dialector picks the gorm driver for the configured backend. SQLite
// connections always run with foreign keys enabled so cascades apply.
func Dialector(cfg config.Database) (gorm.Dialector, error) {
	switch driverName(cfg) {
	case config.DriverSQLite:
		return sqlite.Open(sqliteDSN(cfg.Path)), nil
	case config.DriverMySQL:
		return mysql.Open(mysqlDSN(cfg)), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) seedDefaultUser() error {
	var existing entities.User
	err := d.DB.First(&existing, DefaultUserID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return d.DB.Create(&entities.User{ID: DefaultUserID, Username: DefaultUsername}).Error
}

func driverName(cfg config.Database) string {
	if cfg.Driver == "" {
		return config.DriverSQLite
	}
	return cfg.Driver
}

func target(cfg config.Database) string {
	if driverName(cfg) == config.DriverMySQL {
		return fmt.Sprintf("%s:%d/%s", cfg.Host, cfg.Port, cfg.Name)
	}
	return cfg.Path
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}

// Special characters in the password must be URL encoded for the mysql DSN.
func mysqlDSN(cfg config.Database) string {
	userInfo := url.UserPassword(cfg.User, cfg.Password).String()
	return fmt.Sprintf("%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC&timeout=30s",
		userInfo, cfg.Host, cfg.Port, cfg.Name)
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
