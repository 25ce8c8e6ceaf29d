package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // Single local user, no credentials (default)
	AuthModeToken AuthMode = "token" // Bearer API tokens issued by `user create`
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Log
		Auth
		Audit
		Tasks
		Backup
		Streaks
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Driver   string // sqlite or mysql
		Path     string // sqlite file
		Host     string
		Port     int
		User     string
		Password string
		Name     string
		LogLevel string // silent, error, warn, info
	}
	Log struct {
		Level  string
		Format string // json or console
	}
	Auth struct {
		Mode        AuthMode
		TokenExpiry time.Duration // zero disables expiry
	}
	Audit struct {
		Dir           string // archived import payloads, empty disables archiving
		RetentionDays int    // Days to keep audit events (default: 30)
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
		DatabasePath    string
	}
	Backup struct {
		Enabled  bool
		Schedule string // Cron format: "0 3 * * *" = daily at 03:00
		Dir      string // used when Storage.Endpoint is empty
		Storage  Storage
	}
	Storage struct {
		Endpoint  string
		AccessKey string
		SecretKey string
		Bucket    string
		UseSSL    bool
		Region    string
	}
	Streaks struct {
		Timezone string // IANA name, session starts are bucketed into days in this zone
	}
)

// Location resolves the streak time zone, falling back to UTC for unknown names.
func (s Streaks) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// NewConfig reads configuration from the environment after loading an
// optional .env file from the working directory. Variables already set in
// the environment win over the file.
func NewConfig() *Config {
	_ = godotenv.Load(".env")
	return fromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	v.SetDefault("database_driver", DriverSQLite)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_host", "localhost")
	v.SetDefault("database_port", 3306)
	v.SetDefault("database_user", "root")
	v.SetDefault("database_password", "")
	v.SetDefault("database_name", "reading_tracker")
	v.SetDefault("database_log_level", "warn")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	v.SetDefault("auth_mode", "none")
	v.SetDefault("auth_token_expiry", "0s")

	v.SetDefault("audit_dir", "./audit")
	v.SetDefault("audit_retention_days", 30)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_database_path", DefaultTasksDatabasePath)

	v.SetDefault("backup_enabled", false)
	v.SetDefault("backup_schedule", "0 3 * * *") // Daily at 03:00
	v.SetDefault("backup_dir", "./backups")
	v.SetDefault("backup_storage_endpoint", "")
	v.SetDefault("backup_storage_access_key", "")
	v.SetDefault("backup_storage_secret_key", "")
	v.SetDefault("backup_storage_bucket", "reading-tracker-backups")
	v.SetDefault("backup_storage_use_ssl", false)
	v.SetDefault("backup_storage_region", "us-east-1")

	v.SetDefault("streaks_timezone", "UTC")
	return v
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver:   v.GetString("DATABASE_DRIVER"),
			Path:     v.GetString("DATABASE_PATH"),
			Host:     v.GetString("DATABASE_HOST"),
			Port:     v.GetInt("DATABASE_PORT"),
			User:     v.GetString("DATABASE_USER"),
			Password: v.GetString("DATABASE_PASSWORD"),
			Name:     v.GetString("DATABASE_NAME"),
			LogLevel: v.GetString("DATABASE_LOG_LEVEL"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Auth: Auth{
			Mode:        AuthMode(v.GetString("AUTH_MODE")),
			TokenExpiry: v.GetDuration("AUTH_TOKEN_EXPIRY"),
		},
		Audit: Audit{
			Dir:           v.GetString("AUDIT_DIR"),
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
			DatabasePath:    v.GetString("TASK_DATABASE_PATH"),
		},
		Backup: Backup{
			Enabled:  v.GetBool("BACKUP_ENABLED"),
			Schedule: v.GetString("BACKUP_SCHEDULE"),
			Dir:      v.GetString("BACKUP_DIR"),
			Storage: Storage{
				Endpoint:  v.GetString("BACKUP_STORAGE_ENDPOINT"),
				AccessKey: v.GetString("BACKUP_STORAGE_ACCESS_KEY"),
				SecretKey: v.GetString("BACKUP_STORAGE_SECRET_KEY"),
				Bucket:    v.GetString("BACKUP_STORAGE_BUCKET"),
				UseSSL:    v.GetBool("BACKUP_STORAGE_USE_SSL"),
				Region:    v.GetString("BACKUP_STORAGE_REGION"),
			},
		},
		Streaks: Streaks{
			Timezone: v.GetString("STREAKS_TIMEZONE"),
		},
	}
}
