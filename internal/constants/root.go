package constants

import "time"

const (
	AppName            = "routinely"
	DefaultConfigDir   = "~/.config/routinely"
	DefaultConfigFile  = "config.yaml"
	DefaultDBPath      = "~/.config/routinely/routinely.db"
	DefaultUserID      = "local"
	DefaultKeyringUser = "database-connection"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// View defaults
	DefaultUpcomingLimit   = 3
	DefaultStatsWindowDays = 30
	DaysPerWeek            = 7

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "routinely-"
	BackupFileSuffix = ".db"

	// Postgres connection pool
	PostgresMaxOpenConns    = 25
	PostgresMaxIdleConns    = 25
	PostgresConnMaxLifetime = 5 * time.Minute

	// Environment overrides
	EnvConfig   = "ROUTINELY_CONFIG"
	EnvDatabase = "ROUTINELY_DATABASE"
	EnvUserID   = "ROUTINELY_USER_ID"
	EnvDebug    = "ROUTINELY_DEBUG"
)
