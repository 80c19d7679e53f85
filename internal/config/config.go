package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/routinely/internal/constants"
)

// Config is the optional YAML configuration file plus environment overrides.
type Config struct {
	// Database is a SQLite file path or a PostgreSQL URL without a password.
	Database string `yaml:"database"`
	// UserID scopes every query. The CLI is single-user.
	UserID            string `yaml:"user_id"`
	UpcomingLimit     int    `yaml:"upcoming_limit"`
	StatsWindowDays   int    `yaml:"stats_window_days"`
	StrictTransitions bool   `yaml:"strict_transitions"`
	Debug             bool   `yaml:"debug"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Database:        constants.DefaultDBPath,
		UserID:          constants.DefaultUserID,
		UpcomingLimit:   constants.DefaultUpcomingLimit,
		StatsWindowDays: constants.DefaultStatsWindowDays,
	}
}

// DefaultPath returns the config file location, honoring ROUTINELY_CONFIG.
func DefaultPath() string {
	if p := os.Getenv(constants.EnvConfig); p != "" {
		return p
	}
	return filepath.Join(constants.DefaultConfigDir, constants.DefaultConfigFile)
}

// Load reads the config file at path. A missing file yields the defaults.
// ${VAR} placeholders in the file are replaced from the environment, and
// ROUTINELY_* variables override file values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(ExpandHome(path))
	switch {
	case err == nil:
		content := expandPlaceholders(string(data))
		if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
			return Config{}, fmt.Errorf("error parsing config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func expandPlaceholders(content string) string {
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}
		content = strings.ReplaceAll(content, "${"+pair[0]+"}", pair[1])
	}
	return content
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(constants.EnvDatabase); v != "" {
		c.Database = v
	}
	if v := os.Getenv(constants.EnvUserID); v != "" {
		c.UserID = v
	}
	if v := os.Getenv(constants.EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value: %w", constants.EnvDebug, err)
		}
		c.Debug = debug
	}
	return nil
}

func (c *Config) applyDefaults() {
	defaults := Default()
	if c.Database == "" {
		c.Database = defaults.Database
	}
	if c.UserID == "" {
		c.UserID = defaults.UserID
	}
	if c.UpcomingLimit == 0 {
		c.UpcomingLimit = defaults.UpcomingLimit
	}
	if c.StatsWindowDays == 0 {
		c.StatsWindowDays = defaults.StatsWindowDays
	}
}

// Validate rejects values no component can work with.
func (c Config) Validate() error {
	if c.UpcomingLimit < 0 {
		return fmt.Errorf("upcoming_limit must be positive, got %d", c.UpcomingLimit)
	}
	if c.StatsWindowDays < 0 {
		return fmt.Errorf("stats_window_days must be positive, got %d", c.StatsWindowDays)
	}
	if strings.TrimSpace(c.UserID) == "" {
		return errors.New("user_id cannot be empty")
	}
	return nil
}

// IsPostgres reports whether Database is a PostgreSQL URL.
func (c Config) IsPostgres() bool {
	return IsPostgresURL(c.Database)
}

// IsPostgresURL reports whether s uses a postgres:// or postgresql:// scheme.
func IsPostgresURL(s string) bool {
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://")
}

// Dir returns the directory holding the config file, used for logs.
func Dir(path string) string {
	return filepath.Dir(ExpandHome(path))
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Save writes the config as YAML, creating the parent directory.
func Save(path string, cfg Config) error {
	path = ExpandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
