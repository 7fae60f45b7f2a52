package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Database drivers understood by the server.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds the settings of the catalog server.
type Config struct {
	AppPort       string
	DBDriver      string
	DatabaseDSN   string
	JWTSecret     string
	RabbitMQURL   string
	LogLevel      string
	LogFormat     string
	AdminUsername string
	AdminEmail    string
	AdminPassword string
	SeedDemoData  bool
}

// Load reads the configuration from the environment. Values found in the
// given .env files (".env" when none are named) are loaded first and never
// override variables that are already set.
func Load(envFiles ...string) (*Config, []string, error) {
	var warnings []string
	if err := godotenv.Load(envFiles...); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			warnings = append(warnings, ".env file not found, using environment variables or defaults")
		} else {
			warnings = append(warnings, fmt.Sprintf("error loading .env file: %v", err))
		}
	}

	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_DSN", "catalog.db")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_EMAIL", "admin@catalog.local")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("SEED_DEMO_DATA", false)
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:       v.GetString("APP_PORT"),
		DBDriver:      strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:   v.GetString("DATABASE_DSN"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		RabbitMQURL:   v.GetString("RABBITMQ_URL"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		LogFormat:     strings.ToLower(v.GetString("LOG_FORMAT")),
		AdminUsername: v.GetString("ADMIN_USERNAME"),
		AdminEmail:    v.GetString("ADMIN_EMAIL"),
		AdminPassword: v.GetString("ADMIN_PASSWORD"),
		SeedDemoData:  v.GetBool("SEED_DEMO_DATA"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, warnings, err
	}
	return cfg, warnings, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for driver %q", c.DBDriver)
		}
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required for driver %q", c.DBDriver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want sqlite, postgres or memory)", c.DBDriver)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("unsupported LOG_FORMAT %q (want json or text)", c.LogFormat)
	}
	return nil
}

// NewLogger builds the process logger. An unknown level falls back to info.
func NewLogger(level, format string) *logrus.Logger {
	logger := logrus.New()
	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logger.SetOutput(os.Stdout)

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("Invalid log level '%s', using default 'info'. Error: %v", level, err)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	return logger
}
