package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"weather-pipeline/pkg/database"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Ingestion IngestionConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds storage settings for either supported driver.
type DatabaseConfig struct {
	Driver          string
	Path            string // sqlite
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// IngestionConfig holds batch ingestion settings.
type IngestionConfig struct {
	// DataDir is the directory scanned for station files.
	DataDir string
	// FileExtension selects which files in DataDir are ingested.
	FileExtension string
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string
}

// LoadConfig reads configuration from environment variables with a WEATHER_
// prefix, loading a .env file first when one is present.
func LoadConfig() (*Config, error) {
	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("WEATHER")
	v.AutomaticEnv()

	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("server_port", 8080)
	v.SetDefault("server_read_timeout", "15s")
	v.SetDefault("server_write_timeout", "30s")
	v.SetDefault("server_idle_timeout", "60s")

	v.SetDefault("db_driver", database.DriverSQLite)
	v.SetDefault("db_path", "data/weather.db")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", 5432)
	v.SetDefault("db_user", "weather")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "weather")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("db_max_open_conns", 25)
	v.SetDefault("db_max_idle_conns", 5)
	v.SetDefault("db_conn_max_lifetime", "30m")
	v.SetDefault("db_conn_max_idle_time", "5m")

	v.SetDefault("data_dir", "wx_data")
	v.SetDefault("file_extension", ".txt")

	v.SetDefault("log_level", "info")

	cfg := &Config{
		Server: ServerConfig{
			Host:         v.GetString("server_host"),
			Port:         v.GetInt("server_port"),
			ReadTimeout:  v.GetDuration("server_read_timeout"),
			WriteTimeout: v.GetDuration("server_write_timeout"),
			IdleTimeout:  v.GetDuration("server_idle_timeout"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("db_driver"),
			Path:            v.GetString("db_path"),
			Host:            v.GetString("db_host"),
			Port:            v.GetInt("db_port"),
			User:            v.GetString("db_user"),
			Password:        v.GetString("db_password"),
			Database:        v.GetString("db_name"),
			SSLMode:         v.GetString("db_sslmode"),
			MaxOpenConns:    v.GetInt("db_max_open_conns"),
			MaxIdleConns:    v.GetInt("db_max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("db_conn_max_lifetime"),
			ConnMaxIdleTime: v.GetDuration("db_conn_max_idle_time"),
		},
		Ingestion: IngestionConfig{
			DataDir:       v.GetString("data_dir"),
			FileExtension: v.GetString("file_extension"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("log_level"),
		},
	}

	return cfg, nil
}

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}

	switch c.Database.Driver {
	case database.DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("db_path is required for the sqlite driver")
		}
	case database.DriverPostgres:
		if c.Database.Host == "" || c.Database.Database == "" {
			return fmt.Errorf("db_host and db_name are required for the postgres driver")
		}
	default:
		return fmt.Errorf("db_driver must be %q or %q, got %q",
			database.DriverSQLite, database.DriverPostgres, c.Database.Driver)
	}

	if c.Ingestion.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.Ingestion.FileExtension == "" {
		return fmt.Errorf("file_extension is required")
	}

	return nil
}

// DatabaseConfigFor maps the application configuration onto the database
// package's connection config.
func (c *Config) DatabaseConfigFor() *database.Config {
	return &database.Config{
		Driver:          c.Database.Driver,
		Path:            c.Database.Path,
		Host:            c.Database.Host,
		Port:            c.Database.Port,
		User:            c.Database.User,
		Password:        c.Database.Password,
		Database:        c.Database.Database,
		SSLMode:         c.Database.SSLMode,
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		ConnMaxIdleTime: c.Database.ConnMaxIdleTime,
	}
}
