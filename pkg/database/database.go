package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"weather-pipeline/pkg/logging"
	"weather-pipeline/pkg/metrics"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Supported storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds database connection configuration.
type Config struct {
	Driver string

	// SQLite
	Path string

	// PostgreSQL
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

// DB wraps sqlx.DB with query metrics and dialect-aware placeholder binding.
// Queries are written with ? placeholders and rebound for PostgreSQL.
type DB struct {
	db      *sqlx.DB
	driver  string
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
	config  *Config
}

// New opens a database connection for the configured driver.
func New(cfg *Config, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) (*DB, error) {
	var db *sqlx.DB

	switch cfg.Driver {
	case DriverSQLite:
		dir := filepath.Dir(cfg.Path)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("creating db directory: %w", err)
			}
		}

		var err error
		db, err = sqlx.Open("sqlite", cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite: %w", err)
		}

		for _, pragma := range []string{
			"PRAGMA busy_timeout=5000",
			"PRAGMA foreign_keys=ON",
		} {
			if _, err := db.Exec(pragma); err != nil {
				db.Close()
				return nil, fmt.Errorf("setting pragma %q: %w", pragma, err)
			}
		}

		// A single connection avoids SQLITE_BUSY under the write path and
		// keeps in-memory databases coherent.
		db.SetMaxOpenConns(1)

	case DriverPostgres:
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
		)

		var err error
		db, err = sqlx.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("opening postgres: %w", err)
		}

		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	logger.Info(context.Background(), "[DB_INIT] Database connection established", logging.Fields{
		"driver": cfg.Driver,
	})

	return &DB{
		db:      db,
		driver:  cfg.Driver,
		logger:  logger,
		metrics: metricsCollector,
		config:  cfg,
	}, nil
}

// Migrate applies all pending schema migrations.
func (d *DB) Migrate() error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(d.gooseDialect()); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.Up(d.db.DB, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// MigrateDown rolls back the most recent migration.
func (d *DB) MigrateDown() error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(d.gooseDialect()); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.Down(d.db.DB, "migrations"); err != nil {
		return fmt.Errorf("rolling back migration: %w", err)
	}
	return nil
}

func (d *DB) gooseDialect() string {
	if d.driver == DriverSQLite {
		return "sqlite3"
	}
	return "postgres"
}

// Close closes the database connection.
func (d *DB) Close() error {
	d.logger.Info(context.Background(), "[DB_CLOSE] Closing database connection", logging.Fields{
		"driver": d.driver,
	})
	return d.db.Close()
}

// DB returns the underlying sqlx.DB instance.
func (d *DB) DB() *sqlx.DB {
	return d.db
}

// Driver returns the configured driver name.
func (d *DB) Driver() string {
	return d.driver
}

// ExecContext executes a command with context and metrics.
func (d *DB) ExecContext(ctx context.Context, queryType, query string, args ...interface{}) (sql.Result, error) {
	timer := time.Now()
	defer func() {
		duration := time.Since(timer)
		d.metrics.DBQueryDuration.WithLabelValues(queryType).Observe(duration.Seconds())

		d.logger.Debug(ctx, "[DB_EXEC] Command executed", logging.Fields{
			"query_type":  queryType,
			"duration_ms": duration.Milliseconds(),
		})
	}()

	result, err := d.db.ExecContext(ctx, d.db.Rebind(query), args...)
	if err != nil {
		d.metrics.RecordDBError("exec_error")
		d.logger.Error(ctx, "[DB_EXEC_ERROR] Command failed", logging.Fields{
			"query_type": queryType,
		}, err)
		return nil, err
	}

	return result, nil
}

// GetContext executes a query that returns a single row.
func (d *DB) GetContext(ctx context.Context, queryType string, dest interface{}, query string, args ...interface{}) error {
	timer := time.Now()
	defer func() {
		d.metrics.DBQueryDuration.WithLabelValues(queryType).Observe(time.Since(timer).Seconds())
	}()

	err := d.db.GetContext(ctx, dest, d.db.Rebind(query), args...)
	if err != nil && err != sql.ErrNoRows {
		d.metrics.RecordDBError("get_error")
		d.logger.Error(ctx, "[DB_GET_ERROR] Get query failed", logging.Fields{
			"query_type": queryType,
		}, err)
	}

	return err
}

// SelectContext executes a query that returns multiple rows.
func (d *DB) SelectContext(ctx context.Context, queryType string, dest interface{}, query string, args ...interface{}) error {
	timer := time.Now()
	defer func() {
		d.metrics.DBQueryDuration.WithLabelValues(queryType).Observe(time.Since(timer).Seconds())
	}()

	err := d.db.SelectContext(ctx, dest, d.db.Rebind(query), args...)
	if err != nil {
		d.metrics.RecordDBError("select_error")
		d.logger.Error(ctx, "[DB_SELECT_ERROR] Select query failed", logging.Fields{
			"query_type": queryType,
		}, err)
		return err
	}

	return nil
}

// HealthCheck performs a database health check.
func (d *DB) HealthCheck(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}
