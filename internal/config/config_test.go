package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "data/weather.db", cfg.Database.Path)
	assert.Equal(t, "wx_data", cfg.Ingestion.DataDir)
	assert.Equal(t, ".txt", cfg.Ingestion.FileExtension)
	assert.Equal(t, "info", cfg.Logging.Level)

	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("WEATHER_SERVER_PORT", "9090")
	t.Setenv("WEATHER_DB_DRIVER", "postgres")
	t.Setenv("WEATHER_DB_HOST", "db.internal")
	t.Setenv("WEATHER_DB_NAME", "wx")
	t.Setenv("WEATHER_DATA_DIR", "/srv/wx_data")
	t.Setenv("WEATHER_LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "/srv/wx_data", cfg.Ingestion.DataDir)
	assert.Equal(t, "debug", cfg.Logging.Level)

	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "oracle" },
			wantErr: "db_driver",
		},
		{
			name: "sqlite without path",
			mutate: func(c *Config) {
				c.Database.Driver = "sqlite"
				c.Database.Path = ""
			},
			wantErr: "db_path",
		},
		{
			name: "postgres without host",
			mutate: func(c *Config) {
				c.Database.Driver = "postgres"
				c.Database.Host = ""
			},
			wantErr: "db_host",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "port",
		},
		{
			name:    "missing data dir",
			mutate:  func(c *Config) { c.Ingestion.DataDir = "" },
			wantErr: "data_dir",
		},
		{
			name:    "missing extension",
			mutate:  func(c *Config) { c.Ingestion.FileExtension = "" },
			wantErr: "file_extension",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig()
			require.NoError(t, err)

			tt.mutate(cfg)

			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
