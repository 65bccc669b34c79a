package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConfig(t *testing.T) {
	testCases := []struct {
		name        string
		config      *Config
		expectError bool
		errorMsg    string
		validate    func(t *testing.T, cfg *Config)
	}{
		{
			name: "Valid config with all fields",
			config: &Config{
				LogLevel:               2,
				LogFormat:              "json",
				DBFile:                 "bot.db",
				APIPort:                9000,
				SweepIntervalSeconds:   5,
				SweepLimit:             20,
				EventBatchSize:         100,
				StaleCacheAfterSeconds: 60,
				SweepRetentionSeconds:  3600,
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "bot.db", cfg.DBFile)
				assert.Equal(t, 5*time.Second, cfg.SweepInterval())
				assert.Equal(t, time.Minute, cfg.StaleCacheAfter())
				assert.Equal(t, time.Hour, cfg.SweepRetention())
			},
		},
		{
			name: "Invalid log level (too high)",
			config: &Config{
				LogLevel:  6,
				LogFormat: "json",
			},
			expectError: true,
			errorMsg:    "log level must be between 0 and 5",
		},
		{
			name: "Invalid log format",
			config: &Config{
				LogLevel:  2,
				LogFormat: "xml",
			},
			expectError: true,
			errorMsg:    "log format must be 'json' or 'console'",
		},
		{
			name: "Invalid api port",
			config: &Config{
				LogFormat: "json",
				APIPort:   70000,
			},
			expectError: true,
			errorMsg:    "api port must be between 1 and 65535",
		},
		{
			name: "Negative sweep interval",
			config: &Config{
				LogFormat:            "json",
				SweepIntervalSeconds: -1,
			},
			expectError: true,
			errorMsg:    "sweeper durations cannot be negative",
		},
		{
			name: "Volatility out of range",
			config: &Config{
				LogFormat:  "json",
				Simulation: SimulationConfig{Volatility: 0.5},
			},
			expectError: true,
			errorMsg:    "simulation volatility must be between 0 and 0.2",
		},
		{
			name: "Config with defaults applied",
			config: &Config{
				LogLevel:  1,
				LogFormat: "console",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "keeperbot.db", cfg.DBFile)
				assert.Equal(t, 8080, cfg.APIPort)
				assert.Equal(t, 10*time.Second, cfg.SweepInterval())
				assert.Equal(t, uint32(500), cfg.EventBatchSize)
				assert.Equal(t, 10*time.Minute, cfg.StaleCacheAfter())
				assert.Equal(t, 7*24*time.Hour, cfg.SweepRetention())
				assert.Equal(t, time.Hour, cfg.Simulation.Step())
				assert.Equal(t, 0.01, cfg.Simulation.Volatility)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateConfig(tc.config)
			if tc.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errorMsg)
				return
			}
			require.NoError(t, err)
			if tc.validate != nil {
				tc.validate(t, tc.config)
			}
		})
	}
}

func TestLoadDefaultConfig(t *testing.T) {
	cfg, err := LoadDefaultConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 1, cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, uint32(50), cfg.SweepLimit)
	assert.Equal(t, 25, cfg.Simulation.Vaults)
	assert.Equal(t, int64(1), cfg.Simulation.Seed)
}

func TestSaveAndLoad(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		home := t.TempDir()
		cfg, err := LoadDefaultConfig()
		require.NoError(t, err)
		cfg.APIPort = 9191
		cfg.Simulation.Vaults = 3

		require.NoError(t, Save(cfg, home))
		assert.FileExists(t, filepath.Join(home, configSubdir, configFileName))

		loaded, err := Load(home)
		require.NoError(t, err)
		assert.Equal(t, *cfg, loaded)
	})

	t.Run("save rejects invalid config", func(t *testing.T) {
		err := Save(&Config{LogFormat: "xml"}, t.TempDir())
		require.ErrorContains(t, err, "invalid config")
	})

	t.Run("load missing file", func(t *testing.T) {
		_, err := Load(t.TempDir())
		require.ErrorContains(t, err, "failed to read config file")
	})

	t.Run("load corrupt file", func(t *testing.T) {
		home := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(home, configSubdir), 0o750))
		require.NoError(t, os.WriteFile(filepath.Join(home, configSubdir, configFileName), []byte("{"), 0o600))

		_, err := Load(home)
		require.ErrorContains(t, err, "failed to unmarshal config")

		_, err = LoadOrDefault(home)
		require.Error(t, err)
	})

	t.Run("default when nothing saved", func(t *testing.T) {
		cfg, err := LoadOrDefault(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.APIPort)
	})
}
