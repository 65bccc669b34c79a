package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	configSubdir   = "config"
	configFileName = "keeperbot_config.json"
)

//go:embed default_config.json
var defaultConfigJSON []byte

func validateConfig(cfg *Config) error {
	// Validate log level
	if cfg.LogLevel < 0 || cfg.LogLevel > 5 {
		return fmt.Errorf("log level must be between 0 and 5")
	}

	// Validate log format
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return fmt.Errorf("log format must be 'json' or 'console'")
	}

	if cfg.DBFile == "" {
		cfg.DBFile = "keeperbot.db"
	}
	if cfg.APIPort == 0 {
		cfg.APIPort = 8080
	}
	if cfg.APIPort < 0 || cfg.APIPort > 65535 {
		return fmt.Errorf("api port must be between 1 and 65535")
	}

	// Set defaults for the sweeper
	if cfg.SweepIntervalSeconds == 0 {
		cfg.SweepIntervalSeconds = 10
	}
	if cfg.EventBatchSize == 0 {
		cfg.EventBatchSize = 500
	}
	if cfg.StaleCacheAfterSeconds == 0 {
		cfg.StaleCacheAfterSeconds = 600
	}
	if cfg.SweepRetentionSeconds == 0 {
		cfg.SweepRetentionSeconds = 7 * 24 * 3600
	}
	if cfg.SweepIntervalSeconds < 0 || cfg.StaleCacheAfterSeconds < 0 || cfg.SweepRetentionSeconds < 0 {
		return fmt.Errorf("sweeper durations cannot be negative")
	}

	// Set defaults for the simulation
	if cfg.Simulation.StepSeconds == 0 {
		cfg.Simulation.StepSeconds = 3600
	}
	if cfg.Simulation.Volatility == 0 {
		cfg.Simulation.Volatility = 0.01
	}
	if cfg.Simulation.Vaults < 0 {
		return fmt.Errorf("simulation vault count cannot be negative")
	}
	if cfg.Simulation.Volatility < 0 || cfg.Simulation.Volatility > 0.2 {
		return fmt.Errorf("simulation volatility must be between 0 and 0.2")
	}

	return nil
}

// Save writes the given config to <BasePath>/config/keeperbot_config.json.
func Save(cfg *Config, basePath string) error {
	if err := validateConfig(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	path := FilePath(basePath)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

// Load reads <BasePath>/config/keeperbot_config.json and fills in defaults.
func Load(basePath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(FilePath(basePath)))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := parse(data)
	if err != nil {
		return Config{}, err
	}
	return *cfg, nil
}

// LoadOrDefault loads the config under basePath, falling back to the
// embedded defaults when no file has been written yet.
func LoadOrDefault(basePath string) (Config, error) {
	cfg, err := Load(basePath)
	if err == nil {
		return cfg, nil
	}
	if _, statErr := os.Stat(FilePath(basePath)); !os.IsNotExist(statErr) {
		return Config{}, err
	}
	def, err := LoadDefaultConfig()
	if err != nil {
		return Config{}, err
	}
	return *def, nil
}

// LoadDefaultConfig loads the default configuration from embedded JSON
func LoadDefaultConfig() (*Config, error) {
	cfg, err := parse(defaultConfigJSON)
	if err != nil {
		return nil, fmt.Errorf("default config: %w", err)
	}
	return cfg, nil
}

func parse(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// FilePath is where Save and Load keep the config under basePath.
func FilePath(basePath string) string {
	return filepath.Join(basePath, configSubdir, configFileName)
}
