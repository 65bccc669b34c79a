package config

import "time"

type Config struct {
	// Log Config
	LogLevel   int    `json:"log_level"`   // e.g., 0 = debug, 1 = info, etc.
	LogFormat  string `json:"log_format"`  // "json" or "console"
	LogSampler bool   `json:"log_sampler"` // if true, samples logs (e.g., 1 in 5)

	// Storage
	DBFile string `json:"db_file"` // sqlite file under <home>/data, ":memory:" for none (default: keeperbot.db)

	// Query Server Config
	APIPort int `json:"api_port"` // Port for the HTTP API (default: 8080)

	// Sweeper Config
	SweepIntervalSeconds   int    `json:"sweep_interval_seconds"`    // How often to sweep due triggers (default: 10)
	SweepLimit             uint32 `json:"sweep_limit"`               // Max vaults per sweep, 0 uses the chain's param
	EventBatchSize         uint32 `json:"event_batch_size"`          // Events pulled per mirror request (default: 500)
	StaleCacheAfterSeconds int    `json:"stale_cache_after_seconds"` // Age at which an in-flight execution is reported (default: 600)
	SweepRetentionSeconds  int    `json:"sweep_retention_seconds"`   // How long sweep runs are kept (default: 7 days)

	Simulation SimulationConfig `json:"simulation"`
}

// SimulationConfig seeds the in-process chain the bot runs against.
type SimulationConfig struct {
	Seed        int64   `json:"seed"`
	Vaults      int     `json:"vaults"`
	StepSeconds int     `json:"step_seconds"` // block time between price moves (default: 3600)
	Volatility  float64 `json:"volatility"`   // stddev of one step's relative price move (default: 0.01)
	DeferSwaps  bool    `json:"defer_swaps"`  // settle swaps one block later
}

func (c Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

func (c Config) StaleCacheAfter() time.Duration {
	return time.Duration(c.StaleCacheAfterSeconds) * time.Second
}

func (c Config) SweepRetention() time.Duration {
	return time.Duration(c.SweepRetentionSeconds) * time.Second
}

func (c SimulationConfig) Step() time.Duration {
	return time.Duration(c.StepSeconds) * time.Second
}
