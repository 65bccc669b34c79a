package testutils

import (
	"time"

	"github.com/pushchain/push-dca-node/simulation"
)

// TestConfig sizes the pool and the accounts SetupChain creates.
type TestConfig struct {
	BaseDenom      string
	QuoteDenom     string
	PoolBase       int64
	PoolQuote      int64
	DefaultCoinAmt int64
	GenesisTime    time.Time
}

// GetDefaultTestConfig opens the scenario pair at 10 quote per base.
func GetDefaultTestConfig() TestConfig {
	return TestConfig{
		BaseDenom:      simulation.ScenarioBaseDenom,
		QuoteDenom:     simulation.ScenarioQuoteDenom,
		PoolBase:       1_000_000_000,
		PoolQuote:      10_000_000_000,
		DefaultCoinAmt: 100_000_000,
		GenesisTime:    time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
	}
}
