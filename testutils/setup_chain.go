// Package testutils builds funded simulation chains for tests.
package testutils

import (
	"testing"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/pushchain/push-dca-node/simulation"
	"github.com/pushchain/push-dca-node/x/dca/types"
)

type TestAccounts struct {
	Trader sdk.AccAddress
	Other  sdk.AccAddress
}

type ChainSetupOptions struct {
	TestConfig  TestConfig
	ChainConfig simulation.ChainConfig
	// Quiet drops chain logs instead of routing them to t.Log.
	Quiet bool
}

func DefaultChainSetupOptions() ChainSetupOptions {
	return ChainSetupOptions{TestConfig: GetDefaultTestConfig()}
}

// Pair is the venue pair SetupChain opens for cfg.
func Pair(cfg TestConfig) types.Pair {
	pair := simulation.ScenarioPair
	pair.BaseDenom = cfg.BaseDenom
	pair.QuoteDenom = cfg.QuoteDenom
	return pair
}

// SetupChain starts a simulation chain with an open pool and two accounts
// funded with DefaultCoinAmt of the quote denom and a tenth of that in base.
func SetupChain(t *testing.T, opt ChainSetupOptions) (*simulation.Chain, TestAccounts) {
	t.Helper()
	cfg := opt.TestConfig
	chainCfg := opt.ChainConfig
	if chainCfg.GenesisTime.IsZero() {
		chainCfg.GenesisTime = cfg.GenesisTime
	}

	logger := log.NewTestLogger(t)
	if opt.Quiet {
		logger = log.NewNopLogger()
	}
	chain, err := simulation.NewChain(logger, chainCfg)
	require.NoError(t, err)

	pair := Pair(cfg)
	require.NoError(t, chain.CreatePool(pair, math.NewInt(cfg.PoolBase), math.NewInt(cfg.PoolQuote)))

	accounts := TestAccounts{
		Trader: CreateAndFundAccount(t, chain, "trader", cfg),
		Other:  CreateAndFundAccount(t, chain, "other", cfg),
	}
	return chain, accounts
}

// CreateAndFundAccount mints the default amounts to the account derived
// from name.
func CreateAndFundAccount(t *testing.T, chain *simulation.Chain, name string, cfg TestConfig) sdk.AccAddress {
	t.Helper()
	addr := simulation.SimAccount(name)
	require.NoError(t, chain.Fund(addr,
		sdk.NewInt64Coin(cfg.QuoteDenom, cfg.DefaultCoinAmt),
		sdk.NewInt64Coin(cfg.BaseDenom, cfg.DefaultCoinAmt/10),
	))
	return addr
}

// ValidatorAddress derives a validator operator address from name.
func ValidatorAddress(name string) sdk.ValAddress {
	return sdk.ValAddress(simulation.SimAccount("validator/" + name))
}

// DailyVaultMsg swaps 100_000 quote for base every day out of a 1_000_000
// deposit.
func DailyVaultMsg(owner sdk.AccAddress, cfg TestConfig) *types.MsgCreateVault {
	return &types.MsgCreateVault{
		Owner:        owner.String(),
		Pair:         Pair(cfg),
		Deposit:      sdk.NewInt64Coin(cfg.QuoteDenom, 1_000_000),
		SwapAmount:   math.NewInt(100_000),
		TimeInterval: types.IntervalDaily,
	}
}
