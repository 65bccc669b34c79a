package simulation

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/pushchain/push-dca-node/x/dca/types"
)

const (
	ScenarioBaseDenom  = "uatom"
	ScenarioQuoteDenom = "uusdc"
	ScenarioChannel    = "channel-0"
)

var ScenarioPair = types.Pair{Address: "pool-atom-usdc", BaseDenom: ScenarioBaseDenom, QuoteDenom: ScenarioQuoteDenom}

// scenarioModels are the swap adjustment multipliers published before any
// vault is created.
var scenarioModels = []types.SwapAdjustment{
	{ModelId: 30, Multiplier: math.LegacyMustNewDecFromStr("1.2")},
	{ModelId: 60, Multiplier: math.LegacyOneDec()},
	{ModelId: 90, Multiplier: math.LegacyMustNewDecFromStr("0.8")},
}

// ScenarioConfig shapes a seeded market with a population of vaults.
type ScenarioConfig struct {
	Seed   int64
	Vaults int
	// Step is the block time between two price moves.
	Step time.Duration
	// Volatility is the standard deviation of one step's relative price move.
	Volatility float64
}

func (c ScenarioConfig) withDefaults() ScenarioConfig {
	if c.Step <= 0 {
		c.Step = time.Hour
	}
	if c.Volatility <= 0 {
		c.Volatility = 0.01
	}
	return c
}

// Scenario drives a Chain through a price random walk.
type Scenario struct {
	chain *Chain
	cfg   ScenarioConfig
	rng   *rand.Rand

	Owners   []sdk.AccAddress
	VaultIDs []uint64
}

// NewScenario opens the pool, publishes swap adjustments and creates
// cfg.Vaults vaults with a seeded mix of intervals, positions, destinations
// and dca plus settings.
func NewScenario(chain *Chain, cfg ScenarioConfig) (*Scenario, error) {
	cfg = cfg.withDefaults()
	s := &Scenario{chain: chain, cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}

	if err := chain.CreatePool(ScenarioPair, math.NewInt(1_000_000_000_000), math.NewInt(10_000_000_000_000)); err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	chain.Transfer.OpenChannel(ScenarioChannel)

	if _, err := chain.DeliverMsg(&types.MsgUpdateSwapAdjustments{Sender: chain.Executor.String(), Adjustments: scenarioModels}); err != nil {
		return nil, fmt.Errorf("failed to publish swap adjustments: %w", err)
	}

	for i := 0; i < cfg.Vaults; i++ {
		owner := SimAccount(fmt.Sprintf("owner-%d", i))
		if err := chain.Fund(owner,
			sdk.NewInt64Coin(ScenarioQuoteDenom, 100_000_000),
			sdk.NewInt64Coin(ScenarioBaseDenom, 10_000_000),
		); err != nil {
			return nil, err
		}
		id, err := chain.CreateVault(s.vaultMsg(i, owner))
		if err != nil {
			return nil, fmt.Errorf("failed to create vault %d: %w", i, err)
		}
		s.Owners = append(s.Owners, owner)
		s.VaultIDs = append(s.VaultIDs, id)
	}
	return s, chain.Commit()
}

var scenarioIntervals = []types.TimeInterval{
	types.IntervalHourly, types.IntervalHalfDaily, types.IntervalDaily, types.IntervalWeekly,
}

func (s *Scenario) vaultMsg(i int, owner sdk.AccAddress) *types.MsgCreateVault {
	msg := &types.MsgCreateVault{
		Owner:        owner.String(),
		Label:        fmt.Sprintf("sim vault %d", i),
		Pair:         ScenarioPair,
		Deposit:      sdk.NewInt64Coin(ScenarioQuoteDenom, 10_000_000+s.rng.Int63n(40_000_000)),
		SwapAmount:   math.NewInt(500_000 + s.rng.Int63n(1_500_000)),
		TimeInterval: scenarioIntervals[s.rng.Intn(len(scenarioIntervals))],
	}
	if s.rng.Intn(4) == 0 {
		// exit position
		msg.Deposit = sdk.NewInt64Coin(ScenarioBaseDenom, 1_000_000+s.rng.Int63n(4_000_000))
		msg.SwapAmount = math.NewInt(100_000 + s.rng.Int63n(200_000))
	}

	switch s.rng.Intn(6) {
	case 0:
		tolerance := math.LegacyMustNewDecFromStr("0.02")
		msg.SlippageTolerance = &tolerance
	case 1:
		validator := sdk.ValAddress(SimAccount(fmt.Sprintf("validator-%d", s.rng.Intn(3))))
		msg.Destinations = []types.Destination{
			{Address: owner.String(), Allocation: math.LegacyMustNewDecFromStr("0.5"), Action: types.ActionSend},
			{Address: owner.String(), Allocation: math.LegacyMustNewDecFromStr("0.5"), Action: types.ActionZDelegate, ValidatorAddress: validator.String()},
		}
	case 2:
		msg.Destinations = []types.Destination{{
			Address:          "cosmos1remote" + fmt.Sprint(i),
			Allocation:       math.LegacyOneDec(),
			Action:           types.ActionIbcDelegate,
			ValidatorAddress: "cosmosvaloper1remote",
			ChannelId:        ScenarioChannel,
		}}
	case 3:
		msg.DcaPlus = &types.DcaPlusOptions{
			EscrowLevel: math.LegacyMustNewDecFromStr("0.05"),
			ModelId:     []uint32{30, 60, 90}[s.rng.Intn(3)],
		}
	case 4:
		if msg.Deposit.Denom == ScenarioQuoteDenom {
			// first swap waits for a price 2% below the opening one
			target := math.LegacyNewDecFromInt(msg.SwapAmount).QuoInt64(10).MulInt64(102).QuoInt64(100).TruncateInt()
			msg.TargetReceiveAmount = &target
		}
	}
	return msg
}

// priceFactor draws one step of the random walk, kept within ±20%.
func (s *Scenario) priceFactor() math.LegacyDec {
	move := s.rng.NormFloat64() * s.cfg.Volatility
	if move > 0.2 {
		move = 0.2
	} else if move < -0.2 {
		move = -0.2
	}
	return math.LegacyNewDecWithPrec(int64((1+move)*1_000_000), 6)
}

// Step moves the price, then ends the block and advances time by one step.
func (s *Scenario) Step() error {
	if err := s.chain.MovePrice(ScenarioPair, s.priceFactor()); err != nil {
		return err
	}
	return s.chain.AdvanceTime(s.cfg.Step)
}

// Run steps until d of block time has passed or ctx is done. onStep runs
// after every step; returning an error stops the run.
func (s *Scenario) Run(ctx context.Context, d time.Duration, onStep func() error) error {
	end := s.chain.BlockTime().Add(d)
	for s.chain.BlockTime().Before(end) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := s.Step(); err != nil {
			return err
		}
		if onStep != nil {
			if err := onStep(); err != nil {
				return err
			}
		}
	}
	return nil
}
