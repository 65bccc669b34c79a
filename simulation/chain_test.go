package simulation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/pushchain/push-dca-node/simulation"
	"github.com/pushchain/push-dca-node/x/dca/keeper"
	"github.com/pushchain/push-dca-node/x/dca/types"
)

func vaultMsg(owner sdk.AccAddress) *types.MsgCreateVault {
	return &types.MsgCreateVault{
		Owner:        owner.String(),
		Label:        "sim",
		Pair:         pair,
		Deposit:      sdk.NewInt64Coin(pair.QuoteDenom, 1_000_000),
		SwapAmount:   math.NewInt(100_000),
		TimeInterval: types.IntervalDaily,
	}
}

func requireVault(t *testing.T, chain *simulation.Chain, id uint64) types.Vault {
	t.Helper()
	resp, err := chain.Vault(context.Background(), id)
	require.NoError(t, err)
	return resp.Vault
}

func TestChain_ExecutorSweep(t *testing.T) {
	chain, trader := setupChain(t, simulation.ChainConfig{})
	ctx := context.Background()
	first := chain.LastCommitID()

	id, err := chain.CreateVault(vaultMsg(trader))
	require.NoError(t, err)
	v := requireVault(t, chain, id)
	require.Equal(t, types.VaultStatusActive, v.Status)
	require.Equal(t, "900000", v.Balance.Amount.String())
	require.True(t, chain.Balance(keeper.VaultAccount(id), pair.QuoteDenom).Equal(v.Balance.Amount))

	report, err := chain.ExecuteDueTriggers(ctx, 0)
	require.NoError(t, err)
	require.Zero(t, report.Attempted)

	require.NoError(t, chain.AdvanceTime(24*time.Hour))
	require.Equal(t, genesisTime.Add(24*time.Hour), chain.BlockTime())
	require.Greater(t, chain.LastCommitID().Version, first.Version)

	report, err = chain.ExecuteDueTriggers(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, uint32(1), report.Attempted)
	require.Equal(t, uint32(1), report.Outcomes[types.OutcomeSwapped])
	require.Equal(t, "800000", requireVault(t, chain, id).Balance.Amount.String())

	events, err := chain.EventsAfter(ctx, nil, 0)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	last := events[len(events)-1].Id

	_, err = chain.DeliverMsg(&types.MsgUpdateVaultLabel{Owner: trader.String(), VaultId: id, Label: "renamed"})
	require.NoError(t, err)
	newer, err := chain.EventsAfter(ctx, &last, 0)
	require.NoError(t, err)
	require.Len(t, newer, 1)
	require.Equal(t, "vault_label_updated", newer[0].Data.EventType())

	// a failed message leaves no trace
	_, err = chain.DeliverMsg(&types.MsgCancelVault{Sender: simulation.SimAccount("stranger").String(), VaultId: id})
	require.Error(t, err)
	require.Equal(t, types.VaultStatusActive, requireVault(t, chain, id).Status)
}

func TestChain_AutoExecute(t *testing.T) {
	chain, trader := setupChain(t, simulation.ChainConfig{AutoExecute: true})

	id, err := chain.CreateVault(vaultMsg(trader))
	require.NoError(t, err)

	require.NoError(t, chain.AdvanceTime(24*time.Hour))
	require.Equal(t, "100000", requireVault(t, chain, id).SwappedAmount.Amount.String())

	// the end blocker of the block at +24h runs the due trigger
	require.NoError(t, chain.AdvanceTime(time.Minute))
	require.Equal(t, "200000", requireVault(t, chain, id).SwappedAmount.Amount.String())
}

func TestChain_DeferredSwaps(t *testing.T) {
	chain, trader := setupChain(t, simulation.ChainConfig{})
	chain.Venue.DeferSwaps = true
	ctx := context.Background()

	id, err := chain.CreateVault(vaultMsg(trader))
	require.NoError(t, err)

	inFlight, err := chain.InFlightExecutions(ctx)
	require.NoError(t, err)
	require.Len(t, inFlight, 1)
	require.Equal(t, id, inFlight[0].VaultId)
	require.True(t, requireVault(t, chain, id).SwappedAmount.IsZero())

	require.NoError(t, chain.AdvanceTime(time.Minute))

	inFlight, err = chain.InFlightExecutions(ctx)
	require.NoError(t, err)
	require.Empty(t, inFlight)
	v := requireVault(t, chain, id)
	require.Equal(t, "100000", v.SwappedAmount.Amount.String())
	require.True(t, v.ReceivedAmount.IsPositive())
}

func TestChain_LimitOrderFilledByPriceMove(t *testing.T) {
	chain, trader := setupChain(t, simulation.ChainConfig{})

	msg := vaultMsg(trader)
	target := math.NewInt(12_500)
	msg.TargetReceiveAmount = &target
	id, err := chain.CreateVault(msg)
	require.NoError(t, err)
	require.Equal(t, types.VaultStatusScheduled, requireVault(t, chain, id).Status)

	require.NoError(t, chain.AdvanceTime(time.Hour))
	require.True(t, requireVault(t, chain, id).SwappedAmount.IsZero())

	require.NoError(t, chain.MovePrice(pair, math.LegacyMustNewDecFromStr("0.5")))
	require.NoError(t, chain.AdvanceTime(time.Hour))

	v := requireVault(t, chain, id)
	require.Equal(t, types.VaultStatusActive, v.Status)
	require.Equal(t, "100000", v.SwappedAmount.Amount.String())
	require.Equal(t, "12500", v.ReceivedAmount.Amount.String())

	events, err := chain.VaultEvents(context.Background(), id, types.PageRequest{Limit: 100})
	require.NoError(t, err)
	var kinds []string
	for _, e := range events {
		kinds = append(kinds, e.Data.EventType())
	}
	require.Contains(t, kinds, "limit_order_filled")
	require.Contains(t, kinds, "swap_executed")
}

func TestChain_Delegations(t *testing.T) {
	chain, trader := setupChain(t, simulation.ChainConfig{})
	validator := sdk.ValAddress(simulation.SimAccount("validator"))
	chain.Transfer.OpenChannel("channel-0")

	msg := vaultMsg(trader)
	msg.Destinations = []types.Destination{
		{Address: trader.String(), Allocation: math.LegacyMustNewDecFromStr("0.5"), Action: types.ActionZDelegate, ValidatorAddress: validator.String()},
		{Address: "osmo1receiver", Allocation: math.LegacyMustNewDecFromStr("0.5"), Action: types.ActionIbcDelegate, ValidatorAddress: "osmovaloper1v", ChannelId: "channel-0"},
	}
	_, err := chain.CreateVault(msg)
	require.NoError(t, err)

	require.Len(t, chain.Staking.Delegations, 1)
	require.Equal(t, validator.String(), chain.Staking.Delegations[0].ValidatorAddress)
	require.Len(t, chain.Transfer.Transfers, 1)
	require.Equal(t, "osmo1receiver", chain.Transfer.Transfers[0].Receiver)
	require.True(t, chain.Balance(simulation.EscrowAddress("channel-0"), pair.BaseDenom).IsPositive())

	chain.Staking.Jail(validator.String())
	jailed := vaultMsg(trader)
	jailed.Destinations = []types.Destination{
		{Address: trader.String(), Allocation: math.LegacyOneDec(), Action: types.ActionZDelegate, ValidatorAddress: validator.String()},
	}
	jailedID, err := chain.CreateVault(jailed)
	require.NoError(t, err)
	require.Len(t, chain.Staking.Delegations, 1)

	events, err := chain.VaultEvents(context.Background(), jailedID, types.PageRequest{Limit: 100})
	require.NoError(t, err)
	require.Equal(t, "delegation_failed", events[len(events)-1].Data.EventType())
}

func TestScenario_Run(t *testing.T) {
	chain, err := simulation.NewChain(log.NewNopLogger(), simulation.ChainConfig{GenesisTime: genesisTime})
	require.NoError(t, err)

	scenario, err := simulation.NewScenario(chain, simulation.ScenarioConfig{Seed: 7, Vaults: 12})
	require.NoError(t, err)
	require.Len(t, scenario.VaultIDs, 12)

	ctx := context.Background()
	sweeps := 0
	err = scenario.Run(ctx, 3*24*time.Hour, func() error {
		_, err := chain.ExecuteDueTriggers(ctx, 0)
		sweeps++
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 72, sweeps)

	swapped := 0
	for _, id := range scenario.VaultIDs {
		if requireVault(t, chain, id).SwappedAmount.IsPositive() {
			swapped++
		}
	}
	require.NotZero(t, swapped)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	require.ErrorIs(t, scenario.Run(cancelled, time.Hour, nil), context.Canceled)
}

func TestNewChain_CommitsEveryStore(t *testing.T) {
	chain, err := simulation.NewChain(log.NewNopLogger(), simulation.ChainConfig{GenesisTime: genesisTime})
	require.NoError(t, err)

	prev := chain.LastCommitID()
	for i := 0; i < 3; i++ {
		require.NoError(t, chain.AdvanceTime(time.Hour))
		id := chain.LastCommitID()
		require.Equal(t, prev.Version+1, id.Version)
		prev = id
	}
	require.Equal(t, genesisTime.Add(3*time.Hour), chain.BlockTime())
}
