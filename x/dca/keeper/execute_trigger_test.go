package keeper_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/pushchain/push-dca-node/x/dca/keeper"
	"github.com/pushchain/push-dca-node/x/dca/types"
)

func TestCreateVault_ExecutesImmediately(t *testing.T) {
	f := SetupTest(t)
	f.expectPrice()
	f.expectSwaps()

	owner := f.addrs[2]
	before := f.balance(owner, baseDenom)

	id := f.createVault(t, f.createMsg())

	v := f.vault(t, id)
	require.Equal(t, types.VaultStatusActive, v.Status)
	require.NotNil(t, v.StartedAt)
	require.Equal(t, "900000", v.Balance.Amount.String())
	require.Equal(t, "100000", v.SwappedAmount.Amount.String())
	require.Equal(t, "10000", v.ReceivedAmount.Amount.String())

	// 0.15% swap fee on 10000 received, nothing delegated
	feeCollector := authtypes.NewModuleAddress(authtypes.FeeCollectorName)
	require.Equal(t, "15", f.balance(feeCollector, baseDenom).String())
	require.Equal(t, before.AddRaw(9985).String(), f.balance(owner, baseDenom).String())
	require.Equal(t, "900000", f.balance(keeper.VaultAccount(id), quoteDenom).String())

	require.Equal(t, genesisTime.Add(24*time.Hour), f.targetTime(t, id))
	require.Equal(t, []string{
		"vault_created", "funds_deposited", "trigger_created", "execution_triggered", "swap_executed",
	}, eventTypes(f.events(t, id)))

	swap := f.events(t, id)[4].Data.(types.SwapExecuted)
	require.Equal(t, "15", swap.Fee.Amount.String())
	require.True(t, swap.Escrowed.IsZero())
}

func TestExecuteTrigger_FollowsSchedule(t *testing.T) {
	f := SetupTest(t)
	f.expectPrice()
	f.expectSwaps()

	id := f.createVault(t, f.createMsg())

	_, err := f.k.ExecuteTrigger(f.ctx, id)
	require.ErrorIs(t, err, types.ErrTargetTimeNotElapsed)

	f.advance(24 * time.Hour)
	outcome, err := f.k.ExecuteTrigger(f.ctx, id)
	require.NoError(t, err)
	require.Equal(t, types.OutcomeSwapped, outcome)
	require.Equal(t, "800000", f.vault(t, id).Balance.Amount.String())
	require.Equal(t, genesisTime.Add(48*time.Hour), f.targetTime(t, id))

	// a late sweep skips missed slots and stays on the grid
	f.advance(50 * time.Hour)
	_, err = f.k.ExecuteTrigger(f.ctx, id)
	require.NoError(t, err)
	require.Equal(t, genesisTime.Add(96*time.Hour), f.targetTime(t, id))
}

func TestExecuteTrigger_Prechecks(t *testing.T) {
	f := SetupTest(t)
	f.expectPrice()
	f.expectSwaps()

	id := f.createVault(t, f.createMsg())
	f.advance(24 * time.Hour)

	t.Run("fail; paused", func(t *testing.T) {
		f.setParams(t, func(p *types.Params) { p.Paused = true })
		defer f.setParams(t, func(p *types.Params) { p.Paused = false })

		_, err := f.k.ExecuteTrigger(f.ctx, id)
		require.ErrorIs(t, err, types.ErrPaused)
	})

	t.Run("fail; unknown vault", func(t *testing.T) {
		_, err := f.k.ExecuteTrigger(f.ctx, 42)
		require.ErrorIs(t, err, types.ErrVaultNotFound)
	})

	t.Run("fail; cancelled", func(t *testing.T) {
		_, _, err := f.k.CancelVault(f.ctx, f.addrs[2].String(), id)
		require.NoError(t, err)

		_, err = f.k.ExecuteTrigger(f.ctx, id)
		require.ErrorIs(t, err, types.ErrVaultCancelled)
	})
}

func TestExecuteTrigger_SwapFailureKeepsTrigger(t *testing.T) {
	f := SetupTest(t)
	f.expectPrice()
	f.mockVenue.EXPECT().Swap(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req types.SwapRequest) (types.VenueResponse, error) {
			// funds moved before the failure must not leak out of the branch
			_, _ = f.fill(ctx, req.Sender, req.Offer)
			return types.VenueResponse{}, errors.New("minimum receive amount not met")
		})

	msg := f.createMsg()
	start := genesisTime
	msg.TargetStartTime = &start
	id := f.createVault(t, msg)

	outcome, err := f.k.ExecuteTrigger(f.ctx, id)
	require.NoError(t, err)
	require.Equal(t, types.OutcomeSwapFailed, outcome)

	v := f.vault(t, id)
	require.Equal(t, "1000000", v.Balance.Amount.String())
	require.Equal(t, "1000000", f.balance(keeper.VaultAccount(id), quoteDenom).String())
	require.True(t, f.balance(keeper.VaultAccount(id), baseDenom).IsZero())
	require.Equal(t, genesisTime, f.targetTime(t, id))

	failures := 0
	for _, e := range f.events(t, id) {
		if failed, ok := e.Data.(types.SwapFailed); ok {
			failures++
			require.Contains(t, failed.Reason, "minimum receive amount not met")
			require.Equal(t, "100000", failed.Attempted.Amount.String())
		}
	}
	require.Equal(t, 1, failures)

	inFlight, err := f.k.InFlight.Has(f.ctx, id)
	require.NoError(t, err)
	require.False(t, inFlight)
}

func TestExecuteTrigger_SilentVenueErrorFails(t *testing.T) {
	f := SetupTest(t)
	f.expectPrice()
	f.mockVenue.EXPECT().Swap(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req types.SwapRequest) (types.VenueResponse, error) {
			_, _ = f.fill(ctx, req.Sender, req.Offer)
			return types.VenueResponse{}, errors.New("")
		})

	msg := f.createMsg()
	start := genesisTime
	msg.TargetStartTime = &start
	id := f.createVault(t, msg)

	outcome, err := f.k.ExecuteTrigger(f.ctx, id)
	require.NoError(t, err)
	require.Equal(t, types.OutcomeSwapFailed, outcome)

	v := f.vault(t, id)
	require.True(t, v.SwappedAmount.IsZero())
	require.Equal(t, "1000000", v.Balance.Amount.String())

	events := f.events(t, id)
	failed, ok := events[len(events)-1].Data.(types.SwapFailed)
	require.True(t, ok)
	require.Equal(t, "venue call failed", failed.Reason)
}

func TestExecuteTrigger_DeferredReply(t *testing.T) {
	f := SetupTest(t)
	f.expectPrice()

	var pending types.SwapRequest
	f.mockVenue.EXPECT().Swap(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req types.SwapRequest) (types.VenueResponse, error) {
			pending = req
			sender := sdk.MustAccAddressFromBech32(req.Sender)
			return types.VenueResponse{Deferred: true}, f.bankkeeper.SendCoins(ctx, sender, f.pool, sdk.NewCoins(req.Offer))
		})

	msg := f.createMsg()
	start := genesisTime
	msg.TargetStartTime = &start
	id := f.createVault(t, msg)

	outcome, err := f.k.ExecuteTrigger(f.ctx, id)
	require.NoError(t, err)
	require.Equal(t, types.OutcomePending, outcome)

	entry, found, err := f.k.InFlightExecution(f.ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, pending.ReplyId, entry.ReplyId)
	require.Equal(t, "1000000", entry.SwapDenomBalance.Amount.String())

	_, err = f.k.ExecuteTrigger(f.ctx, id)
	require.ErrorIs(t, err, types.ErrExecutionInProgress)
	_, _, err = f.k.CancelVault(f.ctx, f.addrs[2].String(), id)
	require.ErrorIs(t, err, types.ErrExecutionInProgress)

	due, err := f.k.DueBefore(f.ctx, f.ctx.BlockTime(), 10)
	require.NoError(t, err)
	require.NotContains(t, due, id)

	// the venue settles in a later invocation
	f.advance(time.Minute)
	require.NoError(t, f.bankkeeper.SendCoins(f.ctx, f.pool, keeper.VaultAccount(id), sdk.NewCoins(sdk.NewInt64Coin(baseDenom, 9_000))))
	outcome, err = f.k.Reply(f.ctx, types.Reply{Id: pending.ReplyId})
	require.NoError(t, err)
	require.Equal(t, types.OutcomeSwapped, outcome)

	v := f.vault(t, id)
	require.Equal(t, "900000", v.Balance.Amount.String())
	require.Equal(t, "9000", v.ReceivedAmount.Amount.String())

	_, err = f.k.Reply(f.ctx, types.Reply{Id: pending.ReplyId})
	require.ErrorIs(t, err, types.ErrNoCacheEntry)
}

func TestExecuteTrigger_ExhaustsBelowMinimum(t *testing.T) {
	f := SetupTest(t)
	f.expectPrice()
	f.setParams(t, func(p *types.Params) { p.MinimumSwapAmount = math.NewInt(10_000) })

	msg := f.createMsg()
	msg.Deposit = sdk.NewInt64Coin(quoteDenom, 5_000)
	start := genesisTime
	msg.TargetStartTime = &start
	id := f.createVault(t, msg)

	resp, err := f.msgServer.ExecuteTrigger(f.ctx, &types.MsgExecuteTrigger{Sender: f.addrs[3].String(), VaultId: id})
	require.NoError(t, err)
	require.Equal(t, types.OutcomeExhausted, resp.Outcome)

	v := f.vault(t, id)
	require.Equal(t, types.VaultStatusInactive, v.Status)
	require.Equal(t, "5000", v.Balance.Amount.String())

	_, found, err := f.k.GetTrigger(f.ctx, id)
	require.NoError(t, err)
	require.False(t, found)

	events := f.events(t, id)
	skipped := events[len(events)-1].Data.(types.ExecutionSkipped)
	require.Equal(t, types.SkipInsufficientFunds, skipped.Reason)

	_, err = f.k.ExecuteTrigger(f.ctx, id)
	require.ErrorIs(t, err, types.ErrVaultNotExecutable)
}

func TestExecuteTrigger_Skips(t *testing.T) {
	t.Run("price above threshold", func(t *testing.T) {
		f := SetupTest(t)
		f.expectPrice()

		msg := f.createMsg()
		threshold := math.LegacyNewDec(5)
		msg.PriceThreshold = &threshold
		id := f.createVault(t, msg)

		v := f.vault(t, id)
		require.Equal(t, "1000000", v.Balance.Amount.String())
		require.Equal(t, genesisTime.Add(24*time.Hour), f.targetTime(t, id))

		events := f.events(t, id)
		skipped := events[len(events)-1].Data.(types.ExecutionSkipped)
		require.Equal(t, types.SkipPriceThresholdExceeded, skipped.Reason)
		require.Equal(t, "10.000000000000000000", skipped.Price.String())
	})

	t.Run("price unavailable", func(t *testing.T) {
		f := SetupTest(t)
		f.mockVenue.EXPECT().SpotPrice(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(math.LegacyDec{}, errors.New("pool has no liquidity"))

		id := f.createVault(t, f.createMsg())

		events := f.events(t, id)
		skipped := events[len(events)-1].Data.(types.ExecutionSkipped)
		require.Equal(t, types.SkipPriceQueryFailed, skipped.Reason)
		require.Equal(t, types.VaultStatusActive, f.vault(t, id).Status)
		require.Equal(t, genesisTime.Add(24*time.Hour), f.targetTime(t, id))
	})
}
