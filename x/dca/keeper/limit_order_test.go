package keeper_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/pushchain/push-dca-node/x/dca/keeper"
	"github.com/pushchain/push-dca-node/x/dca/types"
)

const testOrderIdx = 7

// expectOrderSubmit books the offer on the venue and answers with
// testOrderIdx.
func (f *testFixture) expectOrderSubmit(t *testing.T) *types.OrderRequest {
	placed := new(types.OrderRequest)
	f.mockVenue.EXPECT().SubmitOrder(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req types.OrderRequest) (types.VenueResponse, error) {
			*placed = req
			sender := sdk.MustAccAddressFromBech32(req.Sender)
			if err := f.bankkeeper.SendCoins(ctx, sender, f.pool, sdk.NewCoins(req.Offer)); err != nil {
				return types.VenueResponse{}, err
			}
			data, err := json.Marshal(types.OrderSubmittedData{OrderIdx: testOrderIdx})
			require.NoError(t, err)
			return types.VenueResponse{Data: data}, nil
		})
	return placed
}

func (f *testFixture) limitMsg() *types.MsgCreateVault {
	msg := f.createMsg()
	target := math.NewInt(12_500)
	msg.TargetReceiveAmount = &target
	return msg
}

func testOrder(remaining int64) types.Order {
	return types.Order{
		Idx:            testOrderIdx,
		Offer:          sdk.NewInt64Coin(quoteDenom, 100_000),
		RemainingOffer: math.NewInt(remaining),
		FilledAmount:   math.NewInt(100_000 - remaining),
		TargetPrice:    math.LegacyNewDec(8),
	}
}

func TestLimitOrder_SubmitAndFill(t *testing.T) {
	f := SetupTest(t)
	placed := f.expectOrderSubmit(t)

	id := f.createVault(t, f.limitMsg())
	require.Equal(t, "8.000000000000000000", placed.TargetPrice.String())
	require.Equal(t, "100000", placed.Offer.Amount.String())

	v := f.vault(t, id)
	require.Equal(t, types.VaultStatusScheduled, v.Status)
	require.Equal(t, "1000000", v.Balance.Amount.String())
	require.Equal(t, "900000", f.balance(keeper.VaultAccount(id), quoteDenom).String())
	require.Equal(t, []string{
		"vault_created", "funds_deposited", "trigger_created", "limit_order_submitted",
	}, eventTypes(f.events(t, id)))

	resp, err := f.queryServer.TriggerIdByOrderIdx(f.ctx, &types.QueryTriggerIdByOrderIdxRequest{OrderIdx: testOrderIdx})
	require.NoError(t, err)
	require.Equal(t, id, resp.TriggerId)

	// limit triggers are never swept
	f.advance(48 * time.Hour)
	due, err := f.k.DueBefore(f.ctx, f.ctx.BlockTime(), 10)
	require.NoError(t, err)
	require.Empty(t, due)

	f.mockVenue.EXPECT().GetOrder(gomock.Any(), testPair, uint64(testOrderIdx)).Return(testOrder(40_000), nil)
	_, err = f.msgServer.HandleOrderFilled(f.ctx, &types.MsgHandleOrderFilled{Sender: f.addrs[3].String(), OrderIdx: testOrderIdx})
	require.ErrorIs(t, err, types.ErrTargetPriceNotMet)

	f.mockVenue.EXPECT().GetOrder(gomock.Any(), testPair, uint64(testOrderIdx)).Return(testOrder(0), nil)
	f.mockVenue.EXPECT().WithdrawOrder(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, ref types.OrderRef) (types.VenueResponse, error) {
			require.Equal(t, uint64(testOrderIdx), ref.OrderIdx)
			owner := sdk.MustAccAddressFromBech32(ref.Owner)
			return types.VenueResponse{}, f.bankkeeper.SendCoins(ctx, f.pool, owner, sdk.NewCoins(sdk.NewInt64Coin(baseDenom, 12_500)))
		})

	filled, err := f.msgServer.HandleOrderFilled(f.ctx, &types.MsgHandleOrderFilled{Sender: f.addrs[3].String(), OrderIdx: testOrderIdx})
	require.NoError(t, err)
	require.Equal(t, id, filled.VaultId)
	require.Equal(t, types.OutcomeSwapped, filled.Outcome)

	v = f.vault(t, id)
	require.Equal(t, types.VaultStatusActive, v.Status)
	require.Equal(t, "900000", v.Balance.Amount.String())
	require.Equal(t, "100000", v.SwappedAmount.Amount.String())
	require.Equal(t, "12500", v.ReceivedAmount.Amount.String())

	events := eventTypes(f.events(t, id))
	require.Equal(t, []string{
		"limit_order_filled", "limit_order_withdrawn", "swap_executed", "trigger_created",
	}, events[len(events)-4:])

	// the vault continues as a time based vault
	require.Equal(t, f.ctx.BlockTime().Add(24*time.Hour), f.targetTime(t, id))
	_, found, err := f.k.VaultByOrderIdx(f.ctx, testOrderIdx)
	require.NoError(t, err)
	require.False(t, found)
}

func TestLimitOrder_SubmitRejected(t *testing.T) {
	f := SetupTest(t)
	f.mockVenue.EXPECT().SubmitOrder(gomock.Any(), gomock.Any()).
		Return(types.VenueResponse{}, errors.New("tick out of range"))

	_, err := f.msgServer.CreateVault(f.ctx, f.limitMsg())
	require.ErrorContains(t, err, "tick out of range")

	executions, err := f.k.AllExecutions(f.ctx)
	require.NoError(t, err)
	require.Empty(t, executions)
}

func TestLimitOrder_CancelRetractsPartialFill(t *testing.T) {
	f := SetupTest(t)
	f.expectOrderSubmit(t)

	owner := f.addrs[2]
	id := f.createVault(t, f.limitMsg())
	quoteBefore := f.balance(owner, quoteDenom)
	baseBefore := f.balance(owner, baseDenom)

	f.mockVenue.EXPECT().GetOrder(gomock.Any(), testPair, uint64(testOrderIdx)).Return(testOrder(40_000), nil)
	f.mockVenue.EXPECT().RetractOrder(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, ref types.OrderRef) (types.VenueResponse, error) {
			vault := sdk.MustAccAddressFromBech32(ref.Owner)
			return types.VenueResponse{}, f.bankkeeper.SendCoins(ctx, f.pool, vault, sdk.NewCoins(
				sdk.NewInt64Coin(quoteDenom, 40_000),
				sdk.NewInt64Coin(baseDenom, 7_500),
			))
		})

	resp, err := f.msgServer.CancelVault(f.ctx, &types.MsgCancelVault{Sender: owner.String(), VaultId: id})
	require.NoError(t, err)
	require.Equal(t, "940000", resp.Refund.Amount.String())

	v := f.vault(t, id)
	require.Equal(t, types.VaultStatusCancelled, v.Status)
	require.True(t, v.Balance.IsZero())
	require.Equal(t, "60000", v.SwappedAmount.Amount.String())
	require.Equal(t, "7500", v.ReceivedAmount.Amount.String())

	require.Equal(t, quoteBefore.AddRaw(940_000).String(), f.balance(owner, quoteDenom).String())
	require.Equal(t, baseBefore.AddRaw(7_500).String(), f.balance(owner, baseDenom).String())
	require.True(t, f.balance(keeper.VaultAccount(id), quoteDenom).IsZero())

	events := f.events(t, id)
	retracted := events[len(events)-2].Data.(types.LimitOrderRetracted)
	require.Equal(t, uint64(testOrderIdx), retracted.OrderIdx)
	require.Equal(t, "40000", retracted.Returned.Amount.String())
	require.Equal(t, "vault_cancelled", events[len(events)-1].Data.EventType())

	_, found, err := f.k.GetTrigger(f.ctx, id)
	require.NoError(t, err)
	require.False(t, found)
}
