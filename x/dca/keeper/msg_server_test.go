package keeper_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkErrors "github.com/cosmos/cosmos-sdk/types/errors"
	govtypes "github.com/cosmos/cosmos-sdk/x/gov/types"

	"github.com/pushchain/push-dca-node/x/dca/keeper"
	"github.com/pushchain/push-dca-node/x/dca/types"
)

func TestMsgUpdateParams(t *testing.T) {
	f := SetupTest(t)

	params := types.DefaultParams()
	params.Paused = true
	params.Admin = f.addrs[3].String()

	testCases := []struct {
		name       string
		input      *types.MsgUpdateParams
		expErr     bool
		expErrorIs error
	}{
		{
			name:       "fail; invalid authority",
			input:      &types.MsgUpdateParams{Authority: f.addrs[0].String(), Params: params},
			expErr:     true,
			expErrorIs: govtypes.ErrInvalidSigner,
		},
		{
			name: "fail; invalid params",
			input: &types.MsgUpdateParams{Authority: f.govModAddr, Params: types.Params{
				SwapFeeRate: math.LegacyMustNewDecFromStr("0.5"),
			}},
			expErr:     true,
			expErrorIs: types.ErrInvalidParams,
		},
		{
			name:   "pass; authority updates params",
			input:  &types.MsgUpdateParams{Authority: f.govModAddr, Params: params},
			expErr: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.msgServer.UpdateParams(f.ctx, tc.input)
			if tc.expErr {
				require.ErrorIs(t, err, tc.expErrorIs)
				return
			}
			require.NoError(t, err)

			got, err := f.k.Params.Get(f.ctx)
			require.NoError(t, err)
			require.True(t, got.Paused)
			require.Equal(t, f.addrs[3].String(), got.Admin)
		})
	}

	_, err := f.msgServer.CreateVault(f.ctx, f.createMsg())
	require.ErrorIs(t, err, types.ErrPaused)
}

func TestMsgExecuteDueTriggers(t *testing.T) {
	f := SetupTest(t)
	f.expectPrice()
	f.expectSwaps()

	start := genesisTime.Add(time.Hour)
	healthy := f.createMsg()
	healthy.TargetStartTime = &start
	healthyID := f.createVault(t, healthy)

	broken := f.dcaPlusMsg(t, "1")
	broken.TargetStartTime = &start
	brokenID := f.createVault(t, broken)
	require.NoError(t, f.k.SwapAdjustments.Remove(f.ctx, 30))

	later := genesisTime.Add(48 * time.Hour)
	pending := f.createMsg()
	pending.TargetStartTime = &later
	pendingID := f.createVault(t, pending)

	t.Run("fail; not an executor", func(t *testing.T) {
		_, err := f.msgServer.ExecuteDueTriggers(f.ctx, &types.MsgExecuteDueTriggers{Sender: f.addrs[2].String()})
		require.ErrorIs(t, err, sdkErrors.ErrUnauthorized)
	})

	t.Run("pass; nothing due yet", func(t *testing.T) {
		resp, err := f.msgServer.ExecuteDueTriggers(f.ctx, &types.MsgExecuteDueTriggers{Sender: f.addrs[1].String()})
		require.NoError(t, err)
		require.Zero(t, resp.Report.Attempted)
	})

	t.Run("pass; a failing vault does not block the others", func(t *testing.T) {
		f.advance(time.Hour)
		resp, err := f.msgServer.ExecuteDueTriggers(f.ctx, &types.MsgExecuteDueTriggers{Sender: f.govModAddr})
		require.NoError(t, err)

		report := resp.Report
		require.Equal(t, uint32(2), report.Attempted)
		require.Equal(t, uint32(1), report.Outcomes[types.OutcomeSwapped])
		require.Len(t, report.Errors, 1)
		require.Equal(t, brokenID, report.Errors[0].VaultId)

		require.Equal(t, "900000", f.vault(t, healthyID).Balance.Amount.String())

		// the failed vault is rolled back as a whole
		require.Equal(t, types.VaultStatusScheduled, f.vault(t, brokenID).Status)
		require.Equal(t, "trigger_created", eventTypes(f.events(t, brokenID))[2])
		require.Len(t, f.events(t, brokenID), 3)

		require.Equal(t, types.VaultStatusScheduled, f.vault(t, pendingID).Status)

		var swept bool
		for _, e := range f.ctx.EventManager().Events() {
			swept = swept || e.Type == types.EventTypeSweepCompleted
		}
		require.True(t, swept)
	})

	t.Run("fail; paused", func(t *testing.T) {
		f.setParams(t, func(p *types.Params) { p.Paused = true })
		defer f.setParams(t, func(p *types.Params) { p.Paused = false })

		_, err := f.msgServer.ExecuteDueTriggers(f.ctx, &types.MsgExecuteDueTriggers{Sender: f.addrs[1].String()})
		require.ErrorIs(t, err, types.ErrPaused)
	})
}

func TestMsgCancelVault(t *testing.T) {
	f := SetupTest(t)
	f.expectPrice()
	f.expectSwaps()

	owner := f.addrs[2]

	t.Run("fail; stranger", func(t *testing.T) {
		id := f.createVault(t, f.createMsg())
		_, err := f.msgServer.CancelVault(f.ctx, &types.MsgCancelVault{Sender: f.addrs[3].String(), VaultId: id})
		require.ErrorIs(t, err, sdkErrors.ErrUnauthorized)
	})

	t.Run("pass; owner is refunded", func(t *testing.T) {
		id := f.createVault(t, f.createMsg())
		before := f.balance(owner, quoteDenom)

		resp, err := f.msgServer.CancelVault(f.ctx, &types.MsgCancelVault{Sender: owner.String(), VaultId: id})
		require.NoError(t, err)
		require.Equal(t, "900000", resp.Refund.Amount.String())
		require.Equal(t, before.AddRaw(900_000).String(), f.balance(owner, quoteDenom).String())

		v := f.vault(t, id)
		require.Equal(t, types.VaultStatusCancelled, v.Status)
		require.True(t, v.Balance.IsZero())
		require.True(t, f.balance(keeper.VaultAccount(id), quoteDenom).IsZero())

		_, err = f.msgServer.CancelVault(f.ctx, &types.MsgCancelVault{Sender: owner.String(), VaultId: id})
		require.ErrorIs(t, err, types.ErrVaultCancelled)
		err = f.k.Deposit(f.ctx, owner.String(), id, sdk.NewInt64Coin(quoteDenom, 1))
		require.ErrorIs(t, err, types.ErrVaultCancelled)
	})

	t.Run("pass; admin may cancel", func(t *testing.T) {
		id := f.createVault(t, f.createMsg())
		_, err := f.msgServer.CancelVault(f.ctx, &types.MsgCancelVault{Sender: f.addrs[0].String(), VaultId: id})
		require.NoError(t, err)

		events := f.events(t, id)
		cancelled := events[len(events)-1].Data.(types.VaultCancelled)
		require.Equal(t, "900000", cancelled.Refund.Amount.String())
	})
}

func TestMsgDeposit(t *testing.T) {
	f := SetupTest(t)
	f.expectPrice()
	f.expectSwaps()
	f.setParams(t, func(p *types.Params) { p.MinimumSwapAmount = math.NewInt(10_000) })

	owner := f.addrs[2]
	msg := f.createMsg()
	msg.Deposit = sdk.NewInt64Coin(quoteDenom, 5_000)
	id := f.createVault(t, msg)
	require.Equal(t, types.VaultStatusInactive, f.vault(t, id).Status)

	t.Run("fail; not the owner", func(t *testing.T) {
		_, err := f.msgServer.Deposit(f.ctx, &types.MsgDeposit{Sender: f.addrs[3].String(), VaultId: id, Amount: sdk.NewInt64Coin(quoteDenom, 1)})
		require.ErrorIs(t, err, sdkErrors.ErrUnauthorized)
	})

	t.Run("fail; wrong denom", func(t *testing.T) {
		_, err := f.msgServer.Deposit(f.ctx, &types.MsgDeposit{Sender: owner.String(), VaultId: id, Amount: sdk.NewInt64Coin(baseDenom, 100_000)})
		require.ErrorIs(t, err, types.ErrInvalidFunds)
	})

	t.Run("pass; small top up stays inactive", func(t *testing.T) {
		_, err := f.msgServer.Deposit(f.ctx, &types.MsgDeposit{Sender: owner.String(), VaultId: id, Amount: sdk.NewInt64Coin(quoteDenom, 1_000)})
		require.NoError(t, err)
		v := f.vault(t, id)
		require.Equal(t, types.VaultStatusInactive, v.Status)
		require.Equal(t, "6000", v.Balance.Amount.String())
	})

	t.Run("pass; deposit reactivates", func(t *testing.T) {
		f.advance(time.Hour)
		_, err := f.msgServer.Deposit(f.ctx, &types.MsgDeposit{Sender: owner.String(), VaultId: id, Amount: sdk.NewInt64Coin(quoteDenom, 194_000)})
		require.NoError(t, err)

		v := f.vault(t, id)
		require.Equal(t, types.VaultStatusActive, v.Status)
		require.Equal(t, "200000", v.Balance.Amount.String())
		require.Equal(t, "200000", v.DepositedAmount.Amount.String())
		require.Equal(t, f.ctx.BlockTime(), f.targetTime(t, id))

		resp, err := f.msgServer.ExecuteTrigger(f.ctx, &types.MsgExecuteTrigger{Sender: f.addrs[4].String(), VaultId: id})
		require.NoError(t, err)
		require.Equal(t, types.OutcomeSwapped, resp.Outcome)
		require.Equal(t, "100000", f.vault(t, id).Balance.Amount.String())
	})
}

func TestMsgUpdateVaultLabel(t *testing.T) {
	f := SetupTest(t)
	f.expectPrice()
	f.expectSwaps()
	id := f.createVault(t, f.createMsg())

	_, err := f.msgServer.UpdateVaultLabel(f.ctx, &types.MsgUpdateVaultLabel{Owner: f.addrs[0].String(), VaultId: id, Label: "mine"})
	require.ErrorIs(t, err, sdkErrors.ErrUnauthorized)

	_, err = f.msgServer.UpdateVaultLabel(f.ctx, &types.MsgUpdateVaultLabel{Owner: f.addrs[2].String(), VaultId: id, Label: "retirement"})
	require.NoError(t, err)
	require.Equal(t, "retirement", f.vault(t, id).Label)

	events := f.events(t, id)
	require.Equal(t, "retirement", events[len(events)-1].Data.(types.VaultLabelUpdated).Label)
}

func TestMsgUpdateSwapAdjustments(t *testing.T) {
	f := SetupTest(t)
	adjustments := []types.SwapAdjustment{
		{ModelId: 30, Multiplier: math.LegacyMustNewDecFromStr("1.2")},
		{ModelId: 60, Multiplier: math.LegacyMustNewDecFromStr("0.8")},
	}

	_, err := f.msgServer.UpdateSwapAdjustments(f.ctx, &types.MsgUpdateSwapAdjustments{Sender: f.addrs[2].String(), Adjustments: adjustments})
	require.ErrorIs(t, err, sdkErrors.ErrUnauthorized)

	f.advance(time.Minute)
	_, err = f.msgServer.UpdateSwapAdjustments(f.ctx, &types.MsgUpdateSwapAdjustments{Sender: f.addrs[1].String(), Adjustments: adjustments})
	require.NoError(t, err)

	got, err := f.k.SwapAdjustmentsList(f.ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i, a := range adjustments {
		require.Equal(t, a.ModelId, got[i].ModelId)
		require.True(t, a.Multiplier.Equal(got[i].Multiplier))
	}

	at, err := f.k.AdjustmentsUpdatedAt.Get(f.ctx)
	require.NoError(t, err)
	require.Equal(t, f.ctx.BlockTime(), at)
}

func TestMsgRouter(t *testing.T) {
	f := SetupTest(t)
	f.expectPrice()
	f.expectSwaps()
	router := keeper.NewMsgRouter(f.k)

	_, err := router.Handle(f.ctx, &types.MsgCreateVault{Owner: "not-an-address"})
	require.Error(t, err)

	resp, err := router.Handle(f.ctx, f.createMsg())
	require.NoError(t, err)
	created, ok := resp.(*types.MsgCreateVaultResponse)
	require.True(t, ok)

	resp, err = router.Handle(f.ctx, &types.MsgCancelVault{Sender: f.addrs[2].String(), VaultId: created.VaultId})
	require.NoError(t, err)
	require.Equal(t, "900000", resp.(*types.MsgCancelVaultResponse).Refund.Amount.String())
}
