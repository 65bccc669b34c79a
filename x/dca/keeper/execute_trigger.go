package keeper

import (
	"time"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/pushchain/push-dca-node/x/dca/types"
)

// ExecuteTrigger fires the trigger of a vault. Skips and venue failures are
// reported through the outcome and the event log; only validation and
// protocol errors are returned.
func (k Keeper) ExecuteTrigger(ctx sdk.Context, vaultID uint64) (types.ExecutionOutcome, error) {
	params, err := k.Params.Get(ctx)
	if err != nil {
		return "", errorsmod.Wrap(err, "failed to get params")
	}
	if params.Paused {
		return "", types.ErrPaused
	}

	vault, err := k.GetVault(ctx, vaultID)
	if err != nil {
		return "", err
	}
	switch {
	case vault.IsCancelled():
		return "", errorsmod.Wrapf(types.ErrVaultCancelled, "vault %d", vaultID)
	case vault.IsInactive():
		return "", errorsmod.Wrapf(types.ErrVaultNotExecutable, "vault %d is inactive", vaultID)
	}

	if busy, err := k.InFlight.Has(ctx, vaultID); err != nil {
		return "", err
	} else if busy {
		return "", errorsmod.Wrapf(types.ErrExecutionInProgress, "vault %d", vaultID)
	}

	trigger, found, err := k.GetTrigger(ctx, vaultID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", errorsmod.Wrapf(types.ErrTriggerNotFound, "vault %d", vaultID)
	}

	switch c := trigger.Configuration.(type) {
	case types.TimeTrigger:
		if ctx.BlockTime().Before(c.TargetTime) {
			return "", errorsmod.Wrapf(types.ErrTargetTimeNotElapsed,
				"vault %d is due at %s", vaultID, c.TargetTime.UTC().Format(time.RFC3339))
		}
		return k.executeSwap(ctx, params, vault, c.TargetTime)
	case types.LimitOrderTrigger:
		return k.executeFilledOrder(ctx, vault, c)
	default:
		return "", errorsmod.Wrapf(types.ErrTriggerNotFound, "vault %d has no trigger configuration", vaultID)
	}
}

// executeSwap runs the pre-checks of a due time trigger and issues the swap.
func (k Keeper) executeSwap(ctx sdk.Context, params types.Params, vault types.Vault, lastTarget time.Time) (types.ExecutionOutcome, error) {
	if vault.IsScheduled() {
		now := ctx.BlockTime()
		vault.Status = types.VaultStatusActive
		vault.StartedAt = &now
		if err := k.setVault(ctx, vault); err != nil {
			return "", err
		}
	}

	price, err := k.spotPrice(ctx, vault)
	if err != nil {
		k.Logger().Info("spot price unavailable", "vault_id", vault.Id, "error", err.Error())
		return k.skip(ctx, vault, lastTarget, types.SkipPriceQueryFailed, nil)
	}
	if _, err := k.AppendEvent(ctx, vault.Id, types.ExecutionTriggered{
		BaseDenom:  vault.Pair.BaseDenom,
		QuoteDenom: vault.Pair.QuoteDenom,
		AssetPrice: price,
	}); err != nil {
		return "", err
	}

	if vault.IsDcaPlus() {
		cfg := types.AdvanceStandardDca(*vault.DcaPlusConfig, vault.SwapAmount, price)
		vault.DcaPlusConfig = &cfg
		if err := k.setVault(ctx, vault); err != nil {
			return "", err
		}
	}

	if vault.NominalSwapAmount().LT(params.MinimumSwapAmount) {
		return k.exhaust(ctx, vault, params, vault.NominalSwapAmount())
	}

	amount, adjustment, err := k.adjustedSwapAmount(ctx, vault)
	if err != nil {
		return "", err
	}
	if amount.IsZero() {
		return k.skip(ctx, vault, lastTarget, types.SkipSwapAmountAdjustedZero, &price)
	}
	if amount.LT(params.MinimumSwapAmount) {
		return k.exhaust(ctx, vault, params, amount)
	}

	if vault.PriceThreshold != nil && price.GT(*vault.PriceThreshold) {
		return k.skip(ctx, vault, lastTarget, types.SkipPriceThresholdExceeded, &price)
	}

	swapBalance, receiveBalance := k.vaultBalances(ctx, vault)
	entry := types.ExecutionCache{
		VaultId:             vault.Id,
		Kind:                types.KindSwap,
		ReplyOn:             types.ReplyAlways,
		SwapDenomBalance:    swapBalance,
		ReceiveDenomBalance: receiveBalance,
		SwapAmount:          sdk.NewCoin(vault.SwapDenom(), amount),
		Adjustment:          adjustment,
	}
	minimumReceive := sdk.NewCoin(vault.ReceiveDenom(), minimumReceiveAmount(vault, amount, price))

	return k.dispatch(ctx, entry, func(cacheCtx sdk.Context, replyID uint64) (types.VenueResponse, error) {
		return k.venue.Swap(cacheCtx, types.SwapRequest{
			ReplyId:        replyID,
			Sender:         VaultAccount(vault.Id).String(),
			Pair:           vault.Pair,
			Offer:          entry.SwapAmount,
			MinimumReceive: minimumReceive,
		})
	})
}

// minimumReceiveAmount is the larger of the vault's scaled floor and the
// slippage bound at price.
func minimumReceiveAmount(vault types.Vault, amount math.Int, price math.LegacyDec) math.Int {
	minimum := math.ZeroInt()
	if vault.MinimumReceiveAmount != nil && vault.SwapAmount.IsPositive() {
		minimum = math.LegacyNewDecFromInt(*vault.MinimumReceiveAmount).
			MulInt(amount).
			QuoInt(vault.SwapAmount).
			TruncateInt()
	}
	if price.IsPositive() && !vault.SlippageTolerance.IsNil() {
		bound := math.LegacyNewDecFromInt(amount).
			Quo(price).
			Mul(math.LegacyOneDec().Sub(vault.SlippageTolerance)).
			TruncateInt()
		minimum = math.MaxInt(minimum, bound)
	}
	return minimum
}

// skip records why a due trigger did not swap and moves it to the next slot.
func (k Keeper) skip(ctx sdk.Context, vault types.Vault, lastTarget time.Time, reason types.SkipReason, price *math.LegacyDec) (types.ExecutionOutcome, error) {
	if _, err := k.AppendEvent(ctx, vault.Id, types.ExecutionSkipped{Reason: reason, Price: price}); err != nil {
		return "", err
	}
	next := types.NextTargetTime(ctx.BlockTime(), lastTarget, vault.TimeInterval)
	if err := k.SaveTrigger(ctx, types.Trigger{VaultId: vault.Id, Configuration: types.TimeTrigger{TargetTime: next}}); err != nil {
		return "", err
	}
	return types.OutcomeSkipped, nil
}

// exhaust deactivates a vault whose next swap of amount is below the swap
// floor. The state change is kept even though the error is returned.
func (k Keeper) exhaust(ctx sdk.Context, vault types.Vault, params types.Params, amount math.Int) (types.ExecutionOutcome, error) {
	if err := k.deactivate(ctx, vault, true); err != nil {
		return "", err
	}
	if _, err := k.AppendEvent(ctx, vault.Id, types.ExecutionSkipped{Reason: types.SkipInsufficientFunds}); err != nil {
		return "", err
	}
	return types.OutcomeExhausted, errorsmod.Wrapf(types.ErrSwapAmountTooSmall,
		"vault %d swap of %s%s is below the minimum swap amount %s", vault.Id, amount, vault.SwapDenom(), params.MinimumSwapAmount)
}

// deactivate moves a vault to Inactive, drops its trigger and schedules the
// escrow settlement of dca plus vaults. settleNow claims a task that is
// already due.
func (k Keeper) deactivate(ctx sdk.Context, vault types.Vault, settleNow bool) error {
	vault.Status = types.VaultStatusInactive
	if err := k.setVault(ctx, vault); err != nil {
		return err
	}
	if err := k.RemoveTrigger(ctx, vault.Id); err != nil {
		return err
	}
	if !vault.IsDcaPlus() {
		return nil
	}

	due, err := k.scheduleEscrowClaim(ctx, vault)
	if err != nil {
		return err
	}
	if settleNow && !due.After(ctx.BlockTime()) {
		_, _, err = k.ClaimEscrowedFunds(ctx, vault.Id)
	}
	return err
}
