package keeper

import (
	"encoding/json"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/pushchain/push-dca-node/x/dca/types"
)

// submitLimitOrder places the vault's first swap on the venue's book. The
// order idx arrives with the reply.
func (k Keeper) submitLimitOrder(ctx sdk.Context, vault types.Vault, targetPrice math.LegacyDec) (types.ExecutionOutcome, error) {
	swapBalance, receiveBalance := k.vaultBalances(ctx, vault)
	entry := types.ExecutionCache{
		VaultId:             vault.Id,
		Kind:                types.KindLimitOrderSubmit,
		ReplyOn:             types.ReplyOnSuccess,
		SwapDenomBalance:    swapBalance,
		ReceiveDenomBalance: receiveBalance,
		SwapAmount:          sdk.NewCoin(vault.SwapDenom(), vault.NominalSwapAmount()),
		Adjustment:          math.LegacyOneDec(),
	}

	return k.dispatch(ctx, entry, func(cacheCtx sdk.Context, replyID uint64) (types.VenueResponse, error) {
		return k.venue.SubmitOrder(cacheCtx, types.OrderRequest{
			ReplyId:     replyID,
			Sender:      VaultAccount(vault.Id).String(),
			Pair:        vault.Pair,
			Offer:       entry.SwapAmount,
			TargetPrice: targetPrice,
		})
	})
}

func (k Keeper) afterOrderSubmitted(ctx sdk.Context, entry types.ExecutionCache, reply types.Reply) (types.ExecutionOutcome, error) {
	var data types.OrderSubmittedData
	if err := json.Unmarshal(reply.Data, &data); err != nil {
		return "", errorsmod.Wrapf(types.ErrUnexpectedReply, "reply %d: invalid order data: %s", reply.Id, err)
	}

	trigger, found, err := k.GetTrigger(ctx, entry.VaultId)
	if err != nil {
		return "", err
	}
	cfg, ok := trigger.Configuration.(types.LimitOrderTrigger)
	if !found || !ok {
		return "", errorsmod.Wrapf(types.ErrUnexpectedReply, "vault %d has no limit order trigger", entry.VaultId)
	}

	cfg.OrderIdx = &data.OrderIdx
	if err := k.SaveTrigger(ctx, types.Trigger{VaultId: entry.VaultId, Configuration: cfg}); err != nil {
		return "", err
	}
	if _, err := k.AppendEvent(ctx, entry.VaultId, types.LimitOrderSubmitted{
		OrderIdx:    data.OrderIdx,
		TargetPrice: cfg.TargetPrice,
		Offer:       entry.SwapAmount,
	}); err != nil {
		return "", err
	}
	return types.OutcomeOrderSubmitted, nil
}

// executeFilledOrder withdraws a filled order's proceeds. The withdrawal is
// settled by the same continuation as a swap.
func (k Keeper) executeFilledOrder(ctx sdk.Context, vault types.Vault, cfg types.LimitOrderTrigger) (types.ExecutionOutcome, error) {
	if cfg.OrderIdx == nil {
		return "", errorsmod.Wrapf(types.ErrTargetPriceNotMet, "vault %d order has not been placed", vault.Id)
	}
	order, err := k.venue.GetOrder(ctx, vault.Pair, *cfg.OrderIdx)
	if err != nil {
		return "", errorsmod.Wrapf(err, "failed to query order %d", *cfg.OrderIdx)
	}
	if !order.IsFilled() {
		return "", errorsmod.Wrapf(types.ErrTargetPriceNotMet,
			"order %d has %s of %s remaining", order.Idx, order.RemainingOffer, order.Offer)
	}

	if vault.IsScheduled() {
		now := ctx.BlockTime()
		vault.Status = types.VaultStatusActive
		vault.StartedAt = &now
		if err := k.setVault(ctx, vault); err != nil {
			return "", err
		}
	}
	if _, err := k.AppendEvent(ctx, vault.Id, types.LimitOrderFilled{OrderIdx: order.Idx}); err != nil {
		return "", err
	}

	swapBalance, receiveBalance := k.vaultBalances(ctx, vault)
	entry := types.ExecutionCache{
		VaultId:             vault.Id,
		Kind:                types.KindLimitOrderWithdraw,
		ReplyOn:             types.ReplyAlways,
		SwapDenomBalance:    swapBalance,
		ReceiveDenomBalance: receiveBalance,
		SwapAmount:          order.Offer,
		Adjustment:          math.LegacyOneDec(),
		OrderIdx:            order.Idx,
	}
	return k.dispatch(ctx, entry, func(cacheCtx sdk.Context, replyID uint64) (types.VenueResponse, error) {
		return k.venue.WithdrawOrder(cacheCtx, types.OrderRef{
			ReplyId:  replyID,
			Owner:    VaultAccount(vault.Id).String(),
			Pair:     vault.Pair,
			OrderIdx: order.Idx,
		})
	})
}

// HandleOrderFilled executes the vault that owns a filled venue order.
func (k Keeper) HandleOrderFilled(ctx sdk.Context, orderIdx uint64) (uint64, types.ExecutionOutcome, error) {
	vaultID, found, err := k.VaultByOrderIdx(ctx, orderIdx)
	if err != nil {
		return 0, "", err
	}
	if !found {
		return 0, "", errorsmod.Wrapf(types.ErrTriggerNotFound, "no vault owns order %d", orderIdx)
	}
	outcome, err := k.ExecuteTrigger(ctx, vaultID)
	return vaultID, outcome, err
}

// retractLimitOrder pulls an open order of a cancelled vault off the book.
// The refund is completed by the continuation.
func (k Keeper) retractLimitOrder(ctx sdk.Context, vault types.Vault, orderIdx uint64) (types.ExecutionOutcome, error) {
	order, err := k.venue.GetOrder(ctx, vault.Pair, orderIdx)
	if err != nil {
		return "", errorsmod.Wrapf(err, "failed to query order %d", orderIdx)
	}

	swapBalance, receiveBalance := k.vaultBalances(ctx, vault)
	entry := types.ExecutionCache{
		VaultId:             vault.Id,
		Kind:                types.KindLimitOrderRetract,
		ReplyOn:             types.ReplyOnSuccess,
		SwapDenomBalance:    swapBalance,
		ReceiveDenomBalance: receiveBalance,
		SwapAmount:          order.Offer,
		Adjustment:          math.LegacyOneDec(),
		OrderIdx:            orderIdx,
	}
	return k.dispatch(ctx, entry, func(cacheCtx sdk.Context, replyID uint64) (types.VenueResponse, error) {
		return k.venue.RetractOrder(cacheCtx, types.OrderRef{
			ReplyId:  replyID,
			Owner:    VaultAccount(vault.Id).String(),
			Pair:     vault.Pair,
			OrderIdx: orderIdx,
		})
	})
}

// afterOrderRetracted books whatever part of the order was filled and
// refunds the vault to its owner.
func (k Keeper) afterOrderRetracted(ctx sdk.Context, entry types.ExecutionCache, _ types.Reply) (types.ExecutionOutcome, error) {
	vault, err := k.GetVault(ctx, entry.VaultId)
	if err != nil {
		return "", err
	}

	swapBalance, receiveBalance := k.vaultBalances(ctx, vault)
	returned := swapBalance.Amount.Sub(entry.SwapDenomBalance.Amount)
	received := receiveBalance.Amount.Sub(entry.ReceiveDenomBalance.Amount)
	filled := entry.SwapAmount.Amount.Sub(returned)
	if returned.IsNegative() || received.IsNegative() || filled.IsNegative() || filled.GT(vault.Balance.Amount) {
		return "", errorsmod.Wrapf(types.ErrArithmetic,
			"vault %d retract: returned %s received %s of offer %s", vault.Id, returned, received, entry.SwapAmount)
	}

	vault.Balance = vault.Balance.SubAmount(filled)
	vault.SwappedAmount = vault.SwappedAmount.AddAmount(filled)
	vault.ReceivedAmount = vault.ReceivedAmount.AddAmount(received)
	if err := k.setVault(ctx, vault); err != nil {
		return "", err
	}

	if _, err := k.AppendEvent(ctx, vault.Id, types.LimitOrderRetracted{
		OrderIdx: entry.OrderIdx,
		Returned: sdk.NewCoin(vault.SwapDenom(), returned),
	}); err != nil {
		return "", err
	}

	owner := sdk.MustAccAddressFromBech32(vault.Owner)
	if err := k.sendFromVault(ctx, vault.Id, owner, sdk.NewCoin(vault.ReceiveDenom(), received)); err != nil {
		return "", err
	}
	if _, err := k.refund(ctx, vault); err != nil {
		return "", err
	}
	return types.OutcomeCancelled, nil
}
