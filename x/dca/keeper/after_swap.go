package keeper

import (
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/pushchain/push-dca-node/x/dca/types"
)

// afterSwap settles a swap or a limit order withdrawal. A failed venue call
// leaves the vault and its trigger untouched so the next sweep retries.
func (k Keeper) afterSwap(ctx sdk.Context, entry types.ExecutionCache, reply types.Reply) (types.ExecutionOutcome, error) {
	vault, err := k.GetVault(ctx, entry.VaultId)
	if err != nil {
		return "", err
	}

	if !reply.Succeeded() {
		if _, err := k.AppendEvent(ctx, vault.Id, types.SwapFailed{Attempted: entry.SwapAmount, Reason: reply.Error}); err != nil {
			return "", err
		}
		return types.OutcomeSwapFailed, nil
	}

	params, err := k.Params.Get(ctx)
	if err != nil {
		return "", err
	}

	swapBalance, receiveBalance := k.vaultBalances(ctx, vault)
	sent := entry.SwapDenomBalance.Amount.Sub(swapBalance.Amount)
	if entry.Kind == types.KindLimitOrderWithdraw {
		// the offer left the vault account when the order was placed
		sent = entry.SwapAmount.Amount
	}
	received := receiveBalance.Amount.Sub(entry.ReceiveDenomBalance.Amount)
	if sent.IsNegative() || received.IsNegative() || sent.GT(vault.Balance.Amount) {
		return "", errorsmod.Wrapf(types.ErrArithmetic,
			"vault %d reply %d: sent %s received %s against balance %s", vault.Id, entry.ReplyId, sent, received, vault.Balance)
	}

	receivedDec := math.LegacyNewDecFromInt(received)
	swapFee := receivedDec.Mul(params.SwapFeeRate).TruncateInt()
	automationFee := receivedDec.Mul(params.AutomationFeeRate).Mul(vault.DelegatedShare()).TruncateInt()
	fee := math.MinInt(swapFee.Add(automationFee), received)
	net := received.Sub(fee)

	escrowed := math.ZeroInt()
	if vault.IsDcaPlus() {
		escrowed = math.LegacyNewDecFromInt(net).Mul(vault.DcaPlusConfig.EscrowLevel).TruncateInt()
	}

	receiveDenom := vault.ReceiveDenom()
	vault.Balance = vault.Balance.SubAmount(sent)
	vault.SwappedAmount = vault.SwappedAmount.AddAmount(sent)
	vault.ReceivedAmount = vault.ReceivedAmount.AddAmount(received)
	if vault.IsDcaPlus() {
		cfg := *vault.DcaPlusConfig
		cfg.EscrowedBalance = cfg.EscrowedBalance.AddAmount(escrowed)
		vault.DcaPlusConfig = &cfg
	}
	if err := k.setVault(ctx, vault); err != nil {
		return "", err
	}

	if entry.Kind == types.KindLimitOrderWithdraw {
		if _, err := k.AppendEvent(ctx, vault.Id, types.LimitOrderWithdrawn{OrderIdx: entry.OrderIdx}); err != nil {
			return "", err
		}
	}
	if _, err := k.AppendEvent(ctx, vault.Id, types.SwapExecuted{
		Sent:       sdk.NewCoin(vault.SwapDenom(), sent),
		Received:   sdk.NewCoin(receiveDenom, received),
		Fee:        sdk.NewCoin(receiveDenom, fee),
		Escrowed:   sdk.NewCoin(receiveDenom, escrowed),
		Adjustment: entry.Adjustment,
	}); err != nil {
		return "", err
	}

	if err := k.sendFromVault(ctx, vault.Id, feeCollector(params), sdk.NewCoin(receiveDenom, fee)); err != nil {
		return "", errorsmod.Wrapf(err, "failed to pay fees of vault %d", vault.Id)
	}
	if err := k.distribute(ctx, vault, sdk.NewCoin(receiveDenom, net.Sub(escrowed))); err != nil {
		return "", err
	}

	if !vault.Balance.IsPositive() {
		if err := k.deactivate(ctx, vault, true); err != nil {
			return "", err
		}
		return types.OutcomeSwapped, nil
	}
	if err := k.scheduleNext(ctx, vault); err != nil {
		return "", err
	}
	return types.OutcomeSwapped, nil
}

// scheduleNext replaces the trigger with the next time slot. Time triggers
// stay on their grid; a filled limit order starts a new grid at block time.
func (k Keeper) scheduleNext(ctx sdk.Context, vault types.Vault) error {
	now := ctx.BlockTime()
	last := now
	current, found, err := k.GetTrigger(ctx, vault.Id)
	if err != nil {
		return err
	}
	if target, ok := current.TargetTime(); found && ok {
		last = target
	}

	next := types.NextTargetTime(now, last, vault.TimeInterval)
	if err := k.SaveTrigger(ctx, types.Trigger{VaultId: vault.Id, Configuration: types.TimeTrigger{TargetTime: next}}); err != nil {
		return err
	}
	if found {
		if _, isTime := current.Configuration.(types.TimeTrigger); isTime {
			return nil
		}
	}
	_, err = k.AppendEvent(ctx, vault.Id, types.TriggerCreated{Kind: types.TimeTrigger{}.Kind(), TargetTime: &next})
	return err
}
