package keeper

import (
	"errors"

	"cosmossdk.io/collections"
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkErrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/pushchain/push-dca-node/x/dca/types"
)

// OpenVault creates a vault from msg, moves the deposit into the vault
// account and sets up its first trigger. Without a start time or a target
// receive amount the vault executes right away.
func (k Keeper) OpenVault(ctx sdk.Context, msg *types.MsgCreateVault) (uint64, error) {
	params, err := k.Params.Get(ctx)
	if err != nil {
		return 0, errorsmod.Wrap(err, "failed to get params")
	}
	if params.Paused {
		return 0, types.ErrPaused
	}

	destinations := msg.Destinations
	if len(destinations) == 0 {
		destinations = []types.Destination{{
			Address:    msg.Owner,
			Allocation: math.LegacyOneDec(),
			Action:     types.ActionSend,
		}}
	}
	if err := types.ValidateDestinations(destinations, params.MaxDestinations); err != nil {
		return 0, err
	}
	if msg.SwapAmount.LT(params.MinimumSwapAmount) {
		return 0, errorsmod.Wrapf(types.ErrInvalidRequest,
			"swap amount %s is below the minimum swap amount %s", msg.SwapAmount, params.MinimumSwapAmount)
	}

	now := ctx.BlockTime()
	receiveDenom := msg.Pair.Other(msg.Deposit.Denom)
	vault := types.Vault{
		Owner:                msg.Owner,
		Label:                msg.Label,
		Destinations:         destinations,
		Status:               types.VaultStatusScheduled,
		Balance:              msg.Deposit,
		Pair:                 msg.Pair,
		SwapAmount:           msg.SwapAmount,
		SlippageTolerance:    math.LegacyMustNewDecFromStr(types.DefaultMaxSlippage),
		MinimumReceiveAmount: msg.MinimumReceiveAmount,
		PriceThreshold:       msg.PriceThreshold,
		TimeInterval:         msg.TimeInterval,
		SwappedAmount:        sdk.NewInt64Coin(msg.Deposit.Denom, 0),
		ReceivedAmount:       sdk.NewInt64Coin(receiveDenom, 0),
		DepositedAmount:      msg.Deposit,
		CreatedAt:            now,
	}
	if msg.SlippageTolerance != nil {
		vault.SlippageTolerance = *msg.SlippageTolerance
	}
	if msg.DcaPlus != nil {
		if _, err := k.GetSwapAdjustment(ctx, msg.DcaPlus.ModelId); err != nil {
			return 0, err
		}
		vault.DcaPlusConfig = &types.DcaPlusConfig{
			EscrowLevel:  msg.DcaPlus.EscrowLevel,
			ModelId:      msg.DcaPlus.ModelId,
			TotalDeposit: msg.Deposit,
			StandardDca: types.StandardDca{
				SwappedAmount:  sdk.NewInt64Coin(msg.Deposit.Denom, 0),
				ReceivedAmount: sdk.NewInt64Coin(receiveDenom, 0),
			},
			EscrowedBalance: sdk.NewInt64Coin(receiveDenom, 0),
		}
	}

	id, err := k.CreateVault(ctx, vault)
	if err != nil {
		return 0, err
	}
	vault.Id = id

	owner := sdk.MustAccAddressFromBech32(msg.Owner)
	if err := k.bankKeeper.SendCoins(ctx, owner, VaultAccount(id), sdk.NewCoins(msg.Deposit)); err != nil {
		return 0, errorsmod.Wrapf(err, "failed to fund vault %d", id)
	}
	if _, err := k.AppendEvent(ctx, id, types.VaultCreated{}); err != nil {
		return 0, err
	}
	if _, err := k.AppendEvent(ctx, id, types.FundsDeposited{Amount: msg.Deposit}); err != nil {
		return 0, err
	}

	if msg.TargetReceiveAmount != nil {
		return id, k.openLimitOrder(ctx, vault, *msg.TargetReceiveAmount)
	}

	target := now
	if msg.TargetStartTime != nil && msg.TargetStartTime.After(now) {
		target = *msg.TargetStartTime
	}
	if err := k.SaveTrigger(ctx, types.Trigger{VaultId: id, Configuration: types.TimeTrigger{TargetTime: target}}); err != nil {
		return 0, err
	}
	if _, err := k.AppendEvent(ctx, id, types.TriggerCreated{Kind: types.TimeTrigger{}.Kind(), TargetTime: &target}); err != nil {
		return 0, err
	}

	if msg.TargetStartTime == nil {
		if _, err := k.ExecuteTrigger(ctx, id); err != nil && !errors.Is(err, types.ErrSwapAmountTooSmall) {
			return 0, err
		}
	}
	return id, nil
}

func (k Keeper) openLimitOrder(ctx sdk.Context, vault types.Vault, targetReceive math.Int) error {
	price, err := types.LimitOrderTargetPrice(vault.PositionType(), vault.NominalSwapAmount(), targetReceive)
	if err != nil {
		return errorsmod.Wrap(types.ErrInvalidRequest, err.Error())
	}
	if err := k.SaveTrigger(ctx, types.Trigger{VaultId: vault.Id, Configuration: types.LimitOrderTrigger{TargetPrice: price}}); err != nil {
		return err
	}
	if _, err := k.AppendEvent(ctx, vault.Id, types.TriggerCreated{Kind: types.LimitOrderTrigger{}.Kind(), TargetPrice: &price}); err != nil {
		return err
	}
	_, err = k.submitLimitOrder(ctx, vault, price)
	return err
}

// Deposit tops up a vault. An inactive vault whose balance covers a swap
// again is reactivated with a trigger at block time.
func (k Keeper) Deposit(ctx sdk.Context, sender string, vaultID uint64, amount sdk.Coin) error {
	params, err := k.Params.Get(ctx)
	if err != nil {
		return errorsmod.Wrap(err, "failed to get params")
	}
	vault, err := k.GetVault(ctx, vaultID)
	if err != nil {
		return err
	}
	if vault.Owner != sender {
		return errorsmod.Wrapf(sdkErrors.ErrUnauthorized, "only the owner can deposit into vault %d", vaultID)
	}
	if vault.IsCancelled() {
		return errorsmod.Wrapf(types.ErrVaultCancelled, "vault %d", vaultID)
	}
	if amount.Denom != vault.SwapDenom() {
		return errorsmod.Wrapf(types.ErrInvalidFunds, "vault %d accepts %s, got %s", vaultID, vault.SwapDenom(), amount.Denom)
	}
	if busy, err := k.InFlight.Has(ctx, vaultID); err != nil {
		return err
	} else if busy {
		return errorsmod.Wrapf(types.ErrExecutionInProgress, "vault %d", vaultID)
	}

	from := sdk.MustAccAddressFromBech32(sender)
	if err := k.bankKeeper.SendCoins(ctx, from, VaultAccount(vaultID), sdk.NewCoins(amount)); err != nil {
		return errorsmod.Wrapf(err, "failed to fund vault %d", vaultID)
	}

	vault.Balance = vault.Balance.Add(amount)
	vault.DepositedAmount = vault.DepositedAmount.Add(amount)
	if vault.IsDcaPlus() {
		vault.DcaPlusConfig.TotalDeposit = vault.DcaPlusConfig.TotalDeposit.Add(amount)
	}
	reactivate := vault.IsInactive() && !vault.NominalSwapAmount().LT(params.MinimumSwapAmount)
	if reactivate {
		vault.Status = types.VaultStatusActive
	}
	if err := k.setVault(ctx, vault); err != nil {
		return err
	}
	if _, err := k.AppendEvent(ctx, vaultID, types.FundsDeposited{Amount: amount}); err != nil {
		return err
	}
	if !reactivate {
		return nil
	}

	now := ctx.BlockTime()
	if err := k.SaveTrigger(ctx, types.Trigger{VaultId: vaultID, Configuration: types.TimeTrigger{TargetTime: now}}); err != nil {
		return err
	}
	if err := k.removeEscrowTasks(ctx, vaultID); err != nil {
		return err
	}
	_, err = k.AppendEvent(ctx, vaultID, types.TriggerCreated{Kind: types.TimeTrigger{}.Kind(), TargetTime: &now})
	return err
}

// UpdateVaultLabel renames a vault on behalf of its owner.
func (k Keeper) UpdateVaultLabel(ctx sdk.Context, owner string, vaultID uint64, label string) error {
	_, err := k.UpdateVault(ctx, vaultID, func(v *types.Vault) error {
		if v.Owner != owner {
			return errorsmod.Wrapf(sdkErrors.ErrUnauthorized, "only the owner can relabel vault %d", vaultID)
		}
		v.Label = label
		return nil
	})
	if err != nil {
		return err
	}
	_, err = k.AppendEvent(ctx, vaultID, types.VaultLabelUpdated{Label: label})
	return err
}

// CancelVault stops a vault for good and refunds its balance to the owner.
// A vault with an open limit order is refunded once the order is retracted,
// which may happen in a later invocation.
func (k Keeper) CancelVault(ctx sdk.Context, sender string, vaultID uint64) (sdk.Coin, types.ExecutionOutcome, error) {
	params, err := k.Params.Get(ctx)
	if err != nil {
		return sdk.Coin{}, "", errorsmod.Wrap(err, "failed to get params")
	}
	vault, err := k.GetVault(ctx, vaultID)
	if err != nil {
		return sdk.Coin{}, "", err
	}
	if sender != vault.Owner && sender != params.Admin {
		return sdk.Coin{}, "", errorsmod.Wrapf(sdkErrors.ErrUnauthorized, "%s cannot cancel vault %d", sender, vaultID)
	}
	if vault.IsCancelled() {
		return sdk.Coin{}, "", errorsmod.Wrapf(types.ErrVaultCancelled, "vault %d", vaultID)
	}
	if busy, err := k.InFlight.Has(ctx, vaultID); err != nil {
		return sdk.Coin{}, "", err
	} else if busy {
		return sdk.Coin{}, "", errorsmod.Wrapf(types.ErrExecutionInProgress, "vault %d", vaultID)
	}

	trigger, found, err := k.GetTrigger(ctx, vaultID)
	if err != nil {
		return sdk.Coin{}, "", err
	}

	vault.Status = types.VaultStatusCancelled
	if err := k.setVault(ctx, vault); err != nil {
		return sdk.Coin{}, "", err
	}
	if err := k.RemoveTrigger(ctx, vaultID); err != nil {
		return sdk.Coin{}, "", err
	}

	if orderIdx, open := trigger.OrderIdx(); found && open {
		outcome, err := k.retractLimitOrder(ctx, vault, orderIdx)
		if err != nil || outcome == types.OutcomePending {
			return sdk.NewInt64Coin(vault.SwapDenom(), 0), outcome, err
		}
		refund, err := k.lastRefund(ctx, vaultID)
		return refund, outcome, err
	}

	refund, err := k.refund(ctx, vault)
	return refund, types.OutcomeCancelled, err
}

// refund returns the remaining balance of a cancelled vault to its owner and
// settles any escrow.
func (k Keeper) refund(ctx sdk.Context, vault types.Vault) (sdk.Coin, error) {
	refund := vault.Balance
	if err := k.sendFromVault(ctx, vault.Id, sdk.MustAccAddressFromBech32(vault.Owner), refund); err != nil {
		return sdk.Coin{}, errorsmod.Wrapf(err, "failed to refund vault %d", vault.Id)
	}

	vault.Balance = sdk.NewInt64Coin(vault.SwapDenom(), 0)
	if err := k.setVault(ctx, vault); err != nil {
		return sdk.Coin{}, err
	}
	if _, err := k.AppendEvent(ctx, vault.Id, types.VaultCancelled{Refund: refund}); err != nil {
		return sdk.Coin{}, err
	}

	if vault.IsDcaPlus() {
		if _, _, err := k.ClaimEscrowedFunds(ctx, vault.Id); err != nil {
			return sdk.Coin{}, err
		}
	}
	return refund, nil
}

// lastRefund reads the refund recorded by the most recent cancellation event
// of a vault.
func (k Keeper) lastRefund(ctx sdk.Context, vaultID uint64) (sdk.Coin, error) {
	var refund sdk.Coin
	rng := collections.NewPrefixedPairRange[uint64, uint64](vaultID).Descending()
	err := k.EventsByResource.Walk(ctx, rng, func(key collections.Pair[uint64, uint64]) (bool, error) {
		event, err := k.Events.Get(ctx, key.K2())
		if err != nil {
			return true, err
		}
		if cancelled, ok := event.Data.(types.VaultCancelled); ok {
			refund = cancelled.Refund
			return true, nil
		}
		return false, nil
	})
	return refund, err
}
