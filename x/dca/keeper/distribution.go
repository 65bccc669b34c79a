package keeper

import (
	"encoding/json"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	stakingtypes "github.com/cosmos/cosmos-sdk/x/staking/types"
	transfertypes "github.com/cosmos/ibc-go/v10/modules/apps/transfer/types"

	"github.com/pushchain/push-dca-node/x/dca/types"
)

// distribute splits amount across the vault's destinations and runs each
// destination's post execution action.
func (k Keeper) distribute(ctx sdk.Context, vault types.Vault, amount sdk.Coin) error {
	if !amount.IsPositive() {
		return nil
	}

	shares := types.SplitByAllocation(amount.Amount, vault.Destinations)
	for i, dest := range vault.Destinations {
		share := sdk.NewCoin(amount.Denom, shares[i])
		if !share.IsPositive() {
			continue
		}

		var err error
		switch dest.Action {
		case types.ActionSend:
			err = k.sendFromVault(ctx, vault.Id, sdk.MustAccAddressFromBech32(dest.Address), share)
		case types.ActionZDelegate:
			err = k.zDelegate(ctx, vault, dest, share)
		case types.ActionIbcDelegate:
			err = k.ibcDelegate(ctx, vault, dest, share)
		default:
			err = errorsmod.Wrapf(types.ErrInvalidDestinations, "unknown post execution action %q", dest.Action)
		}
		if err != nil {
			return errorsmod.Wrapf(err, "failed to distribute to destination %d of vault %d", i, vault.Id)
		}
	}
	return nil
}

// zDelegate hands the share to the destination and delegates it from there.
// The delegation result is recorded by its continuation; a failed
// delegation leaves the funds liquid at the destination.
func (k Keeper) zDelegate(ctx sdk.Context, vault types.Vault, dest types.Destination, share sdk.Coin) error {
	if err := k.sendFromVault(ctx, vault.Id, sdk.MustAccAddressFromBech32(dest.Address), share); err != nil {
		return err
	}

	entry := types.ExecutionCache{
		VaultId: vault.Id,
		Kind:    types.KindDelegation,
		ReplyOn: types.ReplyAlways,
		Delegation: &types.PendingDelegation{
			Delegator:        dest.Address,
			ValidatorAddress: dest.ValidatorAddress,
			Amount:           share,
		},
	}
	_, err := k.dispatch(ctx, entry, func(cacheCtx sdk.Context, _ uint64) (types.VenueResponse, error) {
		_, err := k.stakingKeeper.Delegate(cacheCtx, &stakingtypes.MsgDelegate{
			DelegatorAddress: dest.Address,
			ValidatorAddress: dest.ValidatorAddress,
			Amount:           share,
		})
		return types.VenueResponse{}, err
	})
	return err
}

func (k Keeper) afterDelegation(ctx sdk.Context, entry types.ExecutionCache, reply types.Reply) (types.ExecutionOutcome, error) {
	d := entry.Delegation
	if d == nil {
		return "", errorsmod.Wrapf(types.ErrUnexpectedReply, "reply %d carries no delegation", entry.ReplyId)
	}

	var data types.EventData = types.DelegationSucceeded{ValidatorAddress: d.ValidatorAddress, Delegation: d.Amount}
	if !reply.Succeeded() {
		data = types.DelegationFailed{ValidatorAddress: d.ValidatorAddress, Delegation: d.Amount, Reason: reply.Error}
	}
	if _, err := k.AppendEvent(ctx, entry.VaultId, data); err != nil {
		return "", err
	}
	return types.OutcomeSwapped, nil
}

type ibcDelegateMemo struct {
	Delegate ibcDelegation `json:"delegate"`
}

type ibcDelegation struct {
	Delegator string `json:"delegator"`
	Validator string `json:"validator"`
}

// ibcDelegate sends the share to the destination chain with a memo asking
// the receiver to delegate it. When the transfer cannot be sent the share
// goes to the vault owner instead.
func (k Keeper) ibcDelegate(ctx sdk.Context, vault types.Vault, dest types.Destination, share sdk.Coin) error {
	params, err := k.Params.Get(ctx)
	if err != nil {
		return err
	}
	memo, err := json.Marshal(ibcDelegateMemo{Delegate: ibcDelegation{Delegator: dest.Address, Validator: dest.ValidatorAddress}})
	if err != nil {
		return err
	}

	cacheCtx, write := ctx.CacheContext()
	resp, transferErr := k.transferKeeper.Transfer(cacheCtx, &transfertypes.MsgTransfer{
		SourcePort:       transfertypes.PortID,
		SourceChannel:    dest.ChannelId,
		Token:            share,
		Sender:           VaultAccount(vault.Id).String(),
		Receiver:         dest.Address,
		TimeoutTimestamp: uint64(ctx.BlockTime().Add(params.IbcTimeout).UnixNano()),
		Memo:             string(memo),
	})
	if transferErr != nil {
		k.Logger().Info("ibc delegation transfer failed, refunding owner",
			"vault_id", vault.Id, "channel", dest.ChannelId, "error", transferErr.Error())
		if _, err := k.AppendEvent(ctx, vault.Id, types.DelegationFailed{
			ValidatorAddress: dest.ValidatorAddress,
			Delegation:       share,
			Reason:           transferErr.Error(),
		}); err != nil {
			return err
		}
		return k.sendFromVault(ctx, vault.Id, sdk.MustAccAddressFromBech32(vault.Owner), share)
	}
	write()

	_, err = k.AppendEvent(ctx, vault.Id, types.IbcTransferDispatched{
		ChannelId: dest.ChannelId,
		Receiver:  dest.Address,
		Amount:    share,
		Sequence:  resp.Sequence,
	})
	return err
}
