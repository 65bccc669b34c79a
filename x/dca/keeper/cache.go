package keeper

import (
	"context"
	"errors"

	"cosmossdk.io/collections"
	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/pushchain/push-dca-node/x/dca/types"
)

// openExecution stores entry under a fresh reply id. Exclusive kinds claim
// the vault's in-flight slot and fail when it is taken.
func (k Keeper) openExecution(ctx sdk.Context, entry *types.ExecutionCache) error {
	if entry.Kind.Exclusive() {
		busy, err := k.InFlight.Has(ctx, entry.VaultId)
		if err != nil {
			return err
		}
		if busy {
			return errorsmod.Wrapf(types.ErrExecutionInProgress, "vault %d", entry.VaultId)
		}
	}

	replyID, err := k.ReplySequence.Next(ctx)
	if err != nil {
		return errorsmod.Wrap(err, "failed to get next reply id")
	}
	entry.ReplyId = replyID
	entry.CreatedAt = ctx.BlockTime()
	entry.CreatedHeight = ctx.BlockHeight()

	if err := k.ExecutionCache.Set(ctx, replyID, *entry); err != nil {
		return errorsmod.Wrapf(err, "failed to store execution cache %d", replyID)
	}
	if entry.Kind.Exclusive() {
		return k.InFlight.Set(ctx, entry.VaultId, replyID)
	}
	return nil
}

// takeExecution removes and returns the entry for replyID.
func (k Keeper) takeExecution(ctx context.Context, replyID uint64) (types.ExecutionCache, error) {
	entry, err := k.ExecutionCache.Get(ctx, replyID)
	if errors.Is(err, collections.ErrNotFound) {
		return types.ExecutionCache{}, errorsmod.Wrapf(types.ErrNoCacheEntry, "reply %d", replyID)
	}
	if err != nil {
		return types.ExecutionCache{}, err
	}

	if err := k.ExecutionCache.Remove(ctx, replyID); err != nil {
		return types.ExecutionCache{}, err
	}
	if entry.Kind.Exclusive() {
		slot, err := k.InFlight.Get(ctx, entry.VaultId)
		if err != nil || slot != replyID {
			return types.ExecutionCache{}, errorsmod.Wrapf(types.ErrUnexpectedReply,
				"reply %d does not hold the in-flight slot of vault %d", replyID, entry.VaultId)
		}
		if err := k.InFlight.Remove(ctx, entry.VaultId); err != nil {
			return types.ExecutionCache{}, err
		}
	}
	return entry, nil
}

// InFlightExecution returns the unresolved exclusive entry of a vault.
func (k Keeper) InFlightExecution(ctx context.Context, vaultID uint64) (types.ExecutionCache, bool, error) {
	replyID, err := k.InFlight.Get(ctx, vaultID)
	if errors.Is(err, collections.ErrNotFound) {
		return types.ExecutionCache{}, false, nil
	}
	if err != nil {
		return types.ExecutionCache{}, false, err
	}
	entry, err := k.ExecutionCache.Get(ctx, replyID)
	if err != nil {
		return types.ExecutionCache{}, false, errorsmod.Wrapf(err, "in-flight reply %d of vault %d", replyID, vaultID)
	}
	return entry, true, nil
}

// AllExecutions lists every unresolved cache entry in reply id order.
func (k Keeper) AllExecutions(ctx context.Context) ([]types.ExecutionCache, error) {
	entries := make([]types.ExecutionCache, 0)
	err := k.ExecutionCache.Walk(ctx, nil, func(_ uint64, entry types.ExecutionCache) (bool, error) {
		entries = append(entries, entry)
		return false, nil
	})
	return entries, err
}
