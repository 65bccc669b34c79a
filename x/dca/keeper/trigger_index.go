package keeper

import (
	"context"
	"errors"
	"math"
	"time"

	"cosmossdk.io/collections"
	errorsmod "cosmossdk.io/errors"

	"github.com/pushchain/push-dca-node/x/dca/types"
)

// SaveTrigger stores the trigger of a vault, replacing any previous one in
// both orderings.
func (k Keeper) SaveTrigger(ctx context.Context, trigger types.Trigger) error {
	if err := k.RemoveTrigger(ctx, trigger.VaultId); err != nil {
		return err
	}

	if err := k.Triggers.Set(ctx, trigger.VaultId, trigger); err != nil {
		return errorsmod.Wrapf(err, "failed to store trigger of vault %d", trigger.VaultId)
	}

	switch c := trigger.Configuration.(type) {
	case types.TimeTrigger:
		return k.TriggersByTime.Set(ctx, collections.Join(c.TargetTime, trigger.VaultId))
	case types.LimitOrderTrigger:
		if c.OrderIdx != nil {
			return k.TriggersByOrder.Set(ctx, *c.OrderIdx, trigger.VaultId)
		}
		return nil
	default:
		return errorsmod.Wrapf(types.ErrInvalidRequest, "trigger of vault %d has no configuration", trigger.VaultId)
	}
}

// RemoveTrigger deletes the trigger of a vault. Removing a missing trigger is
// not an error.
func (k Keeper) RemoveTrigger(ctx context.Context, vaultID uint64) error {
	existing, found, err := k.GetTrigger(ctx, vaultID)
	if err != nil || !found {
		return err
	}

	switch c := existing.Configuration.(type) {
	case types.TimeTrigger:
		if err := k.TriggersByTime.Remove(ctx, collections.Join(c.TargetTime, vaultID)); err != nil {
			return err
		}
	case types.LimitOrderTrigger:
		if c.OrderIdx != nil {
			if err := k.TriggersByOrder.Remove(ctx, *c.OrderIdx); err != nil {
				return err
			}
		}
	}
	return k.Triggers.Remove(ctx, vaultID)
}

// GetTrigger returns the trigger of a vault if it has one.
func (k Keeper) GetTrigger(ctx context.Context, vaultID uint64) (types.Trigger, bool, error) {
	trigger, err := k.Triggers.Get(ctx, vaultID)
	if errors.Is(err, collections.ErrNotFound) {
		return types.Trigger{}, false, nil
	}
	if err != nil {
		return types.Trigger{}, false, err
	}
	return trigger, true, nil
}

// DueBefore lists up to limit vaults whose time trigger is at or before ts,
// ascending by target time then vault id. Vaults waiting on an unresolved
// execution are left out.
func (k Keeper) DueBefore(ctx context.Context, ts time.Time, limit uint32) ([]uint64, error) {
	rng := new(collections.Range[collections.Pair[time.Time, uint64]]).
		EndInclusive(collections.Join(ts, uint64(math.MaxUint64)))

	due := make([]uint64, 0)
	err := k.TriggersByTime.Walk(ctx, rng, func(key collections.Pair[time.Time, uint64]) (bool, error) {
		busy, err := k.InFlight.Has(ctx, key.K2())
		if err != nil {
			return true, err
		}
		if !busy {
			due = append(due, key.K2())
		}
		return limit > 0 && uint32(len(due)) >= limit, nil
	})
	return due, err
}

// VaultByOrderIdx returns the vault owning a venue order.
func (k Keeper) VaultByOrderIdx(ctx context.Context, orderIdx uint64) (uint64, bool, error) {
	vaultID, err := k.TriggersByOrder.Get(ctx, orderIdx)
	if errors.Is(err, collections.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return vaultID, true, nil
}
