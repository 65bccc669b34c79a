package keeper

import (
	"context"
	"time"

	"cosmossdk.io/collections"

	"github.com/pushchain/push-dca-node/x/dca/types"
)

// InitGenesis initializes the module's state from a genesis state.
func (k *Keeper) InitGenesis(ctx context.Context, data *types.GenesisState) error {
	if err := data.Validate(); err != nil {
		return err
	}
	if err := k.Params.Set(ctx, data.Params); err != nil {
		return err
	}

	var nextVault uint64
	for _, v := range data.Vaults {
		if err := k.Vaults.Set(ctx, v.Id, v); err != nil {
			return err
		}
		if err := k.VaultsByOwner.Set(ctx, collections.Join(v.Owner, v.Id)); err != nil {
			return err
		}
		if v.Id >= nextVault {
			nextVault = v.Id + 1
		}
	}
	if err := k.VaultSequence.Set(ctx, nextVault); err != nil {
		return err
	}

	for _, t := range data.Triggers {
		if err := k.SaveTrigger(ctx, t); err != nil {
			return err
		}
	}

	var nextEvent uint64
	for _, e := range data.Events {
		if err := k.Events.Set(ctx, e.Id, e); err != nil {
			return err
		}
		if err := k.EventsByResource.Set(ctx, collections.Join(e.ResourceId, e.Id)); err != nil {
			return err
		}
		if e.Id >= nextEvent {
			nextEvent = e.Id + 1
		}
	}
	if err := k.EventSequence.Set(ctx, nextEvent); err != nil {
		return err
	}

	for _, a := range data.SwapAdjustments {
		if err := k.SwapAdjustments.Set(ctx, a.ModelId, a.Multiplier); err != nil {
			return err
		}
	}
	if data.AdjustmentsAt != nil {
		if err := k.AdjustmentsUpdatedAt.Set(ctx, *data.AdjustmentsAt); err != nil {
			return err
		}
	}

	for _, task := range data.ClaimEscrowTasks {
		if err := k.ClaimEscrowTasks.Set(ctx, collections.Join(task.DueTime, task.VaultId)); err != nil {
			return err
		}
	}

	var nextReply uint64
	for _, entry := range data.InFlight {
		if err := k.ExecutionCache.Set(ctx, entry.ReplyId, entry); err != nil {
			return err
		}
		if entry.Kind.Exclusive() {
			if err := k.InFlight.Set(ctx, entry.VaultId, entry.ReplyId); err != nil {
				return err
			}
		}
		if entry.ReplyId >= nextReply {
			nextReply = entry.ReplyId + 1
		}
	}
	return k.ReplySequence.Set(ctx, nextReply)
}

// ExportGenesis exports the module's state to a genesis state.
func (k *Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	params, err := k.Params.Get(ctx)
	if err != nil {
		return nil, err
	}
	gs := &types.GenesisState{Params: params}

	err = k.Vaults.Walk(ctx, nil, func(_ uint64, v types.Vault) (bool, error) {
		gs.Vaults = append(gs.Vaults, v)
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	err = k.Triggers.Walk(ctx, nil, func(_ uint64, t types.Trigger) (bool, error) {
		gs.Triggers = append(gs.Triggers, t)
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	if gs.Events, err = k.EventsAfter(ctx, nil, 0); err != nil {
		return nil, err
	}
	if gs.SwapAdjustments, err = k.SwapAdjustmentsList(ctx); err != nil {
		return nil, err
	}
	if at, err := k.AdjustmentsUpdatedAt.Get(ctx); err == nil {
		gs.AdjustmentsAt = &at
	}

	err = k.ClaimEscrowTasks.Walk(ctx, nil, func(key collections.Pair[time.Time, uint64]) (bool, error) {
		gs.ClaimEscrowTasks = append(gs.ClaimEscrowTasks, types.ClaimEscrowTask{DueTime: key.K1(), VaultId: key.K2()})
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	if gs.InFlight, err = k.AllExecutions(ctx); err != nil {
		return nil, err
	}
	return gs, nil
}
