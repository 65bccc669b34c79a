package keeper

import (
	"context"
	"errors"

	"cosmossdk.io/collections"
	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/pushchain/push-dca-node/x/dca/types"
)

// AppendEvent writes data to the log of resourceID and returns the new event
// id. Ids come from a single global sequence.
func (k Keeper) AppendEvent(ctx context.Context, resourceID uint64, data types.EventData) (uint64, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	id, err := k.EventSequence.Next(ctx)
	if err != nil {
		return 0, errorsmod.Wrap(err, "failed to get next event id")
	}

	event := types.Event{
		Id:          id,
		ResourceId:  resourceID,
		Timestamp:   sdkCtx.BlockTime(),
		BlockHeight: sdkCtx.BlockHeight(),
		Data:        data,
	}
	if err := k.Events.Set(ctx, id, event); err != nil {
		return 0, errorsmod.Wrapf(err, "failed to store event %d", id)
	}
	if err := k.EventsByResource.Set(ctx, collections.Join(resourceID, id)); err != nil {
		return 0, errorsmod.Wrapf(err, "failed to index event %d", id)
	}

	sdkEvent, err := types.NewVaultLogEvent(event)
	if err != nil {
		return 0, err
	}
	sdkCtx.EventManager().EmitEvent(sdkEvent)

	return id, nil
}

// GetEvent looks an event up through the resource index.
func (k Keeper) GetEvent(ctx context.Context, resourceID, eventID uint64) (types.Event, error) {
	ok, err := k.EventsByResource.Has(ctx, collections.Join(resourceID, eventID))
	if err != nil {
		return types.Event{}, err
	}
	if !ok {
		return types.Event{}, errorsmod.Wrapf(types.ErrEventNotFound, "event %d of vault %d", eventID, resourceID)
	}
	return k.Events.Get(ctx, eventID)
}

// GetEventByID looks an event up by its global id.
func (k Keeper) GetEventByID(ctx context.Context, eventID uint64) (types.Event, error) {
	event, err := k.Events.Get(ctx, eventID)
	if errors.Is(err, collections.ErrNotFound) {
		return types.Event{}, errorsmod.Wrapf(types.ErrEventNotFound, "event %d", eventID)
	}
	return event, err
}

// ListEventsByResource returns the events of resourceID in id order.
func (k Keeper) ListEventsByResource(ctx context.Context, resourceID uint64, page types.PageRequest) ([]types.Event, error) {
	limit, err := k.pageLimit(ctx, page.Limit)
	if err != nil {
		return nil, err
	}

	rng := collections.NewPrefixedPairRange[uint64, uint64](resourceID)
	if page.StartAfter != nil {
		rng = rng.StartExclusive(*page.StartAfter)
	}

	events := make([]types.Event, 0)
	err = k.EventsByResource.Walk(ctx, rng, func(key collections.Pair[uint64, uint64]) (bool, error) {
		event, err := k.Events.Get(ctx, key.K2())
		if err != nil {
			return true, err
		}
		events = append(events, event)
		return uint32(len(events)) >= limit, nil
	})
	return events, err
}

// EventsAfter returns up to limit events of every resource with ids above
// cursor. It is used to follow the log incrementally.
func (k Keeper) EventsAfter(ctx context.Context, cursor *uint64, limit uint32) ([]types.Event, error) {
	rng := new(collections.Range[uint64])
	if cursor != nil {
		rng = rng.StartExclusive(*cursor)
	}

	events := make([]types.Event, 0)
	err := k.Events.Walk(ctx, rng, func(_ uint64, event types.Event) (bool, error) {
		events = append(events, event)
		return limit > 0 && uint32(len(events)) >= limit, nil
	})
	return events, err
}
