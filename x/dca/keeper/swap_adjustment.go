package keeper

import (
	"context"
	"errors"

	"cosmossdk.io/collections"
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/pushchain/push-dca-node/x/dca/types"
)

// SetSwapAdjustments overwrites the multipliers of the given models.
func (k Keeper) SetSwapAdjustments(ctx context.Context, adjustments []types.SwapAdjustment) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	for _, a := range adjustments {
		if err := k.SwapAdjustments.Set(ctx, a.ModelId, a.Multiplier); err != nil {
			return errorsmod.Wrapf(err, "failed to store adjustment of model %d", a.ModelId)
		}
	}
	if err := k.AdjustmentsUpdatedAt.Set(ctx, sdkCtx.BlockTime()); err != nil {
		return err
	}

	event, err := types.NewAdjustmentsUpdatedEvent(adjustments)
	if err != nil {
		return err
	}
	sdkCtx.EventManager().EmitEvent(event)
	return nil
}

// GetSwapAdjustment returns the multiplier of a model.
func (k Keeper) GetSwapAdjustment(ctx context.Context, modelID uint32) (math.LegacyDec, error) {
	multiplier, err := k.SwapAdjustments.Get(ctx, modelID)
	if errors.Is(err, collections.ErrNotFound) {
		return math.LegacyDec{}, errorsmod.Wrapf(types.ErrAdjustmentModelMissing, "model %d", modelID)
	}
	return multiplier, err
}

// SwapAdjustmentsList returns the table ordered by model id.
func (k Keeper) SwapAdjustmentsList(ctx context.Context) ([]types.SwapAdjustment, error) {
	out := make([]types.SwapAdjustment, 0)
	err := k.SwapAdjustments.Walk(ctx, nil, func(modelID uint32, multiplier math.LegacyDec) (bool, error) {
		out = append(out, types.SwapAdjustment{ModelId: modelID, Multiplier: multiplier})
		return false, nil
	})
	return out, err
}

// adjustedSwapAmount scales the nominal amount of a dca plus vault by its
// model and caps it at the balance. Other vaults use a multiplier of one.
func (k Keeper) adjustedSwapAmount(ctx context.Context, vault types.Vault) (math.Int, math.LegacyDec, error) {
	nominal := vault.NominalSwapAmount()
	if !vault.IsDcaPlus() {
		return nominal, math.LegacyOneDec(), nil
	}

	multiplier, err := k.GetSwapAdjustment(ctx, vault.DcaPlusConfig.ModelId)
	if err != nil {
		return math.Int{}, math.LegacyDec{}, err
	}
	adjusted := math.LegacyNewDecFromInt(nominal).Mul(multiplier).TruncateInt()
	return math.MinInt(adjusted, vault.Balance.Amount), multiplier, nil
}
