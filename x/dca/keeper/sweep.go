package keeper

import (
	"errors"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/pushchain/push-dca-node/x/dca/types"
)

// ExecuteDueTriggers fires up to limit due time triggers, oldest first, then
// settles due escrow claims. Every vault runs in its own branch: a vault that
// fails fatally is rolled back and reported without affecting the others.
func (k Keeper) ExecuteDueTriggers(ctx sdk.Context, limit uint32) (types.SweepReport, error) {
	params, err := k.Params.Get(ctx)
	if err != nil {
		return types.SweepReport{}, errorsmod.Wrap(err, "failed to get params")
	}
	if params.Paused {
		return types.SweepReport{}, types.ErrPaused
	}
	if limit == 0 {
		limit = params.SweepLimit
	}

	due, err := k.DueBefore(ctx, ctx.BlockTime(), limit)
	if err != nil {
		return types.SweepReport{}, err
	}

	report := types.NewSweepReport()
	for _, vaultID := range due {
		cacheCtx, write := ctx.CacheContext()
		outcome, err := k.ExecuteTrigger(cacheCtx, vaultID)
		switch {
		case err == nil:
			write()
			report.Record(outcome)
		case errors.Is(err, types.ErrSwapAmountTooSmall):
			write()
			report.Record(outcome)
		default:
			k.Logger().Error("vault execution failed", "vault_id", vaultID, "error", err.Error())
			report.Fail(vaultID, err)
		}
	}

	claimed, claimErrs := k.ProcessDueEscrowClaims(ctx, limit)
	report.EscrowClaimed = claimed
	report.Errors = append(report.Errors, claimErrs...)

	event, err := types.NewSweepCompletedEvent(report)
	if err != nil {
		return report, err
	}
	ctx.EventManager().EmitEvent(event)

	k.Logger().Info("sweep completed",
		"attempted", report.Attempted, "failed", len(report.Errors), "escrow_claimed", report.EscrowClaimed)
	return report, nil
}

// UpdateParams replaces the module params after validating them.
func (k Keeper) UpdateParams(ctx sdk.Context, params types.Params) error {
	if err := params.ValidateBasic(); err != nil {
		return err
	}
	return k.Params.Set(ctx, params)
}
