package module

import (
	"time"

	"github.com/cosmos/cosmos-sdk/telemetry"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/pushchain/push-dca-node/x/dca/keeper"
	"github.com/pushchain/push-dca-node/x/dca/types"
)

// EndBlocker executes due triggers when automatic execution is enabled. A
// failed sweep is logged and never halts the chain.
func EndBlocker(ctx sdk.Context, k keeper.Keeper) error {
	defer telemetry.ModuleMeasureSince(types.ModuleName, time.Now(), telemetry.MetricKeyEndBlocker)

	params, err := k.Params.Get(ctx)
	if err != nil {
		return err
	}
	if !params.AutoExecute || params.Paused {
		return nil
	}

	report, err := k.ExecuteDueTriggers(ctx, params.SweepLimit)
	if err != nil {
		k.Logger().Error("automatic sweep failed", "height", ctx.BlockHeight(), "error", err.Error())
		return nil
	}

	telemetry.IncrCounter(float32(report.Attempted), types.ModuleName, "executions")
	if n := len(report.Errors); n > 0 {
		telemetry.IncrCounter(float32(n), types.ModuleName, "execution_errors")
	}
	return nil
}
