package keeper

import (
	"context"
	"math"
	"time"

	"cosmossdk.io/collections"
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/pushchain/push-dca-node/x/dca/types"
)

// scheduleEscrowClaim books the settlement of a dca plus vault for when its
// baseline is expected to finish. Earlier tasks of the vault are replaced.
func (k Keeper) scheduleEscrowClaim(ctx sdk.Context, vault types.Vault) (time.Time, error) {
	if err := k.removeEscrowTasks(ctx, vault.Id); err != nil {
		return time.Time{}, err
	}
	due := vault.ExpectedCompletion(ctx.BlockTime())
	return due, k.ClaimEscrowTasks.Set(ctx, collections.Join(due, vault.Id))
}

func (k Keeper) removeEscrowTasks(ctx context.Context, vaultID uint64) error {
	var stale []collections.Pair[time.Time, uint64]
	err := k.ClaimEscrowTasks.Walk(ctx, nil, func(key collections.Pair[time.Time, uint64]) (bool, error) {
		if key.K2() == vaultID {
			stale = append(stale, key)
		}
		return false, nil
	})
	if err != nil {
		return err
	}
	for _, key := range stale {
		if err := k.ClaimEscrowTasks.Remove(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// ClaimEscrowedFunds settles the escrow of a dca plus vault: the performance
// fee goes to the fee collector and the rest to the destinations. Running
// vaults are left alone and report nothing disbursed.
func (k Keeper) ClaimEscrowedFunds(ctx sdk.Context, vaultID uint64) (disbursed, fee sdk.Coin, err error) {
	vault, err := k.GetVault(ctx, vaultID)
	if err != nil {
		return sdk.Coin{}, sdk.Coin{}, err
	}
	if !vault.IsDcaPlus() {
		return sdk.Coin{}, sdk.Coin{}, errorsmod.Wrapf(types.ErrNotDcaPlusVault, "vault %d", vaultID)
	}

	zero := sdk.NewInt64Coin(vault.ReceiveDenom(), 0)
	if vault.IsActive() || vault.IsScheduled() {
		return zero, zero, nil
	}

	cfg := *vault.DcaPlusConfig
	escrowed := cfg.EscrowedBalance
	if !escrowed.IsPositive() {
		return zero, zero, k.removeEscrowTasks(ctx, vaultID)
	}

	price, err := k.spotPrice(ctx, vault)
	if err != nil {
		k.Logger().Info("settling escrow without a spot price", "vault_id", vaultID, "error", err.Error())
		price = sdkmath.LegacyDec{}
	}
	perf := types.EvaluatePerformance(vault, price)
	disbursed = escrowed.Sub(perf.Fee)

	cfg.EscrowedBalance = zero
	vault.DcaPlusConfig = &cfg
	if err := k.setVault(ctx, vault); err != nil {
		return sdk.Coin{}, sdk.Coin{}, err
	}
	if _, err := k.AppendEvent(ctx, vaultID, types.EscrowDisbursed{Amount: disbursed, PerformanceFee: perf.Fee}); err != nil {
		return sdk.Coin{}, sdk.Coin{}, err
	}

	params, err := k.Params.Get(ctx)
	if err != nil {
		return sdk.Coin{}, sdk.Coin{}, err
	}
	if err := k.sendFromVault(ctx, vaultID, feeCollector(params), perf.Fee); err != nil {
		return sdk.Coin{}, sdk.Coin{}, errorsmod.Wrapf(err, "failed to pay performance fee of vault %d", vaultID)
	}
	if err := k.distribute(ctx, vault, disbursed); err != nil {
		return sdk.Coin{}, sdk.Coin{}, err
	}
	if err := k.removeEscrowTasks(ctx, vaultID); err != nil {
		return sdk.Coin{}, sdk.Coin{}, err
	}

	k.Logger().Info("escrow disbursed", "vault_id", vaultID, "amount", disbursed.String(), "performance_fee", perf.Fee.String())
	return disbursed, perf.Fee, nil
}

// ProcessDueEscrowClaims settles up to limit claim tasks due at block time.
// Each claim runs in its own branch so a failing vault does not block the
// others.
func (k Keeper) ProcessDueEscrowClaims(ctx sdk.Context, limit uint32) (uint32, []types.VaultError) {
	rng := new(collections.Range[collections.Pair[time.Time, uint64]]).
		EndInclusive(collections.Join(ctx.BlockTime(), uint64(math.MaxUint64)))

	var due []uint64
	err := k.ClaimEscrowTasks.Walk(ctx, rng, func(key collections.Pair[time.Time, uint64]) (bool, error) {
		due = append(due, key.K2())
		return limit > 0 && uint32(len(due)) >= limit, nil
	})
	if err != nil {
		return 0, []types.VaultError{{Error: err.Error()}}
	}

	var (
		claimed uint32
		errs    []types.VaultError
	)
	for _, vaultID := range due {
		cacheCtx, write := ctx.CacheContext()
		disbursed, fee, err := k.ClaimEscrowedFunds(cacheCtx, vaultID)
		if err != nil {
			k.Logger().Error("escrow claim failed", "vault_id", vaultID, "error", err.Error())
			errs = append(errs, types.VaultError{VaultId: vaultID, Error: err.Error()})
			continue
		}
		write()
		if disbursed.IsPositive() || fee.IsPositive() {
			claimed++
		}
	}
	return claimed, errs
}
