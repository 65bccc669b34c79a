package keeper

import (
	"context"
	"errors"

	"cosmossdk.io/collections"
	errorsmod "cosmossdk.io/errors"

	"github.com/pushchain/push-dca-node/x/dca/types"
)

// CreateVault assigns the next id to vault and stores it. Callers pair the
// creation with the matching log entries.
func (k Keeper) CreateVault(ctx context.Context, vault types.Vault) (uint64, error) {
	id, err := k.VaultSequence.Next(ctx)
	if err != nil {
		return 0, errorsmod.Wrap(err, "failed to get next vault id")
	}

	vault.Id = id
	if err := k.setVault(ctx, vault); err != nil {
		return 0, err
	}
	if err := k.VaultsByOwner.Set(ctx, collections.Join(vault.Owner, id)); err != nil {
		return 0, errorsmod.Wrapf(err, "failed to index vault %d", id)
	}
	return id, nil
}

// GetVault returns the vault or ErrVaultNotFound.
func (k Keeper) GetVault(ctx context.Context, id uint64) (types.Vault, error) {
	vault, err := k.Vaults.Get(ctx, id)
	if errors.Is(err, collections.ErrNotFound) {
		return types.Vault{}, errorsmod.Wrapf(types.ErrVaultNotFound, "vault %d", id)
	}
	if err != nil {
		return types.Vault{}, errorsmod.Wrapf(err, "failed to load vault %d", id)
	}
	return vault, nil
}

// UpdateVault loads the vault, applies mutate and stores the result.
// Nothing is written when mutate fails.
func (k Keeper) UpdateVault(ctx context.Context, id uint64, mutate func(*types.Vault) error) (types.Vault, error) {
	vault, err := k.GetVault(ctx, id)
	if err != nil {
		return types.Vault{}, err
	}
	if err := mutate(&vault); err != nil {
		return types.Vault{}, err
	}
	if vault.Id != id {
		return types.Vault{}, errorsmod.Wrapf(types.ErrInvalidRequest, "vault id cannot change from %d to %d", id, vault.Id)
	}
	if err := k.setVault(ctx, vault); err != nil {
		return types.Vault{}, err
	}
	return vault, nil
}

func (k Keeper) setVault(ctx context.Context, vault types.Vault) error {
	if vault.Balance.IsNegative() {
		return errorsmod.Wrapf(types.ErrArithmetic, "vault %d balance cannot be negative", vault.Id)
	}
	if err := k.Vaults.Set(ctx, vault.Id, vault); err != nil {
		return errorsmod.Wrapf(err, "failed to store vault %d", vault.Id)
	}
	return nil
}

// ListVaultsByOwner pages through the vaults of owner in id order,
// optionally keeping only one status.
func (k Keeper) ListVaultsByOwner(ctx context.Context, owner string, status *types.VaultStatus, page types.PageRequest) ([]types.Vault, error) {
	limit, err := k.pageLimit(ctx, page.Limit)
	if err != nil {
		return nil, err
	}

	rng := collections.NewPrefixedPairRange[string, uint64](owner)
	if page.StartAfter != nil {
		rng = rng.StartExclusive(*page.StartAfter)
	}

	vaults := make([]types.Vault, 0)
	err = k.VaultsByOwner.Walk(ctx, rng, func(key collections.Pair[string, uint64]) (bool, error) {
		vault, err := k.GetVault(ctx, key.K2())
		if err != nil {
			return true, err
		}
		if status != nil && vault.Status != *status {
			return false, nil
		}
		vaults = append(vaults, vault)
		return uint32(len(vaults)) >= limit, nil
	})
	return vaults, err
}

// pageLimit applies the default page size and rejects sizes above the
// configured maximum.
func (k Keeper) pageLimit(ctx context.Context, requested uint32) (uint32, error) {
	params, err := k.Params.Get(ctx)
	if err != nil {
		return 0, errorsmod.Wrap(err, "failed to get params")
	}
	if requested == 0 {
		return params.DefaultPageLimit, nil
	}
	if requested > params.MaxPageLimit {
		return 0, errorsmod.Wrapf(types.ErrInvalidPageSize, "limit cannot be greater than %d", params.MaxPageLimit)
	}
	return requested, nil
}
