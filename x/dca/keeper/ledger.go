package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/pushchain/push-dca-node/x/dca/types"
)

// VaultAccount is the account holding a vault's funds.
func VaultAccount(vaultID uint64) sdk.AccAddress {
	return sdk.AccAddress(types.VaultAddress(vaultID))
}

// vaultBalances reads both pair denoms held by the vault account.
func (k Keeper) vaultBalances(ctx context.Context, vault types.Vault) (swap, receive sdk.Coin) {
	addr := VaultAccount(vault.Id)
	return k.bankKeeper.GetBalance(ctx, addr, vault.SwapDenom()), k.bankKeeper.GetBalance(ctx, addr, vault.ReceiveDenom())
}

// spotPrice is the venue price of the receive denom in swap denom units.
func (k Keeper) spotPrice(ctx context.Context, vault types.Vault) (math.LegacyDec, error) {
	return k.venue.SpotPrice(ctx, vault.Pair, vault.SwapDenom())
}

// feeCollector returns the configured collector or the fee collector module.
func feeCollector(params types.Params) sdk.AccAddress {
	if params.FeeCollector != "" {
		return sdk.MustAccAddressFromBech32(params.FeeCollector)
	}
	return authtypes.NewModuleAddress(authtypes.FeeCollectorName)
}

func (k Keeper) sendFromVault(ctx context.Context, vaultID uint64, to sdk.AccAddress, coin sdk.Coin) error {
	if !coin.IsPositive() {
		return nil
	}
	return k.bankKeeper.SendCoins(ctx, VaultAccount(vaultID), to, sdk.NewCoins(coin))
}
