package keeper

import (
	"context"
	"errors"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkErrors "github.com/cosmos/cosmos-sdk/types/errors"
	govtypes "github.com/cosmos/cosmos-sdk/x/gov/types"

	"github.com/pushchain/push-dca-node/x/dca/types"
)

type msgServer struct {
	k Keeper
}

var _ types.MsgServer = msgServer{}

// NewMsgServerImpl returns an implementation of the module MsgServer interface.
func NewMsgServerImpl(keeper Keeper) types.MsgServer {
	return &msgServer{k: keeper}
}

// UpdateParams handles MsgUpdateParams for updating module parameters.
// Only authorized governance account can execute this.
func (ms msgServer) UpdateParams(ctx context.Context, msg *types.MsgUpdateParams) (*types.MsgUpdateParamsResponse, error) {
	if ms.k.authority != msg.Authority {
		return nil, errorsmod.Wrapf(govtypes.ErrInvalidSigner, "invalid authority; expected %s, got %s", ms.k.authority, msg.Authority)
	}

	if err := ms.k.UpdateParams(sdk.UnwrapSDKContext(ctx), msg.Params); err != nil {
		return nil, err
	}
	return &types.MsgUpdateParamsResponse{}, nil
}

func (ms msgServer) CreateVault(ctx context.Context, msg *types.MsgCreateVault) (*types.MsgCreateVaultResponse, error) {
	id, err := ms.k.OpenVault(sdk.UnwrapSDKContext(ctx), msg)
	if err != nil {
		return nil, err
	}
	return &types.MsgCreateVaultResponse{VaultId: id}, nil
}

func (ms msgServer) Deposit(ctx context.Context, msg *types.MsgDeposit) (*types.MsgDepositResponse, error) {
	if err := ms.k.Deposit(sdk.UnwrapSDKContext(ctx), msg.Sender, msg.VaultId, msg.Amount); err != nil {
		return nil, err
	}
	return &types.MsgDepositResponse{}, nil
}

func (ms msgServer) UpdateVaultLabel(ctx context.Context, msg *types.MsgUpdateVaultLabel) (*types.MsgUpdateVaultLabelResponse, error) {
	if err := ms.k.UpdateVaultLabel(sdk.UnwrapSDKContext(ctx), msg.Owner, msg.VaultId, msg.Label); err != nil {
		return nil, err
	}
	return &types.MsgUpdateVaultLabelResponse{}, nil
}

func (ms msgServer) CancelVault(ctx context.Context, msg *types.MsgCancelVault) (*types.MsgCancelVaultResponse, error) {
	refund, _, err := ms.k.CancelVault(sdk.UnwrapSDKContext(ctx), msg.Sender, msg.VaultId)
	if err != nil {
		return nil, err
	}
	return &types.MsgCancelVaultResponse{Refund: refund}, nil
}

// ExecuteTrigger is permissionless. Exhausting a vault is reported as an
// outcome so the transition to inactive is kept.
func (ms msgServer) ExecuteTrigger(ctx context.Context, msg *types.MsgExecuteTrigger) (*types.MsgExecuteTriggerResponse, error) {
	outcome, err := ms.k.ExecuteTrigger(sdk.UnwrapSDKContext(ctx), msg.VaultId)
	if err != nil && !errors.Is(err, types.ErrSwapAmountTooSmall) {
		return nil, err
	}
	return &types.MsgExecuteTriggerResponse{Outcome: outcome}, nil
}

func (ms msgServer) ExecuteDueTriggers(ctx context.Context, msg *types.MsgExecuteDueTriggers) (*types.MsgExecuteDueTriggersResponse, error) {
	params, err := ms.k.Params.Get(ctx)
	if err != nil {
		return nil, errorsmod.Wrapf(err, "failed to get params")
	}
	if !params.IsExecutor(msg.Sender) && msg.Sender != ms.k.authority {
		return nil, errorsmod.Wrapf(sdkErrors.ErrUnauthorized, "%s is not an executor", msg.Sender)
	}

	report, err := ms.k.ExecuteDueTriggers(sdk.UnwrapSDKContext(ctx), msg.Limit)
	if err != nil {
		return nil, err
	}
	return &types.MsgExecuteDueTriggersResponse{Report: report}, nil
}

func (ms msgServer) HandleOrderFilled(ctx context.Context, msg *types.MsgHandleOrderFilled) (*types.MsgHandleOrderFilledResponse, error) {
	vaultID, outcome, err := ms.k.HandleOrderFilled(sdk.UnwrapSDKContext(ctx), msg.OrderIdx)
	if err != nil {
		return nil, err
	}
	return &types.MsgHandleOrderFilledResponse{VaultId: vaultID, Outcome: outcome}, nil
}

func (ms msgServer) UpdateSwapAdjustments(ctx context.Context, msg *types.MsgUpdateSwapAdjustments) (*types.MsgUpdateSwapAdjustmentsResponse, error) {
	params, err := ms.k.Params.Get(ctx)
	if err != nil {
		return nil, errorsmod.Wrapf(err, "failed to get params")
	}
	if !params.IsExecutor(msg.Sender) {
		return nil, errorsmod.Wrapf(sdkErrors.ErrUnauthorized, "invalid authority; expected %s, got %s", params.Admin, msg.Sender)
	}

	if err := ms.k.SetSwapAdjustments(ctx, msg.Adjustments); err != nil {
		return nil, err
	}
	return &types.MsgUpdateSwapAdjustmentsResponse{}, nil
}

func (ms msgServer) ClaimEscrowedFunds(ctx context.Context, msg *types.MsgClaimEscrowedFunds) (*types.MsgClaimEscrowedFundsResponse, error) {
	params, err := ms.k.Params.Get(ctx)
	if err != nil {
		return nil, errorsmod.Wrapf(err, "failed to get params")
	}
	vault, err := ms.k.GetVault(ctx, msg.VaultId)
	if err != nil {
		return nil, err
	}
	if msg.Sender != vault.Owner && !params.IsExecutor(msg.Sender) {
		return nil, errorsmod.Wrapf(sdkErrors.ErrUnauthorized, "%s cannot claim the escrow of vault %d", msg.Sender, msg.VaultId)
	}

	disbursed, fee, err := ms.k.ClaimEscrowedFunds(sdk.UnwrapSDKContext(ctx), msg.VaultId)
	if err != nil {
		return nil, err
	}
	return &types.MsgClaimEscrowedFundsResponse{Disbursed: disbursed, PerformanceFee: fee}, nil
}
