package keeper

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	sdkErrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/pushchain/push-dca-node/x/dca/types"
)

// MsgRouter delivers any dca command to the msg server.
type MsgRouter struct {
	server types.MsgServer
}

func NewMsgRouter(keeper Keeper) MsgRouter {
	return MsgRouter{server: NewMsgServerImpl(keeper)}
}

// Handle routes a command to its handler after stateless validation.
func (r MsgRouter) Handle(ctx context.Context, msg types.Msg) (any, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}

	switch m := msg.(type) {
	case *types.MsgCreateVault:
		return r.server.CreateVault(ctx, m)
	case *types.MsgDeposit:
		return r.server.Deposit(ctx, m)
	case *types.MsgUpdateVaultLabel:
		return r.server.UpdateVaultLabel(ctx, m)
	case *types.MsgCancelVault:
		return r.server.CancelVault(ctx, m)
	case *types.MsgExecuteTrigger:
		return r.server.ExecuteTrigger(ctx, m)
	case *types.MsgExecuteDueTriggers:
		return r.server.ExecuteDueTriggers(ctx, m)
	case *types.MsgHandleOrderFilled:
		return r.server.HandleOrderFilled(ctx, m)
	case *types.MsgUpdateSwapAdjustments:
		return r.server.UpdateSwapAdjustments(ctx, m)
	case *types.MsgClaimEscrowedFunds:
		return r.server.ClaimEscrowedFunds(ctx, m)
	case *types.MsgUpdateParams:
		return r.server.UpdateParams(ctx, m)
	default:
		return nil, errorsmod.Wrapf(sdkErrors.ErrUnknownRequest, "unrecognized %s message type: %T", types.ModuleName, msg)
	}
}
