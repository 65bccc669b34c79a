package keeper

import (
	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/pushchain/push-dca-node/x/dca/types"
)

// Reply resolves the execution cache entry of reply.Id and runs the
// continuation of the call that created it. Venues deliver deferred results
// through here.
func (k Keeper) Reply(ctx sdk.Context, reply types.Reply) (types.ExecutionOutcome, error) {
	entry, err := k.takeExecution(ctx, reply.Id)
	if err != nil {
		return "", err
	}

	if !reply.Succeeded() && entry.ReplyOn == types.ReplyOnSuccess {
		return "", errorsmod.Wrapf(types.ErrUnexpectedReply,
			"reply %d for %s failed: %s", reply.Id, entry.Kind, reply.Error)
	}

	switch entry.Kind {
	case types.KindSwap, types.KindLimitOrderWithdraw:
		return k.afterSwap(ctx, entry, reply)
	case types.KindLimitOrderSubmit:
		return k.afterOrderSubmitted(ctx, entry, reply)
	case types.KindLimitOrderRetract:
		return k.afterOrderRetracted(ctx, entry, reply)
	case types.KindDelegation:
		return k.afterDelegation(ctx, entry, reply)
	default:
		return "", errorsmod.Wrapf(types.ErrUnexpectedReply, "reply %d has unknown kind %q", reply.Id, entry.Kind)
	}
}
