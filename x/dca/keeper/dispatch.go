package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/pushchain/push-dca-node/x/dca/types"
)

// venueCall issues one outbound call tagged with replyID.
type venueCall func(ctx sdk.Context, replyID uint64) (types.VenueResponse, error)

// dispatch records entry and issues call in a branched context. A failed
// call leaves no venue side effects behind. With ReplyAlways the failure is
// delivered to the continuation like any other reply; with ReplyOnSuccess it
// aborts the invocation. A deferred response keeps the entry open until the
// venue calls Reply.
func (k Keeper) dispatch(ctx sdk.Context, entry types.ExecutionCache, call venueCall) (types.ExecutionOutcome, error) {
	if err := k.openExecution(ctx, &entry); err != nil {
		return "", err
	}

	cacheCtx, write := ctx.CacheContext()
	resp, err := call(cacheCtx, entry.ReplyId)
	if err != nil {
		reply := types.FailedReply(entry.ReplyId, err)
		k.Logger().Info("venue call failed",
			"vault_id", entry.VaultId, "reply_id", entry.ReplyId, "kind", entry.Kind, "error", reply.Error)
		if entry.ReplyOn == types.ReplyOnSuccess {
			if _, takeErr := k.takeExecution(ctx, entry.ReplyId); takeErr != nil {
				return "", takeErr
			}
			return "", err
		}
		return k.Reply(ctx, reply)
	}
	write()

	if resp.Deferred {
		k.Logger().Debug("venue call deferred", "vault_id", entry.VaultId, "reply_id", entry.ReplyId, "kind", entry.Kind)
		return types.OutcomePending, nil
	}
	return k.Reply(ctx, types.Reply{Id: entry.ReplyId, Data: resp.Data})
}
