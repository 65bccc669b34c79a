package types

import (
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// ExecutionKind names the continuation an execution cache entry waits for.
type ExecutionKind string

const (
	KindSwap               ExecutionKind = "swap"
	KindLimitOrderSubmit   ExecutionKind = "limit_order_submit"
	KindLimitOrderWithdraw ExecutionKind = "limit_order_withdraw"
	KindLimitOrderRetract  ExecutionKind = "limit_order_retract"
	KindDelegation         ExecutionKind = "delegation"
)

// Exclusive kinds occupy the vault's single in-flight slot.
func (k ExecutionKind) Exclusive() bool {
	return k != KindDelegation
}

// ReplyOn selects which venue outcomes are reported back.
type ReplyOn int

const (
	ReplyAlways ReplyOn = iota
	ReplyOnSuccess
)

// ExecutionCache bridges an outbound call and the follow-up invocation that
// reports its result. Balances are snapshots of the vault account taken right
// before the call.
type ExecutionCache struct {
	ReplyId             uint64             `json:"reply_id"`
	VaultId             uint64             `json:"vault_id"`
	Kind                ExecutionKind      `json:"kind"`
	ReplyOn             ReplyOn            `json:"reply_on"`
	SwapDenomBalance    sdk.Coin           `json:"swap_denom_balance"`
	ReceiveDenomBalance sdk.Coin           `json:"receive_denom_balance"`
	SwapAmount          sdk.Coin           `json:"swap_amount"`
	Adjustment          math.LegacyDec     `json:"adjustment"`
	OrderIdx            uint64             `json:"order_idx,omitempty"`
	Delegation          *PendingDelegation `json:"delegation,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
	CreatedHeight       int64              `json:"created_height"`
}

// PendingDelegation is the part of proceeds waiting on a staking reply.
type PendingDelegation struct {
	Delegator        string   `json:"delegator"`
	ValidatorAddress string   `json:"validator_address"`
	Amount           sdk.Coin `json:"amount"`
}

// Reply is the follow-up invocation for an outbound call. Data is venue
// specific and only inspected by the continuation that issued the call.
type Reply struct {
	Id     uint64 `json:"id"`
	Data   []byte `json:"data,omitempty"`
	Failed bool   `json:"failed,omitempty"`
	Error  string `json:"error,omitempty"`
}

// unknownVenueError stands in for a venue failure that carried no message.
const unknownVenueError = "venue call failed"

// FailedReply reports err as the outcome of the call tagged with id.
func FailedReply(id uint64, err error) Reply {
	reason := unknownVenueError
	if err != nil && err.Error() != "" {
		reason = err.Error()
	}
	return Reply{Id: id, Failed: true, Error: reason}
}

// Succeeded is false when the reply is marked failed or carries an error.
func (r Reply) Succeeded() bool { return !r.Failed && r.Error == "" }
