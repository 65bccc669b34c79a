package types

import (
	"encoding/json"
	"fmt"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Event is an immutable entry of the vault audit log.
type Event struct {
	Id          uint64    `json:"id"`
	ResourceId  uint64    `json:"resource_id"`
	Timestamp   time.Time `json:"timestamp"`
	BlockHeight int64     `json:"block_height"`
	Data        EventData `json:"-"`
}

// EventData is the closed set of things that can happen to a vault.
type EventData interface {
	EventType() string
}

// SkipReason explains an execution that did not dispatch a swap.
type SkipReason string

const (
	SkipInsufficientFunds      SkipReason = "insufficient_funds"
	SkipSwapAmountAdjustedZero SkipReason = "swap_amount_adjusted_to_zero"
	SkipPriceThresholdExceeded SkipReason = "price_threshold_exceeded"
	SkipPriceQueryFailed       SkipReason = "price_query_failed"
)

type VaultCreated struct{}

type FundsDeposited struct {
	Amount sdk.Coin `json:"amount"`
}

type ExecutionTriggered struct {
	BaseDenom  string         `json:"base_denom"`
	QuoteDenom string         `json:"quote_denom"`
	AssetPrice math.LegacyDec `json:"asset_price"`
}

type SwapExecuted struct {
	Sent       sdk.Coin       `json:"sent"`
	Received   sdk.Coin       `json:"received"`
	Fee        sdk.Coin       `json:"fee"`
	Escrowed   sdk.Coin       `json:"escrowed"`
	Adjustment math.LegacyDec `json:"adjustment"`
}

type SwapFailed struct {
	Attempted sdk.Coin `json:"attempted"`
	Reason    string   `json:"reason"`
}

type ExecutionSkipped struct {
	Reason SkipReason      `json:"reason"`
	Price  *math.LegacyDec `json:"price,omitempty"`
}

type TriggerCreated struct {
	Kind        string          `json:"kind"`
	TargetTime  *time.Time      `json:"target_time,omitempty"`
	TargetPrice *math.LegacyDec `json:"target_price,omitempty"`
}

type LimitOrderSubmitted struct {
	OrderIdx    uint64         `json:"order_idx"`
	TargetPrice math.LegacyDec `json:"target_price"`
	Offer       sdk.Coin       `json:"offer"`
}

type LimitOrderFilled struct {
	OrderIdx uint64 `json:"order_idx"`
}

type LimitOrderWithdrawn struct {
	OrderIdx uint64 `json:"order_idx"`
}

type LimitOrderRetracted struct {
	OrderIdx uint64   `json:"order_idx"`
	Returned sdk.Coin `json:"returned"`
}

type DelegationSucceeded struct {
	ValidatorAddress string   `json:"validator_address"`
	Delegation       sdk.Coin `json:"delegation"`
}

type DelegationFailed struct {
	ValidatorAddress string   `json:"validator_address"`
	Delegation       sdk.Coin `json:"delegation"`
	Reason           string   `json:"reason"`
}

type IbcTransferDispatched struct {
	ChannelId string   `json:"channel_id"`
	Receiver  string   `json:"receiver"`
	Amount    sdk.Coin `json:"amount"`
	Sequence  uint64   `json:"sequence"`
}

type EscrowDisbursed struct {
	Amount         sdk.Coin `json:"amount"`
	PerformanceFee sdk.Coin `json:"performance_fee"`
}

type VaultCancelled struct {
	Refund sdk.Coin `json:"refund"`
}

type VaultLabelUpdated struct {
	Label string `json:"label"`
}

func (VaultCreated) EventType() string          { return "vault_created" }
func (FundsDeposited) EventType() string        { return "funds_deposited" }
func (ExecutionTriggered) EventType() string    { return "execution_triggered" }
func (SwapExecuted) EventType() string          { return "swap_executed" }
func (SwapFailed) EventType() string            { return "swap_failed" }
func (ExecutionSkipped) EventType() string      { return "execution_skipped" }
func (TriggerCreated) EventType() string        { return "trigger_created" }
func (LimitOrderSubmitted) EventType() string   { return "limit_order_submitted" }
func (LimitOrderFilled) EventType() string      { return "limit_order_filled" }
func (LimitOrderWithdrawn) EventType() string   { return "limit_order_withdrawn" }
func (LimitOrderRetracted) EventType() string   { return "limit_order_retracted" }
func (DelegationSucceeded) EventType() string   { return "delegation_succeeded" }
func (DelegationFailed) EventType() string      { return "delegation_failed" }
func (IbcTransferDispatched) EventType() string { return "ibc_transfer_dispatched" }
func (EscrowDisbursed) EventType() string       { return "escrow_disbursed" }
func (VaultCancelled) EventType() string        { return "vault_cancelled" }
func (VaultLabelUpdated) EventType() string     { return "vault_label_updated" }

func decodeEventData(eventType string, raw json.RawMessage) (EventData, error) {
	var data EventData
	switch eventType {
	case "vault_created":
		data = &VaultCreated{}
	case "funds_deposited":
		data = &FundsDeposited{}
	case "execution_triggered":
		data = &ExecutionTriggered{}
	case "swap_executed":
		data = &SwapExecuted{}
	case "swap_failed":
		data = &SwapFailed{}
	case "execution_skipped":
		data = &ExecutionSkipped{}
	case "trigger_created":
		data = &TriggerCreated{}
	case "limit_order_submitted":
		data = &LimitOrderSubmitted{}
	case "limit_order_filled":
		data = &LimitOrderFilled{}
	case "limit_order_withdrawn":
		data = &LimitOrderWithdrawn{}
	case "limit_order_retracted":
		data = &LimitOrderRetracted{}
	case "delegation_succeeded":
		data = &DelegationSucceeded{}
	case "delegation_failed":
		data = &DelegationFailed{}
	case "ibc_transfer_dispatched":
		data = &IbcTransferDispatched{}
	case "escrow_disbursed":
		data = &EscrowDisbursed{}
	case "vault_cancelled":
		data = &VaultCancelled{}
	case "vault_label_updated":
		data = &VaultLabelUpdated{}
	default:
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, data); err != nil {
			return nil, fmt.Errorf("failed to decode %s payload: %w", eventType, err)
		}
	}
	return deref(data), nil
}

// deref stores values, not pointers, so decoded events compare equal to
// the ones that were appended.
func deref(data EventData) EventData {
	switch d := data.(type) {
	case *VaultCreated:
		return *d
	case *FundsDeposited:
		return *d
	case *ExecutionTriggered:
		return *d
	case *SwapExecuted:
		return *d
	case *SwapFailed:
		return *d
	case *ExecutionSkipped:
		return *d
	case *TriggerCreated:
		return *d
	case *LimitOrderSubmitted:
		return *d
	case *LimitOrderFilled:
		return *d
	case *LimitOrderWithdrawn:
		return *d
	case *LimitOrderRetracted:
		return *d
	case *DelegationSucceeded:
		return *d
	case *DelegationFailed:
		return *d
	case *IbcTransferDispatched:
		return *d
	case *EscrowDisbursed:
		return *d
	case *VaultCancelled:
		return *d
	case *VaultLabelUpdated:
		return *d
	}
	return data
}

type eventJSON struct {
	Id          uint64          `json:"id"`
	ResourceId  uint64          `json:"resource_id"`
	Timestamp   time.Time       `json:"timestamp"`
	BlockHeight int64           `json:"block_height"`
	Type        string          `json:"type"`
	Data        json.RawMessage `json:"data"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	if e.Data == nil {
		return nil, fmt.Errorf("event %d has no data", e.Id)
	}
	raw, err := json.Marshal(e.Data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(eventJSON{
		Id:          e.Id,
		ResourceId:  e.ResourceId,
		Timestamp:   e.Timestamp,
		BlockHeight: e.BlockHeight,
		Type:        e.Data.EventType(),
		Data:        raw,
	})
}

func (e *Event) UnmarshalJSON(bz []byte) error {
	var in eventJSON
	if err := json.Unmarshal(bz, &in); err != nil {
		return err
	}
	data, err := decodeEventData(in.Type, in.Data)
	if err != nil {
		return err
	}
	*e = Event{
		Id:          in.Id,
		ResourceId:  in.ResourceId,
		Timestamp:   in.Timestamp,
		BlockHeight: in.BlockHeight,
		Data:        data,
	}
	return nil
}
