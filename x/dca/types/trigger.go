package types

import (
	"encoding/json"
	"fmt"
	"time"

	"cosmossdk.io/math"
)

// TriggerConfiguration is the closed set of conditions that make a vault
// executable. Implementations live in this package only.
type TriggerConfiguration interface {
	isTriggerConfiguration()
	Kind() string
}

// TimeTrigger fires once the block time reaches TargetTime.
type TimeTrigger struct {
	TargetTime time.Time `json:"target_time"`
}

// LimitOrderTrigger fires once the venue fills the order at TargetPrice.
// OrderIdx is nil until the venue has accepted the order.
type LimitOrderTrigger struct {
	TargetPrice math.LegacyDec `json:"target_price"`
	OrderIdx    *uint64        `json:"order_idx,omitempty"`
}

func (TimeTrigger) isTriggerConfiguration()       {}
func (LimitOrderTrigger) isTriggerConfiguration() {}

func (TimeTrigger) Kind() string       { return "time" }
func (LimitOrderTrigger) Kind() string { return "limit_order" }

// Trigger is the single pending condition of a vault.
type Trigger struct {
	VaultId       uint64               `json:"vault_id"`
	Configuration TriggerConfiguration `json:"-"`
}

type triggerJSON struct {
	VaultId    uint64             `json:"vault_id"`
	Time       *TimeTrigger       `json:"time,omitempty"`
	LimitOrder *LimitOrderTrigger `json:"limit_order,omitempty"`
}

func (t Trigger) MarshalJSON() ([]byte, error) {
	out := triggerJSON{VaultId: t.VaultId}
	switch c := t.Configuration.(type) {
	case TimeTrigger:
		out.Time = &c
	case LimitOrderTrigger:
		out.LimitOrder = &c
	default:
		return nil, fmt.Errorf("trigger for vault %d has no configuration", t.VaultId)
	}
	return json.Marshal(out)
}

func (t *Trigger) UnmarshalJSON(bz []byte) error {
	var in triggerJSON
	if err := json.Unmarshal(bz, &in); err != nil {
		return err
	}
	t.VaultId = in.VaultId
	switch {
	case in.Time != nil && in.LimitOrder == nil:
		t.Configuration = *in.Time
	case in.LimitOrder != nil && in.Time == nil:
		t.Configuration = *in.LimitOrder
	default:
		return fmt.Errorf("trigger for vault %d must have exactly one configuration", in.VaultId)
	}
	return nil
}

// TargetTime returns the due time of a time trigger.
func (t Trigger) TargetTime() (time.Time, bool) {
	c, ok := t.Configuration.(TimeTrigger)
	return c.TargetTime, ok
}

// OrderIdx returns the venue order of a submitted limit order trigger.
func (t Trigger) OrderIdx() (uint64, bool) {
	c, ok := t.Configuration.(LimitOrderTrigger)
	if !ok || c.OrderIdx == nil {
		return 0, false
	}
	return *c.OrderIdx, true
}

// LimitOrderTargetPrice converts a desired receive amount into the venue's
// order price. Entering sells quote for base, so the price is quote per base.
func LimitOrderTargetPrice(position PositionType, swapAmount, targetReceive math.Int) (math.LegacyDec, error) {
	if !swapAmount.IsPositive() || !targetReceive.IsPositive() {
		return math.LegacyDec{}, fmt.Errorf("swap amount and target receive amount must be positive")
	}
	if position == PositionTypeEnter {
		return math.LegacyNewDecFromInt(swapAmount).Quo(math.LegacyNewDecFromInt(targetReceive)), nil
	}
	return math.LegacyNewDecFromInt(targetReceive).Quo(math.LegacyNewDecFromInt(swapAmount)), nil
}
