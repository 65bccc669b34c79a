package types

import (
	"encoding/json"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

const (
	EventTypeVaultEvent      = "dca_vault_event"
	EventTypeSweepCompleted  = "dca_sweep_completed"
	EventTypeAdjustmentsSet  = "dca_swap_adjustments_updated"
	AttributeKeyVaultId      = "vault_id"
	AttributeKeyEventId      = "event_id"
	AttributeKeyEventType    = "event_type"
	AttributeKeyData         = "data"
	AttributeKeyAttempted    = "attempted"
	AttributeKeyErrors       = "errors"
	AttributeKeyModelsUpdate = "models"
)

// NewVaultLogEvent mirrors an appended log entry as an sdk event so off-chain
// indexers can follow the log without querying state.
func NewVaultLogEvent(e Event) (sdk.Event, error) {
	bz, err := json.Marshal(e)
	if err != nil {
		return sdk.Event{}, fmt.Errorf("failed to marshal event: %w", err)
	}

	return sdk.NewEvent(
		EventTypeVaultEvent,
		sdk.NewAttribute(AttributeKeyVaultId, fmt.Sprintf("%d", e.ResourceId)),
		sdk.NewAttribute(AttributeKeyEventId, fmt.Sprintf("%d", e.Id)),
		sdk.NewAttribute(AttributeKeyEventType, e.Data.EventType()),
		sdk.NewAttribute(AttributeKeyData, string(bz)), // full JSON payload for off-chain consumption
	), nil
}

// NewSweepCompletedEvent reports the totals of an ExecuteDueTriggers run.
func NewSweepCompletedEvent(r SweepReport) (sdk.Event, error) {
	bz, err := json.Marshal(r)
	if err != nil {
		return sdk.Event{}, fmt.Errorf("failed to marshal sweep report: %w", err)
	}

	return sdk.NewEvent(
		EventTypeSweepCompleted,
		sdk.NewAttribute(AttributeKeyAttempted, fmt.Sprintf("%d", r.Attempted)),
		sdk.NewAttribute(AttributeKeyErrors, fmt.Sprintf("%d", len(r.Errors))),
		sdk.NewAttribute(AttributeKeyData, string(bz)),
	), nil
}

// NewAdjustmentsUpdatedEvent reports a bulk write of the adjustment table.
func NewAdjustmentsUpdatedEvent(adjustments []SwapAdjustment) (sdk.Event, error) {
	bz, err := json.Marshal(adjustments)
	if err != nil {
		return sdk.Event{}, fmt.Errorf("failed to marshal adjustments: %w", err)
	}

	return sdk.NewEvent(
		EventTypeAdjustmentsSet,
		sdk.NewAttribute(AttributeKeyModelsUpdate, fmt.Sprintf("%d", len(adjustments))),
		sdk.NewAttribute(AttributeKeyData, string(bz)),
	), nil
}

// String returns a readable log for CLI
func (e Event) String() string {
	if e.Data == nil {
		return fmt.Sprintf("Event %d | Vault: %d | <empty>", e.Id, e.ResourceId)
	}
	return fmt.Sprintf("Event %d | Vault: %d | Type: %s | Height: %d", e.Id, e.ResourceId, e.Data.EventType(), e.BlockHeight)
}
