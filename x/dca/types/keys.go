package types

import (
	"encoding/binary"

	"cosmossdk.io/collections"
	"github.com/cosmos/cosmos-sdk/types/address"
)

var (
	// ParamsKey saves the current module params.
	ParamsKey = collections.NewPrefix(0)

	// ParamsName is the name of the params collection.
	ParamsName = "params"

	// VaultsKey saves every vault by id.
	VaultsKey = collections.NewPrefix(1)

	// VaultsName is the name of the vaults collection.
	VaultsName = "vaults"

	// VaultSequenceKey saves the next vault id.
	VaultSequenceKey = collections.NewPrefix(2)

	// VaultSequenceName is the name of the vault sequence.
	VaultSequenceName = "vault_sequence"

	// VaultsByOwnerKey indexes vault ids by owner address.
	VaultsByOwnerKey = collections.NewPrefix(3)

	// VaultsByOwnerName is the name of the owner index.
	VaultsByOwnerName = "vaults_by_owner"

	// TriggersKey saves the trigger of each vault.
	TriggersKey = collections.NewPrefix(4)

	// TriggersName is the name of the triggers collection.
	TriggersName = "triggers"

	// TriggersByTimeKey orders time triggers by (target time, vault id).
	TriggersByTimeKey = collections.NewPrefix(5)

	// TriggersByTimeName is the name of the time ordering.
	TriggersByTimeName = "triggers_by_time"

	// TriggersByOrderKey maps a venue order idx to its vault id.
	TriggersByOrderKey = collections.NewPrefix(6)

	// TriggersByOrderName is the name of the order ordering.
	TriggersByOrderName = "triggers_by_order"

	// EventsKey saves every event by its global id.
	EventsKey = collections.NewPrefix(7)

	// EventsName is the name of the event log.
	EventsName = "events"

	// EventsByResourceKey indexes event ids by (resource id, event id).
	EventsByResourceKey = collections.NewPrefix(8)

	// EventsByResourceName is the name of the resource index.
	EventsByResourceName = "events_by_resource"

	// EventSequenceKey saves the next event id.
	EventSequenceKey = collections.NewPrefix(9)

	// EventSequenceName is the name of the event sequence.
	EventSequenceName = "event_sequence"

	// SwapAdjustmentsKey saves the multiplier of each risk model.
	SwapAdjustmentsKey = collections.NewPrefix(10)

	// SwapAdjustmentsName is the name of the swap adjustment table.
	SwapAdjustmentsName = "swap_adjustments"

	// AdjustmentsUpdatedAtKey saves when the adjustment table was last written.
	AdjustmentsUpdatedAtKey = collections.NewPrefix(11)

	// AdjustmentsUpdatedAtName is the name of the adjustment timestamp.
	AdjustmentsUpdatedAtName = "adjustments_updated_at"

	// ExecutionCacheKey saves pending continuations by reply id.
	ExecutionCacheKey = collections.NewPrefix(12)

	// ExecutionCacheName is the name of the execution cache.
	ExecutionCacheName = "execution_cache"

	// InFlightKey maps a vault id to its unresolved reply id.
	InFlightKey = collections.NewPrefix(13)

	// InFlightName is the name of the in-flight index.
	InFlightName = "in_flight"

	// ReplySequenceKey saves the next reply id.
	ReplySequenceKey = collections.NewPrefix(14)

	// ReplySequenceName is the name of the reply sequence.
	ReplySequenceName = "reply_sequence"

	// ClaimEscrowTasksKey saves escrow claims by (due time, vault id).
	ClaimEscrowTasksKey = collections.NewPrefix(15)

	// ClaimEscrowTasksName is the name of the escrow claim schedule.
	ClaimEscrowTasksName = "claim_escrow_tasks"
)

const (
	ModuleName = "dca"

	StoreKey = ModuleName

	QuerierRoute = ModuleName
)

// VaultAddress derives the module-owned account holding a vault's funds.
func VaultAddress(vaultID uint64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, vaultID)
	return address.Module(ModuleName, []byte("vault"), bz)
}
