package types

import (
	"time"

	"cosmossdk.io/math"
)

// PageRequest selects a page after StartAfter, exclusive.
type PageRequest struct {
	StartAfter *uint64 `json:"start_after,omitempty"`
	Limit      uint32  `json:"limit,omitempty"`
}

type QueryParamsRequest struct{}

type QueryParamsResponse struct {
	Params Params `json:"params"`
}

type QueryVaultRequest struct {
	VaultId uint64 `json:"vault_id"`
}

type QueryVaultResponse struct {
	Vault   Vault    `json:"vault"`
	Trigger *Trigger `json:"trigger,omitempty"`
}

type QueryVaultsByOwnerRequest struct {
	Owner  string       `json:"owner"`
	Status *VaultStatus `json:"status,omitempty"`
	Page   PageRequest  `json:"page"`
}

type QueryVaultsByOwnerResponse struct {
	Vaults []Vault `json:"vaults"`
}

type QueryTriggerIdByOrderIdxRequest struct {
	OrderIdx uint64 `json:"order_idx"`
}

type QueryTriggerIdByOrderIdxResponse struct {
	TriggerId uint64 `json:"trigger_id"`
}

type QueryEventsByResourceRequest struct {
	ResourceId uint64      `json:"resource_id"`
	Page       PageRequest `json:"page"`
}

type QueryEventsByResourceResponse struct {
	Events []Event `json:"events"`
}

type QueryEventRequest struct {
	ResourceId uint64 `json:"resource_id"`
	EventId    uint64 `json:"event_id"`
}

type QueryEventResponse struct {
	Event Event `json:"event"`
}

type QueryDcaPlusPerformanceRequest struct {
	VaultId uint64 `json:"vault_id"`
}

type QueryDcaPlusPerformanceResponse struct {
	Performance Performance    `json:"performance"`
	Price       math.LegacyDec `json:"price"`
}

type QueryInFlightExecutionsRequest struct{}

type QueryInFlightExecutionsResponse struct {
	Executions []ExecutionCache `json:"executions"`
}

type QueryClaimEscrowTasksRequest struct {
	DueBefore time.Time `json:"due_before"`
}

// ClaimEscrowTask is a scheduled escrow release.
type ClaimEscrowTask struct {
	DueTime time.Time `json:"due_time"`
	VaultId uint64    `json:"vault_id"`
}

type QueryClaimEscrowTasksResponse struct {
	Tasks []ClaimEscrowTask `json:"tasks"`
}
