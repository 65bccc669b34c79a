package types

import (
	"fmt"
	"time"

	"cosmossdk.io/math"
)

// GenesisState is the exported state of the module.
type GenesisState struct {
	Params           Params            `json:"params"`
	Vaults           []Vault           `json:"vaults"`
	Triggers         []Trigger         `json:"triggers"`
	Events           []Event           `json:"events"`
	SwapAdjustments  []SwapAdjustment  `json:"swap_adjustments"`
	AdjustmentsAt    *time.Time        `json:"adjustments_updated_at,omitempty"`
	ClaimEscrowTasks []ClaimEscrowTask `json:"claim_escrow_tasks"`
	InFlight         []ExecutionCache  `json:"in_flight"`
}

func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Params: DefaultParams(),
	}
}

// Validate performs basic genesis state validation.
func (gs GenesisState) Validate() error {
	if err := gs.Params.ValidateBasic(); err != nil {
		return err
	}

	vaults := make(map[uint64]Vault, len(gs.Vaults))
	for _, v := range gs.Vaults {
		if _, dup := vaults[v.Id]; dup {
			return fmt.Errorf("duplicate vault id %d", v.Id)
		}
		if err := ValidateDestinations(v.Destinations, gs.Params.MaxDestinations); err != nil {
			return fmt.Errorf("vault %d: %w", v.Id, err)
		}
		vaults[v.Id] = v
	}

	for _, t := range gs.Triggers {
		v, ok := vaults[t.VaultId]
		if !ok {
			return fmt.Errorf("trigger references unknown vault %d", t.VaultId)
		}
		if v.IsCancelled() {
			return fmt.Errorf("cancelled vault %d cannot have a trigger", t.VaultId)
		}
	}

	seen := make(map[uint64]struct{}, len(gs.Events))
	for _, e := range gs.Events {
		if _, dup := seen[e.Id]; dup {
			return fmt.Errorf("duplicate event id %d", e.Id)
		}
		seen[e.Id] = struct{}{}
	}

	for _, a := range gs.SwapAdjustments {
		if a.Multiplier.IsNil() || a.Multiplier.LT(math.LegacyZeroDec()) {
			return fmt.Errorf("invalid multiplier for model %d", a.ModelId)
		}
	}
	return nil
}
