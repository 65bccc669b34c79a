package types

// ExecutionOutcome is what one trigger fire ended with.
type ExecutionOutcome string

const (
	OutcomeSwapped        ExecutionOutcome = "swapped"
	OutcomeSwapFailed     ExecutionOutcome = "swap_failed"
	OutcomePending        ExecutionOutcome = "pending"
	OutcomeSkipped        ExecutionOutcome = "skipped"
	OutcomeOrderSubmitted ExecutionOutcome = "order_submitted"
	OutcomeExhausted      ExecutionOutcome = "exhausted"
	OutcomeCancelled      ExecutionOutcome = "cancelled"
)

// VaultError is a fatal error of a single vault during a sweep.
type VaultError struct {
	VaultId uint64 `json:"vault_id"`
	Error   string `json:"error"`
}

// SweepReport summarises an ExecuteDueTriggers run.
type SweepReport struct {
	Attempted     uint32                      `json:"attempted"`
	Outcomes      map[ExecutionOutcome]uint32 `json:"outcomes"`
	Errors        []VaultError                `json:"errors,omitempty"`
	EscrowClaimed uint32                      `json:"escrow_claimed"`
}

func NewSweepReport() SweepReport {
	return SweepReport{Outcomes: make(map[ExecutionOutcome]uint32)}
}

func (r *SweepReport) Record(outcome ExecutionOutcome) {
	r.Attempted++
	r.Outcomes[outcome]++
}

func (r *SweepReport) Fail(vaultID uint64, err error) {
	r.Attempted++
	r.Errors = append(r.Errors, VaultError{VaultId: vaultID, Error: err.Error()})
}
