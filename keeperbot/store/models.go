package store

import (
	"encoding/json"
	"time"

	"cosmossdk.io/math"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pushchain/push-dca-node/x/dca/types"
)

// EventRecord mirrors one entry of the chain's vault event log.
type EventRecord struct {
	gorm.Model
	EventID     uint64         `gorm:"uniqueIndex;not null"` // chain event id, the mirror cursor
	VaultID     uint64         `gorm:"index;not null"`
	Type        string         `gorm:"index;not null"`
	BlockHeight int64          `gorm:"not null"`
	Timestamp   time.Time      `gorm:"not null"`
	Data        datatypes.JSON `gorm:"type:json"`
}

func (EventRecord) TableName() string { return "vault_events" }

// VaultSnapshot is the last observed state of a vault. Amounts are in the
// vault's own denoms.
type VaultSnapshot struct {
	gorm.Model
	VaultID      uint64          `gorm:"uniqueIndex;not null"`
	Owner        string          `gorm:"index;not null"`
	Label        string
	Status       string          `gorm:"index;not null"`
	SwapDenom    string          `gorm:"not null"`
	ReceiveDenom string          `gorm:"not null"`
	Balance      decimal.Decimal `gorm:"type:numeric(40,0);not null"`
	Swapped      decimal.Decimal `gorm:"type:numeric(40,0);not null"`
	Received     decimal.Decimal `gorm:"type:numeric(40,0);not null"`
	// AveragePrice is swapped per received, zero before the first swap.
	AveragePrice decimal.Decimal `gorm:"type:numeric(40,18);not null"`
	DcaPlus      bool
	Escrowed     decimal.Decimal  `gorm:"type:numeric(40,0)"`
	Performance  *decimal.Decimal `gorm:"type:numeric(40,18)"`
	ObservedAt   time.Time        `gorm:"not null"`
}

func (VaultSnapshot) TableName() string { return "vault_snapshots" }

// SweepRun records one execution of due triggers.
type SweepRun struct {
	gorm.Model
	RunID         string         `gorm:"uniqueIndex;not null"`
	BlockTime     time.Time      `gorm:"index;not null"`
	Attempted     uint32         `gorm:"not null"`
	Failed        int            `gorm:"not null"`
	EscrowClaimed uint32         `gorm:"not null"`
	Outcomes      datatypes.JSON `gorm:"type:json"`
	Errors        datatypes.JSON `gorm:"type:json"`
	Error         string         `gorm:"type:text"` // set when the sweep itself was rejected
	DurationMs    int64
}

func (SweepRun) TableName() string { return "sweep_runs" }

// NewEventRecord flattens a chain event for storage.
func NewEventRecord(e types.Event) (EventRecord, error) {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return EventRecord{}, errors.Wrapf(err, "failed to encode event %d", e.Id)
	}
	return EventRecord{
		EventID:     e.Id,
		VaultID:     e.ResourceId,
		Type:        e.Data.EventType(),
		BlockHeight: e.BlockHeight,
		Timestamp:   e.Timestamp,
		Data:        datatypes.JSON(data),
	}, nil
}

func intDecimal(i math.Int) decimal.Decimal {
	if i.IsNil() {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(i.BigInt(), 0)
}

// NewVaultSnapshot captures v as of observedAt. perf may be nil for
// vaults that are not dca plus.
func NewVaultSnapshot(v types.Vault, perf *types.Performance, observedAt time.Time) VaultSnapshot {
	snap := VaultSnapshot{
		VaultID:      v.Id,
		Owner:        v.Owner,
		Label:        v.Label,
		Status:       v.Status.String(),
		SwapDenom:    v.SwapDenom(),
		ReceiveDenom: v.ReceiveDenom(),
		Balance:      intDecimal(v.Balance.Amount),
		Swapped:      intDecimal(v.SwappedAmount.Amount),
		Received:     intDecimal(v.ReceivedAmount.Amount),
		AveragePrice: decimal.Zero,
		Escrowed:     decimal.Zero,
		DcaPlus:      v.IsDcaPlus(),
		ObservedAt:   observedAt,
	}
	if snap.Received.IsPositive() {
		snap.AveragePrice = snap.Swapped.Div(snap.Received)
	}
	if v.IsDcaPlus() {
		snap.Escrowed = intDecimal(v.DcaPlusConfig.EscrowedBalance.Amount)
	}
	if perf != nil && perf.Comparable {
		factor, err := decimal.NewFromString(perf.Factor.String())
		if err == nil {
			snap.Performance = &factor
		}
	}
	return snap
}

// NewSweepRun records report under runID.
func NewSweepRun(runID string, blockTime time.Time, report types.SweepReport, sweepErr error, took time.Duration) (SweepRun, error) {
	run := SweepRun{
		RunID:         runID,
		BlockTime:     blockTime,
		Attempted:     report.Attempted,
		Failed:        len(report.Errors),
		EscrowClaimed: report.EscrowClaimed,
		DurationMs:    took.Milliseconds(),
	}
	if sweepErr != nil {
		run.Error = sweepErr.Error()
	}

	outcomes, err := json.Marshal(report.Outcomes)
	if err != nil {
		return SweepRun{}, errors.Wrap(err, "failed to encode sweep outcomes")
	}
	failures, err := json.Marshal(report.Errors)
	if err != nil {
		return SweepRun{}, errors.Wrap(err, "failed to encode sweep errors")
	}
	run.Outcomes = datatypes.JSON(outcomes)
	run.Errors = datatypes.JSON(failures)
	return run, nil
}
