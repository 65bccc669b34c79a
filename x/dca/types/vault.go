package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// VaultStatus is the lifecycle state of a vault.
type VaultStatus int32

const (
	VaultStatusScheduled VaultStatus = iota
	VaultStatusActive
	VaultStatusInactive
	VaultStatusCancelled
)

var vaultStatusNames = map[VaultStatus]string{
	VaultStatusScheduled: "scheduled",
	VaultStatusActive:    "active",
	VaultStatusInactive:  "inactive",
	VaultStatusCancelled: "cancelled",
}

func (s VaultStatus) String() string {
	if name, ok := vaultStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int32(s))
}

// ParseVaultStatus parses the lower case status name.
func ParseVaultStatus(s string) (VaultStatus, error) {
	for status, name := range vaultStatusNames {
		if strings.EqualFold(s, name) {
			return status, nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidRequest, "unknown vault status %q", s)
}

func (s VaultStatus) MarshalText() ([]byte, error) {
	if _, ok := vaultStatusNames[s]; !ok {
		return nil, fmt.Errorf("unknown vault status %d", int32(s))
	}
	return []byte(s.String()), nil
}

func (s *VaultStatus) UnmarshalText(text []byte) error {
	status, err := ParseVaultStatus(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// PositionType tells whether a vault buys the base denom or sells it.
type PositionType string

const (
	PositionTypeEnter PositionType = "enter"
	PositionTypeExit  PositionType = "exit"
)

// Pair identifies a venue pool and its two denoms.
type Pair struct {
	Address    string `json:"address"`
	BaseDenom  string `json:"base_denom"`
	QuoteDenom string `json:"quote_denom"`
}

func (p Pair) ValidateBasic() error {
	if p.Address == "" {
		return errors.Wrap(ErrInvalidRequest, "pair address cannot be empty")
	}
	if err := sdk.ValidateDenom(p.BaseDenom); err != nil {
		return errors.Wrapf(ErrInvalidRequest, "invalid base denom: %s", err)
	}
	if err := sdk.ValidateDenom(p.QuoteDenom); err != nil {
		return errors.Wrapf(ErrInvalidRequest, "invalid quote denom: %s", err)
	}
	if p.BaseDenom == p.QuoteDenom {
		return errors.Wrap(ErrInvalidRequest, "pair denoms must differ")
	}
	return nil
}

// Contains reports whether denom is one side of the pair.
func (p Pair) Contains(denom string) bool {
	return denom == p.BaseDenom || denom == p.QuoteDenom
}

// Other returns the opposite side of denom.
func (p Pair) Other(denom string) string {
	if denom == p.BaseDenom {
		return p.QuoteDenom
	}
	return p.BaseDenom
}

// StandardDca is the unadjusted baseline tracked next to a dca plus vault.
type StandardDca struct {
	SwappedAmount  sdk.Coin `json:"swapped_amount"`
	ReceivedAmount sdk.Coin `json:"received_amount"`
}

// DcaPlusConfig is the escrow and performance extension of a vault.
type DcaPlusConfig struct {
	EscrowLevel     math.LegacyDec `json:"escrow_level"`
	ModelId         uint32         `json:"model_id"`
	TotalDeposit    sdk.Coin       `json:"total_deposit"`
	StandardDca     StandardDca    `json:"standard_dca"`
	EscrowedBalance sdk.Coin       `json:"escrowed_balance"`
}

// StandardDcaBalance is what the baseline still has left to swap.
func (c DcaPlusConfig) StandardDcaBalance() math.Int {
	remaining := c.TotalDeposit.Amount.Sub(c.StandardDca.SwappedAmount.Amount)
	if remaining.IsNegative() {
		return math.ZeroInt()
	}
	return remaining
}

const maxScheduledExecutions = 10000

// Vault is a recurring swap position.
type Vault struct {
	Id                   uint64          `json:"id"`
	Owner                string          `json:"owner"`
	Label                string          `json:"label,omitempty"`
	Destinations         []Destination   `json:"destinations"`
	Status               VaultStatus     `json:"status"`
	Balance              sdk.Coin        `json:"balance"`
	Pair                 Pair            `json:"pair"`
	SwapAmount           math.Int        `json:"swap_amount"`
	SlippageTolerance    math.LegacyDec  `json:"slippage_tolerance"`
	MinimumReceiveAmount *math.Int       `json:"minimum_receive_amount,omitempty"`
	PriceThreshold       *math.LegacyDec `json:"price_threshold,omitempty"`
	TimeInterval         TimeInterval    `json:"time_interval"`
	SwappedAmount        sdk.Coin        `json:"swapped_amount"`
	ReceivedAmount       sdk.Coin        `json:"received_amount"`
	DepositedAmount      sdk.Coin        `json:"deposited_amount"`
	CreatedAt            time.Time       `json:"created_at"`
	StartedAt            *time.Time      `json:"started_at,omitempty"`
	DcaPlusConfig        *DcaPlusConfig  `json:"dca_plus_config,omitempty"`
}

func (v Vault) String() string {
	bz, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("vault %d", v.Id)
	}
	return string(bz)
}

func (v Vault) SwapDenom() string { return v.Balance.Denom }

func (v Vault) ReceiveDenom() string { return v.Pair.Other(v.SwapDenom()) }

// PositionType is enter when the vault spends the quote denom.
func (v Vault) PositionType() PositionType {
	if v.SwapDenom() == v.Pair.QuoteDenom {
		return PositionTypeEnter
	}
	return PositionTypeExit
}

func (v Vault) IsScheduled() bool { return v.Status == VaultStatusScheduled }
func (v Vault) IsActive() bool    { return v.Status == VaultStatusActive }
func (v Vault) IsInactive() bool  { return v.Status == VaultStatusInactive }
func (v Vault) IsCancelled() bool { return v.Status == VaultStatusCancelled }
func (v Vault) IsDcaPlus() bool   { return v.DcaPlusConfig != nil }

// LowFunds reports whether the balance no longer covers a full swap.
func (v Vault) LowFunds() bool {
	return v.Balance.Amount.LT(v.SwapAmount)
}

// NominalSwapAmount is min(swap amount, balance) before any adjustment.
func (v Vault) NominalSwapAmount() math.Int {
	if v.LowFunds() {
		return v.Balance.Amount
	}
	return v.SwapAmount
}

// DelegatedShare is the sum of allocations routed to delegation.
func (v Vault) DelegatedShare() math.LegacyDec {
	share := math.LegacyZeroDec()
	for _, d := range v.Destinations {
		if d.Action.IsDelegation() {
			share = share.Add(d.Allocation)
		}
	}
	return share
}

// ExpectedCompletion estimates when the baseline finishes swapping, used to
// schedule escrow claims.
func (v Vault) ExpectedCompletion(now time.Time) time.Time {
	if v.DcaPlusConfig == nil || !v.SwapAmount.IsPositive() {
		return now
	}
	remaining := v.DcaPlusConfig.StandardDcaBalance()
	if remaining.IsZero() {
		return now
	}
	executions := remaining.Add(v.SwapAmount).SubRaw(1).Quo(v.SwapAmount)
	if !executions.IsInt64() || executions.Int64() > maxScheduledExecutions {
		executions = math.NewInt(maxScheduledExecutions)
	}
	due := now
	for i := int64(0); i < executions.Int64(); i++ {
		due = v.TimeInterval.Next(due)
	}
	return due
}
