package types

import (
	"encoding/json"
	"fmt"
	"time"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

const (
	// DefaultMinimumSwapAmount is the smallest swap the engine will dispatch.
	DefaultMinimumSwapAmount = 50000

	DefaultPageLimit   = 30
	MaxPageLimit       = 1000
	MaxDestinations    = 10
	DefaultSweepLimit  = 50
	DefaultIbcTimeout  = 10 * time.Minute
	MaxSwapFeeRate     = "0.05"
	MaxAutomationRate  = "0.05"
	DefaultSwapFee     = "0.0015"
	DefaultAutomation  = "0.0075"
	DefaultMaxSlippage = "0.05"
)

// Params are the module parameters. Admin and Executors may run privileged
// commands in addition to the module authority.
type Params struct {
	Admin             string         `json:"admin"`
	Executors         []string       `json:"executors"`
	FeeCollector      string         `json:"fee_collector"`
	Paused            bool           `json:"paused"`
	SwapFeeRate       math.LegacyDec `json:"swap_fee_rate"`
	AutomationFeeRate math.LegacyDec `json:"automation_fee_rate"`
	MinimumSwapAmount math.Int       `json:"minimum_swap_amount"`
	DefaultPageLimit  uint32         `json:"default_page_limit"`
	MaxPageLimit      uint32         `json:"max_page_limit"`
	MaxDestinations   uint32         `json:"max_destinations"`
	SweepLimit        uint32         `json:"sweep_limit"`
	AutoExecute       bool           `json:"auto_execute"`
	IbcTimeout        time.Duration  `json:"ibc_timeout"`
}

// DefaultParams returns default module parameters.
func DefaultParams() Params {
	return Params{
		Executors:         []string{},
		SwapFeeRate:       math.LegacyMustNewDecFromStr(DefaultSwapFee),
		AutomationFeeRate: math.LegacyMustNewDecFromStr(DefaultAutomation),
		MinimumSwapAmount: math.NewInt(DefaultMinimumSwapAmount),
		DefaultPageLimit:  DefaultPageLimit,
		MaxPageLimit:      MaxPageLimit,
		MaxDestinations:   MaxDestinations,
		SweepLimit:        DefaultSweepLimit,
		AutoExecute:       true,
		IbcTimeout:        DefaultIbcTimeout,
	}
}

// Stringer method for Params.
func (p Params) String() string {
	bz, err := json.Marshal(p)
	if err != nil {
		panic(err)
	}

	return string(bz)
}

// IsExecutor reports whether addr may run keeper commands.
func (p Params) IsExecutor(addr string) bool {
	if addr == p.Admin {
		return true
	}
	for _, e := range p.Executors {
		if e == addr {
			return true
		}
	}
	return false
}

// ValidateBasic does the sanity check on the params.
func (p Params) ValidateBasic() error {
	if p.Admin != "" {
		if _, err := sdk.AccAddressFromBech32(p.Admin); err != nil {
			return errors.Wrapf(ErrInvalidParams, "invalid admin address: %s", err)
		}
	}
	for _, e := range p.Executors {
		if _, err := sdk.AccAddressFromBech32(e); err != nil {
			return errors.Wrapf(ErrInvalidParams, "invalid executor address %s: %s", e, err)
		}
	}
	if p.FeeCollector != "" {
		if _, err := sdk.AccAddressFromBech32(p.FeeCollector); err != nil {
			return errors.Wrapf(ErrInvalidParams, "invalid fee collector address: %s", err)
		}
	}
	if err := validateRate("swap fee rate", p.SwapFeeRate, MaxSwapFeeRate); err != nil {
		return err
	}
	if err := validateRate("automation fee rate", p.AutomationFeeRate, MaxAutomationRate); err != nil {
		return err
	}
	if p.MinimumSwapAmount.IsNil() || p.MinimumSwapAmount.IsNegative() {
		return errors.Wrap(ErrInvalidParams, "minimum swap amount must be non-negative")
	}
	if p.MaxPageLimit == 0 || p.MaxPageLimit > MaxPageLimit {
		return errors.Wrapf(ErrInvalidParams, "max page limit must be within 1..%d", MaxPageLimit)
	}
	if p.DefaultPageLimit == 0 || p.DefaultPageLimit > p.MaxPageLimit {
		return errors.Wrap(ErrInvalidParams, "default page limit must be within 1..max page limit")
	}
	if p.MaxDestinations == 0 || p.MaxDestinations > MaxDestinations {
		return errors.Wrapf(ErrInvalidParams, "max destinations must be within 1..%d", MaxDestinations)
	}
	if p.SweepLimit == 0 {
		return errors.Wrap(ErrInvalidParams, "sweep limit must be positive")
	}
	if p.IbcTimeout <= 0 {
		return errors.Wrap(ErrInvalidParams, "ibc timeout must be positive")
	}
	return nil
}

func validateRate(name string, rate math.LegacyDec, max string) error {
	if rate.IsNil() || rate.IsNegative() {
		return errors.Wrapf(ErrInvalidParams, "%s must be non-negative", name)
	}
	if rate.GT(math.LegacyMustNewDecFromStr(max)) {
		return errors.Wrap(ErrInvalidParams, fmt.Sprintf("%s must not exceed %s", name, max))
	}
	return nil
}
