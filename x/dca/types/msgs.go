package types

import (
	"time"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// RouterKey is the message route for the dca module
const RouterKey = ModuleName

const MaxLabelLength = 100

// DcaPlusOptions enables escrow and performance tracking on a new vault.
type DcaPlusOptions struct {
	EscrowLevel math.LegacyDec `json:"escrow_level"`
	ModelId     uint32         `json:"model_id"`
}

// MsgCreateVault opens a vault funded with Deposit. A TargetReceiveAmount
// turns the first trigger into a limit order, otherwise the vault fires at
// TargetStartTime, or immediately when none is given.
type MsgCreateVault struct {
	Owner                string          `json:"owner"`
	Label                string          `json:"label,omitempty"`
	Destinations         []Destination   `json:"destinations,omitempty"`
	Pair                 Pair            `json:"pair"`
	Deposit              sdk.Coin        `json:"deposit"`
	SwapAmount           math.Int        `json:"swap_amount"`
	TimeInterval         TimeInterval    `json:"time_interval"`
	TargetStartTime      *time.Time      `json:"target_start_time,omitempty"`
	TargetReceiveAmount  *math.Int       `json:"target_receive_amount,omitempty"`
	SlippageTolerance    *math.LegacyDec `json:"slippage_tolerance,omitempty"`
	MinimumReceiveAmount *math.Int       `json:"minimum_receive_amount,omitempty"`
	PriceThreshold       *math.LegacyDec `json:"price_threshold,omitempty"`
	DcaPlus              *DcaPlusOptions `json:"dca_plus,omitempty"`
}

type MsgCreateVaultResponse struct {
	VaultId uint64 `json:"vault_id"`
}

// ValidateBasic does a sanity check on the provided data.
func (msg *MsgCreateVault) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Owner); err != nil {
		return errors.Wrap(err, "invalid owner address")
	}
	if len(msg.Label) > MaxLabelLength {
		return errors.Wrapf(ErrInvalidRequest, "label cannot exceed %d characters", MaxLabelLength)
	}
	if err := msg.Pair.ValidateBasic(); err != nil {
		return err
	}
	if err := msg.Deposit.Validate(); err != nil || !msg.Deposit.IsPositive() {
		return errors.Wrapf(ErrInvalidFunds, "deposit must be a positive coin, got %s", msg.Deposit)
	}
	if !msg.Pair.Contains(msg.Deposit.Denom) {
		return errors.Wrapf(ErrInvalidFunds, "deposit denom %s is not part of the pair", msg.Deposit.Denom)
	}
	if msg.SwapAmount.IsNil() || !msg.SwapAmount.IsPositive() {
		return errors.Wrap(ErrInvalidRequest, "swap amount must be positive")
	}
	if err := msg.TimeInterval.ValidateBasic(); err != nil {
		return err
	}
	if len(msg.Destinations) > 0 {
		if err := ValidateDestinations(msg.Destinations, MaxDestinations); err != nil {
			return err
		}
	}
	if msg.TargetStartTime != nil && msg.TargetReceiveAmount != nil {
		return errors.Wrap(ErrInvalidRequest, "cannot provide both a target start time and a target receive amount")
	}
	if msg.TargetReceiveAmount != nil && !msg.TargetReceiveAmount.IsPositive() {
		return errors.Wrap(ErrInvalidRequest, "target receive amount must be positive")
	}
	if msg.SlippageTolerance != nil && !isFraction(*msg.SlippageTolerance) {
		return errors.Wrap(ErrInvalidRequest, "slippage tolerance must be between 0 and 1")
	}
	if msg.MinimumReceiveAmount != nil && msg.MinimumReceiveAmount.IsNegative() {
		return errors.Wrap(ErrInvalidRequest, "minimum receive amount cannot be negative")
	}
	if msg.PriceThreshold != nil && !msg.PriceThreshold.IsPositive() {
		return errors.Wrap(ErrInvalidRequest, "price threshold must be positive")
	}
	if msg.DcaPlus != nil {
		if msg.TargetReceiveAmount != nil {
			return errors.Wrap(ErrInvalidRequest, "dca plus vaults cannot use limit order triggers")
		}
		if !isFraction(msg.DcaPlus.EscrowLevel) {
			return errors.Wrap(ErrInvalidRequest, "escrow level must be between 0 and 1")
		}
	}
	return nil
}

// MsgDeposit adds funds to an existing vault.
type MsgDeposit struct {
	Sender  string   `json:"sender"`
	VaultId uint64   `json:"vault_id"`
	Amount  sdk.Coin `json:"amount"`
}

type MsgDepositResponse struct{}

func (msg *MsgDeposit) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return errors.Wrap(err, "invalid sender address")
	}
	if err := msg.Amount.Validate(); err != nil || !msg.Amount.IsPositive() {
		return errors.Wrapf(ErrInvalidFunds, "deposit must be a positive coin, got %s", msg.Amount)
	}
	return nil
}

// MsgUpdateVaultLabel renames a vault. Only the owner may do this.
type MsgUpdateVaultLabel struct {
	Owner   string `json:"owner"`
	VaultId uint64 `json:"vault_id"`
	Label   string `json:"label"`
}

type MsgUpdateVaultLabelResponse struct{}

func (msg *MsgUpdateVaultLabel) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Owner); err != nil {
		return errors.Wrap(err, "invalid owner address")
	}
	if len(msg.Label) > MaxLabelLength {
		return errors.Wrapf(ErrInvalidRequest, "label cannot exceed %d characters", MaxLabelLength)
	}
	return nil
}

// MsgCancelVault stops a vault and refunds its balance to the owner.
type MsgCancelVault struct {
	Sender  string `json:"sender"`
	VaultId uint64 `json:"vault_id"`
}

type MsgCancelVaultResponse struct {
	Refund sdk.Coin `json:"refund"`
}

func (msg *MsgCancelVault) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return errors.Wrap(err, "invalid sender address")
	}
	return nil
}

// MsgExecuteTrigger fires the trigger of a single vault.
type MsgExecuteTrigger struct {
	Sender  string `json:"sender"`
	VaultId uint64 `json:"vault_id"`
}

type MsgExecuteTriggerResponse struct {
	Outcome ExecutionOutcome `json:"outcome"`
}

func (msg *MsgExecuteTrigger) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return errors.Wrap(err, "invalid sender address")
	}
	return nil
}

// MsgExecuteDueTriggers runs every due time trigger up to Limit.
type MsgExecuteDueTriggers struct {
	Sender string `json:"sender"`
	Limit  uint32 `json:"limit"`
}

type MsgExecuteDueTriggersResponse struct {
	Report SweepReport `json:"report"`
}

func (msg *MsgExecuteDueTriggers) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return errors.Wrap(err, "invalid sender address")
	}
	return nil
}

// MsgHandleOrderFilled reports that the venue filled a vault's limit order.
type MsgHandleOrderFilled struct {
	Sender   string `json:"sender"`
	OrderIdx uint64 `json:"order_idx"`
}

type MsgHandleOrderFilledResponse struct {
	VaultId uint64           `json:"vault_id"`
	Outcome ExecutionOutcome `json:"outcome"`
}

func (msg *MsgHandleOrderFilled) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return errors.Wrap(err, "invalid sender address")
	}
	return nil
}

// SwapAdjustment is one row of the swap adjustment table.
type SwapAdjustment struct {
	ModelId    uint32         `json:"model_id"`
	Multiplier math.LegacyDec `json:"multiplier"`
}

// MsgUpdateSwapAdjustments overwrites the given rows of the table.
type MsgUpdateSwapAdjustments struct {
	Sender      string           `json:"sender"`
	Adjustments []SwapAdjustment `json:"adjustments"`
}

type MsgUpdateSwapAdjustmentsResponse struct{}

func (msg *MsgUpdateSwapAdjustments) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return errors.Wrap(err, "invalid sender address")
	}
	if len(msg.Adjustments) == 0 {
		return errors.Wrap(ErrInvalidRequest, "adjustments cannot be empty")
	}
	seen := make(map[uint32]struct{}, len(msg.Adjustments))
	for _, a := range msg.Adjustments {
		if _, dup := seen[a.ModelId]; dup {
			return errors.Wrapf(ErrInvalidRequest, "duplicate model id %d", a.ModelId)
		}
		seen[a.ModelId] = struct{}{}
		if a.Multiplier.IsNil() || a.Multiplier.IsNegative() {
			return errors.Wrapf(ErrInvalidRequest, "multiplier of model %d must be non-negative", a.ModelId)
		}
	}
	return nil
}

// MsgClaimEscrowedFunds releases the escrow of a finished dca plus vault.
type MsgClaimEscrowedFunds struct {
	Sender  string `json:"sender"`
	VaultId uint64 `json:"vault_id"`
}

type MsgClaimEscrowedFundsResponse struct {
	Disbursed      sdk.Coin `json:"disbursed"`
	PerformanceFee sdk.Coin `json:"performance_fee"`
}

func (msg *MsgClaimEscrowedFunds) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return errors.Wrap(err, "invalid sender address")
	}
	return nil
}

// MsgUpdateParams replaces the module params. Authority only.
type MsgUpdateParams struct {
	Authority string `json:"authority"`
	Params    Params `json:"params"`
}

type MsgUpdateParamsResponse struct{}

func (msg *MsgUpdateParams) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Authority); err != nil {
		return errors.Wrap(err, "invalid authority address")
	}
	return msg.Params.ValidateBasic()
}

func isFraction(d math.LegacyDec) bool {
	return !d.IsNil() && !d.IsNegative() && d.LTE(math.LegacyOneDec())
}
