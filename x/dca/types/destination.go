package types

import (
	"fmt"
	"strings"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// PostExecutionAction is what happens to a destination's share of proceeds.
type PostExecutionAction string

const (
	// ActionSend transfers the share to the destination address.
	ActionSend PostExecutionAction = "send"
	// ActionZDelegate transfers the share and delegates it on this chain.
	ActionZDelegate PostExecutionAction = "z_delegate"
	// ActionIbcDelegate sends the share over ICS-20 with a delegation memo.
	ActionIbcDelegate PostExecutionAction = "ibc_delegate"
)

func (a PostExecutionAction) IsDelegation() bool {
	return a == ActionZDelegate || a == ActionIbcDelegate
}

// Destination receives an allocation of every execution's proceeds.
type Destination struct {
	Address          string              `json:"address"`
	Allocation       math.LegacyDec      `json:"allocation"`
	Action           PostExecutionAction `json:"action"`
	ValidatorAddress string              `json:"validator_address,omitempty"`
	ChannelId        string              `json:"channel_id,omitempty"`
}

func (d Destination) ValidateBasic() error {
	switch d.Action {
	case ActionSend, ActionZDelegate:
		if _, err := sdk.AccAddressFromBech32(d.Address); err != nil {
			return errors.Wrapf(ErrInvalidDestinations, "invalid destination address %s: %s", d.Address, err)
		}
	case ActionIbcDelegate:
		if strings.TrimSpace(d.Address) == "" {
			return errors.Wrap(ErrInvalidDestinations, "ibc destination address cannot be empty")
		}
		if !strings.HasPrefix(d.ChannelId, "channel-") {
			return errors.Wrapf(ErrInvalidDestinations, "invalid channel id %q", d.ChannelId)
		}
	default:
		return errors.Wrapf(ErrInvalidDestinations, "unknown post execution action %q", d.Action)
	}

	if d.Action == ActionZDelegate {
		if _, err := sdk.ValAddressFromBech32(d.ValidatorAddress); err != nil {
			return errors.Wrapf(ErrInvalidDestinations, "invalid validator address %s: %s", d.ValidatorAddress, err)
		}
	}
	if d.Action == ActionIbcDelegate && d.ValidatorAddress == "" {
		return errors.Wrap(ErrInvalidDestinations, "ibc delegation requires a validator address")
	}

	if d.Allocation.IsNil() || !d.Allocation.IsPositive() {
		return errors.Wrapf(ErrInvalidDestinations, "destination %s has a non-positive allocation", d.Address)
	}
	return nil
}

// ValidateDestinations checks count, each destination, and that the
// allocations sum to exactly one.
func ValidateDestinations(destinations []Destination, max uint32) error {
	if len(destinations) == 0 {
		return errors.Wrap(ErrInvalidDestinations, "at least one destination is required")
	}
	if uint32(len(destinations)) > max {
		return errors.Wrapf(ErrInvalidDestinations, "no more than %d destinations can be provided", max)
	}

	total := math.LegacyZeroDec()
	for _, d := range destinations {
		if err := d.ValidateBasic(); err != nil {
			return err
		}
		total = total.Add(d.Allocation)
	}

	if !total.Equal(math.LegacyOneDec()) {
		return errors.Wrap(ErrInvalidDestinations, fmt.Sprintf("destination allocations must add up to 1, got %s", total))
	}
	return nil
}

// SplitByAllocation divides amount across destinations. Shares are truncated
// and the remainder goes to the first destination so the parts always sum to
// amount.
func SplitByAllocation(amount math.Int, destinations []Destination) []math.Int {
	shares := make([]math.Int, len(destinations))
	if len(destinations) == 0 {
		return shares
	}

	allocated := math.ZeroInt()
	for i, d := range destinations {
		shares[i] = math.LegacyNewDecFromInt(amount).Mul(d.Allocation).TruncateInt()
		allocated = allocated.Add(shares[i])
	}
	shares[0] = shares[0].Add(amount.Sub(allocated))
	return shares
}
