package simulation

import (
	"context"
	"fmt"
	"sync"

	errorsmod "cosmossdk.io/errors"

	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkErrors "github.com/cosmos/cosmos-sdk/types/errors"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	stakingtypes "github.com/cosmos/cosmos-sdk/x/staking/types"
	transfertypes "github.com/cosmos/ibc-go/v10/modules/apps/transfer/types"

	"github.com/pushchain/push-dca-node/x/dca/types"
)

var (
	_ types.StakingKeeper  = (*StakingKeeper)(nil)
	_ types.TransferKeeper = (*TransferKeeper)(nil)
)

// StakingKeeper bonds delegations into the bonded pool and records them.
// Delegating to a jailed validator fails.
type StakingKeeper struct {
	bank types.BankKeeper

	mu          sync.Mutex
	jailed      map[string]bool
	Delegations []stakingtypes.MsgDelegate
}

func NewStakingKeeper(bank types.BankKeeper) *StakingKeeper {
	return &StakingKeeper{bank: bank, jailed: make(map[string]bool)}
}

// Jail makes every later delegation to validator fail.
func (s *StakingKeeper) Jail(validator string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jailed[validator] = true
}

func (s *StakingKeeper) Delegate(ctx context.Context, msg *stakingtypes.MsgDelegate) (*stakingtypes.MsgDelegateResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.jailed[msg.ValidatorAddress] {
		return nil, errorsmod.Wrapf(stakingtypes.ErrValidatorJailed, "validator %s", msg.ValidatorAddress)
	}
	delegator, err := sdk.AccAddressFromBech32(msg.DelegatorAddress)
	if err != nil {
		return nil, errorsmod.Wrap(sdkErrors.ErrInvalidAddress, err.Error())
	}
	pool := authtypes.NewModuleAddress(stakingtypes.BondedPoolName)
	if err := s.bank.SendCoins(ctx, delegator, pool, sdk.NewCoins(msg.Amount)); err != nil {
		return nil, err
	}
	s.Delegations = append(s.Delegations, *msg)
	return &stakingtypes.MsgDelegateResponse{}, nil
}

// TransferKeeper escrows outgoing ICS-20 transfers per channel and records
// them with increasing packet sequences. Channels must be opened first.
type TransferKeeper struct {
	bank types.BankKeeper

	mu        sync.Mutex
	channels  map[string]bool
	sequence  uint64
	Transfers []transfertypes.MsgTransfer
}

func NewTransferKeeper(bank types.BankKeeper) *TransferKeeper {
	return &TransferKeeper{bank: bank, channels: make(map[string]bool), sequence: 1}
}

func (t *TransferKeeper) OpenChannel(channelID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.channels[channelID] = true
}

// EscrowAddress holds the funds sent over channelID.
func EscrowAddress(channelID string) sdk.AccAddress {
	return transfertypes.GetEscrowAddress(transfertypes.PortID, channelID)
}

func (t *TransferKeeper) Transfer(ctx context.Context, msg *transfertypes.MsgTransfer) (*transfertypes.MsgTransferResponse, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.channels[msg.SourceChannel] {
		return nil, fmt.Errorf("channel %s/%s not found", msg.SourcePort, msg.SourceChannel)
	}
	sender, err := sdk.AccAddressFromBech32(msg.Sender)
	if err != nil {
		return nil, errorsmod.Wrap(sdkErrors.ErrInvalidAddress, err.Error())
	}
	if err := t.bank.SendCoins(ctx, sender, EscrowAddress(msg.SourceChannel), sdk.NewCoins(msg.Token)); err != nil {
		return nil, err
	}

	seq := t.sequence
	t.sequence++
	t.Transfers = append(t.Transfers, *msg)
	return &transfertypes.MsgTransferResponse{Sequence: seq}, nil
}
