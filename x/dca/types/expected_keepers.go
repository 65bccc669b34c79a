package types

//go:generate mockgen -source=expected_keepers.go -destination=../mocks/expected_keepers.go -package=mocks

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	stakingtypes "github.com/cosmos/cosmos-sdk/x/staking/types"
	transfertypes "github.com/cosmos/ibc-go/v10/modules/apps/transfer/types"
)

// BankKeeper moves vault funds between accounts.
type BankKeeper interface {
	GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin
	SendCoins(ctx context.Context, fromAddr, toAddr sdk.AccAddress, amt sdk.Coins) error
}

// StakingKeeper delegates proceeds for delegating destinations.
type StakingKeeper interface {
	Delegate(ctx context.Context, msg *stakingtypes.MsgDelegate) (*stakingtypes.MsgDelegateResponse, error)
}

// TransferKeeper sends proceeds to other chains over ICS-20.
type TransferKeeper interface {
	Transfer(ctx context.Context, msg *transfertypes.MsgTransfer) (*transfertypes.MsgTransferResponse, error)
}

// ExchangeVenue performs swaps and manages limit orders. A response with
// Deferred set means the venue will deliver the result later through
// Keeper.Reply with the request's ReplyId.
type ExchangeVenue interface {
	// SpotPrice is the price of the other denom of pair in units of swapDenom.
	SpotPrice(ctx context.Context, pair Pair, swapDenom string) (math.LegacyDec, error)
	Swap(ctx context.Context, req SwapRequest) (VenueResponse, error)
	SubmitOrder(ctx context.Context, req OrderRequest) (VenueResponse, error)
	GetOrder(ctx context.Context, pair Pair, orderIdx uint64) (Order, error)
	WithdrawOrder(ctx context.Context, req OrderRef) (VenueResponse, error)
	RetractOrder(ctx context.Context, req OrderRef) (VenueResponse, error)
}
