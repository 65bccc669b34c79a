package types

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// SwapRequest sells Offer from Sender and pays the proceeds back to Sender.
type SwapRequest struct {
	ReplyId        uint64   `json:"reply_id"`
	Sender         string   `json:"sender"`
	Pair           Pair     `json:"pair"`
	Offer          sdk.Coin `json:"offer"`
	MinimumReceive sdk.Coin `json:"minimum_receive"`
}

// OrderRequest places Offer on the book at TargetPrice.
type OrderRequest struct {
	ReplyId     uint64         `json:"reply_id"`
	Sender      string         `json:"sender"`
	Pair        Pair           `json:"pair"`
	Offer       sdk.Coin       `json:"offer"`
	TargetPrice math.LegacyDec `json:"target_price"`
}

// OrderRef addresses an existing order of Owner.
type OrderRef struct {
	ReplyId  uint64 `json:"reply_id"`
	Owner    string `json:"owner"`
	Pair     Pair   `json:"pair"`
	OrderIdx uint64 `json:"order_idx"`
}

// Order is the venue's view of a limit order.
type Order struct {
	Idx            uint64         `json:"idx"`
	Owner          string         `json:"owner"`
	Offer          sdk.Coin       `json:"offer"`
	RemainingOffer math.Int       `json:"remaining_offer"`
	FilledAmount   math.Int       `json:"filled_amount"`
	TargetPrice    math.LegacyDec `json:"target_price"`
}

func (o Order) IsFilled() bool { return o.RemainingOffer.IsZero() }

// VenueResponse is the synchronous answer of a venue call. Data becomes the
// reply payload.
type VenueResponse struct {
	Deferred bool   `json:"deferred"`
	Data     []byte `json:"data,omitempty"`
}

// OrderSubmittedData is the reply payload of an accepted limit order.
type OrderSubmittedData struct {
	OrderIdx uint64 `json:"order_idx"`
}
