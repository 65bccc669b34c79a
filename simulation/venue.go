package simulation

import (
	"context"
	"encoding/json"
	"fmt"

	"cosmossdk.io/collections"
	storetypes "cosmossdk.io/core/store"
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"

	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkErrors "github.com/cosmos/cosmos-sdk/types/errors"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/pushchain/push-dca-node/x/dca/types"
)

const (
	// VenueModuleName owns the venue's pools, its order book and the minter
	// used to move prices.
	VenueModuleName = "simvenue"

	// DefaultVenueFee is taken from every swap's input.
	DefaultVenueFee = "0.003"
)

var (
	venuePairsKey        = collections.NewPrefix(0)
	venueOrdersKey       = collections.NewPrefix(1)
	venueOrderSeqKey     = collections.NewPrefix(2)
	venuePendingSwapsKey = collections.NewPrefix(3)
)

// VenueBankKeeper is the part of x/bank the venue settles with.
type VenueBankKeeper interface {
	GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin
	SendCoins(ctx context.Context, fromAddr, toAddr sdk.AccAddress, amt sdk.Coins) error
	MintCoins(ctx context.Context, moduleName string, amt sdk.Coins) error
	SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error
}

// Replier receives the results of deferred venue calls.
type Replier interface {
	Reply(ctx sdk.Context, reply types.Reply) (types.ExecutionOutcome, error)
}

// bookOrder is an order plus what it has earned so far.
type bookOrder struct {
	Pair     types.Pair  `json:"pair"`
	Order    types.Order `json:"order"`
	Proceeds sdk.Coin    `json:"proceeds"`
}

// Venue is a constant-product exchange with a limit-order book. Orders
// fill in full once the pool price crosses their target.
type Venue struct {
	bank    VenueBankKeeper
	replier Replier

	Pairs        collections.Map[string, types.Pair]
	Orders       collections.Map[uint64, bookOrder]
	OrderSeq     collections.Sequence
	PendingSwaps collections.Map[uint64, types.SwapRequest]

	FeeRate math.LegacyDec
	// DeferSwaps holds swaps until Settle instead of filling them inline.
	DeferSwaps bool
}

var _ types.ExchangeVenue = (*Venue)(nil)

func NewVenue(storeService storetypes.KVStoreService, bank VenueBankKeeper) *Venue {
	sb := collections.NewSchemaBuilder(storeService)
	v := &Venue{
		bank:         bank,
		Pairs:        collections.NewMap(sb, venuePairsKey, "pairs", collections.StringKey, types.JSONValue[types.Pair]()),
		Orders:       collections.NewMap(sb, venueOrdersKey, "orders", collections.Uint64Key, types.JSONValue[bookOrder]()),
		OrderSeq:     collections.NewSequence(sb, venueOrderSeqKey, "order_seq"),
		PendingSwaps: collections.NewMap(sb, venuePendingSwapsKey, "pending_swaps", collections.Uint64Key, types.JSONValue[types.SwapRequest]()),
		FeeRate:      math.LegacyMustNewDecFromStr(DefaultVenueFee),
	}
	if _, err := sb.Build(); err != nil {
		panic(fmt.Sprintf("failed to build %s schema: %s", VenueModuleName, err))
	}
	return v
}

// SetReplier wires the continuation target of deferred swaps.
func (v *Venue) SetReplier(r Replier) { v.replier = r }

// PoolAddress holds the reserves of pair.
func PoolAddress(pair types.Pair) sdk.AccAddress {
	return authtypes.NewModuleAddress(VenueModuleName + "/pool/" + pair.Address)
}

// BookAddress escrows open orders and deferred swap offers.
func BookAddress() sdk.AccAddress {
	return authtypes.NewModuleAddress(VenueModuleName + "/book")
}

// CreatePool registers pair and mints its initial reserves.
func (v *Venue) CreatePool(ctx context.Context, pair types.Pair, base, quote math.Int) error {
	if err := pair.ValidateBasic(); err != nil {
		return err
	}
	if !base.IsPositive() || !quote.IsPositive() {
		return errorsmod.Wrap(sdkErrors.ErrInvalidRequest, "pool reserves must be positive")
	}
	if err := v.Pairs.Set(ctx, pair.Address, pair); err != nil {
		return err
	}
	return v.mintTo(ctx, PoolAddress(pair), sdk.NewCoins(sdk.NewCoin(pair.BaseDenom, base), sdk.NewCoin(pair.QuoteDenom, quote)))
}

func (v *Venue) mintTo(ctx context.Context, addr sdk.AccAddress, amt sdk.Coins) error {
	if err := v.bank.MintCoins(ctx, VenueModuleName, amt); err != nil {
		return err
	}
	return v.bank.SendCoinsFromModuleToAccount(ctx, VenueModuleName, addr, amt)
}

func (v *Venue) pair(ctx context.Context, pair types.Pair) (types.Pair, error) {
	stored, err := v.Pairs.Get(ctx, pair.Address)
	if err != nil {
		return types.Pair{}, errorsmod.Wrapf(sdkErrors.ErrNotFound, "pool %s", pair.Address)
	}
	return stored, nil
}

func (v *Venue) reserves(ctx context.Context, pair types.Pair, denom string) (in, out math.Int) {
	pool := PoolAddress(pair)
	return v.bank.GetBalance(ctx, pool, denom).Amount, v.bank.GetBalance(ctx, pool, pair.Other(denom)).Amount
}

// SpotPrice is reserve(swapDenom) / reserve(other).
func (v *Venue) SpotPrice(ctx context.Context, pair types.Pair, swapDenom string) (math.LegacyDec, error) {
	pair, err := v.pair(ctx, pair)
	if err != nil {
		return math.LegacyDec{}, err
	}
	if !pair.Contains(swapDenom) {
		return math.LegacyDec{}, errorsmod.Wrapf(sdkErrors.ErrInvalidCoins, "%s is not in pool %s", swapDenom, pair.Address)
	}
	in, out := v.reserves(ctx, pair, swapDenom)
	if !in.IsPositive() || !out.IsPositive() {
		return math.LegacyDec{}, errorsmod.Wrapf(sdkErrors.ErrInsufficientFunds, "pool %s is empty", pair.Address)
	}
	return math.LegacyNewDecFromInt(in).Quo(math.LegacyNewDecFromInt(out)), nil
}

// QuotePrice is the pool's quote per base price.
func (v *Venue) QuotePrice(ctx context.Context, pair types.Pair) (math.LegacyDec, error) {
	return v.SpotPrice(ctx, pair, pair.QuoteDenom)
}

// amountOut prices offer against the pool after the venue fee.
func (v *Venue) amountOut(ctx context.Context, pair types.Pair, offer sdk.Coin) (sdk.Coin, error) {
	in, out := v.reserves(ctx, pair, offer.Denom)
	if !in.IsPositive() || !out.IsPositive() {
		return sdk.Coin{}, errorsmod.Wrapf(sdkErrors.ErrInsufficientFunds, "pool %s is empty", pair.Address)
	}
	net := math.LegacyNewDecFromInt(offer.Amount).Mul(math.LegacyOneDec().Sub(v.FeeRate))
	amount := math.LegacyNewDecFromInt(out).Mul(net).Quo(math.LegacyNewDecFromInt(in).Add(net)).TruncateInt()
	return sdk.NewCoin(pair.Other(offer.Denom), amount), nil
}

func (v *Venue) validateSwap(ctx context.Context, req types.SwapRequest) (types.Pair, error) {
	pair, err := v.pair(ctx, req.Pair)
	if err != nil {
		return types.Pair{}, err
	}
	if !pair.Contains(req.Offer.Denom) || !req.Offer.IsPositive() {
		return types.Pair{}, errorsmod.Wrapf(sdkErrors.ErrInvalidCoins, "cannot offer %s to pool %s", req.Offer, pair.Address)
	}
	return pair, nil
}

// fill settles req against the pool, with from holding the offer.
func (v *Venue) fill(ctx context.Context, pair types.Pair, from sdk.AccAddress, req types.SwapRequest) (sdk.Coin, error) {
	out, err := v.amountOut(ctx, pair, req.Offer)
	if err != nil {
		return sdk.Coin{}, err
	}
	if !req.MinimumReceive.IsNil() && out.Amount.LT(req.MinimumReceive.Amount) {
		return sdk.Coin{}, errorsmod.Wrapf(sdkErrors.ErrInvalidRequest,
			"slippage: %s is below the minimum receive of %s", out, req.MinimumReceive)
	}
	if !out.IsPositive() {
		return sdk.Coin{}, errorsmod.Wrapf(sdkErrors.ErrInvalidRequest, "offer %s is too small to swap", req.Offer)
	}

	pool := PoolAddress(pair)
	if err := v.bank.SendCoins(ctx, from, pool, sdk.NewCoins(req.Offer)); err != nil {
		return sdk.Coin{}, err
	}
	sender := sdk.MustAccAddressFromBech32(req.Sender)
	if err := v.bank.SendCoins(ctx, pool, sender, sdk.NewCoins(out)); err != nil {
		return sdk.Coin{}, err
	}
	return out, nil
}

// Swap fills req at the pool price. With DeferSwaps the offer is escrowed
// and the fill waits for Settle.
func (v *Venue) Swap(ctx context.Context, req types.SwapRequest) (types.VenueResponse, error) {
	pair, err := v.validateSwap(ctx, req)
	if err != nil {
		return types.VenueResponse{}, err
	}
	sender, err := sdk.AccAddressFromBech32(req.Sender)
	if err != nil {
		return types.VenueResponse{}, errorsmod.Wrap(sdkErrors.ErrInvalidAddress, err.Error())
	}

	if v.DeferSwaps {
		if err := v.bank.SendCoins(ctx, sender, BookAddress(), sdk.NewCoins(req.Offer)); err != nil {
			return types.VenueResponse{}, err
		}
		if err := v.PendingSwaps.Set(ctx, req.ReplyId, req); err != nil {
			return types.VenueResponse{}, err
		}
		return types.VenueResponse{Deferred: true}, nil
	}

	if _, err := v.fill(ctx, pair, sender, req); err != nil {
		return types.VenueResponse{}, err
	}
	return types.VenueResponse{}, nil
}

// Settle fills every deferred swap and reports each result to the replier.
// A fill that fails returns the offer and is reported as a failed reply.
func (v *Venue) Settle(ctx sdk.Context) (int, error) {
	if v.replier == nil {
		return 0, fmt.Errorf("%s has no replier", VenueModuleName)
	}

	var pending []types.SwapRequest
	err := v.PendingSwaps.Walk(ctx, nil, func(_ uint64, req types.SwapRequest) (bool, error) {
		pending = append(pending, req)
		return false, nil
	})
	if err != nil {
		return 0, err
	}

	for _, req := range pending {
		if err := v.PendingSwaps.Remove(ctx, req.ReplyId); err != nil {
			return 0, err
		}

		reply := types.Reply{Id: req.ReplyId}
		cacheCtx, write := ctx.CacheContext()
		pair, err := v.validateSwap(cacheCtx, req)
		if err == nil {
			_, err = v.fill(cacheCtx, pair, BookAddress(), req)
		}
		if err != nil {
			sender := sdk.MustAccAddressFromBech32(req.Sender)
			if refundErr := v.bank.SendCoins(ctx, BookAddress(), sender, sdk.NewCoins(req.Offer)); refundErr != nil {
				return 0, refundErr
			}
			reply = types.FailedReply(req.ReplyId, err)
		} else {
			write()
		}

		replyCtx, writeReply := ctx.CacheContext()
		if _, err := v.replier.Reply(replyCtx, reply); err != nil {
			ctx.Logger().Error("deferred swap reply failed", "reply_id", req.ReplyId, "error", err.Error())
			continue
		}
		writeReply()
	}
	return len(pending), nil
}

// SubmitOrder escrows the offer on the book at req.TargetPrice, quoted in
// quote per base.
func (v *Venue) SubmitOrder(ctx context.Context, req types.OrderRequest) (types.VenueResponse, error) {
	pair, err := v.pair(ctx, req.Pair)
	if err != nil {
		return types.VenueResponse{}, err
	}
	if !pair.Contains(req.Offer.Denom) || !req.Offer.IsPositive() {
		return types.VenueResponse{}, errorsmod.Wrapf(sdkErrors.ErrInvalidCoins, "cannot offer %s to pool %s", req.Offer, pair.Address)
	}
	if req.TargetPrice.IsNil() || !req.TargetPrice.IsPositive() {
		return types.VenueResponse{}, errorsmod.Wrap(sdkErrors.ErrInvalidRequest, "target price must be positive")
	}
	sender, err := sdk.AccAddressFromBech32(req.Sender)
	if err != nil {
		return types.VenueResponse{}, errorsmod.Wrap(sdkErrors.ErrInvalidAddress, err.Error())
	}
	if err := v.bank.SendCoins(ctx, sender, BookAddress(), sdk.NewCoins(req.Offer)); err != nil {
		return types.VenueResponse{}, err
	}

	idx, err := v.OrderSeq.Next(ctx)
	if err != nil {
		return types.VenueResponse{}, err
	}
	order := bookOrder{
		Pair: pair,
		Order: types.Order{
			Idx:            idx,
			Owner:          req.Sender,
			Offer:          req.Offer,
			RemainingOffer: req.Offer.Amount,
			FilledAmount:   math.ZeroInt(),
			TargetPrice:    req.TargetPrice,
		},
		Proceeds: sdk.NewInt64Coin(pair.Other(req.Offer.Denom), 0),
	}
	if err := v.Orders.Set(ctx, idx, order); err != nil {
		return types.VenueResponse{}, err
	}

	data, err := json.Marshal(types.OrderSubmittedData{OrderIdx: idx})
	if err != nil {
		return types.VenueResponse{}, err
	}
	return types.VenueResponse{Data: data}, nil
}

func (v *Venue) bookOrder(ctx context.Context, pair types.Pair, idx uint64) (bookOrder, error) {
	order, err := v.Orders.Get(ctx, idx)
	if err != nil || order.Pair.Address != pair.Address {
		return bookOrder{}, errorsmod.Wrapf(sdkErrors.ErrNotFound, "order %d in pool %s", idx, pair.Address)
	}
	return order, nil
}

func (v *Venue) GetOrder(ctx context.Context, pair types.Pair, orderIdx uint64) (types.Order, error) {
	order, err := v.bookOrder(ctx, pair, orderIdx)
	if err != nil {
		return types.Order{}, err
	}
	return order.Order, nil
}

func (v *Venue) ownedOrder(ctx context.Context, ref types.OrderRef) (bookOrder, sdk.AccAddress, error) {
	order, err := v.bookOrder(ctx, ref.Pair, ref.OrderIdx)
	if err != nil {
		return bookOrder{}, nil, err
	}
	if order.Order.Owner != ref.Owner {
		return bookOrder{}, nil, errorsmod.Wrapf(sdkErrors.ErrUnauthorized, "order %d is not owned by %s", ref.OrderIdx, ref.Owner)
	}
	return order, sdk.MustAccAddressFromBech32(ref.Owner), nil
}

// WithdrawOrder pays a filled order's proceeds to its owner and closes it.
func (v *Venue) WithdrawOrder(ctx context.Context, ref types.OrderRef) (types.VenueResponse, error) {
	order, owner, err := v.ownedOrder(ctx, ref)
	if err != nil {
		return types.VenueResponse{}, err
	}
	if !order.Order.IsFilled() {
		return types.VenueResponse{}, errorsmod.Wrapf(sdkErrors.ErrInvalidRequest, "order %d is not filled", ref.OrderIdx)
	}
	if err := v.bank.SendCoins(ctx, BookAddress(), owner, sdk.NewCoins(order.Proceeds)); err != nil {
		return types.VenueResponse{}, err
	}
	return types.VenueResponse{}, v.Orders.Remove(ctx, ref.OrderIdx)
}

// RetractOrder returns the unfilled offer together with any proceeds and
// closes the order.
func (v *Venue) RetractOrder(ctx context.Context, ref types.OrderRef) (types.VenueResponse, error) {
	order, owner, err := v.ownedOrder(ctx, ref)
	if err != nil {
		return types.VenueResponse{}, err
	}
	refund := sdk.NewCoins(sdk.NewCoin(order.Order.Offer.Denom, order.Order.RemainingOffer), order.Proceeds)
	if err := v.bank.SendCoins(ctx, BookAddress(), owner, refund); err != nil {
		return types.VenueResponse{}, err
	}
	return types.VenueResponse{}, v.Orders.Remove(ctx, ref.OrderIdx)
}

// crossed reports whether the pool price has reached the order's target.
// Orders selling quote fill at or below the target, orders selling base at
// or above it.
func crossed(order types.Order, pair types.Pair, price math.LegacyDec) bool {
	if order.Offer.Denom == pair.QuoteDenom {
		return price.LTE(order.TargetPrice)
	}
	return price.GTE(order.TargetPrice)
}

// MatchOrders fills every open order whose target the pool price has
// crossed, at the order's own price, and returns their indexes.
func (v *Venue) MatchOrders(ctx context.Context) ([]uint64, error) {
	var open []bookOrder
	err := v.Orders.Walk(ctx, nil, func(_ uint64, order bookOrder) (bool, error) {
		if !order.Order.IsFilled() {
			open = append(open, order)
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	filled := make([]uint64, 0, len(open))
	for _, order := range open {
		price, err := v.QuotePrice(ctx, order.Pair)
		if err != nil {
			return nil, err
		}
		if !crossed(order.Order, order.Pair, price) {
			continue
		}

		remaining := math.LegacyNewDecFromInt(order.Order.RemainingOffer)
		var proceeds math.Int
		if order.Order.Offer.Denom == order.Pair.QuoteDenom {
			proceeds = remaining.Quo(order.Order.TargetPrice).TruncateInt()
		} else {
			proceeds = remaining.Mul(order.Order.TargetPrice).TruncateInt()
		}
		payout := sdk.NewCoin(order.Proceeds.Denom, proceeds)
		offered := sdk.NewCoin(order.Order.Offer.Denom, order.Order.RemainingOffer)

		pool := PoolAddress(order.Pair)
		if v.bank.GetBalance(ctx, pool, payout.Denom).Amount.LT(proceeds) {
			continue
		}
		if err := v.bank.SendCoins(ctx, BookAddress(), pool, sdk.NewCoins(offered)); err != nil {
			return nil, err
		}
		if err := v.bank.SendCoins(ctx, pool, BookAddress(), sdk.NewCoins(payout)); err != nil {
			return nil, err
		}

		order.Order.FilledAmount = order.Order.FilledAmount.Add(order.Order.RemainingOffer)
		order.Order.RemainingOffer = math.ZeroInt()
		order.Proceeds = order.Proceeds.Add(payout)
		if err := v.Orders.Set(ctx, order.Order.Idx, order); err != nil {
			return nil, err
		}
		filled = append(filled, order.Order.Idx)
	}
	return filled, nil
}

// MovePrice scales pair's quote per base price by factor by minting into
// one side of the pool.
func (v *Venue) MovePrice(ctx context.Context, pair types.Pair, factor math.LegacyDec) error {
	pair, err := v.pair(ctx, pair)
	if err != nil {
		return err
	}
	if factor.IsNil() || !factor.IsPositive() {
		return errorsmod.Wrap(sdkErrors.ErrInvalidRequest, "price factor must be positive")
	}

	quote, base := v.reserves(ctx, pair, pair.QuoteDenom)
	var mint sdk.Coin
	switch {
	case factor.GT(math.LegacyOneDec()):
		added := math.LegacyNewDecFromInt(quote).Mul(factor.Sub(math.LegacyOneDec())).TruncateInt()
		mint = sdk.NewCoin(pair.QuoteDenom, added)
	case factor.LT(math.LegacyOneDec()):
		added := math.LegacyNewDecFromInt(base).Quo(factor).Sub(math.LegacyNewDecFromInt(base)).TruncateInt()
		mint = sdk.NewCoin(pair.BaseDenom, added)
	default:
		return nil
	}
	if !mint.IsPositive() {
		return nil
	}
	return v.mintTo(ctx, PoolAddress(pair), sdk.NewCoins(mint))
}
