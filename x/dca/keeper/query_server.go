package keeper

import (
	"context"
	"errors"
	"math"
	"time"

	"cosmossdk.io/collections"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pushchain/push-dca-node/x/dca/types"
)

var _ types.QueryServer = Querier{}

type Querier struct {
	Keeper
}

func NewQuerier(keeper Keeper) Querier {
	return Querier{Keeper: keeper}
}

// queryError maps module errors onto grpc codes.
func queryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, types.ErrVaultNotFound),
		errors.Is(err, types.ErrEventNotFound),
		errors.Is(err, types.ErrTriggerNotFound),
		errors.Is(err, collections.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, types.ErrInvalidPageSize),
		errors.Is(err, types.ErrInvalidRequest),
		errors.Is(err, types.ErrNotDcaPlusVault):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// ---------------- Params ------------------
func (k Querier) Params(c context.Context, req *types.QueryParamsRequest) (*types.QueryParamsResponse, error) {
	ctx := sdk.UnwrapSDKContext(c)

	p, err := k.Keeper.Params.Get(ctx)
	if err != nil {
		return nil, queryError(err)
	}
	return &types.QueryParamsResponse{Params: p}, nil
}

// ---------------- Vault ------------------
func (k Querier) Vault(goCtx context.Context, req *types.QueryVaultRequest) (*types.QueryVaultResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "empty request")
	}
	ctx := sdk.UnwrapSDKContext(goCtx)

	vault, err := k.GetVault(ctx, req.VaultId)
	if err != nil {
		return nil, queryError(err)
	}
	resp := &types.QueryVaultResponse{Vault: vault}

	trigger, found, err := k.GetTrigger(ctx, req.VaultId)
	if err != nil {
		return nil, queryError(err)
	}
	if found {
		resp.Trigger = &trigger
	}
	return resp, nil
}

func (k Querier) VaultsByOwner(goCtx context.Context, req *types.QueryVaultsByOwnerRequest) (*types.QueryVaultsByOwnerResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "empty request")
	}
	if _, err := sdk.AccAddressFromBech32(req.Owner); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid owner address: %s", err)
	}

	vaults, err := k.ListVaultsByOwner(goCtx, req.Owner, req.Status, req.Page)
	if err != nil {
		return nil, queryError(err)
	}
	return &types.QueryVaultsByOwnerResponse{Vaults: vaults}, nil
}

// ---------------- Triggers ------------------
func (k Querier) TriggerIdByOrderIdx(goCtx context.Context, req *types.QueryTriggerIdByOrderIdxRequest) (*types.QueryTriggerIdByOrderIdxResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "empty request")
	}

	vaultID, found, err := k.VaultByOrderIdx(goCtx, req.OrderIdx)
	if err != nil {
		return nil, queryError(err)
	}
	if !found {
		return nil, status.Errorf(codes.NotFound, "no trigger for order %d", req.OrderIdx)
	}
	return &types.QueryTriggerIdByOrderIdxResponse{TriggerId: vaultID}, nil
}

// ---------------- Events ------------------
func (k Querier) EventsByResource(goCtx context.Context, req *types.QueryEventsByResourceRequest) (*types.QueryEventsByResourceResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "empty request")
	}

	events, err := k.ListEventsByResource(goCtx, req.ResourceId, req.Page)
	if err != nil {
		return nil, queryError(err)
	}
	return &types.QueryEventsByResourceResponse{Events: events}, nil
}

func (k Querier) Event(goCtx context.Context, req *types.QueryEventRequest) (*types.QueryEventResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "empty request")
	}

	event, err := k.GetEvent(goCtx, req.ResourceId, req.EventId)
	if err != nil {
		return nil, queryError(err)
	}
	return &types.QueryEventResponse{Event: event}, nil
}

// ---------------- DCA+ ------------------
func (k Querier) DcaPlusPerformance(goCtx context.Context, req *types.QueryDcaPlusPerformanceRequest) (*types.QueryDcaPlusPerformanceResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "empty request")
	}
	ctx := sdk.UnwrapSDKContext(goCtx)

	vault, err := k.GetVault(ctx, req.VaultId)
	if err != nil {
		return nil, queryError(err)
	}
	if !vault.IsDcaPlus() {
		return nil, status.Errorf(codes.InvalidArgument, "vault %d is not a dca plus vault", req.VaultId)
	}

	price, err := k.spotPrice(ctx, vault)
	if err != nil {
		return nil, status.Errorf(codes.Unavailable, "spot price: %s", err)
	}
	return &types.QueryDcaPlusPerformanceResponse{
		Performance: types.EvaluatePerformance(vault, price),
		Price:       price,
	}, nil
}

func (k Querier) ClaimEscrowTasks(goCtx context.Context, req *types.QueryClaimEscrowTasksRequest) (*types.QueryClaimEscrowTasksResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "empty request")
	}
	dueBefore := req.DueBefore
	if dueBefore.IsZero() {
		dueBefore = sdk.UnwrapSDKContext(goCtx).BlockTime()
	}

	rng := new(collections.Range[collections.Pair[time.Time, uint64]]).
		EndInclusive(collections.Join(dueBefore, uint64(math.MaxUint64)))

	tasks := make([]types.ClaimEscrowTask, 0)
	err := k.Keeper.ClaimEscrowTasks.Walk(goCtx, rng, func(key collections.Pair[time.Time, uint64]) (bool, error) {
		tasks = append(tasks, types.ClaimEscrowTask{DueTime: key.K1(), VaultId: key.K2()})
		return false, nil
	})
	if err != nil {
		return nil, queryError(err)
	}
	return &types.QueryClaimEscrowTasksResponse{Tasks: tasks}, nil
}

// ---------------- Continuations ------------------
func (k Querier) InFlightExecutions(goCtx context.Context, req *types.QueryInFlightExecutionsRequest) (*types.QueryInFlightExecutionsResponse, error) {
	entries, err := k.AllExecutions(goCtx)
	if err != nil {
		return nil, queryError(err)
	}
	return &types.QueryInFlightExecutionsResponse{Executions: entries}, nil
}
