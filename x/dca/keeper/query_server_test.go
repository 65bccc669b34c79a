package keeper_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pushchain/push-dca-node/x/dca/types"
)

func requireCode(t *testing.T, err error, code codes.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, status.Code(err))
}

func TestQueryVaults(t *testing.T) {
	f := SetupTest(t)
	f.expectPrice()
	f.expectSwaps()

	id := f.createVault(t, f.createMsg())

	t.Run("pass; vault with trigger", func(t *testing.T) {
		resp, err := f.queryServer.Vault(f.ctx, &types.QueryVaultRequest{VaultId: id})
		require.NoError(t, err)
		require.Equal(t, id, resp.Vault.Id)
		require.NotNil(t, resp.Trigger)
		target, ok := resp.Trigger.TargetTime()
		require.True(t, ok)
		require.Equal(t, genesisTime.Add(24*time.Hour), target)
	})

	t.Run("fail; missing vault", func(t *testing.T) {
		_, err := f.queryServer.Vault(f.ctx, &types.QueryVaultRequest{VaultId: id + 1})
		requireCode(t, err, codes.NotFound)

		_, err = f.queryServer.Vault(f.ctx, nil)
		requireCode(t, err, codes.InvalidArgument)
	})

	t.Run("pass; vaults by owner", func(t *testing.T) {
		resp, err := f.queryServer.VaultsByOwner(f.ctx, &types.QueryVaultsByOwnerRequest{Owner: f.addrs[2].String()})
		require.NoError(t, err)
		require.Len(t, resp.Vaults, 1)

		_, err = f.queryServer.VaultsByOwner(f.ctx, &types.QueryVaultsByOwnerRequest{Owner: "nope"})
		requireCode(t, err, codes.InvalidArgument)

		_, err = f.queryServer.VaultsByOwner(f.ctx, &types.QueryVaultsByOwnerRequest{
			Owner: f.addrs[2].String(),
			Page:  types.PageRequest{Limit: types.MaxPageLimit + 1},
		})
		requireCode(t, err, codes.InvalidArgument)
	})

	t.Run("pass; events", func(t *testing.T) {
		resp, err := f.queryServer.EventsByResource(f.ctx, &types.QueryEventsByResourceRequest{ResourceId: id})
		require.NoError(t, err)
		require.Len(t, resp.Events, 5)

		event, err := f.queryServer.Event(f.ctx, &types.QueryEventRequest{ResourceId: id, EventId: resp.Events[4].Id})
		require.NoError(t, err)
		require.Equal(t, "swap_executed", event.Event.Data.EventType())

		_, err = f.queryServer.Event(f.ctx, &types.QueryEventRequest{ResourceId: id + 1, EventId: resp.Events[4].Id})
		requireCode(t, err, codes.NotFound)
	})

	t.Run("fail; order without vault", func(t *testing.T) {
		_, err := f.queryServer.TriggerIdByOrderIdx(f.ctx, &types.QueryTriggerIdByOrderIdxRequest{OrderIdx: 404})
		requireCode(t, err, codes.NotFound)
	})

	t.Run("fail; performance of a plain vault", func(t *testing.T) {
		_, err := f.queryServer.DcaPlusPerformance(f.ctx, &types.QueryDcaPlusPerformanceRequest{VaultId: id})
		requireCode(t, err, codes.InvalidArgument)
	})

	t.Run("pass; params", func(t *testing.T) {
		resp, err := f.queryServer.Params(f.ctx, &types.QueryParamsRequest{})
		require.NoError(t, err)
		require.Equal(t, f.addrs[0].String(), resp.Params.Admin)
	})
}

func TestQueryInFlightExecutions(t *testing.T) {
	f := SetupTest(t)
	f.expectPrice()
	f.mockVenue.EXPECT().Swap(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, types.SwapRequest) (types.VenueResponse, error) {
			return types.VenueResponse{Deferred: true}, nil
		})

	id := f.createVault(t, f.createMsg())

	resp, err := f.queryServer.InFlightExecutions(f.ctx, &types.QueryInFlightExecutionsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Executions, 1)
	require.Equal(t, id, resp.Executions[0].VaultId)
	require.Equal(t, types.KindSwap, resp.Executions[0].Kind)
	require.Equal(t, genesisTime, resp.Executions[0].CreatedAt)
}
