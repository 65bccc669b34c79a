package keeper_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/pushchain/push-dca-node/x/dca/types"
)

func TestGenesis_RoundTrip(t *testing.T) {
	f := SetupTest(t)
	f.expectPrice()

	var deferred bool
	f.mockVenue.EXPECT().Swap(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req types.SwapRequest) (types.VenueResponse, error) {
			if deferred {
				return types.VenueResponse{Deferred: true}, nil
			}
			_, err := f.fill(ctx, req.Sender, req.Offer)
			return types.VenueResponse{}, err
		}).AnyTimes()

	running := f.createVault(t, f.createMsg())
	plus := f.createVault(t, f.dcaPlusMsg(t, "1"))
	deferred = true
	waiting := f.createVault(t, f.createMsg())

	exported, err := f.k.ExportGenesis(f.ctx)
	require.NoError(t, err)
	require.NoError(t, exported.Validate())
	require.Len(t, exported.Vaults, 3)
	require.Len(t, exported.Triggers, 3)
	require.Len(t, exported.SwapAdjustments, 1)
	require.Len(t, exported.InFlight, 1)
	require.Equal(t, waiting, exported.InFlight[0].VaultId)

	g := SetupTest(t)
	g.expectPrice()
	g.expectSwaps()
	require.NoError(t, g.k.InitGenesis(g.ctx, exported))

	reexported, err := g.k.ExportGenesis(g.ctx)
	require.NoError(t, err)
	require.Equal(t, len(exported.Events), len(reexported.Events))
	require.Equal(t, exported.Vaults[1].DcaPlusConfig.EscrowedBalance, reexported.Vaults[1].DcaPlusConfig.EscrowedBalance)

	due, err := g.k.DueBefore(g.ctx, genesisTime.Add(24*time.Hour), 0)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint64{running, plus}, due)

	// restored sequences continue after the imported ids
	next := g.createVault(t, g.createMsg())
	require.Equal(t, waiting+1, next)
	events := g.events(t, next)
	require.Greater(t, events[0].Id, exported.Events[len(exported.Events)-1].Id)

	_, err = g.k.ExecuteTrigger(g.ctx, waiting)
	require.ErrorIs(t, err, types.ErrExecutionInProgress)
}

func TestGenesis_Validate(t *testing.T) {
	f := SetupTest(t)

	gs := types.DefaultGenesis()
	gs.Vaults = []types.Vault{f.rawVault(f.addrs[2], types.VaultStatusCancelled)}
	gs.Triggers = []types.Trigger{timeTrigger(0, genesisTime)}
	require.Error(t, f.k.InitGenesis(f.ctx, gs))

	gs.Triggers = []types.Trigger{timeTrigger(9, genesisTime)}
	require.Error(t, f.k.InitGenesis(f.ctx, gs))
}
