package keeper_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"

	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	sdkaddress "github.com/cosmos/cosmos-sdk/codec/address"
	"github.com/cosmos/cosmos-sdk/runtime"
	"github.com/cosmos/cosmos-sdk/testutil/integration"
	simtestutil "github.com/cosmos/cosmos-sdk/testutil/sims"
	sdk "github.com/cosmos/cosmos-sdk/types"
	moduletestutil "github.com/cosmos/cosmos-sdk/types/module/testutil"
	authkeeper "github.com/cosmos/cosmos-sdk/x/auth/keeper"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	bankkeeper "github.com/cosmos/cosmos-sdk/x/bank/keeper"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
	govtypes "github.com/cosmos/cosmos-sdk/x/gov/types"
	minttypes "github.com/cosmos/cosmos-sdk/x/mint/types"

	"github.com/pushchain/push-dca-node/x/dca/keeper"
	"github.com/pushchain/push-dca-node/x/dca/mocks"
	module "github.com/pushchain/push-dca-node/x/dca/module"
	"github.com/pushchain/push-dca-node/x/dca/types"
)

const (
	baseDenom  = "uatom"
	quoteDenom = "uusdc"
)

var (
	maccPerms = map[string][]string{
		authtypes.FeeCollectorName: nil,
		minttypes.ModuleName:       {authtypes.Minter},
		govtypes.ModuleName:        {authtypes.Burner},
	}

	genesisTime = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	testPair = types.Pair{Address: "pool-atom-usdc", BaseDenom: baseDenom, QuoteDenom: quoteDenom}
)

type testFixture struct {
	ctx         sdk.Context
	k           keeper.Keeper
	msgServer   types.MsgServer
	queryServer types.QueryServer
	appModule   *module.AppModule

	accountkeeper authkeeper.AccountKeeper
	bankkeeper    bankkeeper.BaseKeeper

	addrs      []sdk.AccAddress
	govModAddr string
	pool       sdk.AccAddress

	// price is quote per base; the venue fills enter swaps at this rate
	price math.LegacyDec

	ctrl               *gomock.Controller
	mockVenue          *mocks.MockExchangeVenue
	mockStakingKeeper  *mocks.MockStakingKeeper
	mockTransferKeeper *mocks.MockTransferKeeper
}

func SetupTest(t *testing.T) *testFixture {
	t.Helper()
	f := new(testFixture)

	f.ctrl = gomock.NewController(t)
	t.Cleanup(f.ctrl.Finish)

	f.mockVenue = mocks.NewMockExchangeVenue(f.ctrl)
	f.mockStakingKeeper = mocks.NewMockStakingKeeper(f.ctrl)
	f.mockTransferKeeper = mocks.NewMockTransferKeeper(f.ctrl)

	// Base setup
	logger := log.NewTestLogger(t)
	encCfg := moduletestutil.MakeTestEncodingConfig()
	authtypes.RegisterInterfaces(encCfg.InterfaceRegistry)
	banktypes.RegisterInterfaces(encCfg.InterfaceRegistry)

	f.govModAddr = authtypes.NewModuleAddress(govtypes.ModuleName).String()
	f.addrs = simtestutil.CreateIncrementalAccounts(5)
	f.pool = f.addrs[4]
	f.price = math.LegacyNewDec(10)

	keys := storetypes.NewKVStoreKeys(authtypes.StoreKey, banktypes.StoreKey, types.StoreKey)
	f.ctx = sdk.NewContext(integration.CreateMultiStore(keys, logger), cmtproto.Header{Height: 1, Time: genesisTime}, false, logger)

	// Auth Keeper.
	f.accountkeeper = authkeeper.NewAccountKeeper(
		encCfg.Codec, runtime.NewKVStoreService(keys[authtypes.StoreKey]),
		authtypes.ProtoBaseAccount,
		maccPerms,
		sdkaddress.NewBech32Codec(sdk.Bech32MainPrefix), sdk.Bech32MainPrefix,
		f.govModAddr,
	)

	// Bank Keeper.
	f.bankkeeper = bankkeeper.NewBaseKeeper(
		encCfg.Codec, runtime.NewKVStoreService(keys[banktypes.StoreKey]),
		f.accountkeeper,
		nil,
		f.govModAddr, logger,
	)

	// Setup Keeper.
	f.k = keeper.NewKeeper(
		runtime.NewKVStoreService(keys[types.StoreKey]), logger, f.govModAddr,
		f.bankkeeper, f.mockStakingKeeper, f.mockTransferKeeper, f.mockVenue,
	)
	f.msgServer = keeper.NewMsgServerImpl(f.k)
	f.queryServer = keeper.NewQuerier(f.k)
	f.appModule = module.NewAppModule(f.k)

	params := types.DefaultParams()
	params.Admin = f.addrs[0].String()
	params.Executors = []string{f.addrs[1].String()}
	require.NoError(t, f.k.Params.Set(f.ctx, params))

	f.fund(t, f.addrs[2], sdk.NewInt64Coin(quoteDenom, 10_000_000), sdk.NewInt64Coin(baseDenom, 10_000_000))
	f.fund(t, f.pool, sdk.NewInt64Coin(quoteDenom, 1_000_000_000), sdk.NewInt64Coin(baseDenom, 1_000_000_000))

	return f
}

func (f *testFixture) fund(t *testing.T, addr sdk.AccAddress, coins ...sdk.Coin) {
	t.Helper()
	amt := sdk.NewCoins(coins...)
	require.NoError(t, f.bankkeeper.MintCoins(f.ctx, minttypes.ModuleName, amt))
	require.NoError(t, f.bankkeeper.SendCoinsFromModuleToAccount(f.ctx, minttypes.ModuleName, addr, amt))
}

func (f *testFixture) setParams(t *testing.T, mutate func(*types.Params)) {
	t.Helper()
	params, err := f.k.Params.Get(f.ctx)
	require.NoError(t, err)
	mutate(&params)
	require.NoError(t, f.k.Params.Set(f.ctx, params))
}

func (f *testFixture) advance(d time.Duration) {
	f.ctx = f.ctx.WithBlockTime(f.ctx.BlockTime().Add(d)).WithBlockHeight(f.ctx.BlockHeight() + 1)
}

func (f *testFixture) balance(addr sdk.AccAddress, denom string) math.Int {
	return f.bankkeeper.GetBalance(f.ctx, addr, denom).Amount
}

// expectPrice answers spot price queries with f.price, or its inverse when
// the vault sells the base denom.
func (f *testFixture) expectPrice() {
	f.mockVenue.EXPECT().SpotPrice(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, pair types.Pair, swapDenom string) (math.LegacyDec, error) {
			if swapDenom == pair.QuoteDenom {
				return f.price, nil
			}
			return math.LegacyOneDec().Quo(f.price), nil
		}).AnyTimes()
}

// fill settles a swap against the pool at f.price.
func (f *testFixture) fill(ctx context.Context, sender string, offer sdk.Coin) (sdk.Coin, error) {
	addr := sdk.MustAccAddressFromBech32(sender)
	var out sdk.Coin
	if offer.Denom == quoteDenom {
		out = sdk.NewCoin(baseDenom, math.LegacyNewDecFromInt(offer.Amount).Quo(f.price).TruncateInt())
	} else {
		out = sdk.NewCoin(quoteDenom, math.LegacyNewDecFromInt(offer.Amount).Mul(f.price).TruncateInt())
	}
	if err := f.bankkeeper.SendCoins(ctx, addr, f.pool, sdk.NewCoins(offer)); err != nil {
		return sdk.Coin{}, err
	}
	return out, f.bankkeeper.SendCoins(ctx, f.pool, addr, sdk.NewCoins(out))
}

// expectSwaps fills every swap synchronously.
func (f *testFixture) expectSwaps() {
	f.mockVenue.EXPECT().Swap(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req types.SwapRequest) (types.VenueResponse, error) {
			_, err := f.fill(ctx, req.Sender, req.Offer)
			return types.VenueResponse{}, err
		}).AnyTimes()
}

func (f *testFixture) createMsg() *types.MsgCreateVault {
	return &types.MsgCreateVault{
		Owner:        f.addrs[2].String(),
		Label:        "weekly atom",
		Pair:         testPair,
		Deposit:      sdk.NewInt64Coin(quoteDenom, 1_000_000),
		SwapAmount:   math.NewInt(100_000),
		TimeInterval: types.IntervalDaily,
	}
}

func (f *testFixture) createVault(t *testing.T, msg *types.MsgCreateVault) uint64 {
	t.Helper()
	resp, err := f.msgServer.CreateVault(f.ctx, msg)
	require.NoError(t, err)
	return resp.VaultId
}

func (f *testFixture) vault(t *testing.T, id uint64) types.Vault {
	t.Helper()
	v, err := f.k.GetVault(f.ctx, id)
	require.NoError(t, err)
	return v
}

func (f *testFixture) events(t *testing.T, id uint64) []types.Event {
	t.Helper()
	events, err := f.k.ListEventsByResource(f.ctx, id, types.PageRequest{Limit: 1000})
	require.NoError(t, err)
	return events
}

func eventTypes(events []types.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Data.EventType()
	}
	return out
}

func (f *testFixture) targetTime(t *testing.T, id uint64) time.Time {
	t.Helper()
	trigger, found, err := f.k.GetTrigger(f.ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	target, ok := trigger.TargetTime()
	require.True(t, ok)
	return target
}

func TestSetupTest_Stores(t *testing.T) {
	f := SetupTest(t)

	require.NotNil(t, f.accountkeeper.GetAccount(f.ctx, f.addrs[2]))
	require.Equal(t, "10000000", f.balance(f.addrs[2], quoteDenom).String())
	require.Equal(t, "1000000000", f.balance(f.pool, baseDenom).String())

	params, err := f.k.Params.Get(f.ctx)
	require.NoError(t, err)
	require.Equal(t, f.addrs[0].String(), params.Admin)
}
