package simulation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"

	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdkaddress "github.com/cosmos/cosmos-sdk/codec/address"
	"github.com/cosmos/cosmos-sdk/runtime"
	sdk "github.com/cosmos/cosmos-sdk/types"
	moduletestutil "github.com/cosmos/cosmos-sdk/types/module/testutil"
	authkeeper "github.com/cosmos/cosmos-sdk/x/auth/keeper"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	bankkeeper "github.com/cosmos/cosmos-sdk/x/bank/keeper"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
	govtypes "github.com/cosmos/cosmos-sdk/x/gov/types"
	minttypes "github.com/cosmos/cosmos-sdk/x/mint/types"

	"github.com/pushchain/push-dca-node/x/dca/keeper"
	module "github.com/pushchain/push-dca-node/x/dca/module"
	"github.com/pushchain/push-dca-node/x/dca/types"
)

var maccPerms = map[string][]string{
	authtypes.FeeCollectorName: nil,
	minttypes.ModuleName:       {authtypes.Minter},
	VenueModuleName:            {authtypes.Minter},
	govtypes.ModuleName:        {authtypes.Burner},
}

// ChainConfig seeds a simulation chain.
type ChainConfig struct {
	GenesisTime time.Time
	// AutoExecute lets the module sweep due triggers in EndBlock. Leave it
	// off when a keeper bot drives execution.
	AutoExecute bool
	Params      *types.Params
}

// Chain is a single-node in-process chain running the dca module against
// real auth and bank keepers over an IAVL commit multistore. Each block is
// a cache over the last commit; each delivered message runs in its own
// branch of the block and is written only when it succeeds.
type Chain struct {
	mu sync.Mutex

	logger log.Logger
	cms    storetypes.CommitMultiStore
	block  storetypes.CacheMultiStore
	header cmtproto.Header
	ctx    sdk.Context

	AccountKeeper authkeeper.AccountKeeper
	BankKeeper    bankkeeper.BaseKeeper
	Keeper        keeper.Keeper
	Venue         *Venue
	Staking       *StakingKeeper
	Transfer      *TransferKeeper

	router  keeper.MsgRouter
	queries types.QueryServer
	module  *module.AppModule

	Authority string
	Admin     sdk.AccAddress
	Executor  sdk.AccAddress
}

// SimAccount derives a deterministic account address from name.
func SimAccount(name string) sdk.AccAddress {
	return authtypes.NewModuleAddress("simulation/" + name)
}

func NewChain(logger log.Logger, cfg ChainConfig) (*Chain, error) {
	if cfg.GenesisTime.IsZero() {
		cfg.GenesisTime = time.Now().UTC().Truncate(time.Second)
	}

	db := dbm.NewMemDB()
	cms := store.NewCommitMultiStore(db, logger, metrics.NewNoOpMetrics())
	keys := storetypes.NewKVStoreKeys(authtypes.StoreKey, banktypes.StoreKey, types.StoreKey, VenueModuleName)
	for _, key := range keys {
		cms.MountStoreWithDB(key, storetypes.StoreTypeIAVL, nil)
	}
	if err := cms.LoadLatestVersion(); err != nil {
		return nil, fmt.Errorf("failed to load multistore: %w", err)
	}

	encCfg := moduletestutil.MakeTestEncodingConfig()
	authtypes.RegisterInterfaces(encCfg.InterfaceRegistry)
	banktypes.RegisterInterfaces(encCfg.InterfaceRegistry)

	c := &Chain{
		logger:    logger,
		cms:       cms,
		header:    cmtproto.Header{ChainID: "dca-sim", Height: 1, Time: cfg.GenesisTime},
		Authority: authtypes.NewModuleAddress(govtypes.ModuleName).String(),
		Admin:     SimAccount("admin"),
		Executor:  SimAccount("executor"),
	}

	c.AccountKeeper = authkeeper.NewAccountKeeper(
		encCfg.Codec, runtime.NewKVStoreService(keys[authtypes.StoreKey]),
		authtypes.ProtoBaseAccount,
		maccPerms,
		sdkaddress.NewBech32Codec(sdk.Bech32MainPrefix), sdk.Bech32MainPrefix,
		c.Authority,
	)
	c.BankKeeper = bankkeeper.NewBaseKeeper(
		encCfg.Codec, runtime.NewKVStoreService(keys[banktypes.StoreKey]),
		c.AccountKeeper,
		nil,
		c.Authority, logger,
	)

	c.Venue = NewVenue(runtime.NewKVStoreService(keys[VenueModuleName]), c.BankKeeper)
	c.Staking = NewStakingKeeper(c.BankKeeper)
	c.Transfer = NewTransferKeeper(c.BankKeeper)

	c.Keeper = keeper.NewKeeper(
		runtime.NewKVStoreService(keys[types.StoreKey]), logger, c.Authority,
		c.BankKeeper, c.Staking, c.Transfer, c.Venue,
	)
	c.Venue.SetReplier(c.Keeper)
	c.router = keeper.NewMsgRouter(c.Keeper)
	c.queries = keeper.NewQuerier(c.Keeper)
	c.module = module.NewAppModule(c.Keeper)

	c.beginBlock()

	genesis := types.DefaultGenesis()
	if cfg.Params != nil {
		genesis.Params = *cfg.Params
	} else {
		genesis.Params.Admin = c.Admin.String()
		genesis.Params.Executors = []string{c.Executor.String()}
		genesis.Params.AutoExecute = cfg.AutoExecute
	}
	if err := genesis.Validate(); err != nil {
		return nil, err
	}
	if err := c.Keeper.InitGenesis(c.ctx, genesis); err != nil {
		return nil, fmt.Errorf("failed to init %s genesis: %w", types.ModuleName, err)
	}
	if err := c.commit(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Chain) beginBlock() {
	c.block = c.cms.CacheMultiStore()
	c.ctx = sdk.NewContext(c.block, c.header, false, c.logger)
}

func (c *Chain) commit() error {
	c.block.Write()
	c.cms.Commit()
	c.header.Height++
	c.beginBlock()
	return nil
}

// Context is the current block's context. Writes through it land in the
// next commit.
func (c *Chain) Context() sdk.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx
}

func (c *Chain) BlockTime() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx.BlockTime()
}

func (c *Chain) Height() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx.BlockHeight()
}

// Fund mints coins to addr.
func (c *Chain) Fund(addr sdk.AccAddress, coins ...sdk.Coin) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	amt := sdk.NewCoins(coins...)
	if err := c.BankKeeper.MintCoins(c.ctx, minttypes.ModuleName, amt); err != nil {
		return err
	}
	return c.BankKeeper.SendCoinsFromModuleToAccount(c.ctx, minttypes.ModuleName, addr, amt)
}

func (c *Chain) Balance(addr sdk.AccAddress, denom string) math.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.BankKeeper.GetBalance(c.ctx, addr, denom).Amount
}

// CreatePool opens a venue pool for pair.
func (c *Chain) CreatePool(pair types.Pair, base, quote math.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Venue.CreatePool(c.ctx, pair, base, quote)
}

// MovePrice scales pair's quote per base price by factor.
func (c *Chain) MovePrice(pair types.Pair, factor math.LegacyDec) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Venue.MovePrice(c.ctx, pair, factor)
}

// DeliverMsg runs msg in its own branch of the block.
func (c *Chain) DeliverMsg(msg types.Msg) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deliver(msg)
}

func (c *Chain) deliver(msg types.Msg) (any, error) {
	cacheCtx, write := c.ctx.CacheContext()
	resp, err := c.router.Handle(cacheCtx, msg)
	if err != nil {
		return nil, err
	}
	write()
	return resp, nil
}

func (c *Chain) CreateVault(msg *types.MsgCreateVault) (uint64, error) {
	resp, err := c.DeliverMsg(msg)
	if err != nil {
		return 0, err
	}
	return resp.(*types.MsgCreateVaultResponse).VaultId, nil
}

// ExecuteDueTriggers sweeps due vaults as the chain's executor.
func (c *Chain) ExecuteDueTriggers(_ context.Context, limit uint32) (types.SweepReport, error) {
	resp, err := c.DeliverMsg(&types.MsgExecuteDueTriggers{Sender: c.Executor.String(), Limit: limit})
	if err != nil {
		return types.SweepReport{}, err
	}
	return resp.(*types.MsgExecuteDueTriggersResponse).Report, nil
}

// EndBlock settles deferred swaps, hands filled venue orders to their
// vaults and runs the module's end blocker.
func (c *Chain) EndBlock() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.Venue.Settle(c.ctx); err != nil {
		return err
	}

	filled, err := c.Venue.MatchOrders(c.ctx)
	if err != nil {
		return err
	}
	for _, idx := range filled {
		if _, err := c.deliver(&types.MsgHandleOrderFilled{Sender: c.Executor.String(), OrderIdx: idx}); err != nil {
			c.logger.Error("filled order not handled", "order_idx", idx, "error", err.Error())
		}
	}

	return c.module.EndBlock(c.ctx)
}

// Commit persists the block and opens the next one at the same time.
func (c *Chain) Commit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commit()
}

// AdvanceTime ends and commits the current block and opens the next one d
// later.
func (c *Chain) AdvanceTime(d time.Duration) error {
	if err := c.EndBlock(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.header.Time = c.header.Time.Add(d)
	return c.commit()
}

// LastCommitID is the hash and version of the last committed block.
func (c *Chain) LastCommitID() storetypes.CommitID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cms.LastCommitID()
}

// query runs fn against a discarded branch of the block.
func (c *Chain) query(fn func(ctx sdk.Context) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cacheCtx, _ := c.ctx.CacheContext()
	return fn(cacheCtx)
}

func (c *Chain) EventsAfter(_ context.Context, cursor *uint64, limit uint32) ([]types.Event, error) {
	var events []types.Event
	err := c.query(func(ctx sdk.Context) (err error) {
		events, err = c.Keeper.EventsAfter(ctx, cursor, limit)
		return err
	})
	return events, err
}

func (c *Chain) Vault(_ context.Context, id uint64) (*types.QueryVaultResponse, error) {
	var resp *types.QueryVaultResponse
	err := c.query(func(ctx sdk.Context) (err error) {
		resp, err = c.queries.Vault(ctx, &types.QueryVaultRequest{VaultId: id})
		return err
	})
	return resp, err
}

func (c *Chain) VaultEvents(_ context.Context, id uint64, page types.PageRequest) ([]types.Event, error) {
	var resp *types.QueryEventsByResourceResponse
	err := c.query(func(ctx sdk.Context) (err error) {
		resp, err = c.queries.EventsByResource(ctx, &types.QueryEventsByResourceRequest{ResourceId: id, Page: page})
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp.Events, nil
}

func (c *Chain) Performance(_ context.Context, id uint64) (*types.QueryDcaPlusPerformanceResponse, error) {
	var resp *types.QueryDcaPlusPerformanceResponse
	err := c.query(func(ctx sdk.Context) (err error) {
		resp, err = c.queries.DcaPlusPerformance(ctx, &types.QueryDcaPlusPerformanceRequest{VaultId: id})
		return err
	})
	return resp, err
}

func (c *Chain) InFlightExecutions(_ context.Context) ([]types.ExecutionCache, error) {
	var resp *types.QueryInFlightExecutionsResponse
	err := c.query(func(ctx sdk.Context) (err error) {
		resp, err = c.queries.InFlightExecutions(ctx, &types.QueryInFlightExecutionsRequest{})
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp.Executions, nil
}
