package keeper

import (
	"fmt"
	"time"

	"cosmossdk.io/collections"
	storetypes "cosmossdk.io/core/store"
	"cosmossdk.io/log"
	"cosmossdk.io/math"

	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	govtypes "github.com/cosmos/cosmos-sdk/x/gov/types"

	"github.com/pushchain/push-dca-node/x/dca/types"
)

type Keeper struct {
	logger        log.Logger
	schemaBuilder *collections.SchemaBuilder
	Schema        collections.Schema

	// Module State
	Params        collections.Item[types.Params]                       // module params
	Vaults        collections.Map[uint64, types.Vault]                 // vault id → vault
	VaultSequence collections.Sequence                                 // next vault id
	VaultsByOwner collections.KeySet[collections.Pair[string, uint64]] // (owner, vault id)

	// Trigger index
	Triggers        collections.Map[uint64, types.Trigger]                  // vault id → trigger
	TriggersByTime  collections.KeySet[collections.Pair[time.Time, uint64]] // (target time, vault id)
	TriggersByOrder collections.Map[uint64, uint64]                         // order idx → vault id

	// Event log
	Events           collections.Map[uint64, types.Event]                 // event id → event
	EventsByResource collections.KeySet[collections.Pair[uint64, uint64]] // (vault id, event id)
	EventSequence    collections.Sequence                                 // next event id

	// Swap adjustment model
	SwapAdjustments      collections.Map[uint32, math.LegacyDec] // model id → multiplier
	AdjustmentsUpdatedAt collections.Item[time.Time]

	// Continuations
	ExecutionCache collections.Map[uint64, types.ExecutionCache] // reply id → pending call
	InFlight       collections.Map[uint64, uint64]               // vault id → reply id
	ReplySequence  collections.Sequence

	// Escrow claims
	ClaimEscrowTasks collections.KeySet[collections.Pair[time.Time, uint64]] // (due time, vault id)

	// keepers
	bankKeeper     types.BankKeeper
	stakingKeeper  types.StakingKeeper
	transferKeeper types.TransferKeeper
	venue          types.ExchangeVenue

	authority string
}

// NewKeeper creates a new Keeper instance
func NewKeeper(
	storeService storetypes.KVStoreService,
	logger log.Logger,
	authority string,
	bankKeeper types.BankKeeper,
	stakingKeeper types.StakingKeeper,
	transferKeeper types.TransferKeeper,
	venue types.ExchangeVenue,
) Keeper {
	logger = logger.With(log.ModuleKey, "x/"+types.ModuleName)

	sb := collections.NewSchemaBuilder(storeService)

	if authority == "" {
		authority = authtypes.NewModuleAddress(govtypes.ModuleName).String()
	}

	timeVault := collections.PairKeyCodec(sdk.TimeKey, collections.Uint64Key)

	k := Keeper{
		logger:        logger,
		schemaBuilder: sb,

		Params:        collections.NewItem(sb, types.ParamsKey, types.ParamsName, types.JSONValue[types.Params]()),
		Vaults:        collections.NewMap(sb, types.VaultsKey, types.VaultsName, collections.Uint64Key, types.JSONValue[types.Vault]()),
		VaultSequence: collections.NewSequence(sb, types.VaultSequenceKey, types.VaultSequenceName),
		VaultsByOwner: collections.NewKeySet(sb, types.VaultsByOwnerKey, types.VaultsByOwnerName, collections.PairKeyCodec(collections.StringKey, collections.Uint64Key)),

		Triggers:        collections.NewMap(sb, types.TriggersKey, types.TriggersName, collections.Uint64Key, types.JSONValue[types.Trigger]()),
		TriggersByTime:  collections.NewKeySet(sb, types.TriggersByTimeKey, types.TriggersByTimeName, timeVault),
		TriggersByOrder: collections.NewMap(sb, types.TriggersByOrderKey, types.TriggersByOrderName, collections.Uint64Key, collections.Uint64Value),

		Events:           collections.NewMap(sb, types.EventsKey, types.EventsName, collections.Uint64Key, types.JSONValue[types.Event]()),
		EventsByResource: collections.NewKeySet(sb, types.EventsByResourceKey, types.EventsByResourceName, collections.PairKeyCodec(collections.Uint64Key, collections.Uint64Key)),
		EventSequence:    collections.NewSequence(sb, types.EventSequenceKey, types.EventSequenceName),

		SwapAdjustments:      collections.NewMap(sb, types.SwapAdjustmentsKey, types.SwapAdjustmentsName, collections.Uint32Key, types.JSONValue[math.LegacyDec]()),
		AdjustmentsUpdatedAt: collections.NewItem(sb, types.AdjustmentsUpdatedAtKey, types.AdjustmentsUpdatedAtName, types.JSONValue[time.Time]()),

		ExecutionCache: collections.NewMap(sb, types.ExecutionCacheKey, types.ExecutionCacheName, collections.Uint64Key, types.JSONValue[types.ExecutionCache]()),
		InFlight:       collections.NewMap(sb, types.InFlightKey, types.InFlightName, collections.Uint64Key, collections.Uint64Value),
		ReplySequence:  collections.NewSequence(sb, types.ReplySequenceKey, types.ReplySequenceName),

		ClaimEscrowTasks: collections.NewKeySet(sb, types.ClaimEscrowTasksKey, types.ClaimEscrowTasksName, timeVault),

		bankKeeper:     bankKeeper,
		stakingKeeper:  stakingKeeper,
		transferKeeper: transferKeeper,
		venue:          venue,
		authority:      authority,
	}

	schema, err := sb.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build %s schema: %s", types.ModuleName, err))
	}
	k.Schema = schema

	return k
}

func (k Keeper) Logger() log.Logger {
	return k.logger
}

func (k Keeper) SchemaBuilder() *collections.SchemaBuilder {
	return k.schemaBuilder
}

// GetAuthority returns the module's authority.
func (k Keeper) GetAuthority() string {
	return k.authority
}

// GetParams returns the current module params.
func (k Keeper) GetParams(ctx sdk.Context) (types.Params, error) {
	return k.Params.Get(ctx)
}
