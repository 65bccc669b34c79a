package main

import (
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/pushchain/push-dca-node/keeperbot/config"
	"github.com/pushchain/push-dca-node/keeperbot/logger"
	"github.com/pushchain/push-dca-node/keeperbot/metrics"
	"github.com/pushchain/push-dca-node/keeperbot/store"
	"github.com/pushchain/push-dca-node/keeperbot/sweeper"
	"github.com/pushchain/push-dca-node/simulation"
)

// bot is a keeper wired to an in-process simulated chain.
type bot struct {
	cfg      config.Config
	logger   zerolog.Logger
	chain    *simulation.Chain
	scenario *simulation.Scenario
	db       *store.DB
	store    *store.Store
	metrics  *metrics.Metrics
	sweeper  *sweeper.Sweeper
}

func newBot(home string, cfg config.Config, log zerolog.Logger) (*bot, error) {
	chain, err := simulation.NewChain(logger.ChainLogger(log), simulation.ChainConfig{
		GenesisTime: time.Now().UTC().Truncate(time.Second),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to start chain")
	}
	chain.Venue.DeferSwaps = cfg.Simulation.DeferSwaps

	scenario, err := simulation.NewScenario(chain, simulation.ScenarioConfig{
		Seed:       cfg.Simulation.Seed,
		Vaults:     cfg.Simulation.Vaults,
		Step:       cfg.Simulation.Step(),
		Volatility: cfg.Simulation.Volatility,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to seed scenario")
	}

	db, err := store.Open(filepath.Join(home, "data"), cfg.DBFile)
	if err != nil {
		return nil, err
	}
	st := store.NewStore(db, log)
	m := metrics.New()

	b := &bot{
		cfg:      cfg,
		logger:   log,
		chain:    chain,
		scenario: scenario,
		db:       db,
		store:    st,
		metrics:  m,
	}
	b.sweeper = sweeper.New(sweeper.Config{
		Chain:      chain,
		Store:      st,
		Metrics:    m,
		Interval:   cfg.SweepInterval(),
		Limit:      cfg.SweepLimit,
		EventBatch: cfg.EventBatchSize,
		StaleAfter: cfg.StaleCacheAfter(),
		Retention:  cfg.SweepRetention(),
		Logger:     log,
	})

	log.Info().
		Int64("seed", cfg.Simulation.Seed).
		Int("vaults", len(scenario.VaultIDs)).
		Time("genesis", chain.BlockTime()).
		Bool("defer_swaps", cfg.Simulation.DeferSwaps).
		Msg("simulation ready")
	return b, nil
}

func (b *bot) Close() error {
	return b.db.Close()
}
