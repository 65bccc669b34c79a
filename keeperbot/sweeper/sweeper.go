// Package sweeper drives execution of due vault triggers and mirrors what
// happened into the local store.
package sweeper

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/pushchain/push-dca-node/keeperbot/metrics"
	"github.com/pushchain/push-dca-node/keeperbot/store"
	"github.com/pushchain/push-dca-node/x/dca/types"
)

const (
	defaultInterval   = 10 * time.Second
	defaultEventBatch = 500
)

// Chain is the part of a dca chain the sweeper talks to.
type Chain interface {
	ExecuteDueTriggers(ctx context.Context, limit uint32) (types.SweepReport, error)
	EventsAfter(ctx context.Context, cursor *uint64, limit uint32) ([]types.Event, error)
	Vault(ctx context.Context, id uint64) (*types.QueryVaultResponse, error)
	Performance(ctx context.Context, id uint64) (*types.QueryDcaPlusPerformanceResponse, error)
	InFlightExecutions(ctx context.Context) ([]types.ExecutionCache, error)
	BlockTime() time.Time
}

type Config struct {
	Chain   Chain
	Store   *store.Store
	Metrics *metrics.Metrics // optional
	// Interval between sweeps, 10s when zero.
	Interval time.Duration
	// Limit caps the vaults executed per sweep; zero uses the chain default.
	Limit      uint32
	EventBatch uint32
	// StaleAfter flags in-flight executions older than this; zero disables
	// the check.
	StaleAfter time.Duration
	// Retention of sweep history in block time; zero keeps everything.
	Retention time.Duration
	Logger    zerolog.Logger
}

// Sweeper periodically executes due triggers, mirrors new vault events,
// refreshes snapshots of the vaults they touched and watches for
// executions stuck waiting on a reply.
type Sweeper struct {
	chain      Chain
	store      *store.Store
	metrics    *metrics.Metrics
	interval   time.Duration
	limit      uint32
	eventBatch uint32
	staleAfter time.Duration
	retention  time.Duration
	logger     zerolog.Logger

	runMu    sync.Mutex
	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

func New(cfg Config) *Sweeper {
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultInterval
	}
	batch := cfg.EventBatch
	if batch == 0 {
		batch = defaultEventBatch
	}
	m := cfg.Metrics
	if m == nil {
		m = metrics.New()
	}
	return &Sweeper{
		chain:      cfg.Chain,
		store:      cfg.Store,
		metrics:    m,
		interval:   interval,
		limit:      cfg.Limit,
		eventBatch: batch,
		staleAfter: cfg.StaleAfter,
		retention:  cfg.Retention,
		logger:     cfg.Logger.With().Str("component", "sweeper").Logger(),
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start runs one sweep immediately and then one per interval until ctx is
// done or Stop is called.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info().
		Dur("interval", s.interval).
		Uint32("limit", s.limit).
		Dur("stale_after", s.staleAfter).
		Msg("starting sweeper")

	go func() {
		defer close(s.done)
		s.tick(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.logger.Info().Msg("context cancelled, stopping sweeper")
				return
			case <-s.stopCh:
				s.logger.Info().Msg("stop signal received, stopping sweeper")
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

// Stop ends the loop and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	<-s.done
}

func (s *Sweeper) tick(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error().Err(err).Msg("sweep failed")
	}
}

// RunOnce executes due triggers and brings the store up to date. A sweep
// the chain rejects is recorded, not returned; the error covers the
// bot's own bookkeeping.
func (s *Sweeper) RunOnce(ctx context.Context) (*store.SweepRun, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	blockTime := s.chain.BlockTime()
	start := time.Now()
	report, sweepErr := s.chain.ExecuteDueTriggers(ctx, s.limit)
	took := time.Since(start)
	s.metrics.ObserveSweep(report, sweepErr, took)

	run, err := store.NewSweepRun(uuid.NewString(), blockTime, report, sweepErr, took)
	if err != nil {
		return nil, err
	}
	if err := s.store.RecordSweep(&run); err != nil {
		return nil, err
	}
	s.logSweep(run, report, sweepErr)

	touched, err := s.SyncEvents(ctx)
	if err != nil {
		return &run, err
	}
	if err := s.refreshSnapshots(ctx, touched, blockTime); err != nil {
		return &run, err
	}
	if err := s.checkInFlight(ctx, blockTime); err != nil {
		return &run, err
	}
	if s.retention > 0 {
		deleted, err := s.store.PruneSweeps(blockTime.Add(-s.retention))
		if err != nil {
			return &run, err
		}
		if deleted > 0 {
			s.store.Compact()
		}
	}
	return &run, nil
}

func (s *Sweeper) logSweep(run store.SweepRun, report types.SweepReport, sweepErr error) {
	if sweepErr != nil {
		s.logger.Error().Err(sweepErr).Str("run_id", run.RunID).Msg("sweep rejected by chain")
		return
	}
	for _, vaultErr := range report.Errors {
		s.logger.Warn().
			Str("run_id", run.RunID).
			Uint64("vault_id", vaultErr.VaultId).
			Str("error", vaultErr.Error).
			Msg("vault execution failed")
	}
	if report.Attempted == 0 && report.EscrowClaimed == 0 {
		s.logger.Debug().Str("run_id", run.RunID).Msg("nothing due")
		return
	}
	s.logger.Info().
		Str("run_id", run.RunID).
		Uint32("attempted", report.Attempted).
		Int("failed", len(report.Errors)).
		Uint32("escrow_claimed", report.EscrowClaimed).
		Int64("duration_ms", run.DurationMs).
		Msg("sweep completed")
}

// SyncEvents copies every chain event newer than the store's cursor and
// returns the ids of the vaults they belong to, in first-seen order.
func (s *Sweeper) SyncEvents(ctx context.Context) ([]uint64, error) {
	cursor, err := s.store.LastEventID()
	if err != nil {
		return nil, err
	}

	var touched []uint64
	seen := make(map[uint64]bool)
	for {
		if err := ctx.Err(); err != nil {
			return touched, err
		}
		events, err := s.chain.EventsAfter(ctx, cursor, s.eventBatch)
		if err != nil {
			return touched, errors.Wrap(err, "failed to fetch events")
		}
		if len(events) == 0 {
			return touched, nil
		}
		if _, err := s.store.SaveEvents(events); err != nil {
			return touched, err
		}
		for _, e := range events {
			s.metrics.EventsMirrored.WithLabelValues(e.Data.EventType()).Inc()
			if !seen[e.ResourceId] {
				seen[e.ResourceId] = true
				touched = append(touched, e.ResourceId)
			}
		}
		last := events[len(events)-1].Id
		cursor = &last
		if uint32(len(events)) < s.eventBatch {
			return touched, nil
		}
	}
}

func (s *Sweeper) refreshSnapshots(ctx context.Context, vaultIDs []uint64, observedAt time.Time) error {
	for _, id := range vaultIDs {
		resp, err := s.chain.Vault(ctx, id)
		if err != nil {
			return errors.Wrapf(err, "failed to query vault %d", id)
		}

		var perf *types.Performance
		if resp.Vault.IsDcaPlus() {
			p, err := s.chain.Performance(ctx, id)
			if err != nil {
				s.logger.Warn().Err(err).Uint64("vault_id", id).Msg("failed to query performance")
			} else {
				perf = &p.Performance
			}
		}

		snap := store.NewVaultSnapshot(resp.Vault, perf, observedAt)
		if err := s.store.SaveSnapshot(&snap); err != nil {
			return err
		}
	}
	return nil
}

// checkInFlight reports executions whose reply never arrived. Nothing on
// chain times them out, so the bot is the one to notice.
func (s *Sweeper) checkInFlight(ctx context.Context, now time.Time) error {
	execs, err := s.chain.InFlightExecutions(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to query in-flight executions")
	}
	s.metrics.InFlight.Set(float64(len(execs)))
	if s.staleAfter <= 0 {
		return nil
	}

	stale := 0
	for _, exec := range execs {
		age := now.Sub(exec.CreatedAt)
		if age < s.staleAfter {
			continue
		}
		stale++
		s.logger.Warn().
			Uint64("vault_id", exec.VaultId).
			Uint64("reply_id", exec.ReplyId).
			Str("kind", string(exec.Kind)).
			Dur("age", age).
			Int64("created_height", exec.CreatedHeight).
			Msg("execution still waiting on a reply")
	}
	s.metrics.StaleInFlight.Set(float64(stale))
	return nil
}
