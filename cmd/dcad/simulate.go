package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/pushchain/push-dca-node/keeperbot/config"
	"github.com/pushchain/push-dca-node/keeperbot/logger"
	"github.com/pushchain/push-dca-node/keeperbot/store"
)

// SimulationSummary is what simulate reports once the run ends.
type SimulationSummary struct {
	Seed         int64             `yaml:"seed" json:"seed"`
	Days         int               `yaml:"days" json:"days"`
	Height       int64             `yaml:"height" json:"height"`
	BlockTime    time.Time         `yaml:"block_time" json:"block_time"`
	Sweeps       int               `yaml:"sweeps" json:"sweeps"`
	Executions   map[string]uint32 `yaml:"executions" json:"executions"`
	Failures     int               `yaml:"failures" json:"failures"`
	EscrowClaims uint32            `yaml:"escrow_claims" json:"escrow_claims"`
	Events       map[string]int64  `yaml:"events" json:"events"`
	Vaults       []VaultSummary    `yaml:"vaults" json:"vaults"`
}

type VaultSummary struct {
	ID           uint64 `yaml:"id" json:"id"`
	Status       string `yaml:"status" json:"status"`
	Balance      string `yaml:"balance" json:"balance"`
	Swapped      string `yaml:"swapped" json:"swapped"`
	Received     string `yaml:"received" json:"received"`
	AveragePrice string `yaml:"average_price" json:"average_price"`
	DcaPlus      bool   `yaml:"dca_plus" json:"dca_plus"`
	Performance  string `yaml:"performance,omitempty" json:"performance,omitempty"`
}

func simulateCmd() *cobra.Command {
	var (
		days         int
		vaults       int
		seed         int64
		dbFile       string
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the keeper against a seeded market for a span of block time",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("days must be positive")
			}
			home := homeDir(cmd)
			cfg, err := config.LoadOrDefault(home)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("vaults") {
				cfg.Simulation.Vaults = vaults
			}
			if cmd.Flags().Changed("seed") {
				cfg.Simulation.Seed = seed
			}
			cfg.DBFile = dbFile
			// history is summarised at the end, keep all of it
			cfg.SweepRetentionSeconds = 0

			log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat, cfg.LogSampler)
			b, err := newBot(home, cfg, log)
			if err != nil {
				return err
			}
			defer b.Close()

			ctx := runContext(cmd)
			if _, err := b.sweeper.RunOnce(ctx); err != nil {
				return err
			}
			err = b.scenario.Run(ctx, time.Duration(days)*24*time.Hour, func() error {
				_, err := b.sweeper.RunOnce(ctx)
				return err
			})
			if err != nil {
				return err
			}

			summary, err := summarize(b, days)
			if err != nil {
				return err
			}
			return printOutput(cmd.OutOrStdout(), summary, outputFormat)
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "days of block time to simulate")
	cmd.Flags().IntVar(&vaults, "vaults", 0, "number of vaults, overrides the config")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed, overrides the config")
	cmd.Flags().StringVar(&dbFile, "db-file", store.InMemorySQLiteDSN, "sqlite file under <home>/data")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", OutputFormatYAML, "Output format (yaml|json)")
	return cmd
}

func summarize(b *bot, days int) (*SimulationSummary, error) {
	summary := &SimulationSummary{
		Seed:       b.cfg.Simulation.Seed,
		Days:       days,
		Height:     b.chain.Height(),
		BlockTime:  b.chain.BlockTime(),
		Executions: make(map[string]uint32),
	}

	runs, err := b.store.RecentSweeps(0)
	if err != nil {
		return nil, err
	}
	summary.Sweeps = len(runs)
	for _, run := range runs {
		var outcomes map[string]uint32
		if err := json.Unmarshal(run.Outcomes, &outcomes); err != nil {
			return nil, fmt.Errorf("failed to decode outcomes of sweep %s: %w", run.RunID, err)
		}
		for outcome, n := range outcomes {
			summary.Executions[outcome] += n
		}
		summary.Failures += run.Failed
		summary.EscrowClaims += run.EscrowClaimed
	}

	if summary.Events, err = b.store.CountEventsByType(); err != nil {
		return nil, err
	}

	for _, id := range b.scenario.VaultIDs {
		snap, err := b.store.Snapshot(id)
		if err != nil {
			return nil, err
		}
		vs := VaultSummary{
			ID:           snap.VaultID,
			Status:       snap.Status,
			Balance:      snap.Balance.String(),
			Swapped:      snap.Swapped.String(),
			Received:     snap.Received.String(),
			AveragePrice: snap.AveragePrice.StringFixed(6),
			DcaPlus:      snap.DcaPlus,
		}
		if snap.Performance != nil {
			vs.Performance = snap.Performance.StringFixed(4)
		}
		summary.Vaults = append(summary.Vaults, vs)
	}
	sort.Slice(summary.Vaults, func(i, j int) bool { return summary.Vaults[i].ID < summary.Vaults[j].ID })
	return summary, nil
}
