package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkversion "github.com/cosmos/cosmos-sdk/version"
	"github.com/spf13/cobra"

	"github.com/pushchain/push-dca-node/keeperbot/api"
	"github.com/pushchain/push-dca-node/keeperbot/config"
	"github.com/pushchain/push-dca-node/keeperbot/logger"
)

func InitRootCmd(rootCmd *cobra.Command) {
	rootCmd.AddCommand(
		configCmd(),
		serveCmd(),
		simulateCmd(),
		queryCmd(),
		versionCmd(),
	)
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the keeper configuration",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration to the home directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			home := homeDir(cmd)
			path := config.FilePath(home)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config already exists at %s, use --force to overwrite", path)
			}
			cfg, err := config.LoadDefaultConfig()
			if err != nil {
				return err
			}
			if err := config.Save(cfg, home); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(homeDir(cmd))
			if err != nil {
				return err
			}
			return printOutput(cmd.OutOrStdout(), cfg, OutputFormatJSON)
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

func serveCmd() *cobra.Command {
	var tick time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the keeper and its API against a live simulated chain",
		Long: "Starts an in-process chain seeded with a vault population, advances it by one " +
			"simulation step per tick, sweeps due triggers on the configured interval and " +
			"serves the keeper's view over HTTP until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			home := homeDir(cmd)
			cfg, err := config.LoadOrDefault(home)
			if err != nil {
				return err
			}
			log := logger.New(cfg.LogLevel, cfg.LogFormat, cfg.LogSampler)

			b, err := newBot(home, cfg, log)
			if err != nil {
				return err
			}
			defer b.Close()

			ctx, stop := signal.NotifyContext(runContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := api.NewServer(log, cfg.APIPort, b.chain, b.store, b.metrics)
			if err := server.Start(); err != nil {
				return err
			}
			defer server.Stop()

			b.sweeper.Start(ctx)
			defer b.sweeper.Stop()

			ticker := time.NewTicker(tick)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					log.Info().Msg("shutting down")
					return nil
				case <-ticker.C:
					if err := b.scenario.Step(); err != nil {
						return fmt.Errorf("simulation step failed: %w", err)
					}
				}
			}
		},
	}
	cmd.Flags().DurationVar(&tick, "tick", time.Second, "wall-clock time between simulation steps")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print dcad version info",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:       %s\n", sdkversion.Name)
			fmt.Fprintf(out, "App Name:   %s\n", sdkversion.AppName)
			fmt.Fprintf(out, "Version:    %s\n", sdkversion.Version)
			fmt.Fprintf(out, "Commit:     %s\n", sdkversion.Commit)
			fmt.Fprintf(out, "Build Tags: %s\n", sdkversion.BuildTags)
		},
	}
}

// runContext is cmd's context, or a background one when run outside
// Execute.
func runContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
