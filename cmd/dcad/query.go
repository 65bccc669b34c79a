package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/pushchain/push-dca-node/keeperbot/config"
)

// Output formats
const (
	OutputFormatYAML = "yaml"
	OutputFormatJSON = "json"
)

// QueryResponse is the envelope returned by the keeper API.
type QueryResponse struct {
	Data        json.RawMessage `json:"data"`
	LastFetched time.Time       `json:"last_fetched"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// QueryOutput is printed for every query. Data is re-decoded generically so
// yaml output keeps the API's field names.
type QueryOutput struct {
	Data        any       `yaml:"data" json:"data"`
	LastFetched time.Time `yaml:"last_fetched" json:"last_fetched"`
}

func queryCmd() *cobra.Command {
	var (
		outputFormat string
		apiURL       string
	)

	cmd := &cobra.Command{
		Use:     "query",
		Aliases: []string{"q"},
		Short:   "Query a running keeper's API",
	}
	cmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", OutputFormatYAML, "Output format (yaml|json)")
	cmd.PersistentFlags().StringVar(&apiURL, "api", "", "keeper API base url (default: localhost on the configured port)")

	run := func(cmd *cobra.Command, path string, params url.Values) error {
		base, err := resolveAPIURL(cmd, apiURL)
		if err != nil {
			return err
		}
		out, err := fetch(base, path, params)
		if err != nil {
			return err
		}
		return printOutput(cmd.OutOrStdout(), out, outputFormat)
	}

	vaultPath := func(arg, suffix string) (string, error) {
		id, err := strconv.ParseUint(arg, 10, 64)
		if err != nil {
			return "", fmt.Errorf("invalid vault id %q", arg)
		}
		return fmt.Sprintf("/api/v1/vaults/%d%s", id, suffix), nil
	}

	vaultCmd := func(use, short, suffix string) *cobra.Command {
		return &cobra.Command{
			Use:   use + " [vault-id]",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := vaultPath(args[0], suffix)
				if err != nil {
					return err
				}
				return run(cmd, path, nil)
			},
		}
	}

	var after, limit uint64
	eventsCmd := &cobra.Command{
		Use:   "events [vault-id]",
		Short: "Query a vault's mirrored events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := vaultPath(args[0], "/events")
			if err != nil {
				return err
			}
			params := url.Values{}
			if cmd.Flags().Changed("after") {
				params.Set("after", strconv.FormatUint(after, 10))
			}
			params.Set("limit", strconv.FormatUint(limit, 10))
			return run(cmd, path, params)
		},
	}
	eventsCmd.Flags().Uint64Var(&after, "after", 0, "only events after this event id (default: from the first event)")
	eventsCmd.Flags().Uint64Var(&limit, "limit", 100, "maximum number of events")

	var sweepLimit uint64
	sweepsCmd := &cobra.Command{
		Use:   "sweeps",
		Short: "Query recent sweeps, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := url.Values{}
			params.Set("limit", strconv.FormatUint(sweepLimit, 10))
			return run(cmd, "/api/v1/sweeps", params)
		},
	}
	sweepsCmd.Flags().Uint64Var(&sweepLimit, "limit", 20, "maximum number of sweeps")

	cmd.AddCommand(
		vaultCmd("vault", "Query a vault and its trigger from the chain", ""),
		vaultCmd("snapshot", "Query the keeper's last snapshot of a vault", "/snapshot"),
		vaultCmd("performance", "Query a dca plus vault's performance", "/performance"),
		eventsCmd,
		sweepsCmd,
		&cobra.Command{
			Use:   "owner-vaults [owner]",
			Short: "Query snapshots of an owner's vaults",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, "/api/v1/owners/"+url.PathEscape(args[0])+"/vaults", nil)
			},
		},
		&cobra.Command{
			Use:   "in-flight",
			Short: "Query executions waiting on a venue reply",
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, "/api/v1/in-flight", nil)
			},
		},
	)
	return cmd
}

// resolveAPIURL returns override, or localhost on the configured port.
func resolveAPIURL(cmd *cobra.Command, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	cfg, err := config.LoadOrDefault(homeDir(cmd))
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	return fmt.Sprintf("http://localhost:%d", cfg.APIPort), nil
}

func fetch(base, path string, params url.Values) (*QueryOutput, error) {
	target := base + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(target)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
			return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("server error: %s", errResp.Error)
	}

	var queryResp QueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&queryResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	var data any
	if err := json.Unmarshal(queryResp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to decode data: %w", err)
	}
	return &QueryOutput{Data: data, LastFetched: queryResp.LastFetched}, nil
}

// printOutput prints data in the specified format
func printOutput(w io.Writer, data any, format string) error {
	switch format {
	case OutputFormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		return encoder.Encode(data)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}
