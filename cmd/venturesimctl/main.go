// venturesimctl drives batch simulations of the startup economy from the
// command line: run batches, list persisted runs, export artifacts.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"venturesim/pkg/venturesim"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "venturesimctl",
		Short: "Startup economy simulator",
		Long: `venturesimctl runs seeded batches of startup lifecycle episodes:
a scripted or stochastic decision agent steers marketing, product,
hiring and pricing through a shock-prone macro economy, and the tool
aggregates survival and Rule-of-40 statistics across the batch.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("store", "", "store backend: memory|sqlite (env VENTURESIM_STORE)")
	rootCmd.PersistentFlags().String("db-path", "", "sqlite database path (env VENTURESIM_DB_PATH)")
	rootCmd.PersistentFlags().String("exports-dir", "", "artifact export directory (env VENTURESIM_EXPORTS_DIR)")
	rootCmd.PersistentFlags().Bool("json", false, "emit machine-readable JSON output")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newRunsCmd(),
		newExportCmd(),
		newAgentsCmd(),
	)
	return rootCmd
}

// clientFromFlags resolves environment configuration, applies flag overrides
// and opens the store-backed client.
func clientFromFlags(cmd *cobra.Command) (*venturesim.Client, appConfig, error) {
	cfg, err := loadAppConfig()
	if err != nil {
		return nil, appConfig{}, err
	}
	if v, _ := cmd.Flags().GetString("store"); v != "" {
		cfg.StoreKind = v
	}
	if v, _ := cmd.Flags().GetString("db-path"); v != "" {
		cfg.DBPath = v
	}
	if v, _ := cmd.Flags().GetString("exports-dir"); v != "" {
		cfg.ExportsDir = v
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return nil, appConfig{}, err
	}

	client, err := venturesim.NewClient(cmd.Context(), venturesim.Options{
		StoreKind:  cfg.StoreKind,
		DBPath:     cfg.DBPath,
		ExportsDir: cfg.ExportsDir,
		Logger:     logger,
	})
	if err != nil {
		return nil, appConfig{}, err
	}
	return client, cfg, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return zapCfg.Build()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("venturesimctl version %s\n", version)
		},
	}
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a batch of episodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			agentName, _ := cmd.Flags().GetString("agent")
			episodes, _ := cmd.Flags().GetInt("episodes")
			workers, _ := cmd.Flags().GetInt("workers")
			seed, _ := cmd.Flags().GetInt64("seed")
			horizon, _ := cmd.Flags().GetInt("horizon")
			scenarioPath, _ := cmd.Flags().GetString("scenario")
			noVolatility, _ := cmd.Flags().GetBool("no-volatility")
			capture, _ := cmd.Flags().GetBool("trajectories")
			jsonOut, _ := cmd.Flags().GetBool("json")

			req := venturesim.RunRequest{
				Agent:               agentName,
				Episodes:            episodes,
				Workers:             workers,
				Seed:                seed,
				Horizon:             horizon,
				DisableVolatility:   noVolatility,
				CaptureTrajectories: capture,
			}
			if scenarioPath != "" {
				simCfg, err := loadScenario(scenarioPath)
				if err != nil {
					return err
				}
				req.SimOverrides = &simCfg
			}

			client, _, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			summary, err := client.Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}

			fmt.Printf("run completed run_id=%s agent=%s episodes=%d seed=%d\n",
				summary.RunID, summary.AgentName, summary.Episodes, seed)
			fmt.Printf("bankruptcy_rate=%.4f mean_steps=%.1f mean_reward=%.4f median_reward=%.4f\n",
				summary.Aggregates.BankruptcyRate,
				summary.Aggregates.MeanSteps,
				summary.Aggregates.MeanReward,
				summary.Aggregates.MedianReward)
			fmt.Printf("mean_final_mrr=%.2f mean_final_cash=%.2f p10_final_cash=%.2f p90_final_cash=%.2f\n",
				summary.Aggregates.MeanFinalMRR,
				summary.Aggregates.MeanFinalCash,
				summary.Aggregates.P10FinalCash,
				summary.Aggregates.P90FinalCash)
			return nil
		},
	}

	cmd.Flags().String("agent", "boardroom", "decision agent: cfo|cmo|cpo|boardroom|random|zero")
	cmd.Flags().Int("episodes", 100, "episode count")
	cmd.Flags().Int("workers", 4, "worker count")
	cmd.Flags().Int64("seed", 1, "base rng seed; episode i uses seed+i")
	cmd.Flags().Int("horizon", 0, "episode horizon in months (0 uses the default)")
	cmd.Flags().String("scenario", "", "optional YAML scenario file overriding the economy")
	cmd.Flags().Bool("no-volatility", false, "disable exogenous shocks")
	cmd.Flags().Bool("trajectories", false, "capture per-step trajectories for export")
	return cmd
}

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List persisted runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			jsonOut, _ := cmd.Flags().GetBool("json")

			client, _, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			runs, err := client.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}
			if len(runs) == 0 {
				fmt.Println("no runs found")
				return nil
			}
			for _, run := range runs {
				fmt.Printf("run_id=%s created_at=%s agent=%s seed=%d episodes=%d horizon=%d bankruptcy_rate=%.4f mean_reward=%.4f\n",
					run.RunID,
					run.CreatedAtUTC,
					run.AgentName,
					run.Seed,
					run.Episodes,
					run.Horizon,
					run.BankruptcyRate,
					run.MeanReward)
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "max runs to list (0 for all)")
	return cmd
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <run-id>",
		Short: "Write the run index and trajectory CSVs for a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			paths, err := client.Export(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("exported run_id=%s files=%d dir=%s\n", args[0], len(paths), cfg.ExportsDir)
			for _, path := range paths {
				fmt.Println(path)
			}
			return nil
		},
	}
}

func newAgentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List the registered decision agents",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			jsonOut, _ := cmd.Flags().GetBool("json")
			names := client.Agents()
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(names)
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
}
