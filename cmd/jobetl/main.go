package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"jobpostings-etl/internal/config"
	"jobpostings-etl/internal/logger"
	"jobpostings-etl/internal/pipeline"
	"jobpostings-etl/internal/store"
)

const (
	exitFailure = 1
	exitLocked  = 2
)

type globalOptions struct {
	configPath string
	envFile    string
	logLevel   string
}

// app is what every subcommand gets after config and logging are set up.
type app struct {
	cfg config.Config
	log *logger.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "jobetl:", err)
		if errors.Is(err, pipeline.ErrLocked) {
			os.Exit(exitLocked)
		}
		os.Exit(exitFailure)
	}
}

func newRootCmd() *cobra.Command {
	var opts globalOptions

	root := &cobra.Command{
		Use:           "jobetl",
		Short:         "Load schema.org JobPosting payloads from CSV into a relational store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "config.yml", "Path to the YAML config (created with defaults if missing)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Optional dotenv file with JOBETL_* overrides")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")

	root.AddCommand(
		newRunCmd(&opts),
		newScheduleCmd(&opts),
		newMigrateCmd(&opts),
		newStatsCmd(&opts),
	)
	return root
}

func setup(opts *globalOptions) (*app, error) {
	created, err := config.EnsureConfig(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("config bootstrap: %w", err)
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("config load (%s): %w", opts.configPath, err)
	}
	if err := config.OverlayEnv(&cfg, opts.envFile); err != nil {
		return nil, fmt.Errorf("env overlay: %w", err)
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	cfg, v := config.NormalizeAndValidate(cfg)
	if !v.OK() {
		return nil, v.Err()
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}
	if created {
		log.Info("[config] wrote default config", "path", opts.configPath)
	}
	for _, w := range v.Warnings {
		log.Warn("[config] " + w)
	}
	return &app{cfg: cfg, log: log}, nil
}

func newRunCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once, with retries",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(opts)
			if err != nil {
				return err
			}
			defer a.log.Sync()
			return pipeline.New(a.cfg, a.log, nil).Run(cmd.Context())
		},
	}
}

func newMigrateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the six tables if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(opts)
			if err != nil {
				return err
			}
			defer a.log.Sync()
			if err := pipeline.CreateTables(cmd.Context(), a.cfg); err != nil {
				return err
			}
			a.log.Info("[store] tables ready", "driver", a.cfg.Store.Driver)
			return nil
		},
	}
}

func newStatsCmd(opts *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print row counts per table and the number of unlinked rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(opts)
			if err != nil {
				return err
			}
			defer a.log.Sync()
			rep, err := pipeline.Inspect(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			switch format {
			case "json":
				writeJSON(cmd.OutOrStdout(), rep)
			case "table":
				writeTable(cmd.OutOrStdout(), rep)
			default:
				return fmt.Errorf("unknown --format %q (json or table)", format)
			}
			if rep.Orphans > 0 {
				a.log.Warn("[store] rows without job linkage", "orphans", rep.Orphans)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or table")
	return cmd
}

func writeTable(w io.Writer, rep pipeline.StoreReport) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "TABLE\tROWS\t")
	for _, t := range store.Tables {
		fmt.Fprintf(tw, "%s\t%s\t\n", t, humanize.Comma(rep.Counts[t]))
	}
	fmt.Fprintf(tw, "orphans\t%s\t\n", humanize.Comma(rep.Orphans))
	_ = tw.Flush()
}
