package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/b97tsk/pxasync/internal/config"
	"github.com/b97tsk/pxasync/internal/logging"
)

var runConfigPath string

func init() {
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "scenario file (.toml, .yaml or .yml); built-in scenario if empty")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scenario and print every task outcome",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		if runConfigPath != "" {
			var err error
			if cfg, err = config.Load(runConfigPath); err != nil {
				return err
			}
		}

		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		if err := setColorMode(cmd); err != nil {
			return err
		}

		runID := uuid.NewString()
		logger = logger.With(slog.String("run", runID))
		logger.Info("starting scenario", slog.Int("tickers", len(cfg.Tickers)), slog.Bool("inbox", cfg.Inbox.Enabled))

		names, results, err := runScenario(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}

		if failed := printResults(cmd.OutOrStdout(), names, results); failed != 0 {
			return fmt.Errorf("run %s: %d of %d tasks did not succeed", runID, failed, len(results))
		}
		return nil
	},
}

func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	levelName, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, err
	}
	format, err := cmd.Flags().GetString("log-format")
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	return logging.NewLogger(level, format)
}

func setColorMode(cmd *cobra.Command) error {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return err
	}
	switch mode {
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("unknown color mode %q (want auto, on or off)", mode)
	}
	return nil
}

// printResults prints one line per outcome and returns how many tasks did
// not complete successfully.
func printResults(w io.Writer, names []string, results []outcome) int {
	var (
		good   = color.New(color.FgGreen)
		bad    = color.New(color.FgRed, color.Bold)
		absent = color.New(color.FgYellow)
	)

	failed := 0
	for i, o := range results {
		r, done := o.Get()
		switch {
		case !done:
			absent.Fprintf(w, "[%d] %-12s not completed\n", i, names[i])
			failed++
		case r.Err != nil:
			bad.Fprintf(w, "[%d] %-12s failed: %v\n", i, names[i], r.Err)
			failed++
		default:
			good.Fprintf(w, "[%d] %-12s %d samples -> %d\n", i, names[i], r.Value.Count, r.Value.Value)
		}
	}
	return failed
}
