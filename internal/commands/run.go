package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/reconcile/internal/config"
	"github.com/cleared-dev/reconcile/internal/importer"
	"github.com/cleared-dev/reconcile/internal/logging"
	"github.com/cleared-dev/reconcile/internal/model"
	"github.com/cleared-dev/reconcile/internal/pipeline"
	"github.com/cleared-dev/reconcile/internal/report"
	"github.com/cleared-dev/reconcile/internal/runlog"
	"github.com/cleared-dev/reconcile/internal/txcsv"
)

type runOptions struct {
	configPath    string
	budget        string
	budgetType    string
	statement     string
	statementType string
	pairs         []string
	splitPattern  string
	strictSplits  bool
	unclaimedOut  string
	logLevel      string
}

func newRunCommand() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile budget exports against statements",
		Long: `Reconcile each configured pair, or a single pair given with --budget and
--statement. Unmatched transactions are reported, not treated as failures.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRunConfig(cmd, opts)
			if err != nil {
				return err
			}
			return runReconcile(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, opts.unclaimedOut)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", config.FileName, "config file")
	f.StringVar(&opts.budget, "budget", "", "budget export to reconcile (skips the config file)")
	f.StringVar(&opts.budgetType, "budget-type", "ynab", "budget source type")
	f.StringVar(&opts.statement, "statement", "", "statement export to reconcile (skips the config file)")
	f.StringVar(&opts.statementType, "statement-type", "citi", "statement source type")
	f.StringSliceVar(&opts.pairs, "pair", nil, "only run the named pairs")
	f.StringVar(&opts.splitPattern, "split-pattern", "", "regexp with (position) and (total) groups marking split rows")
	f.BoolVar(&opts.strictSplits, "strict-splits", false, "fail when a split run's length disagrees with its marker")
	f.StringVar(&opts.unclaimedOut, "unclaimed-out", "", "directory to write unclaimed transactions as CSV")
	f.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")

	return cmd
}

// loadRunConfig builds the effective config from the file or ad-hoc flags.
func loadRunConfig(cmd *cobra.Command, opts runOptions) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case opts.budget != "" || opts.statement != "":
		if opts.budget == "" || opts.statement == "" {
			return nil, errors.New("--budget and --statement must be given together")
		}
		cfg = &config.Config{
			Pairs: []config.Pair{{
				Name:      "default",
				Budget:    config.Source{Type: opts.budgetType, Path: opts.budget},
				Statement: config.Source{Type: opts.statementType, Path: opts.statement},
			}},
			Logging: config.LoggingConfig{Level: "info"},
		}
	default:
		var err error
		cfg, err = config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
	}

	if len(opts.pairs) > 0 {
		selected, err := selectPairs(cfg.Pairs, opts.pairs)
		if err != nil {
			return nil, err
		}
		cfg.Pairs = selected
	}
	if cmd.Flags().Changed("split-pattern") {
		cfg.Splits.Pattern = opts.splitPattern
	}
	if cmd.Flags().Changed("strict-splits") {
		cfg.Splits.Strict = opts.strictSplits
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func selectPairs(all []config.Pair, names []string) ([]config.Pair, error) {
	byName := make(map[string]config.Pair, len(all))
	for _, p := range all {
		byName[p.Name] = p
	}
	var out []config.Pair
	for _, n := range names {
		p, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("no pair named %q", n)
		}
		out = append(out, p)
	}
	return out, nil
}

func runReconcile(ctx context.Context, out, errOut io.Writer, cfg *config.Config, unclaimedOut string) error {
	runID := uuid.NewString()
	log := logging.NewConsole(cfg.Logging.Level, errOut).With().Str("run_id", runID).Logger()

	runner := pipeline.NewRunner(importer.DefaultRegistry(), cfg.Splits, log)
	results, err := runner.RunAll(ctx, cfg.Pairs)
	if err != nil {
		log.Error().Err(err).Msg("reconciliation failed")
		return err
	}

	now := time.Now().UTC()
	var history []runlog.Entry
	for _, r := range results {
		if err := report.Render(out, r.Pair.Name, r.Result); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		if unclaimedOut != "" {
			if err := writeUnclaimed(unclaimedOut, r); err != nil {
				return err
			}
		}
		history = append(history, runlog.NewEntry(runID, r.Pair.Name, now, r.Result))
	}

	if cfg.History.Path != "" {
		if err := runlog.Append(cfg.History.Path, history); err != nil {
			return fmt.Errorf("writing run history: %w", err)
		}
		log.Debug().Str("path", cfg.History.Path).Int("entries", len(history)).Msg("run history written")
	}
	return nil
}

func writeUnclaimed(dir string, r pipeline.PairResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	files := map[string][]model.Transaction{
		r.Pair.Name + "-statement.csv": r.Result.UnclaimedStatement,
		r.Pair.Name + "-budget.csv":    r.Result.UnclaimedBudget,
	}
	for name, txns := range files {
		if err := writeTransactionsFile(filepath.Join(dir, name), txns); err != nil {
			return err
		}
	}
	return nil
}

func writeTransactionsFile(path string, txns []model.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := txcsv.WriteTransactions(f, txns); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
