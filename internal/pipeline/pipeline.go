// Package pipeline runs parse, split normalization and reconciliation for
// configured budget/statement pairs.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cleared-dev/reconcile/internal/config"
	"github.com/cleared-dev/reconcile/internal/importer"
	"github.com/cleared-dev/reconcile/internal/model"
	"github.com/cleared-dev/reconcile/internal/reconcile"
	"github.com/cleared-dev/reconcile/internal/splits"
)

// Runner reconciles pairs using a parser registry.
type Runner struct {
	registry *importer.Registry
	splits   config.SplitsConfig
	log      zerolog.Logger
}

// NewRunner creates a Runner.
func NewRunner(registry *importer.Registry, sc config.SplitsConfig, log zerolog.Logger) *Runner {
	return &Runner{registry: registry, splits: sc, log: log}
}

// PairResult is the outcome for one pair.
type PairResult struct {
	Pair   config.Pair
	Result *reconcile.Result
}

// RunAll reconciles every pair concurrently. Results keep the order of
// pairs. The first error cancels the remaining pairs.
func (r *Runner) RunAll(ctx context.Context, pairs []config.Pair) ([]PairResult, error) {
	results := make([]PairResult, len(pairs))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range pairs {
		i, p := i, p
		g.Go(func() error {
			res, err := r.RunPair(ctx, p)
			if err != nil {
				return fmt.Errorf("pair %q: %w", p.Name, err)
			}
			results[i] = PairResult{Pair: p, Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RunPair parses both sides of p, collapses budget splits and reconciles.
func (r *Runner) RunPair(ctx context.Context, p config.Pair) (*reconcile.Result, error) {
	log := r.log.With().Str("pair", p.Name).Logger()

	statement, err := r.registry.ParseFile(p.Statement.Type, p.Statement.Path)
	if err != nil {
		return nil, fmt.Errorf("statement: %w", err)
	}
	log.Debug().Str("path", p.Statement.Path).Int("rows", len(statement)).Msg("parsed statement")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	budget, err := r.registry.ParseFile(p.Budget.Type, p.Budget.Path)
	if err != nil {
		return nil, fmt.Errorf("budget: %w", err)
	}
	log.Debug().Str("path", p.Budget.Path).Int("rows", len(budget)).Msg("parsed budget")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	normalized, err := r.normalize(p.Budget.Type, budget)
	if err != nil {
		return nil, fmt.Errorf("budget splits: %w", err)
	}
	if n := len(budget) - len(normalized); n > 0 {
		log.Debug().Int("rows", n).Msg("collapsed split rows")
	}

	res, err := reconcile.Reconcile(statement, normalized)
	if err != nil {
		return nil, err
	}
	log.Info().
		Int("months", len(res.Months)).
		Int("matched_groups", res.MatchedGroups()).
		Int("unclaimed_statement", len(res.UnclaimedStatement)).
		Int("unclaimed_budget", len(res.UnclaimedBudget)).
		Msg("reconciled")
	return res, nil
}

func (r *Runner) normalize(format string, txns []model.Transaction) ([]model.Transaction, error) {
	d, err := r.detector(format)
	if err != nil {
		return nil, err
	}
	return splits.Normalizer{Detector: d, Strict: r.splits.Strict}.Normalize(txns)
}

// detector picks the configured pattern, else the parser's own, else none.
func (r *Runner) detector(format string) (*splits.Detector, error) {
	pattern := r.splits.Pattern
	if pattern == "" {
		p, err := r.registry.Lookup(format)
		if err != nil {
			return nil, err
		}
		if sm, ok := p.(importer.SplitMarker); ok {
			pattern = sm.SplitPattern()
		}
	}
	if pattern == "" {
		return nil, nil
	}
	return splits.NewDetector(pattern)
}
