// Package splits collapses split transactions from a budgeting tool export
// back into the single transaction that appears on the bank statement.
package splits

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/reconcile/internal/model"
)

// DefaultPattern matches YNAB's "Split (i/n)" memo marker.
const DefaultPattern = `Split \((\d+)/(\d+)\)`

// Marker is a parsed split marker: member Position of Total.
type Marker struct {
	Position int
	Total    int
}

// First reports whether the marker opens a split group.
func (m Marker) First() bool { return m.Position == 1 }

// Detector finds split markers in transaction notes.
type Detector struct {
	re *regexp.Regexp
}

// NewDetector compiles pattern, which must have two capture groups:
// the 1-based position and the group total.
func NewDetector(pattern string) (*Detector, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling split pattern %q: %w", pattern, err)
	}
	if re.NumSubexp() != 2 {
		return nil, fmt.Errorf("split pattern %q: want 2 capture groups, got %d", pattern, re.NumSubexp())
	}
	return &Detector{re: re}, nil
}

// MustDetector is NewDetector that panics on error.
func MustDetector(pattern string) *Detector {
	d, err := NewDetector(pattern)
	if err != nil {
		panic(err)
	}
	return d
}

// Default returns a Detector for DefaultPattern.
func Default() *Detector {
	return MustDetector(DefaultPattern)
}

// Pattern returns the detector's source pattern.
func (d *Detector) Pattern() string { return d.re.String() }

// Detect returns the marker embedded anywhere in notes.
func (d *Detector) Detect(notes string) (Marker, bool) {
	m := d.re.FindStringSubmatch(notes)
	if m == nil {
		return Marker{}, false
	}
	pos, err := strconv.Atoi(m[1])
	if err != nil || pos < 1 {
		return Marker{}, false
	}
	total, err := strconv.Atoi(m[2])
	if err != nil || total < 1 {
		return Marker{}, false
	}
	return Marker{Position: pos, Total: total}, true
}

// IsSplit reports whether t is a split member and whether it begins its group.
func (d *Detector) IsSplit(t model.Transaction) (split, first bool) {
	m, ok := d.Detect(t.Notes)
	if !ok {
		return false, false
	}
	return true, m.First()
}

// Collapse merges a split group into one transaction. All members must share
// a single date.
func Collapse(group []model.Transaction) (model.Transaction, error) {
	if len(group) == 0 {
		return model.Transaction{}, &model.InvalidInputError{Reason: "cannot collapse an empty group"}
	}

	date := group[0].Date
	var payees []string
	seen := make(map[string]bool)
	inflow := decimal.Zero
	outflow := decimal.Zero
	for _, t := range group {
		if !t.Date.Equal(date) {
			return model.Transaction{}, &model.InvalidInputError{
				Reason:       "cannot collapse transactions with different dates",
				Transactions: group,
			}
		}
		if !seen[t.Payee] {
			seen[t.Payee] = true
			payees = append(payees, t.Payee)
		}
		inflow = inflow.Add(t.Inflow)
		outflow = outflow.Add(t.Outflow)
	}

	return model.Transaction{
		Date:    date,
		Payee:   strings.Join(payees, " / "),
		Inflow:  inflow,
		Outflow: outflow,
		Notes:   fmt.Sprintf("Collapsed from %d transactions", len(group)),
	}, nil
}

// Normalizer replaces each contiguous split run with its collapsed form.
type Normalizer struct {
	Detector *Detector
	// Strict fails a run whose length differs from the total declared by
	// its first marker, or whose first member is not position 1.
	Strict bool
}

// Normalize collapses split runs in txns using the default detector.
func Normalize(txns []model.Transaction) ([]model.Transaction, error) {
	return Normalizer{Detector: Default()}.Normalize(txns)
}

// Normalize returns a new slice where each split run is one transaction.
// Non-split transactions keep their relative order. Runs are delimited by
// adjacency: a run ends at the next non-split transaction or the next
// position-1 marker.
func (n Normalizer) Normalize(txns []model.Transaction) ([]model.Transaction, error) {
	out := make([]model.Transaction, 0, len(txns))
	if n.Detector == nil {
		return append(out, txns...), nil
	}

	var run []model.Transaction
	flush := func() error {
		if len(run) == 0 {
			return nil
		}
		if n.Strict {
			if err := n.checkRun(run); err != nil {
				return err
			}
		}
		c, err := Collapse(run)
		if err != nil {
			return err
		}
		out = append(out, c)
		run = nil
		return nil
	}

	for _, t := range txns {
		split, first := n.Detector.IsSplit(t)
		if !split {
			if err := flush(); err != nil {
				return nil, err
			}
			out = append(out, t)
			continue
		}
		if first {
			if err := flush(); err != nil {
				return nil, err
			}
		}
		run = append(run, t)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}

func (n Normalizer) checkRun(run []model.Transaction) error {
	lead, _ := n.Detector.Detect(run[0].Notes)
	if !lead.First() {
		return &model.InvalidInputError{
			Reason:       fmt.Sprintf("split run starts at position %d", lead.Position),
			Transactions: run,
		}
	}
	if lead.Total != len(run) {
		return &model.InvalidInputError{
			Reason:       fmt.Sprintf("split run declares %d members, found %d", lead.Total, len(run)),
			Transactions: run,
		}
	}
	return nil
}
