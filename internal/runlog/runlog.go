// Package runlog appends one CSV row per reconciled pair to a history file.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cleared-dev/reconcile/internal/reconcile"
)

// Entry is one row in the run history.
type Entry struct {
	RunID              string
	Timestamp          time.Time
	Pair               string
	Months             int
	MatchedGroups      int
	UnclaimedStatement int
	UnclaimedBudget    int
	ExtraMonths        int
}

// Header is the CSV header for the history file.
const Header = "run_id,timestamp,pair,months,matched_groups,unclaimed_statement,unclaimed_budget,extra_months"

const (
	numFields        = 8
	colRunID         = 0
	colTimestamp     = 1
	colPair          = 2
	colMonths        = 3
	colMatched       = 4
	colUnclaimedStmt = 5
	colUnclaimedBudg = 6
	colExtraMonths   = 7
)

// NewEntry summarizes a reconciliation result.
func NewEntry(runID, pair string, at time.Time, res *reconcile.Result) Entry {
	return Entry{
		RunID:              runID,
		Timestamp:          at,
		Pair:               pair,
		Months:             len(res.Months),
		MatchedGroups:      res.MatchedGroups(),
		UnclaimedStatement: len(res.UnclaimedStatement),
		UnclaimedBudget:    len(res.UnclaimedBudget),
		ExtraMonths:        len(res.ExtraStatementMonths),
	}
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colRunID] = e.RunID
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colPair] = e.Pair
	row[colMonths] = strconv.Itoa(e.Months)
	row[colMatched] = strconv.Itoa(e.MatchedGroups)
	row[colUnclaimedStmt] = strconv.Itoa(e.UnclaimedStatement)
	row[colUnclaimedBudg] = strconv.Itoa(e.UnclaimedBudget)
	row[colExtraMonths] = strconv.Itoa(e.ExtraMonths)
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	ints := make([]int, 0, 5)
	for _, col := range []int{colMonths, colMatched, colUnclaimedStmt, colUnclaimedBudg, colExtraMonths} {
		n, err := strconv.Atoi(record[col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[col], err)
		}
		ints = append(ints, n)
	}

	return Entry{
		RunID:              record[colRunID],
		Timestamp:          ts,
		Pair:               record[colPair],
		Months:             ints[0],
		MatchedGroups:      ints[1],
		UnclaimedStatement: ints[2],
		UnclaimedBudget:    ints[3],
		ExtraMonths:        ints[4],
	}, nil
}

// Append writes entries to path, creating the file, its directory and the
// header if needed.
func Append(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from path.
// Returns an empty slice if the file does not exist.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening history: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading history CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
