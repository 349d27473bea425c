package model

import (
	"fmt"
	"strings"
)

// MalformedRowError reports a source row that could not be parsed.
type MalformedRowError struct {
	Source string   // source type, e.g. "ynab"
	Row    int      // 1-based, header is row 1
	Record []string // raw cells, nil for non-tabular sources
	Err    error
}

func (e *MalformedRowError) Error() string {
	if e.Record == nil {
		return fmt.Sprintf("%s row %d: %v", e.Source, e.Row, e.Err)
	}
	return fmt.Sprintf("%s row %d %q: %v", e.Source, e.Row, e.Record, e.Err)
}

func (e *MalformedRowError) Unwrap() error { return e.Err }

// InvalidInputError reports transactions that violate a semantic invariant,
// such as a transaction with both inflow and outflow set.
type InvalidInputError struct {
	Reason       string
	Transactions []Transaction
}

func (e *InvalidInputError) Error() string {
	if len(e.Transactions) == 0 {
		return "invalid input: " + e.Reason
	}
	parts := make([]string, len(e.Transactions))
	for i, t := range e.Transactions {
		parts[i] = t.String()
	}
	return fmt.Sprintf("invalid input: %s [%s]", e.Reason, strings.Join(parts, "; "))
}

// UnrecognizedSourceTypeError reports a source type with no registered parser.
type UnrecognizedSourceTypeError struct {
	Type string
}

func (e *UnrecognizedSourceTypeError) Error() string {
	return fmt.Sprintf("unrecognized source type %q", e.Type)
}
