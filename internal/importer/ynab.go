package importer

import (
	"fmt"
	"io"
	"time"

	"github.com/cleared-dev/reconcile/internal/model"
	"github.com/cleared-dev/reconcile/internal/splits"
)

// YNABParser parses YNAB register CSV exports.
type YNABParser struct{}

// Spreadsheet re-saves drop leading zeros, so single-digit fields are accepted.
const ynabDateFormat = "1/2/2006"

// Format returns the parser name.
func (p *YNABParser) Format() string { return "ynab" }

// SplitPattern returns the memo marker YNAB writes on split rows.
func (p *YNABParser) SplitPattern() string { return splits.DefaultPattern }

// Parse reads a YNAB CSV. Split transactions are returned as separate rows.
func (p *YNABParser) Parse(r io.Reader) ([]model.Transaction, error) {
	hr, err := newHeaderReader("ynab", r, "Date", "Payee", "Inflow", "Outflow")
	if err != nil || hr == nil {
		return nil, err
	}

	var txns []model.Transaction
	for {
		rec, err := hr.next()
		if err == io.EOF {
			return txns, nil
		}
		if err != nil {
			return nil, err
		}
		txn, err := parseYNABRow(hr, rec)
		if err != nil {
			return nil, hr.malformed(rec, err)
		}
		txns = append(txns, txn)
	}
}

func parseYNABRow(hr *headerReader, rec []string) (model.Transaction, error) {
	raw := hr.field(rec, "Date")
	date, err := time.Parse(ynabDateFormat, raw)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", raw, err)
	}
	inflow, err := parseDollar(hr.field(rec, "Inflow"))
	if err != nil {
		return model.Transaction{}, err
	}
	outflow, err := parseDollar(hr.field(rec, "Outflow"))
	if err != nil {
		return model.Transaction{}, err
	}
	return model.Transaction{
		Date:    date,
		Payee:   hr.field(rec, "Payee"),
		Inflow:  inflow,
		Outflow: outflow,
		Notes:   hr.field(rec, "Memo"),
	}, nil
}
