package importer

import (
	"fmt"
	"io"
	"time"

	"github.com/cleared-dev/reconcile/internal/model"
)

// CitiParser parses Citi card and checking CSV exports, which carry
// separate Debit and Credit columns.
type CitiParser struct{}

const citiDateFormat = "1/2/2006"

// Format returns the parser name.
func (p *CitiParser) Format() string { return "citi" }

// Parse reads a Citi CSV.
func (p *CitiParser) Parse(r io.Reader) ([]model.Transaction, error) {
	hr, err := newHeaderReader("citi", r, "Date", "Description", "Debit", "Credit")
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
		txn, err := parseCitiRow(hr, rec)
		if err != nil {
			return nil, hr.malformed(rec, err)
		}
		txns = append(txns, txn)
	}
}

func parseCitiRow(hr *headerReader, rec []string) (model.Transaction, error) {
	raw := hr.field(rec, "Date")
	date, err := time.Parse(citiDateFormat, raw)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", raw, err)
	}
	// Citi writes credits as negative numbers; parseDollar drops the sign.
	debit, err := parseDollar(hr.field(rec, "Debit"))
	if err != nil {
		return model.Transaction{}, err
	}
	credit, err := parseDollar(hr.field(rec, "Credit"))
	if err != nil {
		return model.Transaction{}, err
	}
	return model.Transaction{
		Date:    date,
		Payee:   hr.field(rec, "Description"),
		Inflow:  credit,
		Outflow: debit,
	}, nil
}
