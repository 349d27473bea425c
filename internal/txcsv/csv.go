// Package txcsv reads and writes transactions in the tool's own CSV layout,
// used for unclaimed exports and as the "csv" source type.
package txcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/reconcile/internal/model"
)

// Header is the CSV header for transaction files.
const Header = "date,payee,inflow,outflow,notes"

const (
	numFields  = 5
	colDate    = 0
	colPayee   = 1
	colInflow  = 2
	colOutflow = 3
	colNotes   = 4
)

// ReadTransactions reads all transactions from r. The header row is required.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return nil, &model.MalformedRowError{Source: "csv", Row: pe.StartLine, Err: err}
		}
		return nil, fmt.Errorf("reading transaction CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var txns []model.Transaction
	for i, rec := range records[1:] {
		txn, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, &model.MalformedRowError{Source: "csv", Row: i + 2, Record: rec, Err: err}
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// WriteTransactions writes txns to w, including the header.
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, t := range txns {
		if err := cw.Write(MarshalTransaction(t)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(t model.Transaction) []string {
	row := make([]string, numFields)
	row[colDate] = t.Date.Format(model.DateFormat)
	row[colPayee] = t.Payee
	if !t.Inflow.IsZero() {
		row[colInflow] = model.FormatAmount(t.Inflow)
	}
	if !t.Outflow.IsZero() {
		row[colOutflow] = model.FormatAmount(t.Outflow)
	}
	row[colNotes] = t.Notes
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(model.DateFormat, record[colDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	var inflow, outflow decimal.Decimal
	if record[colInflow] != "" {
		inflow, err = decimal.NewFromString(record[colInflow])
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing inflow %q: %w", record[colInflow], err)
		}
	}
	if record[colOutflow] != "" {
		outflow, err = decimal.NewFromString(record[colOutflow])
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing outflow %q: %w", record[colOutflow], err)
		}
	}
	if inflow.IsNegative() || outflow.IsNegative() {
		return model.Transaction{}, errors.New("inflow and outflow must not be negative")
	}

	return model.Transaction{
		Date:    date,
		Payee:   record[colPayee],
		Inflow:  inflow,
		Outflow: outflow,
		Notes:   record[colNotes],
	}, nil
}
