package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one money movement as exported by a budgeting tool or a
// bank statement. Values are never mutated after parsing.
type Transaction struct {
	Date    time.Time
	Payee   string
	Inflow  decimal.Decimal // zero if money out
	Outflow decimal.Decimal // zero if money in
	Notes   string
}

// Amount returns the signed amount: inflow when nonzero, else -outflow.
func (t Transaction) Amount() decimal.Decimal {
	if !t.Inflow.IsZero() {
		return t.Inflow
	}
	return t.Outflow.Neg()
}

// Month returns the month bucket key for the transaction.
func (t Transaction) Month() Month {
	return MonthOf(t.Date)
}

// String renders "2025-01-03  Payee  -4.00  (note)".
func (t Transaction) String() string {
	s := fmt.Sprintf("%s  %s  %s", t.Date.Format(DateFormat), t.Payee, FormatAmount(t.Amount()))
	if t.Notes != "" {
		s += "  (" + t.Notes + ")"
	}
	return s
}

// FormatAmount renders d with two decimal places, or with every digit when
// two places would round it.
func FormatAmount(d decimal.Decimal) string {
	if d.Equal(d.Round(2)) {
		return d.StringFixed(2)
	}
	return d.String()
}

// DateFormat is the canonical date rendering used in reports and exports.
const DateFormat = "2006-01-02"

// Month is a transaction date with the day reset to the first of the month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month key for t in t's own calendar.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Start returns the first day of the month at midnight UTC.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Before reports whether m is earlier than o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// String returns "YYYY-MM".
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// JoinTransactions renders one transaction per line.
func JoinTransactions(txns []Transaction) string {
	lines := make([]string, len(txns))
	for i, t := range txns {
		lines[i] = t.String()
	}
	return strings.Join(lines, "\n")
}
