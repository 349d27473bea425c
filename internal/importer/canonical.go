package importer

import (
	"io"

	"github.com/cleared-dev/reconcile/internal/model"
	"github.com/cleared-dev/reconcile/internal/txcsv"
)

// CanonicalParser reads the tool's own CSV layout, as written by
// `reconcile run --unclaimed-out`.
type CanonicalParser struct{}

// Format returns the parser name.
func (p *CanonicalParser) Format() string { return "csv" }

// Parse reads date,payee,inflow,outflow,notes rows.
func (p *CanonicalParser) Parse(r io.Reader) ([]model.Transaction, error) {
	return txcsv.ReadTransactions(r)
}
