package importer

import (
	"errors"
	"fmt"
	"io"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/reconcile/internal/model"
)

// OFXParser parses OFX/QFX bank and credit card statement downloads.
type OFXParser struct{}

// Format returns the parser name.
func (p *OFXParser) Format() string { return "ofx" }

// Parse reads every bank and credit card statement in the OFX response.
func (p *OFXParser) Parse(r io.Reader) ([]model.Transaction, error) {
	resp, err := ofxgo.ParseResponse(r)
	if err != nil {
		return nil, fmt.Errorf("reading OFX: %w", err)
	}

	var txns []model.Transaction
	row := 0
	for _, msg := range append(resp.Bank, resp.CreditCard...) {
		var list *ofxgo.TransactionList
		switch stmt := msg.(type) {
		case *ofxgo.StatementResponse:
			list = stmt.BankTranList
		case *ofxgo.CCStatementResponse:
			list = stmt.BankTranList
		default:
			return nil, errors.New("reading OFX: unexpected statement type")
		}
		if list == nil {
			continue
		}

		for _, st := range list.Transactions {
			row++
			amount, err := decimal.NewFromString(st.TrnAmt.String())
			if err != nil {
				return nil, &model.MalformedRowError{
					Source: "ofx",
					Row:    row,
					Err:    fmt.Errorf("parsing amount %q: %w", st.TrnAmt.String(), err),
				}
			}
			inflow, outflow := splitSigned(amount)
			txns = append(txns, model.Transaction{
				Date:    st.DtPosted.Time,
				Payee:   string(st.Name),
				Inflow:  inflow,
				Outflow: outflow,
				Notes:   string(st.Memo),
			})
		}
	}
	return txns, nil
}
