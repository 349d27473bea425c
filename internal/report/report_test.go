package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/reconcile/internal/model"
	"github.com/cleared-dev/reconcile/internal/reconcile"
)

func txn(y, m, d int, payee, amount string) model.Transaction {
	a := decimal.RequireFromString(amount)
	t := model.Transaction{Date: time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC), Payee: payee}
	if a.IsNegative() {
		t.Outflow = a.Neg()
	} else {
		t.Inflow = a
	}
	return t
}

func TestRender(t *testing.T) {
	statement := []model.Transaction{
		txn(2025, 1, 3, "GITHUB", "-4.00"),
		txn(2025, 1, 9, "FEE", "-2.50"),
		txn(2024, 12, 30, "OLD", "-1.00"),
	}
	budget := []model.Transaction{
		txn(2025, 1, 3, "GitHub", "-4.00"),
		txn(2025, 1, 12, "Cash", "20.00"),
	}
	res, err := reconcile.Reconcile(statement, budget)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "checking", res))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "== checking ==\n"))
	assert.Contains(t, out, "Month 2025-01")
	assert.Contains(t, out, "STATEMENT")
	assert.Contains(t, out, "2025-01-03  GITHUB  -4.00")
	assert.Contains(t, out, "-- Statement total: -6.50")
	assert.Contains(t, out, "-- Budget total: 16.00")
	assert.Contains(t, out, "---- DIFFERENCE: 22.50")
	assert.Contains(t, out, "Months found in statement and not in budget: 2024-12")
	assert.Contains(t, out, "Unclaimed statement transactions:\n  2025-01-09  FEE  -2.50\n")
	assert.Contains(t, out, "Unclaimed budget transactions:\n  2025-01-12  Cash  20.00\n")
	assert.NotContains(t, out, "All transactions matched.")
}

func TestRender_Balanced(t *testing.T) {
	res, err := reconcile.Reconcile(
		[]model.Transaction{txn(2025, 1, 3, "GITHUB", "-4.00")},
		[]model.Transaction{txn(2025, 1, 3, "GitHub", "-4.00")},
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "", res))
	out := buf.String()

	assert.NotContains(t, out, "==")
	assert.NotContains(t, out, "DIFFERENCE")
	assert.NotContains(t, out, "Months found")
	assert.Contains(t, out, "All transactions matched.")
}

func TestRender_SubCentAmountsStayDistinct(t *testing.T) {
	res, err := reconcile.Reconcile(
		[]model.Transaction{txn(2025, 1, 3, "X", "-0.30")},
		[]model.Transaction{txn(2025, 1, 3, "Y", "-0.301")},
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "", res))
	out := buf.String()
	assert.Contains(t, out, "2025-01-03  X  -0.30\n")
	assert.Contains(t, out, "2025-01-03  Y  -0.301\n")
	assert.Contains(t, out, "---- DIFFERENCE: -0.001")
}
