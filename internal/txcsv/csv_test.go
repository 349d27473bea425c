package txcsv

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/reconcile/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRoundTrip(t *testing.T) {
	txns := []model.Transaction{
		{Date: date(2025, 1, 3), Payee: "GitHub", Outflow: dec("4.00")},
		{Date: date(2025, 1, 7), Payee: "Costco, Inc.", Outflow: dec("100.00"), Notes: "Collapsed from 2 transactions"},
		{Date: date(2025, 1, 15), Payee: "Acme", Inflow: dec("3500")},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, txns))
	assert.True(t, strings.HasPrefix(buf.String(), Header+"\n"))

	got, err := ReadTransactions(&buf)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := range txns {
		assert.True(t, txns[i].Date.Equal(got[i].Date))
		assert.Equal(t, txns[i].Payee, got[i].Payee)
		assert.True(t, txns[i].Amount().Equal(got[i].Amount()), "row %d", i)
		assert.Equal(t, txns[i].Notes, got[i].Notes)
	}
}

func TestMarshalTransaction_EmptyZeroColumns(t *testing.T) {
	row := MarshalTransaction(model.Transaction{Date: date(2025, 1, 3), Payee: "GitHub", Outflow: dec("4")})
	assert.Equal(t, []string{"2025-01-03", "GitHub", "", "4.00", ""}, row)
}

func TestReadTransactions_Empty(t *testing.T) {
	got, err := ReadTransactions(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ReadTransactions(strings.NewReader(Header + "\n"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReadTransactions_Malformed(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want string
	}{
		{"bad date", "01/03/2025,GitHub,,4.00,", "parsing date"},
		{"bad inflow", "2025-01-03,GitHub,x,,", "parsing inflow"},
		{"bad outflow", "2025-01-03,GitHub,,y,", "parsing outflow"},
		{"negative", "2025-01-03,GitHub,,-4.00,", "must not be negative"},
	}
	for _, tt := range tests {
		_, err := ReadTransactions(strings.NewReader(Header + "\n" + tt.row + "\n"))
		var mre *model.MalformedRowError
		require.ErrorAs(t, err, &mre, tt.name)
		assert.Equal(t, 2, mre.Row, tt.name)
		assert.Contains(t, err.Error(), tt.want, tt.name)
	}
}

func TestUnmarshalTransaction_FieldCount(t *testing.T) {
	_, err := UnmarshalTransaction([]string{"2025-01-03"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 5 fields")
}

func TestRoundTrip_SubCentAmounts(t *testing.T) {
	txn := model.Transaction{Date: date(2025, 1, 3), Payee: "Fuel", Outflow: dec("0.305")}
	row := MarshalTransaction(txn)
	assert.Equal(t, "0.305", row[colOutflow])

	got, err := UnmarshalTransaction(row)
	require.NoError(t, err)
	assert.True(t, txn.Outflow.Equal(got.Outflow), "got %s", got.Outflow)

	row = MarshalTransaction(model.Transaction{Date: date(2025, 1, 3), Inflow: dec("2.5")})
	assert.Equal(t, "2.50", row[colInflow])
}
