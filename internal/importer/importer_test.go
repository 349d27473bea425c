package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/reconcile/internal/model"
)

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get("nonexistent"))
}

func TestRegistry_LookupUnknown(t *testing.T) {
	r := DefaultRegistry()
	_, err := r.Lookup("mint")

	var ute *model.UnrecognizedSourceTypeError
	require.ErrorAs(t, err, &ute)
	assert.Equal(t, "mint", ute.Type)
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(&ChaseParser{})
	p := r.Get("chase")
	require.NotNil(t, p)
	assert.Equal(t, "chase", p.Format())
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.Register(&YNABParser{})
	assert.NotNil(t, r.Get("YNAB"))
	assert.NotNil(t, r.Get("Ynab"))
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(&CitiParser{})
	assert.Panics(t, func() { r.Register(&CitiParser{}) })
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"chase", "citi", "csv", "ofx", "ynab"}, r.Formats())
}

func TestRegistry_ParseFile(t *testing.T) {
	r := DefaultRegistry()
	txns, err := r.ParseFile("citi", filepath.Join("testdata", "citi.csv"))
	require.NoError(t, err)
	assert.Len(t, txns, 4)

	_, err = r.ParseFile("citi", filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = r.ParseFile("bogus", filepath.Join("testdata", "citi.csv"))
	var ute *model.UnrecognizedSourceTypeError
	assert.ErrorAs(t, err, &ute)
}

func TestParseDollar(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"$4.00", "4.00"},
		{"$3,500.00", "3500.00"},
		{"-12.34", "12.34"},
		{"", "0.00"},
		{"  ", "0.00"},
		{"0.1", "0.10"},
		{" $ 1,000.50 ", "1000.50"},
		{"+7", "7.00"},
	}
	for _, tt := range tests {
		got, err := parseDollar(tt.in)
		require.NoError(t, err, "parseDollar(%q)", tt.in)
		assert.Equal(t, tt.want, got.StringFixed(2), "parseDollar(%q)", tt.in)
	}

	_, err := parseDollar("N/A")
	assert.Error(t, err)
	_, err = parseDollar("1.2.3")
	assert.Error(t, err)

	for _, in := range []string{"12abc", "USD 5", "(4.00)", "4.00€"} {
		_, err = parseDollar(in)
		assert.Error(t, err, "parseDollar(%q)", in)
	}
}
