package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/reconcile/internal/model"
)

// Parser converts one source's export into Transactions, in file order.
type Parser interface {
	Parse(r io.Reader) ([]model.Transaction, error)
	Format() string
}

// SplitMarker is implemented by parsers whose source writes split
// transactions as several rows with a position marker in the notes.
type SplitMarker interface {
	SplitPattern() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// Lookup returns the parser for format or an UnrecognizedSourceTypeError.
func (r *Registry) Lookup(format string) (Parser, error) {
	p := r.Get(format)
	if p == nil {
		return nil, &model.UnrecognizedSourceTypeError{Type: format}
	}
	return p, nil
}

// Formats returns the registered format names, sorted.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.parsers))
	for k := range r.parsers {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// ParseFile opens path and parses it with the parser registered for format.
func (r *Registry) ParseFile(format, path string) ([]model.Transaction, error) {
	p, err := r.Lookup(format)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	txns, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return txns, nil
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&YNABParser{})
	r.Register(&CitiParser{})
	r.Register(&ChaseParser{})
	r.Register(&OFXParser{})
	r.Register(&CanonicalParser{})
	return r
}

// headerReader reads a CSV export whose columns are located by header name.
type headerReader struct {
	source string
	cr     *csv.Reader
	cols   map[string]int
	row    int
}

func newHeaderReader(source string, r io.Reader, required ...string) (*headerReader, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s header: %w", source, err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range required {
		if _, ok := cols[strings.ToLower(name)]; !ok {
			return nil, fmt.Errorf("%s header missing column %q", source, name)
		}
	}
	return &headerReader{source: source, cr: cr, cols: cols, row: 1}, nil
}

// next returns the next record, or io.EOF.
func (h *headerReader) next() ([]string, error) {
	rec, err := h.cr.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	h.row++
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			h.row = pe.StartLine
		}
		return nil, h.malformed(rec, err)
	}
	return rec, nil
}

// field returns the named column, or "" when absent.
func (h *headerReader) field(rec []string, name string) string {
	i, ok := h.cols[strings.ToLower(name)]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func (h *headerReader) malformed(rec []string, err error) error {
	return &model.MalformedRowError{Source: h.source, Row: h.row, Record: rec, Err: err}
}

// parseDollar parses "$1,234.56" style amounts into an unsigned value.
// Currency symbols, thousands separators, signs and whitespace are
// stripped; any other character is an error. Empty means zero.
func parseDollar(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	var bad bool
	digits := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9' || r == '.':
			return r
		case r == '$' || r == ',' || r == '-' || r == '+' || unicode.IsSpace(r):
			return -1
		}
		bad = true
		return -1
	}, s)
	if bad {
		return decimal.Zero, fmt.Errorf("parsing amount %q: not a number", s)
	}
	if digits == "" {
		return decimal.Zero, fmt.Errorf("parsing amount %q: no digits", s)
	}
	d, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return d, nil
}

// splitSigned turns a signed amount into inflow/outflow.
func splitSigned(amount decimal.Decimal) (inflow, outflow decimal.Decimal) {
	if amount.IsNegative() {
		return decimal.Zero, amount.Neg()
	}
	return amount, decimal.Zero
}
