// Package reconcile matches statement transactions against budget
// transactions by month and exact amount.
package reconcile

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/reconcile/internal/model"
)

// Direction separates money in from money out within a month.
type Direction string

const (
	Inflow  Direction = "inflow"
	Outflow Direction = "outflow"
)

// MatchedGroup is a set of same-amount transactions with equal counts on
// both sides. Members within a group are interchangeable.
type MatchedGroup struct {
	Direction Direction
	Amount    decimal.Decimal // unsigned
	Statement []model.Transaction
	Budget    []model.Transaction
}

// MonthResult is the outcome of reconciling one month.
type MonthResult struct {
	Month              model.Month
	Matched            []MatchedGroup
	UnclaimedStatement []model.Transaction
	UnclaimedBudget    []model.Transaction
	StatementTotal     decimal.Decimal // signed sum
	BudgetTotal        decimal.Decimal // signed sum
}

// Delta returns budget total minus statement total.
func (m MonthResult) Delta() decimal.Decimal {
	return m.BudgetTotal.Sub(m.StatementTotal)
}

// Balanced reports whether both sides total the same.
func (m MonthResult) Balanced() bool {
	return m.BudgetTotal.Equal(m.StatementTotal)
}

// Result is the outcome of a full reconciliation.
type Result struct {
	Months             []MonthResult // ascending, one per budget month
	UnclaimedStatement []model.Transaction
	UnclaimedBudget    []model.Transaction
	// ExtraStatementMonths lists months present only in the statement.
	// Their transactions are not reconciled and are not unclaimed.
	ExtraStatementMonths []model.Month
}

// MatchedGroups returns the number of matched groups across all months.
func (r *Result) MatchedGroups() int {
	n := 0
	for _, m := range r.Months {
		n += len(m.Matched)
	}
	return n
}

// Reconcile matches statement transactions against budget transactions.
// Budget transactions must already have their splits collapsed.
func Reconcile(statement, budget []model.Transaction) (*Result, error) {
	statementByMonth := bucketByMonth(statement)
	budgetByMonth := bucketByMonth(budget)

	res := &Result{}
	for _, month := range sortedMonths(budgetByMonth) {
		mr, err := reconcileMonth(month, statementByMonth[month], budgetByMonth[month])
		if err != nil {
			return nil, fmt.Errorf("reconciling %s: %w", month, err)
		}
		res.Months = append(res.Months, mr)
		res.UnclaimedStatement = append(res.UnclaimedStatement, mr.UnclaimedStatement...)
		res.UnclaimedBudget = append(res.UnclaimedBudget, mr.UnclaimedBudget...)
	}

	for _, month := range sortedMonths(statementByMonth) {
		if _, ok := budgetByMonth[month]; !ok {
			res.ExtraStatementMonths = append(res.ExtraStatementMonths, month)
		}
	}

	sortTransactions(res.UnclaimedStatement)
	sortTransactions(res.UnclaimedBudget)
	return res, nil
}

func reconcileMonth(month model.Month, statement, budget []model.Transaction) (MonthResult, error) {
	statementAmts, err := bucketByAmount(statement)
	if err != nil {
		return MonthResult{}, err
	}
	budgetAmts, err := bucketByAmount(budget)
	if err != nil {
		return MonthResult{}, err
	}

	mr := MonthResult{
		Month:          month,
		StatementTotal: total(statement),
		BudgetTotal:    total(budget),
	}
	mr.match(Inflow, statementAmts.in, budgetAmts.in)
	mr.match(Outflow, statementAmts.out, budgetAmts.out)

	sortTransactions(mr.UnclaimedStatement)
	sortTransactions(mr.UnclaimedBudget)
	return mr, nil
}

// match pairs same-amount groups of equal size. A count mismatch unclaims
// every transaction of that amount on both sides.
func (mr *MonthResult) match(dir Direction, statement, budget amountMap) {
	for _, key := range statement.keys() {
		s := statement[key]
		b := budget[key]
		if len(s.txns) == len(b.txns) {
			mr.Matched = append(mr.Matched, MatchedGroup{
				Direction: dir,
				Amount:    s.amount,
				Statement: s.txns,
				Budget:    b.txns,
			})
			continue
		}
		mr.UnclaimedStatement = append(mr.UnclaimedStatement, s.txns...)
		mr.UnclaimedBudget = append(mr.UnclaimedBudget, b.txns...)
	}

	for _, key := range budget.keys() {
		if _, ok := statement[key]; !ok {
			mr.UnclaimedBudget = append(mr.UnclaimedBudget, budget[key].txns...)
		}
	}
}

func bucketByMonth(txns []model.Transaction) map[model.Month][]model.Transaction {
	byMonth := make(map[model.Month][]model.Transaction)
	for _, t := range txns {
		m := t.Month()
		byMonth[m] = append(byMonth[m], t)
	}
	return byMonth
}

func sortedMonths(byMonth map[model.Month][]model.Transaction) []model.Month {
	months := make([]model.Month, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	slices.SortFunc(months, func(a, b model.Month) int {
		switch {
		case a.Before(b):
			return -1
		case b.Before(a):
			return 1
		}
		return 0
	})
	return months
}

type amountGroup struct {
	amount decimal.Decimal
	txns   []model.Transaction
}

// amountMap groups transactions by exact amount value. Keys are the
// canonical decimal string so 2.5 and 2.50 share a bucket.
type amountMap map[string]*amountGroup

func (m amountMap) add(amount decimal.Decimal, t model.Transaction) {
	key := amount.String()
	g, ok := m[key]
	if !ok {
		g = &amountGroup{amount: amount}
		m[key] = g
	}
	g.txns = append(g.txns, t)
}

// keys returns keys ordered by amount value.
func (m amountMap) keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		return m[a].amount.Cmp(m[b].amount)
	})
	return keys
}

type inOut struct {
	in  amountMap
	out amountMap
}

func bucketByAmount(txns []model.Transaction) (inOut, error) {
	buckets := inOut{in: make(amountMap), out: make(amountMap)}
	for _, t := range txns {
		if !t.Inflow.IsZero() && !t.Outflow.IsZero() {
			return inOut{}, &model.InvalidInputError{
				Reason:       "transaction has both inflow and outflow",
				Transactions: []model.Transaction{t},
			}
		}
		if !t.Inflow.IsZero() {
			buckets.in.add(t.Inflow, t)
		} else {
			buckets.out.add(t.Outflow, t)
		}
	}
	return buckets, nil
}

func total(txns []model.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txns {
		sum = sum.Add(t.Inflow).Sub(t.Outflow)
	}
	return sum
}

// sortTransactions orders by (date, signed amount) ascending.
func sortTransactions(txns []model.Transaction) {
	slices.SortStableFunc(txns, func(a, b model.Transaction) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return a.Amount().Cmp(b.Amount())
	})
}
