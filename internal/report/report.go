// Package report renders reconciliation results as plain text.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/cleared-dev/reconcile/internal/model"
	"github.com/cleared-dev/reconcile/internal/reconcile"
)

// Render writes the per-month match tables, totals, extra months and
// unclaimed transactions for one reconciled pair.
func Render(w io.Writer, name string, res *reconcile.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	if name != "" {
		fmt.Fprintf(tw, "== %s ==\n", name)
	}
	for _, m := range res.Months {
		renderMonth(tw, m)
	}

	fmt.Fprintln(tw, "-----")
	if len(res.ExtraStatementMonths) > 0 {
		months := make([]string, len(res.ExtraStatementMonths))
		for i, m := range res.ExtraStatementMonths {
			months[i] = m.String()
		}
		fmt.Fprintf(tw, "Months found in statement and not in budget: %s\n", strings.Join(months, ", "))
	}
	renderList(tw, "Unclaimed statement transactions", res.UnclaimedStatement)
	renderList(tw, "Unclaimed budget transactions", res.UnclaimedBudget)
	if len(res.UnclaimedStatement) == 0 && len(res.UnclaimedBudget) == 0 {
		fmt.Fprintln(tw, "All transactions matched.")
	}

	return tw.Flush()
}

func renderMonth(tw *tabwriter.Writer, m reconcile.MonthResult) {
	fmt.Fprintf(tw, "Month %s\n", m.Month)
	if len(m.Matched) > 0 {
		fmt.Fprintln(tw, "  STATEMENT\tBUDGET")
		for _, g := range m.Matched {
			for i := range g.Statement {
				fmt.Fprintf(tw, "  %s\t%s\n", g.Statement[i], g.Budget[i])
			}
		}
	}
	fmt.Fprintf(tw, "-- Statement total: %s\n", model.FormatAmount(m.StatementTotal))
	fmt.Fprintf(tw, "-- Budget total: %s\n", model.FormatAmount(m.BudgetTotal))
	if !m.Balanced() {
		fmt.Fprintf(tw, "---- DIFFERENCE: %s\n", model.FormatAmount(m.Delta()))
	}
}

func renderList(tw *tabwriter.Writer, title string, txns []model.Transaction) {
	if len(txns) == 0 {
		return
	}
	fmt.Fprintf(tw, "%s:\n", title)
	for _, t := range txns {
		fmt.Fprintf(tw, "  %s\n", t)
	}
}
