// Package report computes profit and loss over a date range and renders the
// result for download, terminal display or spreadsheet export.
package report

import (
	"fmt"

	"daybook/internal/core"
	"daybook/internal/ledger"
)

// Summary is the profit/loss of one inclusive date range.
type Summary struct {
	From           core.Date    `json:"from"`
	To             core.Date    `json:"to"`
	TotalIncome    core.Money   `json:"totalIncome"`
	TotalExpenses  core.Money   `json:"totalExpenses"`
	Net            core.Money   `json:"net"`
	IncomeEntries  []core.Entry `json:"incomeEntries"`
	ExpenseEntries []core.Entry `json:"expenseEntries"`
}

// NetLabel is "Net Profit" for a non-negative net and "Net Loss" otherwise.
func (s Summary) NetLabel() string {
	if s.Net.Cents < 0 {
		return "Net Loss"
	}
	return "Net Profit"
}

// AbsNet is the magnitude of Net, shown next to NetLabel.
func (s Summary) AbsNet() core.Money {
	if s.Net.Cents < 0 {
		return core.Cents(-s.Net.Cents)
	}
	return s.Net
}

// ProfitLoss sums the entries dated within [from, to]. Both bounds are
// required and from may not be after to.
func ProfitLoss(entries []core.Entry, from, to core.Date) (Summary, error) {
	if from.IsZero() || to.IsZero() {
		return Summary{}, core.ErrMissingRange
	}
	if from.Compare(to) > 0 {
		return Summary{}, fmt.Errorf("%w: from %s is after to %s", core.ErrValidation, from, to)
	}

	inRange := ledger.Select(entries, ledger.InRange(from, to))
	totals := ledger.Sum(inRange)

	return Summary{
		From:           from,
		To:             to,
		TotalIncome:    totals.Income,
		TotalExpenses:  totals.Expense,
		Net:            totals.Net,
		IncomeEntries:  ledger.Select(inRange, ledger.OfType(core.Income)),
		ExpenseEntries: ledger.Select(inRange, ledger.OfType(core.Expense)),
	}, nil
}
