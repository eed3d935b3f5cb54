// Package ledger derives dashboard totals, filtered views and running
// balances from a flat list of entries. Every function is pure: the input
// slice is never modified and results are recomputed on each call.
package ledger

import (
	"sort"

	"daybook/internal/core"
)

// DefaultRecent is the number of entries shown as recent transactions.
const DefaultRecent = 5

// Totals is the income/expense split of a set of entries.
type Totals struct {
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
	Net     core.Money `json:"net"`
}

// Row is one ledger line with the balance after applying it.
type Row struct {
	Entry          core.Entry `json:"entry"`
	RunningBalance core.Money `json:"runningBalance"`
}

// Filter selects entries for a per-type view. Zero Date and empty Category match everything.
type Filter struct {
	Type     core.EntryType
	Date     core.Date
	Category string
}

// Predicate reports whether an entry should be kept.
type Predicate func(core.Entry) bool

// OfType matches entries of type t.
func OfType(t core.EntryType) Predicate {
	return func(e core.Entry) bool { return e.Type == t }
}

// OnDate matches entries dated d.
func OnDate(d core.Date) Predicate {
	return func(e core.Entry) bool { return e.Date.Compare(d) == 0 }
}

// InCategory matches entries whose category equals c.
func InCategory(c string) Predicate {
	return func(e core.Entry) bool { return e.Category == c }
}

// InRange matches entries with from <= date <= to; zero bounds are open.
func InRange(from, to core.Date) Predicate {
	return func(e core.Entry) bool { return e.Date.Between(from, to) }
}

// Select returns the entries matching every predicate, in input order.
func Select(entries []core.Entry, preds ...Predicate) []core.Entry {
	out := make([]core.Entry, 0, len(entries))
next:
	for _, e := range entries {
		for _, p := range preds {
			if !p(e) {
				continue next
			}
		}
		out = append(out, e)
	}
	return out
}

// Sum splits entries by type and returns income, expense and their difference.
func Sum(entries []core.Entry) Totals {
	var t Totals
	for _, e := range entries {
		switch e.Type {
		case core.Income:
			t.Income = t.Income.Add(e.Amount)
		case core.Expense:
			t.Expense = t.Expense.Add(e.Amount)
		}
	}
	t.Net = t.Income.Sub(t.Expense)
	return t
}

// DashboardTotals sums the entries dated today.
func DashboardTotals(entries []core.Entry, today core.Date) Totals {
	return Sum(Select(entries, OnDate(today)))
}

// RecentTransactions returns the n most recent entries by date, newest first.
// Entries on the same date keep their insertion order. A negative n means
// DefaultRecent and n == 0 yields an empty, non-nil slice.
func RecentTransactions(entries []core.Entry, n int) []core.Entry {
	if n < 0 {
		n = DefaultRecent
	}
	sorted := append(make([]core.Entry, 0, len(entries)), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Compare(sorted[j].Date) > 0
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// FilteredView returns the entries of f.Type, narrowed by the optional date and category.
func FilteredView(entries []core.Entry, f Filter) []core.Entry {
	preds := []Predicate{OfType(f.Type)}
	if !f.Date.IsZero() {
		preds = append(preds, OnDate(f.Date))
	}
	if f.Category != "" {
		preds = append(preds, InCategory(f.Category))
	}
	return Select(entries, preds...)
}

// WithRunningBalance filters entries to [from, to], sorts them by date
// ascending (ties keep insertion order) and attaches the cumulative net
// after each entry.
func WithRunningBalance(entries []core.Entry, from, to core.Date) []Row {
	selected := Select(entries, InRange(from, to))
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Date.Compare(selected[j].Date) < 0
	})

	rows := make([]Row, len(selected))
	var balance core.Money
	for i, e := range selected {
		balance = balance.Add(e.Signed())
		rows[i] = Row{Entry: e, RunningBalance: balance}
	}
	return rows
}
