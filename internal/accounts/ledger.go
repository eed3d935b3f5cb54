package accounts

import (
	"strings"

	"daybook/internal/core"
)

// Filter narrows an account list. Zero fields match everything.
type Filter struct {
	Type   core.AccountType
	Search string
	Status core.Status
}

// Summary aggregates outstanding balances.
type Summary struct {
	TotalReceivables core.Money `json:"totalReceivables"`
	TotalPayables    core.Money `json:"totalPayables"`
	NetPosition      core.Money `json:"netPosition"`
}

// Balance is what is still owed on a.
func Balance(a core.AccountEntry) core.Money {
	return a.Amount.Sub(a.PaidAmount)
}

// Status derives the payment state from paid and total amounts.
func Status(a core.AccountEntry) core.Status {
	switch {
	case a.PaidAmount.Cents <= 0:
		return core.StatusPending
	case a.PaidAmount.Cents >= a.Amount.Cents:
		return core.StatusPaid
	default:
		return core.StatusPartial
	}
}

// Apply returns the accounts matching f, in input order. Search is a
// case-insensitive substring match against party or description.
func Apply(accounts []core.AccountEntry, f Filter) []core.AccountEntry {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]core.AccountEntry, 0, len(accounts))
	for _, a := range accounts {
		if f.Type != "" && a.Type != f.Type {
			continue
		}
		if f.Status != "" && Status(a) != f.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(a.Party), search) &&
			!strings.Contains(strings.ToLower(a.Description), search) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Summarize totals the outstanding balance per account type.
func Summarize(accounts []core.AccountEntry) Summary {
	var s Summary
	for _, a := range accounts {
		switch a.Type {
		case core.Receivable:
			s.TotalReceivables = s.TotalReceivables.Add(Balance(a))
		case core.Payable:
			s.TotalPayables = s.TotalPayables.Add(Balance(a))
		}
	}
	s.NetPosition = s.TotalReceivables.Sub(s.TotalPayables)
	return s
}
