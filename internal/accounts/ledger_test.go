package accounts

import (
	"testing"

	"daybook/internal/core"
)

func account(id int64, typ core.AccountType, party, desc string, amount, paid int64) core.AccountEntry {
	return core.AccountEntry{
		ID:          id,
		Date:        core.NewDate(2024, 1, 1),
		Type:        typ,
		Party:       party,
		Description: desc,
		Amount:      core.Cents(amount),
		PaidAmount:  core.Cents(paid),
	}
}

func TestStatus(t *testing.T) {
	cases := []struct {
		paid int64
		want core.Status
	}{
		{0, core.StatusPending},
		{1, core.StatusPartial},
		{99, core.StatusPartial},
		{100, core.StatusPaid},
	}
	for _, tc := range cases {
		a := account(1, core.Receivable, "x", "", 100, tc.paid)
		if got := Status(a); got != tc.want {
			t.Errorf("Status(paid=%d) = %s, want %s", tc.paid, got, tc.want)
		}
		if got := Balance(a).Cents; got != 100-tc.paid {
			t.Errorf("Balance(paid=%d) = %d", tc.paid, got)
		}
	}
}

func TestApply(t *testing.T) {
	list := []core.AccountEntry{
		account(1, core.Receivable, "Acme Corp", "consulting", 100, 0),
		account(2, core.Payable, "Landlord", "office RENT", 300, 100),
		account(3, core.Receivable, "Bob", "rent share", 50, 50),
		account(4, core.Payable, "Utility Co", "", 80, 0),
	}
	cases := []struct {
		name string
		f    Filter
		want []int64
	}{
		{"all", Filter{}, []int64{1, 2, 3, 4}},
		{"receivables", Filter{Type: core.Receivable}, []int64{1, 3}},
		{"search party", Filter{Search: "acme"}, []int64{1}},
		{"search description", Filter{Search: "Rent"}, []int64{2, 3}},
		{"status pending", Filter{Status: core.StatusPending}, []int64{1, 4}},
		{"status partial", Filter{Status: core.StatusPartial}, []int64{2}},
		{"combined", Filter{Type: core.Receivable, Search: "rent", Status: core.StatusPaid}, []int64{3}},
		{"nothing", Filter{Type: core.Payable, Status: core.StatusPaid}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Apply(list, tc.f)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d accounts, want %d", len(got), len(tc.want))
			}
			for i, id := range tc.want {
				if got[i].ID != id {
					t.Fatalf("account %d = %d, want %d", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	list := []core.AccountEntry{
		account(1, core.Receivable, "a", "", 1000, 250),
		account(2, core.Receivable, "b", "", 500, 500),
		account(3, core.Payable, "c", "", 400, 100),
	}
	got := Summarize(list)
	if got.TotalReceivables.Cents != 750 || got.TotalPayables.Cents != 300 || got.NetPosition.Cents != 450 {
		t.Fatalf("summary = %+v", got)
	}
	if empty := Summarize(nil); empty != (Summary{}) {
		t.Fatalf("empty summary = %+v", empty)
	}
}
