package ledger

import (
	"testing"

	"daybook/internal/core"
)

func entry(id int64, date string, typ core.EntryType, cat string, cents int64) core.Entry {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Entry{ID: id, Date: d, Type: typ, Category: cat, Amount: core.Cents(cents)}
}

func balances(rows []Row) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.RunningBalance.Cents
	}
	return out
}

func TestRunningBalanceScenario(t *testing.T) {
	entries := []core.Entry{
		entry(1, "2024-01-01", core.Income, "Salary", 1000),
		entry(2, "2024-01-02", core.Expense, "Food", 200),
	}
	got := balances(WithRunningBalance(entries, core.Date{}, core.Date{}))
	if len(got) != 2 || got[0] != 1000 || got[1] != 800 {
		t.Fatalf("running balances = %v, want [1000 800]", got)
	}
}

func TestRunningBalanceStableAndPrefixSum(t *testing.T) {
	// Inserted out of date order, with three entries on the same day.
	entries := []core.Entry{
		entry(1, "2024-01-05", core.Expense, "Food", 50),
		entry(2, "2024-01-02", core.Income, "Salary", 500),
		entry(3, "2024-01-02", core.Expense, "Rent", 300),
		entry(4, "2024-01-02", core.Income, "Other", 20),
		entry(5, "2024-01-01", core.Income, "Salary", 100),
	}

	rows := WithRunningBalance(entries, core.Date{}, core.Date{})
	wantIDs := []int64{5, 2, 3, 4, 1}
	for i, id := range wantIDs {
		if rows[i].Entry.ID != id {
			t.Fatalf("row %d id = %d, want %d", i, rows[i].Entry.ID, id)
		}
	}

	var sum int64
	for i, r := range rows {
		sum += r.Entry.Signed().Cents
		if r.RunningBalance.Cents != sum {
			t.Fatalf("row %d balance = %d, want prefix sum %d", i, r.RunningBalance.Cents, sum)
		}
	}

	again := WithRunningBalance(entries, core.Date{}, core.Date{})
	for i := range rows {
		if again[i] != rows[i] {
			t.Fatalf("second run differs at %d: %+v vs %+v", i, again[i], rows[i])
		}
	}
	if entries[0].ID != 1 {
		t.Fatalf("input slice was reordered")
	}
}

func TestRunningBalanceRange(t *testing.T) {
	entries := []core.Entry{
		entry(1, "2024-01-01", core.Income, "Salary", 1000),
		entry(2, "2024-01-02", core.Expense, "Food", 200),
		entry(3, "2024-01-03", core.Expense, "Food", 100),
	}
	rows := WithRunningBalance(entries, core.NewDate(2024, 1, 2), core.NewDate(2024, 1, 3))
	got := balances(rows)
	if len(got) != 2 || got[0] != -200 || got[1] != -300 {
		t.Fatalf("balances = %v, want [-200 -300]", got)
	}
}

func TestDashboardTotals(t *testing.T) {
	today := core.NewDate(2024, 3, 10)
	entries := []core.Entry{
		entry(1, "2024-03-10", core.Income, "Salary", 1000),
		entry(2, "2024-03-10", core.Expense, "Food", 250),
		entry(3, "2024-03-09", core.Expense, "Food", 999),
		entry(4, "2024-03-10", core.Expense, "Utilities", 50),
	}
	got := DashboardTotals(entries, today)
	if got.Income.Cents != 1000 || got.Expense.Cents != 300 || got.Net.Cents != 700 {
		t.Fatalf("totals = %+v", got)
	}
	if empty := DashboardTotals(nil, today); empty != (Totals{}) {
		t.Fatalf("empty totals = %+v", empty)
	}
}

func TestRecentTransactions(t *testing.T) {
	var entries []core.Entry
	dates := []string{"2024-01-03", "2024-01-07", "2024-01-01", "2024-01-07", "2024-01-05", "2024-01-02", "2024-01-06"}
	for i, d := range dates {
		entries = append(entries, entry(int64(i+1), d, core.Income, "Salary", 1))
	}

	got := RecentTransactions(entries, DefaultRecent)
	wantIDs := []int64{2, 4, 7, 5, 1}
	if len(got) != len(wantIDs) {
		t.Fatalf("len = %d, want %d", len(got), len(wantIDs))
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Fatalf("recent[%d] = %d, want %d", i, got[i].ID, id)
		}
	}
	if len(RecentTransactions(entries[:2], 5)) != 2 {
		t.Fatalf("expected all entries when fewer than n")
	}
	if got := RecentTransactions(entries, 0); got == nil || len(got) != 0 {
		t.Fatalf("n = 0: got %v, want an empty slice", got)
	}
	if got := RecentTransactions(nil, 3); got == nil {
		t.Fatalf("empty input should give an empty, non-nil slice")
	}
	if got := RecentTransactions(entries, -1); len(got) != DefaultRecent {
		t.Fatalf("negative n: len = %d, want %d", len(got), DefaultRecent)
	}
}

func TestFilteredView(t *testing.T) {
	entries := []core.Entry{
		entry(1, "2024-01-01", core.Income, "Salary", 1),
		entry(2, "2024-01-01", core.Income, "Freelance", 1),
		entry(3, "2024-01-02", core.Income, "Salary", 1),
		entry(4, "2024-01-01", core.Expense, "Salary", 1),
	}
	cases := []struct {
		name string
		f    Filter
		want []int64
	}{
		{"type only", Filter{Type: core.Income}, []int64{1, 2, 3}},
		{"date", Filter{Type: core.Income, Date: core.NewDate(2024, 1, 1)}, []int64{1, 2}},
		{"category", Filter{Type: core.Income, Category: "Salary"}, []int64{1, 3}},
		{"both", Filter{Type: core.Income, Date: core.NewDate(2024, 1, 2), Category: "Salary"}, []int64{3}},
		{"expense", Filter{Type: core.Expense}, []int64{4}},
		{"no match", Filter{Type: core.Expense, Category: "Food"}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilteredView(entries, tc.f)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d entries, want %d", len(got), len(tc.want))
			}
			for i, id := range tc.want {
				if got[i].ID != id {
					t.Fatalf("entry %d = %d, want %d", i, got[i].ID, id)
				}
			}
		})
	}
}
