package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2024-01-01", true},
		{"2024-12-31", true},
		{" 2024-02-29 ", true},
		{"2023-02-29", false},
		{"2024-1-01", false},
		{"24-01-01", false},
		{"2024/01/01", false},
		{"2024-01-01T10:00:00Z", false},
		{"", false},
	}
	for _, tc := range cases {
		d, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("%q expected ok, got %v", tc.in, err)
			}
			if d.IsZero() {
				t.Fatalf("%q parsed to zero date", tc.in)
			}
			continue
		}
		if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("%q expected validation error, got %v", tc.in, err)
		}
	}
}

func TestDateBetween(t *testing.T) {
	d := NewDate(2024, 1, 15)
	cases := []struct {
		from, to Date
		want     bool
	}{
		{Date{}, Date{}, true},
		{NewDate(2024, 1, 15), NewDate(2024, 1, 15), true},
		{NewDate(2024, 1, 16), Date{}, false},
		{Date{}, NewDate(2024, 1, 14), false},
		{NewDate(2024, 1, 1), NewDate(2024, 1, 31), true},
	}
	for i, tc := range cases {
		if got := d.Between(tc.from, tc.to); got != tc.want {
			t.Errorf("case %d: Between(%s, %s) = %v, want %v", i, tc.from, tc.to, got, tc.want)
		}
	}
}

func TestDateJSON(t *testing.T) {
	var a AccountEntry
	if err := json.Unmarshal([]byte(`{"date":"2024-03-05","dueDate":""}`), &a); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if a.Date != NewDate(2024, 3, 5) {
		t.Fatalf("date = %s", a.Date)
	}
	if !a.DueDate.IsZero() {
		t.Fatalf("expected empty due date, got %s", a.DueDate)
	}
	if err := json.Unmarshal([]byte(`{"date":"05/03/2024"}`), &a); err == nil {
		t.Fatalf("expected error for non ISO date")
	}
}

func TestEntryValidate(t *testing.T) {
	good := Entry{Date: NewDate(2025, 1, 1), Type: Income, Category: "Salary", Amount: Cents(100)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		e    Entry
		want error
	}{
		{Entry{Type: Income, Category: "c", Amount: Cents(1)}, ErrInvalidDate},
		{Entry{Date: NewDate(2025, 1, 1), Type: "transfer", Category: "c", Amount: Cents(1)}, ErrInvalidType},
		{Entry{Date: NewDate(2025, 1, 1), Type: Expense, Category: "  ", Amount: Cents(1)}, ErrEmptyCategory},
		{Entry{Date: NewDate(2025, 1, 1), Type: Expense, Category: "c", Amount: Cents(0)}, ErrInvalidAmount},
		{Entry{Date: NewDate(2025, 1, 1), Type: Expense, Category: "c", Amount: Cents(-5)}, ErrInvalidAmount},
	}
	for i, tc := range bads {
		err := tc.e.Validate()
		if !errors.Is(err, tc.want) {
			t.Fatalf("case %d: expected %v, got %v", i, tc.want, err)
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d: expected validation category, got %v", i, err)
		}
	}
}

func TestAccountValidate(t *testing.T) {
	good := AccountEntry{Date: NewDate(2025, 1, 1), Type: Payable, Party: "Acme", Amount: Cents(500)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bad := good
	bad.Party = ""
	if err := bad.Validate(); !errors.Is(err, ErrEmptyParty) {
		t.Fatalf("expected ErrEmptyParty, got %v", err)
	}
}

func TestEntrySigned(t *testing.T) {
	in := Entry{Type: Income, Amount: Cents(250)}
	out := Entry{Type: Expense, Amount: Cents(250)}
	if in.Signed().Cents != 250 || out.Signed().Cents != -250 {
		t.Fatalf("signed = %d / %d", in.Signed().Cents, out.Signed().Cents)
	}
}

func TestParseTypes(t *testing.T) {
	if ty, err := ParseEntryType("Income"); err != nil || ty != Income {
		t.Fatalf("ParseEntryType = %q, %v", ty, err)
	}
	if _, err := ParseEntryType("loan"); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
	if ty, err := ParseAccountType("PAYABLE"); err != nil || ty != Payable {
		t.Fatalf("ParseAccountType = %q, %v", ty, err)
	}
	if st, err := ParseStatus(""); err != nil || st != "" {
		t.Fatalf("ParseStatus empty = %q, %v", st, err)
	}
	if _, err := ParseStatus("overdue"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
