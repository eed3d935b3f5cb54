package accounts

import (
	"context"
	"errors"
	"testing"

	"daybook/internal/core"
	"daybook/internal/docstore/memory"
)

func newStore(t *testing.T) (*Store, *memory.Store) {
	t.Helper()
	docs := memory.New()
	s, err := Open(context.Background(), docs, nil, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s, docs
}

func addAccount(t *testing.T, s *Store, typ core.AccountType, party string, cents int64) core.AccountEntry {
	t.Helper()
	a, err := s.AddAccount(context.Background(), NewAccount{
		Date:   core.NewDate(2024, 1, 1),
		Type:   typ,
		Party:  party,
		Amount: core.Cents(cents),
	})
	if err != nil {
		t.Fatalf("add account: %v", err)
	}
	return a
}

func TestPaymentScenario(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	a := addAccount(t, s, core.Receivable, "Acme", 500)

	if Status(a) != core.StatusPending || a.PaidAmount.Cents != 0 {
		t.Fatalf("new account = %+v, status %s", a, Status(a))
	}

	paid, err := s.RecordPayment(ctx, a.ID, core.Cents(500))
	if err != nil {
		t.Fatalf("pay 500: %v", err)
	}
	if Status(paid) != core.StatusPaid || Balance(paid).Cents != 0 {
		t.Fatalf("after full payment: status %s balance %d", Status(paid), Balance(paid).Cents)
	}

	if _, err := s.RecordPayment(ctx, a.ID, core.Cents(1)); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error on overpayment, got %v", err)
	}
	got, _ := s.Get(a.ID)
	if got.PaidAmount.Cents != 500 {
		t.Fatalf("overpayment changed paid amount to %d", got.PaidAmount.Cents)
	}
}

func TestRecordPaymentRules(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	a := addAccount(t, s, core.Payable, "Landlord", 1000)

	cases := []struct {
		name   string
		id     int64
		cents  int64
		want   error
		paid   int64
		status core.Status
	}{
		{"zero", a.ID, 0, core.ErrInvalidAmount, 0, core.StatusPending},
		{"negative", a.ID, -5, core.ErrInvalidAmount, 0, core.StatusPending},
		{"unknown id", 42, 10, core.ErrNotFound, 0, core.StatusPending},
		{"partial", a.ID, 300, nil, 300, core.StatusPartial},
		{"over balance", a.ID, 701, core.ErrOverpayment, 300, core.StatusPartial},
		{"rest", a.ID, 700, nil, 1000, core.StatusPaid},
	}
	for _, tc := range cases {
		_, err := s.RecordPayment(ctx, tc.id, core.Cents(tc.cents))
		if tc.want == nil && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
		got, _ := s.Get(a.ID)
		if got.PaidAmount.Cents != tc.paid || Status(got) != tc.status {
			t.Fatalf("%s: paid=%d status=%s, want %d %s", tc.name, got.PaidAmount.Cents, Status(got), tc.paid, tc.status)
		}
		if got.PaidAmount.Cents < 0 || got.PaidAmount.Cents > got.Amount.Cents {
			t.Fatalf("%s: paid amount out of bounds: %+v", tc.name, got)
		}
	}
}

func TestAddAccountValidation(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	day := core.NewDate(2024, 1, 1)

	cases := []struct {
		name string
		in   NewAccount
		want error
	}{
		{"no date", NewAccount{Type: core.Receivable, Party: "A", Amount: core.Cents(1)}, core.ErrInvalidDate},
		{"bad type", NewAccount{Date: day, Type: "loan", Party: "A", Amount: core.Cents(1)}, core.ErrInvalidType},
		{"blank party", NewAccount{Date: day, Type: core.Receivable, Party: " ", Amount: core.Cents(1)}, core.ErrEmptyParty},
		{"zero amount", NewAccount{Date: day, Type: core.Receivable, Party: "A"}, core.ErrInvalidAmount},
	}
	for _, tc := range cases {
		if _, err := s.AddAccount(ctx, tc.in); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
	if len(s.Accounts()) != 0 {
		t.Fatalf("invalid accounts stored")
	}
}

func TestUpdateAccountKeepsPaidAmount(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	a := addAccount(t, s, core.Receivable, "Acme", 1000)
	if _, err := s.RecordPayment(ctx, a.ID, core.Cents(400)); err != nil {
		t.Fatalf("pay: %v", err)
	}

	upd := AccountUpdate{
		Date:        core.NewDate(2024, 2, 1),
		Type:        core.Payable,
		Party:       "Acme Ltd",
		Amount:      core.Cents(600),
		Description: "renegotiated",
		DueDate:     core.NewDate(2024, 3, 1),
	}
	got, err := s.UpdateAccount(ctx, a.ID, upd)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.PaidAmount.Cents != 400 || got.Party != "Acme Ltd" || got.Type != core.Payable {
		t.Fatalf("updated = %+v", got)
	}

	upd.Amount = core.Cents(399)
	if _, err := s.UpdateAccount(ctx, a.ID, upd); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error below paid amount, got %v", err)
	}
	if _, err := s.UpdateAccount(ctx, 1, upd); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteAccountAndReload(t *testing.T) {
	s, docs := newStore(t)
	ctx := context.Background()
	a := addAccount(t, s, core.Receivable, "Acme", 100)
	b := addAccount(t, s, core.Payable, "Bank", 200)
	if _, err := s.RecordPayment(ctx, a.ID, core.Cents(50)); err != nil {
		t.Fatalf("pay: %v", err)
	}

	if removed, err := s.DeleteAccount(ctx, 7); removed || err != nil {
		t.Fatalf("unknown delete: %v %v", removed, err)
	}
	if removed, err := s.DeleteAccount(ctx, a.ID); !removed || err != nil {
		t.Fatalf("delete partially paid account: %v %v", removed, err)
	}

	reopened, err := Open(ctx, docs, nil, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got := reopened.Accounts()
	if len(got) != 1 || got[0].ID != b.ID || got[0].Amount.Cents != 200 {
		t.Fatalf("reloaded = %+v", got)
	}
}
