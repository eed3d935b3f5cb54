package core

import (
	"fmt"
	"strings"
)

const (
	Income  EntryType = "income"
	Expense EntryType = "expense"

	Receivable AccountType = "receivable"
	Payable    AccountType = "payable"

	StatusPending Status = "pending"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
)

type (
	EntryType   string
	AccountType string
	Status      string

	// Entry is a single income or expense record.
	Entry struct {
		ID          int64     `json:"id"`
		Date        Date      `json:"date"`
		Type        EntryType `json:"type"`
		Category    string    `json:"category"`
		Amount      Money     `json:"amount"`
		Description string    `json:"description"`
	}

	// AccountEntry is a receivable or payable obligation with partial payments.
	AccountEntry struct {
		ID          int64       `json:"id"`
		Date        Date        `json:"date"`
		Type        AccountType `json:"type"`
		Party       string      `json:"party"`
		Amount      Money       `json:"amount"`
		Description string      `json:"description"`
		DueDate     Date        `json:"dueDate"`
		PaidAmount  Money       `json:"paidAmount"`
	}
)

// EntryTypes lists the entry types in display order.
var EntryTypes = []EntryType{Income, Expense}

func (t EntryType) IsValid() bool { return t == Income || t == Expense }
func (t EntryType) String() string { return string(t) }

// ParseEntryType accepts "income" or "expense", case-insensitively.
func ParseEntryType(s string) (EntryType, error) {
	t := EntryType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
	return t, nil
}

func (t AccountType) IsValid() bool  { return t == Receivable || t == Payable }
func (t AccountType) String() string { return string(t) }

func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
	return t, nil
}

func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusPartial || s == StatusPaid
}

// ParseStatus accepts pending, partial or paid. An empty string is allowed and means "any".
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if st == "" || st.IsValid() {
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
}

// Signed returns the entry contribution to a running balance.
func (e Entry) Signed() Money {
	if e.Type == Expense {
		return Money{Cents: -e.Amount.Cents}
	}
	return e.Amount
}

func (e Entry) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if !e.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, e.Type)
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	return nil
}

func (a AccountEntry) Validate() error {
	if err := a.Date.Validate(); err != nil {
		return err
	}
	if !a.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, a.Type)
	}
	if strings.TrimSpace(a.Party) == "" {
		return ErrEmptyParty
	}
	if err := a.Amount.Validate(); err != nil {
		return err
	}
	return nil
}
