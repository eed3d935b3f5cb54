// Package accounts tracks receivables and payables with partial payments.
package accounts

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"daybook/internal/core"
	"daybook/internal/docstore"
	"daybook/internal/ids"
	"daybook/internal/log"
)

type (
	// NewAccount holds the caller supplied fields of an account to add.
	NewAccount struct {
		Date        core.Date
		Type        core.AccountType
		Party       string
		Amount      core.Money
		Description string
		DueDate     core.Date
	}

	// AccountUpdate replaces every editable field. PaidAmount is kept.
	AccountUpdate struct {
		Date        core.Date
		Type        core.AccountType
		Party       string
		Amount      core.Money
		Description string
		DueDate     core.Date
	}
)

// Store holds accounts in insertion order and writes the whole list through
// to the document store after each mutation.
type Store struct {
	mu       sync.Mutex
	docs     docstore.Store
	ids      *ids.Generator
	logger   *log.Logger
	accounts []core.AccountEntry
}

func New(docs docstore.Store, gen *ids.Generator, logger *log.Logger) *Store {
	if gen == nil {
		gen = ids.NewGenerator()
	}
	if logger == nil {
		logger = log.Default(log.ComponentAccounts)
	}
	return &Store{
		docs:   docs,
		ids:    gen,
		logger: logger.WithComponent(log.ComponentAccounts),
	}
}

// Open is New followed by Load.
func Open(ctx context.Context, docs docstore.Store, gen *ids.Generator, logger *log.Logger) (*Store, error) {
	s := New(docs, gen, logger)
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads the accounts document. An absent document means no accounts.
func (s *Store) Load(ctx context.Context) error {
	var accounts []core.AccountEntry
	raw, ok, err := s.docs.Load(ctx, docstore.KeyAccounts)
	if err != nil {
		return fmt.Errorf("%w: load accounts: %w", core.ErrPersistence, err)
	}
	if ok {
		if err := json.Unmarshal(raw, &accounts); err != nil {
			return fmt.Errorf("%w: decode accounts: %w", core.ErrPersistence, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = accounts
	for _, a := range accounts {
		s.ids.Observe(a.ID)
	}
	s.logger.InfoContext(ctx, "Accounts loaded", log.FieldCount, len(accounts))
	return nil
}

func (s *Store) AddAccount(ctx context.Context, in NewAccount) (core.AccountEntry, error) {
	a := core.AccountEntry{
		Date:        in.Date,
		Type:        in.Type,
		Party:       strings.TrimSpace(in.Party),
		Amount:      in.Amount,
		Description: in.Description,
		DueDate:     in.DueDate,
	}
	if err := a.Validate(); err != nil {
		return core.AccountEntry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = s.ids.Next()
	s.accounts = append(s.accounts, a)

	s.logger.InfoContext(ctx, "Account created", log.NewFields().
		WithAccount(a.ID, a.Party, a.Amount.Cents).
		WithOperation(log.OpCreate).ToSlice()...)

	return a, s.save(ctx)
}

// UpdateAccount overwrites the editable fields of account id. The new amount
// may not fall below what has already been paid.
func (s *Store) UpdateAccount(ctx context.Context, id int64, in AccountUpdate) (core.AccountEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return core.AccountEntry{}, fmt.Errorf("%w: account %d", core.ErrNotFound, id)
	}

	updated := s.accounts[i]
	updated.Date = in.Date
	updated.Type = in.Type
	updated.Party = strings.TrimSpace(in.Party)
	updated.Amount = in.Amount
	updated.Description = in.Description
	updated.DueDate = in.DueDate
	if err := updated.Validate(); err != nil {
		return core.AccountEntry{}, err
	}
	if updated.Amount.Cents < updated.PaidAmount.Cents {
		return core.AccountEntry{}, fmt.Errorf("%w: amount %s is below paid amount %s",
			core.ErrInvalidAmount, updated.Amount, updated.PaidAmount)
	}
	s.accounts[i] = updated

	s.logger.InfoContext(ctx, "Account updated", log.NewFields().
		WithAccount(updated.ID, updated.Party, updated.Amount.Cents).
		WithOperation(log.OpUpdate).ToSlice()...)

	return updated, s.save(ctx)
}

// RecordPayment adds payment to the paid amount of account id. Payments that
// are not positive or exceed the outstanding balance are rejected and leave
// the account unchanged.
func (s *Store) RecordPayment(ctx context.Context, id int64, payment core.Money) (core.AccountEntry, error) {
	if payment.Cents <= 0 {
		return core.AccountEntry{}, fmt.Errorf("%w: payment must be positive", core.ErrInvalidAmount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return core.AccountEntry{}, fmt.Errorf("%w: account %d", core.ErrNotFound, id)
	}
	a := s.accounts[i]
	if balance := Balance(a); payment.Cents > balance.Cents {
		return core.AccountEntry{}, fmt.Errorf("%w: payment %s, balance %s", core.ErrOverpayment, payment, balance)
	}

	a.PaidAmount = a.PaidAmount.Add(payment)
	s.accounts[i] = a

	s.logger.InfoContext(ctx, "Payment recorded", log.NewFields().
		WithAccount(a.ID, a.Party, payment.Cents).
		WithOperation(log.OpPayment).ToSlice()...)

	return a, s.save(ctx)
}

// DeleteAccount removes account id whatever its payment state. Unknown ids are a no-op.
func (s *Store) DeleteAccount(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	s.accounts = slices.Delete(s.accounts, i, i+1)

	s.logger.InfoContext(ctx, "Account deleted", log.FieldID, id, log.FieldOperation, log.OpDelete)
	return true, s.save(ctx)
}

func (s *Store) Get(id int64) (core.AccountEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.AccountEntry{}, fmt.Errorf("%w: account %d", core.ErrNotFound, id)
	}
	return s.accounts[i], nil
}

// Accounts returns every account in insertion order.
func (s *Store) Accounts() []core.AccountEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.accounts)
}

func (s *Store) indexOf(id int64) int {
	return slices.IndexFunc(s.accounts, func(a core.AccountEntry) bool { return a.ID == id })
}

func (s *Store) save(ctx context.Context) error {
	list := s.accounts
	if list == nil {
		list = []core.AccountEntry{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("%w: encode accounts: %w", core.ErrPersistence, err)
	}
	if err := s.docs.Save(ctx, docstore.KeyAccounts, b); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist accounts", log.NewFields().
			WithError(err).
			WithErrorType(log.ErrorTypePersistence).ToSlice()...)
		return fmt.Errorf("%w: save accounts: %w", core.ErrPersistence, err)
	}
	return nil
}
