// Package services orchestrates the daybook stores, derived views and the
// optional side channels (change events, Sheets export).
package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"daybook/internal/accounts"
	"daybook/internal/amqp"
	"daybook/internal/backup"
	"daybook/internal/core"
	"daybook/internal/docstore"
	"daybook/internal/entries"
	"daybook/internal/ids"
	"daybook/internal/ledger"
	"daybook/internal/log"
	"daybook/internal/report"
	"daybook/internal/sheets"
)

var (
	// ErrConfirmationRequired is returned by ImportBackup without an explicit confirmation.
	ErrConfirmationRequired = fmt.Errorf("%w: import replaces all entries and categories and must be confirmed", core.ErrValidation)
	// ErrSheetsDisabled is returned when no report writer is configured.
	ErrSheetsDisabled = errors.New("sheets export is not configured")
)

// Publisher delivers change notifications. *amqp.Client satisfies it.
type Publisher interface {
	PublishChange(ctx context.Context, e amqp.ChangeEvent) error
}

// Options carries the optional collaborators of a Service.
type Options struct {
	Publisher Publisher
	Sheets    sheets.ReportWriter
	Logger    *log.Logger
	Now       func() time.Time
}

// Dashboard is today's totals plus the most recent entries.
type Dashboard struct {
	Today  core.Date     `json:"today"`
	Totals ledger.Totals `json:"totals"`
	Recent []core.Entry  `json:"recent"`
}

// ImportResult describes a completed backup import.
type ImportResult struct {
	Entries    int `json:"entries"`
	Categories int `json:"categories"`
}

type Service struct {
	entries   *entries.Store
	accounts  *accounts.Store
	publisher Publisher
	sheets    sheets.ReportWriter
	logger    *log.Logger
	now       func() time.Time

	// version increases on every change to the stores.
	version atomic.Int64
}

func New(es *entries.Store, as *accounts.Store, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = log.Default(log.ComponentApp)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		entries:   es,
		accounts:  as,
		publisher: opts.Publisher,
		sheets:    opts.Sheets,
		logger:    opts.Logger.WithComponent(log.ComponentApp),
		now:       opts.Now,
	}
}

// Open loads both stores from docs. They share one id generator so ids stay
// unique across entries and accounts.
func Open(ctx context.Context, docs docstore.Store, opts Options) (*Service, error) {
	gen := ids.NewGenerator()
	es, err := entries.Open(ctx, docs, gen, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	as, err := accounts.Open(ctx, docs, gen, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	return New(es, as, opts), nil
}

// Entries exposes the entry store, e.g. as a backup.Source.
func (s *Service) Entries() *entries.Store { return s.entries }

// Accounts exposes the account store.
func (s *Service) Accounts() *accounts.Store { return s.accounts }

// Reload re-reads both stores from the document store.
func (s *Service) Reload(ctx context.Context) error {
	defer s.version.Add(1)
	if err := s.entries.Load(ctx); err != nil {
		return err
	}
	return s.accounts.Load(ctx)
}

// Version identifies the current state of the data. Derived views computed
// at the same version are identical.
func (s *Service) Version() int64 {
	return s.version.Load()
}

// Today is the current calendar date in UTC.
func (s *Service) Today() core.Date {
	return core.DateOf(s.now())
}

// --- entries and categories ---

func (s *Service) AddEntry(ctx context.Context, in entries.NewEntry) (core.Entry, error) {
	e, err := s.entries.AddEntry(ctx, in)
	if e.ID != 0 {
		s.changed(ctx, amqp.EntryCreated, e.ID)
	}
	return e, err
}

func (s *Service) UpdateEntry(ctx context.Context, id int64, in entries.EntryUpdate) (core.Entry, error) {
	e, err := s.entries.UpdateEntry(ctx, id, in)
	if mutated(err) {
		s.changed(ctx, amqp.EntryUpdated, id)
	}
	return e, err
}

func (s *Service) DeleteEntry(ctx context.Context, id int64) (bool, error) {
	removed, err := s.entries.DeleteEntry(ctx, id)
	if removed {
		s.changed(ctx, amqp.EntryDeleted, id)
	}
	return removed, err
}

func (s *Service) ListEntries(f ledger.Filter) []core.Entry {
	switch {
	case f.Type == "":
		return s.entries.Entries()
	case f.Date.IsZero() && f.Category == "":
		return s.entries.ListByType(f.Type)
	default:
		return ledger.FilteredView(s.entries.Entries(), f)
	}
}

func (s *Service) Categories() core.CategorySet {
	return s.entries.Categories()
}

func (s *Service) AddCategory(ctx context.Context, t core.EntryType, name string) error {
	err := s.entries.AddCategory(ctx, t, name)
	if mutated(err) {
		s.changed(ctx, amqp.CategoryAdded, 0)
	}
	return err
}

func (s *Service) DeleteCategory(ctx context.Context, t core.EntryType, name string) (bool, error) {
	removed, err := s.entries.DeleteCategory(ctx, t, name)
	if removed {
		s.changed(ctx, amqp.CategoryDeleted, 0)
	}
	return removed, err
}

// --- derived views ---

func (s *Service) Dashboard(recent int) Dashboard {
	all := s.entries.Entries()
	today := s.Today()
	return Dashboard{
		Today:  today,
		Totals: ledger.DashboardTotals(all, today),
		Recent: ledger.RecentTransactions(all, recent),
	}
}

func (s *Service) Ledger(from, to core.Date) ([]ledger.Row, error) {
	if !from.IsZero() && !to.IsZero() && from.Compare(to) > 0 {
		return nil, fmt.Errorf("%w: from %s is after to %s", core.ErrValidation, from, to)
	}
	return ledger.WithRunningBalance(s.entries.Entries(), from, to), nil
}

func (s *Service) ProfitLoss(from, to core.Date) (report.Summary, error) {
	return report.ProfitLoss(s.entries.Entries(), from, to)
}

// RenderReport computes the profit/loss summary and renders it with r.
func (s *Service) RenderReport(ctx context.Context, from, to core.Date, r report.Renderer) ([]byte, report.Summary, error) {
	summary, err := s.ProfitLoss(from, to)
	if err != nil {
		return nil, report.Summary{}, err
	}
	out, err := r.Render(summary)
	if err != nil {
		s.logger.WithComponent(log.ComponentReport).ErrorContext(ctx, "Failed to render report",
			log.NewFields().WithOperation(log.OpRender).WithError(err).ToSlice()...)
		return nil, summary, fmt.Errorf("render report: %w", err)
	}
	return out, summary, nil
}

// ExportReportToSheets writes the profit/loss summary through the configured report writer.
func (s *Service) ExportReportToSheets(ctx context.Context, from, to core.Date) (string, error) {
	if s.sheets == nil {
		return "", ErrSheetsDisabled
	}
	summary, err := s.ProfitLoss(from, to)
	if err != nil {
		return "", err
	}
	ref, err := s.sheets.WriteReport(ctx, summary)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to export report to Sheets",
			log.NewFields().WithOperation(log.OpExport).WithError(err).WithErrorType(log.ErrorTypeNetwork).ToSlice()...)
		return "", fmt.Errorf("export report: %w", err)
	}
	s.logger.InfoContext(ctx, "Report exported to Sheets", "ref", ref, "from", from.String(), "to", to.String())
	return ref, nil
}

// --- accounts ---

func (s *Service) AddAccount(ctx context.Context, in accounts.NewAccount) (core.AccountEntry, error) {
	a, err := s.accounts.AddAccount(ctx, in)
	if a.ID != 0 {
		s.changed(ctx, amqp.AccountCreated, a.ID)
	}
	return a, err
}

func (s *Service) UpdateAccount(ctx context.Context, id int64, in accounts.AccountUpdate) (core.AccountEntry, error) {
	a, err := s.accounts.UpdateAccount(ctx, id, in)
	if mutated(err) {
		s.changed(ctx, amqp.AccountUpdated, id)
	}
	return a, err
}

func (s *Service) RecordPayment(ctx context.Context, id int64, payment core.Money) (core.AccountEntry, error) {
	a, err := s.accounts.RecordPayment(ctx, id, payment)
	if mutated(err) {
		s.changed(ctx, amqp.PaymentRecorded, id)
	}
	return a, err
}

func (s *Service) DeleteAccount(ctx context.Context, id int64) (bool, error) {
	removed, err := s.accounts.DeleteAccount(ctx, id)
	if removed {
		s.changed(ctx, amqp.AccountDeleted, id)
	}
	return removed, err
}

func (s *Service) ListAccounts(f accounts.Filter) []core.AccountEntry {
	return accounts.Apply(s.accounts.Accounts(), f)
}

func (s *Service) AccountSummary() accounts.Summary {
	return accounts.Summarize(s.accounts.Accounts())
}

// --- backups ---

// ExportBackup returns the encoded snapshot of entries and categories.
func (s *Service) ExportBackup(ctx context.Context) ([]byte, backup.Snapshot, error) {
	es, cats := s.entries.Snapshot()
	snap := backup.Serialize(es, cats, s.now())
	data, err := backup.Encode(snap)
	if err != nil {
		return nil, backup.Snapshot{}, fmt.Errorf("encode backup: %w", err)
	}
	s.logger.InfoContext(ctx, "Backup exported",
		log.NewFields().WithOperation(log.OpExport).ToSlice()...)
	return data, snap, nil
}

// ImportBackup replaces every entry and category with the contents of data.
// Nothing is replaced unless confirm is true and data decodes cleanly.
func (s *Service) ImportBackup(ctx context.Context, data []byte, confirm bool) (ImportResult, error) {
	es, cats, err := backup.Deserialize(data)
	if err != nil {
		return ImportResult{}, err
	}
	if !confirm {
		return ImportResult{}, ErrConfirmationRequired
	}
	err = s.entries.Replace(ctx, es, cats)
	if !mutated(err) {
		return ImportResult{}, err
	}
	s.changed(ctx, amqp.DataImported, 0)

	res := ImportResult{Entries: len(es), Categories: len(cats.Income) + len(cats.Expense)}
	s.logger.InfoContext(ctx, "Backup imported", log.FieldCount, res.Entries, log.FieldOperation, log.OpImport)
	return res, err
}

// mutated reports whether the in-memory state changed. Persistence failures
// keep the change, so they still count.
func mutated(err error) bool {
	return err == nil || errors.Is(err, core.ErrPersistence)
}

// changed records a mutation. Publishing is best effort; the mutation already happened.
func (s *Service) changed(ctx context.Context, kind amqp.ChangeKind, id int64) {
	s.version.Add(1)
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishChange(ctx, amqp.NewChangeEvent(kind, id)); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish change event",
			log.NewFields().WithOperation(log.OpPublish).WithError(err).WithErrorType(log.ErrorTypeNetwork).ToSlice()...)
	}
}
