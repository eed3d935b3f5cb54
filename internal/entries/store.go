// Package entries owns the income/expense entries and their categories.
//
// Every mutation is applied in memory first and then the whole collection is
// written to the document store. A failed write is reported as
// core.ErrPersistence but the in-memory change is kept.
package entries

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
	// NewEntry holds the caller supplied fields of an entry to add.
	NewEntry struct {
		Date        core.Date
		Type        core.EntryType
		Category    string
		Amount      core.Money
		Description string
	}

	// EntryUpdate replaces the editable fields of an entry. The type is fixed at creation.
	EntryUpdate struct {
		Date        core.Date
		Category    string
		Amount      core.Money
		Description string
	}
)

type Store struct {
	mu         sync.Mutex
	docs       docstore.Store
	ids        *ids.Generator
	logger     *log.Logger
	entries    []core.Entry
	categories core.CategorySet
}

// New returns an empty store seeded with the default categories. Call Load to read persisted state.
func New(docs docstore.Store, gen *ids.Generator, logger *log.Logger) *Store {
	if gen == nil {
		gen = ids.NewGenerator()
	}
	if logger == nil {
		logger = log.Default(log.ComponentEntries)
	}
	return &Store{
		docs:       docs,
		ids:        gen,
		logger:     logger.WithComponent(log.ComponentEntries),
		categories: core.DefaultCategories(),
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

// Load replaces the in-memory state with the persisted documents. Absent
// documents mean no entries and the default categories.
func (s *Store) Load(ctx context.Context) error {
	var (
		entries    []core.Entry
		categories = core.DefaultCategories()
	)

	if raw, ok, err := s.docs.Load(ctx, docstore.KeyEntries); err != nil {
		return fmt.Errorf("%w: load entries: %w", core.ErrPersistence, err)
	} else if ok {
		if err := json.Unmarshal(raw, &entries); err != nil {
			return fmt.Errorf("%w: decode entries: %w", core.ErrPersistence, err)
		}
	}

	if raw, ok, err := s.docs.Load(ctx, docstore.KeyCategories); err != nil {
		return fmt.Errorf("%w: load categories: %w", core.ErrPersistence, err)
	} else if ok {
		var stored core.CategorySet
		if err := json.Unmarshal(raw, &stored); err != nil {
			return fmt.Errorf("%w: decode categories: %w", core.ErrPersistence, err)
		}
		categories = stored.Normalize()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
	s.categories = categories
	s.observeIDs()

	s.logger.InfoContext(ctx, "Entries loaded", log.FieldCount, len(entries))
	return nil
}

// AddEntry validates, assigns an id, appends and persists.
func (s *Store) AddEntry(ctx context.Context, in NewEntry) (core.Entry, error) {
	e := core.Entry{
		Date:        in.Date,
		Type:        in.Type,
		Category:    strings.TrimSpace(in.Category),
		Amount:      in.Amount,
		Description: in.Description,
	}
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = s.ids.Next()
	s.entries = append(s.entries, e)

	s.logger.InfoContext(ctx, "Entry created", log.NewFields().
		WithEntry(e.ID, string(e.Type), e.Category, e.Amount.Cents).
		WithOperation(log.OpCreate).ToSlice()...)

	return e, s.saveEntries(ctx)
}

// UpdateEntry overwrites date, category, amount and description of entry id.
func (s *Store) UpdateEntry(ctx context.Context, id int64, in EntryUpdate) (core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return core.Entry{}, fmt.Errorf("%w: entry %d", core.ErrNotFound, id)
	}

	updated := s.entries[i]
	updated.Date = in.Date
	updated.Category = strings.TrimSpace(in.Category)
	updated.Amount = in.Amount
	updated.Description = in.Description
	if err := updated.Validate(); err != nil {
		return core.Entry{}, err
	}
	s.entries[i] = updated

	s.logger.InfoContext(ctx, "Entry updated", log.NewFields().
		WithEntry(updated.ID, string(updated.Type), updated.Category, updated.Amount.Cents).
		WithOperation(log.OpUpdate).ToSlice()...)

	return updated, s.saveEntries(ctx)
}

// DeleteEntry removes entry id. Deleting an unknown id is a no-op and reports false.
func (s *Store) DeleteEntry(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	s.entries = slices.Delete(s.entries, i, i+1)

	s.logger.InfoContext(ctx, "Entry deleted", log.FieldID, id, log.FieldOperation, log.OpDelete)
	return true, s.saveEntries(ctx)
}

// Get returns entry id.
func (s *Store) Get(id int64) (core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.Entry{}, fmt.Errorf("%w: entry %d", core.ErrNotFound, id)
	}
	return s.entries[i], nil
}

// ListByType returns the entries of type t in insertion order.
func (s *Store) ListByType(t core.EntryType) []core.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Entries returns every entry in insertion order.
func (s *Store) Entries() []core.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}

// Categories returns a copy of the category set.
func (s *Store) Categories() core.CategorySet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categories.Clone()
}

// Snapshot returns entries and categories read under one lock.
func (s *Store) Snapshot() ([]core.Entry, core.CategorySet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries), s.categories.Clone()
}

// AddCategory appends a category name for t. Entries are not touched.
func (s *Store) AddCategory(ctx context.Context, t core.EntryType, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.categories.Add(t, name); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Category added", log.FieldEntryType, t, log.FieldCategory, strings.TrimSpace(name))
	return s.saveCategories(ctx)
}

// DeleteCategory removes a category name. Entries keep referencing it.
func (s *Store) DeleteCategory(ctx context.Context, t core.EntryType, name string) (bool, error) {
	if !t.IsValid() {
		return false, fmt.Errorf("%w: %q", core.ErrInvalidType, t)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.categories.Remove(t, name) {
		return false, nil
	}
	s.logger.InfoContext(ctx, "Category deleted", log.FieldEntryType, t, log.FieldCategory, name)
	return true, s.saveCategories(ctx)
}

// Replace discards all entries and categories and installs the given ones.
func (s *Store) Replace(ctx context.Context, entries []core.Entry, categories core.CategorySet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = slices.Clone(entries)
	s.categories = categories.Clone()
	s.observeIDs()

	s.logger.InfoContext(ctx, "Entries replaced", log.FieldCount, len(entries), log.FieldOperation, log.OpImport)

	if err := s.saveEntries(ctx); err != nil {
		return err
	}
	return s.saveCategories(ctx)
}

func (s *Store) indexOf(id int64) int {
	return slices.IndexFunc(s.entries, func(e core.Entry) bool { return e.ID == id })
}

func (s *Store) observeIDs() {
	for _, e := range s.entries {
		s.ids.Observe(e.ID)
	}
}

func (s *Store) saveEntries(ctx context.Context) error {
	list := s.entries
	if list == nil {
		list = []core.Entry{}
	}
	return s.save(ctx, docstore.KeyEntries, list)
}

func (s *Store) saveCategories(ctx context.Context) error {
	return s.save(ctx, docstore.KeyCategories, s.categories)
}

func (s *Store) save(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", core.ErrPersistence, key, err)
	}
	if err := s.docs.Save(ctx, key, b); err != nil {
		fields := log.NewFields().
			WithError(err).
			WithErrorType(log.ErrorTypePersistence)
		fields[log.FieldKey] = key
		s.logger.ErrorContext(ctx, "Failed to persist document", fields.ToSlice()...)
		return fmt.Errorf("%w: save %s: %w", core.ErrPersistence, key, err)
	}
	return nil
}
