package core

import (
	"fmt"
	"slices"
	"strings"
)

// CategorySet holds the ordered, unique category names per entry type.
type CategorySet struct {
	Income  []string `json:"income"`
	Expense []string `json:"expense"`
}

// DefaultCategories returns the categories a fresh daybook starts with.
func DefaultCategories() CategorySet {
	return CategorySet{
		Income:  []string{"Salary", "Freelance", "Business", "Investment", "Other"},
		Expense: []string{"Food", "Transportation", "Utilities", "Entertainment", "Healthcare", "Other"},
	}
}

// Names returns a copy of the names for t.
func (c CategorySet) Names(t EntryType) []string {
	return slices.Clone(*c.list(t))
}

func (c CategorySet) Has(t EntryType, name string) bool {
	return slices.Contains(*c.list(t), name)
}

// Add appends a trimmed name for t, rejecting blanks and duplicates.
func (c *CategorySet) Add(t EntryType, name string) error {
	if !t.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, t)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyCategory
	}
	l := c.list(t)
	if slices.Contains(*l, name) {
		return fmt.Errorf("%w: %q", ErrDuplicateCategory, name)
	}
	*l = append(*l, name)
	return nil
}

// Remove deletes name from t and reports whether it was present.
func (c *CategorySet) Remove(t EntryType, name string) bool {
	if !t.IsValid() {
		return false
	}
	l := c.list(t)
	i := slices.Index(*l, name)
	if i < 0 {
		return false
	}
	*l = slices.Delete(slices.Clone(*l), i, i+1)
	return true
}

func (c CategorySet) Clone() CategorySet {
	return CategorySet{Income: slices.Clone(c.Income), Expense: slices.Clone(c.Expense)}
}

// Normalize trims names and drops blanks and duplicates, preserving order.
func (c CategorySet) Normalize() CategorySet {
	return CategorySet{Income: dedupe(c.Income), Expense: dedupe(c.Expense)}
}

func (c *CategorySet) list(t EntryType) *[]string {
	if t == Expense {
		return &c.Expense
	}
	return &c.Income
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
