// Package backup converts the entry store to and from the portable JSON
// snapshot format and writes rotating automatic backups.
package backup

import (
	"encoding/json"
	"fmt"
	"time"

	"daybook/internal/core"
)

const (
	Version = "1.0.0"
	AppName = "Daybook Desktop"

	// exportDateLayout matches JavaScript's Date.toISOString.
	exportDateLayout = "2006-01-02T15:04:05.000Z"
)

// Snapshot is the on-disk backup document. Accounts are not part of it.
type Snapshot struct {
	Entries    []core.Entry     `json:"entries"`
	Categories core.CategorySet `json:"categories"`
	Version    string           `json:"version"`
	ExportDate string           `json:"exportDate"`
	AppName    string           `json:"appName"`
	AutoBackup bool             `json:"autoBackup,omitempty"`
}

// Serialize stamps entries and categories with the format metadata.
func Serialize(entries []core.Entry, categories core.CategorySet, now time.Time) Snapshot {
	if entries == nil {
		entries = []core.Entry{}
	}
	if categories.Income == nil {
		categories.Income = []string{}
	}
	if categories.Expense == nil {
		categories.Expense = []string{}
	}
	return Snapshot{
		Entries:    entries,
		Categories: categories,
		Version:    Version,
		ExportDate: now.UTC().Format(exportDateLayout),
		AppName:    AppName,
	}
}

// Encode renders s as indented JSON.
func Encode(s Snapshot) ([]byte, error) {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return b, nil
}

// Deserialize parses a backup document. The entries and categories fields
// must both be present; their contents are returned as stored.
func Deserialize(data []byte) ([]core.Entry, core.CategorySet, error) {
	var raw struct {
		Entries    *[]core.Entry     `json:"entries"`
		Categories *core.CategorySet `json:"categories"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, core.CategorySet{}, fmt.Errorf("%w: %w", core.ErrFormat, err)
	}
	if raw.Entries == nil {
		return nil, core.CategorySet{}, fmt.Errorf("%w: missing entries", core.ErrFormat)
	}
	if raw.Categories == nil {
		return nil, core.CategorySet{}, fmt.Errorf("%w: missing categories", core.ErrFormat)
	}
	return *raw.Entries, *raw.Categories, nil
}

// Filename is the suggested name of a manual export taken at now.
func Filename(now time.Time) string {
	return "daybook_backup_" + core.DateOf(now).String() + ".json"
}
