// Package docstore defines the whole-document key/value store the daybook
// persists its collections to.
package docstore

import "context"

// Keys of the persisted collections.
const (
	KeyEntries    = "daybook_entries"
	KeyCategories = "daybook_categories"
	KeyAccounts   = "daybook_accounts"
)

// Keys lists every collection key.
var Keys = []string{KeyEntries, KeyCategories, KeyAccounts}

// Store reads and replaces whole JSON documents by key.
type Store interface {
	// Load returns the stored document and true, or nil and false when the key is absent.
	Load(ctx context.Context, key string) ([]byte, bool, error)
	// Save replaces the document stored under key.
	Save(ctx context.Context, key string, value []byte) error
}
