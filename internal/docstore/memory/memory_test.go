package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"daybook/internal/docstore"
)

func TestMemoryStoreSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, ok, err := s.Load(ctx, docstore.KeyEntries); ok || err != nil {
		t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
	}

	doc := []byte(`[{"id":1}]`)
	if err := s.Save(ctx, docstore.KeyEntries, doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	doc[0] = 'x' // caller mutation must not leak into the store

	got, ok, err := s.Load(ctx, docstore.KeyEntries)
	if err != nil || !ok || string(got) != `[{"id":1}]` {
		t.Fatalf("unexpected load: %q ok=%v err=%v", got, ok, err)
	}
}

func TestMemoryStoreClosed(t *testing.T) {
	s := New()
	_ = s.Close()
	if err := s.Save(context.Background(), "k", []byte("{}")); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if _, _, err := s.Load(context.Background(), "k"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestNewFromFilesSeeds(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFromFiles(dir)
	if err != nil {
		t.Fatalf("empty dir: %v", err)
	}
	if _, ok, _ := s.Load(context.Background(), docstore.KeyCategories); ok {
		t.Fatalf("expected no seeded categories")
	}

	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mustWrite(docstore.KeyCategories+".json", `{"income":["A"],"expense":["B"]}`)

	s, err = NewFromFiles(dir)
	if err != nil {
		t.Fatalf("seeded dir: %v", err)
	}
	got, ok, _ := s.Load(context.Background(), docstore.KeyCategories)
	if !ok || string(got) != `{"income":["A"],"expense":["B"]}` {
		t.Fatalf("unexpected seed: %q", got)
	}

	mustWrite(docstore.KeyAccounts+".json", `not json`)
	if _, err := NewFromFiles(dir); err == nil {
		t.Fatalf("expected error for invalid seed")
	}
}
