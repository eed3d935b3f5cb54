package backend

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"daybook/internal/config"
	"daybook/internal/docstore"
	"daybook/internal/log"
)

func quietLogger() *log.Logger {
	return log.New(log.Config{Level: slog.LevelError, Output: io.Discard})
}

func TestBackendType_IsValid(t *testing.T) {
	tests := []struct {
		in   BackendType
		want bool
	}{
		{SQLiteBackend, true},
		{MongoBackend, true},
		{MemoryBackend, true},
		{"sheets", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := tt.in.IsValid(); got != tt.want {
			t.Errorf("BackendType(%q).IsValid() = %v, want %v", tt.in, got, tt.want)
		}
	}
	if got := strings.Join(GetBackendTypeStrings(), ","); got != "sqlite,mongo,memory" {
		t.Errorf("GetBackendTypeStrings() = %s", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"sqlite with path", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"mongo without uri", Config{Type: MongoBackend}, true},
		{"memory without directory", Config{Type: MemoryBackend}, false},
		{"unknown type", Config{Type: "redis"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:     "mongo",
		MongoURI:        "mongodb://localhost:27017",
		MongoDatabase:   "db",
		MongoCollection: "docs",
		MemoryDataDir:   "seed",
		HistoryKeep:     5,
	})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != MongoBackend || cfg.MongoDatabase != "db" || cfg.MongoCollection != "docs" || cfg.DataDirectory != "seed" || cfg.HistoryKeep != 5 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func roundTrip(t *testing.T, store docstore.Store) {
	t.Helper()
	ctx := context.Background()
	if err := store.Save(ctx, docstore.KeyCategories, []byte(`["Food"]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := store.Load(ctx, docstore.KeyCategories)
	if err != nil || !ok || string(got) != `["Food"]` {
		t.Fatalf("load = %q ok=%v err=%v", got, ok, err)
	}
}

func TestCreateBackend_SQLite(t *testing.T) {
	f := NewFactory(quietLogger())
	res, err := f.CreateBackend(context.Background(), Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "daybook.db"),
		HistoryKeep:  3,
	})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Close()
	roundTrip(t, res.Store)
}

func TestCreateBackend_Memory(t *testing.T) {
	f := NewFactory(nil)
	res, err := f.CreateBackend(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	roundTrip(t, res.Store)
	if err := res.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, _, err := res.Store.Load(context.Background(), docstore.KeyEntries); err == nil {
		t.Fatal("expected closed store to fail")
	}
}

func TestCreateBackend_MemorySeeded(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, docstore.KeyEntries+".json"), []byte(`[]`), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	f := NewFactory(quietLogger())
	res, err := f.CreateBackend(context.Background(), Config{Type: MemoryBackend, DataDirectory: dir})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	if _, ok, _ := res.Store.Load(context.Background(), docstore.KeyEntries); !ok {
		t.Fatal("expected seeded entries document")
	}

	if err := os.WriteFile(filepath.Join(dir, docstore.KeyAccounts+".json"), []byte(`{`), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	if _, err := f.CreateBackend(context.Background(), Config{Type: MemoryBackend, DataDirectory: dir}); err == nil {
		t.Fatal("expected invalid seed to fail")
	}
}

func TestCreateBackend_Invalid(t *testing.T) {
	f := NewFactory(quietLogger())
	if _, err := f.CreateBackend(context.Background(), Config{Type: "sheets"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	var nilResult *BackendResult
	if err := nilResult.Close(); err != nil {
		t.Fatalf("nil result close: %v", err)
	}
}
