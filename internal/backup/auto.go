package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"daybook/internal/core"
	"daybook/internal/log"
)

const autoPrefix = "daybook_auto_backup_"

// Source provides a consistent copy of what gets backed up.
type Source interface {
	Snapshot() ([]core.Entry, core.CategorySet)
}

// AutoConfig controls the automatic backup schedule.
type AutoConfig struct {
	Dir      string
	Interval time.Duration
	Keep     int
	MinGap   time.Duration
}

func DefaultAutoConfig() AutoConfig {
	return AutoConfig{
		Dir:      filepath.Join("data", "Daybook Backups"),
		Interval: 24 * time.Hour,
		Keep:     10,
		MinGap:   time.Minute,
	}
}

// Auto writes timestamped snapshots of Source into Dir and keeps only the
// newest Keep of them.
type Auto struct {
	cfg    AutoConfig
	source Source
	logger *log.Logger
	now    func() time.Time

	mu   sync.Mutex
	last time.Time
}

func NewAuto(source Source, cfg AutoConfig, logger *log.Logger) *Auto {
	def := DefaultAutoConfig()
	if cfg.Dir == "" {
		cfg.Dir = def.Dir
	}
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Keep <= 0 {
		cfg.Keep = def.Keep
	}
	if logger == nil {
		logger = log.Default(log.ComponentBackup)
	}
	return &Auto{
		cfg:    cfg,
		source: source,
		logger: logger.WithComponent(log.ComponentBackup),
		now:    time.Now,
	}
}

// Run writes a backup every Interval until ctx is cancelled, then writes a
// final one before returning.
func (a *Auto) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.cfg.Interval)
	defer ticker.Stop()

	a.logger.InfoContext(ctx, "Automatic backups scheduled", "dir", a.cfg.Dir, "interval", a.cfg.Interval, "keep", a.cfg.Keep)

	for {
		select {
		case <-ctx.Done():
			if _, err := a.Write(context.WithoutCancel(ctx)); err != nil {
				a.logger.Error("Final backup failed", log.FieldError, err)
				return err
			}
			return nil
		case <-ticker.C:
			if _, err := a.Write(ctx); err != nil {
				a.logger.ErrorContext(ctx, "Scheduled backup failed", log.FieldError, err)
			}
		}
	}
}

// Trigger writes a backup unless one was written less than MinGap ago. It
// reports the written path, or "" when the request was coalesced.
func (a *Auto) Trigger(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.last.IsZero() && a.now().Sub(a.last) < a.cfg.MinGap {
		a.logger.DebugContext(ctx, "Backup skipped, previous one is recent")
		return "", nil
	}
	return a.write(ctx)
}

// Write takes a snapshot and stores it as a new auto backup file.
func (a *Auto) Write(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.write(ctx)
}

// write requires a.mu to be held.
func (a *Auto) write(ctx context.Context) (string, error) {
	now := a.now()
	entries, categories := a.source.Snapshot()
	snap := Serialize(entries, categories, now)
	snap.AutoBackup = true

	data, err := Encode(snap)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(a.cfg.Dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create backup dir: %w", core.ErrPersistence, err)
	}

	path := filepath.Join(a.cfg.Dir, AutoFilename(now))
	if err := writeFileAtomic(path, data); err != nil {
		return "", fmt.Errorf("%w: write backup: %w", core.ErrPersistence, err)
	}
	a.last = now

	removed, err := a.prune()
	if err != nil {
		a.logger.WarnContext(ctx, "Could not delete old backups", log.FieldError, err)
	}

	a.logger.InfoContext(ctx, "Automatic backup written",
		log.FieldOperation, log.OpBackup,
		log.FieldFile, path,
		log.FieldCount, len(entries),
		"pruned", removed)
	return path, nil
}

// AutoFilename is daybook_auto_backup_<timestamp>.json with the ISO
// timestamp's colons and dot replaced by dashes.
func AutoFilename(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s%s-%03dZ.json", autoPrefix, t.Format("2006-01-02T15-04-05"), t.Nanosecond()/int(time.Millisecond))
}

// List returns the auto backup files in Dir, oldest first.
func (a *Auto) List() ([]string, error) {
	dirEntries, err := os.ReadDir(a.cfg.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasPrefix(de.Name(), autoPrefix) || !strings.HasSuffix(de.Name(), ".json") {
			continue
		}
		names = append(names, de.Name())
	}
	// Names embed a fixed-width UTC timestamp so lexical order is chronological.
	sort.Strings(names)
	return names, nil
}

func (a *Auto) prune() (int, error) {
	names, err := a.List()
	if err != nil {
		return 0, err
	}
	if len(names) <= a.cfg.Keep {
		return 0, nil
	}
	removed := 0
	var firstErr error
	for _, name := range names[:len(names)-a.cfg.Keep] {
		if err := os.Remove(filepath.Join(a.cfg.Dir, name)); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		removed++
	}
	return removed, firstErr
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".backup-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
