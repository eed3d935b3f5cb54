package worker

import (
	"context"
	"fmt"
	"time"

	"daybook/internal/amqp"
	"daybook/internal/backup"
	"daybook/internal/log"
)

// Reloader re-reads state written by another process.
type Reloader interface {
	Reload(ctx context.Context) error
}

// BackupWorker writes automatic backups of a document store shared with the
// API server: on a timer and whenever a change event arrives.
type BackupWorker struct {
	source   Reloader
	auto     *backup.Auto
	interval time.Duration
	logger   *log.Logger
}

func NewBackupWorker(source Reloader, auto *backup.Auto, interval time.Duration, logger *log.Logger) *BackupWorker {
	if logger == nil {
		logger = log.Default(log.ComponentWorker)
	}
	if interval <= 0 {
		interval = backup.DefaultAutoConfig().Interval
	}
	return &BackupWorker{
		source:   source,
		auto:     auto,
		interval: interval,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleChange processes a single change event from AMQP. Bursts of events
// collapse into one backup per minimum gap.
func (w *BackupWorker) HandleChange(ctx context.Context, e amqp.ChangeEvent) error {
	w.logger.DebugContext(ctx, "Processing change event",
		"kind", string(e.Kind),
		log.FieldID, e.ID,
		"timestamp", e.Timestamp)

	if err := w.source.Reload(ctx); err != nil {
		return fmt.Errorf("reload stores: %w", err)
	}
	path, err := w.auto.Trigger(ctx)
	if err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	if path != "" {
		w.logger.InfoContext(ctx, "Backup written after change", "kind", string(e.Kind), log.FieldFile, path)
	}
	return nil
}

// Run writes a backup every interval until ctx is cancelled, then writes a
// final one.
func (w *BackupWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.InfoContext(ctx, "Backup worker started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			if err := w.backupNow(context.WithoutCancel(ctx)); err != nil {
				w.logger.Error("Final backup failed", log.FieldError, err)
				return err
			}
			w.logger.Info("Backup worker stopped")
			return nil
		case <-ticker.C:
			if err := w.backupNow(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Scheduled backup failed", log.FieldError, err)
			}
		}
	}
}

func (w *BackupWorker) backupNow(ctx context.Context) error {
	if err := w.source.Reload(ctx); err != nil {
		return fmt.Errorf("reload stores: %w", err)
	}
	_, err := w.auto.Write(ctx)
	return err
}
