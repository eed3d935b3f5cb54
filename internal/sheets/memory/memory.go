// Package memory is an in-process ReportWriter for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"daybook/internal/report"
	ports "daybook/internal/sheets"
)

var _ ports.ReportWriter = (*Writer)(nil)

type Writer struct {
	mu      sync.Mutex
	reports []report.Summary
}

func New() *Writer {
	return &Writer{}
}

// WriteReport keeps the summary and returns a synthetic reference.
func (w *Writer) WriteReport(_ context.Context, s report.Summary) (string, error) {
	if s.From.IsZero() || s.To.IsZero() {
		return "", fmt.Errorf("report without a date range")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reports = append(w.reports, s)
	return fmt.Sprintf("mem:%d", len(w.reports)), nil
}

// Reports returns the summaries written so far, oldest first.
func (w *Writer) Reports() []report.Summary {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]report.Summary(nil), w.reports...)
}
