package memory

import (
	"context"
	"testing"

	"daybook/internal/core"
	"daybook/internal/report"
)

func TestWriterKeepsReports(t *testing.T) {
	w := New()
	s := report.Summary{From: core.NewDate(2024, 1, 1), To: core.NewDate(2024, 1, 31), Net: core.Cents(5)}

	ref, err := w.WriteReport(context.Background(), s)
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected write: ref=%q err=%v", ref, err)
	}
	if got := w.Reports(); len(got) != 1 || got[0].Net.Cents != 5 {
		t.Fatalf("reports = %+v", got)
	}
	if _, err := w.WriteReport(context.Background(), report.Summary{}); err == nil {
		t.Fatal("expected error for a report without range")
	}
}
