//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"
)

// Requires real credentials:
// GOOGLE_SPREADSHEET_ID=... GOOGLE_SERVICE_ACCOUNT_FILE=... go test -tags=integration ./internal/sheets/google
func TestIntegration_WriteReport(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c, err := New(ctx, Config{
		SpreadsheetID:   spreadsheetID,
		SheetName:       "Daybook Integration",
		CredentialsJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		CredentialsFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
	}, quietLogger())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	ref, err := c.WriteReport(ctx, sampleSummary(t))
	if err != nil {
		t.Fatalf("write report: %v", err)
	}
	t.Logf("report written to %s", ref)
}
