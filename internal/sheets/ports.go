package sheets

import (
	"context"

	"daybook/internal/report"
)

// ReportWriter publishes a profit/loss summary to a spreadsheet and returns
// a reference to the written range.
type ReportWriter interface {
	WriteReport(ctx context.Context, s report.Summary) (ref string, err error)
}
