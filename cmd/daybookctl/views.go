package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"daybook/internal/cli"
	"daybook/internal/core"
	"daybook/internal/report"
	gsheet "daybook/internal/sheets/google"
)

func ledgerCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Show entries in date order with a running balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := core.ParseOptionalDate(from)
			if err != nil {
				return err
			}
			t, err := core.ParseOptionalDate(to)
			if err != nil {
				return err
			}
			return withService(cmd, func(s *session) error {
				rows, err := s.svc.Ledger(f, t)
				if err != nil {
					return err
				}
				w := newTable(cmd.OutOrStdout(), "Date", "Type", "Category", "Amount", "Balance")
				for _, r := range rows {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						r.Entry.Date, r.Entry.Type, r.Entry.Category,
						core.FormatMoney(r.Entry.Amount, s.cfg.Currency),
						cli.MoneyStyle(r.RunningBalance).Render(core.FormatMoney(r.RunningBalance, s.cfg.Currency)))
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first date, inclusive")
	cmd.Flags().StringVar(&to, "to", "", "last date, inclusive")
	return cmd
}

func dashboardCmd() *cobra.Command {
	var recent int
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show today's totals and the most recent entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if recent < 0 {
				return fmt.Errorf("%w: --recent must not be negative", core.ErrValidation)
			}
			return withService(cmd, func(s *session) error {
				d := s.svc.Dashboard(recent)
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, cli.FormatTitle("Today "+d.Today.String()))
				fmt.Fprintf(out, "Income   %s\n", core.FormatMoney(d.Totals.Income, s.cfg.Currency))
				fmt.Fprintf(out, "Expense  %s\n", core.FormatMoney(d.Totals.Expense, s.cfg.Currency))
				fmt.Fprintf(out, "Net      %s\n\n",
					cli.MoneyStyle(d.Totals.Net).Render(core.FormatMoney(d.Totals.Net, s.cfg.Currency)))

				w := newTable(out, "ID", "Date", "Type", "Category", "Amount")
				for _, e := range d.Recent {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", e.ID, e.Date, e.Type, e.Category,
						core.FormatMoney(e.Amount, s.cfg.Currency))
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&recent, "recent", 5, "number of recent entries")
	return cmd
}

func reportCmd() *cobra.Command {
	var from, to, format, outFile string
	var toSheets bool
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Profit and loss for a date range",
		Long: `Render the profit and loss report for --from..--to (both inclusive).
Formats: term (default), md, html, csv, xlsx, json. An xlsx workbook is written
to daybook_report_<from>_to_<to>.xlsx unless -o is given. --sheets writes the
report to the configured Google spreadsheet instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := core.ParseOptionalDate(from)
			if err != nil {
				return err
			}
			t, err := core.ParseOptionalDate(to)
			if err != nil {
				return err
			}
			format = strings.ToLower(format)

			return withService(cmd, func(s *session) error {
				if toSheets {
					return exportToSheets(cmd, s, f, t)
				}

				var out []byte
				if format == "json" {
					summary, err := s.svc.ProfitLoss(f, t)
					if err != nil {
						return err
					}
					if out, err = json.MarshalIndent(summary, "", "  "); err != nil {
						return err
					}
				} else {
					renderer, err := report.Lookup(format, s.cfg.Currency)
					if err != nil {
						return err
					}
					var summary report.Summary
					if out, summary, err = s.svc.RenderReport(cmd.Context(), f, t, renderer); err != nil {
						return err
					}
					if outFile == "" && renderer.Extension() == report.FormatXLSX {
						outFile = report.Filename(summary, renderer.Extension())
					}
				}

				if outFile != "" {
					if err := os.WriteFile(outFile, out, 0o644); err != nil {
						return fmt.Errorf("write report: %w", err)
					}
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Report written to "+outFile))
					return nil
				}
				_, err := cmd.OutOrStdout().Write(out)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first date YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last date YYYY-MM-DD")
	cmd.Flags().StringVar(&format, "format", "term", "term, md, html, csv, xlsx or json")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "write to a file instead of stdout")
	cmd.Flags().BoolVar(&toSheets, "sheets", false, "write the report to Google Sheets")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// exportToSheets needs its own writer because the session is built without one.
func exportToSheets(cmd *cobra.Command, s *session, from, to core.Date) error {
	if !s.cfg.SheetsEnabled() {
		return fmt.Errorf("GOOGLE_SPREADSHEET_ID is not set")
	}
	client, err := gsheet.New(cmd.Context(), gsheet.Config{
		SpreadsheetID:   s.cfg.GoogleSpreadsheetID,
		SheetName:       s.cfg.GoogleReportSheetName,
		CredentialsJSON: s.cfg.GoogleServiceAccountJSON,
		CredentialsFile: s.cfg.GoogleServiceAccountFile,
	}, s.logger)
	if err != nil {
		return err
	}
	summary, err := s.svc.ProfitLoss(from, to)
	if err != nil {
		return err
	}
	ref, err := client.WriteReport(cmd.Context(), summary)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Report written to "+ref))
	return nil
}
