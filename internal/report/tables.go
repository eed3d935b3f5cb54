package report

import (
	"strings"

	"daybook/internal/core"
)

const reportTitle = "Daybook Financial Report"

// Table is a named grid of cells, the unit written by the CSV and XLSX
// renderers and the spreadsheet exporter.
type Table struct {
	Name string
	Rows [][]string
	// AmountColumn holds decimal amounts from row AmountFrom onwards.
	AmountColumn int
	AmountFrom   int
}

// IsAmount reports whether the cell at row, col holds an amount.
func (t Table) IsAmount(row, col int) bool {
	return col == t.AmountColumn && row >= t.AmountFrom &&
		row < len(t.Rows) && col < len(t.Rows[row])
}

// EscapeFormula prefixes text a spreadsheet would evaluate as a formula
// with a single quote so it is shown as typed.
func EscapeFormula(v string) string {
	if v != "" && strings.ContainsRune("=+-@\t\r", rune(v[0])) {
		return "'" + v
	}
	return v
}

var detailHeader = []string{"Date", "Category", "Amount", "Description"}

// Tables lays the summary out as Summary, Income, Expenses and All Entries
// sheets. Amounts are plain decimals so spreadsheets treat them as numbers.
func Tables(s Summary) []Table {
	tables := []Table{{
		Name: "Summary",
		Rows: [][]string{
			{reportTitle},
			{"Period", s.From.String() + " to " + s.To.String()},
			{},
			{"Total Income", s.TotalIncome.String()},
			{"Total Expenses", s.TotalExpenses.String()},
			{s.NetLabel(), s.AbsNet().String()},
		},
		AmountColumn: 1,
		AmountFrom:   3,
	}}

	if len(s.IncomeEntries) > 0 {
		tables = append(tables, detailTable("Income", s.IncomeEntries))
	}
	if len(s.ExpenseEntries) > 0 {
		tables = append(tables, detailTable("Expenses", s.ExpenseEntries))
	}

	all := [][]string{{"Date", "Type", "Category", "Amount", "Description"}}
	for _, e := range append(append([]core.Entry(nil), s.IncomeEntries...), s.ExpenseEntries...) {
		all = append(all, []string{e.Date.String(), string(e.Type), e.Category, e.Amount.String(), e.Description})
	}
	if len(all) > 1 {
		tables = append(tables, Table{Name: "All Entries", Rows: all, AmountColumn: 3, AmountFrom: 1})
	}
	return tables
}

func detailTable(name string, entries []core.Entry) Table {
	rows := [][]string{detailHeader}
	for _, e := range entries {
		rows = append(rows, []string{e.Date.String(), e.Category, e.Amount.String(), e.Description})
	}
	return Table{Name: name, Rows: rows, AmountColumn: 2, AmountFrom: 1}
}
