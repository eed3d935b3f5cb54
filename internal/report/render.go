package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"daybook/internal/core"
)

// Formats accepted by Lookup.
const (
	FormatMarkdown = "md"
	FormatHTML     = "html"
	FormatCSV      = "csv"
	FormatXLSX     = "xlsx"
	FormatTerminal = "term"
)

// Renderer turns a Summary into a downloadable document.
type Renderer interface {
	Render(s Summary) ([]byte, error)
	ContentType() string
	Extension() string
}

// Lookup returns the renderer for format. Currency only affects the
// human-readable formats; CSV and XLSX keep plain numbers.
func Lookup(format, currency string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatMarkdown, "markdown", "":
		return MarkdownRenderer{Currency: currency}, nil
	case FormatHTML:
		return HTMLRenderer{Currency: currency}, nil
	case FormatCSV:
		return CSVRenderer{}, nil
	case FormatXLSX, "excel":
		return XLSXRenderer{}, nil
	case FormatTerminal, "terminal":
		return TerminalRenderer{Currency: currency}, nil
	default:
		return nil, fmt.Errorf("%w: unknown report format %q", core.ErrValidation, format)
	}
}

// Filename is daybook_report_<from>_to_<to>.<ext>.
func Filename(s Summary, ext string) string {
	return fmt.Sprintf("daybook_report_%s_to_%s.%s", s.From, s.To, ext)
}

type MarkdownRenderer struct {
	Currency string
}

func (MarkdownRenderer) ContentType() string { return "text/markdown; charset=utf-8" }
func (MarkdownRenderer) Extension() string   { return "md" }

func (r MarkdownRenderer) Render(s Summary) ([]byte, error) {
	money := func(m core.Money) string { return core.FormatMoney(m, r.Currency) }

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", reportTitle)
	fmt.Fprintf(&b, "Period: %s to %s\n\n", s.From, s.To)

	b.WriteString("## Summary\n\n")
	b.WriteString("| | Amount |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Total Income | %s |\n", money(s.TotalIncome))
	fmt.Fprintf(&b, "| Total Expenses | %s |\n", money(s.TotalExpenses))
	fmt.Fprintf(&b, "| %s | %s |\n", s.NetLabel(), money(s.AbsNet()))

	writeDetails := func(title string, entries []core.Entry) {
		if len(entries) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n## %s\n\n", title)
		b.WriteString("| Date | Category | Amount | Description |\n|---|---|---:|---|\n")
		for _, e := range entries {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				e.Date, cell(e.Category), money(e.Amount), cell(e.Description))
		}
	}
	writeDetails("Income Details", s.IncomeEntries)
	writeDetails("Expense Details", s.ExpenseEntries)

	return []byte(b.String()), nil
}

// cell escapes text for a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

type HTMLRenderer struct {
	Currency string
}

func (HTMLRenderer) ContentType() string { return "text/html; charset=utf-8" }
func (HTMLRenderer) Extension() string   { return "html" }

func (r HTMLRenderer) Render(s Summary) ([]byte, error) {
	src, err := MarkdownRenderer{Currency: r.Currency}.Render(s)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var body bytes.Buffer
	if err := md.Convert(src, &body); err != nil {
		return nil, fmt.Errorf("convert report to html: %w", err)
	}

	var out bytes.Buffer
	out.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&out, "<title>%s %s to %s</title>\n", reportTitle, s.From, s.To)
	out.WriteString("</head>\n<body>\n")
	out.Write(body.Bytes())
	out.WriteString("</body>\n</html>\n")
	return out.Bytes(), nil
}

// CSVRenderer writes every table one after another, separated by a blank line.
// Text cells that would start a formula are escaped.
type CSVRenderer struct{}

func (CSVRenderer) ContentType() string { return "text/csv; charset=utf-8" }
func (CSVRenderer) Extension() string   { return "csv" }

func (CSVRenderer) Render(s Summary) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for i, t := range Tables(s) {
		if i > 0 {
			if err := w.Write([]string{""}); err != nil {
				return nil, err
			}
		}
		if err := w.Write([]string{t.Name}); err != nil {
			return nil, err
		}
		for r, row := range t.Rows {
			if len(row) == 0 {
				row = []string{""}
			}
			out := make([]string, len(row))
			for c, v := range row {
				if t.IsAmount(r, c) {
					out[c] = v
				} else {
					out[c] = EscapeFormula(v)
				}
			}
			if err := w.Write(out); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// TerminalRenderer styles the markdown report for an ANSI terminal.
type TerminalRenderer struct {
	Currency string
	// Style is a glamour standard style name; empty selects one from the terminal background.
	Style    string
	WordWrap int
}

func (TerminalRenderer) ContentType() string { return "text/plain; charset=utf-8" }
func (TerminalRenderer) Extension() string   { return "txt" }

func (r TerminalRenderer) Render(s Summary) ([]byte, error) {
	src, err := MarkdownRenderer{Currency: r.Currency}.Render(s)
	if err != nil {
		return nil, err
	}

	opts := []glamour.TermRendererOption{}
	if r.Style != "" {
		opts = append(opts, glamour.WithStandardStyle(r.Style))
	} else {
		opts = append(opts, glamour.WithAutoStyle())
	}
	wrap := r.WordWrap
	if wrap <= 0 {
		wrap = 100
	}
	opts = append(opts, glamour.WithWordWrap(wrap))

	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("create terminal renderer: %w", err)
	}
	out, err := tr.Render(string(src))
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return []byte(out), nil
}
