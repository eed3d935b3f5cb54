package http

import (
	"fmt"
	"net/http"
	"strings"

	"daybook/internal/backup"
	"daybook/internal/core"
	"daybook/internal/log"
	"daybook/internal/report"
)

// handleProfitLoss serves the summary as JSON, or as a rendered document
// when format is md, html, csv, xlsx or term.
func (s *Server) handleProfitLoss(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to, err := parseDateRange(q)
	if err != nil {
		s.fail(w, r, log.OpRender, err)
		return
	}

	format := strings.ToLower(strings.TrimSpace(q.Get("format")))
	if format == "" || format == "json" {
		summary, err := s.svc.ProfitLoss(from, to)
		if err != nil {
			s.fail(w, r, log.OpRender, err)
			return
		}
		NewResponse().JSON(summary).Write(w)
		return
	}

	key := fmt.Sprintf("%s|%s|%s|%d", from, to, format, s.svc.Version())
	if doc, ok := s.reports.Get(key); ok {
		doc.write(w, "HIT")
		return
	}

	renderer, err := report.Lookup(format, s.currency)
	if err != nil {
		s.fail(w, r, log.OpRender, err)
		return
	}
	out, summary, err := s.svc.RenderReport(r.Context(), from, to, renderer)
	if err != nil {
		s.fail(w, r, log.OpRender, err)
		return
	}
	doc := renderedReport{
		body:        out,
		contentType: renderer.ContentType(),
		filename:    report.Filename(summary, renderer.Extension()),
	}
	s.reports.Set(key, doc)
	doc.write(w, "MISS")
}

// renderedReport is a cached report document.
type renderedReport struct {
	body        []byte
	contentType string
	filename    string
}

func (d renderedReport) write(w http.ResponseWriter, cacheStatus string) {
	NewResponse().
		Header("X-Cache", cacheStatus).
		Body(d.body, d.contentType).
		Attachment(d.filename).
		Write(w)
}

func (s *Server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r.URL.Query())
	if err != nil {
		s.fail(w, r, log.OpExport, err)
		return
	}
	ref, err := s.svc.ExportReportToSheets(r.Context(), from, to)
	if err != nil {
		s.fail(w, r, log.OpExport, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(map[string]string{"ref": ref}).Write(w)
}

func (s *Server) handleExportBackup(w http.ResponseWriter, r *http.Request) {
	data, _, err := s.svc.ExportBackup(r.Context())
	if err != nil {
		s.fail(w, r, log.OpExport, err)
		return
	}
	NewResponse().
		Body(data, "application/json; charset=utf-8").
		Attachment(backup.Filename(s.svc.Today().Time)).
		Write(w)
}

// handleImportBackup replaces all entries and categories with the uploaded
// snapshot. The request must carry ?confirm=true.
func (s *Server) handleImportBackup(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		s.fail(w, r, log.OpImport, err)
		return
	}
	if !p.IsJSON() {
		s.fail(w, r, log.OpImport, core.ErrFormat)
		return
	}
	confirm := r.URL.Query().Get("confirm") == "true"
	res, err := s.svc.ImportBackup(r.Context(), p.Raw(), confirm)
	if err != nil {
		s.fail(w, r, log.OpImport, err)
		return
	}
	NewResponse().JSON(res).Write(w)
}
