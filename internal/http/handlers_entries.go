package http

import (
	"fmt"
	"net/http"
	"strconv"

	"daybook/internal/core"
	"daybook/internal/log"
)

const defaultRecent = 5

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	recent := defaultRecent
	if v := r.URL.Query().Get("recent"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.fail(w, r, log.OpRead, fmt.Errorf("%w: recent must be a non-negative integer", core.ErrValidation))
			return
		}
		recent = n
	}
	NewResponse().JSON(s.svc.Dashboard(recent)).Write(w)
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	f, err := parseEntryFilter(r.URL.Query())
	if err != nil {
		s.fail(w, r, log.OpList, err)
		return
	}
	NewResponse().JSON(s.svc.ListEntries(f)).Write(w)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	in, err := parseNewEntry(p)
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	e, err := s.svc.AddEntry(r.Context(), in)
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(e).Write(w)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	in, err := parseEntryUpdate(p)
	if err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	e, err := s.svc.UpdateEntry(r.Context(), id, in)
	if err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	NewResponse().JSON(e).Write(w)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		s.fail(w, r, log.OpDelete, err)
		return
	}
	removed, err := s.svc.DeleteEntry(r.Context(), id)
	if err != nil {
		s.fail(w, r, log.OpDelete, err)
		return
	}
	if !removed {
		s.fail(w, r, log.OpDelete, fmt.Errorf("%w: entry %d", core.ErrNotFound, id))
		return
	}
	NewResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r.URL.Query())
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	rows, err := s.svc.Ledger(from, to)
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	NewResponse().JSON(rows).Write(w)
}

func (s *Server) handleListCategories(w http.ResponseWriter, _ *http.Request) {
	NewResponse().JSON(s.svc.Categories()).Write(w)
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	t, err := core.ParseEntryType(p.Get("type"))
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	if err := s.svc.AddCategory(r.Context(), t, p.Get("name")); err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(s.svc.Categories()).Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	t, err := core.ParseEntryType(r.PathValue("type"))
	if err != nil {
		s.fail(w, r, log.OpDelete, err)
		return
	}
	name := r.PathValue("name")
	removed, err := s.svc.DeleteCategory(r.Context(), t, name)
	if err != nil {
		s.fail(w, r, log.OpDelete, err)
		return
	}
	if !removed {
		s.fail(w, r, log.OpDelete, fmt.Errorf("%w: %s category %q", core.ErrNotFound, t, name))
		return
	}
	NewResponse().Status(http.StatusNoContent).Write(w)
}
