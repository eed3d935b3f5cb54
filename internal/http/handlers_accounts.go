package http

import (
	"fmt"
	"net/http"

	"daybook/internal/accounts"
	"daybook/internal/core"
	"daybook/internal/log"
)

// accountView is an account with its derived balance and status.
type accountView struct {
	core.AccountEntry
	Balance core.Money  `json:"balance"`
	Status  core.Status `json:"status"`
}

func viewOf(a core.AccountEntry) accountView {
	return accountView{AccountEntry: a, Balance: accounts.Balance(a), Status: accounts.Status(a)}
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	f, err := parseAccountFilter(r.URL.Query())
	if err != nil {
		s.fail(w, r, log.OpList, err)
		return
	}
	list := s.svc.ListAccounts(f)
	views := make([]accountView, len(list))
	for i, a := range list {
		views[i] = viewOf(a)
	}
	NewResponse().JSON(views).Write(w)
}

func (s *Server) handleAccountSummary(w http.ResponseWriter, _ *http.Request) {
	NewResponse().JSON(s.svc.AccountSummary()).Write(w)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	in, err := parseNewAccount(p)
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	a, err := s.svc.AddAccount(r.Context(), in)
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(viewOf(a)).Write(w)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
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
	in, err := parseAccountUpdate(p)
	if err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	a, err := s.svc.UpdateAccount(r.Context(), id, in)
	if err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	NewResponse().JSON(viewOf(a)).Write(w)
}

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		s.fail(w, r, log.OpPayment, err)
		return
	}
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		s.fail(w, r, log.OpPayment, err)
		return
	}
	amount, err := core.ParseMoney(p.Get("amount"))
	if err != nil {
		s.fail(w, r, log.OpPayment, err)
		return
	}
	a, err := s.svc.RecordPayment(r.Context(), id, amount)
	if err != nil {
		s.fail(w, r, log.OpPayment, err)
		return
	}
	NewResponse().JSON(viewOf(a)).Write(w)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		s.fail(w, r, log.OpDelete, err)
		return
	}
	removed, err := s.svc.DeleteAccount(r.Context(), id)
	if err != nil {
		s.fail(w, r, log.OpDelete, err)
		return
	}
	if !removed {
		s.fail(w, r, log.OpDelete, fmt.Errorf("%w: account %d", core.ErrNotFound, id))
		return
	}
	NewResponse().Status(http.StatusNoContent).Write(w)
}
