// Package http serves the daybook JSON API.
//
// This file parses request bodies and query strings into store inputs.
// Bodies may be JSON or form-encoded.
package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"daybook/internal/accounts"
	"daybook/internal/core"
	"daybook/internal/entries"
	"daybook/internal/ledger"
)

// maxBodyBytes bounds request bodies, backups included.
const maxBodyBytes = 8 << 20

// RequestBodyParser reads a JSON or form body once and exposes its fields as strings.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse decodes the body. JSON numbers are kept as their literal text so
// amounts never pass through float64.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		p.jsonData = make(map[string]any)
		if err := dec.Decode(&p.jsonData); err != nil {
			p.err = fmt.Errorf("%w: invalid JSON body: %w", core.ErrFormat, err)
		}
		return p.err
	}

	p.formData, p.err = url.ParseQuery(string(trimmed))
	if p.err != nil {
		p.err = fmt.Errorf("%w: invalid form body: %w", core.ErrFormat, p.err)
	}
	return p.err
}

// Get returns a trimmed, sanitized value, or "" when the field is absent.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Has reports whether key was present in the body.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		_, ok := p.jsonData[key]
		return ok
	}
	return p.formData != nil && p.formData.Has(key)
}

func (p *RequestBodyParser) Raw() []byte {
	return p.body
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput drops control characters other than tab and newlines and trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s))
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", core.ErrValidation, s)
	}
	return id, nil
}

func parseNewEntry(p *RequestBodyParser) (entries.NewEntry, error) {
	t, err := core.ParseEntryType(p.Get("type"))
	if err != nil {
		return entries.NewEntry{}, err
	}
	upd, err := parseEntryUpdate(p)
	if err != nil {
		return entries.NewEntry{}, err
	}
	return entries.NewEntry{
		Date:        upd.Date,
		Type:        t,
		Category:    upd.Category,
		Amount:      upd.Amount,
		Description: upd.Description,
	}, nil
}

func parseEntryUpdate(p *RequestBodyParser) (entries.EntryUpdate, error) {
	d, err := core.ParseDate(p.Get("date"))
	if err != nil {
		return entries.EntryUpdate{}, err
	}
	amount, err := core.ParseMoney(p.Get("amount"))
	if err != nil {
		return entries.EntryUpdate{}, err
	}
	category := p.Get("category")
	if category == "" {
		return entries.EntryUpdate{}, core.ErrEmptyCategory
	}
	return entries.EntryUpdate{
		Date:        d,
		Category:    category,
		Amount:      amount,
		Description: p.Get("description"),
	}, nil
}

func parseNewAccount(p *RequestBodyParser) (accounts.NewAccount, error) {
	upd, err := parseAccountUpdate(p)
	if err != nil {
		return accounts.NewAccount{}, err
	}
	return accounts.NewAccount(upd), nil
}

func parseAccountUpdate(p *RequestBodyParser) (accounts.AccountUpdate, error) {
	d, err := core.ParseDate(p.Get("date"))
	if err != nil {
		return accounts.AccountUpdate{}, err
	}
	t, err := core.ParseAccountType(p.Get("type"))
	if err != nil {
		return accounts.AccountUpdate{}, err
	}
	amount, err := core.ParseMoney(p.Get("amount"))
	if err != nil {
		return accounts.AccountUpdate{}, err
	}
	due, err := core.ParseOptionalDate(p.Get("dueDate"))
	if err != nil {
		return accounts.AccountUpdate{}, err
	}
	party := p.Get("party")
	if party == "" {
		return accounts.AccountUpdate{}, core.ErrEmptyParty
	}
	return accounts.AccountUpdate{
		Date:        d,
		Type:        t,
		Party:       party,
		Amount:      amount,
		Description: p.Get("description"),
		DueDate:     due,
	}, nil
}

// parseEntryFilter reads type, date and category from the query. Type is optional here.
func parseEntryFilter(q url.Values) (ledger.Filter, error) {
	var f ledger.Filter
	if v := strings.TrimSpace(q.Get("type")); v != "" {
		t, err := core.ParseEntryType(v)
		if err != nil {
			return f, err
		}
		f.Type = t
	}
	d, err := core.ParseOptionalDate(strings.TrimSpace(q.Get("date")))
	if err != nil {
		return f, err
	}
	f.Date = d
	f.Category = strings.TrimSpace(q.Get("category"))
	if f.Type == "" && (!f.Date.IsZero() || f.Category != "") {
		return f, fmt.Errorf("%w: type is required when filtering by date or category", core.ErrValidation)
	}
	return f, nil
}

func parseAccountFilter(q url.Values) (accounts.Filter, error) {
	var f accounts.Filter
	if v := strings.TrimSpace(q.Get("type")); v != "" {
		t, err := core.ParseAccountType(v)
		if err != nil {
			return f, err
		}
		f.Type = t
	}
	st, err := core.ParseStatus(q.Get("status"))
	if err != nil {
		return f, err
	}
	f.Status = st
	f.Search = strings.TrimSpace(q.Get("search"))
	return f, nil
}

// parseDateRange reads optional from/to query parameters.
func parseDateRange(q url.Values) (from, to core.Date, err error) {
	if from, err = core.ParseOptionalDate(strings.TrimSpace(q.Get("from"))); err != nil {
		return
	}
	to, err = core.ParseOptionalDate(strings.TrimSpace(q.Get("to")))
	return
}
