package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"daybook/internal/core"
)

func newParser(t *testing.T, body string) *RequestBodyParser {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	return NewRequestBodyParser(httptest.NewRecorder(), req)
}

func TestRequestBodyParser_JSON(t *testing.T) {
	p := newParser(t, `{"id": "123", "name": "test", "amount": 42.50, "flag": true}`)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if !p.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}
	if id := p.Get("id"); id != "123" {
		t.Errorf("Get('id') = %q, want '123'", id)
	}
	if amount := p.Get("amount"); amount != "42.50" {
		t.Errorf("Get('amount') = %q, want the literal '42.50'", amount)
	}
	if flag := p.Get("flag"); flag != "true" {
		t.Errorf("Get('flag') = %q, want 'true'", flag)
	}
	if !p.Has("name") || p.Has("missing") {
		t.Error("Has() reported the wrong presence")
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	p := newParser(t, "id=456&name=form+test&value=100")
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if p.IsJSON() {
		t.Error("Expected IsJSON() to be false")
	}
	if name := p.Get("name"); name != "form test" {
		t.Errorf("Get('name') = %q, want 'form test'", name)
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	p := newParser(t, "")
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if p.Get("anything") != "" {
		t.Error("Expected empty value for missing key")
	}
}

func TestRequestBodyParser_InvalidJSON(t *testing.T) {
	p := newParser(t, `{"id": `)
	err := p.Parse()
	if !errors.Is(err, core.ErrFormat) {
		t.Fatalf("Parse() error = %v, want ErrFormat", err)
	}
	if again := p.Parse(); !errors.Is(again, core.ErrFormat) {
		t.Errorf("second Parse() = %v, want the cached error", again)
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Food  ", "Food"},
		{"a\x00b\x07c", "abc"},
		{"line1\nline2", "line1\nline2"},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"42", 42, false},
		{" 7 ", 7, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := parseID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr && !errors.Is(err, core.ErrValidation) {
			t.Errorf("parseID(%q) error = %v, want ErrValidation", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("parseID(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseNewEntry(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"valid json", `{"date":"2024-01-01","type":"income","category":" Salary ","amount":1000}`, nil},
		{"valid form with comma", "date=2024-01-01&type=expense&category=Food&amount=12,50", nil},
		{"bad type", `{"date":"2024-01-01","type":"gift","category":"X","amount":1}`, core.ErrInvalidType},
		{"bad date", `{"date":"01/01/2024","type":"income","category":"X","amount":1}`, core.ErrInvalidDate},
		{"missing date", `{"type":"income","category":"X","amount":1}`, core.ErrInvalidDate},
		{"zero amount", `{"date":"2024-01-01","type":"income","category":"X","amount":0}`, core.ErrInvalidAmount},
		{"negative amount", `{"date":"2024-01-01","type":"income","category":"X","amount":"-5"}`, core.ErrInvalidAmount},
		{"empty category", `{"date":"2024-01-01","type":"income","category":"  ","amount":1}`, core.ErrEmptyCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newParser(t, tt.body)
			if err := p.Parse(); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			in, err := parseNewEntry(p)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("parseNewEntry() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseNewEntry() error = %v", err)
			}
			if in.Category == "" || in.Amount.Cents <= 0 || in.Date.IsZero() {
				t.Errorf("parseNewEntry() = %+v", in)
			}
		})
	}
}

func TestParseNewAccount(t *testing.T) {
	p := newParser(t, `{"date":"2024-01-01","type":"receivable","party":"Ali","amount":"500","dueDate":"2024-02-01"}`)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	in, err := parseNewAccount(p)
	if err != nil {
		t.Fatalf("parseNewAccount() error = %v", err)
	}
	if in.Type != core.Receivable || in.Party != "Ali" || in.Amount.Cents != 50000 || in.DueDate.String() != "2024-02-01" {
		t.Errorf("parseNewAccount() = %+v", in)
	}

	p = newParser(t, `{"date":"2024-01-01","type":"payable","party":"","amount":"5"}`)
	_ = p.Parse()
	if _, err := parseNewAccount(p); !errors.Is(err, core.ErrEmptyParty) {
		t.Errorf("empty party error = %v, want ErrEmptyParty", err)
	}
}

func TestParseEntryFilter(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr bool
	}{
		{"empty", "", false},
		{"type only", "type=income", false},
		{"all fields", "type=expense&date=2024-01-02&category=Food", false},
		{"category without type", "category=Food", true},
		{"bad type", "type=other", true},
		{"bad date", "type=income&date=2024-13-01", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			_, err := parseEntryFilter(q)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseEntryFilter(%q) error = %v, wantErr %v", tt.query, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, core.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestParseAccountFilter(t *testing.T) {
	q, _ := url.ParseQuery("type=payable&status=partial&search=%20ali%20")
	f, err := parseAccountFilter(q)
	if err != nil {
		t.Fatalf("parseAccountFilter() error = %v", err)
	}
	if f.Type != core.Payable || f.Status != core.StatusPartial || f.Search != "ali" {
		t.Errorf("parseAccountFilter() = %+v", f)
	}

	q, _ = url.ParseQuery("status=overdue")
	if _, err := parseAccountFilter(q); !errors.Is(err, core.ErrValidation) {
		t.Errorf("bad status error = %v", err)
	}
}

func TestParseDateRange(t *testing.T) {
	q, _ := url.ParseQuery("from=2024-01-01&to=2024-01-31")
	from, to, err := parseDateRange(q)
	if err != nil {
		t.Fatalf("parseDateRange() error = %v", err)
	}
	if from.String() != "2024-01-01" || to.String() != "2024-01-31" {
		t.Errorf("parseDateRange() = %s..%s", from, to)
	}

	q, _ = url.ParseQuery("from=yesterday")
	if _, _, err := parseDateRange(q); !errors.Is(err, core.ErrInvalidDate) {
		t.Errorf("bad from error = %v", err)
	}
}
