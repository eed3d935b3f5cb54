package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"INFO", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tc := range cases {
		got, err := ParseLevel(tc.in)
		if (err != nil) != tc.wantErr {
			t.Fatalf("ParseLevel(%q) err = %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentEntries, Output: &buf})
	l.Info("entry created", FieldID, 42)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if rec[FieldComponent] != ComponentEntries {
		t.Fatalf("component = %v", rec[FieldComponent])
	}
	if rec[FieldID] != float64(42) {
		t.Fatalf("id = %v", rec[FieldID])
	}

	buf.Reset()
	l.WithComponent(ComponentAccounts).Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug record written at info level: %s", buf.String())
	}
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: slog.LevelInfo, Component: ComponentHTTP, Output: &buf})

	ctx := NewContext(context.Background(), base.With(FieldRequestID, "req-1"))
	FromContext(ctx).Info("inside handler")

	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Fatalf("expected request id in %q", buf.String())
	}
	if got := FromContext(context.Background()).Component(); got != "unknown" {
		t.Fatalf("fallback component = %q", got)
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelInfo, Output: &buf}))

	req := httptest.NewRequest(http.MethodGet, "/api/entries?type=income", nil)
	sl.LogHTTPEnd(context.Background(), req, http.StatusNotFound, 3, "192.0.2.1")
	if out := buf.String(); !strings.Contains(out, "level=WARN") || !strings.Contains(out, "status_code=404") {
		t.Fatalf("4xx request log = %q", out)
	}

	buf.Reset()
	sl.LogError(context.Background(), "Request failed", errors.New("disk full"), ComponentHTTP, OpCreate, nil)
	out := buf.String()
	for _, want := range []string{"level=ERROR", "error=\"disk full\"", "operation=create"} {
		if !strings.Contains(out, want) {
			t.Errorf("error log missing %s: %q", want, out)
		}
	}
}
