package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"daybook/internal/core"
)

func TestStatusStyle(t *testing.T) {
	tests := []struct {
		status core.Status
		want   lipgloss.TerminalColor
	}{
		{core.StatusPaid, SuccessColor},
		{core.StatusPartial, WarningColor},
		{core.StatusPending, ErrorColor},
	}
	for _, tt := range tests {
		if got := StatusStyle(tt.status).GetForeground(); got != tt.want {
			t.Errorf("StatusStyle(%s) foreground = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestMoneyStyle(t *testing.T) {
	if got := MoneyStyle(core.Cents(-1)).GetForeground(); got != ErrorColor {
		t.Errorf("negative foreground = %v", got)
	}
	if got := MoneyStyle(core.Cents(0)).GetForeground(); got != SuccessColor {
		t.Errorf("zero foreground = %v", got)
	}
}

func TestFormatMessages(t *testing.T) {
	if got := FormatSuccess("saved"); !strings.Contains(got, "saved") || !strings.Contains(got, SuccessIcon) {
		t.Errorf("FormatSuccess() = %q", got)
	}
	if got := FormatError("failed"); !strings.Contains(got, "failed") || !strings.Contains(got, ErrorIcon) {
		t.Errorf("FormatError() = %q", got)
	}
}
