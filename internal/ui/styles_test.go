package ui

import (
	"strings"
	"testing"
)

func TestFormatClientLine(t *testing.T) {
	tests := []struct {
		name     string
		position int
		client   string
		active   bool
	}{
		{
			name:     "active client",
			position: 1,
			client:   "Alpha Pilot",
			active:   true,
		},
		{
			name:     "inactive client",
			position: 3,
			client:   "Bravo Pilot",
			active:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatClientLine(tt.position, tt.client, tt.active)
			// Styling depends on the terminal; check content, not codes.
			if !strings.Contains(got, tt.client) {
				t.Errorf("FormatClientLine() missing client name %q in %q", tt.client, got)
			}
			if !strings.Contains(got, "●") && !strings.Contains(got, "○") {
				t.Errorf("FormatClientLine() missing indicator in %q", got)
			}
		})
	}
}

func TestIndicatorsDiffer(t *testing.T) {
	if ActiveIndicator == InactiveIndicator {
		t.Error("active and inactive indicators render identically")
	}
}
