package apperr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestIsKind(t *testing.T) {
	schemaErr := Schemaf("Notes", "required column missing")

	tests := []struct {
		name string
		err  error
		kind Kind
		want bool
	}{
		{name: "direct match", err: schemaErr, kind: KindSchema, want: true},
		{name: "kind mismatch", err: schemaErr, kind: KindIO, want: false},
		{name: "wrapped match", err: fmt.Errorf("processing failed: %w", schemaErr), kind: KindSchema, want: true},
		{name: "plain error", err: errors.New("boom"), kind: KindSchema, want: false},
		{name: "nil", err: nil, kind: KindSchema, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsKind(tt.err, tt.kind); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := Schemaf("Bangumi_total", "required column missing from header row %d", 2)
	msg := err.Error()
	if !strings.Contains(msg, "Bangumi_total") {
		t.Errorf("Expected message to name the column, got %q", msg)
	}
	if !strings.Contains(msg, "schema") {
		t.Errorf("Expected message to name the kind, got %q", msg)
	}
}

func TestIOUnwrap(t *testing.T) {
	underlying := errors.New("permission denied")
	err := IO("/tmp/out.xlsx", underlying, "failed to save workbook")

	if !errors.Is(err, underlying) {
		t.Error("Expected wrapped error to be reachable via errors.Is")
	}
	if !strings.Contains(err.Error(), "/tmp/out.xlsx") {
		t.Errorf("Expected message to carry the path, got %q", err.Error())
	}
}

func TestWarningString(t *testing.T) {
	w := Warning{Row: 14, Column: "Anilist", Msg: "malformed rating \"n/a\", treated as missing"}
	got := w.String()
	if !strings.Contains(got, "row 14") || !strings.Contains(got, "Anilist") {
		t.Errorf("Expected location in warning, got %q", got)
	}
}
