package shared

import (
	"bytes"
	"testing"
)

func TestTruthy(t *testing.T) {
	tc := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{" yes ", true},
		{"false", false},
		{"0", false},
		{"no", false},
		{"", false},
		{"enabled", false},
	}

	for _, tt := range tc {
		t.Run(tt.value, func(t *testing.T) {
			if got := Truthy(tt.value); got != tt.want {
				t.Errorf("Truthy(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestGenerateID(t *testing.T) {
	a := GenerateID()
	b := GenerateID()

	if a == "" || b == "" {
		t.Fatal("generated IDs should not be empty")
	}
	if a == b {
		t.Error("generated IDs should be unique")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	logger.Info("hello", "key", "value")

	if buf.Len() == 0 {
		t.Error("expected log output")
	}

	if l := NewLogger(nil); l == nil {
		t.Error("nil writer should fall back to stderr logger")
	}
}
