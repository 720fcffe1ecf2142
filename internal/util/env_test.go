package util

import (
	"testing"
	"time"
)

func TestGetEnvNumeric(t *testing.T) {
	t.Setenv("GM_NUM", "12")
	t.Setenv("GM_BAD", "twelve")

	if got := GetEnvNumeric("GM_NUM", 3); got != 12 {
		t.Fatalf("GetEnvNumeric() = %d, want 12", got)
	}
	if got := GetEnvNumeric("GM_BAD", 3); got != 3 {
		t.Fatalf("GetEnvNumeric(bad) = %d, want 3", got)
	}
	if got := GetEnvNumeric("GM_MISSING", 7); got != 7 {
		t.Fatalf("GetEnvNumeric(missing) = %d, want 7", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"FALSE", true, false},
		{"maybe", true, true},
	}
	for _, tt := range tests {
		t.Setenv("GM_BOOL", tt.value)
		if got := GetEnvBool("GM_BOOL", tt.def); got != tt.want {
			t.Fatalf("GetEnvBool(%q, %v) = %v, want %v", tt.value, tt.def, got, tt.want)
		}
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"90", 90 * time.Second},
		{"5m", 5 * time.Minute},
		{"", time.Minute},
		{"soon", time.Minute},
	}
	for _, tt := range tests {
		t.Setenv("GM_DUR", tt.value)
		if got := GetEnvDuration("GM_DUR", time.Minute); got != tt.want {
			t.Fatalf("GetEnvDuration(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestGetEnvString(t *testing.T) {
	t.Setenv("GM_STR", "")
	if got := GetEnvString("GM_STR", "fallback"); got != "fallback" {
		t.Fatalf("GetEnvString(empty) = %q, want fallback", got)
	}
	t.Setenv("GM_STR", "set")
	if got := GetEnvString("GM_STR", "fallback"); got != "set" {
		t.Fatalf("GetEnvString() = %q, want set", got)
	}
}
