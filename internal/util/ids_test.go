package util

import "testing"

func TestNewID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if !IsID(id) {
			t.Fatalf("NewID() = %q is not a valid id", id)
		}
		if seen[id] {
			t.Fatalf("NewID() repeated %q", id)
		}
		seen[id] = true
	}
}

func TestIsID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"Valid", "sGvgBXbBcVCjBIKCLS2Os", true},
		{"DashesAndUnderscores", "Aa0_-Bb1_-Cc2_-Dd3_-E", true},
		{"TooShort", "abc123", false},
		{"TooLong", "sGvgBXbBcVCjBIKCLS2OsX", false},
		{"WithSpace", "sGvgBXbBcVCjBIKCL 2Os", false},
		{"WithSlash", "sGvgBXbBcVCjBIKCL/2Os", false},
		{"Empty", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsID(tc.in); got != tc.want {
				t.Fatalf("IsID(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}
