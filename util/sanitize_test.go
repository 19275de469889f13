package util

import (
	"testing"
)

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims whitespace", "  hello  ", "hello"},
		{"removes control chars", "hello\x00world", "helloworld"},
		{"removes tabs and newlines", "line1\n\tline2", "line1line2"},
		{"empty string", "", ""},
		{"no changes needed", "clean", "clean"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SanitizeString(tc.input)
			if got != tc.want {
				t.Errorf("SanitizeString(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestSafeUsername(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Alice", "alice"},
		{"trims and lowercases", "  Bob  ", "bob"},
		{"spaces become underscores", "mary jane", "mary_jane"},
		{"path separators dropped", "../etc/passwd", "etcpasswd"},
		{"dot names stripped", "..", ""},
		{"unicode dropped", "अलीσa", "a"},
		{"keeps digits dash dot", "user-2.0", "user-2.0"},
		{"empty", "", ""},
		{"only unsafe runes", "///", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SafeUsername(tc.input)
			if got != tc.want {
				t.Errorf("SafeUsername(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
