package util

import "testing"

func TestParseSize(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"10MB", 10 << 20},
		{"512KB", 512 << 10},
		{"2GB", 2 << 30},
		{"64B", 64},
		{"1024", 1024},
		{"  10MB  ", 10 << 20},
		{"10mb", 10 << 20},
		{"10 MB", 10 << 20},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := ParseSize(tc.input, 0); got != tc.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseSize_FallsBackToDefault(t *testing.T) {
	def := int64(5 << 20)
	for _, input := range []string{"", "invalid", "-10MB", "MB"} {
		if got := ParseSize(input, def); got != def {
			t.Errorf("ParseSize(%q) = %d, want default %d", input, got, def)
		}
	}
}
