package core

import "testing"

func TestNewUUIDv7_IsEntityID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		id := NewUUIDv7()
		if !IsValidEntityID(id) {
			t.Fatalf("NewUUIDv7() = %q, rejected by IsValidEntityID", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestIsValidEntityID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"v7", "01912345-6789-7abc-8def-0123456789ab", true},
		{"v7 upper case", "01912345-6789-7ABC-BDEF-0123456789AB", true},
		{"v4", "550e8400-e29b-41d4-a716-446655440000", false},
		{"wrong variant", "01912345-6789-7abc-cdef-0123456789ab", false},
		{"urn form", "urn:uuid:01912345-6789-7abc-8def-0123456789ab", false},
		{"braced", "{01912345-6789-7abc-8def-0123456789ab}", false},
		{"no hyphens", "0191234567897abc8def0123456789ab", false},
		{"plate", "1234-ABC", false},
		{"path traversal", "../../etc/passwd", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidEntityID(tt.input); got != tt.want {
				t.Errorf("IsValidEntityID(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
