package utils

import (
	"strings"
	"testing"
)

func TestGenerateLearnerCodeFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateLearnerCode()
		if err != nil {
			t.Fatalf("GenerateLearnerCode failed: %v", err)
		}
		if len(code) != 8 {
			t.Fatalf("code length: got %d, want 8 (%q)", len(code), code)
		}
		if !IsValidLearnerCode(code) {
			t.Fatalf("generated code fails validation: %q", code)
		}
		for _, c := range code {
			if strings.ContainsRune("0O1IL", c) {
				t.Fatalf("code contains confusable character: %q", code)
			}
		}
		seen[code] = true
	}
	if len(seen) < 99 {
		t.Fatalf("codes not sufficiently random: %d distinct of 100", len(seen))
	}
}

func TestIsValidLearnerCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"ABCD2345", true},
		{"abcd2345", true},
		{"", false},
		{"SHORT", false},
		{"TOOLONGCODE", false},
		{"ABCD234O", false},
		{"ABCD2341", false},
		{"ABCD 234", false},
	}
	for _, tt := range tests {
		if got := IsValidLearnerCode(tt.code); got != tt.want {
			t.Fatalf("IsValidLearnerCode(%q): got %v, want %v", tt.code, got, tt.want)
		}
	}
}
