package job

import (
	"strings"
	"testing"
)

func TestMakeSlug(t *testing.T) {
	tests := []struct {
		title  string
		prefix string
	}{
		{"Senior Go Engineer", "senior-go-engineer-"},
		{"C++ / Rust Developer (Berlin)", "c-rust-developer-berlin-"},
		{"  spaced   out  ", "spaced-out-"},
		{"日本語", ""},
	}

	for _, tt := range tests {
		got := MakeSlug(tt.title)
		if !strings.HasPrefix(got, tt.prefix) {
			t.Errorf("MakeSlug(%q) = %q, expected prefix %q", tt.title, got, tt.prefix)
		}
		if strings.Contains(got, "--") || strings.HasSuffix(got, "-") {
			t.Errorf("MakeSlug(%q) = %q is not a clean slug", tt.title, got)
		}
	}

	if MakeSlug("Go Developer") == MakeSlug("Go Developer") {
		t.Error("two slugs for the same title should not collide")
	}
}
