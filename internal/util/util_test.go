package util

import (
	"encoding/hex"
	"testing"
)

func TestGenerateUniqueIDShape(t *testing.T) {
	id := GenerateUniqueID()
	if len(id) != 16 {
		t.Fatalf("expected 16 hex chars, got %d (%q)", len(id), id)
	}
	if _, err := hex.DecodeString(id); err != nil {
		t.Fatalf("id must be hex, got %q: %v", id, err)
	}
}

func TestGenerateUniqueIDNoCollisions(t *testing.T) {
	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		id := GenerateUniqueID()
		if seen[id] {
			t.Fatalf("collision after %d draws: %q", i, id)
		}
		seen[id] = true
	}
}

func TestParsePageQuery(t *testing.T) {
	cases := []struct {
		page, limit         string
		wantPage, wantLimit int
	}{
		{"2", "50", 2, 50},
		{"", "", 1, 20},
		{"0", "0", 1, 20},
		{"-3", "-1", 1, 20},
		{"1", "500", 1, 100},
		{"abc", "xyz", 1, 20},
	}
	for _, tc := range cases {
		page, limit := ParsePageQuery(tc.page, tc.limit, 100)
		if page != tc.wantPage || limit != tc.wantLimit {
			t.Fatalf("ParsePageQuery(%q, %q) = (%d, %d), want (%d, %d)",
				tc.page, tc.limit, page, limit, tc.wantPage, tc.wantLimit)
		}
	}
}

func TestMustParseUint(t *testing.T) {
	if got := MustParseUint("42"); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	if got := MustParseUint("not-a-number"); got != 0 {
		t.Fatalf("invalid input must yield 0, got %d", got)
	}
}
