package model

import "testing"

func TestValidItemStatus(t *testing.T) {
	for _, s := range []string{ItemStatusAvailable, ItemStatusRecycled} {
		if !ValidItemStatus(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range []string{"", "archived", "Available", "sold"} {
		if ValidItemStatus(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestCanonicalCategory(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plastic", "Plastic"},
		{"ELECTRONICS", "Electronics"},
		{"Books", "Books"},
		{"Toys", "Toys"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CanonicalCategory(tt.in); got != tt.want {
			t.Errorf("CanonicalCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCanonicalCity(t *testing.T) {
	if got := CanonicalCity("mumbai"); got != "Mumbai" {
		t.Errorf("expected Mumbai, got %q", got)
	}
	if got := CanonicalCity("Pune"); got != "Pune" {
		t.Errorf("unknown city should pass through, got %q", got)
	}
}
