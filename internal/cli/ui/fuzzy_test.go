package ui

import (
	"reflect"
	"testing"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		s1, s2 string
		want   int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"User", "User", 0},
		{"Usr", "User", 1},
	}

	for _, tt := range tests {
		if got := LevenshteinDistance(tt.s1, tt.s2); got != tt.want {
			t.Errorf("LevenshteinDistance(%q, %q) = %d, want %d", tt.s1, tt.s2, got, tt.want)
		}
	}
}

func TestFindSimilar(t *testing.T) {
	candidates := []string{"demo.User", "demo.Order", "demo.OrderLine", "billing.Invoice"}

	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{"close match on tail segment", "Usr", []string{"demo.User"}},
		{"exact tail", "Order", []string{"demo.Order"}},
		{"no match", "completely-unrelated", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindSimilar(tt.target, candidates, nil)
			if len(tt.want) == 0 {
				if len(got) != 0 {
					t.Errorf("expected no suggestions, got %v", got)
				}
				return
			}
			if len(got) == 0 || got[0] != tt.want[0] {
				t.Errorf("expected best suggestion %v, got %v", tt.want, got)
			}
		})
	}
}

func TestFindSimilarLimits(t *testing.T) {
	candidates := []string{"aaa", "aab", "aac", "aad", "aae"}
	got := FindSimilar("aaa", candidates, &FuzzyMatchOptions{MaxSuggestions: 2})
	if len(got) != 2 {
		t.Errorf("expected 2 suggestions, got %v", got)
	}
	if !reflect.DeepEqual(got[0], "aaa") {
		t.Errorf("expected exact match first, got %v", got)
	}
}

func TestFindBestMatch(t *testing.T) {
	candidates := []string{"demo.User", "demo.Order"}
	if got := FindBestMatch("demo.Usr", candidates, nil); got != "demo.User" {
		t.Errorf("expected demo.User, got %q", got)
	}
	if got := FindBestMatch("nothing-close-at-all", candidates, nil); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}
