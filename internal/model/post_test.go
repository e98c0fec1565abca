package model

import "testing"

func TestParseSortOrder(t *testing.T) {
	tests := []struct {
		input string
		want  SortOrder
	}{
		{"recent", SortNewest},
		{"old", SortOldest},
		{"likes", SortMostLiked},
		{"leastLikes", SortLeastLiked},
		{"", SortNewest},
		{"garbage", SortNewest},
		{"LIKES", SortNewest}, // values are case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseSortOrder(tt.input); got != tt.want {
				t.Errorf("ParseSortOrder(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
