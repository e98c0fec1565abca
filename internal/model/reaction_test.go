package model

import "testing"

func TestToggleLikeTransition(t *testing.T) {
	tests := []struct {
		name    string
		current ReactionState
		want    Transition
	}{
		{
			name:    "none becomes liked",
			current: ReactionNone,
			want:    Transition{Next: ReactionLiked, InsertLike: true, LikeDelta: 1},
		},
		{
			name:    "liked becomes none",
			current: ReactionLiked,
			want:    Transition{Next: ReactionNone, RemoveLike: true, LikeDelta: -1},
		},
		{
			name:    "disliked switches to liked",
			current: ReactionDisliked,
			want: Transition{
				Next:          ReactionLiked,
				RemoveDislike: true,
				InsertLike:    true,
				LikeDelta:     1,
				DislikeDelta:  -1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToggleLikeTransition(tt.current)
			if got != tt.want {
				t.Errorf("ToggleLikeTransition(%v) = %+v, want %+v", tt.current, got, tt.want)
			}
		})
	}
}

func TestToggleDislikeTransition(t *testing.T) {
	tests := []struct {
		name    string
		current ReactionState
		want    Transition
	}{
		{
			name:    "none becomes disliked",
			current: ReactionNone,
			want:    Transition{Next: ReactionDisliked, InsertDislike: true, DislikeDelta: 1},
		},
		{
			name:    "disliked becomes none",
			current: ReactionDisliked,
			want:    Transition{Next: ReactionNone, RemoveDislike: true, DislikeDelta: -1},
		},
		{
			name:    "liked switches to disliked",
			current: ReactionLiked,
			want: Transition{
				Next:          ReactionDisliked,
				RemoveLike:    true,
				InsertDislike: true,
				LikeDelta:     -1,
				DislikeDelta:  1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToggleDislikeTransition(tt.current)
			if got != tt.want {
				t.Errorf("ToggleDislikeTransition(%v) = %+v, want %+v", tt.current, got, tt.want)
			}
		})
	}
}

// Each toggle applied twice from any start state must return to that state
// with zero net counter change.
func TestToggleIsSelfInverse(t *testing.T) {
	states := []ReactionState{ReactionNone, ReactionLiked, ReactionDisliked}
	tables := map[string]func(ReactionState) Transition{
		"like":    ToggleLikeTransition,
		"dislike": ToggleDislikeTransition,
	}

	for name, table := range tables {
		for _, start := range states {
			first := table(start)
			second := table(first.Next)

			if second.Next != start {
				t.Errorf("%s toggle twice from %v ended at %v, want %v", name, start, second.Next, start)
			}
			if d := first.LikeDelta + second.LikeDelta; d != 0 {
				t.Errorf("%s toggle twice from %v: net like delta %d, want 0", name, start, d)
			}
			if d := first.DislikeDelta + second.DislikeDelta; d != 0 {
				t.Errorf("%s toggle twice from %v: net dislike delta %d, want 0", name, start, d)
			}
		}
	}
}

// A transition may never leave the pair in both relations, and every
// membership mutation must come with the matching counter delta.
func TestTransitionConsistency(t *testing.T) {
	states := []ReactionState{ReactionNone, ReactionLiked, ReactionDisliked}
	tables := map[string]func(ReactionState) Transition{
		"like":    ToggleLikeTransition,
		"dislike": ToggleDislikeTransition,
	}

	for name, table := range tables {
		for _, start := range states {
			tr := table(start)

			if tr.InsertLike && tr.InsertDislike {
				t.Errorf("%s from %v inserts into both relations", name, start)
			}
			wantLikeDelta := 0
			if tr.InsertLike {
				wantLikeDelta++
			}
			if tr.RemoveLike {
				wantLikeDelta--
			}
			if tr.LikeDelta != wantLikeDelta {
				t.Errorf("%s from %v: like delta %d does not match memberships (want %d)", name, start, tr.LikeDelta, wantLikeDelta)
			}
			wantDislikeDelta := 0
			if tr.InsertDislike {
				wantDislikeDelta++
			}
			if tr.RemoveDislike {
				wantDislikeDelta--
			}
			if tr.DislikeDelta != wantDislikeDelta {
				t.Errorf("%s from %v: dislike delta %d does not match memberships (want %d)", name, start, tr.DislikeDelta, wantDislikeDelta)
			}
		}
	}
}

func TestReactionStateString(t *testing.T) {
	if got := ReactionNone.String(); got != "none" {
		t.Errorf("ReactionNone.String() = %q", got)
	}
	if got := ReactionLiked.String(); got != "liked" {
		t.Errorf("ReactionLiked.String() = %q", got)
	}
	if got := ReactionDisliked.String(); got != "disliked" {
		t.Errorf("ReactionDisliked.String() = %q", got)
	}
}
