package model

// ReactionState is the state of one (user, post) pair in the ledger.
// A pair is a member of at most one of the two relations (likes, dislikes),
// so exactly one of the three states holds at any time.
type ReactionState int

const (
	ReactionNone ReactionState = iota
	ReactionLiked
	ReactionDisliked
)

func (s ReactionState) String() string {
	switch s {
	case ReactionLiked:
		return "liked"
	case ReactionDisliked:
		return "disliked"
	default:
		return "none"
	}
}

// ReactionResult is returned to the caller after a toggle so the UI can
// reflect the new state without a second read.
type ReactionResult struct {
	Success         bool `json:"success"`
	Likes           int  `json:"likes"`
	Dislikes        int  `json:"dislikes"`
	ExistingLike    bool `json:"existingLike"`
	ExistingDislike bool `json:"existingDislike"`
}

// Transition describes the full effect of a toggle from a given state:
// which memberships to add or remove, and the exactly-matching counter
// deltas. Every membership mutation pairs with its counter delta here, so
// callers cannot adjust one without the other.
type Transition struct {
	Next ReactionState

	InsertLike    bool
	RemoveLike    bool
	InsertDislike bool
	RemoveDislike bool

	LikeDelta    int
	DislikeDelta int
}

// ToggleLikeTransition is the transition table for toggleLike.
//
//	NONE     -> LIKED  (+1 like)
//	LIKED    -> NONE   (-1 like)
//	DISLIKED -> LIKED  (-1 dislike, +1 like)
func ToggleLikeTransition(current ReactionState) Transition {
	switch current {
	case ReactionLiked:
		return Transition{Next: ReactionNone, RemoveLike: true, LikeDelta: -1}
	case ReactionDisliked:
		return Transition{
			Next:          ReactionLiked,
			RemoveDislike: true,
			InsertLike:    true,
			LikeDelta:     1,
			DislikeDelta:  -1,
		}
	default:
		return Transition{Next: ReactionLiked, InsertLike: true, LikeDelta: 1}
	}
}

// ToggleDislikeTransition is the symmetric table for toggleDislike.
func ToggleDislikeTransition(current ReactionState) Transition {
	switch current {
	case ReactionDisliked:
		return Transition{Next: ReactionNone, RemoveDislike: true, DislikeDelta: -1}
	case ReactionLiked:
		return Transition{
			Next:          ReactionDisliked,
			RemoveLike:    true,
			InsertDislike: true,
			LikeDelta:     -1,
			DislikeDelta:  1,
		}
	default:
		return Transition{Next: ReactionDisliked, InsertDislike: true, DislikeDelta: 1}
	}
}
