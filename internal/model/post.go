package model

import (
	"errors"
	"time"
)

// Post is a short published entry. The like/dislike counters are derived
// state: only the reaction ledger's toggle operations may change them.
type Post struct {
	ID           int64     `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	Content      string    `db:"content" json:"content"`
	Username     string    `db:"username" json:"username"` // author username
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	LikeCount    int       `db:"like_count" json:"likes"`
	DislikeCount int       `db:"dislike_count" json:"dislikes"`

	// Viewer-specific fields, populated only for authenticated reads.
	ExistingLike    bool `db:"-" json:"existingLike"`
	ExistingDislike bool `db:"-" json:"existingDislike"`
}

// SortOrder selects the ordering of the post list. The values match the
// ?sort= query parameter the frontend sends.
type SortOrder string

const (
	SortNewest     SortOrder = "recent"
	SortOldest     SortOrder = "old"
	SortMostLiked  SortOrder = "likes"
	SortLeastLiked SortOrder = "leastLikes"
)

// ParseSortOrder maps a query value to a SortOrder, defaulting to newest-first.
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(s) {
	case SortOldest, SortMostLiked, SortLeastLiked:
		return SortOrder(s)
	default:
		return SortNewest
	}
}

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

const (
	MaxPostTitleLength   = 120
	MaxPostContentLength = 5000
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrNotPostOwner    = errors.New("not the owner of this post")
	ErrTitleRequired   = errors.New("title is required")
	ErrContentRequired = errors.New("content is required")
	ErrTitleTooLong    = errors.New("title too long")
	ErrContentTooLong  = errors.New("content too long")
)
