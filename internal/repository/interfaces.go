package repository

import (
	"context"
	"time"

	"echo_microblog/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// UpdateAvatarURL stores the avatar location once the upload succeeds.
	UpdateAvatarURL(ctx context.Context, userID int64, url string) error
	// ListIdentities returns every (id, identity_hash) pair for the
	// identity resolver's one-way comparison scan.
	ListIdentities(ctx context.Context) ([]model.UserIdentity, error)
	// DeleteAccount removes the user, their posts, and every ledger row
	// they own, settling counters first, all in one transaction.
	DeleteAccount(ctx context.Context, userID int64) error
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, postID int64) (*model.Post, error)
	List(ctx context.Context, order model.SortOrder) ([]model.Post, error)
	ListByAuthor(ctx context.Context, username string) ([]model.Post, error)
	// Delete removes a post and its ledger rows; only the author may delete.
	Delete(ctx context.Context, postID int64, username string) error
	Exists(ctx context.Context, postID int64) (bool, error)
}

// ReactionRepository is the reaction ledger. Each toggle runs as a single
// transaction serialized per post, so counters can never drift from the
// ledger relations.
type ReactionRepository interface {
	ToggleLike(ctx context.Context, userID, postID int64) (*model.ReactionResult, error)
	ToggleDislike(ctx context.Context, userID, postID int64) (*model.ReactionResult, error)
	State(ctx context.Context, userID, postID int64) (model.ReactionState, error)
	// CountLikes/CountDislikes report ledger cardinality for reconciliation.
	CountLikes(ctx context.Context, postID int64) (int, error)
	CountDislikes(ctx context.Context, postID int64) (int, error)
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, id string, replacedBy *string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}
