package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"echo_microblog/internal/model"
)

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user. Unique violations are mapped to typed errors
// so the handler can tell a taken username from an already-linked identity.
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (username, identity_hash, avatar_url)
		VALUES ($1, $2, $3)
		RETURNING id, member_since
	`
	err := r.db.QueryRowxContext(ctx, query, u.Username, u.IdentityHash, u.AvatarURL).
		Scan(&u.ID, &u.MemberSince)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "users_identity_hash_key" {
				return model.ErrIdentityExists
			}
			return model.ErrUsernameExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `
		SELECT id, username, identity_hash, avatar_url, member_since
		FROM users
		WHERE id = $1
	`
	var u model.User
	err := r.db.GetContext(ctx, &u, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &u, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `
		SELECT id, username, identity_hash, avatar_url, member_since
		FROM users
		WHERE username = $1
	`
	var u model.User
	err := r.db.GetContext(ctx, &u, query, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return &u, nil
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, username)
	if err != nil {
		return false, fmt.Errorf("check username existence: %w", err)
	}
	return exists, nil
}

func (r *userRepository) UpdateAvatarURL(ctx context.Context, userID int64, url string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET avatar_url = $2 WHERE id = $1`, userID, url)
	if err != nil {
		return fmt.Errorf("update avatar url: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// ListIdentities returns every stored identity hash. The resolver scans
// them with a one-way compare; acceptable at this scale.
func (r *userRepository) ListIdentities(ctx context.Context) ([]model.UserIdentity, error) {
	identities := []model.UserIdentity{}
	err := r.db.SelectContext(ctx, &identities, `SELECT id, identity_hash FROM users`)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	return identities, nil
}

// DeleteAccount removes a user and everything that depends on them inside
// one transaction. Each relation's removal and its counter settlement run
// as a single data-modifying CTE, with the decrements computed from exactly
// the rows that were deleted. A toggle committing on another session while
// this transaction is in flight therefore can never have its ledger row
// removed without the matching decrement: whatever rows the DELETE sees,
// the UPDATE settles. The user's own posts go last, together with any
// ledger rows still referencing them; counters on those posts die with the
// rows.
func (r *userRepository) DeleteAccount(ctx context.Context, userID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var username string
	err = tx.QueryRowxContext(ctx, `SELECT username FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&username)
	if err == sql.ErrNoRows {
		return model.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("lock user: %w", err)
	}

	steps := []struct {
		desc  string
		query string
		arg   interface{}
	}{
		{"remove likes and settle counters", `
			WITH removed AS (
				DELETE FROM likes WHERE user_id = $1 RETURNING post_id
			)
			UPDATE posts SET like_count = like_count - r.n
			FROM (SELECT post_id, COUNT(*) AS n FROM removed GROUP BY post_id) r
			WHERE posts.id = r.post_id`, userID},
		{"remove dislikes and settle counters", `
			WITH removed AS (
				DELETE FROM dislikes WHERE user_id = $1 RETURNING post_id
			)
			UPDATE posts SET dislike_count = dislike_count - r.n
			FROM (SELECT post_id, COUNT(*) AS n FROM removed GROUP BY post_id) r
			WHERE posts.id = r.post_id`, userID},
		{"delete own posts and their ledger rows", `
			WITH removed_posts AS (
				DELETE FROM posts WHERE username = $1 RETURNING id
			), removed_likes AS (
				DELETE FROM likes WHERE post_id IN (SELECT id FROM removed_posts)
			)
			DELETE FROM dislikes WHERE post_id IN (SELECT id FROM removed_posts)`, username},
		{"delete sessions", `DELETE FROM refresh_tokens WHERE user_id = $1`, userID},
		{"delete user", `DELETE FROM users WHERE id = $1`, userID},
	}
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step.query, step.arg); err != nil {
			return fmt.Errorf("%s: %w", step.desc, err)
		}
	}

	return tx.Commit()
}
