package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"echo_microblog/internal/model"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts a new post with zeroed counters.
func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	query := `
		INSERT INTO posts (title, content, username)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, like_count, dislike_count
	`
	err := r.db.QueryRowxContext(ctx, query, post.Title, post.Content, post.Username).
		Scan(&post.ID, &post.CreatedAt, &post.LikeCount, &post.DislikeCount)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	query := `
		SELECT id, title, content, username, created_at, like_count, dislike_count
		FROM posts
		WHERE id = $1
	`
	var post model.Post
	err := r.db.GetContext(ctx, &post, query, postID)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &post, nil
}

// orderClauses whitelists the ORDER BY per sort order; the query string is
// never built from user input directly.
var orderClauses = map[model.SortOrder]string{
	model.SortNewest:     "created_at DESC",
	model.SortOldest:     "created_at ASC",
	model.SortMostLiked:  "like_count DESC",
	model.SortLeastLiked: "like_count ASC",
}

func (r *postRepository) List(ctx context.Context, order model.SortOrder) ([]model.Post, error) {
	clause, ok := orderClauses[order]
	if !ok {
		clause = orderClauses[model.SortNewest]
	}

	query := fmt.Sprintf(`
		SELECT id, title, content, username, created_at, like_count, dislike_count
		FROM posts
		ORDER BY %s
	`, clause)

	posts := []model.Post{}
	if err := r.db.SelectContext(ctx, &posts, query); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, username string) ([]model.Post, error) {
	query := `
		SELECT id, title, content, username, created_at, like_count, dislike_count
		FROM posts
		WHERE username = $1
		ORDER BY created_at DESC
	`
	posts := []model.Post{}
	if err := r.db.SelectContext(ctx, &posts, query, username); err != nil {
		return nil, fmt.Errorf("list posts by author: %w", err)
	}
	return posts, nil
}

// Delete removes a post and cascades to both reaction relations so no
// ledger row can dangle. Ownership is checked under the row lock.
func (r *postRepository) Delete(ctx context.Context, postID int64, username string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var owner string
	err = tx.QueryRowxContext(ctx, `SELECT username FROM posts WHERE id = $1 FOR UPDATE`, postID).Scan(&owner)
	if err == sql.ErrNoRows {
		return model.ErrPostNotFound
	}
	if err != nil {
		return fmt.Errorf("lock post: %w", err)
	}
	if owner != username {
		return model.ErrNotPostOwner
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM likes WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("delete likes for post: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM dislikes WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("delete dislikes for post: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, postID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	return tx.Commit()
}

func (r *postRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, postID)
	if err != nil {
		return false, fmt.Errorf("check post exists: %w", err)
	}
	return exists, nil
}
