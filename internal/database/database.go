package database

import (
	"context"
	"fmt"
	"log"

	"echo_microblog/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

func Connect(cfg *config.Config) (*sqlx.DB, error) {

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Connected to database successfully")
	return db, nil
}

// schema is the authoritative table layout. The composite primary keys on
// likes/dislikes enforce at most one membership per (user, post) pair in
// each relation.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	identity_hash TEXT NOT NULL UNIQUE,
	avatar_url TEXT,
	member_since TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS posts (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	username TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	like_count INTEGER NOT NULL DEFAULT 0,
	dislike_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS likes (
	user_id BIGINT NOT NULL,
	post_id BIGINT NOT NULL,
	PRIMARY KEY (user_id, post_id)
);

CREATE TABLE IF NOT EXISTS dislikes (
	user_id BIGINT NOT NULL,
	post_id BIGINT NOT NULL,
	PRIMARY KEY (user_id, post_id)
);

CREATE TABLE IF NOT EXISTS refresh_tokens (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	user_id BIGINT NOT NULL,
	token_hash TEXT NOT NULL UNIQUE,
	expires_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	revoked_at TIMESTAMPTZ,
	replaced_by UUID
);

CREATE INDEX IF NOT EXISTS idx_posts_username ON posts (username);
CREATE INDEX IF NOT EXISTS idx_likes_post ON likes (post_id);
CREATE INDEX IF NOT EXISTS idx_dislikes_post ON dislikes (post_id);
`

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to run schema migration: %w", err)
	}
	return nil
}
