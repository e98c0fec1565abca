package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"echo_microblog/internal/model"
)

type reactionRepository struct {
	db *sqlx.DB
}

func NewReactionRepository(db *sqlx.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

// ToggleLike flips the like state for the pair and adjusts counters in the
// same transaction.
func (r *reactionRepository) ToggleLike(ctx context.Context, userID, postID int64) (*model.ReactionResult, error) {
	return r.toggle(ctx, userID, postID, model.ToggleLikeTransition)
}

// ToggleDislike flips the dislike state for the pair.
func (r *reactionRepository) ToggleDislike(ctx context.Context, userID, postID int64) (*model.ReactionResult, error) {
	return r.toggle(ctx, userID, postID, model.ToggleDislikeTransition)
}

// toggle runs one transition as a single transaction. The post row is
// locked FOR UPDATE for the duration, which serializes concurrent toggles
// on the same post: both the read of current membership and every counter
// adjustment happen under the lock, so two toggles can never both observe
// the same starting state. The composite primary keys on likes/dislikes
// are a second barrier; if one is ever violated the whole transaction
// aborts and no counter change commits.
func (r *reactionRepository) toggle(ctx context.Context, userID, postID int64, table func(model.ReactionState) model.Transition) (*model.ReactionResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var likes, dislikes int
	err = tx.QueryRowxContext(ctx,
		`SELECT like_count, dislike_count FROM posts WHERE id = $1 FOR UPDATE`,
		postID,
	).Scan(&likes, &dislikes)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock post: %w", err)
	}

	state, err := r.stateTx(ctx, tx, userID, postID)
	if err != nil {
		return nil, err
	}

	tr := table(state)

	if tr.RemoveLike {
		if err := r.removeMembership(ctx, tx, "likes", userID, postID); err != nil {
			return nil, err
		}
	}
	if tr.RemoveDislike {
		if err := r.removeMembership(ctx, tx, "dislikes", userID, postID); err != nil {
			return nil, err
		}
	}
	if tr.InsertLike {
		if err := r.insertMembership(ctx, tx, "likes", userID, postID); err != nil {
			return nil, err
		}
	}
	if tr.InsertDislike {
		if err := r.insertMembership(ctx, tx, "dislikes", userID, postID); err != nil {
			return nil, err
		}
	}

	if tr.LikeDelta != 0 || tr.DislikeDelta != 0 {
		_, err = tx.ExecContext(ctx,
			`UPDATE posts SET like_count = like_count + $1, dislike_count = dislike_count + $2 WHERE id = $3`,
			tr.LikeDelta, tr.DislikeDelta, postID,
		)
		if err != nil {
			return nil, fmt.Errorf("update counters: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &model.ReactionResult{
		Success:         true,
		Likes:           likes + tr.LikeDelta,
		Dislikes:        dislikes + tr.DislikeDelta,
		ExistingLike:    tr.Next == model.ReactionLiked,
		ExistingDislike: tr.Next == model.ReactionDisliked,
	}, nil
}

// State reads the current reaction state for a pair outside a toggle.
func (r *reactionRepository) State(ctx context.Context, userID, postID int64) (model.ReactionState, error) {
	return r.state(ctx, r.db, userID, postID)
}

func (r *reactionRepository) stateTx(ctx context.Context, tx *sqlx.Tx, userID, postID int64) (model.ReactionState, error) {
	return r.state(ctx, tx, userID, postID)
}

func (r *reactionRepository) state(ctx context.Context, q sqlx.QueryerContext, userID, postID int64) (model.ReactionState, error) {
	var liked, disliked bool
	err := sqlx.GetContext(ctx, q, &liked,
		`SELECT EXISTS(SELECT 1 FROM likes WHERE user_id = $1 AND post_id = $2)`, userID, postID)
	if err != nil {
		return model.ReactionNone, fmt.Errorf("check like membership: %w", err)
	}
	err = sqlx.GetContext(ctx, q, &disliked,
		`SELECT EXISTS(SELECT 1 FROM dislikes WHERE user_id = $1 AND post_id = $2)`, userID, postID)
	if err != nil {
		return model.ReactionNone, fmt.Errorf("check dislike membership: %w", err)
	}

	switch {
	case liked:
		return model.ReactionLiked, nil
	case disliked:
		return model.ReactionDisliked, nil
	default:
		return model.ReactionNone, nil
	}
}

// CountLikes returns the ledger cardinality for one polarity, used to
// reconcile the cached counter against membership.
func (r *reactionRepository) CountLikes(ctx context.Context, postID int64) (int, error) {
	return r.count(ctx, "likes", postID)
}

func (r *reactionRepository) CountDislikes(ctx context.Context, postID int64) (int, error) {
	return r.count(ctx, "dislikes", postID)
}

func (r *reactionRepository) count(ctx context.Context, relation string, postID int64) (int, error) {
	var n int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE post_id = $1`, relation)
	if err := r.db.GetContext(ctx, &n, query, postID); err != nil {
		return 0, fmt.Errorf("count %s: %w", relation, err)
	}
	return n, nil
}

// relation is always one of the two fixed table names, never user input.
func (r *reactionRepository) insertMembership(ctx context.Context, tx *sqlx.Tx, relation string, userID, postID int64) error {
	query := fmt.Sprintf(`INSERT INTO %s (user_id, post_id) VALUES ($1, $2)`, relation)
	if _, err := tx.ExecContext(ctx, query, userID, postID); err != nil {
		return fmt.Errorf("insert %s membership: %w", relation, err)
	}
	return nil
}

func (r *reactionRepository) removeMembership(ctx context.Context, tx *sqlx.Tx, relation string, userID, postID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1 AND post_id = $2`, relation)
	result, err := tx.ExecContext(ctx, query, userID, postID)
	if err != nil {
		return fmt.Errorf("remove %s membership: %w", relation, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("remove %s membership: row vanished under lock", relation)
	}
	return nil
}
