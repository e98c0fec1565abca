package service

import (
	"context"
	"fmt"
	"log"

	"echo_microblog/internal/model"
	"echo_microblog/internal/repository"
)

// ReactionService fronts the reaction ledger. The transition itself is
// transactional inside the repository; this layer adds the existence check
// and logging.
type ReactionService struct {
	reactions repository.ReactionRepository
	posts     repository.PostRepository
}

func NewReactionService(reactions repository.ReactionRepository, posts repository.PostRepository) *ReactionService {
	return &ReactionService{
		reactions: reactions,
		posts:     posts,
	}
}

// ToggleLike flips the caller's like on a post per the transition table.
func (s *ReactionService) ToggleLike(ctx context.Context, userID, postID int64) (*model.ReactionResult, error) {
	if err := s.ensurePost(ctx, postID); err != nil {
		return nil, err
	}

	result, err := s.reactions.ToggleLike(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	log.Printf("[ReactionService] User %d toggled like on post %d: liked=%v", userID, postID, result.ExistingLike)
	return result, nil
}

// ToggleDislike flips the caller's dislike on a post.
func (s *ReactionService) ToggleDislike(ctx context.Context, userID, postID int64) (*model.ReactionResult, error) {
	if err := s.ensurePost(ctx, postID); err != nil {
		return nil, err
	}

	result, err := s.reactions.ToggleDislike(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	log.Printf("[ReactionService] User %d toggled dislike on post %d: disliked=%v", userID, postID, result.ExistingDislike)
	return result, nil
}

// State reports the viewer's current reaction on a post.
func (s *ReactionService) State(ctx context.Context, userID, postID int64) (model.ReactionState, error) {
	return s.reactions.State(ctx, userID, postID)
}

// VerifyCounters compares every post's counters against ledger cardinality
// and logs any drift. Toggles keep the two in lockstep transactionally, so
// drift here means outside interference with the data. Run at startup.
func (s *ReactionService) VerifyCounters(ctx context.Context) error {
	posts, err := s.posts.List(ctx, model.SortNewest)
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}

	for _, post := range posts {
		likes, err := s.reactions.CountLikes(ctx, post.ID)
		if err != nil {
			return fmt.Errorf("count likes for post %d: %w", post.ID, err)
		}
		dislikes, err := s.reactions.CountDislikes(ctx, post.ID)
		if err != nil {
			return fmt.Errorf("count dislikes for post %d: %w", post.ID, err)
		}
		if likes != post.LikeCount || dislikes != post.DislikeCount {
			log.Printf("[ReactionService] Counter drift on post %d: counters %d/%d, ledger %d/%d",
				post.ID, post.LikeCount, post.DislikeCount, likes, dislikes)
		}
	}
	return nil
}

func (s *ReactionService) ensurePost(ctx context.Context, postID int64) error {
	exists, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return model.ErrPostNotFound
	}
	return nil
}
