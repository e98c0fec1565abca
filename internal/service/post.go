package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"echo_microblog/internal/model"
	"echo_microblog/internal/repository"
)

type PostService struct {
	posts     repository.PostRepository
	users     repository.UserRepository
	reactions repository.ReactionRepository
}

func NewPostService(posts repository.PostRepository, users repository.UserRepository, reactions repository.ReactionRepository) *PostService {
	return &PostService{
		posts:     posts,
		users:     users,
		reactions: reactions,
	}
}

// Create validates and stores a new post for the authenticated user.
func (s *PostService) Create(ctx context.Context, userID int64, req model.CreatePostRequest) (*model.Post, error) {
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)

	if title == "" {
		return nil, model.ErrTitleRequired
	}
	if content == "" {
		return nil, model.ErrContentRequired
	}
	if len(title) > model.MaxPostTitleLength {
		return nil, model.ErrTitleTooLong
	}
	if len(content) > model.MaxPostContentLength {
		return nil, model.ErrContentTooLong
	}

	author, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		Title:    title,
		Content:  content,
		Username: author.Username,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	log.Printf("[PostService] User %s created post %d", author.Username, post.ID)
	return post, nil
}

// GetByID retrieves a post; when a viewer is known their reaction state is
// folded into the response so the UI needs no second read.
func (s *PostService) GetByID(ctx context.Context, postID int64, viewerID *int64) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if viewerID != nil {
		state, err := s.reactions.State(ctx, *viewerID, postID)
		if err != nil {
			log.Printf("[PostService] Failed to check reaction state: %v", err)
		} else {
			post.ExistingLike = state == model.ReactionLiked
			post.ExistingDislike = state == model.ReactionDisliked
		}
	}

	return post, nil
}

// List returns all posts in the requested order, re-read from the store on
// every call.
func (s *PostService) List(ctx context.Context, sort string) ([]model.Post, error) {
	posts, err := s.posts.List(ctx, model.ParseSortOrder(sort))
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// Delete removes the caller's post; ledger rows for the post go with it.
func (s *PostService) Delete(ctx context.Context, postID, userID int64) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, postID, user.Username); err != nil {
		return err
	}

	log.Printf("[PostService] User %s deleted post %d", user.Username, postID)
	return nil
}
