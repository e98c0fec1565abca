package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"echo_microblog/internal/model"
	"echo_microblog/internal/repository"
)

// AvatarCreator generates and stores an avatar for a new user.
// *AvatarService implements it; a nil creator disables avatars.
type AvatarCreator interface {
	CreateForUser(ctx context.Context, username string) (string, error)
}

type UserService struct {
	users   repository.UserRepository
	posts   repository.PostRepository
	avatars AvatarCreator
}

func NewUserService(users repository.UserRepository, posts repository.PostRepository, avatars AvatarCreator) *UserService {
	return &UserService{
		users:   users,
		posts:   posts,
		avatars: avatars,
	}
}

// Register creates the account for a resolved-but-unknown external
// identity. The identity hash comes from the pending-identity token, never
// from the client.
func (s *UserService) Register(ctx context.Context, username, identityHash string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(username) > model.MaxUsernameLength {
		return nil, model.ErrUsernameInvalid
	}

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, model.ErrUsernameExists
	}

	user := &model.User{
		Username:     username,
		IdentityHash: identityHash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	// Avatar generation is best-effort and runs only after the row exists,
	// so a lost registration race never leaves an orphaned upload. A failed
	// upload never blocks registration either.
	if s.avatars != nil {
		url, err := s.avatars.CreateForUser(ctx, username)
		if err != nil {
			log.Printf("[UserService] Failed to create avatar for %s: %v", username, err)
		} else if err := s.users.UpdateAvatarURL(ctx, user.ID, url); err != nil {
			log.Printf("[UserService] Failed to store avatar url for %s: %v", username, err)
		} else {
			user.AvatarURL = &url
		}
	}

	log.Printf("[UserService] Registered user %s (id=%d)", user.Username, user.ID)
	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// GetByUsername retrieves a user by username.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.users.GetByUsername(ctx, username)
}

// Profile returns the user together with their own posts, newest first.
func (s *UserService) Profile(ctx context.Context, userID int64) (*model.Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	posts, err := s.posts.ListByAuthor(ctx, user.Username)
	if err != nil {
		return nil, fmt.Errorf("list own posts: %w", err)
	}

	return &model.Profile{User: user, Posts: posts}, nil
}

// DeleteAccount removes the user and all dependent state. The repository
// runs the whole cascade in one transaction.
func (s *UserService) DeleteAccount(ctx context.Context, userID int64) error {
	if err := s.users.DeleteAccount(ctx, userID); err != nil {
		return err
	}
	log.Printf("[UserService] Deleted account %d", userID)
	return nil
}
