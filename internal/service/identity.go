package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"echo_microblog/internal/model"
	"echo_microblog/internal/repository"
)

// IdentityResolver maps an external identity subject to a local user
// without ever persisting the subject in plaintext. Resolution compares
// the subject against every stored bcrypt hash; a linear scan, acceptable
// at this scale because bcrypt hashes are salted and cannot be indexed.
type IdentityResolver struct {
	users repository.UserRepository
}

func NewIdentityResolver(users repository.UserRepository) *IdentityResolver {
	return &IdentityResolver{users: users}
}

// HashSubject produces the one-way hash stored for a new account.
func (r *IdentityResolver) HashSubject(subject string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(subject), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash identity subject: %w", err)
	}
	return string(hash), nil
}

// Resolve finds the user whose stored hash matches the subject. Returns
// ErrUserNotFound when no hash matches, which sends the caller to
// username registration.
func (r *IdentityResolver) Resolve(ctx context.Context, subject string) (*model.User, error) {
	identities, err := r.users.ListIdentities(ctx)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}

	for _, identity := range identities {
		if bcrypt.CompareHashAndPassword([]byte(identity.IdentityHash), []byte(subject)) == nil {
			return r.users.GetByID(ctx, identity.ID)
		}
	}

	return nil, model.ErrUserNotFound
}
