package service

import (
	"context"
	"time"

	"echo_microblog/internal/model"
)

// Function-field mocks so each test overrides only what it needs.

type mockUserRepo struct {
	createFn           func(ctx context.Context, user *model.User) error
	getByIDFn          func(ctx context.Context, id int64) (*model.User, error)
	getByUsernameFn    func(ctx context.Context, username string) (*model.User, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)
	updateAvatarURLFn  func(ctx context.Context, userID int64, url string) error
	listIdentitiesFn   func(ctx context.Context) ([]model.UserIdentity, error)
	deleteAccountFn    func(ctx context.Context, userID int64) error
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	return m.createFn(ctx, user)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return m.getByUsernameFn(ctx, username)
}

func (m *mockUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return m.existsByUsernameFn(ctx, username)
}

func (m *mockUserRepo) UpdateAvatarURL(ctx context.Context, userID int64, url string) error {
	return m.updateAvatarURLFn(ctx, userID, url)
}

func (m *mockUserRepo) ListIdentities(ctx context.Context) ([]model.UserIdentity, error) {
	return m.listIdentitiesFn(ctx)
}

func (m *mockUserRepo) DeleteAccount(ctx context.Context, userID int64) error {
	return m.deleteAccountFn(ctx, userID)
}

type mockPostRepo struct {
	createFn       func(ctx context.Context, post *model.Post) error
	getByIDFn      func(ctx context.Context, postID int64) (*model.Post, error)
	listFn         func(ctx context.Context, order model.SortOrder) ([]model.Post, error)
	listByAuthorFn func(ctx context.Context, username string) ([]model.Post, error)
	deleteFn       func(ctx context.Context, postID int64, username string) error
	existsFn       func(ctx context.Context, postID int64) (bool, error)
}

func (m *mockPostRepo) Create(ctx context.Context, post *model.Post) error {
	return m.createFn(ctx, post)
}

func (m *mockPostRepo) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	return m.getByIDFn(ctx, postID)
}

func (m *mockPostRepo) List(ctx context.Context, order model.SortOrder) ([]model.Post, error) {
	return m.listFn(ctx, order)
}

func (m *mockPostRepo) ListByAuthor(ctx context.Context, username string) ([]model.Post, error) {
	return m.listByAuthorFn(ctx, username)
}

func (m *mockPostRepo) Delete(ctx context.Context, postID int64, username string) error {
	return m.deleteFn(ctx, postID, username)
}

func (m *mockPostRepo) Exists(ctx context.Context, postID int64) (bool, error) {
	return m.existsFn(ctx, postID)
}

type mockReactionRepo struct {
	toggleLikeFn    func(ctx context.Context, userID, postID int64) (*model.ReactionResult, error)
	toggleDislikeFn func(ctx context.Context, userID, postID int64) (*model.ReactionResult, error)
	stateFn         func(ctx context.Context, userID, postID int64) (model.ReactionState, error)
	countLikesFn    func(ctx context.Context, postID int64) (int, error)
	countDislikesFn func(ctx context.Context, postID int64) (int, error)
}

func (m *mockReactionRepo) ToggleLike(ctx context.Context, userID, postID int64) (*model.ReactionResult, error) {
	return m.toggleLikeFn(ctx, userID, postID)
}

func (m *mockReactionRepo) ToggleDislike(ctx context.Context, userID, postID int64) (*model.ReactionResult, error) {
	return m.toggleDislikeFn(ctx, userID, postID)
}

func (m *mockReactionRepo) State(ctx context.Context, userID, postID int64) (model.ReactionState, error) {
	return m.stateFn(ctx, userID, postID)
}

func (m *mockReactionRepo) CountLikes(ctx context.Context, postID int64) (int, error) {
	return m.countLikesFn(ctx, postID)
}

func (m *mockReactionRepo) CountDislikes(ctx context.Context, postID int64) (int, error) {
	return m.countDislikesFn(ctx, postID)
}

// memoryTokenRepo is a stateful in-memory refresh token store for testing
// rotation and reuse detection.
type memoryTokenRepo struct {
	tokens map[string]*model.RefreshToken // keyed by token hash
	nextID int
}

func newMemoryTokenRepo() *memoryTokenRepo {
	return &memoryTokenRepo{tokens: make(map[string]*model.RefreshToken)}
}

func (m *memoryTokenRepo) Create(_ context.Context, token *model.RefreshToken) error {
	m.nextID++
	token.ID = string(rune('a' + m.nextID - 1))
	token.CreatedAt = time.Now()
	m.tokens[token.TokenHash] = token
	return nil
}

func (m *memoryTokenRepo) FindByTokenHash(_ context.Context, tokenHash string) (*model.RefreshToken, error) {
	token, ok := m.tokens[tokenHash]
	if !ok {
		return nil, model.ErrRefreshTokenNotFound
	}
	return token, nil
}

func (m *memoryTokenRepo) Revoke(_ context.Context, id string, replacedBy *string) error {
	for _, token := range m.tokens {
		if token.ID == id {
			now := time.Now()
			token.RevokedAt = &now
			token.ReplacedBy = replacedBy
			return nil
		}
	}
	return model.ErrRefreshTokenNotFound
}

func (m *memoryTokenRepo) RevokeAllForUser(_ context.Context, userID int64) error {
	now := time.Now()
	for _, token := range m.tokens {
		if token.UserID == userID && token.RevokedAt == nil {
			token.RevokedAt = &now
		}
	}
	return nil
}

func (m *memoryTokenRepo) DeleteExpired(_ context.Context, _ time.Duration) (int64, error) {
	return 0, nil
}

// fakeCascadeStore backs the deletion tests: users and post metadata here,
// reactions and counters in the shared ledger. Its cascadeUserRepo and
// cascadePostRepo views implement the repository interfaces over this one
// state, mirroring how the real store's cascades behave.
type fakeCascadeStore struct {
	ledger     *fakeLedger
	users      map[int64]*model.User
	posts      map[int64]*model.Post
	nextUserID int64
	nextPostID int64
}

func newFakeCascadeStore() *fakeCascadeStore {
	return &fakeCascadeStore{
		ledger: newFakeLedger(),
		users:  make(map[int64]*model.User),
		posts:  make(map[int64]*model.Post),
	}
}

type cascadeUserRepo struct {
	store *fakeCascadeStore
}

func (r *cascadeUserRepo) Create(_ context.Context, user *model.User) error {
	r.store.nextUserID++
	user.ID = r.store.nextUserID
	r.store.users[user.ID] = user
	return nil
}

func (r *cascadeUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	user, ok := r.store.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

func (r *cascadeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, user := range r.store.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (r *cascadeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	return err == nil, nil
}

func (r *cascadeUserRepo) UpdateAvatarURL(_ context.Context, userID int64, url string) error {
	user, ok := r.store.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	user.AvatarURL = &url
	return nil
}

func (r *cascadeUserRepo) ListIdentities(_ context.Context) ([]model.UserIdentity, error) {
	identities := make([]model.UserIdentity, 0, len(r.store.users))
	for _, user := range r.store.users {
		identities = append(identities, model.UserIdentity{ID: user.ID, IdentityHash: user.IdentityHash})
	}
	return identities, nil
}

// DeleteAccount applies the store's cascade semantics: each relation's
// removal settles counters from exactly the removed rows, then the user's
// posts go together with any ledger rows still referencing them.
func (r *cascadeUserRepo) DeleteAccount(_ context.Context, userID int64) error {
	user, ok := r.store.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	ledger := r.store.ledger

	for key := range ledger.likes {
		if key.userID == userID {
			delete(ledger.likes, key)
			ledger.likeCount[key.postID]--
		}
	}
	for key := range ledger.dislikes {
		if key.userID == userID {
			delete(ledger.dislikes, key)
			ledger.dislikeCount[key.postID]--
		}
	}

	for id, post := range r.store.posts {
		if post.Username != user.Username {
			continue
		}
		for key := range ledger.likes {
			if key.postID == id {
				delete(ledger.likes, key)
			}
		}
		for key := range ledger.dislikes {
			if key.postID == id {
				delete(ledger.dislikes, key)
			}
		}
		delete(ledger.likeCount, id)
		delete(ledger.dislikeCount, id)
		delete(r.store.posts, id)
	}

	delete(r.store.users, userID)
	return nil
}

type cascadePostRepo struct {
	store *fakeCascadeStore
}

func (r *cascadePostRepo) Create(_ context.Context, post *model.Post) error {
	r.store.nextPostID++
	post.ID = r.store.nextPostID
	r.store.posts[post.ID] = post
	return nil
}

func (r *cascadePostRepo) GetByID(_ context.Context, postID int64) (*model.Post, error) {
	post, ok := r.store.posts[postID]
	if !ok {
		return nil, model.ErrPostNotFound
	}
	out := *post
	out.LikeCount = r.store.ledger.likeCount[postID]
	out.DislikeCount = r.store.ledger.dislikeCount[postID]
	return &out, nil
}

func (r *cascadePostRepo) List(_ context.Context, _ model.SortOrder) ([]model.Post, error) {
	posts := make([]model.Post, 0, len(r.store.posts))
	for id := range r.store.posts {
		post, _ := r.GetByID(context.Background(), id)
		posts = append(posts, *post)
	}
	return posts, nil
}

func (r *cascadePostRepo) ListByAuthor(_ context.Context, username string) ([]model.Post, error) {
	posts := []model.Post{}
	for id, post := range r.store.posts {
		if post.Username == username {
			out, _ := r.GetByID(context.Background(), id)
			posts = append(posts, *out)
		}
	}
	return posts, nil
}

// Delete removes the post and every ledger row referencing it.
func (r *cascadePostRepo) Delete(_ context.Context, postID int64, username string) error {
	post, ok := r.store.posts[postID]
	if !ok {
		return model.ErrPostNotFound
	}
	if post.Username != username {
		return model.ErrNotPostOwner
	}
	ledger := r.store.ledger
	for key := range ledger.likes {
		if key.postID == postID {
			delete(ledger.likes, key)
		}
	}
	for key := range ledger.dislikes {
		if key.postID == postID {
			delete(ledger.dislikes, key)
		}
	}
	delete(ledger.likeCount, postID)
	delete(ledger.dislikeCount, postID)
	delete(r.store.posts, postID)
	return nil
}

func (r *cascadePostRepo) Exists(_ context.Context, postID int64) (bool, error) {
	_, ok := r.store.posts[postID]
	return ok, nil
}
