package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"echo_microblog/internal/model"
	"echo_microblog/internal/service"
	"echo_microblog/internal/transport/http/middleware"
)

type stubReactionRepo struct {
	result *model.ReactionResult
	err    error
}

func (s *stubReactionRepo) ToggleLike(_ context.Context, _, _ int64) (*model.ReactionResult, error) {
	return s.result, s.err
}

func (s *stubReactionRepo) ToggleDislike(_ context.Context, _, _ int64) (*model.ReactionResult, error) {
	return s.result, s.err
}

func (s *stubReactionRepo) State(_ context.Context, _, _ int64) (model.ReactionState, error) {
	return model.ReactionNone, nil
}

func (s *stubReactionRepo) CountLikes(_ context.Context, _ int64) (int, error) { return 0, nil }

func (s *stubReactionRepo) CountDislikes(_ context.Context, _ int64) (int, error) { return 0, nil }

type stubPostRepo struct {
	exists bool
}

func (s *stubPostRepo) Create(_ context.Context, _ *model.Post) error { return nil }

func (s *stubPostRepo) GetByID(_ context.Context, _ int64) (*model.Post, error) {
	return nil, model.ErrPostNotFound
}

func (s *stubPostRepo) List(_ context.Context, _ model.SortOrder) ([]model.Post, error) {
	return nil, nil
}

func (s *stubPostRepo) ListByAuthor(_ context.Context, _ string) ([]model.Post, error) {
	return nil, nil
}

func (s *stubPostRepo) Delete(_ context.Context, _ int64, _ string) error { return nil }

func (s *stubPostRepo) Exists(_ context.Context, _ int64) (bool, error) { return s.exists, nil }

func reactionRouter(h *ReactionHandler, userID *int64) http.Handler {
	r := chi.NewRouter()
	if userID != nil {
		id := *userID
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(middleware.WithUserID(req.Context(), id)))
			})
		})
	}
	r.Post("/like/{postID}", h.Like)
	r.Post("/dislike/{postID}", h.Dislike)
	return r
}

func TestLikeEndpoint(t *testing.T) {
	repo := &stubReactionRepo{
		result: &model.ReactionResult{Success: true, Likes: 3, Dislikes: 1, ExistingLike: true},
	}
	svc := service.NewReactionService(repo, &stubPostRepo{exists: true})
	h := NewReactionHandler(svc)

	userID := int64(1)
	router := reactionRouter(h, &userID)

	req := httptest.NewRequest(http.MethodPost, "/like/10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Success         bool `json:"success"`
		Likes           int  `json:"likes"`
		Dislikes        int  `json:"dislikes"`
		ExistingLike    bool `json:"existingLike"`
		ExistingDislike bool `json:"existingDislike"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if !body.Success || body.Likes != 3 || body.Dislikes != 1 || !body.ExistingLike || body.ExistingDislike {
		t.Errorf("unexpected response: %+v", body)
	}
}

func TestLikeRequiresSession(t *testing.T) {
	svc := service.NewReactionService(&stubReactionRepo{}, &stubPostRepo{exists: true})
	router := reactionRouter(NewReactionHandler(svc), nil)

	req := httptest.NewRequest(http.MethodPost, "/like/10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestDislikeMissingPost(t *testing.T) {
	svc := service.NewReactionService(&stubReactionRepo{}, &stubPostRepo{exists: false})
	userID := int64(1)
	router := reactionRouter(NewReactionHandler(svc), &userID)

	req := httptest.NewRequest(http.MethodPost, "/dislike/99", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestLikeRejectsBadPostID(t *testing.T) {
	svc := service.NewReactionService(&stubReactionRepo{}, &stubPostRepo{exists: true})
	userID := int64(1)
	router := reactionRouter(NewReactionHandler(svc), &userID)

	req := httptest.NewRequest(http.MethodPost, "/like/not-a-number", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
