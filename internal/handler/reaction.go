package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"echo_microblog/internal/httputil"
	"echo_microblog/internal/model"
	"echo_microblog/internal/service"
	"echo_microblog/internal/transport/http/middleware"
)

type ReactionHandler struct {
	reactionService *service.ReactionService
}

func NewReactionHandler(reactionService *service.ReactionService) *ReactionHandler {
	return &ReactionHandler{reactionService: reactionService}
}

// Like handles POST /like/{postID}
func (h *ReactionHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.reactionService.ToggleLike)
}

// Dislike handles POST /dislike/{postID}
func (h *ReactionHandler) Dislike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.reactionService.ToggleDislike)
}

func (h *ReactionHandler) toggle(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, userID, postID int64) (*model.ReactionResult, error)) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	postID, err := parsePostID(r)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	result, err := fn(r.Context(), userID, postID)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		log.Printf("[ReactionHandler] Toggle failed: user=%d post=%d err=%v", userID, postID, err)
		httputil.WriteInternalError(w, "Failed to update reaction")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
