package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"echo_microblog/internal/httputil"
	"echo_microblog/internal/model"
	"echo_microblog/internal/service"
	"echo_microblog/internal/transport/http/middleware"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Avatar handles GET /avatar/{username}
// Redirects to the stored avatar image for the user.
func (h *UserHandler) Avatar(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		httputil.WriteBadRequest(w, "Username is required")
		return
	}

	user, err := h.userService.GetByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[UserHandler] Avatar lookup failed: username=%s err=%v", username, err)
		httputil.WriteInternalError(w, "Failed to load avatar")
		return
	}

	if user.AvatarURL == nil || *user.AvatarURL == "" {
		httputil.WriteNotFound(w, "User has no avatar")
		return
	}

	http.Redirect(w, r, *user.AvatarURL, http.StatusFound)
}

// DeleteAccount handles POST /delete-account
// Removes the user, their posts, their reactions, and their sessions, then
// clears the session cookies.
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	if err := h.userService.DeleteAccount(r.Context(), userID); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[UserHandler] DeleteAccount failed: user=%d err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to delete account")
		return
	}

	clearCookie(w, accessTokenCookie, "/")
	clearCookie(w, refreshTokenCookie, "/auth")

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}
