package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"echo_microblog/internal/config"
	"echo_microblog/internal/httputil"
	"echo_microblog/internal/model"
	"echo_microblog/internal/service"
	"echo_microblog/internal/transport/http/middleware"
)

const (
	accessTokenCookie     = "access_token"
	refreshTokenCookie    = "refresh_token"
	oauthStateCookie      = "oauth_state"
	pendingIdentityCookie = "pending_identity"
)

// AuthHandler groups the sign-in flow: Google OAuth entry and callback,
// username registration for first-time identities, and session refresh.
type AuthHandler struct {
	userService *service.UserService
	authService *service.AuthService
	resolver    *service.IdentityResolver
	provider    service.IdentityProvider
	config      *config.Config
}

func NewAuthHandler(userService *service.UserService, authService *service.AuthService, resolver *service.IdentityResolver, provider service.IdentityProvider, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		authService: authService,
		resolver:    resolver,
		provider:    provider,
		config:      cfg,
	}
}

// GoogleLogin handles GET /auth/google
// Redirects the browser to the Google consent screen.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.provider.AuthURL(state), http.StatusFound)
}

// GoogleCallback handles GET /auth/google/callback
// Exchanges the code, resolves the identity, and either starts a session
// (known identity) or hands off to username registration (new identity).
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		httputil.WriteUnauthorized(w, "Invalid OAuth state")
		return
	}
	clearCookie(w, oauthStateCookie, "/auth")

	code := r.URL.Query().Get("code")
	if code == "" {
		httputil.WriteBadRequest(w, "Missing authorization code")
		return
	}

	identity, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		log.Printf("[AuthHandler] OAuth exchange failed: %v", err)
		httputil.WriteUnauthorized(w, "Identity provider rejected the sign-in")
		return
	}

	user, err := h.resolver.Resolve(r.Context(), identity.Subject)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			h.startRegistration(w, r, identity.Subject)
			return
		}
		log.Printf("[AuthHandler] Identity resolution failed: %v", err)
		httputil.WriteInternalError(w, "Failed to resolve identity")
		return
	}

	tokenPair, err := h.authService.GenerateTokenPair(r.Context(), user.ID)
	if err != nil {
		log.Printf("[AuthHandler] Token generation failed: user=%d err=%v", user.ID, err)
		httputil.WriteInternalError(w, "Failed to start session")
		return
	}

	h.setSessionCookies(w, tokenPair)
	http.Redirect(w, r, "/", http.StatusFound)
}

// startRegistration hands the hashed identity to the registration step in
// a short-lived signed cookie; no plaintext subject leaves this function.
func (h *AuthHandler) startRegistration(w http.ResponseWriter, r *http.Request, subject string) {
	identityHash, err := h.resolver.HashSubject(subject)
	if err != nil {
		log.Printf("[AuthHandler] Identity hashing failed: %v", err)
		httputil.WriteInternalError(w, "Failed to process identity")
		return
	}

	pending, err := h.authService.GeneratePendingIdentityToken(identityHash)
	if err != nil {
		log.Printf("[AuthHandler] Pending token generation failed: %v", err)
		httputil.WriteInternalError(w, "Failed to process identity")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     pendingIdentityCookie,
		Value:    pending,
		Path:     "/",
		MaxAge:   int(service.PendingIdentityMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/register", http.StatusFound)
}

// Register handles POST /register
// Completes sign-up by choosing a username for the pending identity.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	pendingCookie, err := r.Cookie(pendingIdentityCookie)
	if err != nil || pendingCookie.Value == "" {
		httputil.WriteUnauthorized(w, "No pending sign-in; start at /auth/google")
		return
	}

	identityHash, err := h.authService.ParsePendingIdentityToken(pendingCookie.Value)
	if err != nil {
		httputil.WriteUnauthorized(w, "Sign-in expired; start again at /auth/google")
		return
	}

	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.userService.Register(r.Context(), req.Username, identityHash)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUsernameInvalid):
			httputil.WriteBadRequest(w, "Username must be 1-30 characters")
		case errors.Is(err, model.ErrUsernameExists):
			httputil.WriteConflict(w, "Username already exists")
		case errors.Is(err, model.ErrIdentityExists):
			httputil.WriteConflict(w, "This identity already has an account")
		default:
			log.Printf("[AuthHandler] Register failed: username=%q err=%v", req.Username, err)
			httputil.WriteInternalError(w, "Failed to register")
		}
		return
	}

	tokenPair, err := h.authService.GenerateTokenPair(r.Context(), user.ID)
	if err != nil {
		log.Printf("[AuthHandler] Token generation failed: user=%d err=%v", user.ID, err)
		httputil.WriteInternalError(w, "Registered but failed to start session")
		return
	}

	clearCookie(w, pendingIdentityCookie, "/")
	h.setSessionCookies(w, tokenPair)

	httputil.WriteJSON(w, http.StatusCreated, model.LoginResponse{
		User:         user,
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	})
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	raw := h.refreshTokenFromRequest(r)
	if raw == "" {
		httputil.WriteBadRequest(w, "Refresh token is required")
		return
	}

	tokenPair, _, err := h.authService.RefreshTokens(r.Context(), raw)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrRefreshTokenNotFound):
			httputil.WriteUnauthorized(w, "Invalid refresh token")
		case errors.Is(err, model.ErrRefreshTokenExpired):
			httputil.WriteUnauthorizedWithCode(w, model.CodeTokenExpired, "Refresh token has expired")
		case errors.Is(err, model.ErrRefreshTokenReused):
			httputil.WriteUnauthorizedWithCode(w, model.CodeTokenReused, "Refresh token reuse detected. Please login again.")
		default:
			httputil.WriteInternalError(w, "Failed to refresh tokens")
		}
		return
	}

	h.setSessionCookies(w, tokenPair)
	httputil.WriteJSON(w, http.StatusOK, tokenPair)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if raw := h.refreshTokenFromRequest(r); raw != "" {
		if err := h.authService.RevokeRefreshToken(r.Context(), raw); err != nil &&
			!errors.Is(err, model.ErrRefreshTokenNotFound) {
			httputil.WriteInternalError(w, "Failed to logout")
			return
		}
	}

	clearCookie(w, accessTokenCookie, "/")
	clearCookie(w, refreshTokenCookie, "/auth")
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Logged out successfully",
	})
}

// Me handles GET /me
// Returns the current user with their own posts.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	profile, err := h.userService.Profile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[AuthHandler] Profile failed: user=%d err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to load profile")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}

// refreshTokenFromRequest reads the refresh token from the cookie first,
// then from a JSON body for non-browser clients.
func (h *AuthHandler) refreshTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
		return body.RefreshToken
	}
	return ""
}

func (h *AuthHandler) setSessionCookies(w http.ResponseWriter, pair *model.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   h.config.AccessTokenMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    pair.RefreshToken,
		Path:     "/auth",
		MaxAge:   h.config.RefreshTokenMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(w http.ResponseWriter, name, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		HttpOnly: true,
	})
}
