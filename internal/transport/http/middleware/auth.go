package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"echo_microblog/internal/httputil"
	"echo_microblog/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// UserIDKey is the context key for the authenticated user's ID
	UserIDKey contextKey = "user_id"
)

// SessionMiddleware validates the session JWT. This app is browser-first,
// so the access_token cookie is checked before the Authorization header.
// Reaction-affecting routes sit behind this gate; without a resolved user
// nothing mutates.
func SessionMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := userIDFromRequest(r, jwtSecret)
			if err != nil {
				writeAuthError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalSessionMiddleware resolves the user when a valid token is
// present but lets anonymous requests through.
func OptionalSessionMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := userIDFromRequest(r, jwtSecret)
			if err == nil {
				r = r.WithContext(context.WithValue(r.Context(), UserIDKey, userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

type authError struct {
	code    string
	message string
}

func (e *authError) Error() string { return e.message }

func writeAuthError(w http.ResponseWriter, err error) {
	if ae, ok := err.(*authError); ok && ae.code != "" {
		httputil.WriteUnauthorizedWithCode(w, ae.code, ae.message)
		return
	}
	httputil.WriteUnauthorized(w, err.Error())
}

func userIDFromRequest(r *http.Request, jwtSecret string) (int64, error) {
	var tokenString string

	// 1. Session cookie (web browsers)
	if cookie, err := r.Cookie("access_token"); err == nil && cookie.Value != "" {
		tokenString = cookie.Value
	}

	// 2. Fall back to Authorization header (API clients)
	if tokenString == "" {
		authHeader := r.Header.Get("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenString = parts[1]
			}
		}
	}

	if tokenString == "" {
		return 0, &authError{message: "Missing authentication token"}
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		if strings.Contains(err.Error(), "expired") {
			return 0, &authError{code: model.CodeTokenExpired, message: "Access token has expired"}
		}
		return 0, &authError{code: model.CodeTokenInvalid, message: "Invalid authentication token"}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, &authError{code: model.CodeTokenInvalid, message: "Invalid authentication token"}
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, &authError{code: model.CodeTokenInvalid, message: "Invalid token claims"}
	}
	return int64(userIDFloat), nil
}

// GetUserIDFromContext extracts the user ID from the request context.
// Returns the user ID and true if found, or 0 and false if not found.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}

// WithUserID returns a context carrying the given user id. Exported for
// handler tests.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}
