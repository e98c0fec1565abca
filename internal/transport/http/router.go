package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"echo_microblog/internal/handler"
	"echo_microblog/internal/transport/http/middleware"
)

// RouterConfig holds the handlers and settings the router needs.
type RouterConfig struct {
	AuthHandler     *handler.AuthHandler
	PostHandler     *handler.PostHandler
	ReactionHandler *handler.ReactionHandler
	UserHandler     *handler.UserHandler
	JWTSecret       string
}

// NewRouter assembles the API surface. Reads are public (with an optional
// session so reaction flags can be folded in); every write sits behind the
// session gate.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Sign-in flow
	r.Get("/auth/google", cfg.AuthHandler.GoogleLogin)
	r.Get("/auth/google/callback", cfg.AuthHandler.GoogleCallback)
	r.Post("/auth/refresh", cfg.AuthHandler.Refresh)
	r.Post("/register", cfg.AuthHandler.Register)

	r.Get("/avatar/{username}", cfg.UserHandler.Avatar)

	// Public reads; a valid session adds the viewer's reaction flags
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalSessionMiddleware(cfg.JWTSecret))
		r.Get("/posts", cfg.PostHandler.List)
		r.Get("/posts/{postID}", cfg.PostHandler.GetByID)
	})

	// Everything that mutates requires a session
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(cfg.JWTSecret))

		r.Get("/me", cfg.AuthHandler.Me)
		r.Post("/auth/logout", cfg.AuthHandler.Logout)

		r.Post("/posts", cfg.PostHandler.Create)
		r.Post("/delete/{postID}", cfg.PostHandler.Delete)

		r.Post("/like/{postID}", cfg.ReactionHandler.Like)
		r.Post("/dislike/{postID}", cfg.ReactionHandler.Dislike)

		r.Post("/delete-account", cfg.UserHandler.DeleteAccount)
	})

	return r
}
