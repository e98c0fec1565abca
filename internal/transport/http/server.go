package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"echo_microblog/internal/config"
	"echo_microblog/internal/database"
	"echo_microblog/internal/handler"
	"echo_microblog/internal/repository"
	"echo_microblog/internal/service"
)

// Run wires the whole application together and serves HTTP.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	reactionRepo := repository.NewReactionRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)

	// Avatars are optional; without R2 credentials registration still works,
	// users just have no image.
	var avatars service.AvatarCreator
	if avatarService, err := service.NewAvatarService(
		context.Background(),
		cfg.R2AccountID,
		cfg.R2AccessKeyID,
		cfg.R2SecretAccessKey,
		cfg.R2BucketName,
		cfg.R2PublicURL,
	); err != nil {
		log.Printf("[Server] Avatar storage disabled: %v", err)
	} else {
		avatars = avatarService
	}

	userService := service.NewUserService(userRepo, postRepo, avatars)
	postService := service.NewPostService(postRepo, userRepo, reactionRepo)
	reactionService := service.NewReactionService(reactionRepo, postRepo)
	authService := service.NewAuthService(refreshTokenRepo, cfg)
	resolver := service.NewIdentityResolver(userRepo)
	provider := service.NewGoogleProvider(cfg)

	if err := reactionService.VerifyCounters(context.Background()); err != nil {
		log.Printf("[Server] Counter verification failed: %v", err)
	}

	go pruneExpiredTokens(refreshTokenRepo)

	router := NewRouter(RouterConfig{
		AuthHandler:     handler.NewAuthHandler(userService, authService, resolver, provider, cfg),
		PostHandler:     handler.NewPostHandler(postService),
		ReactionHandler: handler.NewReactionHandler(reactionService),
		UserHandler:     handler.NewUserHandler(userService),
		JWTSecret:       cfg.JWTSecret,
	})

	addr := ":" + cfg.ServerPort
	log.Printf("[Server] Listening on %s", addr)
	return http.ListenAndServe(addr, router)
}

// pruneExpiredTokens sweeps long-expired refresh tokens twice a day. Expired
// tokens are already rejected at use; this only keeps the table small.
func pruneExpiredTokens(repo repository.RefreshTokenRepository) {
	ticker := time.NewTicker(12 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		n, err := repo.DeleteExpired(context.Background(), 24*time.Hour)
		if err != nil {
			log.Printf("[Server] Failed to prune expired refresh tokens: %v", err)
			continue
		}
		if n > 0 {
			log.Printf("[Server] Pruned %d expired refresh tokens", n)
		}
	}
}
