package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"devconnector-server/internal/config"
	"devconnector-server/internal/handler"
	"devconnector-server/internal/logging"
	"devconnector-server/internal/ratelimit"
	"devconnector-server/internal/repository"
	"devconnector-server/internal/service"
	"devconnector-server/internal/websocket"
	"devconnector-server/pkg/jwt"

	"github.com/rs/zerolog/log"
)

type stores struct {
	users repository.UserRepository
	posts repository.PostRepository
	close func(context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.New(cfg.Logging.Level, cfg.Server.IsProduction())

	tokens, err := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Expiration)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise token service")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open store")
	}
	logger.Info().Str("driver", cfg.Store.Driver).Msg("store ready")

	wsManager := websocket.NewManager(websocket.Options{
		MaxConnPerUser: cfg.WebSocket.MaxConnPerUser,
		MaxMessageSize: cfg.WebSocket.MaxMessageSize,
		WriteWait:      cfg.WebSocket.WriteWait,
		PongWait:       cfg.WebSocket.PongWait,
		PingPeriod:     cfg.WebSocket.PingPeriod,
	}, logger)
	go wsManager.Run(ctx)

	limiter := ratelimit.NewMemory()
	go sweepLimiter(ctx, limiter)

	authService := service.NewAuthService(st.users, tokens)
	postService := service.NewPostService(st.posts, st.users, wsManager)

	router := handler.NewRouter(handler.RouterDeps{
		Users: handler.NewUserHandler(authService, logger),
		Auth:  handler.NewAuthHandler(authService, logger),
		Posts: handler.NewPostHandler(postService, logger),
		WebSocket: handler.NewWebSocketHandler(
			wsManager,
			tokens,
			cfg.WebSocket.ReadBufferSize,
			cfg.WebSocket.WriteBufferSize,
			logger,
		),
		Verifier:  tokens,
		Limiter:   limiter,
		RateLimit: cfg.RateLimit,
		CORS:      cfg.CORS,
		Logger:    logger,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Str("env", cfg.Server.Env).
			Dur("token_ttl", tokens.TTL()).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := st.close(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to close store")
	}

	logger.Info().Msg("server stopped gracefully")
}

// openStores makes one connection attempt to the configured backend.
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Store.Driver {
	case config.StoreCouch:
		client, err := repository.OpenCouch(ctx, cfg.Database.CouchURL(), cfg.Database.Name)
		if err != nil {
			return nil, err
		}
		return &stores{
			users: repository.NewUserRepository(client, cfg.Database.Name),
			posts: repository.NewPostRepository(client, cfg.Database.Name),
			close: func(context.Context) error { return client.Close() },
		}, nil

	case config.StoreMongo:
		client, err := repository.OpenMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.Mongo.Database)
		return &stores{
			users: repository.NewMongoUserRepository(db),
			posts: repository.NewMongoPostRepository(db),
			close: client.Disconnect,
		}, nil

	case config.StoreMemory:
		return &stores{
			users: repository.NewMemoryUserRepository(),
			posts: repository.NewMemoryPostRepository(),
			close: func(context.Context) error { return nil },
		}, nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func sweepLimiter(ctx context.Context, limiter *ratelimit.MemoryLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			limiter.Sweep()
		case <-ctx.Done():
			return
		}
	}
}
