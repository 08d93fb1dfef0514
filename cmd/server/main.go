// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/gameroom/internal/auth"
	"github.com/jason-s-yu/gameroom/internal/cache"
	"github.com/jason-s-yu/gameroom/internal/config"
	"github.com/jason-s-yu/gameroom/internal/database"
	"github.com/jason-s-yu/gameroom/internal/game"
	"github.com/jason-s-yu/gameroom/internal/handlers"
	"github.com/jason-s-yu/gameroom/internal/lobby"
	"github.com/jason-s-yu/gameroom/internal/memstore"
	"github.com/jason-s-yu/gameroom/internal/relay"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("failed to open store: %v", err)
	}
	defer closeStore()

	if cfg.RedisAddr != "" {
		rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.WithError(err).Warn("redis unavailable, room cache disabled")
		} else {
			defer rdb.Close()
			store = cache.NewRoomCache(store, rdb, cfg.RoomCacheTTL, logger)
			logger.Infof("Room cache enabled on %s", cfg.RedisAddr)
		}
	}

	sessions, err := auth.NewSessions(cfg.TokenExpire)
	if err != nil {
		logger.Fatalf("failed to set up sessions: %v", err)
	}

	engines := game.NewEngines(nil)
	rel := relay.New(store, engines, logger, relay.OptionsFromConfig(cfg))
	lob := lobby.New(store, engines, rel, logger)

	srv := handlers.NewServer(store, sessions, lob, rel, logger)
	srv.ProjectStates = cfg.MovePolicy == config.PolicyAuthoritative

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		// Websocket handlers outlive Shutdown; tie them to the signal context.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("http shutdown")
		}
	}()

	logger.WithField("policy", cfg.MovePolicy).Infof("Running on %s", cfg.Addr())
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Errorf("server exited: %v", err)
	}
	rel.Close()
	logger.Info("relay stopped")
}

// openStore selects the persistence backend named by STORE.
func openStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (cache.Backend, func(), error) {
	if cfg.Store == "memory" {
		logger.Warn("using in-memory store; nothing survives a restart")
		return memstore.New(), func() {}, nil
	}

	if cfg.Migrate {
		if err := database.Migrate(cfg.PostgresURL(), logger); err != nil {
			return nil, nil, err
		}
	}
	pool, err := database.ConnectDB(ctx, cfg.PostgresURL())
	if err != nil {
		return nil, nil, err
	}
	store := database.New(pool)
	logger.Infof("Connected to Postgres at %s:%s", cfg.PGHost, cfg.PGPort)
	return store, store.Close, nil
}
