package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-management-api/internal/auth"
	"task-management-api/internal/config"
	"task-management-api/internal/database"
	"task-management-api/internal/realtime"
	"task-management-api/internal/routes"
	"task-management-api/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "server configuration file")
	flag.Parse()

	cfg := config.MustLoad(configPath)
	log.SetLevel(config.ParseLogLevel(cfg.LogLevel))
	gin.SetMode(cfg.HTTP.Mode)

	if err := run(cfg); err != nil {
		log.WithError(err).Fatal("server failed")
	}
}

func run(cfg config.Config) error {
	// Init database
	store, err := database.Open(cfg.Database.Path, database.ParseLogLevel(cfg.Database.LogLevel))
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.WithError(err).Error("failed to close database")
		}
	}()
	if err := store.Migrate(); err != nil {
		return err
	}
	log.WithField("path", cfg.Database.Path).Info("database connected and migrated")

	denylist, closeDenylist, err := newDenylist(cfg.Redis)
	if err != nil {
		return err
	}
	defer closeDenylist()

	router := routes.SetupRoutes(routes.Options{
		DB:           store.DB(),
		Tokens:       auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.TokenTTL),
		Hasher:       auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		Denylist:     denylist,
		Hub:          realtime.NewHub(),
		AllowOrigin:  cfg.HTTP.AllowOrigin,
		SecureCookie: cfg.Auth.SecureCookie,
	})

	server := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.WithField("address", server.Addr).Info("server starting")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newDenylist uses Redis when configured so revocations are shared between
// instances, and an in-process store otherwise.
func newDenylist(cfg config.RedisConfig) (session.Denylist, func(), error) {
	if cfg.URL == "" {
		log.Info("revoked tokens kept in memory")
		return session.NewMemoryDenylist(), func() {}, nil
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, nil, err
	}
	client := redis.NewClient(opts)
	closeFn := func() {
		if err := client.Close(); err != nil {
			log.WithError(err).Error("failed to close redis client")
		}
	}
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		closeFn()
		return nil, nil, err
	}
	log.WithField("addr", opts.Addr).Info("revoked tokens kept in redis")
	return session.NewRedisDenylist(client, "revoked"), closeFn, nil
}
