package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/waygalih/suratdesa/internal/auth"
	"github.com/waygalih/suratdesa/internal/config"
	"github.com/waygalih/suratdesa/internal/handler"
	"github.com/waygalih/suratdesa/internal/letters"
	"github.com/waygalih/suratdesa/internal/repository"
	"github.com/waygalih/suratdesa/internal/review"
	"github.com/waygalih/suratdesa/internal/router"
	"github.com/waygalih/suratdesa/internal/service"
)

const shutdownTimeout = 10 * time.Second

var addrFlag string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&addrFlag, "addr", "", "listen address (overrides APP_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck
	if addrFlag != "" {
		cfg.HTTPAddr = addrFlag
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	be, err := openBackend(ctx, cfg, cfg.PoolSize, log)
	if err != nil {
		return err
	}
	defer be.close()

	revoker, closeRevoker, err := newRevoker(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRevoker()

	reg, err := letters.Load()
	if err != nil {
		return err
	}

	subs := repository.WithTimeout(be.subs, cfg.StoreTimeout)
	sessions := review.NewRegistry(subs, log.Named("review"), cfg.Location(),
		review.Links{Spreadsheet: cfg.SpreadsheetURL})

	authSvc := service.NewAuthService(be.users, revoker, sessions, cfg.JWTSecret, cfg.SessionTTL, log.Named("auth"))
	subSvc := service.NewSubmissionService(subs, reg, cfg.Location(), log.Named("submission"))

	r := router.New(cfg.JWTSecret, revoker, log, router.Handlers{
		Auth:       handler.NewAuthHandler(authSvc, log),
		Submission: handler.NewSubmissionHandler(subSvc, log),
		Review:     handler.NewReviewHandler(sessions),
		Admin:      handler.NewAdminHandler(subs, be.indexers, log),
	})

	// Serve right away; index builds and admin seeding run on their own
	// connection so a slow index build does not hold the request pool.
	go backgroundInit(ctx, cfg, be, log.Named("init"))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info("suratdesa server starting", zap.String("addr", cfg.HTTPAddr), zap.String("driver", cfg.StoreDriver))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newRevoker uses Redis when REDIS_ADDR is set, otherwise an in-process set.
func newRevoker(ctx context.Context, cfg *config.Config, log *zap.Logger) (auth.Revoker, func(), error) {
	if cfg.RedisAddr == "" {
		log.Info("token revocation kept in memory")
		return auth.NewMemoryRevoker(), func() {}, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
	}
	log.Info("token revocation in Redis", zap.String("addr", cfg.RedisAddr))
	return auth.NewRedisRevoker(rdb), func() { _ = rdb.Close() }, nil
}

func backgroundInit(ctx context.Context, cfg *config.Config, primary *backend, log *zap.Logger) {
	log.Info("background init: starting")
	be := primary
	if cfg.StoreDriver == config.DriverOxiDB {
		dedicated, err := openBackend(ctx, cfg, 1, log)
		if err != nil {
			log.Warn("init pool connect failed, using main pool", zap.Error(err))
		} else {
			be = dedicated
			defer dedicated.close()
		}
	}

	for _, ix := range be.indexers {
		start := time.Now()
		if err := ix.EnsureIndexes(ctx); err != nil {
			log.Warn("index creation failed", zap.Error(err))
			continue
		}
		log.Info("indexes ready", zap.Duration("took", time.Since(start).Round(time.Millisecond)))
	}

	seeder := service.NewAuthService(be.users, nil, nil, cfg.JWTSecret, cfg.SessionTTL, log)
	created, err := seeder.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPass)
	switch {
	case err != nil:
		log.Warn("failed to seed admin", zap.Error(err))
	case created:
		log.Info("admin account created", zap.String("email", cfg.AdminEmail))
	}
	log.Info("background init: all done")
}
