package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/waygalih/suratdesa/internal/config"
	"github.com/waygalih/suratdesa/internal/db"
	"github.com/waygalih/suratdesa/internal/models"
	"github.com/waygalih/suratdesa/internal/repository"
)

// bulkStore is implemented by the persistent submission stores.
type bulkStore interface {
	InsertMany(ctx context.Context, subs []models.Submission) ([]string, error)
	Drop(ctx context.Context) error
}

// backend is one opened set of stores for the configured driver.
type backend struct {
	driver   string
	subs     repository.SubmissionStore
	users    repository.UserStore
	indexers []repository.Indexer
	bulk     bulkStore
	close    func()
}

// openBackend connects the stores selected by cfg.StoreDriver. poolSize
// only applies to OxiDB.
func openBackend(ctx context.Context, cfg *config.Config, poolSize int, log *zap.Logger) (*backend, error) {
	switch cfg.StoreDriver {
	case config.DriverOxiDB:
		pool, err := db.NewPool(ctx, cfg.OxiDBHost, cfg.OxiDBPort, poolSize, log)
		if err != nil {
			return nil, fmt.Errorf("connect oxidb: %w", err)
		}
		subs := repository.NewSubmissionRepo(pool)
		users := repository.NewUserRepo(pool)
		log.Info("connected to OxiDB",
			zap.String("host", cfg.OxiDBHost), zap.Int("port", cfg.OxiDBPort), zap.Int("pool", poolSize))
		return &backend{
			driver:   cfg.StoreDriver,
			subs:     subs,
			users:    users,
			indexers: []repository.Indexer{users, subs},
			bulk:     subs,
			close:    pool.Close,
		}, nil

	case config.DriverMongo:
		ctx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
		defer cancel()
		mdb, err := repository.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		subs := repository.NewMongoSubmissionStore(mdb)
		users := repository.NewMongoUserStore(mdb)
		log.Info("connected to MongoDB", zap.String("db", cfg.MongoDB))
		return &backend{
			driver:   cfg.StoreDriver,
			subs:     subs,
			users:    users,
			indexers: []repository.Indexer{users, subs},
			bulk:     subs,
			close: func() {
				if err := mdb.Client().Disconnect(context.Background()); err != nil {
					log.Warn("mongo disconnect failed", zap.Error(err))
				}
			},
		}, nil

	case config.DriverMemory:
		log.Warn("using in-memory stores, data is lost on exit")
		return &backend{
			driver: cfg.StoreDriver,
			subs:   repository.NewMemorySubmissionStore(),
			users:  repository.NewMemoryUserStore(),
			close:  func() {},
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
