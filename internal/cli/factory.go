// Package cli holds the wiring shared by the kinder commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/kinder/internal/config"
	"github.com/aretw0/kinder/pkg/adapters/memory"
	"github.com/aretw0/kinder/pkg/adapters/redis"
	"github.com/aretw0/kinder/pkg/adapters/sqlite"
	"github.com/aretw0/kinder/pkg/domain"
	"github.com/aretw0/kinder/pkg/ports"
)

// History is a history store that can also enumerate its users.
type History interface {
	ports.HistoryStore
	ports.HistoryLister
}

type pinger interface {
	Ping(ctx context.Context) error
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// OpenHistory opens the configured backend. The returned closer is never nil.
func OpenHistory(cfg config.StorageConfig) (History, io.Closer, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.NewHistoryStore(), closerFunc(func() error { return nil }), nil
	case config.BackendSQLite:
		var opts []sqlite.Option
		if cfg.Table != "" {
			opts = append(opts, sqlite.WithTable(cfg.Table))
		}
		store, err := sqlite.Open(cfg.Path, opts...)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case config.BackendRedis:
		var opts []redis.Option
		if cfg.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Prefix))
		}
		store, err := redis.New(cfg.RedisURL, opts...)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

// EnsureProvisioned fails with domain.ErrNotProvisioned unless the storage
// exists or provision is set, in which case it is created.
func EnsureProvisioned(ctx context.Context, store ports.HistoryStore, provision bool, logger *slog.Logger) error {
	ok, err := store.Provisioned(ctx)
	if err != nil {
		return fmt.Errorf("check history storage: %w", err)
	}
	if ok {
		return nil
	}
	if !provision {
		return fmt.Errorf("%w: run 'kinder history provision' or pass --provision", domain.ErrNotProvisioned)
	}
	if err := store.Provision(ctx); err != nil {
		return fmt.Errorf("provision history storage: %w", err)
	}
	logger.Info("history storage provisioned")
	return nil
}

// Ping checks the store if it supports it.
func Ping(ctx context.Context, store any) error {
	if p, ok := store.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
