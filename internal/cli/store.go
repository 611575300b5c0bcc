package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/utm/pkg/adapters/file"
	"github.com/aretw0/utm/pkg/adapters/memory"
	"github.com/aretw0/utm/pkg/adapters/redis"
	"github.com/aretw0/utm/pkg/adapters/sqlite"
	"github.com/aretw0/utm/pkg/ports"
	"github.com/aretw0/utm/pkg/session"
)

// Store kinds accepted by --store.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// RedisAddrEnv names the environment variable holding the redis address.
const RedisAddrEnv = "UTM_REDIS_ADDR"

const defaultRedisAddr = "localhost:6379"

// StateDir is the per-project directory holding persisted runs.
func StateDir(dir string) string {
	return filepath.Join(dir, ".utm")
}

// OpenStore builds the RunStore named by kind. The returned close function is never nil.
func OpenStore(ctx context.Context, kind, dir string) (ports.RunStore, func() error, error) {
	noop := func() error { return nil }

	switch kind {
	case StoreMemory:
		return memory.NewStore(), noop, nil
	case "", StoreFile:
		return file.New(filepath.Join(StateDir(dir), "runs")), noop, nil
	case StoreRedis:
		addr := os.Getenv(RedisAddrEnv)
		if addr == "" {
			addr = defaultRedisAddr
		}
		store := redis.New(addr, "", 0)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			store.Close()
			return nil, noop, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
		}
		return store, store.Close, nil
	case StoreSQLite:
		if err := os.MkdirAll(StateDir(dir), 0755); err != nil {
			return nil, noop, fmt.Errorf("failed to create state directory: %w", err)
		}
		store, err := sqlite.Open(filepath.Join(StateDir(dir), "runs.db"))
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown store %q (want memory, file, redis or sqlite)", kind)
}

// OpenRuns wraps the store named by kind in a session.Manager.
// Redis stores also get the distributed locker so several hosts can share them.
func OpenRuns(ctx context.Context, kind, dir string, logger *slog.Logger) (*session.Manager, func() error, error) {
	store, closeFn, err := OpenStore(ctx, kind, dir)
	if err != nil {
		return nil, closeFn, err
	}
	opts := []session.Option{session.WithLogger(logger)}
	if rs, ok := store.(*redis.Store); ok {
		opts = append(opts, session.WithLocker(redis.NewLocker(rs.Client(), "utm:")))
	}
	return session.NewManager(store, opts...), closeFn, nil
}
