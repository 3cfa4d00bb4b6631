package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/augtree"
	"github.com/aretw0/augtree/internal/config"
	"github.com/aretw0/augtree/pkg/adapters/file"
	"github.com/aretw0/augtree/pkg/adapters/memory"
	"github.com/aretw0/augtree/pkg/adapters/redis"
	"github.com/aretw0/augtree/pkg/domain"
	"github.com/aretw0/augtree/pkg/persistence/middleware"
	"github.com/aretw0/augtree/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// localLockTTL is passed to the in-process locker, which does not expire locks.
const localLockTTL = time.Minute

// Stack is an engine wired to the adapters a configuration selects.
type Stack struct {
	Engine *augtree.Engine
	Open   ports.OpenFunc
	client *backend.Client
}

// Close releases the redis connection, if any.
func (s *Stack) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// NewStack builds the snapshot backend, store opener and engine for cfg.
// Extra hooks run after the debug hooks enabled by cfg.Debug.
func NewStack(cfg *config.Config, logger *slog.Logger, hooks ...domain.LifecycleHooks) (*Stack, error) {
	stack := &Stack{}

	var snapshots ports.SnapshotBackend
	switch cfg.Backend {
	case config.BackendFile:
		snapshots = file.New(cfg.SnapshotDir)
	case config.BackendRedis:
		stack.client = backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		snapshots = redis.NewFromClient(stack.client,
			redis.WithPrefix(cfg.Redis.Prefix+"snapshot:"),
			redis.WithTTL(cfg.Redis.TTL.Duration),
		)
	default:
		// Free nodes live as long as the process.
		snapshots = memory.NewSnapshotStore()
	}
	if cfg.EncryptionKey != "" {
		key, err := middleware.ParseKey(cfg.EncryptionKey)
		if err != nil {
			_ = stack.Close()
			return nil, err
		}
		snapshots = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})(snapshots)
	}
	stack.Open = NewOpener(cfg, snapshots, logger)

	if cfg.Debug {
		hooks = append([]domain.LifecycleHooks{createDebugHooks(logger)}, hooks...)
	}
	opts := []augtree.Option{
		augtree.WithLogger(logger),
		augtree.WithDiscardOnFailure(cfg.DiscardOnFailure),
	}
	if len(hooks) > 0 {
		opts = append(opts, augtree.WithLifecycleHooks(domain.ChainHooks(hooks...)))
	}
	if stack.client != nil && cfg.Redis.LockTTL.Duration > 0 {
		locker := redis.NewLocker(stack.client, cfg.Redis.Prefix)
		opts = append(opts, augtree.WithLocker(locker, augtree.DefaultLockKey, cfg.Redis.LockTTL.Duration))
	} else {
		// Runs sharing this stack (serve, mcp) still edit one root at a time.
		opts = append(opts, augtree.WithLocker(memory.NewLocker(), augtree.DefaultLockKey, localLockTTL))
	}

	engine, err := augtree.New(stack.Open, opts...)
	if err != nil {
		_ = stack.Close()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	stack.Engine = engine
	return stack, nil
}

// NewOpener returns an opener for stores configured by cfg. A per-run root
// replaces cfg.Root.
func NewOpener(cfg *config.Config, snapshots ports.SnapshotBackend, logger *slog.Logger) ports.OpenFunc {
	return func(ctx context.Context, opts ports.OpenOptions) (ports.TreeStore, error) {
		root := cfg.Root
		if opts.Root != "" {
			root = opts.Root
		}

		storeOpts := []memory.Option{
			memory.WithRoot(root),
			memory.WithName(cfg.Snapshot),
			memory.WithContext(ctx),
			memory.WithLogger(logger),
		}
		if snapshots != nil {
			storeOpts = append(storeOpts, memory.WithSnapshotBackend(snapshots))
		}
		for _, t := range cfg.Transforms {
			for _, f := range t.Incl {
				storeOpts = append(storeOpts, memory.WithTransform(t.Lens, f, false))
			}
			for _, f := range t.Excl {
				storeOpts = append(storeOpts, memory.WithTransform(t.Lens, f, true))
			}
		}
		return memory.Open(storeOpts...)
	}
}
