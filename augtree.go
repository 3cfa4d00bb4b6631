package augtree

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/augtree/internal/compiler"
	"github.com/aretw0/augtree/internal/logging"
	"github.com/aretw0/augtree/internal/runtime"
	"github.com/aretw0/augtree/pkg/domain"
	"github.com/aretw0/augtree/pkg/host"
	"github.com/aretw0/augtree/pkg/ports"
)

// DefaultLockKey is the lock taken around runs when a Locker is configured.
const DefaultLockKey = "augtree"

// Engine is the high-level entry point of the augtree library.
// It parses command blocks, opens stores and runs the commands against them.
type Engine struct {
	runtime          *runtime.Engine
	open             ports.OpenFunc
	locker           ports.Locker
	lockKey          string
	lockTTL          time.Duration
	discardOnFailure bool
	hooks            domain.LifecycleHooks
	logger           *slog.Logger
	runtimeOpts      []runtime.EngineOption
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLocker serializes runs across processes. The lock on key is held from
// opening the store to the end of the commit and expires after ttl.
func WithLocker(locker ports.Locker, key string, ttl time.Duration) Option {
	return func(e *Engine) {
		e.locker = locker
		e.lockKey = key
		e.lockTTL = ttl
	}
}

// WithDiscardOnFailure reloads the store after a failed run so staged edits
// are dropped instead of lingering in a reused handle.
func WithDiscardOnFailure(discard bool) Option {
	return func(e *Engine) {
		e.discardOnFailure = discard
	}
}

// WithRunIDGenerator replaces the uuid based run ids.
func WithRunIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithRunIDGenerator(gen))
	}
}

// New initializes an engine that opens a fresh store from open for every run.
func New(open ports.OpenFunc, opts ...Option) (*Engine, error) {
	if open == nil {
		return nil, fmt.Errorf("a store opener is required")
	}
	eng := &Engine{open: open, lockKey: DefaultLockKey}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.locker != nil && eng.lockTTL <= 0 {
		return nil, fmt.Errorf("lock ttl must be positive, got %s", eng.lockTTL)
	}

	eng.runtime = eng.newRuntime(eng.discardOnFailure)
	return eng, nil
}

func (e *Engine) newRuntime(discard bool) *runtime.Engine {
	opts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(e.hooks),
		runtime.WithLogger(e.logger),
		runtime.WithDiscardOnFailure(discard),
	}
	return runtime.NewEngine(append(opts, e.runtimeOpts...)...)
}

// Parse turns a command block into a validated sequence.
func Parse(block string) (domain.Sequence, error) {
	return compiler.Parse(block)
}

// Format renders a sequence as a command block that parses back to it.
func Format(seq domain.Sequence) string {
	return compiler.Format(seq)
}

// Execute runs seq against an already open store, holding the run lock if one
// is configured. The lock does not cover reading the store; Run and
// RunSequence open the store under the lock.
func (e *Engine) Execute(ctx context.Context, store ports.TreeStore, seq domain.Sequence) (*domain.Report, error) {
	unlock, err := e.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return e.runtime.Execute(ctx, store, seq)
}

// lock takes the run lock, if any, and returns its release.
func (e *Engine) lock(ctx context.Context) (func(), error) {
	if e.locker == nil {
		return func() {}, nil
	}
	unlock, err := e.locker.Lock(ctx, e.lockKey, e.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock %q: %w", e.lockKey, err)
	}
	return func() {
		// The run's ctx may be done already; the lock must still be released.
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			e.logger.Warn("failed to release run lock", "key", e.lockKey, "error", err)
		}
	}, nil
}

// runLocked opens a store and executes seq, both under the run lock, so the
// snapshot a run reads is the one the previous run committed.
func (e *Engine) runLocked(ctx context.Context, rt *runtime.Engine, seq domain.Sequence, opts ports.OpenOptions) (*domain.Report, error) {
	unlock, err := e.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	store, err := e.open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open tree store: %w", err)
	}
	return rt.Execute(ctx, store, seq)
}

// RunSequence opens a store with opts and executes an already parsed sequence.
func (e *Engine) RunSequence(ctx context.Context, seq domain.Sequence, opts ports.OpenOptions) (*domain.Report, error) {
	return e.runLocked(ctx, e.runtime, seq, opts)
}

// Run parses block, opens a store and executes the commands.
func (e *Engine) Run(ctx context.Context, block string) (*domain.Report, error) {
	return e.RunWith(ctx, block, ports.OpenOptions{})
}

// RunWith is Run with per-run store overrides.
func (e *Engine) RunWith(ctx context.Context, block string, opts ports.OpenOptions) (*domain.Report, error) {
	seq, err := compiler.Parse(block)
	if err != nil {
		return nil, err
	}
	return e.runLocked(ctx, e.runtime, seq, opts)
}

// RunPlaybook fetches a stored command block and runs it with the root and
// failure policy the playbook declares.
func (e *Engine) RunPlaybook(ctx context.Context, source ports.PlaybookSource, name string) (*domain.Report, error) {
	pb, err := source.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	seq, err := compiler.Parse(pb.Commands)
	if err != nil {
		return nil, fmt.Errorf("playbook %q: %w", name, err)
	}

	rt := e.runtime
	if pb.DiscardOnFailure && !e.discardOnFailure {
		rt = e.newRuntime(true)
	}
	e.logger.Debug("running playbook", "playbook", name, "commands", len(seq))
	return e.runLocked(ctx, rt, seq, ports.OpenOptions{Root: pb.Root})
}

// Host returns the host boundary bound to this engine's opener and lock.
func (e *Engine) Host() *host.Host {
	return host.NewFromRunner(e)
}
