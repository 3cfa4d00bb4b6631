package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/augtree/internal/logging"
	"github.com/aretw0/augtree/pkg/domain"
	"github.com/aretw0/augtree/pkg/ports"
	"github.com/google/uuid"
)

// Engine executes parsed command sequences against a tree store.
// It holds no per-run state and may be shared; a store handle may not.
type Engine struct {
	logger           *slog.Logger
	hooks            domain.LifecycleHooks
	discardOnFailure bool
	newRunID         func() string
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithDiscardOnFailure makes the engine reload the store after a fatal error,
// dropping edits staged earlier in the failed run.
func WithDiscardOnFailure(discard bool) EngineOption {
	return func(e *Engine) {
		e.discardOnFailure = discard
	}
}

// WithRunIDGenerator replaces the uuid based run id generator.
func WithRunIDGenerator(gen func() string) EngineOption {
	return func(e *Engine) {
		e.newRunID = gen
	}
}

// NewEngine creates a new engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger:   logging.NewNop(),
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs seq in order against store and commits once at the end.
//
// The first failing command aborts the run: later commands are not executed
// and Save is not called. On success every command has exactly one entry in
// the report, in sequence order.
func (e *Engine) Execute(ctx context.Context, store ports.TreeStore, seq domain.Sequence) (*domain.Report, error) {
	run := &execution{
		id:     e.newRunID(),
		start:  time.Now(),
		logger: e.logger,
	}
	run.logger = logging.ForRun(run.logger, run.id)
	run.logger.DebugContext(ctx, "run started", "commands", len(seq))

	report := &domain.Report{
		RunID:   run.id,
		Entries: make([]domain.Entry, 0, len(seq)),
	}

	for i, cmd := range seq {
		text := domain.Text(cmd)
		if err := ctx.Err(); err != nil {
			return nil, e.fail(ctx, run, store, report, fmt.Errorf("run aborted before %q: %w", text, err))
		}

		e.emitCommand(ctx, e.hooks.OnCommandStart, domain.EventCommandStart, run.id, i, cmd, text, nil)

		result, err := apply(store, cmd)
		if err != nil {
			return nil, e.fail(ctx, run, store, report, err)
		}
		if result.Kind == domain.ResultChanged && result.Changed {
			report.Changed = true
		}
		report.Entries = append(report.Entries, domain.Entry{Text: text, Result: result})

		run.logger.DebugContext(ctx, "command executed", "index", i, "command", text, "changed", result.Changed)
		e.emitCommand(ctx, e.hooks.OnCommandDone, domain.EventCommandDone, run.id, i, cmd, text, &result)
	}

	if err := store.Save(); err != nil {
		saveErr := &domain.SaveError{Diagnostics: CollectDiagnostics(store, ""), Err: err}
		return nil, e.fail(ctx, run, store, report, saveErr)
	}

	run.logger.InfoContext(ctx, "run committed", "commands", len(seq), "changed", report.Changed)
	if e.hooks.OnCommit != nil {
		e.hooks.OnCommit(ctx, run.event(domain.EventCommit, report, nil))
	}
	return report, nil
}

// execution carries the bookkeeping of a single Execute call.
type execution struct {
	id     string
	start  time.Time
	logger *slog.Logger
}

func (r *execution) event(typ domain.EventType, report *domain.Report, err error) *domain.RunEvent {
	return &domain.RunEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: typ, RunID: r.id},
		Commands:  len(report.Entries),
		Changed:   report.Changed,
		Duration:  time.Since(r.start),
		Err:       err,
	}
}

func (e *Engine) emitCommand(ctx context.Context, hook func(context.Context, *domain.CommandEvent), typ domain.EventType, runID string, index int, cmd domain.Command, text string, result *domain.Result) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.CommandEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: typ, RunID: runID},
		Index:     index,
		Command:   cmd.Name(),
		Text:      text,
		Result:    result,
	})
}

func (e *Engine) fail(ctx context.Context, run *execution, store ports.TreeStore, report *domain.Report, err error) error {
	run.logger.ErrorContext(ctx, "run failed", "executed", len(report.Entries), "error", err)
	if e.discardOnFailure {
		e.discard(ctx, run, store)
	}
	if e.hooks.OnFailure != nil {
		e.hooks.OnFailure(ctx, run.event(domain.EventFailure, report, err))
	}
	return err
}
