package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventCommandStart EventType = "command_start"
	EventCommandDone  EventType = "command_done"
	EventCommit       EventType = "commit"
	EventFailure      EventType = "failure"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
}

// CommandEvent is emitted around every executed command.
type CommandEvent struct {
	EventBase
	Index   int         `json:"index"`
	Command CommandName `json:"command"`
	Text    string      `json:"text"`
	Result  *Result     `json:"result,omitempty"`
}

// RunEvent is emitted when a run commits or fails.
type RunEvent struct {
	EventBase
	Commands int           `json:"commands"`
	Changed  bool          `json:"changed"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnCommandStart func(context.Context, *CommandEvent)
	OnCommandDone  func(context.Context, *CommandEvent)
	OnCommit       func(context.Context, *RunEvent)
	OnFailure      func(context.Context, *RunEvent)
}

// ChainHooks returns hooks that call every non-nil hook in order.
func ChainHooks(all ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnCommandStart: func(ctx context.Context, e *CommandEvent) {
			for _, h := range all {
				if h.OnCommandStart != nil {
					h.OnCommandStart(ctx, e)
				}
			}
		},
		OnCommandDone: func(ctx context.Context, e *CommandEvent) {
			for _, h := range all {
				if h.OnCommandDone != nil {
					h.OnCommandDone(ctx, e)
				}
			}
		},
		OnCommit: func(ctx context.Context, e *RunEvent) {
			for _, h := range all {
				if h.OnCommit != nil {
					h.OnCommit(ctx, e)
				}
			}
		},
		OnFailure: func(ctx context.Context, e *RunEvent) {
			for _, h := range all {
				if h.OnFailure != nil {
					h.OnFailure(ctx, e)
				}
			}
		},
	}
}
