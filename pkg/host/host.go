// Package host is the boundary between augtree and the automation framework
// invoking it: it decodes an argument dictionary, runs the commands it names
// and reports back changed/result or a single failure message.
package host

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/augtree/internal/runtime"
	"github.com/aretw0/augtree/pkg/domain"
	"github.com/aretw0/augtree/pkg/ports"
)

// Executor runs a parsed sequence against an open store.
type Executor interface {
	Execute(ctx context.Context, store ports.TreeStore, seq domain.Sequence) (*domain.Report, error)
}

// Runner opens a store and runs a sequence against it as one unit, so a run
// lock can cover the store read as well as the commit.
type Runner interface {
	RunSequence(ctx context.Context, seq domain.Sequence, opts ports.OpenOptions) (*domain.Report, error)
}

// Response is what the host reports to its caller.
// A failed response carries only Msg.
type Response struct {
	Changed bool
	// Result is the bare result value of a single command, or the
	// []domain.Entry of a command block.
	Result any
	Failed bool
	Msg    string
}

// MarshalJSON encodes {"changed", "result"} on success and {"failed", "msg"} on failure.
func (r Response) MarshalJSON() ([]byte, error) {
	if r.Failed {
		return json.Marshal(struct {
			Failed bool   `json:"failed"`
			Msg    string `json:"msg"`
		}{true, r.Msg})
	}
	return json.Marshal(struct {
		Changed bool `json:"changed"`
		Result  any  `json:"result"`
	}{r.Changed, r.Result})
}

// Fail builds a failed response.
func Fail(err error) Response {
	return Response{Failed: true, Msg: err.Error()}
}

// Host runs invocations against stores produced by its opener.
type Host struct {
	runner Runner
}

// opened runs sequences on stores from open, one after the other.
type opened struct {
	open ports.OpenFunc
	exec Executor
}

func (o opened) RunSequence(ctx context.Context, seq domain.Sequence, opts ports.OpenOptions) (*domain.Report, error) {
	store, err := o.open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open tree store: %w", err)
	}
	return o.exec.Execute(ctx, store, seq)
}

// New creates a host. A nil executor uses a default engine.
func New(open ports.OpenFunc, exec Executor) *Host {
	if exec == nil {
		exec = runtime.NewEngine()
	}
	return &Host{runner: opened{open: open, exec: exec}}
}

// NewFromRunner creates a host that hands every run to r.
func NewFromRunner(r Runner) *Host {
	return &Host{runner: r}
}

// Run is New(open, nil).RunRaw.
func Run(ctx context.Context, open ports.OpenFunc, raw map[string]any) Response {
	return New(open, nil).RunRaw(ctx, raw)
}

// RunRaw decodes raw and runs it.
func (h *Host) RunRaw(ctx context.Context, raw map[string]any) Response {
	p, err := Decode(raw)
	if err != nil {
		return Fail(err)
	}
	return h.Run(ctx, p)
}

// Run executes a decoded invocation. Nothing is opened when the commands fail to compile.
func (h *Host) Run(ctx context.Context, p Params) Response {
	seq, err := p.Sequence()
	if err != nil {
		return Fail(err)
	}

	report, err := h.runner.RunSequence(ctx, seq, ports.OpenOptions{Root: p.Root, LoadPath: p.LoadPath})
	if err != nil {
		return Fail(err)
	}
	return Respond(report, p.Single())
}

// Respond shapes a report: the first entry's bare value when single is set,
// the whole entry list otherwise.
func Respond(report *domain.Report, single bool) Response {
	if !single {
		entries := report.Entries
		if entries == nil {
			entries = []domain.Entry{}
		}
		return Response{Changed: report.Changed, Result: entries}
	}
	var value any
	if len(report.Entries) > 0 {
		value = report.Entries[0].Result.Value()
	}
	return Response{Changed: report.Changed, Result: value}
}
