package domain

import "encoding/json"

// ResultKind tells which variant a Result carries.
type ResultKind int

const (
	// ResultNone is returned by commands without a query result (transform, load).
	ResultNone ResultKind = iota
	// ResultChanged carries whether a mutating command modified the tree.
	ResultChanged
	// ResultMatches carries the nodes found by match and lensmatch.
	ResultMatches
)

// MatchEntry is a node found by a query. Value is nil when the node has no value.
type MatchEntry struct {
	Label string  `json:"label"`
	Value *string `json:"value"`
}

// Result is the outcome of a single command.
type Result struct {
	Kind    ResultKind
	Changed bool
	Matches []MatchEntry
}

// NoResult is the result of transform and load.
func NoResult() Result { return Result{Kind: ResultNone} }

// ChangedResult is the result of set, rm and ins.
func ChangedResult(changed bool) Result {
	return Result{Kind: ResultChanged, Changed: changed}
}

// MatchesResult is the result of match and lensmatch.
func MatchesResult(entries []MatchEntry) Result {
	if entries == nil {
		entries = []MatchEntry{}
	}
	return Result{Kind: ResultMatches, Matches: entries}
}

// Value returns the plain value: nil, a bool or a []MatchEntry.
func (r Result) Value() any {
	switch r.Kind {
	case ResultChanged:
		return r.Changed
	case ResultMatches:
		return r.Matches
	default:
		return nil
	}
}

func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Value())
}

// Entry pairs the command text with its result.
type Entry struct {
	Text   string
	Result Result
}

// MarshalJSON encodes the entry as the tuple [text, value].
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.Text, e.Result.Value()})
}

// Report is the outcome of a whole run.
type Report struct {
	RunID   string  `json:"run_id,omitempty"`
	Entries []Entry `json:"result"`
	Changed bool    `json:"changed"`
}
