package runtime

import (
	"fmt"

	"github.com/aretw0/augtree/pkg/domain"
	"github.com/aretw0/augtree/pkg/ports"
)

// apply executes a single command against the store.
func apply(store ports.TreeStore, cmd domain.Command) (domain.Result, error) {
	switch c := cmd.(type) {
	case domain.Set:
		return applySet(store, c)

	case domain.Remove:
		matches, err := store.Match(c.Path)
		if err != nil {
			return domain.Result{}, commandError(store, c, err)
		}
		if len(matches) == 0 {
			return domain.ChangedResult(false), nil
		}
		if _, err := store.Remove(c.Path); err != nil {
			return domain.Result{}, commandError(store, c, err)
		}
		return domain.ChangedResult(true), nil

	case domain.Insert:
		if err := store.Insert(c.Path, c.Label, c.Before()); err != nil {
			return domain.Result{}, &domain.InsertError{CommandError: domain.CommandError{
				Command:     c,
				Diagnostics: CollectDiagnostics(store, ""),
				Err:         err,
			}}
		}
		return domain.ChangedResult(true), nil

	case domain.Transform:
		if err := store.Transform(c.Lens, c.File, c.Exclude()); err != nil {
			return domain.Result{}, commandError(store, c, err)
		}
		return domain.NoResult(), nil

	case domain.Load:
		if err := store.Load(); err != nil {
			return domain.Result{}, commandError(store, c, err)
		}
		return domain.NoResult(), nil

	case domain.LensMatch:
		if err := store.Transform(c.Lens, c.File, false); err != nil {
			return domain.Result{}, commandError(store, c, err)
		}
		if err := store.Load(); err != nil {
			return domain.Result{}, commandError(store, c, err)
		}
		return query(store, c, c.Path)

	case domain.Match:
		return query(store, c, c.Path)
	}
	return domain.Result{}, fmt.Errorf("unsupported command %q", cmd.Name())
}

// applySet writes only when the current value differs. A path without a value
// differs from every value, the empty string included.
func applySet(store ports.TreeStore, c domain.Set) (domain.Result, error) {
	current, ok, err := store.Get(c.Path)
	if err != nil {
		return domain.Result{}, setError(store, c, err)
	}
	if ok && current == c.Value {
		return domain.ChangedResult(false), nil
	}
	if err := store.Set(c.Path, c.Value); err != nil {
		return domain.Result{}, setError(store, c, err)
	}
	return domain.ChangedResult(true), nil
}

func query(store ports.TreeStore, cmd domain.Command, path string) (domain.Result, error) {
	paths, err := store.Match(path)
	if err != nil {
		return domain.Result{}, commandError(store, cmd, err)
	}
	entries := make([]domain.MatchEntry, 0, len(paths))
	for _, p := range paths {
		value, ok, err := store.Get(p)
		if err != nil {
			return domain.Result{}, commandError(store, cmd, err)
		}
		entry := domain.MatchEntry{Label: p}
		if ok {
			entry.Value = &value
		}
		entries = append(entries, entry)
	}
	return domain.MatchesResult(entries), nil
}

func setError(store ports.TreeStore, c domain.Set, err error) error {
	return &domain.SetError{CommandError: domain.CommandError{
		Command:     c,
		Diagnostics: CollectDiagnostics(store, domain.ErrorTypePutFailed),
		Err:         err,
	}}
}

func commandError(store ports.TreeStore, cmd domain.Command, err error) error {
	return &domain.CommandError{
		Command:     cmd,
		Diagnostics: CollectDiagnostics(store, ""),
		Err:         err,
	}
}
