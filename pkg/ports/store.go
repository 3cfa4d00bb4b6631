package ports

import (
	"context"

	"github.com/aretw0/augtree/pkg/domain"
)

// TreeStore is the hierarchical, path-addressable configuration tree.
// Calls are synchronous; a store handle is owned by a single run at a time.
type TreeStore interface {
	// Get returns the value at path. ok is false when the path matches no
	// node or the node has no value.
	Get(path string) (value string, ok bool, err error)

	// Set writes value at path, creating the node when the path does not match.
	// A rejected write returns an error matching domain.ErrValidation.
	Set(path, value string) error

	// Remove deletes every node matching path and returns how many nodes
	// (descendants included) were removed.
	Remove(path string) (int, error)

	// Match returns the paths of every node matching path, in document order.
	Match(path string) ([]string, error)

	// Insert creates a sibling labelled label before or after the single node
	// matching path.
	Insert(path, label string, before bool) error

	// Transform registers file to be parsed by lens. Excluded files are
	// skipped by Load.
	Transform(lens, file string, exclude bool) error

	// Load (re)reads every registered file into the tree.
	Load() error

	// Save persists pending changes. It fails with an error matching
	// domain.ErrSaveFailed when any file could not be written.
	Save() error
}

// OpenOptions are the per-run overrides a host may pass when opening a store.
// Empty fields keep the opener's configured defaults.
type OpenOptions struct {
	// Root is the filesystem root files are read from and written to.
	Root string
	// LoadPath lists extra directories to search for lenses.
	LoadPath string
}

// OpenFunc opens a fresh store handle for one run.
type OpenFunc func(ctx context.Context, opts OpenOptions) (TreeStore, error)

// SnapshotBackend persists detached tree snapshots by name.
type SnapshotBackend interface {
	// Save stores the snapshot under snap.Name, replacing any previous one.
	Save(ctx context.Context, snap *domain.Snapshot) error

	// Load retrieves a snapshot.
	// Returns domain.ErrSnapshotNotFound if nothing was saved under name.
	Load(ctx context.Context, name string) (*domain.Snapshot, error)

	// Delete removes a snapshot. Deleting a missing snapshot is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all stored snapshots.
	List(ctx context.Context) ([]string, error)
}
