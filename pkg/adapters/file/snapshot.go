package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/augtree/internal/fsutil"
	"github.com/aretw0/augtree/pkg/domain"
	"gopkg.in/yaml.v3"
)

const ext = ".yaml"

// SnapshotStore implements ports.SnapshotBackend using the local filesystem.
// It stores each snapshot as a YAML document in a configured directory.
type SnapshotStore struct {
	BasePath string
}

// New creates a new SnapshotStore with the given base path.
// If basePath is empty, it defaults to ".augtree/snapshots".
func New(basePath string) *SnapshotStore {
	if basePath == "" {
		basePath = filepath.Join(".augtree", "snapshots")
	}
	return &SnapshotStore{BasePath: basePath}
}

func (s *SnapshotStore) path(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("snapshot name cannot be empty")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid snapshot name %q", name)
	}
	return filepath.Join(s.BasePath, name+ext), nil
}

// Save writes the snapshot atomically.
func (s *SnapshotStore) Save(ctx context.Context, snap *domain.Snapshot) error {
	dest, err := s.path(snap.Name)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := fsutil.WriteFileAtomic(dest, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot %q: %w", snap.Name, err)
	}
	return nil
}

// Load reads a snapshot back.
func (s *SnapshotStore) Load(ctx context.Context, name string) (*domain.Snapshot, error) {
	src, err := s.path(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snap domain.Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot %q: %w", name, err)
	}
	snap.Name = name
	return &snap, nil
}

// Delete removes the snapshot file.
func (s *SnapshotStore) Delete(ctx context.Context, name string) error {
	target, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete snapshot file: %w", err)
	}
	return nil
}

// List returns the names of all stored snapshots.
func (s *SnapshotStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) || strings.HasPrefix(entry.Name(), ".tmp-") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ext))
	}
	sort.Strings(names)
	return names, nil
}
