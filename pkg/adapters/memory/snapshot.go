package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/augtree/pkg/domain"
)

// SnapshotStore implements ports.SnapshotBackend in memory.
// Safe for concurrent use.
type SnapshotStore struct {
	data map[string][]domain.TreeNode
	mu   sync.RWMutex
}

// NewSnapshotStore creates a new in-memory snapshot backend.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		data: make(map[string][]domain.TreeNode),
	}
}

// Save keeps a deep copy of the snapshot.
func (s *SnapshotStore) Save(ctx context.Context, snap *domain.Snapshot) error {
	nodes := cloneNodes(snap.Nodes)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[snap.Name] = nodes
	return nil
}

// Load returns a copy so callers cannot mutate the stored snapshot.
func (s *SnapshotStore) Load(ctx context.Context, name string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes, ok := s.data[name]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	return &domain.Snapshot{Name: name, Nodes: cloneNodes(nodes)}, nil
}

// Delete removes the snapshot.
func (s *SnapshotStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

// List returns the stored snapshot names, sorted.
func (s *SnapshotStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func cloneNodes(nodes []domain.TreeNode) []domain.TreeNode {
	if nodes == nil {
		return nil
	}
	out := make([]domain.TreeNode, len(nodes))
	for i, n := range nodes {
		out[i] = domain.TreeNode{Label: n.Label, Children: cloneNodes(n.Children)}
		if n.Value != nil {
			v := *n.Value
			out[i].Value = &v
		}
	}
	return out
}
