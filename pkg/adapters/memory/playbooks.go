package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/augtree/pkg/domain"
	"github.com/aretw0/augtree/pkg/ports"
)

// Playbooks implements ports.PlaybookSource using an in-memory map.
type Playbooks struct {
	items map[string]ports.Playbook
}

// NewPlaybooks creates a source from raw command blocks keyed by name.
func NewPlaybooks(blocks map[string]string) *Playbooks {
	items := make(map[string]ports.Playbook, len(blocks))
	for name, commands := range blocks {
		items[name] = ports.Playbook{Name: name, Commands: commands}
	}
	return &Playbooks{items: items}
}

// NewFromPlaybooks creates a source from complete playbooks.
func NewFromPlaybooks(playbooks ...ports.Playbook) (*Playbooks, error) {
	items := make(map[string]ports.Playbook, len(playbooks))
	for _, p := range playbooks {
		if p.Name == "" {
			return nil, fmt.Errorf("playbook missing name")
		}
		items[p.Name] = p
	}
	return &Playbooks{items: items}, nil
}

// Get retrieves a playbook by name.
func (p *Playbooks) Get(ctx context.Context, name string) (*ports.Playbook, error) {
	item, ok := p.items[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPlaybookNotFound, name)
	}
	return &item, nil
}

// List returns all playbook names.
func (p *Playbooks) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(p.items))
	for k := range p.items {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
