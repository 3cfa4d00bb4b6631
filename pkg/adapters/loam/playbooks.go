package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/augtree/pkg/domain"
	"github.com/aretw0/augtree/pkg/ports"
	"github.com/aretw0/loam"
)

// Playbooks adapts a Loam repository of markdown documents to ports.PlaybookSource.
type Playbooks struct {
	Repo *loam.TypedRepository[PlaybookMetadata]
}

// New creates a new Loam playbook source.
func New(repo *loam.TypedRepository[PlaybookMetadata]) *Playbooks {
	return &Playbooks{Repo: repo}
}

// Open initializes a read-only Loam repository at dir and wraps it.
func Open(dir string) (*Playbooks, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve playbook directory: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithVersioning(false),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open playbook repository: %w", err)
	}
	return New(loam.NewTypedRepository[PlaybookMetadata](repo)), nil
}

var _ ports.PlaybookSource = (*Playbooks)(nil)

// Get retrieves a playbook by name.
func (p *Playbooks) Get(ctx context.Context, name string) (*ports.Playbook, error) {
	ids, err := p.index(ctx)
	if err != nil {
		return nil, err
	}
	id, ok := ids[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPlaybookNotFound, name)
	}

	// List yields metadata only; the body comes from Get.
	doc, err := p.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w", id, err)
	}

	commands := doc.Content
	if strings.TrimSpace(commands) == "" {
		commands = doc.Data.Commands
	}
	return &ports.Playbook{
		Name:             name,
		Description:      doc.Data.Description,
		Root:             doc.Data.Root,
		DiscardOnFailure: doc.Data.DiscardOnFailure,
		Commands:         commands,
	}, nil
}

// List returns every playbook name, sorted.
func (p *Playbooks) List(ctx context.Context) ([]string, error) {
	ids, err := p.index(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ids))
	for name := range ids {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// index maps playbook names to document ids.
func (p *Playbooks) index(ctx context.Context) (map[string]string, error) {
	docs, err := p.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	ids := make(map[string]string, len(docs))
	for _, doc := range docs {
		name := doc.Data.Name
		if name == "" {
			name = trimExtension(doc.ID)
		}
		if existing, ok := ids[name]; ok {
			return nil, fmt.Errorf("collision detected: playbook %q is defined in both %q and %q", name, existing, doc.ID)
		}
		ids[name] = doc.ID
	}
	return ids, nil
}

func trimExtension(id string) string {
	return filepath.ToSlash(strings.TrimSuffix(id, filepath.Ext(id)))
}
