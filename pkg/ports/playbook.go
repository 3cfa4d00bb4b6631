package ports

import "context"

// Playbook is a named, stored command block.
type Playbook struct {
	Name        string
	Description string
	// Root overrides the filesystem root the store reads files from.
	Root string
	// DiscardOnFailure reloads the store after a fatal error.
	DiscardOnFailure bool
	// Commands is the raw command block.
	Commands string
}

// PlaybookSource retrieves stored command blocks.
type PlaybookSource interface {
	// Get returns the playbook with the given name.
	// Returns domain.ErrPlaybookNotFound when it does not exist.
	Get(ctx context.Context, name string) (*Playbook, error)

	// List returns the names of every available playbook.
	List(ctx context.Context) ([]string, error)
}
