package dsl

import (
	"fmt"

	"github.com/aretw0/augtree/internal/compiler"
	"github.com/aretw0/augtree/pkg/domain"
)

// step is a command recorded by the builder, validated on Build.
type step struct {
	name   domain.CommandName
	fields map[string]string
}

// Builder manages the sequence construction.
type Builder struct {
	steps []step
}

// New creates a new sequence builder.
func New() *Builder {
	return &Builder{}
}

func (b *Builder) add(name domain.CommandName, fields map[string]string) *Builder {
	b.steps = append(b.steps, step{name: name, fields: fields})
	return b
}

// Set writes value at path.
func (b *Builder) Set(path, value string) *Builder {
	return b.add(domain.CommandSet, map[string]string{"path": path, "value": value})
}

// Remove deletes every node matching path.
func (b *Builder) Remove(path string) *Builder {
	return b.add(domain.CommandRemove, map[string]string{"path": path})
}

// Match queries the nodes matching path.
func (b *Builder) Match(path string) *Builder {
	return b.add(domain.CommandMatch, map[string]string{"path": path})
}

// LensMatch queries path, reading file through lens first.
func (b *Builder) LensMatch(lens, file, path string) *Builder {
	return b.add(domain.CommandLensMatch, map[string]string{"lens": lens, "file": file, "path": path})
}

// InsertBefore creates a sibling labelled label in front of path.
func (b *Builder) InsertBefore(label, path string) *Builder {
	return b.insert(label, domain.PositionBefore, path)
}

// InsertAfter creates a sibling labelled label behind path.
func (b *Builder) InsertAfter(label, path string) *Builder {
	return b.insert(label, domain.PositionAfter, path)
}

func (b *Builder) insert(label string, where domain.Position, path string) *Builder {
	return b.add(domain.CommandInsert, map[string]string{"label": label, "where": string(where), "path": path})
}

// Transform registers file with lens.
func (b *Builder) Transform(lens, file string) *Builder {
	return b.transform(lens, domain.FilterInclude, file)
}

// Exclude keeps file away from lens.
func (b *Builder) Exclude(lens, file string) *Builder {
	return b.transform(lens, domain.FilterExclude, file)
}

func (b *Builder) transform(lens string, filter domain.Filter, file string) *Builder {
	return b.add(domain.CommandTransform, map[string]string{"lens": lens, "filter": string(filter), "file": file})
}

// Load (re)reads every registered file.
func (b *Builder) Load() *Builder {
	return b.add(domain.CommandLoad, map[string]string{})
}

// Build validates every recorded command and returns the sequence.
func (b *Builder) Build() (domain.Sequence, error) {
	seq := make(domain.Sequence, 0, len(b.steps))
	for i, s := range b.steps {
		cmd, err := compiler.Build(string(s.name), s.fields)
		if err != nil {
			return nil, fmt.Errorf("command %d (%s): %w", i+1, s.name, err)
		}
		seq = append(seq, cmd)
	}
	return seq, nil
}

// String renders the sequence as a command block. Invalid commands are
// reported in place of the block.
func (b *Builder) String() string {
	seq, err := b.Build()
	if err != nil {
		return fmt.Sprintf("!(%v)", err)
	}
	return compiler.Format(seq)
}
