// Package lens converts configuration files to and from trees.
//
// A lens is bidirectional: Get parses file content into nodes, Put renders
// nodes back into file content. The in-memory tree store uses lenses to mount
// files under /files and to write them back on save.
package lens

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/augtree/pkg/domain"
)

// ErrUnknownLens is returned when a lens name is not registered.
var ErrUnknownLens = errors.New("unknown lens")

// Lens parses and renders one configuration file format.
type Lens interface {
	// Name is the module name, e.g. "Hosts".
	Name() string
	// Get parses content into top-level nodes.
	Get(content []byte) ([]domain.TreeNode, error)
	// Put renders nodes back into file content.
	Put(nodes []domain.TreeNode) ([]byte, error)
}

// Error reports content a lens cannot parse, or a tree it cannot render.
type Error struct {
	Lens    string
	Line    int
	Message string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s.lns: line %d: %s", e.Lens, e.Line, e.Message)
	}
	return fmt.Sprintf("%s.lns: %s", e.Lens, e.Message)
}

// ModuleName strips the lens suffix and module marker from a lens reference:
// "Hosts", "Hosts.lns" and "@Hosts" all name module "Hosts".
func ModuleName(name string) string {
	name = strings.TrimPrefix(name, "@")
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}
	return name
}

// QualifiedName returns the lens reference stored under /augeas/load: "Hosts.lns".
func QualifiedName(name string) string {
	name = strings.TrimPrefix(name, "@")
	if strings.Contains(name, ".") {
		return name
	}
	return name + ".lns"
}

// Registry maps module names to lenses. Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	lenses map[string]Lens
}

// NewRegistry creates a registry holding the given lenses.
func NewRegistry(lenses ...Lens) *Registry {
	r := &Registry{lenses: make(map[string]Lens)}
	for _, l := range lenses {
		r.Register(l)
	}
	return r
}

// Default returns a registry with every bundled lens.
func Default() *Registry {
	return NewRegistry(Hosts{}, Simplevars{}, Sshd{})
}

// Register adds or replaces a lens.
func (r *Registry) Register(l Lens) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lenses[l.Name()] = l
}

// Lookup finds a lens by any form of its name.
func (r *Registry) Lookup(name string) (Lens, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.lenses[ModuleName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLens, QualifiedName(name))
	}
	return l, nil
}

// Names lists the registered module names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.lenses))
	for n := range r.lenses {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// commentLabel is the label of comment nodes in every bundled lens.
const commentLabel = "#comment"

// lines splits content into lines without their terminators.
func lines(content []byte) []string {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// comment returns the text of a comment line and whether line is one.
func comment(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "#") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(trimmed, "#")), true
}

func commentNode(text string) domain.TreeNode {
	return domain.TreeNode{Label: commentLabel, Value: domain.StringPtr(text)}
}

func renderComment(n domain.TreeNode) string {
	if n.Value == nil || *n.Value == "" {
		return "#"
	}
	return "# " + *n.Value
}

func value(n domain.TreeNode) string {
	if n.Value == nil {
		return ""
	}
	return *n.Value
}

// word reports whether s is a non-empty value without whitespace.
func word(s string) bool {
	return s != "" && !strings.ContainsAny(s, " \t\n")
}
