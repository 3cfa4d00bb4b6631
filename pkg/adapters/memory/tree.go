package memory

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/aretw0/augtree/pkg/domain"
)

// node is a mutable tree node. The root has no parent and an empty label.
type node struct {
	label    string
	value    *string
	parent   *node
	children []*node
}

func newNode(label string) *node {
	return &node{label: label}
}

// child returns the first child labelled label.
func (n *node) child(label string) *node {
	for _, c := range n.children {
		if c.label == label {
			return c
		}
	}
	return nil
}

// ensure returns the first child labelled label, appending one if missing.
func (n *node) ensure(label string) *node {
	if c := n.child(label); c != nil {
		return c
	}
	return n.append(label)
}

func (n *node) append(label string) *node {
	c := newNode(label)
	c.parent = n
	n.children = append(n.children, c)
	return c
}

// insert adds a sibling of n labelled label.
func (n *node) insert(label string, before bool) *node {
	p := n.parent
	i := p.indexOf(n)
	if !before {
		i++
	}
	c := newNode(label)
	c.parent = p
	p.children = append(p.children, nil)
	copy(p.children[i+1:], p.children[i:])
	p.children[i] = c
	return c
}

func (n *node) indexOf(c *node) int {
	for i, x := range n.children {
		if x == c {
			return i
		}
	}
	return -1
}

// detach removes n from its parent and returns the number of removed nodes.
func (n *node) detach() int {
	if p := n.parent; p != nil {
		if i := p.indexOf(n); i >= 0 {
			p.children = append(p.children[:i], p.children[i+1:]...)
		}
		n.parent = nil
	}
	return n.size()
}

// size counts n and its descendants.
func (n *node) size() int {
	total := 1
	for _, c := range n.children {
		total += c.size()
	}
	return total
}

func (n *node) setValue(v string) {
	n.value = &v
}

// attached reports whether n is still reachable from root.
func (n *node) attached(root *node) bool {
	for cur := n; cur != nil; cur = cur.parent {
		if cur == root {
			return true
		}
	}
	return false
}

// path renders the canonical path of n. Positions are added only when
// siblings share a label.
func (n *node) path() string {
	if n.parent == nil {
		return "/"
	}
	var segs []string
	for cur := n; cur.parent != nil; cur = cur.parent {
		seg := escapeLabel(cur.label)
		same, pos := 0, 0
		for _, s := range cur.parent.children {
			if s.label == cur.label {
				same++
				if s == cur {
					pos = same
				}
			}
		}
		if same > 1 {
			seg += fmt.Sprintf("[%d]", pos)
		}
		segs = append(segs, seg)
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return "/" + strings.Join(segs, "/")
}

func escapeLabel(label string) string {
	if label == "*" {
		return `\*`
	}
	var b strings.Builder
	for _, r := range label {
		switch r {
		case '/', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// export detaches a copy of the children of n.
func (n *node) export() []domain.TreeNode {
	if len(n.children) == 0 {
		return nil
	}
	out := make([]domain.TreeNode, 0, len(n.children))
	for _, c := range n.children {
		t := domain.TreeNode{Label: c.label, Children: c.export()}
		if c.value != nil {
			v := *c.value
			t.Value = &v
		}
		out = append(out, t)
	}
	return out
}

// mount appends copies of nodes as children of n.
func (n *node) mount(nodes []domain.TreeNode) {
	for _, t := range nodes {
		c := n.append(t.Label)
		if t.Value != nil {
			c.setValue(*t.Value)
		}
		c.mount(t.Children)
	}
}

// fingerprint hashes labels, values and shape of nodes, so a subtree can be
// compared with the state it had when it was loaded.
func fingerprint(nodes []domain.TreeNode) uint64 {
	h := fnv.New64a()
	var walk func([]domain.TreeNode)
	walk = func(nodes []domain.TreeNode) {
		for _, t := range nodes {
			fmt.Fprintf(h, "%d:%s", len(t.Label), t.Label)
			if t.Value != nil {
				fmt.Fprintf(h, "=%d:%s", len(*t.Value), *t.Value)
			}
			h.Write([]byte{'('})
			walk(t.Children)
			h.Write([]byte{')'})
		}
	}
	walk(nodes)
	return h.Sum64()
}
