package memory

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// errPath reports a path expression outside the supported subset.
var errPath = errors.New("invalid path expression")

// step is one location step of a path expression.
type step struct {
	// descendant is set when the step follows "//".
	descendant bool
	// name is a label, or "*" for any label.
	name     string
	wildcard bool
	preds    []predicate
}

// creatable reports whether a node can be created for the step: a plain
// label with at most a position predicate.
func (s step) creatable() bool {
	if s.descendant || s.wildcard {
		return false
	}
	for _, p := range s.preds {
		switch p.(type) {
		case position, last, appendPos:
		default:
			return false
		}
	}
	return true
}

func (s step) matches(n *node) bool {
	return s.wildcard || n.label == s.name
}

// predicate filters the candidates one parent contributes to a step.
type predicate interface {
	filter(nodes []*node) []*node
}

// position selects the n-th candidate, starting at 1.
type position int

func (p position) filter(nodes []*node) []*node {
	if int(p) < 1 || int(p) > len(nodes) {
		return nil
	}
	return nodes[p-1 : p]
}

// last selects the last candidate.
type last struct{}

func (last) filter(nodes []*node) []*node {
	if len(nodes) == 0 {
		return nil
	}
	return nodes[len(nodes)-1:]
}

// appendPos is last()+1: it never matches and creates a new node on set.
type appendPos struct{}

func (appendPos) filter([]*node) []*node { return nil }

// compare tests the value of the node itself (child ".") or of a child, or
// the node label (child "label()").
type compare struct {
	child  string
	negate bool
	value  string
}

func (c compare) filter(nodes []*node) []*node {
	var out []*node
	for _, n := range nodes {
		if c.test(n) != c.negate {
			out = append(out, n)
		}
	}
	return out
}

func (c compare) test(n *node) bool {
	switch c.child {
	case ".":
		return n.value != nil && *n.value == c.value
	case "label()":
		return n.label == c.value
	}
	for _, ch := range n.children {
		if ch.label == c.child && ch.value != nil && *ch.value == c.value {
			return true
		}
	}
	return false
}

// exists keeps candidates having a child labelled child.
type exists struct {
	child string
}

func (e exists) filter(nodes []*node) []*node {
	var out []*node
	for _, n := range nodes {
		if n.child(e.child) != nil {
			out = append(out, n)
		}
	}
	return out
}

// parsePath parses an absolute path, or a path relative to /files.
func parsePath(expr string) ([]step, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("%w: empty path", errPath)
	}
	if !strings.HasPrefix(expr, "/") {
		expr = "/files/" + expr
	}

	var steps []step
	rest := expr
	for rest != "" {
		// rest starts with "/" here.
		rest = rest[1:]
		descendant := false
		if strings.HasPrefix(rest, "/") {
			descendant = true
			rest = rest[1:]
		}
		if rest == "" {
			if descendant {
				return nil, fmt.Errorf("%w: %q ends with //", errPath, expr)
			}
			break
		}

		st, remaining, err := parseStep(rest)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", errPath, expr, err)
		}
		st.descendant = descendant
		steps = append(steps, st)
		rest = remaining
	}
	return steps, nil
}

// parseStep reads a label and its predicates up to the next unescaped "/".
func parseStep(s string) (step, string, error) {
	var st step
	var name strings.Builder
	escaped := false
	i := 0

loop:
	for i < len(s) {
		ch := s[i]
		switch {
		case ch == '\\' && i+1 < len(s):
			name.WriteByte(s[i+1])
			escaped = true
			i += 2
			continue
		case ch == '/' || ch == '[':
			break loop
		}
		name.WriteByte(ch)
		i++
	}

	st.name = name.String()
	if st.name == "" {
		return st, "", errors.New("empty label")
	}
	st.wildcard = st.name == "*" && !escaped

	for i < len(s) && s[i] == '[' {
		end, err := closingBracket(s, i)
		if err != nil {
			return st, "", err
		}
		p, err := parsePredicate(strings.TrimSpace(s[i+1 : end]))
		if err != nil {
			return st, "", err
		}
		st.preds = append(st.preds, p)
		i = end + 1
	}

	if i < len(s) && s[i] != '/' {
		return st, "", fmt.Errorf("unexpected %q after predicate", s[i])
	}
	return st, s[i:], nil
}

// closingBracket finds the "]" closing the "[" at open, skipping quoted strings.
func closingBracket(s string, open int) (int, error) {
	var quote byte
	for i := open + 1; i < len(s); i++ {
		ch := s[i]
		switch {
		case quote != 0 && ch == '\\':
			i++
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == ']':
			return i, nil
		}
	}
	return 0, errors.New("unterminated predicate")
}

func parsePredicate(expr string) (predicate, error) {
	compact := strings.ReplaceAll(expr, " ", "")
	switch compact {
	case "last()":
		return last{}, nil
	case "last()+1":
		return appendPos{}, nil
	}
	if n, err := strconv.Atoi(compact); err == nil {
		if n < 1 {
			return nil, fmt.Errorf("position %d out of range", n)
		}
		return position(n), nil
	}

	if i := strings.Index(expr, "="); i > 0 {
		lhs := strings.TrimSpace(expr[:i])
		negate := strings.HasSuffix(lhs, "!")
		lhs = strings.TrimSpace(strings.TrimSuffix(lhs, "!"))
		value, err := unquote(strings.TrimSpace(expr[i+1:]))
		if err != nil {
			return nil, err
		}
		if lhs == "" || strings.ContainsAny(lhs, "[]/") {
			return nil, fmt.Errorf("unsupported predicate %q", expr)
		}
		return compare{child: lhs, negate: negate, value: value}, nil
	}

	if expr == "" || strings.ContainsAny(expr, "[]/()=\"'") {
		return nil, fmt.Errorf("unsupported predicate %q", expr)
	}
	return exists{child: expr}, nil
}

func unquote(s string) (string, error) {
	if len(s) < 2 || (s[0] != '"' && s[0] != '\'') || s[len(s)-1] != s[0] {
		return "", fmt.Errorf("expected a quoted string, got %s", s)
	}
	var b strings.Builder
	body := s[1 : len(s)-1]
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			i++
		}
		b.WriteByte(body[i])
	}
	return b.String(), nil
}

// eval returns the nodes matched by steps, in document order.
func eval(root *node, steps []step) []*node {
	current := []*node{root}
	for _, st := range steps {
		if st.descendant {
			current = descendantsOrSelf(current)
		}
		var next []*node
		for _, n := range current {
			var candidates []*node
			for _, c := range n.children {
				if st.matches(c) {
					candidates = append(candidates, c)
				}
			}
			for _, p := range st.preds {
				candidates = p.filter(candidates)
			}
			next = append(next, candidates...)
		}
		current = next
		if len(current) == 0 {
			return nil
		}
	}
	return documentOrder(root, current)
}

func descendantsOrSelf(nodes []*node) []*node {
	seen := make(map[*node]bool)
	var out []*node
	var walk func(*node)
	walk = func(n *node) {
		if seen[n] {
			return
		}
		seen[n] = true
		out = append(out, n)
		for _, c := range n.children {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return out
}

// documentOrder sorts nodes by a pre-order walk from root and drops duplicates.
func documentOrder(root *node, nodes []*node) []*node {
	if len(nodes) < 2 {
		return nodes
	}
	index := make(map[*node]int)
	i := 0
	var walk func(*node)
	walk = func(n *node) {
		index[n] = i
		i++
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(root)

	slices.SortStableFunc(nodes, func(a, b *node) int { return index[a] - index[b] })
	return slices.Compact(nodes)
}
