package lens

import (
	"fmt"
	"strings"

	"github.com/aretw0/augtree/pkg/domain"
)

// Simplevars handles "key = value" files. Each assignment becomes a node
// labelled with the key.
type Simplevars struct{}

func (Simplevars) Name() string { return "Simplevars" }

func (s Simplevars) Get(content []byte) ([]domain.TreeNode, error) {
	var nodes []domain.TreeNode
	for i, line := range lines(content) {
		if text, ok := comment(line); ok {
			nodes = append(nodes, commentNode(text))
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || !word(key) {
			return nil, &Error{Lens: s.Name(), Line: i + 1, Message: "expected key = value"}
		}
		nodes = append(nodes, domain.TreeNode{Label: key, Value: domain.StringPtr(strings.TrimSpace(val))})
	}
	return nodes, nil
}

func (s Simplevars) Put(nodes []domain.TreeNode) ([]byte, error) {
	var b strings.Builder
	for _, n := range nodes {
		if n.Label == commentLabel {
			b.WriteString(renderComment(n))
			b.WriteByte('\n')
			continue
		}
		switch {
		case len(n.Children) > 0:
			return nil, &Error{Lens: s.Name(), Message: fmt.Sprintf("%s: nested nodes are not supported", n.Label)}
		case n.Value == nil:
			return nil, &Error{Lens: s.Name(), Message: fmt.Sprintf("%s: missing value", n.Label)}
		case strings.ContainsAny(n.Label, "= \t"):
			return nil, &Error{Lens: s.Name(), Message: fmt.Sprintf("invalid key %q", n.Label)}
		case strings.Contains(*n.Value, "\n"):
			return nil, &Error{Lens: s.Name(), Message: fmt.Sprintf("%s: value spans several lines", n.Label)}
		}
		fmt.Fprintf(&b, "%s = %s\n", n.Label, *n.Value)
	}
	return []byte(b.String()), nil
}
