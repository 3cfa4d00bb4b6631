package lens

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/aretw0/augtree/pkg/domain"
)

// Keywords whose values are lists. Each item becomes a numbered child.
var (
	sshdSpaceLists = []string{"AcceptEnv", "AllowGroups", "AllowUsers", "DenyGroups", "DenyUsers"}
	sshdCommaLists = []string{"Ciphers", "KexAlgorithms", "MACs"}
)

// Sshd handles sshd_config. Plain keywords map to valued nodes; list
// keywords get numbered children; Match blocks become a Match node holding a
// Condition and a Settings subtree.
type Sshd struct{}

func (Sshd) Name() string { return "Sshd" }

func (s Sshd) Get(content []byte) ([]domain.TreeNode, error) {
	var nodes []domain.TreeNode
	// match points at the open Match block, if any.
	var match *domain.TreeNode

	add := func(n domain.TreeNode) {
		if match != nil {
			settings := &match.Children[1]
			settings.Children = append(settings.Children, n)
			return
		}
		nodes = append(nodes, n)
	}

	flush := func() {
		if match != nil {
			nodes = append(nodes, *match)
			match = nil
		}
	}

	for i, line := range lines(content) {
		if text, ok := comment(line); ok {
			add(commentNode(text))
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		key, rest := splitKeyword(line)
		if rest == "" {
			return nil, &Error{Lens: s.Name(), Line: i + 1, Message: fmt.Sprintf("keyword %q has no value", key)}
		}

		if strings.EqualFold(key, "Match") {
			flush()
			cond, err := s.condition(rest)
			if err != nil {
				return nil, &Error{Lens: s.Name(), Line: i + 1, Message: err.Error()}
			}
			match = &domain.TreeNode{Label: "Match", Children: []domain.TreeNode{cond, {Label: "Settings"}}}
			continue
		}
		add(s.setting(key, rest))
	}
	flush()
	return nodes, nil
}

func splitKeyword(line string) (string, string) {
	line = strings.TrimSpace(line)
	i := strings.IndexAny(line, " \t=")
	if i < 0 {
		return line, ""
	}
	rest := strings.TrimLeft(line[i:], " \t")
	rest = strings.TrimPrefix(rest, "=")
	return line[:i], strings.TrimSpace(rest)
}

func (Sshd) condition(rest string) (domain.TreeNode, error) {
	fields := strings.Fields(rest)
	if len(fields)%2 != 0 {
		return domain.TreeNode{}, fmt.Errorf("match criteria must come in pairs")
	}
	cond := domain.TreeNode{Label: "Condition"}
	for j := 0; j < len(fields); j += 2 {
		cond.Children = append(cond.Children, domain.TreeNode{Label: fields[j], Value: domain.StringPtr(fields[j+1])})
	}
	return cond, nil
}

func (Sshd) setting(key, rest string) domain.TreeNode {
	var items []string
	switch {
	case slices.Contains(sshdSpaceLists, key):
		items = strings.Fields(rest)
	case slices.Contains(sshdCommaLists, key):
		items = strings.Split(rest, ",")
	default:
		return domain.TreeNode{Label: key, Value: domain.StringPtr(rest)}
	}
	n := domain.TreeNode{Label: key}
	for j, item := range items {
		n.Children = append(n.Children, domain.TreeNode{Label: strconv.Itoa(j + 1), Value: domain.StringPtr(strings.TrimSpace(item))})
	}
	return n
}

func (s Sshd) Put(nodes []domain.TreeNode) ([]byte, error) {
	var b strings.Builder
	for _, n := range nodes {
		if n.Label == "Match" {
			if err := s.putMatch(&b, n); err != nil {
				return nil, err
			}
			continue
		}
		line, err := s.render(n)
		if err != nil {
			return nil, err
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return []byte(b.String()), nil
}

func (s Sshd) putMatch(b *strings.Builder, n domain.TreeNode) error {
	var cond, settings *domain.TreeNode
	for i := range n.Children {
		switch n.Children[i].Label {
		case "Condition":
			cond = &n.Children[i]
		case "Settings":
			settings = &n.Children[i]
		default:
			return &Error{Lens: s.Name(), Message: fmt.Sprintf("Match: unexpected node %q", n.Children[i].Label)}
		}
	}
	if cond == nil || len(cond.Children) == 0 {
		return &Error{Lens: s.Name(), Message: "Match: missing Condition"}
	}

	criteria := make([]string, 0, 2*len(cond.Children))
	for _, c := range cond.Children {
		if !word(value(c)) {
			return &Error{Lens: s.Name(), Message: fmt.Sprintf("Match: invalid value for %s", c.Label)}
		}
		criteria = append(criteria, c.Label, value(c))
	}
	b.WriteString("Match " + strings.Join(criteria, " ") + "\n")

	if settings == nil {
		return nil
	}
	for _, c := range settings.Children {
		if c.Label == "Match" {
			return &Error{Lens: s.Name(), Message: "Match blocks cannot be nested"}
		}
		line, err := s.render(c)
		if err != nil {
			return err
		}
		b.WriteString("    " + line + "\n")
	}
	return nil
}

func (s Sshd) render(n domain.TreeNode) (string, error) {
	if n.Label == commentLabel {
		return renderComment(n), nil
	}

	sep := ""
	switch {
	case slices.Contains(sshdSpaceLists, n.Label):
		sep = " "
	case slices.Contains(sshdCommaLists, n.Label):
		sep = ","
	}

	if sep == "" {
		if len(n.Children) > 0 {
			return "", &Error{Lens: s.Name(), Message: fmt.Sprintf("%s: keyword does not take a list", n.Label)}
		}
		if value(n) == "" {
			return "", &Error{Lens: s.Name(), Message: fmt.Sprintf("%s: missing value", n.Label)}
		}
		return n.Label + " " + value(n), nil
	}

	if n.Value != nil {
		return "", &Error{Lens: s.Name(), Message: fmt.Sprintf("%s: list keywords keep their items in numbered children", n.Label)}
	}
	items := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		if !word(value(c)) {
			return "", &Error{Lens: s.Name(), Message: fmt.Sprintf("%s: invalid item %q", n.Label, value(c))}
		}
		items = append(items, value(c))
	}
	if len(items) == 0 {
		return "", &Error{Lens: s.Name(), Message: fmt.Sprintf("%s: empty list", n.Label)}
	}
	return n.Label + " " + strings.Join(items, sep), nil
}
