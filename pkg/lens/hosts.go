package lens

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/augtree/pkg/domain"
)

// Hosts handles /etc/hosts. Each entry becomes a numbered node with the
// children ipaddr, canonical and zero or more alias.
type Hosts struct{}

func (Hosts) Name() string { return "Hosts" }

func (h Hosts) Get(content []byte) ([]domain.TreeNode, error) {
	var nodes []domain.TreeNode
	seq := 0
	for i, line := range lines(content) {
		if text, ok := comment(line); ok {
			nodes = append(nodes, commentNode(text))
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Fields(line)
		var trailing string
		for j, f := range fields {
			if strings.HasPrefix(f, "#") {
				trailing = strings.TrimSpace(strings.TrimPrefix(strings.Join(fields[j:], " "), "#"))
				fields = fields[:j]
				break
			}
		}
		if len(fields) < 2 {
			return nil, &Error{Lens: h.Name(), Line: i + 1, Message: "expected an address followed by a canonical name"}
		}

		seq++
		entry := domain.TreeNode{Label: strconv.Itoa(seq)}
		entry.Children = append(entry.Children,
			domain.TreeNode{Label: "ipaddr", Value: domain.StringPtr(fields[0])},
			domain.TreeNode{Label: "canonical", Value: domain.StringPtr(fields[1])},
		)
		for _, alias := range fields[2:] {
			entry.Children = append(entry.Children, domain.TreeNode{Label: "alias", Value: domain.StringPtr(alias)})
		}
		if trailing != "" {
			entry.Children = append(entry.Children, commentNode(trailing))
		}
		nodes = append(nodes, entry)
	}
	return nodes, nil
}

func (h Hosts) Put(nodes []domain.TreeNode) ([]byte, error) {
	var b strings.Builder
	for _, n := range nodes {
		if n.Label == commentLabel {
			b.WriteString(renderComment(n))
			b.WriteByte('\n')
			continue
		}
		line, err := h.entry(n)
		if err != nil {
			return nil, err
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return []byte(b.String()), nil
}

func (h Hosts) entry(n domain.TreeNode) (string, error) {
	var ipaddr, canonical, note string
	var aliases []string
	for _, c := range n.Children {
		v := value(c)
		switch c.Label {
		case "ipaddr":
			ipaddr = v
		case "canonical":
			canonical = v
		case "alias":
			if !word(v) {
				return "", h.invalid(n, "alias", v)
			}
			aliases = append(aliases, v)
		case commentLabel:
			note = v
		default:
			return "", &Error{Lens: h.Name(), Message: fmt.Sprintf("entry %s: unexpected node %q", n.Label, c.Label)}
		}
	}
	if !word(ipaddr) {
		return "", h.invalid(n, "ipaddr", ipaddr)
	}
	if !word(canonical) {
		return "", h.invalid(n, "canonical", canonical)
	}

	line := ipaddr + "\t" + strings.Join(append([]string{canonical}, aliases...), " ")
	if note != "" {
		line += "\t# " + note
	}
	return line, nil
}

func (h Hosts) invalid(n domain.TreeNode, field, v string) error {
	if v == "" {
		return &Error{Lens: h.Name(), Message: fmt.Sprintf("entry %s: missing %s", n.Label, field)}
	}
	return &Error{Lens: h.Name(), Message: fmt.Sprintf("entry %s: invalid %s %q", n.Label, field, v)}
}
