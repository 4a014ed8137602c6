package graph

import "strings"

// ToMermaid renders the file-level depends_on structure as a Mermaid
// diagram, capped at maxNodes/maxEdges (0 means no limit).
func (g *Graph) ToMermaid(maxNodes, maxEdges int) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	included := make(map[string]bool)
	nodeCount := 0
	for _, n := range g.FileNodes() {
		if maxNodes > 0 && nodeCount >= maxNodes {
			break
		}
		included[n.Key] = true
		nodeCount++
		sb.WriteString("    " + sanitizeMermaidID(n.Key) + "[\"" + escapeMermaidLabel(n.Attributes.Path) + "\"]\n")
	}

	edgeCount := 0
	seen := make(map[string]bool)
	for _, e := range g.Edges() {
		if e.Relation != RelationDependsOn {
			continue
		}
		if !included[e.Source] || !included[e.Target] {
			continue
		}
		pair := e.Source + "\x00" + e.Target
		if seen[pair] {
			continue
		}
		seen[pair] = true
		if maxEdges > 0 && edgeCount >= maxEdges {
			break
		}
		edgeCount++
		sb.WriteString("    " + sanitizeMermaidID(e.Source) + " --> " + sanitizeMermaidID(e.Target) + "\n")
	}

	return sb.String()
}

// sanitizeMermaidID makes a node key safe for Mermaid identifiers.
func sanitizeMermaidID(id string) string {
	if id == "" {
		return "empty"
	}
	out := make([]byte, 0, len(id))
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			out = append(out, c)
		} else {
			out = append(out, '_')
		}
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = append([]byte{'n'}, out...)
	}
	return string(out)
}

// escapeMermaidLabel escapes label text for Mermaid node labels.
func escapeMermaidLabel(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"\"", "&quot;",
		"<", "&lt;",
		">", "&gt;",
		"|", "&#124;",
		"[", "&#91;",
		"]", "&#93;",
	)
	return r.Replace(s)
}
