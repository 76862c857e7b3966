// ABOUTME: Graphviz rendering of the contact network
// ABOUTME: Emits xdot source that dot/neato can lay out
package viz

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
)

// Render draws the network as xdot source.
func Render(ctx context.Context, n Network) (string, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer gv.Close()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer graph.Close()

	graph.SetLayout("neato")
	graph.SetRankDir(cgraph.LRRank)
	graph.SetLabel("Contact Network")

	nodes := make(map[string]*cgraph.Node, len(n.Contacts))
	for _, c := range n.Contacts {
		node, err := graph.CreateNodeByName(c.ID)
		if err != nil {
			return "", fmt.Errorf("failed to create node for %s: %w", c.Name, err)
		}
		label := c.Name
		if c.RelationshipType != "" {
			label = fmt.Sprintf("%s\n(%s)", c.Name, c.RelationshipType)
		}
		node.SetLabel(label)
		node.SetShape("ellipse")
		nodes[c.ID] = node
	}

	for _, e := range n.Edges {
		edge, err := graph.CreateEdgeByName("", nodes[e.A], nodes[e.B])
		if err != nil {
			return "", fmt.Errorf("failed to create edge: %w", err)
		}
		edge.SetDir("none")
		edge.SetLabel(edgeLabel(e))
		if e.Interactions == 0 {
			edge.SetStyle("dashed")
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}

func edgeLabel(e Edge) string {
	var parts []string
	if e.Interactions > 0 {
		parts = append(parts, plural(e.Interactions, "interaction"))
	}
	if e.Topics > 0 {
		parts = append(parts, plural(e.Topics, "topic"))
	}
	return strings.Join(parts, ", ")
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
