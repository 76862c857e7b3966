// ABOUTME: Contact network derived from shared interactions and topics
// ABOUTME: Pure data; graph.go turns a Network into graphviz output
package viz

import (
	"cmp"
	"slices"

	"github.com/harperreed/rapport/models"
)

// Edge links two contacts. A sorts before B.
type Edge struct {
	A, B         string
	Interactions int
	Topics       int
}

type Network struct {
	Contacts []models.Contact
	Edges    []Edge
}

// BuildNetwork links every pair of contacts that appear together on an
// interaction or share a topic. A non-empty focusID keeps only that
// contact and its direct neighbours.
func BuildNetwork(contacts []models.Contact, interactions []models.Interaction, topics []models.Topic, focusID string) Network {
	type pair struct{ a, b string }
	edges := make(map[pair]*Edge)

	link := func(ids []string, bump func(*Edge)) {
		ids = uniq(ids)
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				a, b := ids[i], ids[j]
				if b < a {
					a, b = b, a
				}
				e, ok := edges[pair{a, b}]
				if !ok {
					e = &Edge{A: a, B: b}
					edges[pair{a, b}] = e
				}
				bump(e)
			}
		}
	}

	for _, in := range interactions {
		link(in.ContactIDs, func(e *Edge) { e.Interactions++ })
	}
	for _, t := range topics {
		link(append([]string{t.ContactID}, t.ContactIDs...), func(e *Edge) { e.Topics++ })
	}

	known := make(map[string]bool, len(contacts))
	for _, c := range contacts {
		known[c.ID] = true
	}

	keep := make(map[string]bool)
	var out Network
	for _, e := range edges {
		if !known[e.A] || !known[e.B] {
			continue
		}
		if focusID != "" && e.A != focusID && e.B != focusID {
			continue
		}
		out.Edges = append(out.Edges, *e)
		keep[e.A], keep[e.B] = true, true
	}
	slices.SortFunc(out.Edges, func(x, y Edge) int {
		return cmp.Or(cmp.Compare(x.A, y.A), cmp.Compare(x.B, y.B))
	})

	for _, c := range contacts {
		if focusID == "" || c.ID == focusID || keep[c.ID] {
			out.Contacts = append(out.Contacts, c)
		}
	}
	return out
}

func uniq(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
