package domain

import "fmt"

// NodeType classifies a graph node.
type NodeType string

const (
	NodeClaim    NodeType = "claim"
	NodeSearch   NodeType = "search"
	NodeEvidence NodeType = "evidence"
	NodeCategory NodeType = "category"
)

// GraphNode is a single node in the evidence graph.
type GraphNode struct {
	ID         string   `json:"id"`
	Label      string   `json:"label"`
	Type       NodeType `json:"type"`
	URL        string   `json:"url,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`
}

// GraphEdge connects two nodes by id.
type GraphEdge struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
}

// Graph is the derived claim-to-evidence visualization structure.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// Validate checks the graph's structural invariants: every edge endpoint
// references an existing node id, and the claim node is a singleton.
func (g Graph) Validate() error {
	ids := make(map[string]bool, len(g.Nodes))
	claims := 0
	for _, n := range g.Nodes {
		if ids[n.ID] {
			return fmt.Errorf("duplicate node id %q", n.ID)
		}
		ids[n.ID] = true
		if n.Type == NodeClaim {
			claims++
		}
	}
	if claims != 1 {
		return fmt.Errorf("graph must contain exactly one claim node, found %d", claims)
	}
	for _, e := range g.Edges {
		if !ids[e.Source] {
			return fmt.Errorf("edge %s->%s references unknown source node", e.Source, e.Target)
		}
		if !ids[e.Target] {
			return fmt.Errorf("edge %s->%s references unknown target node", e.Source, e.Target)
		}
	}
	return nil
}
