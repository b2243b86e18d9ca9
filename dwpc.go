// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spoke

import (
	"fmt"
	"math"
	"sort"

	"github.com/kortschak/spoke/cypher"
	"gonum.org/v1/gonum/graph"
)

// PathScore is the degree-weighted path count of the metapath instances
// grouped at a node.
type PathScore struct {
	Node *Node
	PC   int
	DWPC float64
}

// DWPC computes degree-weighted path counts over the receiver for paths
// conforming to mp that start at the given source nodes, grouped by the
// metapath node with the variable groupBy. The weight of a path is the
// product over its relationships of the degrees of both relationship end
// nodes on the relationship type, each raised to exp. If exp is zero,
// cypher.DefaultExponent is used. Paths do not reuse relationships.
//
// Degrees are taken from the receiver, so scores match a database DWPC
// query only when the graph holds the complete neighborhood of the paths.
// The returned scores are sorted by descending DWPC.
func (g *Graph) DWPC(mp cypher.Metapath, sources []*Node, groupBy string, exp float64) ([]PathScore, error) {
	if len(mp.Rels) == 0 || len(mp.Nodes) != len(mp.Rels)+1 {
		return nil, fmt.Errorf("spoke: malformed metapath: %d nodes and %d relationships", len(mp.Nodes), len(mp.Rels))
	}
	group := mp.Index(groupBy)
	if group < 0 {
		return nil, fmt.Errorf("spoke: group node %q not in metapath %s", groupBy, mp)
	}
	if exp == 0 {
		exp = cypher.DefaultExponent
	}

	scores := make(map[*Node]*PathScore)
	path := make([]*Node, len(mp.Nodes))
	used := make(map[int64]bool)
	var walk func(depth int, weight float64)
	walk = func(depth int, weight float64) {
		if depth == len(mp.Rels) {
			n := path[group]
			s, ok := scores[n]
			if !ok {
				s = &PathScore{Node: n}
				scores[n] = s
			}
			s.PC++
			s.DWPC += weight
			return
		}
		u := path[depth]
		rs := mp.Rels[depth]
		next := mp.Nodes[depth+1].Label
		for _, st := range g.incident(u, rs) {
			r, v := st.rel, st.node
			if used[r.UID] || !v.HasLabel(next) {
				continue
			}
			w := math.Pow(float64(g.Degree(u, rs.Type)), exp) *
				math.Pow(float64(g.Degree(v, rs.Type)), exp)
			used[r.UID] = true
			path[depth+1] = v
			walk(depth+1, weight*w)
			used[r.UID] = false
		}
	}

	for _, s := range sources {
		n, ok := g.nodes[s.UID].(*Node)
		if !ok || !n.HasLabel(mp.Nodes[0].Label) {
			continue
		}
		path[0] = n
		walk(0, 1)
	}

	ranked := make([]PathScore, 0, len(scores))
	for _, s := range scores {
		ranked = append(ranked, *s)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].DWPC != ranked[j].DWPC {
			return ranked[i].DWPC > ranked[j].DWPC
		}
		return ranked[i].Node.UID < ranked[j].Node.UID
	})
	return ranked, nil
}

// step is a relationship and the node it leads to.
type step struct {
	rel  *Relationship
	node *Node
}

// incident returns the relationships of the step type incident on u in the
// step direction, paired with the node at their other end.
func (g *Graph) incident(u *Node, rs cypher.RelStep) []step {
	var steps []step
	collect := func(adj map[int64]map[int64]graph.Line, out bool) {
		for _, lines := range adj {
			for _, l := range lines {
				r := l.(*Relationship)
				if r.Type != rs.Type {
					continue
				}
				v := r.End
				if !out {
					v = r.Start
				}
				steps = append(steps, step{rel: r, node: v})
			}
		}
	}
	switch rs.Dir {
	case cypher.Forward:
		collect(g.from[u.UID], true)
	case cypher.Backward:
		collect(g.to[u.UID], false)
	default:
		collect(g.from[u.UID], true)
		collect(g.to[u.UID], false)
	}
	return steps
}
