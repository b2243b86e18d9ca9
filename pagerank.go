// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spoke

import (
	"sort"

	"gonum.org/v1/gonum/graph/network"
)

// Rank is a node and its score.
type Rank struct {
	Node  *Node
	Score float64
}

// PageRank returns the PageRank of the nodes in the graph using the
// damping factor damp and terminating when the L2 norm of the change
// in rank is below tol. Parallel relationships between a pair of nodes
// count once.
func (g *Graph) PageRank(damp, tol float64) map[*Node]float64 {
	if len(g.nodes) == 0 {
		return nil
	}
	pr := network.PageRank(g, damp, tol)
	ranks := make(map[*Node]float64, len(pr))
	for id, r := range pr {
		ranks[g.nodes[id].(*Node)] = r
	}
	return ranks
}

// Ranked returns the ranks in descending score order, breaking ties
// by node UID.
func Ranked(ranks map[*Node]float64) []Rank {
	r := make([]Rank, 0, len(ranks))
	for n, s := range ranks {
		r = append(r, Rank{Node: n, Score: s})
	}
	sort.Slice(r, func(i, j int) bool {
		if r[i].Score != r[j].Score {
			return r[i].Score > r[j].Score
		}
		return r[i].Node.UID < r[j].Node.UID
	})
	return r
}
