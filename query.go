// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spoke

import "sort"

// Query represents a step in a graph query.
type Query struct {
	g *Graph

	nodes []*Node
}

// Query returns a query of the receiver starting from the given nodes.
// Queries may not be mixed between distinct graphs.
func (g *Graph) Query(from ...*Node) Query {
	return Query{g: g, nodes: from}
}

// Out returns a query holding nodes reachable out from the receiver's
// starting nodes via relationships that satisfy fn.
func (q Query) Out(fn func(r *Relationship) bool) Query {
	r := Query{g: q.g}
	for _, s := range q.nodes {
		it := q.g.From(s.ID())
		for it.Next() {
			if ConnectedByAny(q.g.Edge(s.ID(), it.Node().ID()), fn) {
				r.nodes = append(r.nodes, it.Node().(*Node))
			}
		}
	}
	return r
}

// In returns a query holding nodes reachable in from the receiver's
// starting nodes via relationships that satisfy fn.
func (q Query) In(fn func(r *Relationship) bool) Query {
	r := Query{g: q.g}
	for _, s := range q.nodes {
		it := q.g.To(s.ID())
		for it.Next() {
			if ConnectedByAny(q.g.Edge(it.Node().ID(), s.ID()), fn) {
				r.nodes = append(r.nodes, it.Node().(*Node))
			}
		}
	}
	return r
}

// Both returns a query holding nodes adjacent to the receiver's starting
// nodes in either direction via relationships that satisfy fn.
func (q Query) Both(fn func(r *Relationship) bool) Query {
	return q.Out(fn).Or(q.In(fn))
}

// And returns a query that holds the conjunction of q and p.
func (q Query) And(p Query) Query {
	if q.g != p.g {
		panic("spoke: binary query operation parameters from distinct graphs")
	}
	sort.Sort(byID(q.nodes))
	sort.Sort(byID(p.nodes))
	r := Query{g: q.g}
	var i, j int
	for i < len(q.nodes) && j < len(p.nodes) {
		qi := q.nodes[i]
		pj := p.nodes[j]
		switch {
		case qi.ID() < pj.ID():
			i++
		case pj.ID() < qi.ID():
			j++
		default:
			r.nodes = append(r.nodes, qi)
			i++
			j++
		}
	}
	return r
}

// Or returns a query that holds the disjunction of q and p.
func (q Query) Or(p Query) Query {
	if q.g != p.g {
		panic("spoke: binary query operation parameters from distinct graphs")
	}
	sort.Sort(byID(q.nodes))
	sort.Sort(byID(p.nodes))
	r := Query{g: q.g}
	add := func(n *Node) {
		if len(r.nodes) == 0 || r.nodes[len(r.nodes)-1].UID != n.UID {
			r.nodes = append(r.nodes, n)
		}
	}
	var i, j int
	for i < len(q.nodes) && j < len(p.nodes) {
		qi := q.nodes[i]
		pj := p.nodes[j]
		switch {
		case qi.ID() < pj.ID():
			add(qi)
			i++
		case pj.ID() < qi.ID():
			add(pj)
			j++
		default:
			add(qi)
			i++
			j++
		}
	}
	for _, n := range q.nodes[i:] {
		add(n)
	}
	for _, n := range p.nodes[j:] {
		add(n)
	}
	return r
}

// Not returns a query that holds q less p.
func (q Query) Not(p Query) Query {
	if q.g != p.g {
		panic("spoke: binary query operation parameters from distinct graphs")
	}
	sort.Sort(byID(q.nodes))
	sort.Sort(byID(p.nodes))
	r := Query{g: q.g}
	var i, j int
	for i < len(q.nodes) && j < len(p.nodes) {
		qi := q.nodes[i]
		pj := p.nodes[j]
		switch {
		case qi.ID() < pj.ID():
			r.nodes = append(r.nodes, qi)
			i++
		case pj.ID() < qi.ID():
			j++
		default:
			i++
		}
	}
	r.nodes = append(r.nodes, q.nodes[i:]...)
	return r
}

// Unique returns a copy of the receiver that contains only one instance
// of each node.
func (q Query) Unique() Query {
	sort.Sort(byID(q.nodes))
	r := Query{g: q.g}
	for i, n := range q.nodes {
		if i == 0 || n.UID != q.nodes[i-1].UID {
			r.nodes = append(r.nodes, n)
		}
	}
	return r
}

// Result returns the nodes held by the query.
func (q Query) Result() []*Node {
	return q.nodes
}

type byID []*Node

func (n byID) Len() int           { return len(n) }
func (n byID) Less(i, j int) bool { return n[i].ID() < n[j].ID() }
func (n byID) Swap(i, j int)      { n[i], n[j] = n[j], n[i] }
