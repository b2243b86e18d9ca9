// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Copyright ©2014 The Gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package spoke provides an in-memory representation of SPOKE knowledge
// graph query results, with local traversal and scoring helpers.
package spoke

import (
	"fmt"
	"sort"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/multi"
	"gonum.org/v1/gonum/graph/set/uid"
	"gonum.org/v1/gonum/graph/traverse"
)

// NoLabel is the label reported for nodes without labels.
const NoLabel = "None"

// Node is a node returned by a graph database query.
type Node struct {
	// UID is the graph-local ID of the node. A zero
	// UID marks a node not yet added to a Graph.
	UID int64

	// ElementID is the database element ID.
	ElementID string

	Labels []string
	Props  map[string]interface{}
}

// ID returns the graph-local ID of the node.
func (n *Node) ID() int64 { return n.UID }

// Label returns the first label of the node or NoLabel.
func (n *Node) Label() string {
	if len(n.Labels) == 0 {
		return NoLabel
	}
	return n.Labels[0]
}

// HasLabel returns whether the node carries the given label.
func (n *Node) HasLabel(label string) bool {
	return slices.Contains(n.Labels, label)
}

// Property returns the named property of the node.
func (n *Node) Property(key string) (v interface{}, ok bool) {
	v, ok = n.Props[key]
	return v, ok
}

// StringProperty returns the named property formatted as a string, or
// the empty string if the property is not set.
func (n *Node) StringProperty(key string) string {
	v, ok := n.Props[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Identifier returns the SPOKE identifier property of the node.
func (n *Node) Identifier() string { return n.StringProperty("identifier") }

// Name returns the name property of the node.
func (n *Node) Name() string { return n.StringProperty("name") }

// merge fills the receiver with labels and properties held by o
// that it does not already have.
func (n *Node) merge(o *Node) {
	if n == o {
		return
	}
	for _, l := range o.Labels {
		if !n.HasLabel(l) {
			n.Labels = append(n.Labels, l)
		}
	}
	if len(o.Props) != 0 && n.Props == nil {
		n.Props = make(map[string]interface{}, len(o.Props))
	}
	for k, v := range o.Props {
		if _, ok := n.Props[k]; !ok {
			n.Props[k] = v
		}
	}
}

// Relationship is a typed relationship returned by a graph database query.
type Relationship struct {
	// UID is the graph-local ID of the relationship.
	UID int64

	// ElementID is the database element ID.
	ElementID string

	Type  string
	Start *Node
	End   *Node
	Props map[string]interface{}
}

// From returns the start node of the relationship.
func (r *Relationship) From() graph.Node { return r.Start }

// To returns the end node of the relationship.
func (r *Relationship) To() graph.Node { return r.End }

// ID returns the graph-local ID of the relationship.
func (r *Relationship) ID() int64 { return r.UID }

// ReversedLine returns a copy of the relationship with the end
// points swapped.
func (r *Relationship) ReversedLine() graph.Line {
	rev := *r
	rev.Start, rev.End = r.End, r.Start
	return &rev
}

// Graph implements a query result graph. It is a directed multigraph
// with nodes and relationships keyed by their database element IDs.
type Graph struct {
	nodes map[int64]graph.Node
	from  map[int64]map[int64]map[int64]graph.Line
	to    map[int64]map[int64]map[int64]graph.Line
	types map[string]map[*Relationship]bool

	nodeIDs map[string]int64
	relIDs  map[string]*Relationship
	ids     *uid.Set
}

// NewGraph returns a new empty Graph.
func NewGraph() *Graph {
	g := &Graph{
		nodes: make(map[int64]graph.Node),
		from:  make(map[int64]map[int64]map[int64]graph.Line),
		to:    make(map[int64]map[int64]map[int64]graph.Line),
		types: make(map[string]map[*Relationship]bool),

		nodeIDs: make(map[string]int64),
		relIDs:  make(map[string]*Relationship),
		ids:     uid.NewSet(),
	}
	// Zero is the unassigned UID.
	g.ids.Use(0)
	return g
}

// AddNode adds n to the graph and returns the node held by the graph.
// If a node with the same element ID already exists, the labels and
// properties of n that it lacks are merged into it and the existing node
// is returned. A non-zero UID must either be unused or belong to the same
// element, otherwise AddNode panics. If the UID of n is zero it will be
// set to a value consistent with the rest of the graph on return.
func (g *Graph) AddNode(n *Node) *Node {
	if n.UID != 0 {
		if existing, ok := g.nodes[n.UID]; ok {
			e := existing.(*Node)
			if e != n && e.ElementID != n.ElementID {
				panic(fmt.Sprintf("spoke: node ID collision: %d", n.UID))
			}
			e.merge(n)
			return e
		}
	}
	if n.ElementID != "" {
		if id, ok := g.nodeIDs[n.ElementID]; ok {
			if n.UID != 0 && n.UID != id {
				panic(fmt.Sprintf("spoke: element ID collision: element:%s new ID:%d old ID:%d", n.ElementID, n.UID, id))
			}
			e := g.nodes[id].(*Node)
			e.merge(n)
			return e
		}
	}
	if n.UID == 0 {
		n.UID = g.ids.NewID()
	}
	g.ids.Use(n.UID)
	g.nodes[n.UID] = n
	if n.ElementID != "" {
		g.nodeIDs[n.ElementID] = n.UID
	}
	return n
}

// AddRelationship adds r and its end nodes to the graph and returns the
// relationship held by the graph. Relationships are deduplicated by element
// ID. The Start and End fields of r are replaced by the nodes held by the
// graph. AddRelationship panics if r has no type or is missing an end node.
func (g *Graph) AddRelationship(r *Relationship) *Relationship {
	if r.Type == "" {
		panic("spoke: relationship has no type")
	}
	if r.Start == nil || r.End == nil {
		panic(fmt.Sprintf("spoke: relationship %s is missing an end node", r.Type))
	}
	if r.ElementID != "" {
		if existing, ok := g.relIDs[r.ElementID]; ok {
			return existing
		}
	}

	r.Start = g.AddNode(r.Start)
	r.End = g.AddNode(r.End)
	if r.UID == 0 {
		r.UID = g.ids.NewID()
	}

	rels, ok := g.types[r.Type]
	if !ok {
		rels = make(map[*Relationship]bool)
		g.types[r.Type] = rels
	}
	rels[r] = true
	if r.ElementID != "" {
		g.relIDs[r.ElementID] = r
	}
	g.setLine(r)
	return r
}

// AllRelationships returns an iterator of the relationships that make up
// the graph.
func (g *Graph) AllRelationships() *Relationships {
	return &Relationships{eit: g.Edges()}
}

// ClosestCommonAncestor returns the node that is the closest common
// ancestor of a and b in the hierarchy formed by relationships of type
// isA directed from child to parent, if it exists in g.
func (g *Graph) ClosestCommonAncestor(a, b *Node, isA string) (r *Node, ok bool) {
	if a == b {
		return a, true
	}

	seen := make(map[int64]bool)
	var bf traverse.BreadthFirst
	bf.Traverse = func(e graph.Edge) bool {
		return ConnectedByAny(e, func(r *Relationship) bool {
			return r.Type == isA
		})
	}
	bf.Walk(g, a, func(n graph.Node, d int) bool {
		seen[n.ID()] = true
		return false
	})
	bf.Reset()
	bf.Walk(g, b, func(n graph.Node, d int) bool {
		if seen[n.ID()] {
			r = n.(*Node)
			ok = true
			return true
		}
		return false
	})
	return r, ok
}

// DescendantsOf returns all of the descendants of the given node in the
// hierarchy formed by relationships of type isA.
func (g *Graph) DescendantsOf(t *Node, isA string) []Descendant {
	var desc []Descendant
	var bf traverse.BreadthFirst
	bf.Traverse = func(e graph.Edge) bool {
		return ConnectedByAny(e, func(r *Relationship) bool {
			return r.Type == isA
		})
	}
	bf.Walk(reverse{g}, t, func(n graph.Node, d int) bool {
		if n.ID() != t.ID() {
			desc = append(desc, Descendant{Node: n.(*Node), Depth: d})
		}
		return false
	})
	return desc
}

// reverse implements the traverse.Graph reversing the direction of edges.
type reverse struct {
	*Graph
}

func (g reverse) From(id int64) graph.Nodes      { return g.Graph.To(id) }
func (g reverse) Edge(uid, vid int64) graph.Edge { return g.Graph.Edge(vid, uid) }

// Descendant represents a descendancy relationship.
type Descendant struct {
	Node  *Node
	Depth int
}

// Degree returns the number of relationships of the given type that
// are incident on n, ignoring direction.
func (g *Graph) Degree(n *Node, typ string) int {
	var d int
	for _, lines := range g.from[n.UID] {
		for _, l := range lines {
			if l.(*Relationship).Type == typ {
				d++
			}
		}
	}
	for _, lines := range g.to[n.UID] {
		for _, l := range lines {
			if l.(*Relationship).Type == typ {
				d++
			}
		}
	}
	return d
}

// Edge returns the edge from u to v if such an edge exists and nil otherwise.
// The node v must be directly reachable from u as defined by the From method.
// The returned graph.Edge is a multi.Edge if an edge exists.
func (g *Graph) Edge(uid, vid int64) graph.Edge {
	if len(g.from[uid][vid]) == 0 {
		return nil
	}
	return multi.Edge{F: g.Node(uid), T: g.Node(vid), Lines: g.Lines(uid, vid)}
}

// Edges returns all the edges in the graph. Each edge in the returned slice
// is a multi.Edge.
func (g *Graph) Edges() graph.Edges {
	if len(g.nodes) == 0 {
		return graph.Empty
	}
	var edges []graph.Edge
	for _, u := range g.nodes {
		for _, e := range g.from[u.ID()] {
			var lines []graph.Line
			for _, l := range e {
				lines = append(lines, l)
			}
			if len(lines) != 0 {
				edges = append(edges, multi.Edge{
					F:     g.Node(u.ID()),
					T:     g.Node(lines[0].To().ID()),
					Lines: iterator.NewOrderedLines(lines),
				})
			}
		}
	}
	if len(edges) == 0 {
		return graph.Empty
	}
	return iterator.NewOrderedEdges(edges)
}

// From returns all nodes in g that can be reached directly from n.
//
// The returned graph.Nodes is only valid until the next mutation of
// the receiver.
func (g *Graph) From(id int64) graph.Nodes {
	if len(g.from[id]) == 0 {
		return graph.Empty
	}
	return iterator.NewNodesByLines(g.nodes, g.from[id])
}

// HasEdgeBetween returns whether an edge exists between nodes x and y without
// considering direction.
func (g *Graph) HasEdgeBetween(xid, yid int64) bool {
	if _, ok := g.from[xid][yid]; ok {
		return true
	}
	_, ok := g.from[yid][xid]
	return ok
}

// HasEdgeFromTo returns whether an edge exists in the graph from u to v.
func (g *Graph) HasEdgeFromTo(uid, vid int64) bool {
	_, ok := g.from[uid][vid]
	return ok
}

// IsDescendantOf returns whether the query q is a descendant of a in the
// hierarchy formed by relationships of type isA and how many levels separate
// them if it is. If q is not a descendant of a, depth will be negative.
func (g *Graph) IsDescendantOf(a, q *Node, isA string) (yes bool, depth int) {
	depth = -1
	var bf traverse.BreadthFirst
	bf.Traverse = func(e graph.Edge) bool {
		return ConnectedByAny(e, func(r *Relationship) bool {
			return r.Type == isA
		})
	}
	bf.Walk(g, q, func(n graph.Node, d int) bool {
		if n.ID() == a.ID() {
			yes = true
			depth = d
			return true
		}
		return false
	})
	return yes, depth
}

// Lines returns the lines from u to v if such any such lines exists and nil otherwise.
// The node v must be directly reachable from u as defined by the From method.
func (g *Graph) Lines(uid, vid int64) graph.Lines {
	edge := g.from[uid][vid]
	if len(edge) == 0 {
		return graph.Empty
	}
	var lines []graph.Line
	for _, l := range edge {
		lines = append(lines, l)
	}
	return iterator.NewOrderedLines(lines)
}

// Node returns the node with the given ID if it exists in the graph,
// and nil otherwise.
func (g *Graph) Node(id int64) graph.Node {
	return g.nodes[id]
}

// NodeFor returns the node with the given database element ID.
func (g *Graph) NodeFor(elementID string) (n *Node, ok bool) {
	id, ok := g.nodeIDs[elementID]
	if !ok {
		return nil, false
	}
	return g.nodes[id].(*Node), true
}

// Nodes returns all the nodes in the graph.
//
// The returned graph.Nodes is only valid until the next mutation of
// the receiver.
func (g *Graph) Nodes() graph.Nodes {
	if len(g.nodes) == 0 {
		return graph.Empty
	}
	return iterator.NewNodes(g.nodes)
}

// NodesByLabel returns the nodes carrying the given label ordered by UID.
func (g *Graph) NodesByLabel(label string) []*Node {
	var nodes []*Node
	for _, n := range g.nodes {
		n := n.(*Node)
		if n.HasLabel(label) {
			nodes = append(nodes, n)
		}
	}
	sort.Sort(byID(nodes))
	return nodes
}

// RelationshipTypes returns the sorted relationship types used in the graph.
func (g *Graph) RelationshipTypes() []string {
	t := maps.Keys(g.types)
	slices.Sort(t)
	return t
}

// removeLine removes the line with the given end point and line IDs from
// the graph, leaving the terminal nodes. If the line does not exist it is
// a no-op.
func (g *Graph) removeLine(fid, tid, id int64) {
	if _, ok := g.nodes[fid]; !ok {
		return
	}
	if _, ok := g.nodes[tid]; !ok {
		return
	}

	delete(g.from[fid][tid], id)
	if len(g.from[fid][tid]) == 0 {
		delete(g.from[fid], tid)
	}
	delete(g.to[tid][fid], id)
	if len(g.to[tid][fid]) == 0 {
		delete(g.to[tid], fid)
	}

	g.ids.Release(id)
}

// RemoveRelationship removes r from the graph, leaving its end nodes. If
// the relationship does not exist in g it is a no-op.
func (g *Graph) RemoveRelationship(r *Relationship) {
	if !g.types[r.Type][r] {
		return
	}
	g.removeLine(r.Start.UID, r.End.UID, r.UID)
	rels := g.types[r.Type]
	delete(rels, r)
	if len(rels) == 0 {
		delete(g.types, r.Type)
	}
	if r.ElementID != "" {
		delete(g.relIDs, r.ElementID)
	}
}

// RemoveNode removes n and any relationships incident on n from the graph.
// If the node does not exist it is a no-op.
func (g *Graph) RemoveNode(n *Node) {
	if _, ok := g.nodes[n.UID]; !ok {
		return
	}

	var incident []*Relationship
	for _, lines := range g.from[n.UID] {
		for _, l := range lines {
			incident = append(incident, l.(*Relationship))
		}
	}
	for _, lines := range g.to[n.UID] {
		for _, l := range lines {
			incident = append(incident, l.(*Relationship))
		}
	}
	for _, r := range incident {
		g.RemoveRelationship(r)
	}

	delete(g.nodes, n.UID)
	delete(g.from, n.UID)
	delete(g.to, n.UID)
	if n.ElementID != "" {
		delete(g.nodeIDs, n.ElementID)
	}
	g.ids.Release(n.UID)
}

// Roots returns the roots of the hierarchy formed by relationships of type
// isA among nodes with the given label. A root is reached by following isA
// relationships until no further parent with the label exists.
func (g *Graph) Roots(label, isA string) []*Node {
	rootSet := make(map[*Node]bool)
	for _, t := range g.NodesByLabel(label) {
		var df traverse.DepthFirst
		df.Traverse = func(e graph.Edge) bool {
			return ConnectedByAny(e, func(r *Relationship) bool {
				return r.Type == isA && r.End.HasLabel(label)
			})
		}
		final := df.Walk(g, t, func(n graph.Node) bool {
			// If we can reach another parent, we are not done yet.
			more := g.Query(n.(*Node)).Out(func(r *Relationship) bool {
				return r.Type == isA && r.End.HasLabel(label)
			})
			return len(more.Result()) == 0
		})
		if final != nil {
			rootSet[final.(*Node)] = true
		}
	}

	roots := maps.Keys(rootSet)
	sort.Sort(byID(roots))
	return roots
}

// setLine adds l, a line from one node to another. The end nodes
// of the line must already be held by the graph.
func (g *Graph) setLine(l graph.Line) {
	var (
		fid = l.From().ID()
		tid = l.To().ID()
		lid = l.ID()
	)

	switch {
	case g.from[fid] == nil:
		g.from[fid] = map[int64]map[int64]graph.Line{tid: {lid: l}}
	case g.from[fid][tid] == nil:
		g.from[fid][tid] = map[int64]graph.Line{lid: l}
	default:
		g.from[fid][tid][lid] = l
	}
	switch {
	case g.to[tid] == nil:
		g.to[tid] = map[int64]map[int64]graph.Line{fid: {lid: l}}
	case g.to[tid][fid] == nil:
		g.to[tid][fid] = map[int64]graph.Line{lid: l}
	default:
		g.to[tid][fid][lid] = l
	}

	g.ids.Use(lid)
}

// Relationships returns an iterator of the relationships that connect the
// node u to the node v.
func (g *Graph) Relationships(uid, vid int64) *Relationships {
	return &Relationships{lit: g.Lines(uid, vid)}
}

// To returns all nodes in g that can reach directly to n.
//
// The returned graph.Nodes is only valid until the next mutation of
// the receiver.
func (g *Graph) To(id int64) graph.Nodes {
	if len(g.to[id]) == 0 {
		return graph.Empty
	}
	return iterator.NewNodesByLines(g.nodes, g.to[id])
}

// Relationships is a relationship iterator.
type Relationships struct {
	eit graph.Edges
	lit graph.Lines
}

// Next returns whether the iterator holds any additional relationships.
func (r *Relationships) Next() bool {
	if r.lit != nil && r.lit.Next() {
		return true
	}
	if r.eit == nil || !r.eit.Next() {
		return false
	}
	r.lit = r.eit.Edge().(multi.Edge).Lines
	return r.lit.Next()
}

// Relationship returns the current relationship.
func (r *Relationships) Relationship() *Relationship {
	return r.lit.Line().(*Relationship)
}

// ConnectedByAny is a helper function to for simplifying graph traversal
// conditions.
func ConnectedByAny(e graph.Edge, with func(*Relationship) bool) bool {
	it, ok := e.(multi.Edge)
	if !ok {
		return false
	}
	for it.Next() {
		r, ok := it.Line().(*Relationship)
		if !ok {
			continue
		}
		if with(r) {
			return true
		}
	}
	return false
}
