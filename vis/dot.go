// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vis

import (
	"fmt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/multi"
)

// MarshalDOT returns the DOT encoding of the view with the given graph
// name.
func (v *View) MarshalDOT(name string) ([]byte, error) {
	g := multi.NewDirectedGraph()
	nodes := make(map[int64]*dotNode, len(v.Nodes))
	for i := range v.Nodes {
		n := &dotNode{Node: &v.Nodes[i]}
		nodes[n.ID()] = n
		g.AddNode(n)
	}
	for i := range v.Edges {
		e := &v.Edges[i]
		from, ok := nodes[e.From]
		if !ok {
			return nil, fmt.Errorf("vis: edge %d from missing node %d", e.ID, e.From)
		}
		to, ok := nodes[e.To]
		if !ok {
			return nil, fmt.Errorf("vis: edge %d to missing node %d", e.ID, e.To)
		}
		g.SetLine(&dotLine{Edge: e, from: from, to: to})
	}
	return dot.MarshalMulti(g, name, "", "\t")
}

type dotNode struct {
	*Node
}

func (n *dotNode) ID() int64     { return n.Node.ID }
func (n *dotNode) DOTID() string { return fmt.Sprintf("n%d", n.Node.ID) }
func (n *dotNode) Attributes() []encoding.Attribute {
	return []encoding.Attribute{
		{Key: "label", Value: fmt.Sprintf("%q", n.Label)},
		{Key: "style", Value: "filled"},
		{Key: "fillcolor", Value: fmt.Sprintf("%q", n.Color)},
		{Key: "tooltip", Value: fmt.Sprintf("%q", n.Type)},
	}
}

type dotLine struct {
	*Edge
	from, to *dotNode
}

func (l *dotLine) From() graph.Node { return l.from }
func (l *dotLine) To() graph.Node   { return l.to }
func (l *dotLine) ID() int64        { return l.Edge.ID }
func (l *dotLine) ReversedLine() graph.Line {
	return &dotLine{Edge: l.Edge, from: l.to, to: l.from}
}
func (l *dotLine) Attributes() []encoding.Attribute {
	if l.Label == "" {
		return nil
	}
	return []encoding.Attribute{{Key: "label", Value: fmt.Sprintf("%q", l.Label)}}
}
