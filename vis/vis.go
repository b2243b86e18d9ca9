// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vis renders SPOKE result graphs for display.
package vis

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/kortschak/spoke"
)

// Options control rendering.
type Options struct {
	// HideEdgeLabels suppresses relationship type labels.
	HideEdgeLabels bool

	// Meta labels nodes by their type rather than by
	// their properties.
	Meta bool

	// Styles maps node types to styles. If nil,
	// DefaultStyles is used.
	Styles map[string]Style
}

// View is a rendered graph.
type View struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a rendered node.
type Node struct {
	ID         int64                  `json:"id"`
	ElementID  string                 `json:"element_id,omitempty"`
	Type       string                 `json:"type"`
	Label      string                 `json:"label"`
	Color      string                 `json:"color"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// Edge is a rendered relationship.
type Edge struct {
	ID    int64  `json:"id"`
	From  int64  `json:"from"`
	To    int64  `json:"to"`
	Type  string `json:"type"`
	Label string `json:"label,omitempty"`
}

// Render returns a view of g. Nodes are colored by type. A node with a
// name property is labeled with the property named by its type's style, or
// with its type if the type has no style. Other nodes are labeled with their
// identifier.
func Render(g *spoke.Graph, opts Options) *View {
	styles := opts.Styles
	if styles == nil {
		styles = defaultStyles
	}

	var v View
	nodes := g.Nodes()
	for nodes.Next() {
		n := nodes.Node().(*spoke.Node)
		typ := n.Label()
		style, ok := styles[typ]
		color := style.Color
		if !ok || color == "" {
			color = DefaultColor
		}
		v.Nodes = append(v.Nodes, Node{
			ID:         n.UID,
			ElementID:  n.ElementID,
			Type:       typ,
			Label:      nodeLabel(n, typ, style, ok, opts.Meta),
			Color:      color,
			Properties: n.Props,
		})
	}
	sort.Slice(v.Nodes, func(i, j int) bool { return v.Nodes[i].ID < v.Nodes[j].ID })

	rels := g.AllRelationships()
	for rels.Next() {
		r := rels.Relationship()
		e := Edge{ID: r.UID, From: r.Start.UID, To: r.End.UID, Type: r.Type}
		if !opts.HideEdgeLabels {
			e.Label = r.Type
		}
		v.Edges = append(v.Edges, e)
	}
	sort.Slice(v.Edges, func(i, j int) bool { return v.Edges[i].ID < v.Edges[j].ID })

	return &v
}

func nodeLabel(n *spoke.Node, typ string, style Style, styled, meta bool) string {
	if meta {
		return typ
	}
	if _, ok := n.Property("name"); !ok {
		return n.Identifier()
	}
	if !styled {
		return typ
	}
	prop := style.Label
	if prop == "" {
		prop = "name"
	}
	return n.StringProperty(prop)
}

// WriteJSON writes the view to w as JSON.
func (v *View) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	return enc.Encode(v)
}
