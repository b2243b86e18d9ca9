// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/kortschak/spoke"
	"github.com/kortschak/spoke/table"
)

func hierarchyCmd(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("hierarchy", "<identifier>...")
	label := fs.String("label", "Anatomy", "label of the hierarchy nodes")
	isA := fs.String("isa", "ISA_AiA", "child to parent relationship type")
	common := fs.Bool("common", false, "report the closest common ancestor of each pair of nodes")
	format := fs.String("format", "tsv", "output format (tsv, json or dot)")
	view := addViewFlags(fs)
	err := fs.Parse(args)
	if err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	g, err := e.db.Ancestry(ctx, *label, *isA, fs.Args())
	if err != nil {
		return err
	}
	nodes := e.identified(g, *label, fs.Args())
	switch {
	case *format != "tsv":
		return writeView(e, g, *format, view.options())
	case *common:
		return writeCommonAncestors(e, g, nodes, *isA)
	default:
		return writeRoots(e, g, nodes, *label, *isA)
	}
}

// identified returns the nodes of g with the given label and identifiers
// in identifier order. Identifiers without a node are logged and skipped.
func (e *env) identified(g *spoke.Graph, label string, ids []string) []*spoke.Node {
	byID := make(map[string]*spoke.Node)
	for _, n := range g.NodesByLabel(label) {
		byID[n.Identifier()] = n
	}
	var nodes []*spoke.Node
	for _, id := range ids {
		n, ok := byID[id]
		if !ok {
			e.log.Warn("node not found", zap.String("label", label), zap.String("identifier", id))
			continue
		}
		nodes = append(nodes, n)
	}
	return nodes
}

// writeRoots writes the hierarchy roots above each node and the number of
// levels separating them.
func writeRoots(e *env, g *spoke.Graph, nodes []*spoke.Node, label, isA string) error {
	t := table.New("root", "root_name", "node", "node_name", "depth")
	for _, r := range g.Roots(label, isA) {
		depth := map[*spoke.Node]int{r: 0}
		for _, d := range g.DescendantsOf(r, isA) {
			depth[d.Node] = d.Depth
		}
		for _, n := range nodes {
			d, ok := depth[n]
			if !ok {
				continue
			}
			t.AddRow(r.Identifier(), r.Name(), n.Identifier(), n.Name(), strconv.Itoa(d))
		}
	}
	return t.WriteTSV(e.stdout)
}

// writeCommonAncestors writes the closest common ancestor of each pair of
// nodes and its distance from each of them. Pairs without a common
// ancestor have empty ancestor fields.
func writeCommonAncestors(e *env, g *spoke.Graph, nodes []*spoke.Node, isA string) error {
	t := table.New("node_a", "node_b", "ancestor", "ancestor_name", "depth_a", "depth_b")
	for i, a := range nodes {
		for _, b := range nodes[i+1:] {
			anc, ok := g.ClosestCommonAncestor(a, b, isA)
			if !ok {
				t.AddRow(a.Identifier(), b.Identifier(), "", "", "", "")
				continue
			}
			_, da := g.IsDescendantOf(anc, a, isA)
			_, db := g.IsDescendantOf(anc, b, isA)
			t.AddRow(a.Identifier(), b.Identifier(), anc.Identifier(), anc.Name(), strconv.Itoa(da), strconv.Itoa(db))
		}
	}
	return t.WriteTSV(e.stdout)
}
