// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/kortschak/spoke"
	"github.com/kortschak/spoke/cypher"
	"github.com/kortschak/spoke/neo4jdb"
	"github.com/kortschak/spoke/table"
	"github.com/kortschak/spoke/vis"
)

func dwpcCmd(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("dwpc", "<identifier>...")
	metapath := fs.String("metapath", "", "metapath, for example (n0:Gene)-[:EXPRESSEDIN_GeiAD]-(n1:Anatomy)")
	groupBy := fs.String("group", "", "metapath node variable to group scores by (default last node)")
	limit := fs.Int("limit", 100, "maximum number of results")
	exp := fs.Float64("exp", cypher.DefaultExponent, "degree damping exponent")
	geneSets := fs.Bool("genesets", false, "treat arguments as gene set name filters and score each gene set")
	err := fs.Parse(args)
	if err != nil {
		return err
	}
	mp, err := cypher.ParseMetapath(*metapath)
	if err != nil {
		fs.Usage()
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *groupBy == "" {
		*groupBy = mp.Nodes[len(mp.Nodes)-1].Var
	}
	req := cypher.DWPCRequest{
		Metapath: mp,
		GroupBy:  *groupBy,
		Limit:    *limit,
		Exponent: *exp,
	}

	var counts []neo4jdb.PathCount
	if *geneSets {
		lists, err := e.db.NodesFromGeneSets(ctx, mp.Nodes[0].Label, fs.Args())
		if err != nil {
			return err
		}
		status("scoring %d gene sets", len(lists))
		counts, err = e.db.MultiDWPC(ctx, cypher.MultiDWPCRequest{DWPCRequest: req, Lists: lists})
		if err != nil {
			return err
		}
	} else {
		if fs.NArg() == 0 {
			fs.Usage()
			return errUsage
		}
		req.Sources = fs.Args()
		counts, err = e.db.DWPC(ctx, req)
		if err != nil {
			return err
		}
	}
	e.log.Info("dwpc", zap.Stringer("metapath", mp), zap.Int("results", len(counts)))

	t := table.New("gene_set", "node_id", "node_name", "pc", "dwpc")
	for _, c := range counts {
		t.AddRow(c.GeneSet, c.NodeID, c.NodeName, strconv.FormatInt(c.PC, 10), strconv.FormatFloat(c.DWPC, 'g', -1, 64))
	}
	if !*geneSets {
		t.DropColumn("gene_set")
	}
	return t.WriteTSV(e.stdout)
}

func pathsCmd(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("paths", "<identifier>...")
	metapath := fs.String("metapath", "", "metapath, for example (n0:Gene)-[:EXPRESSEDIN_GeiAD]-(n1:Anatomy)")
	groupBy := fs.String("group", "", "metapath node variable of the inner nodes (default last node)")
	inner := fs.String("inner", "", "comma-separated inner node identifiers")
	maxShow := fs.Int("max", 10, "maximum number of paths per inner node")
	format := fs.String("format", "json", "output format (json or dot)")
	local := fs.Bool("local", false, "write DWPC and PageRank scores computed over the fetched paths instead of the paths")
	exp := fs.Float64("exp", cypher.DefaultExponent, "degree damping exponent for -local")
	view := addViewFlags(fs)
	err := fs.Parse(args)
	if err != nil {
		return err
	}
	mp, err := cypher.ParseMetapath(*metapath)
	if err != nil || fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}
	if *groupBy == "" {
		*groupBy = mp.Nodes[len(mp.Nodes)-1].Var
	}
	g, err := e.db.DWPCPaths(ctx, mp, *groupBy, fs.Args(), list(*inner), *maxShow)
	if err != nil {
		return err
	}
	if *local {
		return writeLocalScores(e, g, mp, *groupBy, fs.Args(), *exp)
	}
	return writeView(e, g, *format, view.options())
}

// Local PageRank parameters.
const (
	localDamping   = 0.85
	localTolerance = 1e-8
)

// writeLocalScores writes the DWPC of the group nodes of g computed over
// g alone, with the PageRank of each group node within g. Degrees are
// those of the fetched paths, so scores are bounded by the number of
// paths fetched.
func writeLocalScores(e *env, g *spoke.Graph, mp cypher.Metapath, groupBy string, ids []string, exp float64) error {
	sources := e.identified(g, mp.Nodes[0].Label, ids)
	scores, err := g.DWPC(mp, sources, groupBy, exp)
	if err != nil {
		return err
	}
	ranks := g.PageRank(localDamping, localTolerance)
	order := make(map[*spoke.Node]int)
	for i, r := range spoke.Ranked(ranks) {
		order[r.Node] = i + 1
	}

	t := table.New("node_id", "node_name", "pc", "dwpc", "pagerank", "pagerank_rank")
	for _, s := range scores {
		t.AddRow(s.Node.Identifier(), s.Node.Name(), strconv.Itoa(s.PC),
			strconv.FormatFloat(s.DWPC, 'g', -1, 64),
			strconv.FormatFloat(ranks[s.Node], 'g', -1, 64),
			strconv.Itoa(order[s.Node]))
	}
	return t.WriteTSV(e.stdout)
}

func pageRankCmd(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("pagerank", "<identifier>...")
	graph := fs.String("graph", "", "graph projection name")
	labels := fs.String("labels", "", "comma-separated node labels to project; the projection is reused if empty")
	rels := fs.String("rels", "", "comma-separated relationship types to project")
	orientation := fs.String("orientation", string(cypher.Undirected), "projected relationship orientation")
	label := fs.String("label", "Gene", "label of the source nodes")
	top := fs.Int("top", 10, "number of top nodes per node type")
	damping := fs.Float64("damping", cypher.DefaultDampingFactor, "PageRank damping factor")
	iter := fs.Int("iter", cypher.DefaultMaxIterations, "maximum PageRank iterations")
	visOut := fs.String("vis", "", "write the graph of top nodes as JSON to this file")
	err := fs.Parse(args)
	if err != nil {
		return err
	}
	if *graph == "" || fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	if *labels != "" {
		info, err := e.db.Project(ctx, cypher.Projection{
			Name:              *graph,
			NodeLabels:        list(*labels),
			RelationshipTypes: list(*rels),
			Orientation:       cypher.Orientation(*orientation),
		})
		if err != nil {
			return err
		}
		status("projected %s: %d nodes, %d relationships", info.Name, info.NodeCount, info.RelationshipCount)
	}

	var sources []neo4jdb.WeightedNode
	for _, id := range fs.Args() {
		var ident interface{} = id
		if n, err := strconv.ParseInt(id, 10, 64); err == nil {
			ident = n
		}
		nodeID, err := e.db.NodeID(ctx, *label, ident)
		if err != nil {
			return fmt.Errorf("source %s: %w", id, err)
		}
		sources = append(sources, neo4jdb.WeightedNode{NodeID: nodeID, Node: id, Weight: 1})
	}

	info, err := e.db.ProjectionInfo(ctx, *graph)
	if err != nil {
		return err
	}
	scores, err := e.db.MultiPageRank(ctx, info, sources, cypher.PageRankRequest{
		Graph:         *graph,
		MaxIterations: *iter,
		DampingFactor: *damping,
	})
	if err != nil {
		return err
	}
	ranked := neo4jdb.TopNodes(scores, *top)

	t := table.New("node_type", "rank", "node", "node_name", "score")
	for _, n := range ranked {
		t.AddRow(n.Type, strconv.Itoa(n.Rank), n.Node, n.Name, strconv.FormatFloat(n.Score, 'g', -1, 64))
	}
	err = t.WriteTSV(e.stdout)
	if err != nil {
		return err
	}

	if *visOut != "" {
		g, err := e.db.TopNodesGraph(ctx, ranked)
		if err != nil {
			return err
		}
		f, err := os.Create(*visOut)
		if err != nil {
			return err
		}
		err = vis.Render(g, vis.Options{}).WriteJSON(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		status("wrote %s", *visOut)
	}
	return nil
}

func graphsCmd(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("graphs", "")
	drop := fs.String("drop", "", "name of a graph projection to drop")
	err := fs.Parse(args)
	if err != nil {
		return err
	}
	if *drop != "" {
		err = e.db.DropGraph(ctx, *drop)
		if err != nil {
			return err
		}
		status("dropped %s", *drop)
		return nil
	}
	graphs, err := e.db.ListGraphs(ctx)
	if err != nil {
		return err
	}
	t := table.New("name", "database", "nodes", "relationships")
	for _, g := range graphs {
		t.AddRow(g.Name, g.Database, strconv.FormatInt(g.NodeCount, 10), strconv.FormatInt(g.RelationshipCount, 10))
	}
	return t.WriteTSV(e.stdout)
}

type viewFlags struct {
	meta, hideEdgeLabels *bool
}

func addViewFlags(fs *flag.FlagSet) viewFlags {
	return viewFlags{
		meta:           fs.Bool("meta", false, "label nodes by type"),
		hideEdgeLabels: fs.Bool("hide-edge-labels", false, "omit relationship labels"),
	}
}

func (f viewFlags) options() vis.Options {
	return vis.Options{Meta: *f.meta, HideEdgeLabels: *f.hideEdgeLabels}
}

// writeView writes g to stdout in the given format.
func writeView(e *env, g *spoke.Graph, format string, opts vis.Options) error {
	v := vis.Render(g, opts)
	switch format {
	case "json":
		return v.WriteJSON(e.stdout)
	case "dot":
		b, err := v.MarshalDOT("spoke")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(e.stdout, "%s\n", b)
		return err
	default:
		return fmt.Errorf("%w: unknown format %q", errUsage, format)
	}
}
