// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neo4jdb

import (
	"context"
	"fmt"
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/kortschak/spoke"
	"github.com/kortschak/spoke/cypher"
)

// GraphInfo describes a named graph projection.
type GraphInfo struct {
	Name              string
	Database          string
	NodeCount         int64
	RelationshipCount int64
}

// ListGraphs returns the named graph projections.
func (c *Client) ListGraphs(ctx context.Context) ([]GraphInfo, error) {
	records, err := c.Run(ctx, cypher.ListGraphs())
	if err != nil {
		return nil, err
	}
	graphs := make([]GraphInfo, 0, len(records))
	for _, r := range records {
		g, err := graphInfo(r, true)
		if err != nil {
			return nil, err
		}
		graphs = append(graphs, g)
	}
	return graphs, nil
}

func graphInfo(r *neo4j.Record, withDatabase bool) (GraphInfo, error) {
	var (
		g   GraphInfo
		err error
	)
	g.Name, err = value[string](r, "graphName")
	if err != nil {
		return g, err
	}
	if withDatabase {
		g.Database, err = value[string](r, "database")
		if err != nil {
			return g, err
		}
	}
	g.NodeCount, err = value[int64](r, "nodeCount")
	if err != nil {
		return g, err
	}
	g.RelationshipCount, err = value[int64](r, "relationshipCount")
	return g, err
}

// DropGraph drops the named graph projection.
func (c *Client) DropGraph(ctx context.Context, name string) error {
	q, err := cypher.DropGraph(name)
	if err != nil {
		return err
	}
	_, err = c.Run(ctx, q)
	return err
}

// Project creates a native graph projection. An existing projection with
// the same name is dropped first.
func (c *Client) Project(ctx context.Context, p cypher.Projection) (GraphInfo, error) {
	q, err := cypher.ProjectGraph(p)
	if err != nil {
		return GraphInfo{}, err
	}
	graphs, err := c.ListGraphs(ctx)
	if err != nil {
		return GraphInfo{}, err
	}
	for _, g := range graphs {
		if g.Name != p.Name {
			continue
		}
		c.log.Warn("dropping existing projection", zap.String("graph", p.Name))
		err = c.DropGraph(ctx, p.Name)
		if err != nil {
			return GraphInfo{}, err
		}
		break
	}
	records, err := c.Run(ctx, q)
	if err != nil {
		return GraphInfo{}, err
	}
	if len(records) == 0 {
		return GraphInfo{}, fmt.Errorf("neo4jdb: no result from projection of %q", p.Name)
	}
	return graphInfo(records[0], false)
}

// NodeScore is a scored projection node.
type NodeScore struct {
	// NodeID is the database ID of the node.
	NodeID int64

	// Node, Name and Type are the identifier, name and
	// first label of the node. They are only set for
	// results that describe nodes.
	Node string
	Name string
	Type string

	Score float64

	// Sources holds the scaled per-source scores
	// of a MultiPageRank result.
	Sources []float64
}

// PageRank streams the PageRank scores of the nodes of a projection.
func (c *Client) PageRank(ctx context.Context, req cypher.PageRankRequest) ([]NodeScore, error) {
	q, err := cypher.PageRankStream(req)
	if err != nil {
		return nil, err
	}
	records, err := c.Run(ctx, q)
	if err != nil {
		return nil, err
	}
	return scores(records)
}

// GeneSetPageRank runs a PageRank over a projection personalized by the
// nodes with the given label selected by the gene set pattern.
func (c *Client) GeneSetPageRank(ctx context.Context, graphs cypher.CompositeGraphs, p cypher.GeneSetPattern, label string, req cypher.PageRankRequest) ([]NodeScore, error) {
	q, err := cypher.GeneSetPageRank(graphs, p, label, req)
	if err != nil {
		return nil, err
	}
	records, err := c.Run(ctx, q)
	if err != nil {
		return nil, err
	}
	return scores(records)
}

func scores(records []*neo4j.Record) ([]NodeScore, error) {
	s := make([]NodeScore, 0, len(records))
	for _, r := range records {
		id, err := value[int64](r, "nodeId")
		if err != nil {
			return nil, err
		}
		score, err := number(r, "score")
		if err != nil {
			return nil, err
		}
		s = append(s, NodeScore{NodeID: id, Score: score})
	}
	return s, nil
}

// ProjectionInfo returns the nodes of a projection with their degree
// centrality as the score.
func (c *Client) ProjectionInfo(ctx context.Context, graph string) ([]NodeScore, error) {
	q, err := cypher.DegreeStream(graph)
	if err != nil {
		return nil, err
	}
	records, err := c.Run(ctx, q)
	if err != nil {
		return nil, err
	}
	info := make([]NodeScore, 0, len(records))
	for _, r := range records {
		var n NodeScore
		n.NodeID, err = value[int64](r, "nodeId")
		if err != nil {
			return nil, err
		}
		v, _ := r.Get("Node")
		n.Node = Cell(v)
		n.Name, err = value[string](r, "Node_Name")
		if err != nil {
			return nil, err
		}
		n.Type, err = value[string](r, "Node_Type")
		if err != nil {
			return nil, err
		}
		n.Score, err = number(r, "score")
		if err != nil {
			return nil, err
		}
		info = append(info, n)
	}
	return info, nil
}

// WeightedNode is a PageRank source node and its weight.
type WeightedNode struct {
	NodeID int64

	// Node is the identifier of the node.
	Node string

	Weight float64
}

// PageRankWeights returns the source nodes selected by the gene set
// pattern with the mean of the weight property of their membership
// relationships.
func (c *Client) PageRankWeights(ctx context.Context, graphs cypher.CompositeGraphs, p cypher.GeneSetPattern, weight string) ([]WeightedNode, error) {
	q, err := cypher.PageRankWeights(graphs, p, weight)
	if err != nil {
		return nil, err
	}
	records, err := c.Run(ctx, q)
	if err != nil {
		return nil, err
	}
	nodes := make([]WeightedNode, 0, len(records))
	for _, r := range records {
		var n WeightedNode
		n.NodeID, err = value[int64](r, "nodeId")
		if err != nil {
			return nil, err
		}
		v, _ := r.Get("Node")
		n.Node = Cell(v)
		n.Weight, err = number(r, "weight")
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// MultiPageRank runs a personalized PageRank from each source node over
// the projection named in req and combines the results for the nodes in
// info. Each run's scores are multiplied by the source weight, then each
// node's scores are min-max scaled across the sources. The Score of each
// returned node is the mean of its scaled scores and Sources holds the
// scaled scores in source order. Nodes missing from any run are omitted.
// Duplicate nodes in info are ignored.
func (c *Client) MultiPageRank(ctx context.Context, info []NodeScore, sources []WeightedNode, req cypher.PageRankRequest) ([]NodeScore, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: no PageRank source nodes", cypher.ErrInvalidRequest)
	}
	runs := make([]map[int64]float64, len(sources))
	for i, s := range sources {
		r := req
		r.SourceNodes = []int64{s.NodeID}
		pr, err := c.PageRank(ctx, r)
		if err != nil {
			return nil, err
		}
		run := make(map[int64]float64, len(pr))
		for _, n := range pr {
			run[n.NodeID] = n.Score * s.Weight
		}
		runs[i] = run
	}

	seen := make(map[int64]bool, len(info))
	var ranks []NodeScore
outer:
	for _, n := range info {
		if seen[n.NodeID] {
			continue
		}
		seen[n.NodeID] = true
		row := make([]float64, len(runs))
		for i, run := range runs {
			s, ok := run[n.NodeID]
			if !ok {
				continue outer
			}
			row[i] = s
		}
		minMax(row)
		var sum float64
		for _, s := range row {
			sum += s
		}
		n.Sources = row
		n.Score = sum / float64(len(row))
		ranks = append(ranks, n)
	}
	return ranks, nil
}

// minMax scales x in place to the range [0, 1]. If all the elements of x
// are equal they are set to zero.
func minMax(x []float64) {
	if len(x) == 0 {
		return
	}
	lo, hi := x[0], x[0]
	for _, v := range x[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	scale := hi - lo
	if scale == 0 {
		scale = 1
	}
	for i, v := range x {
		x[i] = (v - lo) / scale
	}
}

// RankedNode is a scored node and its rank within its node type.
type RankedNode struct {
	NodeScore
	Rank int
}

// TopNodes returns the n highest scoring nodes of each node type, ordered
// by descending score. Ranks start at 1.
func TopNodes(nodes []NodeScore, n int) []RankedNode {
	sorted := make([]NodeScore, len(nodes))
	copy(sorted, nodes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	rank := make(map[string]int)
	var top []RankedNode
	for _, s := range sorted {
		rank[s.Type]++
		if rank[s.Type] > n {
			continue
		}
		top = append(top, RankedNode{NodeScore: s, Rank: rank[s.Type]})
	}
	return top
}

// TopNodesGraph returns the graph of relationships between the ranked
// nodes.
func (c *Client) TopNodesGraph(ctx context.Context, top []RankedNode) (*spoke.Graph, error) {
	seen := make(map[int64]bool, len(top))
	var ids []int64
	for _, n := range top {
		if !seen[n.NodeID] {
			seen[n.NodeID] = true
			ids = append(ids, n.NodeID)
		}
	}
	return c.PathsBetween(ctx, ids, ids)
}
