// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cypher

import (
	"fmt"
)

// Orientation is the orientation of a projected relationship type.
type Orientation string

const (
	Natural    Orientation = "NATURAL"
	Reverse    Orientation = "REVERSE"
	Undirected Orientation = "UNDIRECTED"
)

const (
	// DefaultMaxIterations is the PageRank iteration limit.
	DefaultMaxIterations = 40

	// DefaultDampingFactor is the PageRank damping factor.
	DefaultDampingFactor = 0.33
)

// ListGraphs returns a query listing the named graph projections.
// Rows are graphName, database, nodeCount and relationshipCount.
func ListGraphs() Query {
	return Query{Text: lines(0,
		"CALL gds.graph.list() YIELD graphName, database, nodeCount, relationshipCount",
		"RETURN graphName, database, nodeCount, relationshipCount",
	)}
}

// DropGraph returns a query dropping the named graph projection.
func DropGraph(name string) (Query, error) {
	if name == "" {
		return Query{}, fmt.Errorf("%w: empty graph name", ErrInvalidRequest)
	}
	return Query{
		Text:   "CALL gds.graph.drop($graphName) YIELD graphName RETURN graphName",
		Params: map[string]interface{}{"graphName": name},
		Write:  true,
	}, nil
}

// Projection describes a native graph projection.
type Projection struct {
	Name              string
	NodeLabels        []string
	RelationshipTypes []string

	// Orientation applies to all relationship types.
	// If empty, Natural is used.
	Orientation Orientation
}

// ProjectGraph returns a query creating a native graph projection.
// Rows are graphName, nodeCount and relationshipCount.
func ProjectGraph(p Projection) (Query, error) {
	if p.Name == "" {
		return Query{}, fmt.Errorf("%w: empty graph name", ErrInvalidRequest)
	}
	if len(p.NodeLabels) == 0 || len(p.RelationshipTypes) == 0 {
		return Query{}, fmt.Errorf("%w: projection %q needs node labels and relationship types", ErrInvalidRequest, p.Name)
	}
	for _, l := range p.NodeLabels {
		if err := checkIdent("label", l); err != nil {
			return Query{}, err
		}
	}
	orientation := p.Orientation
	if orientation == "" {
		orientation = Natural
	}
	switch orientation {
	case Natural, Reverse, Undirected:
	default:
		return Query{}, fmt.Errorf("%w: unknown orientation %q", ErrInvalidRequest, orientation)
	}
	rels := make(map[string]interface{}, len(p.RelationshipTypes))
	for _, t := range p.RelationshipTypes {
		if err := checkIdent("relationship type", t); err != nil {
			return Query{}, err
		}
		rels[t] = map[string]interface{}{"orientation": string(orientation)}
	}
	return Query{
		Text: lines(0,
			"CALL gds.graph.project($graphName, $nodeLabels, $relationshipTypes)",
			"YIELD graphName, nodeCount, relationshipCount",
			"RETURN graphName, nodeCount, relationshipCount",
		),
		Params: map[string]interface{}{
			"graphName":         p.Name,
			"nodeLabels":        p.NodeLabels,
			"relationshipTypes": rels,
		},
		Write: true,
	}, nil
}

// PageRankRequest describes a streamed PageRank run over a projection.
type PageRankRequest struct {
	Graph string

	// SourceNodes holds the database node IDs that
	// personalize the run. If empty the run is not
	// personalized.
	SourceNodes []int64

	// MaxIterations and DampingFactor default to
	// DefaultMaxIterations and DefaultDampingFactor.
	MaxIterations int
	DampingFactor float64
}

func (r PageRankRequest) config() map[string]interface{} {
	maxIter := r.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	damp := r.DampingFactor
	if damp == 0 {
		damp = DefaultDampingFactor
	}
	c := map[string]interface{}{
		"maxIterations": int64(maxIter),
		"dampingFactor": damp,
	}
	if len(r.SourceNodes) != 0 {
		c["sourceNodes"] = r.SourceNodes
	}
	return c
}

// PageRankStream returns a query streaming PageRank scores for the
// projection. Rows are nodeId and score ordered by descending score.
func PageRankStream(r PageRankRequest) (Query, error) {
	if r.Graph == "" {
		return Query{}, fmt.Errorf("%w: empty graph name", ErrInvalidRequest)
	}
	if r.DampingFactor < 0 || r.DampingFactor >= 1 {
		return Query{}, fmt.Errorf("%w: damping factor %v out of range", ErrInvalidRequest, r.DampingFactor)
	}
	return Query{
		Text: lines(0,
			"CALL gds.pageRank.stream($graphName, $config)",
			"YIELD nodeId, score",
			"RETURN nodeId, score ORDER BY score DESC",
		),
		Params: map[string]interface{}{
			"graphName": r.Graph,
			"config":    r.config(),
		},
	}, nil
}

// DegreeStream returns a query describing the nodes of a projection with
// their degree centrality. Rows are nodeId, Node, Node_Name, Node_Type and
// score.
func DegreeStream(graph string) (Query, error) {
	if graph == "" {
		return Query{}, fmt.Errorf("%w: empty graph name", ErrInvalidRequest)
	}
	return Query{
		Text: lines(0,
			"CALL gds.degree.stream($graphName)",
			"YIELD nodeId, score",
			"RETURN nodeId, gds.util.asNode(nodeId).identifier AS Node, gds.util.asNode(nodeId).name AS Node_Name, head(labels(gds.util.asNode(nodeId))) AS Node_Type, score",
		),
		Params: map[string]interface{}{"graphName": graph},
	}, nil
}
