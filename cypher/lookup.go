// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cypher

import (
	"fmt"
)

// NodeID returns a query for the database ID of the node with the given
// label and identifier. The row column is i.
func NodeID(label string, identifier interface{}) (Query, error) {
	if err := checkIdent("label", label); err != nil {
		return Query{}, err
	}
	return Query{
		Text:   fmt.Sprintf("MATCH (n:%s {identifier: $identifier}) RETURN DISTINCT id(n) AS i", label),
		Params: map[string]interface{}{"identifier": identifier},
	}, nil
}

// NodesFromGeneSets returns a query listing the identifiers of nodes with
// the given label two steps from each gene set. If filter is not empty only
// the named gene sets are used. Rows are GeneSet and Nodes.
func NodesFromGeneSets(label string, filter []string) (Query, error) {
	if err := checkIdent("label", label); err != nil {
		return Query{}, err
	}
	l := []string{fmt.Sprintf("MATCH (gs:GeneSet)-[]-()-[]-(n:%s)", label)}
	params := map[string]interface{}{}
	if len(filter) != 0 {
		l = append(l, "WHERE gs.identifier IN $filter")
		params["filter"] = filter
	}
	l = append(l, "RETURN DISTINCT gs.identifier AS GeneSet, collect(DISTINCT n.identifier) AS Nodes")
	return Query{Text: lines(0, l...), Params: params}, nil
}

// Ancestry returns a query for the paths from each node with the given
// label and identifier up the hierarchy formed by isA relationships
// directed from child to parent. Zero length paths are included so
// that nodes without parents are returned. Rows are path.
func Ancestry(label, isA string, identifiers []string) (Query, error) {
	if err := checkIdent("label", label); err != nil {
		return Query{}, err
	}
	if err := checkIdent("relationship type", isA); err != nil {
		return Query{}, err
	}
	if len(identifiers) == 0 {
		return Query{}, fmt.Errorf("%w: no identifiers", ErrInvalidRequest)
	}
	return Query{
		Text:   fmt.Sprintf("MATCH path=(n:%[1]s)-[:%[2]s*0..]->(:%[1]s) WHERE toString(n.identifier) IN $identifiers RETURN path", label, isA),
		Params: map[string]interface{}{"identifiers": identifiers},
	}, nil
}

// PathsBetween returns a query for the single relationship paths from
// nodes with database IDs in from to nodes with database IDs in to.
func PathsBetween(from, to []int64) Query {
	return Query{
		Text: "MATCH path=(n1)-[]->(n2) WHERE id(n1) IN $node_1 AND id(n2) IN $node_2 RETURN path",
		Params: map[string]interface{}{
			"node_1": from,
			"node_2": to,
		},
	}
}

// CompositeGraphs names the constituent graphs of a composite database
// holding a gene set graph alongside the knowledge graph.
type CompositeGraphs struct {
	// GeneSets is the graph holding GeneSet nodes,
	// for example "pkcomposite.pk".
	GeneSets string

	// Knowledge is the graph holding the SPOKE
	// knowledge graph, for example "pkcomposite.pkspoke".
	Knowledge string
}

func (c CompositeGraphs) check() error {
	if err := checkDatabase(c.GeneSets); err != nil {
		return err
	}
	return checkDatabase(c.Knowledge)
}

// GeneSetNodeIDs returns a query for the knowledge graph database IDs of
// nodes with the given label that are two steps from the named gene set
// in the gene set graph. The row column is nodeId.
func GeneSetNodeIDs(c CompositeGraphs, geneSet, label string) (Query, error) {
	if err := c.check(); err != nil {
		return Query{}, err
	}
	if err := checkIdent("label", label); err != nil {
		return Query{}, err
	}
	return Query{
		Text: lines(0,
			"CALL {",
			"\tUSE "+c.GeneSets,
			fmt.Sprintf("\tMATCH (:GeneSet {identifier: $geneSet})-[]-()-[]-(gp:%s)", label),
			"\tRETURN collect(DISTINCT gp.identifier) AS ids",
			"}",
			"CALL {",
			"\tUSE "+c.Knowledge,
			"\tWITH ids",
			fmt.Sprintf("\tMATCH (n:%s) WHERE n.identifier IN ids", label),
			"\tRETURN DISTINCT id(n) AS nodeId",
			"}",
			"RETURN DISTINCT nodeId",
		),
		Params: map[string]interface{}{"geneSet": geneSet},
	}, nil
}

// GeneSetPattern selects gene set members in a gene set graph. Pattern is
// Cypher pattern text binding the member node as n and, for weighted
// queries, the membership relationship as r.
type GeneSetPattern struct {
	Pattern      string
	Filter       string
	FilterParams map[string]interface{}
}

func (p GeneSetPattern) match() (string, error) {
	if p.Pattern == "" {
		return "", fmt.Errorf("%w: empty gene set pattern", ErrInvalidRequest)
	}
	m := "MATCH " + p.Pattern
	if p.Filter != "" {
		m += " WHERE " + p.Filter
	}
	return m, nil
}

// PageRankWeights returns a query for the PageRank source nodes selected by
// the gene set pattern with their mean membership weight taken from the
// weight property of r. Rows are nodeId, Node and weight.
func PageRankWeights(c CompositeGraphs, p GeneSetPattern, weight string) (Query, error) {
	if err := c.check(); err != nil {
		return Query{}, err
	}
	if err := checkIdent("property", weight); err != nil {
		return Query{}, err
	}
	m, err := p.match()
	if err != nil {
		return Query{}, err
	}
	params := map[string]interface{}{}
	err = mergeParams(params, p.FilterParams)
	if err != nil {
		return Query{}, err
	}
	return Query{
		Text: lines(0,
			"CALL {",
			"\tUSE "+c.GeneSets,
			"\t"+m,
			fmt.Sprintf("\tWITH n, avg(r.%s) AS weight", weight),
			"\tRETURN DISTINCT n.identifier AS id, weight",
			"}",
			"CALL {",
			"\tUSE "+c.Knowledge,
			"\tWITH id",
			"\tMATCH (n0:Gene) WHERE n0.identifier = id",
			"\tRETURN DISTINCT id(n0) AS nodeId, n0.identifier AS Node",
			"}",
			"RETURN DISTINCT nodeId, Node, weight",
		),
		Params: params,
	}, nil
}

// GeneSetPageRank returns a query running a PageRank over the named
// projection personalized by the knowledge graph nodes with the given label
// that are selected by the gene set pattern. Rows are nodeId and score
// ordered by descending score.
func GeneSetPageRank(c CompositeGraphs, p GeneSetPattern, label string, r PageRankRequest) (Query, error) {
	if err := c.check(); err != nil {
		return Query{}, err
	}
	if err := checkIdent("label", label); err != nil {
		return Query{}, err
	}
	if r.Graph == "" {
		return Query{}, fmt.Errorf("%w: empty graph name", ErrInvalidRequest)
	}
	m, err := p.match()
	if err != nil {
		return Query{}, err
	}
	cfg := r.config()
	params := map[string]interface{}{
		"graphName":     r.Graph,
		"maxIterations": cfg["maxIterations"],
		"dampingFactor": cfg["dampingFactor"],
	}
	err = mergeParams(params, p.FilterParams)
	if err != nil {
		return Query{}, err
	}
	return Query{
		Text: lines(0,
			"CALL {",
			"\tUSE "+c.GeneSets,
			"\t"+m,
			"\tRETURN collect(DISTINCT n.identifier) AS ids",
			"}",
			"CALL {",
			"\tUSE "+c.Knowledge,
			"\tWITH ids",
			fmt.Sprintf("\tMATCH (g:%s) WHERE g.identifier IN ids", label),
			"\tRETURN DISTINCT id(g) AS overlap_genes",
			"}",
			"WITH collect(overlap_genes) AS sourceNodes",
			"CALL {",
			"\tUSE "+c.Knowledge,
			"\tWITH sourceNodes",
			"\tCALL gds.pageRank.stream($graphName, {sourceNodes: sourceNodes, maxIterations: $maxIterations, dampingFactor: $dampingFactor})",
			"\tYIELD nodeId, score",
			"\tRETURN nodeId, score",
			"}",
			"RETURN nodeId, score ORDER BY score DESC",
		),
		Params: params,
	}, nil
}
