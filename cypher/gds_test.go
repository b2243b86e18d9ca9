// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cypher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectGraph(t *testing.T) {
	q, err := ProjectGraph(Projection{
		Name:              "genes",
		NodeLabels:        []string{"Gene", "Anatomy"},
		RelationshipTypes: []string{"EXPRESSEDIN_GeiAD"},
		Orientation:       Undirected,
	})
	require.NoError(t, err)
	assert.True(t, q.Write)
	assert.Equal(t, "genes", q.Params["graphName"])
	assert.Equal(t, map[string]interface{}{
		"EXPRESSEDIN_GeiAD": map[string]interface{}{"orientation": "UNDIRECTED"},
	}, q.Params["relationshipTypes"])

	_, err = ProjectGraph(Projection{Name: "genes", NodeLabels: []string{"Gene"}})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = ProjectGraph(Projection{Name: "genes", NodeLabels: []string{"Gene"}, RelationshipTypes: []string{"X"}, Orientation: "SIDEWAYS"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = ProjectGraph(Projection{Name: "genes", NodeLabels: []string{"Ge ne"}, RelationshipTypes: []string{"X"}})
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestDropGraph(t *testing.T) {
	q, err := DropGraph("genes")
	require.NoError(t, err)
	assert.Equal(t, "CALL gds.graph.drop($graphName) YIELD graphName RETURN graphName", q.Text)
	assert.True(t, q.Write)

	_, err = DropGraph("")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestPageRankStream(t *testing.T) {
	q, err := PageRankStream(PageRankRequest{Graph: "g", MaxIterations: 10, DampingFactor: 0.85})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"maxIterations": int64(10),
		"dampingFactor": 0.85,
	}, q.Params["config"])

	_, err = PageRankStream(PageRankRequest{Graph: "g", DampingFactor: 1})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = PageRankStream(PageRankRequest{})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestGeneSetQueries(t *testing.T) {
	c := CompositeGraphs{GeneSets: "pkcomposite.pk", Knowledge: "pkcomposite.pkspoke"}

	q, err := GeneSetNodeIDs(c, "GS_1", "Gene")
	require.NoError(t, err)
	assert.Contains(t, q.Text, "USE pkcomposite.pk\n")
	assert.Contains(t, q.Text, "USE pkcomposite.pkspoke\n")
	assert.Equal(t, "GS_1", q.Params["geneSet"])

	_, err = GeneSetNodeIDs(CompositeGraphs{GeneSets: "pk; MATCH (n) DETACH DELETE n", Knowledge: "x"}, "GS_1", "Gene")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)

	p := GeneSetPattern{
		Pattern:      "(gs:GeneSet)-[r:CONTAINS]->(n:Gene)",
		Filter:       "gs.identifier = $geneSet",
		FilterParams: map[string]interface{}{"geneSet": "GS_1"},
	}
	q, err = PageRankWeights(c, p, "log2fc")
	require.NoError(t, err)
	assert.Contains(t, q.Text, "\tMATCH (gs:GeneSet)-[r:CONTAINS]->(n:Gene) WHERE gs.identifier = $geneSet\n")
	assert.Contains(t, q.Text, "avg(r.log2fc) AS weight")

	q, err = GeneSetPageRank(c, p, "Gene", PageRankRequest{Graph: "genes"})
	require.NoError(t, err)
	assert.Equal(t, int64(DefaultMaxIterations), q.Params["maxIterations"])
	assert.Equal(t, DefaultDampingFactor, q.Params["dampingFactor"])

	_, err = GeneSetPageRank(c, GeneSetPattern{}, "Gene", PageRankRequest{Graph: "genes"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestNodesFromGeneSets(t *testing.T) {
	q, err := NodesFromGeneSets("Gene", nil)
	require.NoError(t, err)
	assert.NotContains(t, q.Text, "WHERE")
	assert.Empty(t, q.Params)

	q, err = NodesFromGeneSets("Gene", []string{"GS_1"})
	require.NoError(t, err)
	assert.Contains(t, q.Text, "WHERE gs.identifier IN $filter")
	assert.Equal(t, []string{"GS_1"}, q.Params["filter"])
}

func TestAncestry(t *testing.T) {
	q, err := Ancestry("Anatomy", "ISA_AiA", []string{"UBERON:0002113", "UBERON:0002107"})
	require.NoError(t, err)
	assert.Equal(t, "MATCH path=(n:Anatomy)-[:ISA_AiA*0..]->(:Anatomy) WHERE toString(n.identifier) IN $identifiers RETURN path", q.Text)
	assert.Equal(t, []string{"UBERON:0002113", "UBERON:0002107"}, q.Params["identifiers"])
	assert.False(t, q.Write)

	_, err = Ancestry("Anatomy", "ISA_AiA", nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = Ancestry("Anatomy", "ISA AiA", []string{"x"})
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}
