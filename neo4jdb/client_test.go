// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neo4jdb

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kortschak/spoke/cypher"
)

// fakeRunner returns the records of the first canned result with
// match text contained in the query text.
type fakeRunner struct {
	results []canned
	err     error

	queries []cypher.Query
}

type canned struct {
	match   string
	records []*neo4j.Record
}

func (r *fakeRunner) Run(_ context.Context, q cypher.Query) ([]*neo4j.Record, error) {
	r.queries = append(r.queries, q)
	if r.err != nil {
		return nil, r.err
	}
	for _, c := range r.results {
		if strings.Contains(q.Text, c.match) {
			return c.records, nil
		}
	}
	return nil, nil
}

func record(kv ...interface{}) *neo4j.Record {
	r := &neo4j.Record{}
	for i := 0; i < len(kv); i += 2 {
		r.Keys = append(r.Keys, kv[i].(string))
		r.Values = append(r.Values, kv[i+1])
	}
	return r
}

func TestRunError(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	errDown := errors.New("connection refused")
	c := New(&fakeRunner{err: errDown}, zap.New(core))

	_, err := c.Table(context.Background(), cypher.ListGraphs())
	assert.ErrorIs(t, err, errDown)
	assert.Equal(t, 1, logs.FilterMessage("query failed").Len())
}

func TestNodeID(t *testing.T) {
	r := &fakeRunner{results: []canned{
		{"(n:Compound", []*neo4j.Record{record("i", int64(42))}},
	}}
	c := New(r, nil)

	id, err := c.NodeID(context.Background(), "Compound", "DB00945")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "DB00945", r.queries[0].Params["identifier"])

	_, err = c.NodeID(context.Background(), "Gene", 7157)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.NodeID(context.Background(), "Gene}) DETACH DELETE n //", 7157)
	assert.ErrorIs(t, err, cypher.ErrInvalidIdentifier)
	assert.Len(t, r.queries, 2, "invalid query must not be run")
}

func TestNodesFromGeneSets(t *testing.T) {
	r := &fakeRunner{results: []canned{
		{"GeneSet", []*neo4j.Record{
			record("GeneSet", "GS_1", "Nodes", []interface{}{int64(7157), int64(672)}),
			record("GeneSet", "GS_2", "Nodes", []interface{}{"1956"}),
		}},
	}}
	c := New(r, nil)
	lists, err := c.NodesFromGeneSets(context.Background(), "Gene", nil)
	require.NoError(t, err)
	assert.Equal(t, []cypher.GeneList{
		{Name: "GS_1", IDs: []string{"7157", "672"}},
		{Name: "GS_2", IDs: []string{"1956"}},
	}, lists)
}

func TestDWPC(t *testing.T) {
	r := &fakeRunner{results: []canned{
		{"UNWIND $gene_lists", []*neo4j.Record{
			record("gs", "up", "Node_ID", "4:x:10", "Node_Name", "kidney", "PC", int64(3), "DWPC", 0.25),
		}},
		{"DWPC", []*neo4j.Record{
			record("Node_ID", "4:x:10", "Node_Name", "kidney", "PC", int64(3), "DWPC", 0.25),
			record("Node_ID", "4:x:11", "Node_Name", nil, "PC", int64(2), "DWPC", int64(0)),
		}},
	}}
	c := New(r, nil)
	mp := cypher.MustParseMetapath("(n0:Gene)-[:EXPRESSEDIN_GeiAD]-(n1:Anatomy)")

	got, err := c.DWPC(context.Background(), cypher.DWPCRequest{
		Metapath: mp, Sources: []string{"7157"}, GroupBy: "n1", Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, []PathCount{
		{NodeID: "4:x:10", NodeName: "kidney", PC: 3, DWPC: 0.25},
		{NodeID: "4:x:11", PC: 2},
	}, got)

	got, err = c.MultiDWPC(context.Background(), cypher.MultiDWPCRequest{
		DWPCRequest: cypher.DWPCRequest{Metapath: mp, GroupBy: "n1", Limit: 10},
		Lists:       []cypher.GeneList{{Name: "up", IDs: []string{"7157"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, []PathCount{{GeneSet: "up", NodeID: "4:x:10", NodeName: "kidney", PC: 3, DWPC: 0.25}}, got)
}

func TestDWPCBadColumn(t *testing.T) {
	r := &fakeRunner{results: []canned{
		{"DWPC", []*neo4j.Record{record("Node_ID", int64(10), "Node_Name", "kidney", "PC", int64(3), "DWPC", 0.25)}},
	}}
	c := New(r, nil)
	_, err := c.DWPC(context.Background(), cypher.DWPCRequest{
		Metapath: cypher.MustParseMetapath("(n0:Gene)-[:EXPRESSEDIN_GeiAD]-(n1:Anatomy)"),
		Sources:  []string{"7157"}, GroupBy: "n1", Limit: 10,
	})
	assert.ErrorContains(t, err, `column "Node_ID" has type int64`)
}

func TestAncestry(t *testing.T) {
	anatomy := func(id, identifier, name string) neo4j.Node {
		return neo4j.Node{ElementId: id, Labels: []string{"Anatomy"}, Props: map[string]interface{}{"identifier": identifier, "name": name}}
	}
	isA := func(id string, child, parent neo4j.Node) neo4j.Relationship {
		return neo4j.Relationship{ElementId: id, StartElementId: child.ElementId, EndElementId: parent.ElementId, Type: "ISA_AiA"}
	}
	root := anatomy("4:a:1", "UBERON:0000061", "anatomical structure")
	organ := anatomy("4:a:2", "UBERON:0000062", "organ")
	kidney := anatomy("4:a:3", "UBERON:0002113", "kidney")
	r := &fakeRunner{results: []canned{
		{"ISA_AiA", []*neo4j.Record{
			record("path", neo4j.Path{Nodes: []neo4j.Node{kidney}}),
			record("path", neo4j.Path{Nodes: []neo4j.Node{kidney, organ}, Relationships: []neo4j.Relationship{isA("5:a:1", kidney, organ)}}),
			record("path", neo4j.Path{
				Nodes:         []neo4j.Node{kidney, organ, root},
				Relationships: []neo4j.Relationship{isA("5:a:1", kidney, organ), isA("5:a:2", organ, root)},
			}),
		}},
	}}
	c := New(r, nil)

	g, err := c.Ancestry(context.Background(), "Anatomy", "ISA_AiA", []string{"UBERON:0002113"})
	require.NoError(t, err)
	assert.Equal(t, 3, g.Nodes().Len())
	roots := g.Roots("Anatomy", "ISA_AiA")
	require.Len(t, roots, 1)
	assert.Equal(t, "UBERON:0000061", roots[0].Identifier())
	assert.Equal(t, []string{"UBERON:0002113"}, r.queries[0].Params["identifiers"])

	_, err = c.Ancestry(context.Background(), "Anatomy", "ISA_AiA", nil)
	assert.ErrorIs(t, err, cypher.ErrInvalidRequest)
	assert.Len(t, r.queries, 1, "invalid query must not be run")
}
