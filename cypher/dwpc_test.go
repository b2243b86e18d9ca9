// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cypher

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/diff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var update = flag.Bool("update", false, "update golden query files")

func checkGolden(t *testing.T, name, got string) {
	t.Helper()
	path := filepath.Join("testdata", name)
	got += "\n"
	if *update {
		require.NoError(t, os.WriteFile(path, []byte(got), 0o644))
	}
	want, err := os.ReadFile(path)
	require.NoError(t, err)
	if got != string(want) {
		var buf bytes.Buffer
		err = diff.Text("want", "got", string(want), got, &buf)
		require.NoError(t, err)
		t.Errorf("unexpected query text for %s:\n%s", name, &buf)
	}
}

func TestDWPC(t *testing.T) {
	q, err := DWPC(DWPCRequest{
		Metapath:     MustParseMetapath("(n0:Gene)-[:PARTICIPATES_GpBP]-(n1:BiologicalProcess)<-[:PARTICIPATES_GpBP]-(n2:Gene)"),
		Sources:      []string{"7157", "672"},
		GroupBy:      "n2",
		Limit:        25,
		Filter:       "n2.identifier <> $exclude",
		FilterParams: map[string]interface{}{"exclude": "7157"},
	})
	require.NoError(t, err)
	checkGolden(t, "dwpc.cypher", q.Text)

	assert.Equal(t, map[string]interface{}{
		"sources":      []string{"7157", "672"},
		"damping":      DefaultExponent,
		"limit":        int64(25),
		"minPathCount": int64(1),
		"exclude":      "7157",
	}, q.Params)
	assert.False(t, q.Write)
}

func TestMultiDWPC(t *testing.T) {
	q, err := MultiDWPC(MultiDWPCRequest{
		DWPCRequest: DWPCRequest{
			Metapath:        MustParseMetapath("(n0:Gene)-[:EXPRESSEDIN_GeiAD]->(n1:Anatomy)"),
			GroupBy:         "n1",
			Limit:           10,
			Exponent:        -0.5,
			KeepSinglePaths: true,
		},
		Lists: []GeneList{
			{Name: "up", IDs: []string{"1", "2"}},
			{Name: "down", IDs: []string{"3"}},
		},
	})
	require.NoError(t, err)
	checkGolden(t, "multi_dwpc.cypher", q.Text)

	assert.Equal(t, []interface{}{
		[]interface{}{"up", []string{"1", "2"}},
		[]interface{}{"down", []string{"3"}},
	}, q.Params["gene_lists"])
	assert.Equal(t, -0.5, q.Params["damping"])
	assert.NotContains(t, q.Params, "minPathCount")
}

func TestDWPCErrors(t *testing.T) {
	mp := MustParseMetapath("(n0:Gene)-[:EXPRESSEDIN_GeiAD]-(n1:Anatomy)")
	tests := []struct {
		name string
		req  DWPCRequest
		want error
	}{
		{
			name: "missing group",
			req:  DWPCRequest{Metapath: mp, Sources: []string{"1"}, GroupBy: "n2", Limit: 1},
			want: ErrInvalidRequest,
		},
		{
			name: "zero limit",
			req:  DWPCRequest{Metapath: mp, Sources: []string{"1"}, GroupBy: "n1"},
			want: ErrInvalidRequest,
		},
		{
			name: "no sources",
			req:  DWPCRequest{Metapath: mp, GroupBy: "n1", Limit: 1},
			want: ErrInvalidRequest,
		},
		{
			name: "bad start label",
			req:  DWPCRequest{Metapath: mp, StartLabel: "Gene) DETACH DELETE (x", Sources: []string{"1"}, GroupBy: "n1", Limit: 1},
			want: ErrInvalidIdentifier,
		},
		{
			name: "reserved filter parameter",
			req: DWPCRequest{
				Metapath: mp, Sources: []string{"1"}, GroupBy: "n1", Limit: 1,
				Filter: "n1.name = $limit", FilterParams: map[string]interface{}{"limit": "x"},
			},
			want: ErrInvalidRequest,
		},
		{
			name: "hand built metapath",
			req: DWPCRequest{
				Metapath: Metapath{
					Nodes: []NodeStep{{Var: "n0", Label: "Gene"}, {Var: "n1", Label: "Anatomy"}},
					Rels:  []RelStep{{Type: "EXPRESSED IN"}},
				},
				Sources: []string{"1"}, GroupBy: "n1", Limit: 1,
			},
			want: ErrInvalidIdentifier,
		},
	}
	for _, test := range tests {
		_, err := DWPC(test.req)
		assert.True(t, errors.Is(err, test.want), "%s: unexpected error: %v", test.name, err)
	}

	_, err := MultiDWPC(MultiDWPCRequest{DWPCRequest: DWPCRequest{Metapath: mp, GroupBy: "n1", Limit: 1}})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestDWPCPaths(t *testing.T) {
	mp := MustParseMetapath("(n0:Gene)-[:PARTICIPATES_GpBP]-(n1:BiologicalProcess)")
	q, err := DWPCPaths(mp, "n1", []string{"7157"}, []string{"GO:0006915"}, 5)
	require.NoError(t, err)
	assert.Contains(t, q.Text, "WHERE toString(n0.identifier) IN $gene_list AND toString(n1.identifier) = n")
	assert.Equal(t, int64(5), q.Params["max_show"])

	_, err = DWPCPaths(mp, "n1", nil, nil, 0)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
