// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package table

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	tab := New("species", "gene")
	require.NoError(t, tab.AddRow("10090", "11545"))
	require.NoError(t, tab.AddRow("9606", "7157"))
	require.NoError(t, tab.AddRow("10090", "22059"))
	assert.Error(t, tab.AddRow("1"))

	assert.Equal(t, 3, tab.Len())
	assert.Equal(t, []string{"species", "gene"}, tab.Columns())
	assert.True(t, tab.HasColumn("gene"))
	assert.False(t, tab.HasColumn("human"))
	assert.Equal(t, "7157", tab.Get(1, "gene"))
	assert.Equal(t, "", tab.Get(1, "human"))

	u, err := tab.Unique("species")
	require.NoError(t, err)
	assert.Equal(t, []string{"10090", "9606"}, u)

	require.NoError(t, tab.AddColumn("human", nil))
	assert.Equal(t, []string{"10090", "11545", ""}, tab.Row(0))
	require.NoError(t, tab.Set(0, "human", "7157"))
	assert.ErrorIs(t, tab.Set(0, "missing", "x"), ErrNoColumn)

	require.NoError(t, tab.AddColumn("human", []string{"a", "b", "c"}))
	c, err := tab.Column("human")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, c)
	assert.Error(t, tab.AddColumn("short", []string{"a"}))

	tab.DropColumn("species")
	tab.DropColumn("species")
	assert.Equal(t, []string{"gene", "human"}, tab.Columns())
	assert.Equal(t, "b", tab.Get(1, "human"))

	_, err = tab.Column("species")
	assert.ErrorIs(t, err, ErrNoColumn)

	sel, err := tab.Select("human")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, sel.Row(2))
	_, err = tab.Select("species")
	assert.ErrorIs(t, err, ErrNoColumn)

	assert.Panics(t, func() { New("a", "a") })
}

const hom = "DB Class Key\tCommon Organism Name\tNCBI Taxon ID\tSymbol\tEntrezGene ID\n" +
	"45916081\thuman\t9606\tTP53\t7157\n" +
	"45916081\tmouse, laboratory\t10090\tTrp53\t22059\r\n" +
	"\n" +
	"45916082\trat\t10116\n"

func TestReadTSV(t *testing.T) {
	tab, err := ReadTSV(strings.NewReader(hom), Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, tab.Len())
	assert.Equal(t, "22059", tab.Get(1, "EntrezGene ID"))
	assert.Equal(t, "", tab.Get(2, "EntrezGene ID"))

	tab, err = ReadTSV(strings.NewReader(hom), Options{Columns: []string{"NCBI Taxon ID", "DB Class Key"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"NCBI Taxon ID", "DB Class Key"}, tab.Columns())
	assert.Equal(t, []string{"10090", "45916081"}, tab.Row(1))

	_, err = ReadTSV(strings.NewReader(hom), Options{Columns: []string{"HGNC ID"}})
	assert.ErrorIs(t, err, ErrNoColumn)

	_, err = ReadTSV(strings.NewReader(""), Options{})
	assert.Error(t, err)

	_, err = ReadTSV(strings.NewReader("a\tb\n1\t2\t3\n"), Options{})
	assert.Error(t, err)
}

func TestWriteTSV(t *testing.T) {
	tab := New("a", "b")
	require.NoError(t, tab.AddRow("1", ""))
	require.NoError(t, tab.AddRow("x", "y"))
	var buf bytes.Buffer
	require.NoError(t, tab.WriteTSV(&buf))
	assert.Equal(t, "a\tb\n1\t\nx\ty\n", buf.String())

	got, err := ReadTSV(&buf, Options{})
	require.NoError(t, err)
	assert.Equal(t, tab, got)
}
