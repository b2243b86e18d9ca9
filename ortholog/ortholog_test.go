// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ortholog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kortschak/spoke/table"
)

const (
	jaxURL  = "https://example.org/HOM_AllOrganism.rpt"
	hcopURL = "https://example.org/hcop.txt.gz"
)

var jaxReport = strings.Join([]string{
	"DB Class Key\tCommon Organism Name\tNCBI Taxon ID\tSymbol\tEntrezGene ID",
	"1\tmouse, laboratory\t10090\tGata6\t14465",
	"1\thuman\t9606\tGATA6\t2627",
	"1\trat\t10116\tGata6\t25682",
	"2\tmouse, laboratory\t10090\tLepr\t16847",
	"2\thuman\t9606\tLEPR\t3953",
	"3\tchimpanzee\t9598\tTP53\t456",
	"3\thuman\t9606\tTP53\t7157",
	"4\tzebrafish\t7955\tself\t100",
	"4\thuman\t9606\tSELF\t100",
	"5\tmouse, laboratory\t10090\tDup\t200",
	"5\thuman\t9606\tDUP1\t201",
	"5\thuman\t9606\tDUP2\t202",
}, "\n") + "\n"

var hcopTable = strings.Join([]string{
	"human_entrez_gene\tortholog_species\tortholog_species_entrez_gene\tortholog_species_symbol\tsupport",
	"2627\t10090\t14465\tGata6\tEnsembl,HGNC,OMA",
	"3953\t10090\t16847\tLepr\tOMA",
	"7157\t9598\t456\tTP53\tEnsembl,Panther",
	"-\t10090\t99999\tX\tEnsembl",
	"1956\t10090\t13649\tEgfr\tPanther",
	"1956\t10090\t13649\tEgfr\tEnsembl,Panther",
}, "\n") + "\n"

func gzipped(t *testing.T, s string) string {
	t.Helper()
	var buf bytes.Buffer
	w := pgzip.NewWriter(&buf)
	_, err := io.WriteString(w, s)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.String()
}

// fakeFetcher serves resources from memory and counts fetches.
type fakeFetcher struct {
	resources map[string]string
	fetches   map[string]int
}

func newFakeFetcher(t *testing.T) *fakeFetcher {
	return &fakeFetcher{
		resources: map[string]string{
			jaxURL:  jaxReport,
			hcopURL: gzipped(t, hcopTable),
		},
		fetches: make(map[string]int),
	}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (io.ReadCloser, error) {
	f.fetches[url]++
	r, ok := f.resources[url]
	if !ok {
		return nil, fmt.Errorf("no resource %s", url)
	}
	return io.NopCloser(strings.NewReader(r)), nil
}

func TestReadJAX(t *testing.T) {
	got, err := ReadJAX(strings.NewReader(jaxReport))
	require.NoError(t, err)
	assert.Equal(t, []Mapping{
		{Species: "10090", SpeciesGene: "14465", HumanGene: "2627"},
		{Species: "10116", SpeciesGene: "25682", HumanGene: "2627"},
		{Species: "10090", SpeciesGene: "16847", HumanGene: "3953"},
		{Species: "10090", SpeciesGene: "200", HumanGene: "201"},
		{Species: "10090", SpeciesGene: "200", HumanGene: "202"},
	}, got)

	_, err = ReadJAX(strings.NewReader("DB Class Key\tSymbol\n1\tGata6\n"))
	assert.ErrorIs(t, err, table.ErrNoColumn)
}

func TestReadHCOP(t *testing.T) {
	got, err := ReadHCOP(strings.NewReader(gzipped(t, hcopTable)))
	require.NoError(t, err)
	require.Len(t, got, 5, "non-numeric genes omitted")
	assert.Equal(t, []string{"Ensembl", "HGNC", "OMA"}, got[0].Support)

	assert.Equal(t, []Mapping{
		{Species: "10090", SpeciesGene: "14465", HumanGene: "2627"},
		{Species: "9598", SpeciesGene: "456", HumanGene: "7157"},
		{Species: "10090", SpeciesGene: "13649", HumanGene: "1956"},
	}, Filter(got, []string{"Ensembl"}))
	assert.Equal(t, []Mapping{
		{Species: "9598", SpeciesGene: "456", HumanGene: "7157"},
		{Species: "10090", SpeciesGene: "13649", HumanGene: "1956"},
	}, Filter(got, []string{"Panther"}))
	assert.Empty(t, Filter(got, nil))

	_, err = ReadHCOP(strings.NewReader(hcopTable))
	assert.Error(t, err, "uncompressed input")
}

func TestValidateDatabases(t *testing.T) {
	assert.NoError(t, ValidateDatabases(Databases))
	assert.NoError(t, ValidateDatabases(nil))
	err := ValidateDatabases([]string{"JAX", "Bogus"})
	assert.ErrorIs(t, err, ErrInvalidDatabase)
	assert.ErrorContains(t, err, "Bogus")
}

func TestUnavailable(t *testing.T) {
	assert.Equal(t, []string{"99", "1234", "abc"}, Unavailable([]string{"9606", "10090", "1234", "abc", "99", "1234"}))
	assert.Empty(t, Unavailable([]string{"9606", "7955", "284812"}))

	cov := SpeciesCoverage()
	assert.Equal(t, []string{"7955", "10090", "10116"}, cov[JAX])
	cov[JAX][0] = "0"
	assert.Equal(t, "7955", SpeciesCoverage()[JAX][0], "coverage table is copied")
}

func newMapper(t *testing.T, log *zap.Logger) (*Mapper, *fakeFetcher) {
	f := newFakeFetcher(t)
	return &Mapper{Fetcher: f, JAX: jaxURL, HCOP: hcopURL, Log: log}, f
}

func TestMap(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	m, f := newMapper(t, zap.New(core))

	in := table.New("sample", "taxonomy", "entrez_gene", "human_entrez_gene")
	for _, r := range [][]string{
		{"a", "10090", "14465", "stale"},
		{"b", "9606", "7157", ""},
		{"c", "10090", "16847", ""},
		{"d", "9598", "456", ""},
		{"e", "10090", "00000", ""},
		{"f", "1234", "5", ""},
	} {
		require.NoError(t, in.AddRow(r...))
	}

	out, err := m.Map(context.Background(), in, "taxonomy", "entrez_gene", "human_entrez_gene", []string{"Ensembl", "JAX"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sample", "taxonomy", "entrez_gene", "human_entrez_gene"}, out.Columns())
	got, err := out.Column("human_entrez_gene")
	require.NoError(t, err)
	assert.Equal(t, []string{"2627", "7157", "3953", "7157", "", ""}, got)
	assert.Equal(t, "stale", in.Get(0, "human_entrez_gene"), "input table unaltered")

	assert.Equal(t, map[string]int{jaxURL: 1, hcopURL: 1}, f.fetches)

	warn := logs.FilterMessage("ortholog species not available").All()
	require.Len(t, warn, 1)
	assert.Equal(t, []interface{}{"1234"}, warn[0].ContextMap()["species"])
}

func TestMapJAXOnly(t *testing.T) {
	m, f := newMapper(t, nil)

	in := table.New("taxonomy", "entrez_gene")
	require.NoError(t, in.AddRow("10090", "200"))
	require.NoError(t, in.AddRow("10116", "25682"))

	out, err := m.Map(context.Background(), in, "taxonomy", "entrez_gene", "human", []string{"JAX"})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Len(), "multiple orthologs repeat rows")
	assert.Equal(t, []string{"10090", "200", "201"}, out.Row(0))
	assert.Equal(t, []string{"10090", "200", "202"}, out.Row(1))
	assert.Equal(t, []string{"10116", "25682", "2627"}, out.Row(2))

	assert.Equal(t, map[string]int{jaxURL: 1}, f.fetches, "HCOP not fetched")
}

func TestMapErrors(t *testing.T) {
	m, f := newMapper(t, nil)
	in := table.New("taxonomy", "entrez_gene")

	_, err := m.Map(context.Background(), in, "taxonomy", "entrez_gene", "human", []string{"Ensembl", "Bogus"})
	assert.ErrorIs(t, err, ErrInvalidDatabase)
	assert.Empty(t, f.fetches, "invalid selection fetches nothing")

	_, err = m.Map(context.Background(), in, "species", "entrez_gene", "human", []string{"JAX"})
	assert.ErrorIs(t, err, table.ErrNoColumn)

	m.JAX = "https://example.org/missing"
	_, err = m.Map(context.Background(), in, "taxonomy", "entrez_gene", "human", []string{"JAX"})
	assert.ErrorContains(t, err, "no resource")
}

func TestCompare(t *testing.T) {
	m, _ := newMapper(t, nil)
	got, err := m.Compare(context.Background(), []string{"Ensembl"})
	require.NoError(t, err)
	assert.Equal(t, []Comparison{
		{Species: "10090", SpeciesGene: "14465", JAXHuman: "2627", HCOPHuman: "2627"},
		{Species: "10116", SpeciesGene: "25682", JAXHuman: "2627"},
		{Species: "10090", SpeciesGene: "16847", JAXHuman: "3953"},
		{Species: "10090", SpeciesGene: "200", JAXHuman: "201"},
		{Species: "10090", SpeciesGene: "200", JAXHuman: "202"},
	}, got)
}

func TestSpeciesByDatabase(t *testing.T) {
	m, f := newMapper(t, nil)
	got, err := m.SpeciesByDatabase(context.Background(), []string{"JAX", "Ensembl", "Panther"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"JAX":     {"10090", "10116"},
		"Ensembl": {"9598", "10090"},
		"Panther": {"9598", "10090"},
	}, got)
	assert.Equal(t, map[string]int{jaxURL: 1, hcopURL: 1}, f.fetches, "each table fetched once")
}

func TestStatistics(t *testing.T) {
	m, _ := newMapper(t, nil)
	got, err := m.Statistics(context.Background(), []string{"JAX", "Panther"})
	require.NoError(t, err)
	assert.Equal(t, []Statistic{
		{Species: "9598", Database: "Panther", HumanGenes: 1, Orthologs: 1, OrthologsPerHumanGene: 1},
		{Species: "10090", Database: "JAX", HumanGenes: 4, Orthologs: 3, OrthologsPerHumanGene: 0.75},
		{Species: "10090", Database: "Panther", HumanGenes: 1, Orthologs: 1, OrthologsPerHumanGene: 1},
		{Species: "10116", Database: "JAX", HumanGenes: 1, Orthologs: 1, OrthologsPerHumanGene: 1},
	}, got)
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/HOM_AllOrganism.rpt" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, jaxReport)
	}))
	defer srv.Close()

	var f HTTPFetcher
	rc, err := f.Fetch(context.Background(), srv.URL+"/HOM_AllOrganism.rpt")
	require.NoError(t, err)
	defer rc.Close()
	got, err := ReadJAX(rc)
	require.NoError(t, err)
	assert.Len(t, got, 5)

	_, err = f.Fetch(context.Background(), srv.URL+"/missing")
	assert.ErrorContains(t, err, "404")
}
