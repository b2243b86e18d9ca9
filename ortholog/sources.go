// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ortholog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/klauspost/pgzip"
	"go.uber.org/zap"

	"github.com/kortschak/spoke/table"
)

// Mapping is a mapping from a gene in a species to a human ortholog.
type Mapping struct {
	Species     string // NCBI taxonomy identifier.
	SpeciesGene string // Entrez gene identifier.
	HumanGene   string // Entrez gene identifier.
}

// Supported is a Mapping and the databases supporting it.
type Supported struct {
	Mapping
	Support []string
}

// Fetcher opens remote resources.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// HTTPFetcher is a Fetcher that performs HTTP GET requests.
type HTTPFetcher struct {
	Client *http.Client
	Log    *zap.Logger
}

// Fetch returns the body of the resource at url. Non-2xx responses are
// returned as errors.
func (f HTTPFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	if f.Log != nil {
		f.Log.Info("fetching", zap.String("url", url))
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ortholog: failed to fetch %s: %w", url, err)
	}
	if resp.StatusCode < 200 || 300 <= resp.StatusCode {
		resp.Body.Close()
		return nil, fmt.Errorf("ortholog: failed to fetch %s: %s", url, resp.Status)
	}
	return resp.Body, nil
}

// JAX homology report columns.
const (
	jaxClass = "DB Class Key"
	jaxTaxon = "NCBI Taxon ID"
	jaxGene  = "EntrezGene ID"
)

// jaxSpecies is the set of species retained from the JAX report.
var jaxSpecies = map[string]bool{
	"10090": true, // Mus musculus
	"10116": true, // Rattus norvegicus
	"7955":  true, // Danio rerio
	Human:   true,
}

// ReadJAX returns the ortholog mappings in a JAX HOM_AllOrganism report.
// Non-human genes are mapped to the human genes in the same homology
// class. Only mouse, rat and zebrafish genes are mapped, and genes
// mapping to themselves are omitted.
func ReadJAX(r io.Reader) ([]Mapping, error) {
	t, err := table.ReadTSV(r, table.Options{Columns: []string{jaxClass, jaxTaxon, jaxGene}})
	if err != nil {
		return nil, fmt.Errorf("ortholog: reading JAX report: %w", err)
	}

	human := make(map[string][]string)
	type member struct{ class, species, gene string }
	var others []member
	for i := 0; i < t.Len(); i++ {
		class, species, gene := t.Get(i, jaxClass), t.Get(i, jaxTaxon), t.Get(i, jaxGene)
		if !jaxSpecies[species] {
			continue
		}
		if species == Human {
			human[class] = append(human[class], gene)
			continue
		}
		others = append(others, member{class: class, species: species, gene: gene})
	}

	var m []Mapping
	for _, o := range others {
		for _, h := range human[o.class] {
			if o.gene == h {
				continue
			}
			m = append(m, Mapping{Species: o.species, SpeciesGene: o.gene, HumanGene: h})
		}
	}
	return m, nil
}

// HCOP ortholog table columns.
const (
	hcopSpecies = "ortholog_species"
	hcopGene    = "ortholog_species_entrez_gene"
	hcopHuman   = "human_entrez_gene"
	hcopSupport = "support"
)

// ReadHCOP returns the ortholog mappings in a gzip compressed HCOP
// sixteen column table. Mappings without numeric Entrez gene
// identifiers are omitted.
func ReadHCOP(r io.Reader) ([]Supported, error) {
	gz, err := pgzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("ortholog: reading HCOP table: %w", err)
	}
	defer gz.Close()
	t, err := table.ReadTSV(gz, table.Options{Columns: []string{hcopSpecies, hcopGene, hcopHuman, hcopSupport}})
	if err != nil {
		return nil, fmt.Errorf("ortholog: reading HCOP table: %w", err)
	}

	var m []Supported
	for i := 0; i < t.Len(); i++ {
		gene, human := t.Get(i, hcopGene), t.Get(i, hcopHuman)
		if !isDigits(gene) || !isDigits(human) {
			continue
		}
		m = append(m, Supported{
			Mapping: Mapping{
				Species:     t.Get(i, hcopSpecies),
				SpeciesGene: gene,
				HumanGene:   human,
			},
			Support: strings.Split(t.Get(i, hcopSupport), ","),
		})
	}
	return m, nil
}

// Filter returns the distinct mappings supported by at least one of
// the given databases, in order of first appearance.
func Filter(m []Supported, dbs []string) []Mapping {
	sel := make(map[string]bool, len(dbs))
	for _, db := range dbs {
		sel[db] = true
	}
	var f []Mapping
	seen := make(map[Mapping]bool)
	for _, s := range m {
		if seen[s.Mapping] {
			continue
		}
		for _, db := range s.Support {
			if sel[db] {
				seen[s.Mapping] = true
				f = append(f, s.Mapping)
				break
			}
		}
	}
	return f
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || '9' < c {
			return false
		}
	}
	return true
}
