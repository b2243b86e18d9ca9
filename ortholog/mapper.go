// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ortholog maps model organism genes to their human orthologs
// using the JAX vertebrate homology report and the HGNC Comparison of
// Orthology Predictions (HCOP).
package ortholog

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/kortschak/spoke/config"
	"github.com/kortschak/spoke/table"
)

// Mapper maps genes to human orthologs. The ortholog tables are fetched
// on each call and are not cached.
type Mapper struct {
	Fetcher Fetcher

	// JAX and HCOP are the locations of the JAX homology
	// report and the gzipped HCOP sixteen column table.
	JAX  string
	HCOP string

	// Log is used for progress logging and species warnings.
	// If nil no logging is performed.
	Log *zap.Logger
}

// NewMapper returns a Mapper fetching the ortholog tables over HTTP from
// the locations in cfg.
func NewMapper(cfg config.Orthologs, log *zap.Logger) *Mapper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mapper{
		Fetcher: HTTPFetcher{
			Client: &http.Client{Timeout: time.Duration(cfg.Timeout)},
			Log:    log,
		},
		JAX:  cfg.JAX,
		HCOP: cfg.HCOP,
		Log:  log,
	}
}

func (m *Mapper) log() *zap.Logger {
	if m.Log == nil {
		return zap.NewNop()
	}
	return m.Log
}

func (m *Mapper) jax(ctx context.Context) ([]Mapping, error) {
	r, err := m.Fetcher.Fetch(ctx, m.JAX)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ReadJAX(r)
}

func (m *Mapper) hcop(ctx context.Context) ([]Supported, error) {
	r, err := m.Fetcher.Fetch(ctx, m.HCOP)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ReadHCOP(r)
}

// Mappings returns the distinct ortholog mappings supported by the
// selected databases. The HCOP table is only fetched when a database
// other than JAX is selected.
func (m *Mapper) Mappings(ctx context.Context, dbs []string) ([]Mapping, error) {
	err := ValidateDatabases(dbs)
	if err != nil {
		return nil, err
	}

	var all []Mapping
	if needHCOP(dbs) {
		hcop, err := m.hcop(ctx)
		if err != nil {
			return nil, err
		}
		all = Filter(hcop, dbs)
	}
	if slices.Contains(dbs, JAX) {
		jax, err := m.jax(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, jax...)
	}
	all = dedupe(all)
	m.log().Info("loaded ortholog mappings", zap.Strings("databases", dbs), zap.Int("mappings", len(all)))
	return all, nil
}

// needHCOP returns whether any of dbs is provided by the HCOP table.
func needHCOP(dbs []string) bool {
	for _, db := range dbs {
		if db != JAX {
			return true
		}
	}
	return false
}

// dedupe removes repeated mappings in place, retaining the first.
func dedupe(m []Mapping) []Mapping {
	seen := make(map[Mapping]bool, len(m))
	u := m[:0]
	for _, v := range m {
		if seen[v] {
			continue
		}
		seen[v] = true
		u = append(u, v)
	}
	return u
}

// Map returns a table holding the rows of t with an added human column
// holding the human ortholog of the gene in the gene column for the
// species in the species column. Orthologs are taken from the selected
// databases. Rows with a gene mapping to more than one human gene are
// repeated for each ortholog. Human genes are copied to the human column
// and genes without a human ortholog are mapped to the empty string.
// If t already has the human column it is replaced.
//
// Database selections are validated before any table is fetched, and a
// warning is logged for species that are not available in any database.
func (m *Mapper) Map(ctx context.Context, t *table.Table, species, gene, human string, dbs []string) (*table.Table, error) {
	err := ValidateDatabases(dbs)
	if err != nil {
		return nil, err
	}
	for _, c := range []string{species, gene} {
		if !t.HasColumn(c) {
			return nil, fmt.Errorf("ortholog: %w: %q", table.ErrNoColumn, c)
		}
	}
	requested, err := t.Unique(species)
	if err != nil {
		return nil, err
	}
	CheckSpecies(m.log(), requested, dbs)

	mappings, err := m.Mappings(ctx, dbs)
	if err != nil {
		return nil, err
	}
	return join(t, mappings, species, gene, human), nil
}

// join left joins t with mappings on the species and gene columns.
func join(t *table.Table, mappings []Mapping, species, gene, human string) *table.Table {
	type key struct{ species, gene string }
	orthologs := make(map[key][]string)
	for _, m := range mappings {
		k := key{m.Species, m.SpeciesGene}
		orthologs[k] = append(orthologs[k], m.HumanGene)
	}

	var cols []string
	for _, c := range t.Columns() {
		if c != human {
			cols = append(cols, c)
		}
	}
	dst := table.New(append(cols, human)...)
	row := make([]string, len(cols)+1)
	for i := 0; i < t.Len(); i++ {
		for j, c := range cols {
			row[j] = t.Get(i, c)
		}
		s, g := t.Get(i, species), t.Get(i, gene)
		if s == Human {
			row[len(cols)] = g
			dst.AddRow(row...)
			continue
		}
		hs := orthologs[key{s, g}]
		if len(hs) == 0 {
			row[len(cols)] = ""
			dst.AddRow(row...)
			continue
		}
		for _, h := range hs {
			row[len(cols)] = h
			dst.AddRow(row...)
		}
	}
	return dst
}
