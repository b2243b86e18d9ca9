// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ortholog

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/exp/maps"
)

// Comparison is a JAX ortholog mapping and a corresponding HCOP mapping
// for the same species gene.
type Comparison struct {
	Species     string
	SpeciesGene string
	JAXHuman    string
	HCOPHuman   string // Empty if there is no HCOP mapping.
}

// Compare returns the JAX mappings left joined with the HCOP mappings
// supported by the selected databases on species and species gene.
func (m *Mapper) Compare(ctx context.Context, dbs []string) ([]Comparison, error) {
	err := ValidateDatabases(dbs)
	if err != nil {
		return nil, err
	}
	hcop, err := m.hcop(ctx)
	if err != nil {
		return nil, err
	}
	jax, err := m.jax(ctx)
	if err != nil {
		return nil, err
	}

	type key struct{ species, gene string }
	human := make(map[key][]string)
	for _, h := range Filter(hcop, dbs) {
		k := key{h.Species, h.SpeciesGene}
		human[k] = append(human[k], h.HumanGene)
	}
	var c []Comparison
	for _, j := range jax {
		hs := human[key{j.Species, j.SpeciesGene}]
		if len(hs) == 0 {
			c = append(c, Comparison{Species: j.Species, SpeciesGene: j.SpeciesGene, JAXHuman: j.HumanGene})
			continue
		}
		for _, h := range hs {
			c = append(c, Comparison{Species: j.Species, SpeciesGene: j.SpeciesGene, JAXHuman: j.HumanGene, HCOPHuman: h})
		}
	}
	return c, nil
}

// perDatabase returns the mappings of each of dbs, fetching each source
// table at most once. If dbs is empty all Databases are used.
func (m *Mapper) perDatabase(ctx context.Context, dbs []string) (map[string][]Mapping, error) {
	if len(dbs) == 0 {
		dbs = Databases
	}
	err := ValidateDatabases(dbs)
	if err != nil {
		return nil, err
	}
	per := make(map[string][]Mapping, len(dbs))
	var (
		hcop    []Supported
		fetched bool
	)
	for _, db := range dbs {
		if db == JAX {
			jax, err := m.jax(ctx)
			if err != nil {
				return nil, err
			}
			per[db] = dedupe(jax)
			continue
		}
		if !fetched {
			hcop, err = m.hcop(ctx)
			if err != nil {
				return nil, err
			}
			fetched = true
		}
		per[db] = Filter(hcop, []string{db})
		m.log().Debug("database mappings", zap.String("database", db), zap.Int("mappings", len(per[db])))
	}
	return per, nil
}

// SpeciesByDatabase returns the species with ortholog mappings in each
// of the selected databases in ascending numerical order. If dbs is
// empty all Databases are used.
func (m *Mapper) SpeciesByDatabase(ctx context.Context, dbs []string) (map[string][]string, error) {
	per, err := m.perDatabase(ctx, dbs)
	if err != nil {
		return nil, err
	}
	species := make(map[string][]string, len(per))
	for db, mappings := range per {
		set := make(map[string]bool)
		for _, v := range mappings {
			set[v.Species] = true
		}
		s := maps.Keys(set)
		sortTaxa(s)
		species[db] = s
	}
	return species, nil
}

// Statistic is a summary of the ortholog mappings of a species in a
// database.
type Statistic struct {
	Species  string
	Database string

	// HumanGenes and Orthologs are the numbers of distinct
	// human genes and species genes in the mappings.
	HumanGenes int
	Orthologs  int

	OrthologsPerHumanGene float64
}

// Statistics returns ortholog mapping statistics for each species in the
// selected databases, ordered by species and then by orthologs per human
// gene. If dbs is empty all Databases are used.
func (m *Mapper) Statistics(ctx context.Context, dbs []string) ([]Statistic, error) {
	per, err := m.perDatabase(ctx, dbs)
	if err != nil {
		return nil, err
	}

	var stats []Statistic
	for db, mappings := range per {
		type genes struct{ human, ortholog map[string]bool }
		bySpecies := make(map[string]genes)
		for _, v := range mappings {
			g, ok := bySpecies[v.Species]
			if !ok {
				g = genes{human: make(map[string]bool), ortholog: make(map[string]bool)}
				bySpecies[v.Species] = g
			}
			g.human[v.HumanGene] = true
			g.ortholog[v.SpeciesGene] = true
		}
		for s, g := range bySpecies {
			stats = append(stats, Statistic{
				Species:               s,
				Database:              db,
				HumanGenes:            len(g.human),
				Orthologs:             len(g.ortholog),
				OrthologsPerHumanGene: float64(len(g.ortholog)) / float64(len(g.human)),
			})
		}
	}

	order := make(map[string]int)
	taxa := make([]string, 0, len(stats))
	for _, s := range stats {
		if _, ok := order[s.Species]; !ok {
			order[s.Species] = 0
			taxa = append(taxa, s.Species)
		}
	}
	sortTaxa(taxa)
	for i, s := range taxa {
		order[s] = i
	}
	sort.Slice(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		if a.Species != b.Species {
			return order[a.Species] < order[b.Species]
		}
		if a.OrthologsPerHumanGene != b.OrthologsPerHumanGene {
			return a.OrthologsPerHumanGene < b.OrthologsPerHumanGene
		}
		return a.Database < b.Database
	})
	return stats, nil
}
