// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/kortschak/spoke/ontology"
	"github.com/kortschak/spoke/ortholog"
	"github.com/kortschak/spoke/table"
)

// readTable reads the tab-separated table named by the single argument
// of a table command.
func (e *env) readTable(args []string) (*table.Table, error) {
	if len(args) != 1 {
		return nil, errUsage
	}
	r, err := e.openInput(args[0])
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return table.ReadTSV(r, table.Options{})
}

func mapOntologyCmd(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("map-ontology", "<table.tsv>")
	onto := fs.String("ontology", "UBERON", "comma-separated recommender ontology acronyms")
	input := fs.String("input", "", "input column of terms")
	output := fs.String("output", "", "output column of ontology identifiers")
	err := fs.Parse(args)
	if err != nil {
		return err
	}
	if *input == "" || *output == "" {
		fs.Usage()
		return errUsage
	}
	t, err := e.readTable(fs.Args())
	if err != nil {
		if err == errUsage {
			fs.Usage()
		}
		return err
	}
	if e.cfg.BioPortal.APIKey == "" {
		e.log.Warn("no BioPortal API key configured")
	}

	m := &ontology.Mapper{
		Recommender: ontology.NewBioPortal(e.cfg.BioPortal, e.log),
		Ontology:    *onto,
		Log:         e.log,
	}
	err = m.Map(ctx, t, *input, *output)
	if err != nil {
		return err
	}
	return t.WriteTSV(e.stdout)
}

func mapOrthologsCmd(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("map-orthologs", "<table.tsv>")
	species := fs.String("species", "taxonomy", "input column of NCBI taxonomy identifiers")
	gene := fs.String("gene", "entrez_gene", "input column of species Entrez gene identifiers")
	human := fs.String("human", "human_entrez_gene", "output column of human Entrez gene identifiers")
	dbs := fs.String("dbs", "JAX,Ensembl", "comma-separated ortholog databases: "+strings.Join(ortholog.Databases, ","))
	err := fs.Parse(args)
	if err != nil {
		return err
	}
	t, err := e.readTable(fs.Args())
	if err != nil {
		if err == errUsage {
			fs.Usage()
		}
		return err
	}

	m := ortholog.NewMapper(e.cfg.Orthologs, e.log)
	t, err = m.Map(ctx, t, *species, *gene, *human, list(*dbs))
	if err != nil {
		return err
	}
	return t.WriteTSV(e.stdout)
}

func orthologStatsCmd(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("ortholog-stats", "")
	dbs := fs.String("dbs", "", "comma-separated ortholog databases (default all)")
	bySpecies := fs.Bool("species", false, "list the species covered by each database")
	compare := fs.Bool("compare", false, "compare JAX mappings with the selected HCOP databases")
	err := fs.Parse(args)
	if err != nil {
		return err
	}
	m := ortholog.NewMapper(e.cfg.Orthologs, e.log)
	selected := list(*dbs)

	switch {
	case *compare:
		c, err := m.Compare(ctx, selected)
		if err != nil {
			return err
		}
		t := table.New("ortholog_species", "ortholog_species_entrez_gene", "human_entrez_gene_jax", "human_entrez_gene_hgnc")
		for _, v := range c {
			t.AddRow(v.Species, v.SpeciesGene, v.JAXHuman, v.HCOPHuman)
		}
		return t.WriteTSV(e.stdout)

	case *bySpecies:
		species, err := m.SpeciesByDatabase(ctx, selected)
		if err != nil {
			return err
		}
		t := table.New("db", "ortholog_species")
		for _, db := range ortholog.Databases {
			s, ok := species[db]
			if !ok {
				continue
			}
			t.AddRow(db, strings.Join(s, ","))
		}
		return t.WriteTSV(e.stdout)

	default:
		stats, err := m.Statistics(ctx, selected)
		if err != nil {
			return err
		}
		t := table.New("ortholog_species", "db", "human_genes", "orthologs", "orthologs_per_human_gene")
		for _, s := range stats {
			t.AddRow(s.Species, s.Database, strconv.Itoa(s.HumanGenes), strconv.Itoa(s.Orthologs), strconv.FormatFloat(s.OrthologsPerHumanGene, 'g', 4, 64))
		}
		return t.WriteTSV(e.stdout)
	}
}
