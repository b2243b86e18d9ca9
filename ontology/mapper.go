// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ontology maps free text terms to ontology classes using a
// remote recommender service.
package ontology

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kortschak/spoke/table"
)

// OBOPrefix is the IRI prefix of OBO Foundry classes.
const OBOPrefix = "http://purl.obolibrary.org/obo/"

// CURIE returns the compact form of an OBO class IRI, so
// http://purl.obolibrary.org/obo/UBERON_0002107 is returned as
// UBERON:0002107.
func CURIE(iri string) string {
	return strings.ReplaceAll(strings.ReplaceAll(iri, OBOPrefix, ""), "_", ":")
}

// Mapper maps table columns of terms to ontology class identifiers.
type Mapper struct {
	Recommender Recommender

	// Ontology is the recommender ontology acronym, for
	// example UBERON. Multiple ontologies may be given as a
	// comma separated list.
	Ontology string

	// Log is used for progress logging. If nil no logging
	// is performed.
	Log *zap.Logger
}

// Map sets the output column of t to the best matching ontology class
// for the terms in the input column. Terms are matched in each of the
// normalization Passes with the first matching pass taking priority.
// Each pass makes a single recommender request for the distinct terms
// in the pass. Terms without a match are mapped to the empty string.
// If the output column exists it is replaced.
//
// Recommender errors are returned and the table is left unaltered.
func (m *Mapper) Map(ctx context.Context, t *table.Table, input, output string) error {
	terms, err := t.Column(input)
	if err != nil {
		return fmt.Errorf("ontology: %w", err)
	}
	log := m.Log
	if log == nil {
		log = zap.NewNop()
	}

	ids := make([]string, len(terms))
	for _, pass := range Passes {
		forms := make([]string, len(terms))
		var uniq []string
		seen := make(map[string]bool)
		for i, term := range terms {
			f := pass.Func(term)
			forms[i] = f
			if f == "" || seen[f] {
				continue
			}
			seen[f] = true
			uniq = append(uniq, f)
		}
		if len(uniq) == 0 {
			continue
		}

		match, err := m.match(ctx, uniq)
		if err != nil {
			return err
		}
		var n int
		for i, f := range forms {
			if ids[i] != "" {
				continue
			}
			if id, ok := match[f]; ok {
				ids[i] = id
				n++
			}
		}
		log.Info("mapped terms", zap.String("pass", pass.Name), zap.Int("terms", len(uniq)), zap.Int("matches", len(match)), zap.Int("rows", n))
	}

	for i, id := range ids {
		ids[i] = CURIE(id)
	}
	return t.AddColumn(output, ids)
}

// match returns a map from lower case annotated text to the class IRI of
// the first annotation for the text.
func (m *Mapper) match(ctx context.Context, terms []string) (map[string]string, error) {
	anns, err := m.Recommender.Recommend(ctx, terms, m.Ontology)
	if err != nil {
		return nil, err
	}
	match := make(map[string]string, len(anns))
	for _, a := range anns {
		text := strings.ToLower(a.Text)
		if _, ok := match[text]; ok || a.Class == "" {
			continue
		}
		match[text] = a.Class
	}
	return match, nil
}
