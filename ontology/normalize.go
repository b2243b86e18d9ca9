// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ontology

import (
	"strings"

	"github.com/gedex/inflector"
)

// Positions are the anatomical position qualifiers removed by
// Unpositioned.
var Positions = []string{"left ", "right ", "medial ", "peripheral "}

// Lower returns the lower case form of term.
func Lower(term string) string {
	return strings.ToLower(term)
}

// Unpositioned returns the lower case form of term with all anatomical
// position qualifiers removed. Qualifiers are only removed where they
// begin a word, so "upright spine" is left unaltered.
func Unpositioned(term string) string {
	term = Lower(term)
	var b strings.Builder
	for i := 0; i < len(term); {
		if i == 0 || term[i-1] == ' ' {
			if p, ok := positionAt(term[i:]); ok {
				i += len(p)
				continue
			}
		}
		b.WriteByte(term[i])
		i++
	}
	return b.String()
}

// positionAt returns the position qualifier that s starts with.
func positionAt(s string) (string, bool) {
	for _, p := range Positions {
		if strings.HasPrefix(s, p) {
			return p, true
		}
	}
	return "", false
}

// irregular holds plurals not handled by the inflector rules.
var irregular = map[string]string{
	"feet":    "foot",
	"teeth":   "tooth",
	"geese":   "goose",
	"mice":    "mouse",
	"lice":    "louse",
	"ova":     "ovum",
	"ganglia": "ganglion",
	"bronchi": "bronchus",
	"alveoli": "alveolus",
	"villi":   "villus",
}

// Singular returns the lower case singular form of term. Only the last
// word of a multi-word term is singularized.
func Singular(term string) string {
	term = Lower(term)
	i := strings.LastIndexByte(term, ' ') + 1
	prefix, last := term[:i], term[i:]
	if last == "" {
		return term
	}
	if s, ok := irregular[last]; ok {
		return prefix + s
	}
	return prefix + strings.ToLower(inflector.Singularize(last))
}

// Normalizer is a term normalization pass.
type Normalizer struct {
	Name string
	Func func(string) string
}

// Passes are the normalization passes applied by Map in priority order.
var Passes = []Normalizer{
	{Name: "lower", Func: Lower},
	{Name: "nopos", Func: Unpositioned},
	{Name: "singular", Func: Singular},
}
