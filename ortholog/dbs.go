// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ortholog

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Human is the NCBI taxonomy identifier of Homo sapiens.
const Human = "9606"

// JAX is the name of the Jackson Laboratory vertebrate homology database.
const JAX = "JAX"

// Databases is the set of ortholog databases that may be selected.
// JAX mappings are obtained from the JAX vertebrate homology report and
// the remaining databases from the HGNC comparison of orthology
// predictions.
var Databases = []string{
	JAX, "Ensembl", "Treefam", "OMA", "EggNOG", "PhylomeDB", "OrthoDB", "Panther",
	"NCBI", "HomoloGene", "Inparanoid", "OrthoMCL", "HGNC", "ZFIN", "PomBase",
}

// ErrInvalidDatabase is returned when a selected database is not one of
// Databases.
var ErrInvalidDatabase = errors.New("ortholog: invalid database")

// ValidateDatabases returns an error wrapping ErrInvalidDatabase if any
// of dbs is not in Databases.
func ValidateDatabases(dbs []string) error {
	var invalid []string
	for _, db := range dbs {
		if !slices.Contains(Databases, db) {
			invalid = append(invalid, db)
		}
	}
	if len(invalid) != 0 {
		return fmt.Errorf("%w: %s: valid values: %s", ErrInvalidDatabase, strings.Join(invalid, ","), strings.Join(Databases, ","))
	}
	return nil
}

// coverage is the set of non-human species taxonomy identifiers with
// ortholog mappings in each database.
var coverage = map[string][]string{
	"Panther":    {"4932", "6239", "7227", "7955", "8364", "9031", "9258", "9544", "9598", "9615", "9685", "9796", "9823", "9913", "10090", "10116", "13616", "28377", "284812"},
	"HGNC":       {"10090"},
	"Ensembl":    {"4932", "6239", "7227", "7955", "8364", "9031", "9258", "9544", "9598", "9615", "9685", "9796", "9823", "9913", "10090", "10116", "13616", "28377", "284812"},
	"EggNOG":     {"4932", "6239", "7227", "7955", "8364", "9031", "9258", "9544", "9598", "9615", "9685", "9823", "9913", "10090", "10116", "13616", "28377", "284812"},
	"PomBase":    {"284812"},
	"ZFIN":       {"7955"},
	"HomoloGene": {"4932", "6239", "7227", "7955", "8364", "9031", "9544", "9598", "9615", "9913", "10090", "10116", "284812"},
	"PhylomeDB":  {"4932", "6239", "7227", "7955", "8364", "9031", "9258", "9544", "9598", "9615", "9913", "10090", "10116", "13616", "284812"},
	"Treefam":    {"6239", "7227", "7955", "8364", "9031", "9258", "9544", "9598", "9796", "9823", "9913", "10090", "10116", "13616", "28377"},
	JAX:          {"7955", "10090", "10116"},
	"OMA":        {"4932", "6239", "7227", "7955", "8364", "9031", "9258", "9544", "9598", "9615", "9685", "9796", "9823", "9913", "10090", "10116", "13616", "28377", "284812"},
	"OrthoDB":    {"6239", "7227", "7955", "8364", "9031", "9258", "9544", "9598", "9615", "9685", "9796", "9823", "9913", "10090", "10116", "13616", "28377"},
	"NCBI":       {"7955", "8364", "9031", "9258", "9544", "9598", "9615", "9685", "9796", "9823", "9913", "10090", "10116", "13616", "28377"},
	"Inparanoid": {"4932", "6239", "7227", "7955", "8364", "9031", "9258", "9544", "9598", "9615", "9685", "9796", "9823", "9913", "10090", "10116", "13616", "28377", "284812"},
}

// SpeciesCoverage returns the static table of species with ortholog
// mappings, keyed by database name. Databases without a known coverage
// table are absent.
func SpeciesCoverage() map[string][]string {
	c := make(map[string][]string, len(coverage))
	for db, species := range coverage {
		c[db] = slices.Clone(species)
	}
	return c
}

// Unavailable returns the species in the given list that are neither
// human nor covered by any database in the species coverage table. The
// result is in ascending numerical order.
func Unavailable(species []string) []string {
	available := map[string]bool{Human: true}
	for _, s := range coverage {
		for _, id := range s {
			available[id] = true
		}
	}
	missing := make(map[string]bool)
	for _, s := range species {
		if !available[s] {
			missing[s] = true
		}
	}
	m := maps.Keys(missing)
	sortTaxa(m)
	return m
}

// CheckSpecies logs a warning listing the species that are not available
// in any known database. It returns whether all species are available.
func CheckSpecies(log *zap.Logger, species, dbs []string) bool {
	missing := Unavailable(species)
	if len(missing) == 0 {
		return true
	}
	if log != nil {
		log.Warn("ortholog species not available",
			zap.Strings("species", missing),
			zap.Strings("databases", dbs),
		)
	}
	return false
}

// sortTaxa sorts taxonomy identifiers numerically, placing non-numeric
// identifiers last in lexical order.
func sortTaxa(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		b, errB := strconv.Atoi(ids[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return ids[i] < ids[j]
		}
	})
}
