// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vis

// DefaultColor is the color of nodes with a type that has no style.
const DefaultColor = "#80899a"

// Style is the rendering style of a node type.
type Style struct {
	Color string

	// Label is the node property used as the node's
	// label. If empty, "name" is used.
	Label string
}

var defaultStyles = map[string]Style{
	"Protein":            {Color: "#01C0B5"},
	"Compound":           {Color: "#C51CC6"},
	"Variant":            {Color: "#8391BB"},
	"Reaction":           {Color: "#FF67FF"},
	"Gene":               {Color: "#3863F2"},
	"ProteinDomain":      {Color: "#81BBB8"},
	"DietarySupplement":  {Color: "#63bde8"},
	"Anatomy":            {Color: "#00C459"},
	"BiologicalProcess":  {Color: "#E79F0C"},
	"Food":               {Color: "#FFA726"},
	"Organism":           {Color: "#666600"},
	"Disease":            {Color: "#FE2B59"},
	"EC":                 {Color: "#9933FF"},
	"SideEffect":         {Color: "#8ACFF6"},
	"Pathway":            {Color: "#FFC80D"},
	"PwGroup":            {Color: "#FFC80D"},
	"Complex":            {Color: "#0F8A84"},
	"MolecularFunction":  {Color: "#FF8E00"},
	"CellType":           {Color: "#51B961"},
	"MiRNA":              {Color: "#3863F2"},
	"Haplotype":          {Color: "#8391BB"},
	"CellularComponent":  {Color: "#FF4D0D"},
	"Symptom":            {Color: "#FDC3FD"},
	"Cytoband":           {Color: "#8391BB"},
	"ProteinFamily":      {Color: "#177C77"},
	"None":               {Color: DefaultColor},
	"PharmacologicClass": {Color: "#BEBADA"},
}

// DefaultStyles returns a copy of the SPOKE node type styles.
func DefaultStyles() map[string]Style {
	s := make(map[string]Style, len(defaultStyles))
	for k, v := range defaultStyles {
		s[k] = v
	}
	return s
}
