// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cypher

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Direction is the direction of a metapath relationship relative
// to the order of the path.
type Direction int

const (
	Both     Direction = iota // (a)-[:T]-(b)
	Forward                   // (a)-[:T]->(b)
	Backward                  // (a)<-[:T]-(b)
)

// NodeStep is a typed node in a metapath.
type NodeStep struct {
	Var   string
	Label string
}

// RelStep is a typed relationship in a metapath.
type RelStep struct {
	Type string
	Dir  Direction
}

// Metapath is a chain of typed nodes joined by typed relationships. Node
// variables are n0 through nk in path order.
type Metapath struct {
	Nodes []NodeStep
	Rels  []RelStep
}

var (
	nodePattern = regexp.MustCompile(`^\((n[0-9]+):([A-Za-z_][A-Za-z0-9_]*)\)`)
	relPattern  = regexp.MustCompile(`^(<-|-)\[:([A-Za-z_][A-Za-z0-9_]*)\](->|-)`)
)

// ParseMetapath parses Cypher pattern text such as
//
//	(n0:Gene)-[:PARTICIPATES_GpBP]-(n1:BiologicalProcess)
//
// into a Metapath. Whitespace is ignored.
func ParseMetapath(text string) (Metapath, error) {
	rest := strings.Join(strings.Fields(text), "")
	var mp Metapath
	for {
		m := nodePattern.FindStringSubmatch(rest)
		if m == nil {
			return Metapath{}, fmt.Errorf("%w: expected node pattern at %q", ErrInvalidMetapath, rest)
		}
		want := "n" + strconv.Itoa(len(mp.Nodes))
		if m[1] != want {
			return Metapath{}, fmt.Errorf("%w: node variable %s out of sequence: want %s", ErrInvalidMetapath, m[1], want)
		}
		mp.Nodes = append(mp.Nodes, NodeStep{Var: m[1], Label: m[2]})
		rest = rest[len(m[0]):]
		if rest == "" {
			break
		}

		m = relPattern.FindStringSubmatch(rest)
		if m == nil {
			return Metapath{}, fmt.Errorf("%w: expected relationship pattern at %q", ErrInvalidMetapath, rest)
		}
		var dir Direction
		switch {
		case m[1] == "<-" && m[3] == "-":
			dir = Backward
		case m[1] == "-" && m[3] == "->":
			dir = Forward
		case m[1] == "-" && m[3] == "-":
			dir = Both
		default:
			return Metapath{}, fmt.Errorf("%w: bidirectional relationship %q", ErrInvalidMetapath, m[0])
		}
		mp.Rels = append(mp.Rels, RelStep{Type: m[2], Dir: dir})
		rest = rest[len(m[0]):]
	}
	if len(mp.Rels) == 0 {
		return Metapath{}, fmt.Errorf("%w: no relationships in %q", ErrInvalidMetapath, text)
	}
	return mp, nil
}

// MustParseMetapath is like ParseMetapath but panics on error.
func MustParseMetapath(text string) Metapath {
	mp, err := ParseMetapath(text)
	if err != nil {
		panic(err)
	}
	return mp
}

// Len returns the number of relationships in the metapath.
func (mp Metapath) Len() int { return len(mp.Rels) }

// Index returns the position of the node with the given variable
// name, or -1 if it is not in the metapath.
func (mp Metapath) Index(v string) int {
	for i, n := range mp.Nodes {
		if n.Var == v {
			return i
		}
	}
	return -1
}

// String returns the Cypher pattern text of the metapath.
func (mp Metapath) String() string {
	var buf strings.Builder
	for i, n := range mp.Nodes {
		if i != 0 {
			r := mp.Rels[i-1]
			switch r.Dir {
			case Backward:
				fmt.Fprintf(&buf, "<-[:%s]-", r.Type)
			case Forward:
				fmt.Fprintf(&buf, "-[:%s]->", r.Type)
			default:
				fmt.Fprintf(&buf, "-[:%s]-", r.Type)
			}
		}
		fmt.Fprintf(&buf, "(%s:%s)", n.Var, n.Label)
	}
	return buf.String()
}

// validate checks the structural consistency of a Metapath that may have
// been built without ParseMetapath.
func (mp Metapath) validate() error {
	if len(mp.Rels) == 0 || len(mp.Nodes) != len(mp.Rels)+1 {
		return fmt.Errorf("%w: %d nodes and %d relationships", ErrInvalidMetapath, len(mp.Nodes), len(mp.Rels))
	}
	for i, n := range mp.Nodes {
		if n.Var != "n"+strconv.Itoa(i) {
			return fmt.Errorf("%w: node variable %s out of sequence", ErrInvalidMetapath, n.Var)
		}
		if err := checkIdent("label", n.Label); err != nil {
			return err
		}
	}
	for _, r := range mp.Rels {
		if err := checkIdent("relationship type", r.Type); err != nil {
			return err
		}
	}
	return nil
}

// degrees returns the per-edge degree expressions of the metapath. Each
// relationship contributes the degree of both of its end nodes over its
// relationship type.
func (mp Metapath) degrees() []string {
	d := make([]string, len(mp.Rels))
	for i, r := range mp.Rels {
		d[i] = fmt.Sprintf("size([(n%d)-[:%s]-() | n%[1]d]), size([()-[:%[2]s]-(n%d) | n%[3]d])", i, r.Type, i+1)
	}
	return d
}
