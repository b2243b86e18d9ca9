// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cypher

import (
	"fmt"
)

// DefaultExponent is the degree dampening exponent used for
// degree-weighted path counts.
const DefaultExponent = -0.7

// DWPCRequest describes a degree-weighted path count query.
type DWPCRequest struct {
	// Metapath is the path pattern to score.
	Metapath Metapath

	// StartLabel is the label of the start nodes. If empty
	// the label of the first metapath node is used.
	StartLabel string

	// Sources holds the identifiers of the start nodes.
	// Identifiers are compared as strings since SPOKE
	// identifiers may be integers. Sources is ignored
	// by MultiDWPC.
	Sources []string

	// GroupBy is the metapath variable that paths are
	// grouped by.
	GroupBy string

	// Limit is the maximum number of rows returned.
	Limit int

	// Exponent is the degree dampening exponent. If zero
	// DefaultExponent is used.
	Exponent float64

	// Filter is an optional predicate applied to matched
	// paths. Values used by the predicate must be passed
	// in FilterParams.
	Filter       string
	FilterParams map[string]interface{}

	// KeepSinglePaths retains groups supported by only
	// one path.
	KeepSinglePaths bool
}

// GeneList is a named list of start node identifiers.
type GeneList struct {
	Name string
	IDs  []string
}

// MultiDWPCRequest describes a degree-weighted path count query that is
// repeated for each of a set of named start node lists.
type MultiDWPCRequest struct {
	DWPCRequest
	Lists []GeneList
}

func (r *DWPCRequest) check() (start string, err error) {
	err = r.Metapath.validate()
	if err != nil {
		return "", err
	}
	start = r.StartLabel
	if start == "" {
		start = r.Metapath.Nodes[0].Label
	}
	err = checkIdent("label", start)
	if err != nil {
		return "", err
	}
	if r.Metapath.Index(r.GroupBy) < 0 {
		return "", fmt.Errorf("%w: group node %q not in metapath %s", ErrInvalidRequest, r.GroupBy, r.Metapath)
	}
	if r.Limit <= 0 {
		return "", fmt.Errorf("%w: non-positive limit %d", ErrInvalidRequest, r.Limit)
	}
	return start, nil
}

func (r *DWPCRequest) params() map[string]interface{} {
	exp := r.Exponent
	if exp == 0 {
		exp = DefaultExponent
	}
	p := map[string]interface{}{
		"damping": exp,
		"limit":   int64(r.Limit),
	}
	if !r.KeepSinglePaths {
		p["minPathCount"] = int64(1)
	}
	return p
}

// body returns the lines of the scoring query. sources is the expression
// holding the start identifiers and carry lists variables that must be
// carried through the aggregation.
func (r *DWPCRequest) body(start, sources, carry string) []string {
	g := r.GroupBy
	l := []string{
		fmt.Sprintf("MATCH (n0:%s) WHERE toString(n0.identifier) IN %s", start, sources),
		"MATCH path=" + r.Metapath.String(),
	}
	if r.Filter != "" {
		l = append(l, "WHERE "+r.Filter)
	}
	l = append(l, fmt.Sprintf("WITH path, %s%s, [", carry, g))
	deg := r.Metapath.degrees()
	for i, d := range deg {
		if i < len(deg)-1 {
			d += ","
		}
		l = append(l, "\t"+d)
	}
	l = append(l,
		"] AS degrees",
		fmt.Sprintf("WITH %s%s, sum(reduce(pdp = 1.0, d IN degrees | pdp * d ^ $damping)) AS DWPC, count(path) AS PC", carry, g),
	)
	if !r.KeepSinglePaths {
		l = append(l, "WHERE PC > $minPathCount")
	}
	l = append(l, fmt.Sprintf("RETURN elementId(%s) AS Node_ID, %[1]s.name AS Node_Name, PC, DWPC ORDER BY DWPC DESC LIMIT $limit", g))
	return l
}

// DWPC returns a query that scores the paths conforming to the request
// metapath from the source nodes. Path weights are the product over
// relationships of the degrees of both relationship end nodes raised to the
// dampening exponent. Weights are summed by group node as DWPC and counted
// as PC. Unless KeepSinglePaths is set, groups with a single path are
// dropped. Rows are Node_ID, Node_Name, PC and DWPC ordered by descending
// DWPC.
func DWPC(r DWPCRequest) (Query, error) {
	start, err := r.check()
	if err != nil {
		return Query{}, err
	}
	if len(r.Sources) == 0 {
		return Query{}, fmt.Errorf("%w: no source identifiers", ErrInvalidRequest)
	}
	p := r.params()
	p["sources"] = r.Sources
	err = mergeParams(p, r.FilterParams)
	if err != nil {
		return Query{}, err
	}
	return Query{Text: lines(0, r.body(start, "$sources", "")...), Params: p}, nil
}

// MultiDWPC returns a query that repeats the DWPC query for each of the
// request lists, tagging each row with the list name as gs. Rows are gs,
// Node_ID, Node_Name, PC and DWPC ordered by descending DWPC.
func MultiDWPC(r MultiDWPCRequest) (Query, error) {
	start, err := r.check()
	if err != nil {
		return Query{}, err
	}
	if len(r.Lists) == 0 {
		return Query{}, fmt.Errorf("%w: no gene lists", ErrInvalidRequest)
	}
	p := r.params()
	lists := make([]interface{}, len(r.Lists))
	for i, gl := range r.Lists {
		lists[i] = []interface{}{gl.Name, gl.IDs}
	}
	p["gene_lists"] = lists
	err = mergeParams(p, r.FilterParams)
	if err != nil {
		return Query{}, err
	}

	text := lines(0,
		"UNWIND $gene_lists AS row",
		"WITH row[0] AS gs, row[1] AS gene_list",
		"CALL {",
		"\tWITH gs, gene_list",
	) + "\n" + lines(1, r.body(start, "gene_list", "gs, ")...) + "\n" + lines(0,
		"}",
		"RETURN gs, Node_ID, Node_Name, PC, DWPC ORDER BY DWPC DESC",
	)
	return Query{Text: text, Params: p}, nil
}

// DWPCPaths returns a query for up to maxShow paths of the metapath that
// start at the given source identifiers and pass through each of the inner
// node identifiers at the group node.
func DWPCPaths(mp Metapath, groupBy string, sources, inner []string, maxShow int) (Query, error) {
	err := mp.validate()
	if err != nil {
		return Query{}, err
	}
	if mp.Index(groupBy) < 0 {
		return Query{}, fmt.Errorf("%w: group node %q not in metapath %s", ErrInvalidRequest, groupBy, mp)
	}
	if maxShow <= 0 {
		return Query{}, fmt.Errorf("%w: non-positive path limit %d", ErrInvalidRequest, maxShow)
	}
	text := lines(0,
		"UNWIND $inner_nodes AS n",
		"CALL {",
		"\tWITH n",
		"\tMATCH path="+mp.String(),
		fmt.Sprintf("\tWHERE toString(n0.identifier) IN $gene_list AND toString(%s.identifier) = n", groupBy),
		"\tRETURN path LIMIT $max_show",
		"}",
		"RETURN path",
	)
	return Query{
		Text: text,
		Params: map[string]interface{}{
			"gene_list":   sources,
			"inner_nodes": inner,
			"max_show":    int64(maxShow),
		},
	}, nil
}
