// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neo4jdb

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/kortschak/spoke"
	"github.com/kortschak/spoke/table"
)

// ResultGraph returns the graph formed by all nodes, relationships and
// paths held in the records, including those nested in lists and maps.
// Relationships with an end node that is not itself in the records are
// given a placeholder node holding only the element ID.
func ResultGraph(records []*neo4j.Record) *spoke.Graph {
	var c collector
	for _, r := range records {
		for _, v := range r.Values {
			c.collect(v)
		}
	}

	g := spoke.NewGraph()
	for _, n := range c.nodes {
		g.AddNode(node(n))
	}
	for _, r := range c.rels {
		start, ok := g.NodeFor(r.StartElementId)
		if !ok {
			start = &spoke.Node{ElementID: r.StartElementId}
		}
		end, ok := g.NodeFor(r.EndElementId)
		if !ok {
			end = &spoke.Node{ElementID: r.EndElementId}
		}
		g.AddRelationship(&spoke.Relationship{
			ElementID: r.ElementId,
			Type:      r.Type,
			Start:     start,
			End:       end,
			Props:     r.Props,
		})
	}
	return g
}

type collector struct {
	nodes []neo4j.Node
	rels  []neo4j.Relationship
}

func (c *collector) collect(v interface{}) {
	switch v := v.(type) {
	case neo4j.Node:
		c.nodes = append(c.nodes, v)
	case neo4j.Relationship:
		c.rels = append(c.rels, v)
	case neo4j.Path:
		c.nodes = append(c.nodes, v.Nodes...)
		c.rels = append(c.rels, v.Relationships...)
	case []interface{}:
		for _, e := range v {
			c.collect(e)
		}
	case map[string]interface{}:
		for _, e := range v {
			c.collect(e)
		}
	}
}

func node(n neo4j.Node) *spoke.Node {
	return &spoke.Node{
		ElementID: n.ElementId,
		Labels:    n.Labels,
		Props:     n.Props,
	}
}

// ResultTable returns the records as a table with the record keys as
// columns. Cells are formatted by Cell.
func ResultTable(records []*neo4j.Record) *table.Table {
	if len(records) == 0 {
		return table.New()
	}
	t := table.New(records[0].Keys...)
	for _, r := range records {
		row := make([]string, len(r.Values))
		for i, v := range r.Values {
			row[i] = Cell(v)
		}
		// Records of a result share keys, so the arity always matches.
		t.AddRow(row...)
	}
	return t
}

// Cell returns the text representation of a result value. Null is the
// empty string, nodes are represented by their identifier property or
// element ID, and lists are joined with ", ".
func Cell(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case neo4j.Node:
		if id, ok := v.Props["identifier"]; ok {
			return Cell(id)
		}
		return v.ElementId
	case neo4j.Relationship:
		return v.Type
	case neo4j.Path:
		var buf strings.Builder
		for i, n := range v.Nodes {
			if i != 0 {
				fmt.Fprintf(&buf, "-[:%s]-", v.Relationships[i-1].Type)
			}
			fmt.Fprintf(&buf, "(%s)", Cell(n))
		}
		return buf.String()
	case []interface{}:
		s := make([]string, len(v))
		for i, e := range v {
			s[i] = Cell(e)
		}
		return strings.Join(s, ", ")
	default:
		return fmt.Sprint(v)
	}
}

// value returns the typed value of the named column of rec. A null value
// is returned as the zero value.
func value[T any](rec *neo4j.Record, key string) (T, error) {
	var zero T
	v, ok := rec.Get(key)
	if !ok {
		return zero, fmt.Errorf("neo4jdb: no column %q in result", key)
	}
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("neo4jdb: column %q has type %T, want %T", key, v, zero)
	}
	return t, nil
}

// number returns the numeric value of the named column of rec as a float64.
func number(rec *neo4j.Record, key string) (float64, error) {
	v, ok := rec.Get(key)
	if !ok {
		return 0, fmt.Errorf("neo4jdb: no column %q in result", key)
	}
	switch v := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("neo4jdb: column %q has type %T, want number", key, v)
	}
}
