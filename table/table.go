// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package table provides a minimal in-memory table of string cells
// used for query results and identifier mapping.
package table

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"
)

// ErrNoColumn is returned when a named column does not exist.
var ErrNoColumn = errors.New("table: no column")

// Table is an ordered set of named string columns. Missing values
// are held as the empty string.
type Table struct {
	cols  []string
	index map[string]int
	rows  [][]string
}

// New returns a new empty table with the given columns. New panics
// if a column name is repeated.
func New(columns ...string) *Table {
	t := &Table{index: make(map[string]int, len(columns))}
	for _, c := range columns {
		if _, ok := t.index[c]; ok {
			panic(fmt.Sprintf("table: duplicate column %q", c))
		}
		t.index[c] = len(t.cols)
		t.cols = append(t.cols, c)
	}
	return t
}

// AddRow appends a row to the table. The number of values must match
// the number of columns.
func (t *Table) AddRow(values ...string) error {
	if len(values) != len(t.cols) {
		return fmt.Errorf("table: row has %d values for %d columns", len(values), len(t.cols))
	}
	t.rows = append(t.rows, slices.Clone(values))
	return nil
}

// Columns returns a copy of the column names of the table.
func (t *Table) Columns() []string { return slices.Clone(t.cols) }

// HasColumn returns whether the table has the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of rows in the table.
func (t *Table) Len() int { return len(t.rows) }

// Row returns a copy of row i.
func (t *Table) Row(i int) []string { return slices.Clone(t.rows[i]) }

// Get returns the value of the named column in row i. The empty string
// is returned if the column does not exist.
func (t *Table) Get(i int, col string) string {
	j, ok := t.index[col]
	if !ok {
		return ""
	}
	return t.rows[i][j]
}

// Set sets the value of the named column in row i.
func (t *Table) Set(i int, col, v string) error {
	j, ok := t.index[col]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoColumn, col)
	}
	t.rows[i][j] = v
	return nil
}

// Column returns a copy of the values of the named column.
func (t *Table) Column(name string) ([]string, error) {
	j, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoColumn, name)
	}
	c := make([]string, len(t.rows))
	for i, r := range t.rows {
		c[i] = r[j]
	}
	return c, nil
}

// AddColumn adds a column with the given values to the table, replacing
// an existing column with the same name. If values is nil the column is
// filled with empty strings, otherwise its length must match the number
// of rows.
func (t *Table) AddColumn(name string, values []string) error {
	if values != nil && len(values) != len(t.rows) {
		return fmt.Errorf("table: column %q has %d values for %d rows", name, len(values), len(t.rows))
	}
	j, ok := t.index[name]
	if !ok {
		j = len(t.cols)
		t.index[name] = j
		t.cols = append(t.cols, name)
		for i := range t.rows {
			t.rows[i] = append(t.rows[i], "")
		}
	}
	for i, v := range values {
		t.rows[i][j] = v
	}
	if values == nil && ok {
		for i := range t.rows {
			t.rows[i][j] = ""
		}
	}
	return nil
}

// DropColumn removes the named column if it exists.
func (t *Table) DropColumn(name string) {
	j, ok := t.index[name]
	if !ok {
		return
	}
	t.cols = slices.Delete(t.cols, j, j+1)
	for i, r := range t.rows {
		t.rows[i] = slices.Delete(r, j, j+1)
	}
	t.reindex()
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.cols))
	for i, c := range t.cols {
		t.index[c] = i
	}
}

// Unique returns the distinct values of the named column in the order
// they first appear.
func (t *Table) Unique(col string) ([]string, error) {
	c, err := t.Column(col)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(c))
	var u []string
	for _, v := range c {
		if seen[v] {
			continue
		}
		seen[v] = true
		u = append(u, v)
	}
	return u, nil
}

// Select returns a new table holding the named columns in the given
// order.
func (t *Table) Select(columns ...string) (*Table, error) {
	idx := make([]int, len(columns))
	for i, c := range columns {
		j, ok := t.index[c]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNoColumn, c)
		}
		idx[i] = j
	}
	s := New(columns...)
	s.rows = make([][]string, len(t.rows))
	for i, r := range t.rows {
		row := make([]string, len(idx))
		for k, j := range idx {
			row[k] = r[j]
		}
		s.rows[i] = row
	}
	return s, nil
}
