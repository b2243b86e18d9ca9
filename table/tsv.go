// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package table

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Options holds TSV reading options.
type Options struct {
	// Columns is the set of columns to keep.
	// If Columns is empty, all columns are kept.
	Columns []string
}

// ReadTSV reads a tab-separated table with a header line from r.
// Short rows are padded with empty strings. Blank lines are skipped.
func ReadTSV(r io.Reader, opts Options) (*Table, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1<<16), 1<<24)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("table: reading header: %w", err)
		}
		return nil, fmt.Errorf("table: %w", io.ErrUnexpectedEOF)
	}
	header := strings.Split(strings.TrimRight(sc.Text(), "\r"), "\t")

	keep := make([]int, 0, len(header))
	cols := header
	if len(opts.Columns) == 0 {
		for i := range header {
			keep = append(keep, i)
		}
	} else {
		pos := make(map[string]int, len(header))
		for i, h := range header {
			pos[h] = i
		}
		for _, c := range opts.Columns {
			i, ok := pos[c]
			if !ok {
				return nil, fmt.Errorf("%w: %q in header", ErrNoColumn, c)
			}
			keep = append(keep, i)
		}
		cols = opts.Columns
	}

	t := New(cols...)
	line := 1
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if text == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) > len(header) {
			return nil, fmt.Errorf("table: line %d: %d fields for %d columns", line, len(fields), len(header))
		}
		row := make([]string, len(keep))
		for k, i := range keep {
			if i < len(fields) {
				row[k] = fields[i]
			}
		}
		t.rows = append(t.rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("table: line %d: %w", line, err)
	}
	return t, nil
}

// WriteTSV writes the table to w as tab-separated values with a header
// line.
func (t *Table) WriteTSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(t.cols, "\t"))
	bw.WriteByte('\n')
	for _, r := range t.rows {
		bw.WriteString(strings.Join(r, "\t"))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
