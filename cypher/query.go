// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cypher builds parameterized Cypher queries for the SPOKE
// knowledge graph and its Graph Data Science projections.
//
// Query structure and caller values are kept apart. Values are always
// passed as query parameters. Node labels, relationship types, property
// keys and database names cannot be parameterized in Cypher, so they are
// validated as identifiers before they are placed in the query text.
package cypher

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidIdentifier is returned when a label, relationship type,
	// property key or database name is not a plain identifier.
	ErrInvalidIdentifier = errors.New("cypher: invalid identifier")

	// ErrInvalidMetapath is returned when metapath text cannot be parsed.
	ErrInvalidMetapath = errors.New("cypher: invalid metapath")

	// ErrInvalidRequest is returned when a query request is incomplete
	// or inconsistent.
	ErrInvalidRequest = errors.New("cypher: invalid request")
)

// Query is a Cypher query and its parameters.
type Query struct {
	Text   string
	Params map[string]interface{}

	// Write indicates the query must be run in a
	// write session.
	Write bool
}

// String returns the query text.
func (q Query) String() string { return q.Text }

var (
	identRE    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	databaseRE = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*(\.[A-Za-z][A-Za-z0-9_]*)?$`)
)

func checkIdent(kind, s string) error {
	if !identRE.MatchString(s) {
		return fmt.Errorf("%w: %s %q", ErrInvalidIdentifier, kind, s)
	}
	return nil
}

func checkDatabase(s string) error {
	if !databaseRE.MatchString(s) {
		return fmt.Errorf("%w: database %q", ErrInvalidIdentifier, s)
	}
	return nil
}

// mergeParams adds extra to dst, failing if a name is already bound.
func mergeParams(dst, extra map[string]interface{}) error {
	for k, v := range extra {
		if err := checkIdent("parameter", k); err != nil {
			return err
		}
		if _, ok := dst[k]; ok {
			return fmt.Errorf("%w: parameter %q is reserved", ErrInvalidRequest, k)
		}
		dst[k] = v
	}
	return nil
}

// lines joins query lines, indenting each by depth tabs.
func lines(depth int, l ...string) string {
	if depth == 0 {
		return strings.Join(l, "\n")
	}
	indent := strings.Repeat("\t", depth)
	var buf strings.Builder
	for i, s := range l {
		if i != 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(indent)
		buf.WriteString(s)
	}
	return buf.String()
}
