// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neo4jdb

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/kortschak/spoke"
	"github.com/kortschak/spoke/cypher"
)

// PathCount is a degree-weighted path count result row.
type PathCount struct {
	// GeneSet is the name of the start list for
	// MultiDWPC results.
	GeneSet string

	// NodeID is the element ID of the group node.
	NodeID   string
	NodeName string

	PC   int64
	DWPC float64
}

// DWPC runs a degree-weighted path count query.
func (c *Client) DWPC(ctx context.Context, req cypher.DWPCRequest) ([]PathCount, error) {
	q, err := cypher.DWPC(req)
	if err != nil {
		return nil, err
	}
	records, err := c.Run(ctx, q)
	if err != nil {
		return nil, err
	}
	return pathCounts(records, false)
}

// MultiDWPC runs a degree-weighted path count query for each start list.
func (c *Client) MultiDWPC(ctx context.Context, req cypher.MultiDWPCRequest) ([]PathCount, error) {
	q, err := cypher.MultiDWPC(req)
	if err != nil {
		return nil, err
	}
	records, err := c.Run(ctx, q)
	if err != nil {
		return nil, err
	}
	return pathCounts(records, true)
}

func pathCounts(records []*neo4j.Record, multi bool) ([]PathCount, error) {
	counts := make([]PathCount, 0, len(records))
	for _, r := range records {
		var (
			p   PathCount
			err error
		)
		if multi {
			p.GeneSet, err = value[string](r, "gs")
			if err != nil {
				return nil, err
			}
		}
		p.NodeID, err = value[string](r, "Node_ID")
		if err != nil {
			return nil, err
		}
		p.NodeName, err = value[string](r, "Node_Name")
		if err != nil {
			return nil, err
		}
		p.PC, err = value[int64](r, "PC")
		if err != nil {
			return nil, err
		}
		p.DWPC, err = number(r, "DWPC")
		if err != nil {
			return nil, err
		}
		counts = append(counts, p)
	}
	return counts, nil
}

// DWPCPaths returns the graph of up to maxShow metapath instances for each
// inner node, starting from the source identifiers.
func (c *Client) DWPCPaths(ctx context.Context, mp cypher.Metapath, groupBy string, sources, inner []string, maxShow int) (*spoke.Graph, error) {
	q, err := cypher.DWPCPaths(mp, groupBy, sources, inner, maxShow)
	if err != nil {
		return nil, err
	}
	return c.Graph(ctx, q)
}
