// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package neo4jdb runs SPOKE queries against a Neo4j database with the
// Graph Data Science plugin.
package neo4jdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/kortschak/spoke"
	"github.com/kortschak/spoke/config"
	"github.com/kortschak/spoke/cypher"
	"github.com/kortschak/spoke/table"
)

// ErrNotFound is returned when a lookup query returns no rows.
var ErrNotFound = errors.New("neo4jdb: not found")

// Runner executes a query and returns all its records.
type Runner interface {
	Run(ctx context.Context, q cypher.Query) ([]*neo4j.Record, error)
}

// DriverRunner is a Runner that opens a session on a database for
// each query. Queries are run in read sessions unless they are marked
// as writes.
type DriverRunner struct {
	Driver   neo4j.DriverWithContext
	Database string
}

// Run runs q in a new session and collects its records.
func (r DriverRunner) Run(ctx context.Context, q cypher.Query) ([]*neo4j.Record, error) {
	mode := neo4j.AccessModeRead
	if q.Write {
		mode = neo4j.AccessModeWrite
	}
	session := r.Driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: r.Database,
		AccessMode:   mode,
	})
	defer session.Close(ctx)

	result, err := session.Run(ctx, q.Text, q.Params)
	if err != nil {
		return nil, err
	}
	return result.Collect(ctx)
}

// Client runs SPOKE queries.
type Client struct {
	runner Runner
	log    *zap.Logger

	closer func(context.Context) error
}

// Open returns a Client connected to the database described by cfg.
// Connectivity is verified before Open returns.
func Open(ctx context.Context, cfg config.Neo4j, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4jdb: failed to create driver: %w", err)
	}
	err = driver.VerifyConnectivity(ctx)
	if err != nil {
		driver.Close(ctx)
		log.Error("failed to connect", zap.String("uri", cfg.URI), zap.Error(err))
		return nil, fmt.Errorf("neo4jdb: failed to connect to %s: %w", cfg.URI, err)
	}
	log.Info("connected", zap.String("uri", cfg.URI), zap.String("database", cfg.Database))
	c := New(DriverRunner{Driver: driver, Database: cfg.Database}, log)
	c.closer = driver.Close
	return c, nil
}

// New returns a Client using the provided runner. If log is nil, no
// logging is performed.
func New(r Runner, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{runner: r, log: log}
}

// Close releases the resources held by the client.
func (c *Client) Close(ctx context.Context) error {
	if c.closer == nil {
		return nil
	}
	return c.closer(ctx)
}

// Run runs q and returns its records.
func (c *Client) Run(ctx context.Context, q cypher.Query) ([]*neo4j.Record, error) {
	c.log.Debug("run query", zap.String("query", q.Text), zap.Bool("write", q.Write))
	records, err := c.runner.Run(ctx, q)
	if err != nil {
		c.log.Error("query failed", zap.String("query", q.Text), zap.Error(err))
		return nil, fmt.Errorf("neo4jdb: query failed: %w", err)
	}
	c.log.Debug("query complete", zap.Int("records", len(records)))
	return records, nil
}

// Graph runs q and returns the graph of its results.
func (c *Client) Graph(ctx context.Context, q cypher.Query) (*spoke.Graph, error) {
	records, err := c.Run(ctx, q)
	if err != nil {
		return nil, err
	}
	return ResultGraph(records), nil
}

// Table runs q and returns its results as a table.
func (c *Client) Table(ctx context.Context, q cypher.Query) (*table.Table, error) {
	records, err := c.Run(ctx, q)
	if err != nil {
		return nil, err
	}
	return ResultTable(records), nil
}

// NodeID returns the database ID of the node with the given label and
// identifier.
func (c *Client) NodeID(ctx context.Context, label string, identifier interface{}) (int64, error) {
	q, err := cypher.NodeID(label, identifier)
	if err != nil {
		return 0, err
	}
	records, err := c.Run(ctx, q)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("%w: %s %v", ErrNotFound, label, identifier)
	}
	return value[int64](records[0], "i")
}

// GeneSetNodeIDs returns the knowledge graph database IDs of the nodes
// with the given label that belong to the named gene set.
func (c *Client) GeneSetNodeIDs(ctx context.Context, graphs cypher.CompositeGraphs, geneSet, label string) ([]int64, error) {
	q, err := cypher.GeneSetNodeIDs(graphs, geneSet, label)
	if err != nil {
		return nil, err
	}
	records, err := c.Run(ctx, q)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(records))
	for _, r := range records {
		id, err := value[int64](r, "nodeId")
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// NodesFromGeneSets returns the identifiers of nodes with the given label
// that are members of each gene set. If filter is not empty, only the
// named gene sets are returned. The result can be used as the lists of a
// cypher.MultiDWPCRequest.
func (c *Client) NodesFromGeneSets(ctx context.Context, label string, filter []string) ([]cypher.GeneList, error) {
	q, err := cypher.NodesFromGeneSets(label, filter)
	if err != nil {
		return nil, err
	}
	records, err := c.Run(ctx, q)
	if err != nil {
		return nil, err
	}
	lists := make([]cypher.GeneList, 0, len(records))
	for _, r := range records {
		name, err := value[string](r, "GeneSet")
		if err != nil {
			return nil, err
		}
		nodes, err := value[[]interface{}](r, "Nodes")
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(nodes))
		for i, n := range nodes {
			ids[i] = Cell(n)
		}
		lists = append(lists, cypher.GeneList{Name: name, IDs: ids})
	}
	return lists, nil
}

// PathsBetween returns the graph of relationships between the nodes with
// database IDs in from and the nodes with database IDs in to.
func (c *Client) PathsBetween(ctx context.Context, from, to []int64) (*spoke.Graph, error) {
	return c.Graph(ctx, cypher.PathsBetween(from, to))
}

// Ancestry returns the hierarchy above the nodes with the given label and
// identifiers formed by isA relationships.
func (c *Client) Ancestry(ctx context.Context, label, isA string, identifiers []string) (*spoke.Graph, error) {
	q, err := cypher.Ancestry(label, isA, identifiers)
	if err != nil {
		return nil, err
	}
	return c.Graph(ctx, q)
}
