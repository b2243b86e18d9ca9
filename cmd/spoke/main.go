// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The spoke command runs SPOKE knowledge graph analyses and prepares
// gene and term tables for use with SPOKE.
//
// Usage:
//
//	spoke [-config file] [-credentials file] <command> [flags] [args]
//
// Graph commands connect to the Neo4j database given by the configuration
// or by a credentials file holding the URI, user name and password.
// Table commands read a tab-separated table from a file, or from stdin if
// the file is "-", and write the mapped table to stdout.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/kortschak/spoke/config"
	"github.com/kortschak/spoke/neo4jdb"
)

// errUsage is returned by commands invoked with invalid arguments.
var errUsage = errors.New("usage")

// command is a spoke subcommand.
type command struct {
	summary string

	// graph is whether the command uses the graph database.
	graph bool

	run func(ctx context.Context, e *env, args []string) error
}

// env is the shared state of a command invocation.
type env struct {
	cfg *config.Config
	log *zap.Logger
	db  *neo4jdb.Client

	stdout io.Writer
	stdin  io.Reader
}

var commands = map[string]command{
	"dwpc":           {summary: "score metapath end nodes by degree-weighted path count", graph: true, run: dwpcCmd},
	"paths":          {summary: "render the paths underlying a DWPC result", graph: true, run: pathsCmd},
	"pagerank":       {summary: "rank nodes by personalized PageRank from source nodes", graph: true, run: pageRankCmd},
	"graphs":         {summary: "list or drop graph projections", graph: true, run: graphsCmd},
	"hierarchy":      {summary: "report the is-a hierarchy roots and common ancestors of nodes", graph: true, run: hierarchyCmd},
	"map-ontology":   {summary: "map a column of terms to ontology classes", run: mapOntologyCmd},
	"map-orthologs":  {summary: "map a column of model organism genes to human orthologs", run: mapOrthologsCmd},
	"ortholog-stats": {summary: "summarize ortholog database coverage", run: orthologStatsCmd},
}

func main() {
	os.Exit(run())
}

func run() int {
	flag.Usage = usage
	cfgPath := flag.String("config", "", "configuration file (yaml, json or toml)")
	credPath := flag.String("credentials", "", "Neo4j credentials file holding URI, user and password lines")
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		return 2
	}
	name := flag.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fail("unknown command %q", name)
		flag.Usage()
		return 2
	}

	cfg, err := loadConfig(*cfgPath, *credPath, cmd)
	if err != nil {
		fail("%v", err)
		return 1
	}
	log, err := config.NewLogger(cfg.Log)
	if err != nil {
		fail("%v", err)
		return 1
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	e := &env{cfg: cfg, log: log.Named(name), stdout: os.Stdout, stdin: os.Stdin}
	if cmd.graph {
		e.db, err = neo4jdb.Open(ctx, cfg.Neo4j, log.Named("neo4j"))
		if err != nil {
			fail("%v", err)
			return 1
		}
		defer e.db.Close(context.Background())
	}

	err = cmd.run(ctx, e, flag.Args()[1:])
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		return 2
	default:
		fail("%s: %v", name, err)
		return 1
	}
}

// loadConfig loads the configuration used by cmd. The Neo4j section is
// only validated for graph commands.
func loadConfig(path, credentials string, cmd command) (*config.Config, error) {
	l := config.NewLoader()
	l.Credentials = credentials
	var except []string
	if !cmd.graph {
		except = []string{"Neo4j"}
	}
	return l.Load(path, except...)
}

func usage() {
	bold := color.New(color.Bold)
	bold.Fprintln(os.Stderr, "usage: spoke [-config file] [-credentials file] <command> [flags] [args]")
	fmt.Fprintln(os.Stderr)
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr)
	bold.Fprintln(os.Stderr, "commands:")
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(os.Stderr, "  %-16s %s\n", n, commands[n].summary)
	}
}

// fail prints an error message to stderr.
func fail(format string, args ...interface{}) {
	color.New(color.FgRed, color.Bold).Fprint(os.Stderr, "spoke: ")
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// status prints a progress message to stderr.
func status(format string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(os.Stderr, format+"\n", args...)
}

// newFlagSet returns a flag set for the named command that reports
// usage with the given argument synopsis.
func newFlagSet(name, synopsis string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		color.New(color.Bold).Fprintf(fs.Output(), "usage: spoke %s [flags] %s\n", name, synopsis)
		fs.PrintDefaults()
	}
	return fs
}

// list splits a comma-separated flag value, dropping empty elements.
func list(s string) []string {
	var l []string
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f != "" {
			l = append(l, f)
		}
	}
	return l
}

// openInput returns the named input file, or stdin if name is "-".
func (e *env) openInput(name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(e.stdin), nil
	}
	return os.Open(name)
}
