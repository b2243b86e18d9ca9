// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cypher_test

import (
	"fmt"
	"log"

	"github.com/kortschak/spoke/cypher"
)

func ExampleParseMetapath() {
	// Gene participates in a biological process that
	// another gene also participates in.
	mp, err := cypher.ParseMetapath(`
		(n0:Gene)-[:PARTICIPATES_GpBP]-(n1:BiologicalProcess)
		-[:PARTICIPATES_GpBP]-(n2:Gene)`)
	if err != nil {
		log.Fatal(err)
	}
	for _, n := range mp.Nodes {
		fmt.Println(n.Var, n.Label)
	}
	fmt.Println(mp)

	// Output:
	//
	// n0 Gene
	// n1 BiologicalProcess
	// n2 Gene
	// (n0:Gene)-[:PARTICIPATES_GpBP]-(n1:BiologicalProcess)-[:PARTICIPATES_GpBP]-(n2:Gene)
}

func ExamplePageRankStream() {
	q, err := cypher.PageRankStream(cypher.PageRankRequest{
		Graph:       "spoke_genes",
		SourceNodes: []int64{42, 1701},
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(q)
	fmt.Println(q.Params["config"])

	// Output:
	//
	// CALL gds.pageRank.stream($graphName, $config)
	// YIELD nodeId, score
	// RETURN nodeId, score ORDER BY score DESC
	// map[dampingFactor:0.33 maxIterations:40 sourceNodes:[42 1701]]
}

func ExampleNodeID() {
	q, err := cypher.NodeID("Compound", "DB00945")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(q)
	fmt.Println(q.Params)

	// Output:
	//
	// MATCH (n:Compound {identifier: $identifier}) RETURN DISTINCT id(n) AS i
	// map[identifier:DB00945]
}
