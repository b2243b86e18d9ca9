// Copyright ©2024 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spoke_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kortschak/spoke"
)

func TestPageRank(t *testing.T) {
	g := spoke.NewGraph()
	a := &spoke.Node{ElementID: "a", Labels: []string{"Gene"}}
	b := &spoke.Node{ElementID: "b", Labels: []string{"Gene"}}
	c := &spoke.Node{ElementID: "c", Labels: []string{"Gene"}}
	g.AddRelationship(&spoke.Relationship{ElementID: "ac", Type: "INTERACTS_GiG", Start: a, End: c})
	g.AddRelationship(&spoke.Relationship{ElementID: "bc", Type: "INTERACTS_GiG", Start: b, End: c})
	g.AddRelationship(&spoke.Relationship{ElementID: "ca", Type: "INTERACTS_GiG", Start: c, End: a})

	ranks := g.PageRank(0.85, 1e-8)
	require.Len(t, ranks, 3)
	for n, r := range ranks {
		assert.Greater(t, r, 0.0, "rank of %s", n.ElementID)
	}

	ranked := spoke.Ranked(ranks)
	var order []string
	for _, r := range ranked {
		order = append(order, r.Node.ElementID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, order)

	assert.Nil(t, spoke.NewGraph().PageRank(0.85, 1e-8))
}
