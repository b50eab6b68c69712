// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"errors"
	"testing"
)

// Helper to create a minimal test node.
func testNode(id string, citations ...string) *CitationNode {
	return &CitationNode{
		PaperID:   id,
		Title:     "Paper " + id,
		Authors:   []string{"Author A"},
		Year:      2020,
		Journal:   "Test Journal",
		Citations: citations,
	}
}

func TestGraph_AddNode(t *testing.T) {
	t.Run("assigns dense indexes", func(t *testing.T) {
		g := NewGraph()
		for i, id := range []string{"p1", "p2", "p3"} {
			idx, err := g.AddNode(testNode(id))
			if err != nil {
				t.Fatalf("AddNode(%s) error: %v", id, err)
			}
			if idx != i {
				t.Errorf("AddNode(%s) index = %d, expected %d", id, idx, i)
			}
		}
		if g.NodeCount() != 3 {
			t.Errorf("NodeCount = %d, expected 3", g.NodeCount())
		}
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		g := NewGraph()
		if _, err := g.AddNode(testNode("p1")); err != nil {
			t.Fatalf("first AddNode error: %v", err)
		}
		_, err := g.AddNode(testNode("p1"))
		if !errors.Is(err, ErrDuplicateNode) {
			t.Errorf("expected ErrDuplicateNode, got %v", err)
		}
	})

	t.Run("rejects nil and empty IDs", func(t *testing.T) {
		g := NewGraph()
		if _, err := g.AddNode(nil); !errors.Is(err, ErrInvalidNode) {
			t.Errorf("nil node: expected ErrInvalidNode, got %v", err)
		}
		if _, err := g.AddNode(&CitationNode{}); !errors.Is(err, ErrInvalidNode) {
			t.Errorf("empty ID: expected ErrInvalidNode, got %v", err)
		}
	})

	t.Run("enforces capacity", func(t *testing.T) {
		g := NewGraph(WithMaxNodes(2))
		g.AddNode(testNode("p1"))
		g.AddNode(testNode("p2"))
		_, err := g.AddNode(testNode("p3"))
		if !errors.Is(err, ErrMaxNodesExceeded) {
			t.Errorf("expected ErrMaxNodesExceeded, got %v", err)
		}
	})

	t.Run("resets cluster assignment", func(t *testing.T) {
		g := NewGraph()
		n := testNode("p1")
		n.ClusterID = 7
		g.AddNode(n)
		if n.ClusterID != ClusterUnassigned {
			t.Errorf("ClusterID = %d, expected %d", n.ClusterID, ClusterUnassigned)
		}
	})
}

func TestGraph_AddEdge(t *testing.T) {
	t.Run("wires adjacency both directions", func(t *testing.T) {
		g := NewGraph()
		g.AddNode(testNode("p1"))
		g.AddNode(testNode("p2"))
		if err := g.AddEdge("p1", "p2"); err != nil {
			t.Fatalf("AddEdge error: %v", err)
		}
		i1, _ := g.IndexOf("p1")
		i2, _ := g.IndexOf("p2")
		if len(g.OutNeighbors(i1)) != 1 || g.OutNeighbors(i1)[0] != i2 {
			t.Errorf("out adjacency of p1 = %v", g.OutNeighbors(i1))
		}
		if len(g.InNeighbors(i2)) != 1 || g.InNeighbors(i2)[0] != i1 {
			t.Errorf("in adjacency of p2 = %v", g.InNeighbors(i2))
		}
		if g.EdgeCount() != 1 {
			t.Errorf("EdgeCount = %d, expected 1", g.EdgeCount())
		}
	})

	t.Run("collapses duplicate edges", func(t *testing.T) {
		g := NewGraph()
		g.AddNode(testNode("p1"))
		g.AddNode(testNode("p2"))
		g.AddEdge("p1", "p2")
		g.AddEdge("p1", "p2")
		if g.EdgeCount() != 1 {
			t.Errorf("EdgeCount = %d, expected 1 after duplicate add", g.EdgeCount())
		}
	})

	t.Run("records citation on source node", func(t *testing.T) {
		g := NewGraph()
		g.AddNode(testNode("p1"))
		g.AddNode(testNode("p2", "p2")) // p2 already in the set
		g.AddNode(testNode("p3"))
		g.AddEdge("p1", "p3")
		g.AddEdge("p1", "p2")
		g.AddEdge("p2", "p1")

		p1, _ := g.Node("p1")
		if len(p1.Citations) != 2 || p1.Citations[0] != "p2" || p1.Citations[1] != "p3" {
			t.Errorf("p1 citations = %v, expected sorted [p2 p3]", p1.Citations)
		}
		p2, _ := g.Node("p2")
		if len(p2.Citations) != 2 || p2.Citations[0] != "p1" || p2.Citations[1] != "p2" {
			t.Errorf("p2 citations = %v, expected [p1 p2]", p2.Citations)
		}
	})

	t.Run("derived edges see manually wired citations", func(t *testing.T) {
		// c1 and c2 both cite t, without records ever carrying a
		// citation list.
		g := NewGraph()
		for _, id := range []string{"c1", "c2", "t"} {
			g.AddNode(testNode(id))
		}
		g.AddEdge("c1", "t")
		g.AddEdge("c2", "t")
		g.Freeze()

		coupling := g.BibliographicCouplingEdges()
		if len(coupling) != 1 {
			t.Fatalf("coupling edges = %d, expected 1", len(coupling))
		}
		if coupling[0].Source != "c1" || coupling[0].Target != "c2" {
			t.Errorf("coupling edge = %+v, expected c1-c2", coupling[0])
		}
	})

	t.Run("rejects unknown endpoints", func(t *testing.T) {
		g := NewGraph()
		g.AddNode(testNode("p1"))
		if err := g.AddEdge("p1", "missing"); !errors.Is(err, ErrNodeNotFound) {
			t.Errorf("expected ErrNodeNotFound, got %v", err)
		}
		if err := g.AddEdge("missing", "p1"); !errors.Is(err, ErrNodeNotFound) {
			t.Errorf("expected ErrNodeNotFound, got %v", err)
		}
	})
}

func TestGraph_Freeze(t *testing.T) {
	g := NewGraph()
	g.AddNode(testNode("p1"))
	g.AddNode(testNode("p2"))
	g.Freeze()

	if !g.IsFrozen() {
		t.Fatal("graph should be frozen")
	}
	if g.BuiltAtMilli == 0 {
		t.Error("BuiltAtMilli should be set after Freeze")
	}
	if _, err := g.AddNode(testNode("p3")); !errors.Is(err, ErrGraphFrozen) {
		t.Errorf("AddNode after Freeze: expected ErrGraphFrozen, got %v", err)
	}
	if err := g.AddEdge("p1", "p2"); !errors.Is(err, ErrGraphFrozen) {
		t.Errorf("AddEdge after Freeze: expected ErrGraphFrozen, got %v", err)
	}
}

func TestGraph_UndirectedAdjacency(t *testing.T) {
	g := NewGraph()
	g.AddNode(testNode("p1"))
	g.AddNode(testNode("p2"))
	g.AddNode(testNode("p3"))
	g.AddEdge("p1", "p2")
	g.AddEdge("p2", "p1") // mutual
	g.AddEdge("p2", "p3")
	g.Freeze()

	adj := g.UndirectedAdjacency()
	i1, _ := g.IndexOf("p1")
	i2, _ := g.IndexOf("p2")
	i3, _ := g.IndexOf("p3")

	if adj[i1][i2] != 2 {
		t.Errorf("mutual pair weight = %v, expected 2", adj[i1][i2])
	}
	if adj[i2][i1] != adj[i1][i2] {
		t.Error("undirected projection must be symmetric")
	}
	if adj[i2][i3] != 1 {
		t.Errorf("single-direction pair weight = %v, expected 1", adj[i2][i3])
	}
	if len(adj[i3]) != 1 {
		t.Errorf("p3 neighbor count = %d, expected 1", len(adj[i3]))
	}
}

func TestEdgeType_RoundTrip(t *testing.T) {
	for _, et := range []EdgeType{EdgeTypeDirect, EdgeTypeCoCitation, EdgeTypeBibliographicCoupling} {
		text, err := et.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v) error: %v", et, err)
		}
		var back EdgeType
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%s) error: %v", text, err)
		}
		if back != et {
			t.Errorf("round trip %v -> %s -> %v", et, text, back)
		}
	}

	var et EdgeType
	if err := et.UnmarshalText([]byte("bogus")); err == nil {
		t.Error("expected error for unknown edge type")
	}
}
