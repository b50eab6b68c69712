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

import "sort"

// pairKey identifies an unordered node pair with A < B.
type pairKey struct {
	a, b string
}

func makePair(x, y string) pairKey {
	if x < y {
		return pairKey{a: x, b: y}
	}
	return pairKey{a: y, b: x}
}

// CoCitationEdges derives co-citation relationships from the graph.
//
// Description:
//
//	Two papers are co-cited when both appear in the citation list of
//	some third paper in the batch. Each unordered pair yields one edge
//	with Source < Target; strength is the number of distinct papers
//	citing both. Only pairs where both members exist as nodes are
//	emitted (a dangling ID cannot anchor an edge), but dangling IDs in
//	the citing paper's list do not disqualify the in-graph members.
//
//	Derived edges are rebuilt from scratch on every call and are never
//	part of the authoritative adjacency.
//
// Complexity: O(sum over papers of c^2) where c is the in-graph portion
// of each citation list. Bounded by MaxCitationsPerPaper.
func (g *Graph) CoCitationEdges() []CitationEdge {
	counts := make(map[pairKey]int)

	for _, node := range g.nodes {
		// Citations are already sorted and deduplicated; restrict to
		// ids present in the node set.
		present := make([]string, 0, len(node.Citations))
		for _, cited := range node.Citations {
			if _, ok := g.index[cited]; ok && cited != node.PaperID {
				present = append(present, cited)
			}
		}
		for i := 0; i < len(present); i++ {
			for j := i + 1; j < len(present); j++ {
				counts[makePair(present[i], present[j])]++
			}
		}
	}

	return edgesFromPairCounts(counts, EdgeTypeCoCitation)
}

// BibliographicCouplingEdges derives coupling relationships.
//
// Two papers are coupled when their citation lists share at least one
// common ID. Dangling citation IDs participate: two in-batch papers that
// both cite an out-of-batch paper are still coupled through it. Strength
// is the number of shared references.
func (g *Graph) BibliographicCouplingEdges() []CitationEdge {
	// Invert: cited id -> citing papers. Includes dangling cited ids.
	citers := make(map[string][]string)
	for _, node := range g.nodes {
		for _, cited := range node.Citations {
			if cited == node.PaperID {
				continue
			}
			citers[cited] = append(citers[cited], node.PaperID)
		}
	}

	counts := make(map[pairKey]int)
	for _, group := range citers {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				if group[i] == group[j] {
					continue
				}
				counts[makePair(group[i], group[j])]++
			}
		}
	}

	return edgesFromPairCounts(counts, EdgeTypeBibliographicCoupling)
}

// edgesFromPairCounts materializes derived edges in deterministic order
// (source ascending, then target ascending).
func edgesFromPairCounts(counts map[pairKey]int, t EdgeType) []CitationEdge {
	edges := make([]CitationEdge, 0, len(counts))
	for pair, n := range counts {
		edges = append(edges, CitationEdge{
			Source:       pair.a,
			Target:       pair.b,
			CitationType: t,
			Strength:     float64(n),
		})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
	return edges
}
