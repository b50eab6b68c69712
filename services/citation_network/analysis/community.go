// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analysis

import (
	"context"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/AleutianResearch/services/citation_network/graph"
)

var communityTracer = otel.Tracer("citation_network.community")

// Community detection configuration constants.
const (
	// DefaultMaxCommunityIterations is the maximum outer loop passes.
	DefaultMaxCommunityIterations = 100

	// DefaultModularityTolerance stops early when the modularity gain
	// of a full pass drops below this.
	DefaultModularityTolerance = 1e-6
)

// CommunityOptions configures modularity-based community detection.
type CommunityOptions struct {
	// MaxIterations limits outer loop passes. Default: 100
	MaxIterations int

	// ModularityTolerance stops early when gain < this. Default: 1e-6
	ModularityTolerance float64
}

// Validate checks options and applies defaults for invalid values.
func (o *CommunityOptions) Validate() {
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxCommunityIterations
	}
	if o.ModularityTolerance <= 0 {
		o.ModularityTolerance = DefaultModularityTolerance
	}
}

// DefaultCommunityOptions returns sensible defaults.
func DefaultCommunityOptions() CommunityOptions {
	return CommunityOptions{
		MaxIterations:       DefaultMaxCommunityIterations,
		ModularityTolerance: DefaultModularityTolerance,
	}
}

// CommunityResult is the outcome of community detection.
type CommunityResult struct {
	// Communities maps dense cluster ID to the member paper IDs,
	// sorted ascending. Every node appears in exactly one cluster;
	// singletons are valid.
	Communities map[int][]string `json:"communities"`

	// Modularity is the partition's modularity Q. Always >= 0 for
	// well-formed graphs; degenerate single-cluster partitions yield 0.
	Modularity float64 `json:"modularity"`

	// Iterations is the number of outer passes performed.
	Iterations int `json:"iterations"`

	// Converged is false if MaxIterations was reached while moves
	// were still improving modularity.
	Converged bool `json:"converged"`
}

// DetectCommunities partitions the graph into research communities.
//
// Description:
//
//	Louvain-style local moves over the undirected projection of the
//	direct citation graph. Each node starts in its own community; on
//	every pass, nodes (visited in sorted paper-ID order for
//	reproducibility) greedily move to the neighboring community with
//	the highest positive modularity gain. The loop ends when a pass
//	produces no move or the modularity gain falls under the tolerance.
//
//	The algorithm carries no RNG: iteration order and tie-breaking
//	(lowest candidate community ID wins equal gains) are fixed, so a
//	given graph always produces the same partition.
//
//	If the final partition scores below zero (possible on degenerate
//	structures where no move improves the initial singleton split),
//	the detector falls back to connected components, whose modularity
//	is never negative.
//
// Outputs:
//
//	*CommunityResult - Partition, modularity, convergence metadata.
//	error - Only ctx.Err().
func DetectCommunities(ctx context.Context, g *graph.Graph, opts CommunityOptions) (*CommunityResult, error) {
	opts.Validate()

	n := g.NodeCount()
	ctx, span := communityTracer.Start(ctx, "analysis.DetectCommunities")
	defer span.End()
	span.SetAttributes(
		attribute.Int("node_count", n),
		attribute.Int("edge_count", g.EdgeCount()),
	)

	if n == 0 {
		return &CommunityResult{Communities: map[int][]string{}, Converged: true}, nil
	}

	// Deterministic node visit order: sorted paper IDs mapped back to
	// arena indexes.
	order := make([]int, 0, n)
	for _, id := range g.SortedIDs() {
		idx, _ := g.IndexOf(id)
		order = append(order, idx)
	}

	adj := g.UndirectedAdjacency()

	// Total edge weight m and per-node weighted degrees.
	degrees := make([]float64, n)
	m := 0.0
	for i, neighbors := range adj {
		for _, w := range neighbors {
			degrees[i] += w
			m += w
		}
	}
	m /= 2 // every undirected edge counted from both ends

	nodeToComm := make([]int, n)
	for i := range nodeToComm {
		nodeToComm[i] = i
	}

	if m == 0 {
		// No edges: every node is its own community, trivially converged.
		result := buildCommunityResult(g, nodeToComm, 0)
		result.Converged = true
		return result, nil
	}

	// Cached per-community degree sums for O(1) gain computation.
	commDegree := make([]float64, n)
	copy(commDegree, degrees)

	previousQ := modularity(adj, nodeToComm, degrees, m)
	iterations := 0
	converged := false

	for iterations < opts.MaxIterations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		iterations++
		improved := false

		for _, v := range order {
			current := nodeToComm[v]
			kv := degrees[v]

			// Edge weight from v into each neighboring community.
			weightTo := make(map[int]float64)
			for u, w := range adj[v] {
				weightTo[nodeToComm[u]] += w
			}

			// Remove v from its community for the gain comparison.
			commDegree[current] -= kv

			bestComm := current
			bestGain := 0.0
			// Candidate communities in ascending ID order for stable
			// tie-breaking.
			candidates := make([]int, 0, len(weightTo))
			for c := range weightTo {
				candidates = append(candidates, c)
			}
			sort.Ints(candidates)

			baseGain := weightTo[current]/m - commDegree[current]*kv/(2*m*m)
			for _, c := range candidates {
				if c == current {
					continue
				}
				gain := weightTo[c]/m - commDegree[c]*kv/(2*m*m)
				if gain-baseGain > bestGain {
					bestGain = gain - baseGain
					bestComm = c
				}
			}

			commDegree[bestComm] += kv
			if bestComm != current {
				nodeToComm[v] = bestComm
				improved = true
			}
		}

		currentQ := modularity(adj, nodeToComm, degrees, m)
		if !improved || currentQ-previousQ < opts.ModularityTolerance {
			converged = true
			previousQ = currentQ
			break
		}
		previousQ = currentQ
	}

	finalQ := modularity(adj, nodeToComm, degrees, m)
	if finalQ < 0 {
		// Degenerate structure: fall back to connected components.
		nodeToComm = connectedComponents(adj)
		finalQ = modularity(adj, nodeToComm, degrees, m)
		span.AddEvent("component_fallback")
	}

	result := buildCommunityResult(g, nodeToComm, finalQ)
	result.Iterations = iterations
	result.Converged = converged

	slog.Debug("community detection completed",
		slog.Int("iterations", iterations),
		slog.Int("communities", len(result.Communities)),
		slog.Float64("modularity", result.Modularity),
		slog.Bool("converged", converged),
	)
	span.SetAttributes(
		attribute.Int("communities_found", len(result.Communities)),
		attribute.Float64("modularity", result.Modularity),
	)

	return result, nil
}

// modularity computes Q for a partition over the weighted undirected
// projection: sum over communities of (lc/m - (dc/2m)^2), where lc is
// the internal edge weight and dc the total degree of the community.
func modularity(adj []map[int]float64, nodeToComm []int, degrees []float64, m float64) float64 {
	if m == 0 {
		return 0
	}

	internal := make(map[int]float64)
	commDegree := make(map[int]float64)

	for v, neighbors := range adj {
		cv := nodeToComm[v]
		commDegree[cv] += degrees[v]
		for u, w := range neighbors {
			if v < u && nodeToComm[u] == cv {
				internal[cv] += w
			}
		}
	}

	q := 0.0
	for c, dc := range commDegree {
		q += internal[c]/m - (dc/(2*m))*(dc/(2*m))
	}
	return q
}

// connectedComponents labels each node with its undirected component.
func connectedComponents(adj []map[int]float64) []int {
	n := len(adj)
	comp := make([]int, n)
	for i := range comp {
		comp[i] = -1
	}

	next := 0
	for start := 0; start < n; start++ {
		if comp[start] >= 0 {
			continue
		}
		comp[start] = next
		queue := []int{start}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			for u := range adj[v] {
				if comp[u] < 0 {
					comp[u] = next
					queue = append(queue, u)
				}
			}
		}
		next++
	}
	return comp
}

// buildCommunityResult renumbers communities to dense IDs (assigned in
// order of each community's smallest paper ID) and materializes sorted
// member lists.
func buildCommunityResult(g *graph.Graph, nodeToComm []int, q float64) *CommunityResult {
	members := make(map[int][]string)
	for i, node := range g.Nodes() {
		members[nodeToComm[i]] = append(members[nodeToComm[i]], node.PaperID)
	}

	type community struct {
		minID string
		ids   []string
	}
	all := make([]community, 0, len(members))
	for _, ids := range members {
		sort.Strings(ids)
		all = append(all, community{minID: ids[0], ids: ids})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].minID < all[j].minID })

	communities := make(map[int][]string, len(all))
	for dense, c := range all {
		communities[dense] = c.ids
	}

	if q < 0 {
		q = 0
	}
	return &CommunityResult{Communities: communities, Modularity: q}
}

// AttachClusters writes the partition back onto the nodes' ClusterID
// fields. Called by the analyzer once detection completes; treated as
// analysis-result attachment, not shared mutable state.
func AttachClusters(g *graph.Graph, result *CommunityResult) {
	for clusterID, ids := range result.Communities {
		for _, id := range ids {
			if node, ok := g.Node(id); ok {
				node.ClusterID = clusterID
			}
		}
	}
}
