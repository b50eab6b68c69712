// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package analysis implements the structural analyses that run against a
// frozen citation graph: centrality ranking, community detection, and
// the gap/trend heuristics. All algorithms read the graph only and write
// results either to their own result structures or, for cluster and
// centrality attachments, back onto nodes as analysis-result fields.
package analysis

import (
	"context"
	"math"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/AleutianResearch/services/citation_network/graph"
)

var centralityTracer = otel.Tracer("citation_network.centrality")

// Centrality configuration constants.
const (
	// DefaultExactBetweennessLimit is the node count above which
	// betweenness switches from exact Brandes to source sampling.
	// This is a documented latency/accuracy trade-off, not a silent
	// behavior change.
	DefaultExactBetweennessLimit = 2_000

	// DefaultBetweennessSamples is the number of BFS sources used by
	// the sampled variant.
	DefaultBetweennessSamples = 256

	// DefaultDampingFactor is the probability of following a citation
	// (vs random jump). Standard value from the original PageRank paper.
	DefaultDampingFactor = 0.85

	// DefaultMaxIterations is the maximum PageRank iterations.
	DefaultMaxIterations = 100

	// DefaultConvergence stops power iteration when the max per-node
	// score change drops below this threshold.
	DefaultConvergence = 1e-6
)

// CentralityOptions configures the centrality computations.
type CentralityOptions struct {
	// ExactBetweennessLimit is the node count threshold for exact
	// Brandes. Default: 2,000
	ExactBetweennessLimit int

	// BetweennessSamples is the source sample count above the limit.
	// Default: 256
	BetweennessSamples int

	// DampingFactor is the PageRank damping factor. Default: 0.85
	DampingFactor float64

	// MaxIterations is the PageRank iteration cap. Default: 100
	MaxIterations int

	// Convergence is the PageRank convergence tolerance. Default: 1e-6
	Convergence float64
}

// Validate checks options and applies defaults for invalid values.
func (o *CentralityOptions) Validate() {
	if o.ExactBetweennessLimit <= 0 {
		o.ExactBetweennessLimit = DefaultExactBetweennessLimit
	}
	if o.BetweennessSamples <= 0 {
		o.BetweennessSamples = DefaultBetweennessSamples
	}
	if o.DampingFactor <= 0 || o.DampingFactor >= 1 {
		o.DampingFactor = DefaultDampingFactor
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Convergence <= 0 {
		o.Convergence = DefaultConvergence
	}
}

// DefaultCentralityOptions returns sensible defaults.
func DefaultCentralityOptions() CentralityOptions {
	return CentralityOptions{
		ExactBetweennessLimit: DefaultExactBetweennessLimit,
		BetweennessSamples:    DefaultBetweennessSamples,
		DampingFactor:         DefaultDampingFactor,
		MaxIterations:         DefaultMaxIterations,
		Convergence:           DefaultConvergence,
	}
}

// RankedPaper is a single entry in a descending ranking list.
type RankedPaper struct {
	PaperID string  `json:"paper_id"`
	Score   float64 `json:"score"`
}

// CentralityResult holds the three independent rankings.
//
// The lists are computed and sorted independently; they are not
// required to agree with each other.
type CentralityResult struct {
	// Betweenness maps paper ID to normalized betweenness centrality.
	Betweenness map[string]float64

	// PageRank maps paper ID to PageRank score. Scores sum to ~1.0.
	PageRank map[string]float64

	// BetweennessExact is false when the sampled variant was used.
	BetweennessExact bool

	// PageRankIterations is the number of power iterations performed.
	PageRankIterations int

	// PageRankConverged is false if MaxIterations was reached before
	// the tolerance; the scores are then the best available
	// approximation, not a failure.
	PageRankConverged bool
}

// Betweenness computes betweenness centrality for all nodes.
//
// Description:
//
//	Brandes' algorithm over the directed citation graph. Below
//	ExactBetweennessLimit every node is a BFS source (exact); above it
//	a deterministic stride sample of sources is used and accumulated
//	scores are scaled by n/samples. Scores are normalized to [0, 1]
//	with the directed-graph factor (n-1)(n-2).
//
// Inputs:
//
//	ctx - Checked between BFS sources; long runs abort on cancellation.
//	g - Frozen graph.
//	opts - Centrality options (validated defensively).
//
// Outputs:
//
//	map[string]float64 - Score per paper ID. Every node is present.
//	bool - True if the exact variant ran.
//	error - Only ctx.Err().
//
// Complexity: O(S × (V + E)) where S is the source count.
func Betweenness(ctx context.Context, g *graph.Graph, opts CentralityOptions) (map[string]float64, bool, error) {
	opts.Validate()

	n := g.NodeCount()
	ctx, span := centralityTracer.Start(ctx, "analysis.Betweenness")
	defer span.End()
	span.SetAttributes(
		attribute.Int("node_count", n),
		attribute.Int("edge_count", g.EdgeCount()),
	)

	scores := make([]float64, n)

	exact := n <= opts.ExactBetweennessLimit
	sources := brandesSources(n, exact, opts.BetweennessSamples)
	span.SetAttributes(
		attribute.Bool("exact", exact),
		attribute.Int("sources", len(sources)),
	)

	if n >= 3 {
		for _, s := range sources {
			if err := ctx.Err(); err != nil {
				return nil, exact, err
			}
			brandesFromSource(g, s, scores)
		}
	}

	// Scale sampled runs back up, then normalize.
	scale := 1.0
	if !exact && len(sources) > 0 {
		scale = float64(n) / float64(len(sources))
	}
	norm := float64((n - 1) * (n - 2))

	out := make(map[string]float64, n)
	for i, node := range g.Nodes() {
		v := scores[i] * scale
		if norm > 0 {
			v /= norm
		}
		out[node.PaperID] = v
	}
	return out, exact, nil
}

// brandesSources picks BFS sources: all nodes when exact, otherwise a
// deterministic stride over the arena. A fixed stride keeps sampled
// results reproducible across runs without an RNG.
func brandesSources(n int, exact bool, samples int) []int {
	if exact || samples >= n {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}
	stride := n / samples
	if stride < 1 {
		stride = 1
	}
	picked := make([]int, 0, samples)
	for i := 0; i < n && len(picked) < samples; i += stride {
		picked = append(picked, i)
	}
	return picked
}

// brandesFromSource runs one BFS + dependency accumulation pass and
// adds the partial scores into cb.
func brandesFromSource(g *graph.Graph, s int, cb []float64) {
	n := g.NodeCount()

	stack := make([]int, 0, n)
	queue := make([]int, 0, n)
	pred := make([][]int, n)
	sigma := make([]float64, n)
	dist := make([]int, n)
	for i := range dist {
		dist[i] = -1
	}

	sigma[s] = 1
	dist[s] = 0
	queue = append(queue, s)

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		stack = append(stack, v)
		for _, w := range g.OutNeighbors(v) {
			if dist[w] < 0 {
				dist[w] = dist[v] + 1
				queue = append(queue, w)
			}
			if dist[w] == dist[v]+1 {
				sigma[w] += sigma[v]
				pred[w] = append(pred[w], v)
			}
		}
	}

	delta := make([]float64, n)
	for i := len(stack) - 1; i >= 0; i-- {
		w := stack[i]
		for _, v := range pred[w] {
			delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
		}
		if w != s {
			cb[w] += delta[w]
		}
	}
}

// PageRank computes PageRank scores for all nodes.
//
// Description:
//
//	Power iteration over the directed citation graph with the standard
//	damping model. Sink papers (no outgoing citations) redistribute
//	their rank evenly across all nodes, preventing rank leakage.
//	Non-convergence after MaxIterations is reported via the result,
//	not as an error: the caller gets the best available approximation
//	plus Converged == false.
//
// Complexity: O(k × E) where k is iterations to converge (~20 typical).
func PageRank(ctx context.Context, g *graph.Graph, opts CentralityOptions) (map[string]float64, int, bool, error) {
	opts.Validate()

	n := g.NodeCount()
	ctx, span := centralityTracer.Start(ctx, "analysis.PageRank")
	defer span.End()
	span.SetAttributes(
		attribute.Int("node_count", n),
		attribute.Float64("damping_factor", opts.DampingFactor),
	)

	if n == 0 {
		return map[string]float64{}, 0, true, nil
	}

	d := opts.DampingFactor
	N := float64(n)

	scores := make([]float64, n)
	next := make([]float64, n)
	for i := range scores {
		scores[i] = 1.0 / N
	}

	iterations := 0
	converged := false

	for iterations < opts.MaxIterations {
		if err := ctx.Err(); err != nil {
			return nil, iterations, false, err
		}
		iterations++

		// Rank lost to sink nodes, redistributed uniformly.
		sinkMass := 0.0
		for i := 0; i < n; i++ {
			if len(g.OutNeighbors(i)) == 0 {
				sinkMass += scores[i]
			}
		}

		base := (1-d)/N + d*sinkMass/N
		for i := range next {
			next[i] = base
		}
		for v := 0; v < n; v++ {
			out := g.OutNeighbors(v)
			if len(out) == 0 {
				continue
			}
			share := d * scores[v] / float64(len(out))
			for _, w := range out {
				next[w] += share
			}
		}

		maxDiff := 0.0
		for i := range next {
			diff := math.Abs(next[i] - scores[i])
			if diff > maxDiff {
				maxDiff = diff
			}
		}
		scores, next = next, scores

		if maxDiff < opts.Convergence {
			converged = true
			break
		}
	}

	span.SetAttributes(
		attribute.Int("iterations", iterations),
		attribute.Bool("converged", converged),
	)

	out := make(map[string]float64, n)
	for i, node := range g.Nodes() {
		out[node.PaperID] = scores[i]
	}
	return out, iterations, converged, nil
}

// CitationScores returns each node's source-reported citation count as
// a score map. This deliberately ignores in-graph degree: the data
// source's count covers citations from outside the ingested batch.
func CitationScores(g *graph.Graph) map[string]float64 {
	out := make(map[string]float64, g.NodeCount())
	for _, node := range g.Nodes() {
		out[node.PaperID] = float64(node.CitationCount)
	}
	return out
}

// Rank converts a score map into a descending ranking list.
//
// Ties break by ascending paper ID so rankings are deterministic across
// runs. A topN <= 0 returns the full ranking.
func Rank(scores map[string]float64, topN int) []RankedPaper {
	ranked := make([]RankedPaper, 0, len(scores))
	for id, score := range scores {
		ranked = append(ranked, RankedPaper{PaperID: id, Score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].PaperID < ranked[j].PaperID
	})
	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
