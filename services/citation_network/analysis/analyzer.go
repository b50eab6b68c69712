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
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianResearch/services/citation_network/export"
	"github.com/AleutianAI/AleutianResearch/services/citation_network/graph"
)

var analyzerTracer = otel.Tracer("aleutian.citation_network.analysis.analyzer")

// ErrEmptyNetwork is returned when analysis is requested against a
// graph with no nodes.
var ErrEmptyNetwork = errors.New("citation network is empty")

// DefaultExactPathLengthLimit bounds all-pairs BFS for the average
// path length metric. Larger networks report no path length rather
// than burning quadratic time.
const DefaultExactPathLengthLimit = 500

// DefaultTopN is the length of each ranking list in composite results.
const DefaultTopN = 10

// AnalyzerOptions configures a composite analysis run.
type AnalyzerOptions struct {
	// Centrality configures betweenness and PageRank.
	Centrality CentralityOptions

	// Community configures community detection.
	Community CommunityOptions

	// Heuristics configures gap and trend detection.
	Heuristics HeuristicsConfig

	// TopN is the length of each ranking list. Default: 10
	TopN int

	// ExactPathLengthLimit bounds the average-path-length computation.
	// Default: 500
	ExactPathLengthLimit int

	// VisualizationNodeLimit caps the visualization payload.
	// Default: export.DefaultVisualizationNodeLimit
	VisualizationNodeLimit int

	// Logger receives progress logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// Validate applies defaults for unset values.
func (o *AnalyzerOptions) Validate() {
	o.Centrality.Validate()
	o.Community.Validate()
	o.Heuristics.Validate()
	if o.TopN <= 0 {
		o.TopN = DefaultTopN
	}
	if o.ExactPathLengthLimit <= 0 {
		o.ExactPathLengthLimit = DefaultExactPathLengthLimit
	}
	if o.VisualizationNodeLimit <= 0 {
		o.VisualizationNodeLimit = export.DefaultVisualizationNodeLimit
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// NetworkAnalysisResult is the full output of a composite analysis run.
type NetworkAnalysisResult struct {
	NodeCount int `json:"node_count"`
	EdgeCount int `json:"edge_count"`

	// Density is direct edges over N*(N-1) possible directed edges.
	Density float64 `json:"density"`

	// ClusteringCoefficient is the average local clustering
	// coefficient over the undirected projection.
	ClusteringCoefficient float64 `json:"clustering_coefficient"`

	// AveragePathLength is nil when the undirected projection is
	// disconnected or the network exceeds the exact-computation limit.
	AveragePathLength *float64 `json:"average_path_length"`

	TopCentral  []RankedPaper `json:"top_central"`
	TopPageRank []RankedPaper `json:"top_pagerank"`
	TopCited    []RankedPaper `json:"top_cited"`

	// BetweennessExact is false when betweenness was sampled.
	BetweennessExact bool `json:"betweenness_exact"`

	// PageRankConverged is false when power iteration hit the
	// iteration cap before reaching tolerance.
	PageRankConverged bool `json:"pagerank_converged"`

	Communities map[int][]string `json:"communities"`
	Modularity  float64          `json:"modularity"`

	Gaps   []GapRecord   `json:"research_gaps"`
	Topics []TopicRecord `json:"emerging_topics"`

	NetworkData       *export.NetworkData       `json:"network_data"`
	VisualizationData *export.VisualizationData `json:"visualization_data"`

	AnalysisTimeMs int64 `json:"analysis_time_ms"`
}

// Analyzer runs the composite analysis pipeline over a frozen graph.
//
// An Analyzer is stateless between runs; callers construct one per
// configuration and reuse it across graphs.
type Analyzer struct {
	opts AnalyzerOptions
}

// NewAnalyzer constructs an Analyzer, applying option defaults.
func NewAnalyzer(opts AnalyzerOptions) *Analyzer {
	opts.Validate()
	return &Analyzer{opts: opts}
}

// Analyze runs every analysis stage over the graph and assembles the
// composite result.
//
// Description:
//
//	Centrality (betweenness + PageRank), community detection, and the
//	structural metrics run concurrently; gap and trend detection run
//	after community detection because gaps consume the partition.
//	Scores and cluster assignments are written back onto the graph's
//	nodes before export payloads are built, so a single Analyze call
//	leaves the graph annotated and the result self-contained.
//
// Outputs:
//
//	The assembled result, or ErrEmptyNetwork for a graph with no
//	nodes, or the first stage error (including context cancellation).
func (a *Analyzer) Analyze(ctx context.Context, g *graph.Graph) (*NetworkAnalysisResult, error) {
	ctx, span := analyzerTracer.Start(ctx, "analyzer.Analyze")
	defer span.End()

	if g == nil || g.NodeCount() == 0 {
		return nil, ErrEmptyNetwork
	}
	span.SetAttributes(
		attribute.Int("network.nodes", g.NodeCount()),
		attribute.Int("network.edges", g.EdgeCount()),
	)

	start := time.Now()
	result := &NetworkAnalysisResult{
		NodeCount: g.NodeCount(),
		EdgeCount: g.EdgeCount(),
	}

	var (
		betweenness map[string]float64
		pagerank    map[string]float64
		communities *CommunityResult
	)

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		scores, exact, err := Betweenness(gctx, g, a.opts.Centrality)
		if err != nil {
			return fmt.Errorf("betweenness: %w", err)
		}
		betweenness = scores
		result.BetweennessExact = exact
		return nil
	})

	group.Go(func() error {
		scores, iters, converged, err := PageRank(gctx, g, a.opts.Centrality)
		if err != nil {
			return fmt.Errorf("pagerank: %w", err)
		}
		pagerank = scores
		result.PageRankConverged = converged
		a.opts.Logger.DebugContext(gctx, "pagerank finished",
			"iterations", iters, "converged", converged)
		return nil
	})

	group.Go(func() error {
		res, err := DetectCommunities(gctx, g, a.opts.Community)
		if err != nil {
			return fmt.Errorf("community detection: %w", err)
		}
		communities = res
		return nil
	})

	group.Go(func() error {
		result.Density = density(g)
		result.ClusteringCoefficient = averageClustering(g)
		result.AveragePathLength = averagePathLength(gctx, g, a.opts.ExactPathLengthLimit)
		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	// Annotate nodes before gaps and export read them.
	for _, node := range g.Nodes() {
		node.Betweenness = betweenness[node.PaperID]
		node.PageRank = pagerank[node.PaperID]
	}
	AttachClusters(g, communities)

	result.Communities = communities.Communities
	result.Modularity = communities.Modularity
	result.TopCentral = Rank(betweenness, a.opts.TopN)
	result.TopPageRank = Rank(pagerank, a.opts.TopN)
	result.TopCited = Rank(CitationScores(g), a.opts.TopN)

	result.Gaps = DetectResearchGaps(g, communities, a.opts.Heuristics)
	result.Topics = DetectEmergingTopics(g, a.opts.Heuristics)

	result.NetworkData = export.BuildNetworkData(g)
	result.VisualizationData = export.BuildVisualizationData(g, a.opts.VisualizationNodeLimit)

	result.AnalysisTimeMs = time.Since(start).Milliseconds()
	a.opts.Logger.InfoContext(ctx, "network analysis complete",
		"nodes", result.NodeCount,
		"edges", result.EdgeCount,
		"communities", len(result.Communities),
		"gaps", len(result.Gaps),
		"topics", len(result.Topics),
		"duration_ms", result.AnalysisTimeMs)
	return result, nil
}

// density is direct edges over the N*(N-1) possible directed edges.
func density(g *graph.Graph) float64 {
	n := g.NodeCount()
	if n < 2 {
		return 0
	}
	return float64(g.EdgeCount()) / float64(n*(n-1))
}

// averageClustering computes the mean local clustering coefficient
// over the undirected projection. Nodes with fewer than two neighbors
// contribute zero.
func averageClustering(g *graph.Graph) float64 {
	n := g.NodeCount()
	if n == 0 {
		return 0
	}
	adj := g.UndirectedAdjacency()

	var total float64
	for i := 0; i < n; i++ {
		neighbors := make([]int, 0, len(adj[i]))
		for j := range adj[i] {
			neighbors = append(neighbors, j)
		}
		k := len(neighbors)
		if k < 2 {
			continue
		}
		links := 0
		for a := 0; a < k; a++ {
			for b := a + 1; b < k; b++ {
				if _, ok := adj[neighbors[a]][neighbors[b]]; ok {
					links++
				}
			}
		}
		total += 2 * float64(links) / float64(k*(k-1))
	}
	return total / float64(n)
}

// averagePathLength runs all-pairs BFS over the undirected projection.
// Returns nil when the graph is disconnected, larger than limit, or
// the context is cancelled mid-computation.
func averagePathLength(ctx context.Context, g *graph.Graph, limit int) *float64 {
	n := g.NodeCount()
	if n < 2 || n > limit {
		return nil
	}
	adj := g.UndirectedAdjacency()

	var totalDist, pairs int64
	dist := make([]int, n)
	queue := make([]int, 0, n)

	for src := 0; src < n; src++ {
		if ctx.Err() != nil {
			return nil
		}
		for i := range dist {
			dist[i] = -1
		}
		dist[src] = 0
		queue = append(queue[:0], src)
		reached := 1
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			for w := range adj[v] {
				if dist[w] < 0 {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
					reached++
				}
			}
		}
		if reached < n {
			return nil
		}
		for i, d := range dist {
			if i != src {
				totalDist += int64(d)
				pairs++
			}
		}
	}
	if pairs == 0 {
		return nil
	}
	avg := float64(totalDist) / float64(pairs)
	return &avg
}
