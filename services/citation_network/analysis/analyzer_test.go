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
	"math"
	"testing"

	"github.com/AleutianAI/AleutianResearch/services/citation_network/graph"
)

func TestAnalyzerAnalyze(t *testing.T) {
	ctx := context.Background()
	analyzer := NewAnalyzer(AnalyzerOptions{})

	t.Run("empty network rejected", func(t *testing.T) {
		g := graph.NewGraph()
		g.Freeze()
		if _, err := analyzer.Analyze(ctx, g); !errors.Is(err, ErrEmptyNetwork) {
			t.Errorf("err = %v, want ErrEmptyNetwork", err)
		}
		if _, err := analyzer.Analyze(ctx, nil); !errors.Is(err, ErrEmptyNetwork) {
			t.Errorf("nil graph err = %v, want ErrEmptyNetwork", err)
		}
	})

	t.Run("full pipeline on a small network", func(t *testing.T) {
		g := twoCliquesGraph(t)
		res, err := analyzer.Analyze(ctx, g)
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}

		if res.NodeCount != 6 || res.EdgeCount != 7 {
			t.Errorf("counts = (%d, %d), want (6, 7)", res.NodeCount, res.EdgeCount)
		}
		wantDensity := 7.0 / 30.0
		if math.Abs(res.Density-wantDensity) > 1e-9 {
			t.Errorf("density = %v, want %v", res.Density, wantDensity)
		}
		if res.ClusteringCoefficient <= 0 {
			t.Errorf("clustering coefficient = %v, want > 0 for triangles", res.ClusteringCoefficient)
		}
		if res.AveragePathLength == nil {
			t.Error("connected network should report an average path length")
		} else if *res.AveragePathLength <= 1 {
			t.Errorf("average path length = %v, want > 1", *res.AveragePathLength)
		}

		if !res.BetweennessExact {
			t.Error("small network should use exact betweenness")
		}
		if !res.PageRankConverged {
			t.Error("small network should converge")
		}
		if len(res.TopCentral) == 0 || len(res.TopPageRank) == 0 || len(res.TopCited) == 0 {
			t.Error("ranking lists should be populated")
		}
		if len(res.Communities) != 2 {
			t.Errorf("communities = %d, want 2", len(res.Communities))
		}
		if res.Modularity < 0 {
			t.Errorf("modularity = %v, want >= 0", res.Modularity)
		}

		if res.NetworkData == nil || len(res.NetworkData.Nodes) != 6 {
			t.Error("network data missing or wrong size")
		}
		if res.VisualizationData == nil || len(res.VisualizationData.Nodes) != 6 {
			t.Error("visualization data missing or wrong size")
		}

		// A run must leave the graph annotated.
		for _, node := range g.Nodes() {
			if node.ClusterID == graph.ClusterUnassigned {
				t.Errorf("node %s left without cluster", node.PaperID)
			}
		}
	})

	t.Run("disconnected network has no path length", func(t *testing.T) {
		g := makeGraph(t,
			[]string{"x1", "x2", "y1", "y2"},
			[][2]string{{"x1", "x2"}, {"y1", "y2"}})
		res, err := analyzer.Analyze(ctx, g)
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		if res.AveragePathLength != nil {
			t.Errorf("average path length = %v, want nil for disconnected", *res.AveragePathLength)
		}
	})

	t.Run("path length skipped above the limit", func(t *testing.T) {
		small := NewAnalyzer(AnalyzerOptions{ExactPathLengthLimit: 2})
		g := makeGraph(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}})
		res, err := small.Analyze(ctx, g)
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		if res.AveragePathLength != nil {
			t.Errorf("average path length = %v, want nil above the limit", *res.AveragePathLength)
		}
	})

	t.Run("annotated scores reach exports", func(t *testing.T) {
		g := makeGraph(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}})
		res, err := analyzer.Analyze(ctx, g)
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		var sawPageRank bool
		for _, n := range res.NetworkData.Nodes {
			if n.PageRank > 0 {
				sawPageRank = true
			}
		}
		if !sawPageRank {
			t.Error("exported nodes carry no pagerank scores")
		}
	})

	t.Run("cancelled context propagates", func(t *testing.T) {
		g := twoCliquesGraph(t)
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := analyzer.Analyze(cancelled, g); err == nil {
			t.Error("expected error from cancelled context")
		}
	})
}

func TestDensity(t *testing.T) {
	t.Run("single node", func(t *testing.T) {
		g := makeGraph(t, []string{"solo"}, nil)
		if d := density(g); d != 0 {
			t.Errorf("density = %v, want 0", d)
		}
	})

	t.Run("complete directed pair", func(t *testing.T) {
		g := makeGraph(t, []string{"a", "b"}, [][2]string{{"a", "b"}, {"b", "a"}})
		if d := density(g); d != 1 {
			t.Errorf("density = %v, want 1", d)
		}
	})
}

func TestAverageClustering(t *testing.T) {
	t.Run("triangle is fully clustered", func(t *testing.T) {
		g := makeGraph(t, []string{"a", "b", "c"},
			[][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}})
		if c := averageClustering(g); math.Abs(c-1.0) > 1e-9 {
			t.Errorf("clustering = %v, want 1.0", c)
		}
	})

	t.Run("chain has no triangles", func(t *testing.T) {
		g := makeGraph(t, []string{"a", "b", "c"},
			[][2]string{{"a", "b"}, {"b", "c"}})
		if c := averageClustering(g); c != 0 {
			t.Errorf("clustering = %v, want 0", c)
		}
	})
}

func TestAveragePathLength(t *testing.T) {
	ctx := context.Background()

	t.Run("chain of three", func(t *testing.T) {
		g := makeGraph(t, []string{"a", "b", "c"},
			[][2]string{{"a", "b"}, {"b", "c"}})
		got := averagePathLength(ctx, g, DefaultExactPathLengthLimit)
		if got == nil {
			t.Fatal("expected a path length for a connected chain")
		}
		// Pairs: (a,b)=1 (a,c)=2 (b,c)=1 in both directions -> mean 4/3.
		if math.Abs(*got-4.0/3.0) > 1e-9 {
			t.Errorf("average path length = %v, want 4/3", *got)
		}
	})

	t.Run("disconnected returns nil", func(t *testing.T) {
		g := makeGraph(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}})
		if got := averagePathLength(ctx, g, DefaultExactPathLengthLimit); got != nil {
			t.Errorf("path length = %v, want nil", *got)
		}
	})
}
