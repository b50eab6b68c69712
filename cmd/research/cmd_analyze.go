// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianResearch/cmd/research/config"
	"github.com/AleutianAI/AleutianResearch/pkg/validation"
	"github.com/AleutianAI/AleutianResearch/services/citation_network/analysis"
	"github.com/AleutianAI/AleutianResearch/services/citation_network/graph"
)

// loadPaperRecords reads a JSON array of paper records and validates
// their identifiers before any graph work happens.
func loadPaperRecords(path string) ([]graph.PaperRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var records []graph.PaperRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.PaperID)
	}
	if err := validation.ValidatePaperIDs(ids); err != nil {
		return nil, err
	}
	return records, nil
}

func runAnalyze(cmd *cobra.Command, args []string) {
	cfg := config.Global

	records, err := loadPaperRecords(args[0])
	if err != nil {
		log.Fatalf("Error loading paper records: %v", err)
	}

	builder := graph.NewBuilder(
		graph.WithMaxNetworkSize(cfg.Engine.MaxNetworkSize),
		graph.WithMaxCitationsPerPaper(cfg.Engine.MaxCitationsPerPaper),
	)
	g, summary, err := builder.Build(context.Background(), records)
	if err != nil {
		log.Fatalf("Error building the citation network: %v", err)
	}
	if summary.SkippedRecords > 0 {
		fmt.Fprintf(os.Stderr, "Skipped %d invalid records\n", summary.SkippedRecords)
	}

	topN := cfg.Engine.TopN
	if analyzeTopN > 0 {
		topN = analyzeTopN
	}
	analyzer := analysis.NewAnalyzer(analysis.AnalyzerOptions{
		Heuristics:             heuristicsFromConfig(cfg.Analysis),
		TopN:                   topN,
		ExactPathLengthLimit:   cfg.Engine.ExactPathLimit,
		VisualizationNodeLimit: cfg.Engine.VisualizationLimit,
	})
	result, err := analyzer.Analyze(context.Background(), g)
	if err != nil {
		log.Fatalf("Error analyzing the citation network: %v", err)
	}

	if analyzeJSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatalf("Error encoding the result: %v", err)
		}
		fmt.Println(string(out))
		return
	}
	printAnalysisSummary(result)
}

func printAnalysisSummary(result *analysis.NetworkAnalysisResult) {
	fmt.Printf("Network: %d papers, %d citation edges (density %.4f)\n",
		result.NodeCount, result.EdgeCount, result.Density)
	fmt.Printf("Clustering coefficient: %.4f\n", result.ClusteringCoefficient)
	if result.AveragePathLength != nil {
		fmt.Printf("Average path length: %.2f\n", *result.AveragePathLength)
	}
	fmt.Printf("Communities: %d (modularity %.4f)\n",
		len(result.Communities), result.Modularity)

	printRanking("Top cited papers", result.TopCited)
	printRanking("Top betweenness", result.TopCentral)
	printRanking("Top PageRank", result.TopPageRank)

	if len(result.Gaps) > 0 {
		fmt.Println("\nResearch gaps:")
		for _, gap := range result.Gaps {
			fmt.Printf("  [%s] %s\n", gap.Severity, gap.Description)
		}
	}
	if len(result.Topics) > 0 {
		fmt.Println("\nEmerging topics:")
		for _, topic := range result.Topics {
			fmt.Printf("  [%s] %s\n", topic.TrendStrength, topic.Topic)
		}
	}
	fmt.Printf("\nAnalysis took %dms\n", result.AnalysisTimeMs)
}

func printRanking(title string, papers []analysis.RankedPaper) {
	if len(papers) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	for i, p := range papers {
		fmt.Printf("  %2d. %s (%.4f)\n", i+1, p.PaperID, p.Score)
	}
}
