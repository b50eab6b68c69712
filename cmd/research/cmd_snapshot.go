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
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianResearch/cmd/research/config"
	"github.com/AleutianAI/AleutianResearch/services/citation_network/graph"
	"github.com/AleutianAI/AleutianResearch/services/citation_network/snapshot"
)

func runSnapshotSave(cmd *cobra.Command, args []string) {
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

	if err := snapshot.Save(g, args[1]); err != nil {
		log.Fatalf("Error writing the snapshot: %v", err)
	}
	fmt.Printf("Saved %d papers and %d edges to %s\n",
		summary.NodesCreated, summary.EdgesCreated, args[1])
}

func runSnapshotInspect(cmd *cobra.Command, args []string) {
	cfg := config.Global

	g, err := snapshot.Load(args[0],
		graph.WithMaxNetworkSize(cfg.Engine.MaxNetworkSize),
		graph.WithMaxCitationsPerPaper(cfg.Engine.MaxCitationsPerPaper),
	)
	if err != nil {
		log.Fatalf("Error loading the snapshot: %v", err)
	}

	fmt.Printf("Snapshot: %s\n", args[0])
	fmt.Printf("  Papers: %d\n", g.NodeCount())
	fmt.Printf("  Citation edges: %d\n", g.EdgeCount())
	if g.BuiltAtMilli > 0 {
		builtAt := time.UnixMilli(g.BuiltAtMilli).UTC()
		fmt.Printf("  Built at: %s\n", builtAt.Format(time.RFC3339))
	}
}
