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
	"fmt"
	"log"

	"github.com/AleutianAI/AleutianResearch/cmd/research/config"
	citenet "github.com/AleutianAI/AleutianResearch/services/citation_network"
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	servePort     string
	serveInMemory bool
	analyzeJSON   bool
	analyzeTopN   int

	rootCmd = &cobra.Command{
		Use:   "research",
		Short: "A cli to run and manage the Aleutian citation network service",
		Long: `Research builds citation networks from paper records and runs
				centrality, community, gap, and trend analysis over them,
				either as a long-running HTTP service or as one-shot commands.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := config.Load(); err != nil {
				log.Fatalf("Error loading the config: %v", err)
			}
		},
	}

	// --- Service ---
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the citation network analysis HTTP service",
		Run:   runServe, // Defined in serve.go
	}

	// --- One-shot analysis ---
	analyzeCmd = &cobra.Command{
		Use:   "analyze [papers.json]",
		Short: "Build a citation network from a JSON file and print the analysis",
		Args:  cobra.ExactArgs(1),
		Run:   runAnalyze, // Defined in cmd_analyze.go
	}

	// --- Snapshot files ---
	snapshotCmd = &cobra.Command{
		Use:   "snapshot",
		Short: "Save and inspect citation network snapshot files",
	}
	snapshotSaveCmd = &cobra.Command{
		Use:   "save [papers.json] [snapshot.json]",
		Short: "Build a network from paper records and write a snapshot file",
		Args:  cobra.ExactArgs(2),
		Run:   runSnapshotSave, // Defined in cmd_snapshot.go
	}
	snapshotInspectCmd = &cobra.Command{
		Use:   "inspect [snapshot.json]",
		Short: "Load a snapshot file and print its summary",
		Args:  cobra.ExactArgs(1),
		Run:   runSnapshotInspect, // Defined in cmd_snapshot.go
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the service version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("research " + citenet.ServiceVersion)
		},
	}
)

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "",
		"Port to listen on (overrides the config file)")
	serveCmd.Flags().BoolVar(&serveInMemory, "in-memory", false,
		"Use an in-memory snapshot store instead of disk")

	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false,
		"Print the full analysis result as JSON")
	analyzeCmd.Flags().IntVar(&analyzeTopN, "top", 0,
		"Number of papers per ranking list (overrides the config file)")

	snapshotCmd.AddCommand(snapshotSaveCmd)
	snapshotCmd.AddCommand(snapshotInspectCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(versionCmd)
}
