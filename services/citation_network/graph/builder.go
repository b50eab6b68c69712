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
	"context"
	"fmt"
	"sort"
	"time"
)

// PaperRecord is a raw bibliographic record handed to the builder.
//
// Records come from the ingestion layer already decoded; the builder
// performs per-record validation and recovers from malformed entries by
// skipping them rather than aborting the batch.
type PaperRecord struct {
	PaperID       string   `json:"paper_id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Year          int      `json:"year"`
	Journal       string   `json:"journal"`
	DOI           string   `json:"doi,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
	Abstract      string   `json:"abstract,omitempty"`
	CitationCount int      `json:"citation_count"`
	Citations     []string `json:"citations,omitempty"`
}

// BuildSummary reports the outcome of a build, including per-record
// issues that were recovered locally instead of failing the batch.
type BuildSummary struct {
	// PapersReceived is the raw record count before validation.
	PapersReceived int `json:"papers_received"`

	// NodesCreated is the number of nodes in the resulting graph.
	NodesCreated int `json:"nodes_created"`

	// EdgesCreated is the number of direct citation edges.
	EdgesCreated int `json:"edges_created"`

	// SkippedRecords counts records dropped for missing IDs or
	// duplicate IDs.
	SkippedRecords int `json:"skipped_records"`

	// DanglingCitations counts citation references to paper IDs not
	// present in the batch. These are preserved on the nodes but have
	// no adjacency edge.
	DanglingCitations int `json:"dangling_citations"`

	// Truncated indicates the batch exceeded the configured network
	// size and was cut to fit.
	Truncated bool `json:"truncated"`

	// Warnings carries human-readable descriptions of recovered issues.
	Warnings []string `json:"warnings,omitempty"`

	// BuildTimeMs is the wall-clock build duration in milliseconds.
	BuildTimeMs int64 `json:"build_time_ms"`
}

// BuilderOptions configures Builder behavior.
type BuilderOptions struct {
	// MaxNetworkSize is the maximum number of papers per network.
	// Batches beyond this are truncated with a warning, not rejected.
	// Default: 10,000
	MaxNetworkSize int

	// MaxCitationsPerPaper bounds a single node's citation list.
	// Default: 1,000
	MaxCitationsPerPaper int
}

// DefaultBuilderOptions returns sensible defaults.
func DefaultBuilderOptions() BuilderOptions {
	return BuilderOptions{
		MaxNetworkSize:       DefaultMaxNetworkSize,
		MaxCitationsPerPaper: DefaultMaxCitationsPerPaper,
	}
}

// BuilderOption is a functional option for configuring Builder.
type BuilderOption func(*BuilderOptions)

// WithMaxNetworkSize sets the maximum number of papers per network.
func WithMaxNetworkSize(n int) BuilderOption {
	return func(o *BuilderOptions) {
		o.MaxNetworkSize = n
	}
}

// WithMaxCitationsPerPaper bounds a single node's citation list.
func WithMaxCitationsPerPaper(n int) BuilderOption {
	return func(o *BuilderOptions) {
		o.MaxCitationsPerPaper = n
	}
}

// Builder converts raw paper records into a frozen citation graph.
//
// A Builder is stateless between calls; each Build produces a fresh
// graph and never merges with prior state. The caller owns publishing
// the new graph (swap under lock) so readers never observe a partially
// built network.
type Builder struct {
	options BuilderOptions
}

// NewBuilder creates a builder with the given options.
func NewBuilder(opts ...BuilderOption) *Builder {
	options := DefaultBuilderOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Builder{options: options}
}

// Build constructs a frozen citation graph from raw records.
//
// Description:
//
//	Two passes over the batch. Pass one validates records and creates
//	nodes: records without a paper ID, with an ID already seen in the
//	batch, or with a nonzero publication year outside the accepted
//	range are skipped and counted. Pass two wires direct edges:
//	for every node, each citation whose target exists in the node set
//	becomes a directed edge; dangling targets are counted and kept in
//	the node's Citations list for derived-edge computation.
//
// Inputs:
//
//	ctx - Context for cancellation. Checked between passes.
//	records - Raw paper records. Must contain at least one usable record.
//
// Outputs:
//
//	*Graph - The frozen graph. Nil on error.
//	*BuildSummary - Always non-nil when the graph is non-nil.
//	error - ErrEmptyInput if the batch is empty or no records survive
//	validation; ctx.Err() on cancellation.
//
// Edge cases:
//
//	Batches larger than MaxNetworkSize are truncated, reported via
//	Summary.Truncated plus a warning, and never rejected outright.
func (b *Builder) Build(ctx context.Context, records []PaperRecord) (*Graph, *BuildSummary, error) {
	start := time.Now()

	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%w: empty batch", ErrEmptyInput)
	}

	summary := &BuildSummary{PapersReceived: len(records)}

	if len(records) > b.options.MaxNetworkSize {
		summary.Truncated = true
		summary.Warnings = append(summary.Warnings, fmt.Sprintf(
			"batch of %d papers exceeds network size limit %d; truncated",
			len(records), b.options.MaxNetworkSize))
		records = records[:b.options.MaxNetworkSize]
	}

	g := NewGraph(WithMaxNodes(b.options.MaxNetworkSize))

	for i := range records {
		rec := &records[i]
		if rec.PaperID == "" {
			summary.SkippedRecords++
			summary.Warnings = append(summary.Warnings,
				fmt.Sprintf("record %d: missing paper_id; skipped", i))
			continue
		}
		if _, exists := g.Node(rec.PaperID); exists {
			summary.SkippedRecords++
			summary.Warnings = append(summary.Warnings,
				fmt.Sprintf("record %d: duplicate paper_id %s; skipped", i, rec.PaperID))
			continue
		}
		if rec.Year != 0 && (rec.Year < MinPublicationYear || rec.Year > MaxPublicationYear) {
			summary.SkippedRecords++
			summary.Warnings = append(summary.Warnings,
				fmt.Sprintf("record %d: year %d out of range; skipped", i, rec.Year))
			continue
		}

		node := b.nodeFromRecord(rec, summary)
		if _, err := g.AddNode(node); err != nil {
			summary.SkippedRecords++
			summary.Warnings = append(summary.Warnings,
				fmt.Sprintf("record %d: %v; skipped", i, err))
		}
	}

	if g.NodeCount() == 0 {
		return nil, nil, fmt.Errorf("%w: all %d records skipped", ErrEmptyInput, len(records))
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	for _, node := range g.Nodes() {
		for _, cited := range node.Citations {
			if cited == node.PaperID {
				continue
			}
			if _, exists := g.Node(cited); !exists {
				summary.DanglingCitations++
				continue
			}
			if err := g.AddEdge(node.PaperID, cited); err != nil {
				return nil, nil, fmt.Errorf("wire edge %s->%s: %w", node.PaperID, cited, err)
			}
		}
	}

	g.Freeze()

	summary.NodesCreated = g.NodeCount()
	summary.EdgesCreated = g.EdgeCount()
	summary.BuildTimeMs = time.Since(start).Milliseconds()

	return g, summary, nil
}

// nodeFromRecord converts a validated record into a node, normalizing
// keyword and citation lists to sorted, deduplicated sets.
func (b *Builder) nodeFromRecord(rec *PaperRecord, summary *BuildSummary) *CitationNode {
	citations := dedupeSorted(rec.Citations)
	if len(citations) > b.options.MaxCitationsPerPaper {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf(
			"paper %s: %d citations exceeds limit %d; truncated",
			rec.PaperID, len(citations), b.options.MaxCitationsPerPaper))
		citations = citations[:b.options.MaxCitationsPerPaper]
	}

	count := rec.CitationCount
	if count < 0 {
		count = 0
	}

	return &CitationNode{
		PaperID:       rec.PaperID,
		Title:         rec.Title,
		Authors:       append([]string(nil), rec.Authors...),
		Year:          rec.Year,
		Journal:       rec.Journal,
		DOI:           rec.DOI,
		Keywords:      dedupeSorted(rec.Keywords),
		Abstract:      rec.Abstract,
		CitationCount: count,
		Citations:     citations,
	}
}

// dedupeSorted returns a sorted copy of vals with empty strings and
// duplicates removed.
func dedupeSorted(vals []string) []string {
	if len(vals) == 0 {
		return nil
	}
	out := make([]string, 0, len(vals))
	seen := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}
