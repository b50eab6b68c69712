// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package citation_network

import (
	"github.com/AleutianAI/AleutianResearch/services/citation_network/graph"
	"github.com/AleutianAI/AleutianResearch/services/citation_network/snapshot"
)

// PaperInput is one paper record in a build request.
//
// Validation happens at the binding layer; records that pass binding
// but fail graph-level checks (duplicate ids, self-citations) are
// skipped with warnings in the build summary rather than rejected.
type PaperInput struct {
	// PaperID uniquely identifies the paper within the request.
	PaperID string `json:"paper_id" binding:"required,max=256"`

	// Title is the paper title.
	Title string `json:"title" binding:"required,max=2048"`

	// Authors is the ordered author list.
	Authors []string `json:"authors,omitempty" binding:"omitempty,max=500,dive,max=512"`

	// Year is the publication year.
	Year int `json:"year" binding:"required,gte=1900,lte=2030"`

	// Journal is the publication venue.
	Journal string `json:"journal,omitempty" binding:"omitempty,max=1024"`

	// DOI is the optional digital object identifier.
	DOI string `json:"doi,omitempty" binding:"omitempty,max=256"`

	// Keywords are free-form subject keywords.
	Keywords []string `json:"keywords,omitempty" binding:"omitempty,max=100,dive,max=256"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract,omitempty"`

	// CitationCount is the source-reported global citation count,
	// independent of how many citing papers appear in this request.
	CitationCount int `json:"citation_count,omitempty" binding:"omitempty,gte=0"`

	// Citations lists paper IDs this paper cites.
	Citations []string `json:"citations,omitempty" binding:"omitempty,max=1000,dive,max=256"`
}

// record converts the API input into a builder record.
func (p *PaperInput) record() graph.PaperRecord {
	return graph.PaperRecord{
		PaperID:       p.PaperID,
		Title:         p.Title,
		Authors:       p.Authors,
		Year:          p.Year,
		Journal:       p.Journal,
		DOI:           p.DOI,
		Keywords:      p.Keywords,
		Abstract:      p.Abstract,
		CitationCount: p.CitationCount,
		Citations:     p.Citations,
	}
}

// BuildRequest is the body of POST /v1/citenet/build.
type BuildRequest struct {
	// Papers is the record set to build the network from.
	Papers []PaperInput `json:"papers" binding:"required,min=1,max=10000,dive"`
}

// records converts the request into builder records.
func (r *BuildRequest) records() []graph.PaperRecord {
	out := make([]graph.PaperRecord, 0, len(r.Papers))
	for i := range r.Papers {
		out = append(out, r.Papers[i].record())
	}
	return out
}

// BuildResponse is the response of POST /v1/citenet/build.
type BuildResponse struct {
	// Summary reports what the builder did with the records.
	Summary *graph.BuildSummary `json:"summary"`
}

// StatusResponse reports the engine's current state.
type StatusResponse struct {
	// Built is true when a network is loaded.
	Built bool `json:"built"`

	// Nodes and Edges describe the loaded network; zero when unbuilt.
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`

	// BuiltAtMilli is the build wall-clock time in Unix milliseconds.
	BuiltAtMilli int64 `json:"built_at_ms,omitempty"`

	// Analyzed is true when a cached analysis result exists.
	Analyzed bool `json:"analyzed"`
}

// SaveSnapshotRequest is the body of POST /v1/citenet/snapshots.
type SaveSnapshotRequest struct {
	// Name is an optional operator label for the snapshot.
	Name string `json:"name,omitempty" binding:"omitempty,max=256"`
}

// SaveSnapshotResponse is the response of POST /v1/citenet/snapshots.
type SaveSnapshotResponse struct {
	Snapshot snapshot.Entry `json:"snapshot"`
}

// ListSnapshotsResponse is the response of GET /v1/citenet/snapshots.
type ListSnapshotsResponse struct {
	Snapshots []snapshot.Entry `json:"snapshots"`
}

// RestoreSnapshotResponse is the response of
// POST /v1/citenet/snapshots/:id/restore.
type RestoreSnapshotResponse struct {
	// SnapshotID is the restored snapshot's ID.
	SnapshotID string `json:"snapshot_id"`

	// Nodes and Edges describe the restored network.
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
}

// HealthResponse is the response of GET /v1/citenet/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is the common error body.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is the error code (optional).
	Code string `json:"code,omitempty"`

	// Details provides additional error context (optional).
	Details string `json:"details,omitempty"`
}
