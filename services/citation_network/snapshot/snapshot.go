// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package snapshot persists citation networks and restores them.
//
// Two backends are provided: plain JSON files for operator-driven
// save/load, and an embedded BadgerDB store for keeping many snapshots
// across restarts without a shared filesystem.
//
// A snapshot captures node attributes and direct citation edges.
// Derived analysis state (betweenness, pagerank, cluster assignments)
// is intentionally not restored; re-running analysis reproduces it.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/AleutianAI/AleutianResearch/services/citation_network/graph"
)

// FormatVersion is written into every snapshot and checked on load.
const FormatVersion = 1

// ErrSnapshotNotFound is returned when a requested snapshot does not
// exist in the store or on disk.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrFormatVersion is returned when a snapshot was written by an
// incompatible format version.
var ErrFormatVersion = errors.New("unsupported snapshot format version")

// PersistenceError wraps I/O and codec failures with the operation and
// target that failed.
type PersistenceError struct {
	// Op is the failed operation: "save", "load", "put", "get",
	// "list", or "delete".
	Op string

	// Path is the file path or store key involved.
	Path string

	// Err is the underlying cause.
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("snapshot %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Document is the serialized form of a citation network.
type Document struct {
	// Version is the snapshot format version.
	Version int `json:"version"`

	// SavedAtMilli is the wall-clock save time in Unix milliseconds.
	SavedAtMilli int64 `json:"saved_at_ms"`

	// Papers holds every node with its citation list; edges are
	// reconstructed from the lists on load.
	Papers []graph.PaperRecord `json:"papers"`
}

// Snapshot converts a graph into its serialized document.
func Snapshot(g *graph.Graph) *Document {
	nodes := g.Nodes()
	doc := &Document{
		Version:      FormatVersion,
		SavedAtMilli: time.Now().UnixMilli(),
		Papers:       make([]graph.PaperRecord, 0, len(nodes)),
	}
	for _, n := range nodes {
		doc.Papers = append(doc.Papers, graph.PaperRecord{
			PaperID:       n.PaperID,
			Title:         n.Title,
			Authors:       n.Authors,
			Year:          n.Year,
			Journal:       n.Journal,
			DOI:           n.DOI,
			Keywords:      n.Keywords,
			Abstract:      n.Abstract,
			CitationCount: n.CitationCount,
			Citations:     n.Citations,
		})
	}
	return doc
}

// Restore rebuilds a frozen graph from a document.
//
// The graph is rebuilt through the normal builder path, so dangling
// citations and record validation behave exactly as in a live build.
// An empty document yields an empty frozen graph rather than an error.
func Restore(doc *Document, opts ...graph.BuilderOption) (*graph.Graph, error) {
	if doc.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrFormatVersion, doc.Version)
	}
	if len(doc.Papers) == 0 {
		g := graph.NewGraph()
		g.Freeze()
		return g, nil
	}
	builder := graph.NewBuilder(opts...)
	g, _, err := builder.Build(context.Background(), doc.Papers)
	if err != nil {
		return nil, fmt.Errorf("rebuild graph: %w", err)
	}
	return g, nil
}

// Save writes the graph as a JSON snapshot file.
//
// The write goes through a temp file in the same directory followed by
// a rename, so a crash mid-write never leaves a torn snapshot at path.
func Save(g *graph.Graph, path string) error {
	doc := Snapshot(g)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "save", Path: path, Err: err}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return &PersistenceError{Op: "save", Path: path, Err: err}
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return &PersistenceError{Op: "save", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &PersistenceError{Op: "save", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &PersistenceError{Op: "save", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &PersistenceError{Op: "save", Path: path, Err: err}
	}
	return nil
}

// Load reads a JSON snapshot file and rebuilds the graph.
func Load(path string, opts ...graph.BuilderOption) (*graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &PersistenceError{Op: "load", Path: path, Err: ErrSnapshotNotFound}
		}
		return nil, &PersistenceError{Op: "load", Path: path, Err: err}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &PersistenceError{Op: "load", Path: path, Err: err}
	}

	g, err := Restore(&doc, opts...)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Path: path, Err: err}
	}
	return g, nil
}
