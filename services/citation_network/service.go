// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package citation_network is the HTTP-facing citation analytics
// service: build a citation network from paper records, analyze it,
// and persist snapshots.
//
// # Concurrency model
//
// The service holds one network at a time behind a RWMutex. Build,
// Clear, and snapshot restore take the write lock and swap the graph
// wholesale; the first Analyze after a build also takes the write lock
// because it annotates graph nodes with scores. Everything downstream
// reads the immutable cached result under the read lock. There is no
// incremental mutation of a live network.
package citation_network

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/AleutianAI/AleutianResearch/services/citation_network/analysis"
	"github.com/AleutianAI/AleutianResearch/services/citation_network/graph"
	"github.com/AleutianAI/AleutianResearch/services/citation_network/observability"
	"github.com/AleutianAI/AleutianResearch/services/citation_network/snapshot"
)

// ServiceVersion is the citation network service version.
const ServiceVersion = "0.1.0"

// ServiceConfig holds configuration for the citation network service.
type ServiceConfig struct {
	// MaxNetworkSize caps the number of papers per network.
	// Default: graph.DefaultMaxNetworkSize
	MaxNetworkSize int

	// MaxCitationsPerPaper caps outgoing citations per paper.
	// Default: graph.DefaultMaxCitationsPerPaper
	MaxCitationsPerPaper int

	// Analyzer configures the analysis pipeline.
	Analyzer analysis.AnalyzerOptions

	// Store is the optional snapshot store. Snapshot endpoints return
	// ErrSnapshotStoreDisabled when nil.
	Store *snapshot.Store

	// Metrics is the optional metrics sink. Nil disables recording.
	Metrics *observability.Metrics

	// Logger receives service logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultServiceConfig returns sensible defaults.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxNetworkSize:       graph.DefaultMaxNetworkSize,
		MaxCitationsPerPaper: graph.DefaultMaxCitationsPerPaper,
	}
}

// Service owns the citation network lifecycle.
type Service struct {
	config   ServiceConfig
	analyzer *analysis.Analyzer
	logger   *slog.Logger

	mu     sync.RWMutex
	graph  *graph.Graph
	result *analysis.NetworkAnalysisResult
}

// NewService creates the service with the given configuration.
func NewService(config ServiceConfig) *Service {
	if config.MaxNetworkSize <= 0 {
		config.MaxNetworkSize = graph.DefaultMaxNetworkSize
	}
	if config.MaxCitationsPerPaper <= 0 {
		config.MaxCitationsPerPaper = graph.DefaultMaxCitationsPerPaper
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	config.Analyzer.Logger = config.Logger

	return &Service{
		config:   config,
		analyzer: analysis.NewAnalyzer(config.Analyzer),
		logger:   config.Logger,
	}
}

// Build constructs a fresh network from the records and swaps it in.
//
// Description:
//
//	The build runs without holding the service lock; only the final
//	swap is exclusive. A failed build leaves the previous network
//	untouched. Any cached analysis result is invalidated by the swap.
//
// Outputs:
//
//	*graph.BuildSummary - What the builder did with the records.
//	error - graph.ErrEmptyInput when no usable records, builder
//	errors otherwise.
func (s *Service) Build(ctx context.Context, records []graph.PaperRecord) (*graph.BuildSummary, error) {
	start := time.Now()
	builder := graph.NewBuilder(
		graph.WithMaxNetworkSize(s.config.MaxNetworkSize),
		graph.WithMaxCitationsPerPaper(s.config.MaxCitationsPerPaper),
	)
	g, summary, err := builder.Build(ctx, records)
	if err != nil {
		s.config.Metrics.ObserveBuild("error", time.Since(start).Seconds())
		return nil, err
	}

	s.mu.Lock()
	s.graph = g
	s.result = nil
	s.mu.Unlock()

	s.config.Metrics.ObserveBuild("success", time.Since(start).Seconds())
	s.config.Metrics.SetGraphSize(g.NodeCount(), g.EdgeCount())
	s.logger.InfoContext(ctx, "network built",
		"nodes", summary.NodesCreated,
		"edges", summary.EdgesCreated,
		"skipped", summary.SkippedRecords,
		"duration_ms", summary.BuildTimeMs)
	return summary, nil
}

// Analyze runs the full analysis pipeline, or returns the cached
// result from a previous run against the same network.
func (s *Service) Analyze(ctx context.Context) (*analysis.NetworkAnalysisResult, error) {
	s.mu.RLock()
	if s.result != nil {
		result := s.result
		s.mu.RUnlock()
		s.config.Metrics.ObserveCachedAnalysis()
		return result, nil
	}
	s.mu.RUnlock()

	// The first analysis annotates graph nodes, so it runs exclusive.
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result != nil {
		s.config.Metrics.ObserveCachedAnalysis()
		return s.result, nil
	}
	if s.graph == nil {
		return nil, analysis.ErrEmptyNetwork
	}

	start := time.Now()
	result, err := s.analyzer.Analyze(ctx, s.graph)
	if err != nil {
		s.config.Metrics.ObserveAnalysis("error", time.Since(start).Seconds())
		return nil, err
	}
	s.result = result
	s.config.Metrics.ObserveAnalysis("success", time.Since(start).Seconds())
	return result, nil
}

// Clear drops the current network and cached result.
func (s *Service) Clear() {
	s.mu.Lock()
	s.graph = nil
	s.result = nil
	s.mu.Unlock()

	s.config.Metrics.SetGraphSize(0, 0)
	s.logger.Info("network cleared")
}

// Status reports the engine state without triggering analysis.
func (s *Service) Status() StatusResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := StatusResponse{Analyzed: s.result != nil}
	if s.graph != nil {
		status.Built = true
		status.Nodes = s.graph.NodeCount()
		status.Edges = s.graph.EdgeCount()
		status.BuiltAtMilli = s.graph.BuiltAtMilli
	}
	return status
}

// SaveSnapshot stores the current network in the snapshot store.
func (s *Service) SaveSnapshot(ctx context.Context, name string) (snapshot.Entry, error) {
	if s.config.Store == nil {
		return snapshot.Entry{}, ErrSnapshotStoreDisabled
	}

	s.mu.RLock()
	g := s.graph
	s.mu.RUnlock()
	if g == nil {
		return snapshot.Entry{}, analysis.ErrEmptyNetwork
	}

	entry, err := s.config.Store.Put(g, name)
	if err != nil {
		s.config.Metrics.ObserveSnapshotOp("put", "error")
		return snapshot.Entry{}, err
	}
	s.config.Metrics.ObserveSnapshotOp("put", "success")
	s.logger.InfoContext(ctx, "snapshot saved",
		"snapshot_id", entry.ID, "name", name, "nodes", entry.NodeCount)
	return entry, nil
}

// RestoreSnapshot replaces the current network with a stored snapshot.
func (s *Service) RestoreSnapshot(ctx context.Context, id string) (RestoreSnapshotResponse, error) {
	if s.config.Store == nil {
		return RestoreSnapshotResponse{}, ErrSnapshotStoreDisabled
	}

	doc, err := s.config.Store.Get(id)
	if err != nil {
		s.config.Metrics.ObserveSnapshotOp("get", "error")
		return RestoreSnapshotResponse{}, err
	}
	g, err := snapshot.Restore(doc,
		graph.WithMaxNetworkSize(s.config.MaxNetworkSize),
		graph.WithMaxCitationsPerPaper(s.config.MaxCitationsPerPaper),
	)
	if err != nil {
		s.config.Metrics.ObserveSnapshotOp("get", "error")
		return RestoreSnapshotResponse{}, fmt.Errorf("restore snapshot %s: %w", id, err)
	}

	s.mu.Lock()
	s.graph = g
	s.result = nil
	s.mu.Unlock()

	s.config.Metrics.ObserveSnapshotOp("get", "success")
	s.config.Metrics.SetGraphSize(g.NodeCount(), g.EdgeCount())
	s.logger.InfoContext(ctx, "snapshot restored",
		"snapshot_id", id, "nodes", g.NodeCount(), "edges", g.EdgeCount())
	return RestoreSnapshotResponse{
		SnapshotID: id,
		Nodes:      g.NodeCount(),
		Edges:      g.EdgeCount(),
	}, nil
}

// ListSnapshots returns metadata for stored snapshots, newest first.
func (s *Service) ListSnapshots() ([]snapshot.Entry, error) {
	if s.config.Store == nil {
		return nil, ErrSnapshotStoreDisabled
	}
	entries, err := s.config.Store.List()
	if err != nil {
		s.config.Metrics.ObserveSnapshotOp("list", "error")
		return nil, err
	}
	s.config.Metrics.ObserveSnapshotOp("list", "success")
	return entries, nil
}

// DeleteSnapshot removes a stored snapshot.
func (s *Service) DeleteSnapshot(id string) error {
	if s.config.Store == nil {
		return ErrSnapshotStoreDisabled
	}
	if err := s.config.Store.Delete(id); err != nil {
		s.config.Metrics.ObserveSnapshotOp("delete", "error")
		return err
	}
	s.config.Metrics.ObserveSnapshotOp("delete", "success")
	return nil
}
