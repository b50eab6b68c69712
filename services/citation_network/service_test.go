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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianResearch/services/citation_network/analysis"
	"github.com/AleutianAI/AleutianResearch/services/citation_network/graph"
	"github.com/AleutianAI/AleutianResearch/services/citation_network/snapshot"
)

func testRecords() []graph.PaperRecord {
	return []graph.PaperRecord{
		{PaperID: "paper1", Title: "Seminal work", Year: 2018, CitationCount: 50,
			Keywords: []string{"graphs"}, Citations: []string{"paper2", "paper3"}},
		{PaperID: "paper2", Title: "Extension", Year: 2020, CitationCount: 20,
			Keywords: []string{"graphs"}, Citations: []string{"paper4"}},
		{PaperID: "paper3", Title: "Alternative", Year: 2021, CitationCount: 10,
			Citations: []string{"paper1"}},
		{PaperID: "paper4", Title: "Survey", Year: 2023, CitationCount: 5},
	}
}

func newTestService(t *testing.T, withStore bool) *Service {
	t.Helper()
	cfg := DefaultServiceConfig()
	if withStore {
		store, err := snapshot.NewStore(snapshot.InMemoryStoreConfig())
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		cfg.Store = store
	}
	return NewService(cfg)
}

func TestServiceBuild(t *testing.T) {
	ctx := context.Background()

	t.Run("builds and reports summary", func(t *testing.T) {
		svc := newTestService(t, false)
		summary, err := svc.Build(ctx, testRecords())
		require.NoError(t, err)
		assert.Equal(t, 4, summary.NodesCreated)
		assert.Equal(t, 4, summary.EdgesCreated)

		status := svc.Status()
		assert.True(t, status.Built)
		assert.Equal(t, 4, status.Nodes)
		assert.False(t, status.Analyzed)
	})

	t.Run("empty input rejected", func(t *testing.T) {
		svc := newTestService(t, false)
		_, err := svc.Build(ctx, nil)
		assert.ErrorIs(t, err, graph.ErrEmptyInput)
	})

	t.Run("failed build keeps previous network", func(t *testing.T) {
		svc := newTestService(t, false)
		_, err := svc.Build(ctx, testRecords())
		require.NoError(t, err)

		_, err = svc.Build(ctx, []graph.PaperRecord{{PaperID: "", Title: "no id"}})
		assert.ErrorIs(t, err, graph.ErrEmptyInput)
		assert.True(t, svc.Status().Built, "previous network should survive a failed build")
		assert.Equal(t, 4, svc.Status().Nodes)
	})

	t.Run("rebuild invalidates cached analysis", func(t *testing.T) {
		svc := newTestService(t, false)
		_, err := svc.Build(ctx, testRecords())
		require.NoError(t, err)
		_, err = svc.Analyze(ctx)
		require.NoError(t, err)
		assert.True(t, svc.Status().Analyzed)

		_, err = svc.Build(ctx, testRecords()[:2])
		require.NoError(t, err)
		assert.False(t, svc.Status().Analyzed)
	})
}

func TestServiceAnalyze(t *testing.T) {
	ctx := context.Background()

	t.Run("unbuilt network rejected", func(t *testing.T) {
		svc := newTestService(t, false)
		_, err := svc.Analyze(ctx)
		assert.ErrorIs(t, err, analysis.ErrEmptyNetwork)
	})

	t.Run("result cached across calls", func(t *testing.T) {
		svc := newTestService(t, false)
		_, err := svc.Build(ctx, testRecords())
		require.NoError(t, err)

		first, err := svc.Analyze(ctx)
		require.NoError(t, err)
		second, err := svc.Analyze(ctx)
		require.NoError(t, err)
		assert.Same(t, first, second, "second call should return the cached result")
	})

	t.Run("full result populated", func(t *testing.T) {
		svc := newTestService(t, false)
		_, err := svc.Build(ctx, testRecords())
		require.NoError(t, err)

		result, err := svc.Analyze(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, result.NodeCount)
		assert.NotEmpty(t, result.TopCited)
		assert.Equal(t, "paper1", result.TopCited[0].PaperID)
		assert.NotNil(t, result.NetworkData)
		assert.NotNil(t, result.VisualizationData)
		assert.True(t, result.PageRankConverged)
		assert.GreaterOrEqual(t, result.Modularity, 0.0)
	})

	t.Run("clear drops network and cache", func(t *testing.T) {
		svc := newTestService(t, false)
		_, err := svc.Build(ctx, testRecords())
		require.NoError(t, err)
		_, err = svc.Analyze(ctx)
		require.NoError(t, err)

		svc.Clear()
		assert.False(t, svc.Status().Built)
		_, err = svc.Analyze(ctx)
		assert.ErrorIs(t, err, analysis.ErrEmptyNetwork)
	})
}

func TestServiceSnapshots(t *testing.T) {
	ctx := context.Background()

	t.Run("save restore round-trip", func(t *testing.T) {
		svc := newTestService(t, true)
		_, err := svc.Build(ctx, testRecords())
		require.NoError(t, err)

		entry, err := svc.SaveSnapshot(ctx, "baseline")
		require.NoError(t, err)
		assert.Equal(t, "baseline", entry.Name)
		assert.Equal(t, 4, entry.NodeCount)

		svc.Clear()
		resp, err := svc.RestoreSnapshot(ctx, entry.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, resp.Nodes)
		assert.True(t, svc.Status().Built)
	})

	t.Run("save without network rejected", func(t *testing.T) {
		svc := newTestService(t, true)
		_, err := svc.SaveSnapshot(ctx, "")
		assert.ErrorIs(t, err, analysis.ErrEmptyNetwork)
	})

	t.Run("restore unknown id", func(t *testing.T) {
		svc := newTestService(t, true)
		_, err := svc.RestoreSnapshot(ctx, "missing")
		assert.ErrorIs(t, err, snapshot.ErrSnapshotNotFound)
	})

	t.Run("store disabled", func(t *testing.T) {
		svc := newTestService(t, false)
		_, err := svc.Build(ctx, testRecords())
		require.NoError(t, err)

		_, err = svc.SaveSnapshot(ctx, "")
		assert.ErrorIs(t, err, ErrSnapshotStoreDisabled)
		_, err = svc.ListSnapshots()
		assert.ErrorIs(t, err, ErrSnapshotStoreDisabled)
	})

	t.Run("list and delete", func(t *testing.T) {
		svc := newTestService(t, true)
		_, err := svc.Build(ctx, testRecords())
		require.NoError(t, err)

		entry, err := svc.SaveSnapshot(ctx, "only")
		require.NoError(t, err)

		entries, err := svc.ListSnapshots()
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, entry.ID, entries[0].ID)

		require.NoError(t, svc.DeleteSnapshot(entry.ID))
		entries, err = svc.ListSnapshots()
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
