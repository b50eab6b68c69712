// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/AleutianAI/AleutianResearch/services/citation_network/graph"
)

func sampleGraph(t *testing.T) *graph.Graph {
	t.Helper()
	records := []graph.PaperRecord{
		{
			PaperID:       "p1",
			Title:         "Foundations",
			Authors:       []string{"Ada", "Grace"},
			Year:          2019,
			Journal:       "J. Systems",
			DOI:           "10.1/foundations",
			Keywords:      []string{"graphs", "citations"},
			CitationCount: 12,
			Citations:     []string{"p2", "p3"},
		},
		{PaperID: "p2", Title: "Follow-up", Year: 2021, Citations: []string{"p3"}},
		{PaperID: "p3", Title: "Survey", Year: 2022},
	}
	g, _, err := graph.NewBuilder().Build(context.Background(), records)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestSaveLoadRoundTrip(t *testing.T) {
	g := sampleGraph(t)
	path := filepath.Join(t.TempDir(), "net.json")

	if err := Save(g, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.NodeCount() != g.NodeCount() {
		t.Fatalf("node count = %d, want %d", loaded.NodeCount(), g.NodeCount())
	}
	if loaded.EdgeCount() != g.EdgeCount() {
		t.Errorf("edge count = %d, want %d", loaded.EdgeCount(), g.EdgeCount())
	}
	if !loaded.IsFrozen() {
		t.Error("loaded graph should be frozen")
	}

	orig, _ := g.Node("p1")
	got, ok := loaded.Node("p1")
	if !ok {
		t.Fatal("p1 missing after round-trip")
	}
	if got.Title != orig.Title || got.Year != orig.Year || got.DOI != orig.DOI ||
		got.CitationCount != orig.CitationCount {
		t.Errorf("attributes changed: %+v vs %+v", got, orig)
	}
	if !reflect.DeepEqual(got.Authors, orig.Authors) {
		t.Errorf("authors changed: %v vs %v", got.Authors, orig.Authors)
	}
	if !reflect.DeepEqual(got.Keywords, orig.Keywords) {
		t.Errorf("keywords changed: %v vs %v", got.Keywords, orig.Keywords)
	}
	if !reflect.DeepEqual(got.Citations, orig.Citations) {
		t.Errorf("citations changed: %v vs %v", got.Citations, orig.Citations)
	}
}

func TestSaveOverwritesAtomically(t *testing.T) {
	g := sampleGraph(t)
	path := filepath.Join(t.TempDir(), "net.json")

	if err := Save(g, path); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if err := Save(g, path); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	// No leftover temp files from the write-then-rename path.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the snapshot", len(entries))
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
		if !errors.Is(err, ErrSnapshotNotFound) {
			t.Errorf("err = %v, want ErrSnapshotNotFound", err)
		}
		var perr *PersistenceError
		if !errors.As(err, &perr) {
			t.Errorf("err = %T, want *PersistenceError", err)
		} else if perr.Op != "load" {
			t.Errorf("op = %s, want load", perr.Op)
		}
	})

	t.Run("corrupt json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
			t.Fatal(err)
		}
		_, err := Load(path)
		var perr *PersistenceError
		if !errors.As(err, &perr) {
			t.Errorf("err = %T, want *PersistenceError", err)
		}
	})

	t.Run("future format version", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "future.json")
		if err := os.WriteFile(path, []byte(`{"version": 99, "papers": [{"paper_id":"x"}]}`), 0600); err != nil {
			t.Fatal(err)
		}
		_, err := Load(path)
		if !errors.Is(err, ErrFormatVersion) {
			t.Errorf("err = %v, want ErrFormatVersion", err)
		}
	})
}

func TestRestoreEmptyDocument(t *testing.T) {
	g, err := Restore(&Document{Version: FormatVersion})
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if g.NodeCount() != 0 {
		t.Errorf("node count = %d, want 0", g.NodeCount())
	}
	if !g.IsFrozen() {
		t.Error("restored empty graph should be frozen")
	}
}

func TestStore(t *testing.T) {
	newStore := func(t *testing.T) *Store {
		t.Helper()
		s, err := NewStore(InMemoryStoreConfig())
		if err != nil {
			t.Fatalf("NewStore: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		return s
	}

	t.Run("put get round-trip", func(t *testing.T) {
		s := newStore(t)
		g := sampleGraph(t)

		entry, err := s.Put(g, "baseline")
		if err != nil {
			t.Fatalf("Put: %v", err)
		}
		if entry.ID == "" {
			t.Fatal("entry missing id")
		}
		if entry.Name != "baseline" || entry.NodeCount != 3 {
			t.Errorf("entry = %+v", entry)
		}

		doc, err := s.Get(entry.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		restored, err := Restore(doc)
		if err != nil {
			t.Fatalf("Restore: %v", err)
		}
		if restored.NodeCount() != g.NodeCount() || restored.EdgeCount() != g.EdgeCount() {
			t.Errorf("restored (%d, %d), want (%d, %d)",
				restored.NodeCount(), restored.EdgeCount(), g.NodeCount(), g.EdgeCount())
		}
	})

	t.Run("get unknown id", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Get("no-such-id"); !errors.Is(err, ErrSnapshotNotFound) {
			t.Errorf("err = %v, want ErrSnapshotNotFound", err)
		}
	})

	t.Run("list newest first", func(t *testing.T) {
		s := newStore(t)
		g := sampleGraph(t)

		first, err := s.PutDocument(&Document{Version: FormatVersion, SavedAtMilli: 100,
			Papers: Snapshot(g).Papers}, "old")
		if err != nil {
			t.Fatalf("PutDocument: %v", err)
		}
		second, err := s.PutDocument(&Document{Version: FormatVersion, SavedAtMilli: 200,
			Papers: Snapshot(g).Papers}, "new")
		if err != nil {
			t.Fatalf("PutDocument: %v", err)
		}

		entries, err := s.List()
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("len = %d, want 2", len(entries))
		}
		if entries[0].ID != second.ID || entries[1].ID != first.ID {
			t.Errorf("order = [%s %s], want newest first", entries[0].Name, entries[1].Name)
		}
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		g := sampleGraph(t)

		entry, err := s.Put(g, "")
		if err != nil {
			t.Fatalf("Put: %v", err)
		}
		if err := s.Delete(entry.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := s.Get(entry.ID); !errors.Is(err, ErrSnapshotNotFound) {
			t.Errorf("err after delete = %v, want ErrSnapshotNotFound", err)
		}
		if err := s.Delete(entry.ID); !errors.Is(err, ErrSnapshotNotFound) {
			t.Errorf("double delete err = %v, want ErrSnapshotNotFound", err)
		}
	})
}
