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
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianResearch/services/citation_network/graph"
)

// keyPrefix namespaces snapshot entries inside the shared database.
const keyPrefix = "snapshot:"

// StoreConfig holds configuration for the embedded snapshot store.
type StoreConfig struct {
	// Path is the directory for database files.
	// Required unless InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	// Useful for testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger receives database logs. If nil, the database's internal
	// logging is disabled.
	Logger *slog.Logger
}

// DefaultStoreConfig returns production defaults for a given path.
func DefaultStoreConfig(path string) StoreConfig {
	return StoreConfig{
		Path:       path,
		SyncWrites: true,
	}
}

// InMemoryStoreConfig returns configuration for tests.
func InMemoryStoreConfig() StoreConfig {
	return StoreConfig{
		InMemory:   true,
		SyncWrites: false,
	}
}

// Entry describes a stored snapshot.
type Entry struct {
	// ID is the snapshot's unique identifier.
	ID string `json:"id"`

	// Name is an optional operator-supplied label.
	Name string `json:"name,omitempty"`

	// SavedAtMilli mirrors the document's save time.
	SavedAtMilli int64 `json:"saved_at_ms"`

	// NodeCount is the number of papers in the snapshot.
	NodeCount int `json:"node_count"`
}

// storedSnapshot is the on-disk value: entry metadata plus document.
type storedSnapshot struct {
	Entry    Entry     `json:"entry"`
	Document *Document `json:"document"`
}

// Store keeps snapshot documents in an embedded BadgerDB database,
// keyed by generated snapshot ID.
//
// Thread Safety: safe for concurrent use; BadgerDB transactions
// provide isolation.
type Store struct {
	db *badger.DB
}

// NewStore opens the snapshot store with the given configuration.
//
// Description:
//
//	Opens a BadgerDB database at the configured path, or in memory if
//	InMemory is true. Creates the directory if it doesn't exist.
//
// Outputs:
//
//	*Store - The opened store. Caller must call Close() when done.
//	error - Non-nil if path is missing or the database cannot open.
func NewStore(cfg StoreConfig) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent snapshot store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&storeLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores a snapshot of the graph under a fresh ID.
//
// Outputs:
//
//	Entry - Metadata including the generated ID.
//	error - PersistenceError on codec or storage failure.
func (s *Store) Put(g *graph.Graph, name string) (Entry, error) {
	return s.PutDocument(Snapshot(g), name)
}

// PutDocument stores an already-built document under a fresh ID.
func (s *Store) PutDocument(doc *Document, name string) (Entry, error) {
	id := uuid.NewString()
	entry := Entry{
		ID:           id,
		Name:         name,
		SavedAtMilli: doc.SavedAtMilli,
		NodeCount:    len(doc.Papers),
	}

	value, err := json.Marshal(storedSnapshot{Entry: entry, Document: doc})
	if err != nil {
		return Entry{}, &PersistenceError{Op: "put", Path: id, Err: err}
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+id), value)
	})
	if err != nil {
		return Entry{}, &PersistenceError{Op: "put", Path: id, Err: err}
	}
	return entry, nil
}

// Get retrieves a snapshot document by ID.
//
// Outputs:
//
//	*Document - The stored document.
//	error - ErrSnapshotNotFound (wrapped) when absent, otherwise a
//	PersistenceError on storage or codec failure.
func (s *Store) Get(id string) (*Document, error) {
	var stored storedSnapshot
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &stored)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, &PersistenceError{Op: "get", Path: id, Err: ErrSnapshotNotFound}
	}
	if err != nil {
		return nil, &PersistenceError{Op: "get", Path: id, Err: err}
	}
	return stored.Document, nil
}

// List returns metadata for every stored snapshot, newest first.
func (s *Store) List() ([]Entry, error) {
	var entries []Entry
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var stored storedSnapshot
				if err := json.Unmarshal(val, &stored); err != nil {
					return err
				}
				entries = append(entries, stored.Entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, &PersistenceError{Op: "list", Path: keyPrefix, Err: err}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].SavedAtMilli != entries[j].SavedAtMilli {
			return entries[i].SavedAtMilli > entries[j].SavedAtMilli
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

// Delete removes a snapshot by ID.
//
// Outputs:
//
//	error - ErrSnapshotNotFound (wrapped) when absent, otherwise a
//	PersistenceError on storage failure.
func (s *Store) Delete(id string) error {
	key := []byte(keyPrefix + id)
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return &PersistenceError{Op: "delete", Path: id, Err: ErrSnapshotNotFound}
	}
	if err != nil {
		return &PersistenceError{Op: "delete", Path: id, Err: err}
	}
	return nil
}

// storeLogger adapts slog.Logger to BadgerDB's Logger interface.
type storeLogger struct {
	logger *slog.Logger
}

func (l *storeLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *storeLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *storeLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *storeLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
