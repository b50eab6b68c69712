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

import "errors"

// Sentinel errors for graph construction and queries.
var (
	// ErrGraphFrozen is returned when attempting to modify a frozen graph.
	ErrGraphFrozen = errors.New("graph is frozen and cannot be modified")

	// ErrNodeNotFound is returned when an edge references a non-existent node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrDuplicateNode is returned when adding a node with a paper ID that
	// already exists in the graph.
	ErrDuplicateNode = errors.New("duplicate paper ID")

	// ErrInvalidNode is returned when adding a nil node or a node without
	// a paper ID.
	ErrInvalidNode = errors.New("invalid node")

	// ErrMaxNodesExceeded is returned when the graph has reached its
	// configured node capacity.
	ErrMaxNodesExceeded = errors.New("maximum node count exceeded")

	// ErrEmptyInput is returned by the builder when no usable records
	// remain after per-record validation.
	ErrEmptyInput = errors.New("no usable paper records in input")
)
