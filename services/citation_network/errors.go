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

import "errors"

// Service-level sentinel errors. Domain errors (empty input, empty
// network, snapshot not found) live in the graph, analysis, and
// snapshot packages; handlers map all of them onto HTTP statuses.
var (
	// ErrSnapshotStoreDisabled is returned by snapshot operations when
	// the service was started without a snapshot store.
	ErrSnapshotStoreDisabled = errors.New("snapshot store is not configured")
)
