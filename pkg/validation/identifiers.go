// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for security-critical operations.
//
// This package contains validators for user-provided inputs that are used in
// database keys, file paths, or URLs. Using these validators prevents
// injection attacks (key injection, command injection, path traversal).
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// paperIDPattern matches valid paper identifiers.
// Allows: letters, digits, and the separators common in DOIs, arXiv
// ids, and corpus keys (dots, hyphens, underscores, colons, slashes).
// Max length: 256 characters.
var paperIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:/\-]{0,255}$`)

// snapshotIDPattern matches snapshot identifiers: UUIDs and other
// opaque alphanumeric keys with hyphens, up to 64 characters.
var snapshotIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9\-]{0,63}$`)

// ValidatePaperID validates a paper identifier before it is used as a
// storage key.
//
// Valid paper IDs:
//   - 1-256 characters
//   - Letters and digits
//   - Dots, hyphens, underscores, colons, and slashes as separators
//     (covers DOIs like 10.1000/xyz and arXiv ids like 2301.00001)
//   - Must start with an alphanumeric character
//
// Returns an error if the ID is invalid.
//
// Example:
//
//	if err := validation.ValidatePaperID(id); err != nil {
//	    return nil, fmt.Errorf("invalid paper id: %w", err)
//	}
func ValidatePaperID(id string) error {
	if id == "" {
		return fmt.Errorf("paper id cannot be empty")
	}
	if !paperIDPattern.MatchString(id) {
		return fmt.Errorf("invalid paper id format: %q (must be 1-256 alphanumeric chars with ./:_- separators)", id)
	}
	if strings.Contains(id, "..") {
		return fmt.Errorf("invalid paper id: %q (path traversal sequence)", id)
	}
	return nil
}

// ValidatePaperIDs validates multiple paper identifiers.
// Returns an error listing all invalid IDs if any fail validation.
func ValidatePaperIDs(ids []string) error {
	var invalid []string
	for _, id := range ids {
		if err := ValidatePaperID(id); err != nil {
			invalid = append(invalid, id)
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("invalid paper ids: %v", invalid)
	}
	return nil
}

// ValidateSnapshotID validates a snapshot identifier before it is used
// as a database key.
//
// Valid snapshot IDs are 1-64 alphanumeric characters with hyphens,
// which covers UUID string form.
func ValidateSnapshotID(id string) error {
	if id == "" {
		return fmt.Errorf("snapshot id cannot be empty")
	}
	if !snapshotIDPattern.MatchString(id) {
		return fmt.Errorf("invalid snapshot id format: %q", id)
	}
	return nil
}

// SanitizePaperID normalizes and validates a paper identifier.
// Returns the trimmed ID if valid, or an error if invalid.
func SanitizePaperID(id string) (string, error) {
	normalized := strings.TrimSpace(id)
	if err := ValidatePaperID(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}
