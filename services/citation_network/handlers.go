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
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianResearch/pkg/validation"
	"github.com/AleutianAI/AleutianResearch/services/citation_network/analysis"
	"github.com/AleutianAI/AleutianResearch/services/citation_network/graph"
	"github.com/AleutianAI/AleutianResearch/services/citation_network/snapshot"
)

// Handlers contains the HTTP handlers for the citation network service.
type Handlers struct {
	svc *Service
}

// NewHandlers creates handlers for the given service.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

// HandleBuild handles POST /v1/citenet/build.
//
// Description:
//
//	Builds a fresh citation network from the submitted paper records
//	and swaps it in as the active network.
//
// Response:
//
//	200 OK: BuildResponse
//	400 Bad Request: Validation error or no usable records
//	500 Internal Server Error: Builder failure
func (h *Handlers) HandleBuild(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleBuild")

	var req BuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Code:    "INVALID_REQUEST",
			Details: err.Error(),
		})
		return
	}

	logger.Info("Building network", "papers", len(req.Papers))

	summary, err := h.svc.Build(c.Request.Context(), req.records())
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, BuildResponse{Summary: summary})
}

// HandleAnalyze handles POST /v1/citenet/analyze.
//
// Response:
//
//	200 OK: analysis.NetworkAnalysisResult
//	409 Conflict: No network built
func (h *Handlers) HandleAnalyze(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleAnalyze")

	result, err := h.svc.Analyze(c.Request.Context())
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleCommunities handles GET /v1/citenet/communities.
func (h *Handlers) HandleCommunities(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleCommunities")

	result, err := h.svc.Analyze(c.Request.Context())
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"communities": result.Communities,
		"modularity":  result.Modularity,
	})
}

// HandleGaps handles GET /v1/citenet/gaps.
//
// The optional max query parameter truncates the list; the full
// (already capped) list is returned when absent.
func (h *Handlers) HandleGaps(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleGaps")

	result, err := h.svc.Analyze(c.Request.Context())
	if err != nil {
		respondError(c, logger, err)
		return
	}

	gaps := result.Gaps
	if raw := c.Query("max"); raw != "" {
		max, err := strconv.Atoi(raw)
		if err != nil || max < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "max must be a non-negative integer",
				Code:  "INVALID_REQUEST",
			})
			return
		}
		if max < len(gaps) {
			gaps = gaps[:max]
		}
	}
	c.JSON(http.StatusOK, gin.H{"research_gaps": gaps})
}

// HandleTopics handles GET /v1/citenet/topics.
func (h *Handlers) HandleTopics(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleTopics")

	result, err := h.svc.Analyze(c.Request.Context())
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"emerging_topics": result.Topics})
}

// HandleVisualization handles GET /v1/citenet/visualization.
func (h *Handlers) HandleVisualization(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleVisualization")

	result, err := h.svc.Analyze(c.Request.Context())
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, result.VisualizationData)
}

// HandleExport handles GET /v1/citenet/export.
//
// Returns the lossless network document, including derived edges.
// Only the json format is supported.
func (h *Handlers) HandleExport(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleExport")

	if format := c.DefaultQuery("format", "json"); format != "json" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "unsupported export format",
			Code:    "INVALID_REQUEST",
			Details: format,
		})
		return
	}

	result, err := h.svc.Analyze(c.Request.Context())
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, result.NetworkData)
}

// HandleClear handles POST /v1/citenet/clear.
func (h *Handlers) HandleClear(c *gin.Context) {
	h.svc.Clear()
	c.JSON(http.StatusOK, h.svc.Status())
}

// HandleStatus handles GET /v1/citenet/status.
func (h *Handlers) HandleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Status())
}

// HandleSaveSnapshot handles POST /v1/citenet/snapshots.
//
// Response:
//
//	201 Created: SaveSnapshotResponse
//	409 Conflict: No network built
//	500 Internal Server Error: Store failure
func (h *Handlers) HandleSaveSnapshot(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleSaveSnapshot")

	var req SaveSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Code:    "INVALID_REQUEST",
			Details: err.Error(),
		})
		return
	}

	entry, err := h.svc.SaveSnapshot(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, SaveSnapshotResponse{Snapshot: entry})
}

// HandleListSnapshots handles GET /v1/citenet/snapshots.
func (h *Handlers) HandleListSnapshots(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleListSnapshots")

	entries, err := h.svc.ListSnapshots()
	if err != nil {
		respondError(c, logger, err)
		return
	}
	if entries == nil {
		entries = []snapshot.Entry{}
	}
	c.JSON(http.StatusOK, ListSnapshotsResponse{Snapshots: entries})
}

// HandleRestoreSnapshot handles POST /v1/citenet/snapshots/:id/restore.
//
// Response:
//
//	200 OK: RestoreSnapshotResponse
//	400 Bad Request: Malformed snapshot ID
//	404 Not Found: Unknown snapshot ID
func (h *Handlers) HandleRestoreSnapshot(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleRestoreSnapshot")

	id := c.Param("id")
	if err := validation.ValidateSnapshotID(id); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_SNAPSHOT_ID",
		})
		return
	}

	resp, err := h.svc.RestoreSnapshot(c.Request.Context(), id)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleDeleteSnapshot handles DELETE /v1/citenet/snapshots/:id.
func (h *Handlers) HandleDeleteSnapshot(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleDeleteSnapshot")

	id := c.Param("id")
	if err := validation.ValidateSnapshotID(id); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_SNAPSHOT_ID",
		})
		return
	}

	if err := h.svc.DeleteSnapshot(id); err != nil {
		respondError(c, logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleHealth handles GET /v1/citenet/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: ServiceVersion})
}

// HandleReady handles GET /v1/citenet/ready.
//
// Ready means the service can accept builds; a network need not be
// loaded.
func (h *Handlers) HandleReady(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ready": true})
}

// respondError maps domain errors onto HTTP statuses.
//
//	empty/invalid input        -> 400
//	empty network              -> 409
//	snapshot not found         -> 404
//	store disabled             -> 503
//	persistence / everything else -> 500
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	var perr *snapshot.PersistenceError

	switch {
	case errors.Is(err, graph.ErrEmptyInput):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "No usable paper records in request",
			Code:  "EMPTY_INPUT",
		})
	case errors.Is(err, analysis.ErrEmptyNetwork):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: "No citation network built",
			Code:  "EMPTY_NETWORK",
		})
	case errors.Is(err, snapshot.ErrSnapshotNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "Snapshot not found",
			Code:  "SNAPSHOT_NOT_FOUND",
		})
	case errors.Is(err, ErrSnapshotStoreDisabled):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "Snapshot store is not configured",
			Code:  "SNAPSHOT_STORE_DISABLED",
		})
	case errors.As(err, &perr):
		logger.Error("Persistence failure", "op", perr.Op, "path", perr.Path, "error", perr.Err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Snapshot persistence failed",
			Code:  "PERSISTENCE_ERROR",
		})
	default:
		logger.Error("Request failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Internal error",
			Code:  "INTERNAL_ERROR",
		})
	}
}

func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
