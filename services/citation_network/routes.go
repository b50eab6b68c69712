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
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all citation network routes with the router.
//
// Description:
//
//	Registers all /v1/citenet/* endpoints with the given Gin router
//	group. The group should already have any required middleware
//	applied.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//
// Endpoints:
//
//	POST   /v1/citenet/build - Build a citation network
//	POST   /v1/citenet/analyze - Run or fetch the full analysis
//	GET    /v1/citenet/communities - Community partition
//	GET    /v1/citenet/gaps - Research gap signals
//	GET    /v1/citenet/topics - Emerging topic signals
//	GET    /v1/citenet/visualization - Display-ready projection
//	GET    /v1/citenet/export - Lossless network document
//	POST   /v1/citenet/clear - Drop the current network
//	GET    /v1/citenet/status - Engine state
//	POST   /v1/citenet/snapshots - Save a snapshot
//	GET    /v1/citenet/snapshots - List snapshots
//	POST   /v1/citenet/snapshots/:id/restore - Restore a snapshot
//	DELETE /v1/citenet/snapshots/:id - Delete a snapshot
//	GET    /v1/citenet/health - Health check
//	GET    /v1/citenet/ready - Readiness check
//
// Example:
//
//	service := citation_network.NewService(citation_network.DefaultServiceConfig())
//	handlers := citation_network.NewHandlers(service)
//
//	v1 := router.Group("/v1")
//	citation_network.RegisterRoutes(v1, handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	citenet := rg.Group("/citenet")
	{
		// Network lifecycle
		citenet.POST("/build", handlers.HandleBuild)
		citenet.POST("/clear", handlers.HandleClear)
		citenet.GET("/status", handlers.HandleStatus)

		// Analysis
		citenet.POST("/analyze", handlers.HandleAnalyze)
		citenet.GET("/communities", handlers.HandleCommunities)
		citenet.GET("/gaps", handlers.HandleGaps)
		citenet.GET("/topics", handlers.HandleTopics)

		// Export
		citenet.GET("/visualization", handlers.HandleVisualization)
		citenet.GET("/export", handlers.HandleExport)

		// Snapshots
		citenet.POST("/snapshots", handlers.HandleSaveSnapshot)
		citenet.GET("/snapshots", handlers.HandleListSnapshots)
		citenet.POST("/snapshots/:id/restore", handlers.HandleRestoreSnapshot)
		citenet.DELETE("/snapshots/:id", handlers.HandleDeleteSnapshot)

		// Probes
		citenet.GET("/health", handlers.HandleHealth)
		citenet.GET("/ready", handlers.HandleReady)
	}
}
