// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/AleutianAI/AleutianResearch/cmd/research/config"
	"github.com/AleutianAI/AleutianResearch/pkg/logging"
	citenet "github.com/AleutianAI/AleutianResearch/services/citation_network"
	"github.com/AleutianAI/AleutianResearch/services/citation_network/analysis"
	"github.com/AleutianAI/AleutianResearch/services/citation_network/observability"
	"github.com/AleutianAI/AleutianResearch/services/citation_network/snapshot"

	// --- OpenTelemetry imports ---
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
)

func initTracer(endpoint string) (func(context.Context), error) {
	ctx := context.Background()

	// The env var wins over the config file so compose files can
	// point at their own collector.
	if env := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); env != "" {
		endpoint = env
	}
	if endpoint == "" {
		// No collector configured; tracing stays local and unsampled.
		return func(context.Context) {}, nil
	}
	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("research-service")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

// expandHome replaces a leading "~" with the user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := config.Global

	port := cfg.Server.Port
	if env := os.Getenv("RESEARCH_PORT"); env != "" {
		port = env
	}
	if servePort != "" {
		port = servePort
	}

	appLogger := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.Logging.Level),
		LogDir:  cfg.Logging.Dir,
		Service: "research",
	})
	defer appLogger.Close()
	slog.SetDefault(appLogger.Slog())

	// --- Init the tracer ---
	cleanup, err := initTracer(cfg.Server.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	metrics := observability.InitMetrics()

	var store *snapshot.Store
	if cfg.Storage.InMemory || serveInMemory {
		store, err = snapshot.NewStore(snapshot.InMemoryStoreConfig())
	} else {
		storeCfg := snapshot.DefaultStoreConfig(expandHome(cfg.Storage.Path))
		storeCfg.Logger = appLogger.Slog()
		store, err = snapshot.NewStore(storeCfg)
	}
	if err != nil {
		log.Fatalf("failed to open the snapshot store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("failed to close the snapshot store", "error", err)
		}
	}()

	svc := citenet.NewService(citenet.ServiceConfig{
		MaxNetworkSize:       cfg.Engine.MaxNetworkSize,
		MaxCitationsPerPaper: cfg.Engine.MaxCitationsPerPaper,
		Analyzer: analysis.AnalyzerOptions{
			Heuristics:             heuristicsFromConfig(cfg.Analysis),
			TopN:                   cfg.Engine.TopN,
			ExactPathLengthLimit:   cfg.Engine.ExactPathLimit,
			VisualizationNodeLimit: cfg.Engine.VisualizationLimit,
		},
		Store:   store,
		Metrics: metrics,
		Logger:  appLogger.Slog(),
	})

	router := gin.Default()
	router.Use(otelgin.Middleware("research-service"))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	citenet.RegisterRoutes(v1, citenet.NewHandlers(svc))

	slog.Info("Starting the research service", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("failed to start the research service: %v", err)
	}
}

// heuristicsFromConfig maps the yaml analysis block onto the detector
// config, leaving zero values for Validate to default.
func heuristicsFromConfig(a config.AnalysisConfig) analysis.HeuristicsConfig {
	return analysis.HeuristicsConfig{
		MinKeywordCount:   a.MinKeywordCount,
		SparsityRatio:     a.SparsityRatio,
		RecentWindowYears: a.RecentWindowYears,
		MaxGaps:           a.MaxGaps,
		MaxTopics:         a.MaxTopics,
	}
}
