// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

// CurrentConfigVersion is bumped whenever the on-disk layout changes.
const CurrentConfigVersion = "1"

type ResearchConfig struct {
	// Meta: versioning for forward-compatible config migrations
	Meta MetaConfig `yaml:"meta"`

	// Server: HTTP listener settings for the research service
	Server ServerConfig `yaml:"server"`

	// Engine: hard limits on the size of networks the service will build
	Engine EngineConfig `yaml:"engine"`

	// Analysis: tunables for the gap and trend heuristics
	Analysis AnalysisConfig `yaml:"analysis"`

	// Storage: snapshot store location
	Storage StorageConfig `yaml:"storage"`

	// Logging: level and optional file log directory
	Logging LoggingConfig `yaml:"logging"`
}

type MetaConfig struct {
	Version string `yaml:"version"`
}

type ServerConfig struct {
	Port         string `yaml:"port"`          // e.g. "12310"
	OTLPEndpoint string `yaml:"otlp_endpoint"` // e.g. "aleutian-otel-collector:4317"
}

type EngineConfig struct {
	MaxNetworkSize       int `yaml:"max_network_size"`
	MaxCitationsPerPaper int `yaml:"max_citations_per_paper"`
	TopN                 int `yaml:"top_n"`
	ExactPathLimit       int `yaml:"exact_path_limit"`
	VisualizationLimit   int `yaml:"visualization_limit"`
}

type AnalysisConfig struct {
	MinKeywordCount   int     `yaml:"min_keyword_count"`
	SparsityRatio     float64 `yaml:"sparsity_ratio"`
	RecentWindowYears int     `yaml:"recent_window_years"`
	MaxGaps           int     `yaml:"max_gaps"`
	MaxTopics         int     `yaml:"max_topics"`
}

type StorageConfig struct {
	Path     string `yaml:"path"` // e.g. ~/.aleutian/research/snapshots
	InMemory bool   `yaml:"in_memory"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	Dir   string `yaml:"dir"`   // empty disables file logging
}

func DefaultConfig() ResearchConfig {
	return ResearchConfig{
		Meta: MetaConfig{
			Version: CurrentConfigVersion,
		},
		Server: ServerConfig{
			Port: "12310",
		},
		Engine: EngineConfig{
			MaxNetworkSize:       10000,
			MaxCitationsPerPaper: 1000,
			TopN:                 10,
			ExactPathLimit:       500,
			VisualizationLimit:   500,
		},
		Analysis: AnalysisConfig{
			MinKeywordCount:   3,
			SparsityRatio:     0.25,
			RecentWindowYears: 3,
			MaxGaps:           25,
			MaxTopics:         25,
		},
		Storage: StorageConfig{
			Path: "~/.aleutian/research/snapshots",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
