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

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	// Global is a singleton instance
	Global ResearchConfig
	once   sync.Once
)

// Load ensures the config is loaded into the Global variable
func Load() error {
	var err error
	once.Do(func() {
		err = loadInternal()
	})
	return err
}

func loadInternal() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("could not find the user's home directory: %w", err)
	}
	configPath := filepath.Join(home, ".aleutian", "research.yaml")
	// create it if it doesn't exist
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Printf(" First run detected, creating the config at %s\n", configPath)
		if err := createDefault(configPath); err != nil {
			return err
		}
	}
	// read the file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read the config file %w", err)
	}
	// parse the config in to the Global struct
	if err = yaml.Unmarshal(data, &Global); err != nil {
		return fmt.Errorf("failed to marshal the config to the Global singleton: %w", err)
	}
	applyFallbacks(&Global)
	return nil
}

// applyFallbacks fills zero values left by partial config files so that
// callers never see an unusable Global.
func applyFallbacks(cfg *ResearchConfig) {
	defaults := DefaultConfig()
	if cfg.Server.Port == "" {
		cfg.Server.Port = defaults.Server.Port
	}
	if cfg.Engine.MaxNetworkSize <= 0 {
		cfg.Engine.MaxNetworkSize = defaults.Engine.MaxNetworkSize
	}
	if cfg.Engine.MaxCitationsPerPaper <= 0 {
		cfg.Engine.MaxCitationsPerPaper = defaults.Engine.MaxCitationsPerPaper
	}
	if cfg.Engine.TopN <= 0 {
		cfg.Engine.TopN = defaults.Engine.TopN
	}
	if cfg.Engine.ExactPathLimit <= 0 {
		cfg.Engine.ExactPathLimit = defaults.Engine.ExactPathLimit
	}
	if cfg.Engine.VisualizationLimit <= 0 {
		cfg.Engine.VisualizationLimit = defaults.Engine.VisualizationLimit
	}
	if cfg.Storage.Path == "" && !cfg.Storage.InMemory {
		cfg.Storage.Path = defaults.Storage.Path
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
}

func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create the config directory %w", err)
	}
	defaultCfg := DefaultConfig()
	data, err := yaml.Marshal(defaultCfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
