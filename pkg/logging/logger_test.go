// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLevelString(t *testing.T) {
	cases := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
	}
	for _, tc := range cases {
		if got := tc.level.String(); got != tc.want {
			t.Errorf("Level(%d).String() = %q, want %q", tc.level, got, tc.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestStderrOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Stderr: &buf, Service: "test"})

	logger.Info("network built", "nodes", 42)
	out := buf.String()
	if !strings.Contains(out, "network built") {
		t.Errorf("output missing message: %q", out)
	}
	if !strings.Contains(out, "nodes=42") {
		t.Errorf("output missing attribute: %q", out)
	}
	if !strings.Contains(out, "service=test") {
		t.Errorf("output missing service attribute: %q", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelWarn, Stderr: &buf})

	logger.Debug("hidden debug")
	logger.Info("hidden info")
	logger.Warn("visible warn")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("filtered levels leaked: %q", out)
	}
	if !strings.Contains(out, "visible warn") {
		t.Errorf("warn missing: %q", out)
	}
}

func TestFileLogging(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, LogDir: dir, Service: "research", Stderr: &buf})

	logger.Info("snapshot saved", "snapshot_id", "abc")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	name := "research_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}

	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("log file is not JSON lines: %v", err)
	}
	if record["msg"] != "snapshot saved" {
		t.Errorf("msg = %v, want snapshot saved", record["msg"])
	}
}

func TestFileLoggingDegradesGracefully(t *testing.T) {
	var buf bytes.Buffer
	// A file path (not a dir) makes MkdirAll fail.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	logger := New(Config{LogDir: filepath.Join(blocker, "logs"), Stderr: &buf})
	logger.Info("still works")
	if !strings.Contains(buf.String(), "still works") {
		t.Error("stderr logging should survive file setup failure")
	}
}

func TestExporter(t *testing.T) {
	exporter := NewBufferedExporter()
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Exporter: exporter, Stderr: &buf, Service: "research"})

	logger.Info("analysis complete", "nodes", 10)
	logger.Debug("below level, not exported")

	entries := exporter.Entries()
	if len(entries) != 1 {
		t.Fatalf("exported %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Message != "analysis complete" || e.Level != "info" || e.Service != "research" {
		t.Errorf("entry = %+v", e)
	}
	if e.Attrs["nodes"] != 10 {
		t.Errorf("attrs = %v", e.Attrs)
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Stderr: &buf})

	child := logger.With("request_id", "req-1")
	child.Info("handled")
	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Errorf("derived attributes missing: %q", buf.String())
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	got := expandPath("~/logs")
	if got != filepath.Join(home, "logs") {
		t.Errorf("expandPath = %q", got)
	}
	if expandPath("/abs/path") != "/abs/path" {
		t.Error("absolute paths must pass through")
	}
}
