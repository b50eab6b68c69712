// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package observability

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	t.Run("build observations", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m := NewMetrics(reg)

		m.ObserveBuild("success", 0.2)
		m.ObserveBuild("success", 0.4)
		m.ObserveBuild("error", 0.1)

		assert.Equal(t, float64(2),
			testutil.ToFloat64(m.BuildsTotal.WithLabelValues("success")))
		assert.Equal(t, float64(1),
			testutil.ToFloat64(m.BuildsTotal.WithLabelValues("error")))
	})

	t.Run("graph size gauges", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m := NewMetrics(reg)

		m.SetGraphSize(120, 450)
		assert.Equal(t, float64(120), testutil.ToFloat64(m.GraphNodes))
		assert.Equal(t, float64(450), testutil.ToFloat64(m.GraphEdges))

		m.SetGraphSize(0, 0)
		assert.Equal(t, float64(0), testutil.ToFloat64(m.GraphNodes))
	})

	t.Run("snapshot op counter", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m := NewMetrics(reg)

		m.ObserveSnapshotOp("save", "success")
		m.ObserveSnapshotOp("save", "success")
		m.ObserveSnapshotOp("load", "error")

		assert.Equal(t, float64(2),
			testutil.ToFloat64(m.SnapshotOpsTotal.WithLabelValues("save", "success")))
		assert.Equal(t, float64(1),
			testutil.ToFloat64(m.SnapshotOpsTotal.WithLabelValues("load", "error")))
	})

	t.Run("cached analyses counted separately", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m := NewMetrics(reg)

		m.ObserveAnalysis("success", 1.0)
		m.ObserveCachedAnalysis()
		m.ObserveCachedAnalysis()

		assert.Equal(t, float64(2),
			testutil.ToFloat64(m.AnalysesTotal.WithLabelValues("cached")))
	})

	t.Run("metric names carry namespace and subsystem", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m := NewMetrics(reg)
		m.ObserveBuild("success", 0.1)

		families, err := reg.Gather()
		require.NoError(t, err)
		var sawBuild bool
		for _, f := range families {
			require.True(t, strings.HasPrefix(f.GetName(), "aleutian_citenet_"),
				"metric %s outside the namespace", f.GetName())
			if f.GetName() == "aleutian_citenet_builds_total" {
				sawBuild = true
			}
		}
		assert.True(t, sawBuild, "builds_total not registered")
	})

	t.Run("nil receiver is a no-op", func(t *testing.T) {
		var m *Metrics
		m.ObserveBuild("success", 1)
		m.ObserveAnalysis("success", 1)
		m.SetGraphSize(1, 1)
		m.ObserveSnapshotOp("save", "success")
	})
}
