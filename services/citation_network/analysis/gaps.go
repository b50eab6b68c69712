// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analysis

import (
	"fmt"
	"sort"

	"github.com/AleutianAI/AleutianResearch/services/citation_network/graph"
)

// Severity grades a heuristic signal.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Gap type identifiers.
const (
	// GapSparseKeywordOverlap flags keyword pairs that individually
	// appear often but rarely co-occur in the same paper.
	GapSparseKeywordOverlap = "sparse_keyword_overlap"

	// GapUnderexploredCluster flags communities with no citation links
	// to the rest of the network.
	GapUnderexploredCluster = "underexplored_cluster"
)

// HeuristicsConfig holds the tunable thresholds behind gap and trend
// detection. The exact values are heuristic by design; deployments tune
// them in configuration rather than relying on hidden constants.
type HeuristicsConfig struct {
	// MinKeywordCount is the minimum individual keyword frequency for
	// a keyword to participate in gap analysis. Default: 3
	MinKeywordCount int `yaml:"min_keyword_count" json:"min_keyword_count"`

	// SparsityRatio is the co-occurrence/min-frequency ratio under
	// which a keyword pair counts as a gap. Default: 0.25
	SparsityRatio float64 `yaml:"sparsity_ratio" json:"sparsity_ratio"`

	// RecentWindowYears is the trailing window treated as "recent"
	// for trend detection. Default: 3
	RecentWindowYears int `yaml:"recent_window_years" json:"recent_window_years"`

	// GrowthMedium and GrowthHigh are recent-vs-baseline keyword
	// frequency ratios for medium/high trend strength.
	// Defaults: 1.5 and 3.0
	GrowthMedium float64 `yaml:"growth_medium" json:"growth_medium"`
	GrowthHigh   float64 `yaml:"growth_high" json:"growth_high"`

	// VelocityMedium and VelocityHigh are citations-per-year cutoffs
	// for flagging high-velocity recent papers. Defaults: 5 and 15
	VelocityMedium float64 `yaml:"velocity_medium" json:"velocity_medium"`
	VelocityHigh   float64 `yaml:"velocity_high" json:"velocity_high"`

	// MaxGaps and MaxTopics bound the result lists. Defaults: 25, 25
	MaxGaps   int `yaml:"max_gaps" json:"max_gaps"`
	MaxTopics int `yaml:"max_topics" json:"max_topics"`

	// ReferenceYear anchors "recent" and velocity computations. Zero
	// means use the newest publication year in the graph.
	ReferenceYear int `yaml:"reference_year" json:"reference_year"`
}

// Validate applies defaults for unset or invalid values.
func (c *HeuristicsConfig) Validate() {
	if c.MinKeywordCount <= 0 {
		c.MinKeywordCount = 3
	}
	if c.SparsityRatio <= 0 || c.SparsityRatio >= 1 {
		c.SparsityRatio = 0.25
	}
	if c.RecentWindowYears <= 0 {
		c.RecentWindowYears = 3
	}
	if c.GrowthMedium <= 1 {
		c.GrowthMedium = 1.5
	}
	if c.GrowthHigh <= c.GrowthMedium {
		c.GrowthHigh = 3.0
		if c.GrowthHigh <= c.GrowthMedium {
			c.GrowthHigh = c.GrowthMedium * 2
		}
	}
	if c.VelocityMedium <= 0 {
		c.VelocityMedium = 5
	}
	if c.VelocityHigh <= c.VelocityMedium {
		c.VelocityHigh = 15
		if c.VelocityHigh <= c.VelocityMedium {
			c.VelocityHigh = c.VelocityMedium * 3
		}
	}
	if c.MaxGaps <= 0 {
		c.MaxGaps = 25
	}
	if c.MaxTopics <= 0 {
		c.MaxTopics = 25
	}
}

// DefaultHeuristicsConfig returns the documented default thresholds.
func DefaultHeuristicsConfig() HeuristicsConfig {
	var c HeuristicsConfig
	c.Validate()
	return c
}

// GapRecord describes a detected research gap.
type GapRecord struct {
	// GapType categorizes the signal (see Gap* constants).
	GapType string `json:"gap_type"`

	// Severity grades the signal: low, medium, or high.
	Severity Severity `json:"severity"`

	// Keywords are the keywords involved, when keyword-based.
	Keywords []string `json:"keywords,omitempty"`

	// ClusterID is the community involved, for cluster-based gaps.
	// -1 when not applicable.
	ClusterID int `json:"cluster_id"`

	// Score orders gaps within a severity band; higher is stronger.
	Score float64 `json:"score"`

	// Description is a human-readable explanation of the signal.
	Description string `json:"description"`
}

// TopicRecord describes an emerging topic signal.
type TopicRecord struct {
	// Topic is the keyword or paper title carrying the signal.
	Topic string `json:"topic"`

	// TrendStrength grades the signal: low, medium, or high.
	TrendStrength Severity `json:"trend_strength"`

	// PaperID is set when the signal is attributable to one paper.
	PaperID string `json:"paper_id,omitempty"`

	// CitationVelocity is citations per year since publication, when
	// paper-attributed.
	CitationVelocity float64 `json:"citation_velocity,omitempty"`

	// RecentCount is the keyword's paper count inside the recent
	// window, when keyword-attributed.
	RecentCount int `json:"recent_count,omitempty"`

	// GrowthRate is the recent-vs-baseline per-year frequency ratio,
	// when keyword-attributed.
	GrowthRate float64 `json:"growth_rate,omitempty"`
}

// DetectResearchGaps surfaces structural gaps in the network.
//
// Description:
//
//	Two heuristics over keyword and community structure:
//
//	(1) Sparse keyword overlap: for every pair of keywords that each
//	appear in at least MinKeywordCount papers, the co-occurrence count
//	is compared against the smaller individual frequency. Pairs under
//	SparsityRatio are reported; zero co-occurrence is high severity,
//	under half the ratio medium, otherwise low.
//
//	(2) Underexplored clusters: communities of two or more papers with
//	no direct citation links to any other community. Severity scales
//	with the isolated cluster's share of the network.
//
//	Signals are heuristic and threshold-based, not exhaustive. Results
//	are ordered severity-descending, then score-descending, then by
//	keywords for determinism, and capped at MaxGaps.
//
// The communities argument may be nil, in which case cluster gaps are
// skipped (keyword gaps do not depend on the partition).
func DetectResearchGaps(g *graph.Graph, communities *CommunityResult, cfg HeuristicsConfig) []GapRecord {
	cfg.Validate()

	gaps := keywordPairGaps(g, cfg)
	if communities != nil {
		gaps = append(gaps, isolatedClusterGaps(g, communities)...)
	}

	sort.Slice(gaps, func(i, j int) bool {
		si, sj := severityRank(gaps[i].Severity), severityRank(gaps[j].Severity)
		if si != sj {
			return si > sj
		}
		if gaps[i].Score != gaps[j].Score {
			return gaps[i].Score > gaps[j].Score
		}
		return gapKey(gaps[i]) < gapKey(gaps[j])
	})

	if len(gaps) > cfg.MaxGaps {
		gaps = gaps[:cfg.MaxGaps]
	}
	return gaps
}

func keywordPairGaps(g *graph.Graph, cfg HeuristicsConfig) []GapRecord {
	freq := make(map[string]int)
	pairCount := make(map[pairKeyStr]int)

	for _, node := range g.Nodes() {
		for _, kw := range node.Keywords {
			freq[kw]++
		}
		for i := 0; i < len(node.Keywords); i++ {
			for j := i + 1; j < len(node.Keywords); j++ {
				pairCount[pairKeyStr{node.Keywords[i], node.Keywords[j]}]++
			}
		}
	}

	frequent := make([]string, 0, len(freq))
	for kw, n := range freq {
		if n >= cfg.MinKeywordCount {
			frequent = append(frequent, kw)
		}
	}
	sort.Strings(frequent)

	var gaps []GapRecord
	for i := 0; i < len(frequent); i++ {
		for j := i + 1; j < len(frequent); j++ {
			a, b := frequent[i], frequent[j]
			co := pairCount[pairKeyStr{a, b}]
			minFreq := freq[a]
			if freq[b] < minFreq {
				minFreq = freq[b]
			}
			ratio := float64(co) / float64(minFreq)
			if ratio >= cfg.SparsityRatio {
				continue
			}

			severity := SeverityLow
			switch {
			case co == 0:
				severity = SeverityHigh
			case ratio < cfg.SparsityRatio/2:
				severity = SeverityMedium
			}

			gaps = append(gaps, GapRecord{
				GapType:   GapSparseKeywordOverlap,
				Severity:  severity,
				Keywords:  []string{a, b},
				ClusterID: graph.ClusterUnassigned,
				Score:     1 - ratio,
				Description: fmt.Sprintf(
					"keywords %q and %q appear in %d and %d papers but co-occur in %d",
					a, b, freq[a], freq[b], co),
			})
		}
	}
	return gaps
}

func isolatedClusterGaps(g *graph.Graph, communities *CommunityResult) []GapRecord {
	if g.NodeCount() == 0 {
		return nil
	}

	// Count inter-cluster direct edges per cluster.
	external := make(map[int]int)
	for si, node := range g.Nodes() {
		for _, ti := range g.OutNeighbors(si) {
			other := g.NodeAt(ti)
			if node.ClusterID != other.ClusterID {
				external[node.ClusterID]++
				external[other.ClusterID]++
			}
		}
	}

	clusterIDs := make([]int, 0, len(communities.Communities))
	for id := range communities.Communities {
		clusterIDs = append(clusterIDs, id)
	}
	sort.Ints(clusterIDs)

	var gaps []GapRecord
	total := float64(g.NodeCount())
	for _, id := range clusterIDs {
		members := communities.Communities[id]
		if len(members) < 2 || external[id] > 0 {
			continue
		}
		// Only meaningful when something exists outside the cluster.
		if len(members) == g.NodeCount() {
			continue
		}
		share := float64(len(members)) / total
		severity := SeverityLow
		switch {
		case share >= 0.25:
			severity = SeverityHigh
		case share >= 0.1:
			severity = SeverityMedium
		}
		gaps = append(gaps, GapRecord{
			GapType:   GapUnderexploredCluster,
			Severity:  severity,
			ClusterID: id,
			Score:     share,
			Description: fmt.Sprintf(
				"community %d (%d papers) has no citation links to the rest of the network",
				id, len(members)),
		})
	}
	return gaps
}

// DetectEmergingTopics surfaces trend signals.
//
// Description:
//
//	Two heuristics anchored at the reference year (newest publication
//	year in the graph unless configured):
//
//	(1) Keyword growth: a keyword whose per-year frequency inside the
//	recent window exceeds its baseline per-year frequency by
//	GrowthMedium (or GrowthHigh) and which appears in at least
//	MinKeywordCount recent papers is reported as an emerging topic.
//	Keywords with no baseline occurrences use the recent count itself
//	as the growth rate.
//
//	(2) Citation velocity: papers published inside the recent window
//	whose source-reported citation count divided by their age in years
//	meets VelocityMedium (or VelocityHigh) are flagged individually,
//	with the velocity attached.
//
//	Ordering is strength-descending, then growth/velocity descending,
//	then topic ascending; capped at MaxTopics.
func DetectEmergingTopics(g *graph.Graph, cfg HeuristicsConfig) []TopicRecord {
	cfg.Validate()

	refYear := cfg.ReferenceYear
	if refYear == 0 {
		for _, node := range g.Nodes() {
			if node.Year > refYear {
				refYear = node.Year
			}
		}
	}
	if refYear == 0 {
		return nil
	}
	windowStart := refYear - cfg.RecentWindowYears + 1

	topics := keywordGrowthTopics(g, cfg, refYear, windowStart)
	topics = append(topics, velocityTopics(g, cfg, refYear, windowStart)...)

	sort.Slice(topics, func(i, j int) bool {
		si, sj := severityRank(topics[i].TrendStrength), severityRank(topics[j].TrendStrength)
		if si != sj {
			return si > sj
		}
		vi := topics[i].GrowthRate + topics[i].CitationVelocity
		vj := topics[j].GrowthRate + topics[j].CitationVelocity
		if vi != vj {
			return vi > vj
		}
		return topics[i].Topic < topics[j].Topic
	})

	if len(topics) > cfg.MaxTopics {
		topics = topics[:cfg.MaxTopics]
	}
	return topics
}

func keywordGrowthTopics(g *graph.Graph, cfg HeuristicsConfig, refYear, windowStart int) []TopicRecord {
	recent := make(map[string]int)
	baseline := make(map[string]int)
	earliest := refYear

	for _, node := range g.Nodes() {
		if node.Year == 0 {
			continue
		}
		if node.Year < earliest {
			earliest = node.Year
		}
		for _, kw := range node.Keywords {
			if node.Year >= windowStart {
				recent[kw]++
			} else {
				baseline[kw]++
			}
		}
	}

	baselineYears := float64(windowStart - earliest)
	recentYears := float64(cfg.RecentWindowYears)

	keywords := make([]string, 0, len(recent))
	for kw := range recent {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)

	var topics []TopicRecord
	for _, kw := range keywords {
		n := recent[kw]
		if n < cfg.MinKeywordCount {
			continue
		}

		recentRate := float64(n) / recentYears
		var growth float64
		if baseline[kw] == 0 || baselineYears <= 0 {
			// New keyword with no history: growth is the raw recent rate.
			growth = recentRate
		} else {
			growth = recentRate / (float64(baseline[kw]) / baselineYears)
		}
		if growth < cfg.GrowthMedium {
			continue
		}

		strength := SeverityMedium
		if growth >= cfg.GrowthHigh {
			strength = SeverityHigh
		}
		topics = append(topics, TopicRecord{
			Topic:         kw,
			TrendStrength: strength,
			RecentCount:   n,
			GrowthRate:    growth,
		})
	}
	return topics
}

func velocityTopics(g *graph.Graph, cfg HeuristicsConfig, refYear, windowStart int) []TopicRecord {
	var topics []TopicRecord
	for _, node := range g.Nodes() {
		if node.Year < windowStart || node.Year > refYear {
			continue
		}
		age := float64(refYear - node.Year + 1)
		velocity := float64(node.CitationCount) / age
		if velocity < cfg.VelocityMedium {
			continue
		}
		strength := SeverityMedium
		if velocity >= cfg.VelocityHigh {
			strength = SeverityHigh
		}
		topics = append(topics, TopicRecord{
			Topic:            node.Title,
			TrendStrength:    strength,
			PaperID:          node.PaperID,
			CitationVelocity: velocity,
		})
	}
	return topics
}

// pairKeyStr is an ordered keyword pair (callers keep a < b).
type pairKeyStr struct {
	a, b string
}

func severityRank(s Severity) int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

func gapKey(g GapRecord) string {
	key := g.GapType
	for _, kw := range g.Keywords {
		key += "|" + kw
	}
	return fmt.Sprintf("%s|%d", key, g.ClusterID)
}
