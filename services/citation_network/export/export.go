// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package export renders a frozen citation graph into serializable
// payloads: a lossless network document for programmatic consumers and
// a capped, display-ready document for front-end visualization.
package export

import (
	"math"
	"sort"

	"github.com/AleutianAI/AleutianResearch/services/citation_network/graph"
)

// DefaultVisualizationNodeLimit caps visualization payloads. Networks
// above the cap keep only the most-cited papers.
const DefaultVisualizationNodeLimit = 500

// maxLabelLen bounds node labels in visualization payloads.
const maxLabelLen = 60

// clusterPalette colors communities in visualization payloads. Cluster
// IDs past the palette wrap around.
var clusterPalette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f",
	"#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac",
}

// unassignedColor is used for nodes without a community assignment.
const unassignedColor = "#cccccc"

// NetworkNode is the lossless per-paper record in a NetworkData export.
type NetworkNode struct {
	PaperID       string   `json:"paper_id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors,omitempty"`
	Year          int      `json:"year,omitempty"`
	Journal       string   `json:"journal,omitempty"`
	DOI           string   `json:"doi,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
	CitationCount int      `json:"citation_count"`
	ClusterID     int      `json:"cluster_id"`
	Betweenness   float64  `json:"betweenness"`
	PageRank      float64  `json:"pagerank"`
}

// NetworkData is the lossless export of a citation network, including
// derived co-citation and bibliographic-coupling edges.
type NetworkData struct {
	Nodes []NetworkNode        `json:"nodes"`
	Edges []graph.CitationEdge `json:"edges"`
	Stats NetworkStats         `json:"stats"`
}

// NetworkStats summarizes an exported network.
type NetworkStats struct {
	NodeCount        int `json:"node_count"`
	DirectEdgeCount  int `json:"direct_edge_count"`
	DerivedEdgeCount int `json:"derived_edge_count"`
}

// VisNode is a display-ready node.
type VisNode struct {
	ID      string  `json:"id"`
	Label   string  `json:"label"`
	Size    float64 `json:"size"`
	Color   string  `json:"color"`
	Cluster int     `json:"cluster"`
	Year    int     `json:"year,omitempty"`
}

// VisEdge is a display-ready edge between retained nodes.
type VisEdge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Type   string  `json:"type"`
	Weight float64 `json:"weight"`
}

// VisMetadata records how much of the network the payload shows.
type VisMetadata struct {
	TotalNodes     int  `json:"total_nodes"`
	DisplayedNodes int  `json:"displayed_nodes"`
	TotalEdges     int  `json:"total_edges"`
	DisplayedEdges int  `json:"displayed_edges"`
	Truncated      bool `json:"truncated"`
}

// VisualizationData is the capped, display-ready export.
type VisualizationData struct {
	Nodes    []VisNode   `json:"nodes"`
	Edges    []VisEdge   `json:"edges"`
	Metadata VisMetadata `json:"metadata"`
}

// BuildNetworkData exports the full graph, lossless, with direct and
// derived edges. Node order follows the graph's insertion order so
// exports are deterministic for a given build.
func BuildNetworkData(g *graph.Graph) *NetworkData {
	nodes := g.Nodes()
	out := &NetworkData{
		Nodes: make([]NetworkNode, 0, len(nodes)),
	}
	for _, n := range nodes {
		out.Nodes = append(out.Nodes, NetworkNode{
			PaperID:       n.PaperID,
			Title:         n.Title,
			Authors:       n.Authors,
			Year:          n.Year,
			Journal:       n.Journal,
			DOI:           n.DOI,
			Keywords:      n.Keywords,
			CitationCount: n.CitationCount,
			ClusterID:     n.ClusterID,
			Betweenness:   n.Betweenness,
			PageRank:      n.PageRank,
		})
	}

	direct := g.DirectEdges()
	coCite := g.CoCitationEdges()
	coupling := g.BibliographicCouplingEdges()

	out.Edges = make([]graph.CitationEdge, 0, len(direct)+len(coCite)+len(coupling))
	out.Edges = append(out.Edges, direct...)
	out.Edges = append(out.Edges, coCite...)
	out.Edges = append(out.Edges, coupling...)

	out.Stats = NetworkStats{
		NodeCount:        len(nodes),
		DirectEdgeCount:  len(direct),
		DerivedEdgeCount: len(coCite) + len(coupling),
	}
	return out
}

// BuildVisualizationData exports a display-ready payload capped at
// limit nodes (DefaultVisualizationNodeLimit when limit <= 0), keeping
// the most-cited papers and the direct edges among them.
//
// Node size is log-scaled from citation count so hub papers do not
// drown out the rest; color follows the community assignment.
func BuildVisualizationData(g *graph.Graph, limit int) *VisualizationData {
	if limit <= 0 {
		limit = DefaultVisualizationNodeLimit
	}

	nodes := g.Nodes()
	order := make([]int, len(nodes))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		na, nb := nodes[order[a]], nodes[order[b]]
		if na.CitationCount != nb.CitationCount {
			return na.CitationCount > nb.CitationCount
		}
		return na.PaperID < nb.PaperID
	})

	keep := order
	truncated := false
	if len(keep) > limit {
		keep = keep[:limit]
		truncated = true
	}
	kept := make(map[int]bool, len(keep))
	for _, idx := range keep {
		kept[idx] = true
	}

	out := &VisualizationData{
		Nodes: make([]VisNode, 0, len(keep)),
	}
	for _, idx := range keep {
		n := nodes[idx]
		out.Nodes = append(out.Nodes, VisNode{
			ID:      n.PaperID,
			Label:   truncateLabel(n.Title),
			Size:    nodeSize(n.CitationCount),
			Color:   clusterColor(n.ClusterID),
			Cluster: n.ClusterID,
			Year:    n.Year,
		})
	}

	direct := g.DirectEdges()
	for _, e := range direct {
		si, _ := g.IndexOf(e.Source)
		ti, _ := g.IndexOf(e.Target)
		if !kept[si] || !kept[ti] {
			continue
		}
		out.Edges = append(out.Edges, VisEdge{
			Source: e.Source,
			Target: e.Target,
			Type:   e.CitationType.String(),
			Weight: e.Strength,
		})
	}

	out.Metadata = VisMetadata{
		TotalNodes:     len(nodes),
		DisplayedNodes: len(out.Nodes),
		TotalEdges:     len(direct),
		DisplayedEdges: len(out.Edges),
		Truncated:      truncated,
	}
	return out
}

func truncateLabel(title string) string {
	if title == "" {
		return "(untitled)"
	}
	runes := []rune(title)
	if len(runes) <= maxLabelLen {
		return title
	}
	return string(runes[:maxLabelLen-1]) + "…"
}

func nodeSize(citations int) float64 {
	// 4..~30 over realistic citation counts.
	return 4 + 4*math.Log1p(float64(citations))
}

func clusterColor(clusterID int) string {
	if clusterID < 0 {
		return unassignedColor
	}
	return clusterPalette[clusterID%len(clusterPalette)]
}
