// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph provides the citation network data model.
//
// Nodes are stored in a dense arena indexed by integer handles with an
// O(1) paper-id lookup map. Adjacency is kept as index slices, so cyclic
// citation structures (A cites B, B cites A) carry no pointer cycles.
//
// The graph follows a build-then-freeze lifecycle: a builder populates
// the graph single-threaded, Freeze() flips it to read-only, and frozen
// graphs are safe for unbounded concurrent reads.
package graph

import (
	"fmt"
	"sort"
	"time"
)

// Default configuration values.
const (
	// DefaultMaxNetworkSize is the default maximum number of papers a
	// network can hold. Batches beyond this are truncated by the builder.
	DefaultMaxNetworkSize = 10_000

	// DefaultMaxCitationsPerPaper bounds the citation list carried by a
	// single node. Longer lists are truncated with a warning.
	DefaultMaxCitationsPerPaper = 1_000

	// MinPublicationYear and MaxPublicationYear bound accepted
	// publication years. A zero year means unknown and is accepted.
	MinPublicationYear = 1900
	MaxPublicationYear = 2030
)

// GraphState represents the lifecycle state of the graph.
type GraphState int

const (
	// GraphStateBuilding indicates the graph is accepting AddNode/AddEdge calls.
	GraphStateBuilding GraphState = iota

	// GraphStateReadOnly indicates the graph is frozen and read-only.
	GraphStateReadOnly
)

// String returns the string representation of the GraphState.
func (s GraphState) String() string {
	switch s {
	case GraphStateBuilding:
		return "building"
	case GraphStateReadOnly:
		return "readonly"
	default:
		return "unknown"
	}
}

// EdgeType defines the type of relationship between papers.
type EdgeType int

const (
	// EdgeTypeDirect indicates the source paper cites the target paper.
	// Direct edges are directed and form the authoritative adjacency.
	EdgeTypeDirect EdgeType = iota

	// EdgeTypeCoCitation indicates both papers are cited by some third
	// paper. Co-citation edges are undirected and derived on demand.
	EdgeTypeCoCitation

	// EdgeTypeBibliographicCoupling indicates both papers cite some
	// common third paper. Coupling edges are undirected and derived.
	EdgeTypeBibliographicCoupling
)

// edgeTypeNames maps EdgeType values to their wire representations.
var edgeTypeNames = map[EdgeType]string{
	EdgeTypeDirect:                "direct",
	EdgeTypeCoCitation:            "co_citation",
	EdgeTypeBibliographicCoupling: "bibliographic_coupling",
}

// String returns the string representation of the EdgeType.
func (t EdgeType) String() string {
	if name, ok := edgeTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler so edge types serialize
// as their wire names inside JSON payloads.
func (t EdgeType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *EdgeType) UnmarshalText(data []byte) error {
	for et, name := range edgeTypeNames {
		if name == string(data) {
			*t = et
			return nil
		}
	}
	return fmt.Errorf("unknown edge type %q", string(data))
}

// ClusterUnassigned is the ClusterID value before community detection runs.
const ClusterUnassigned = -1

// CitationNode represents a single paper in the citation network.
//
// CitationCount is the count reported by the bibliographic data source
// and is independent of the in-graph edge count. Citations may reference
// paper IDs outside the ingested batch (dangling citations); those IDs
// are preserved here even though no adjacency edge exists for them.
//
// ClusterID, Betweenness, and PageRank are analysis-result attachments:
// they default to their zero values (ClusterUnassigned for ClusterID)
// and are stale until the next analysis pass.
type CitationNode struct {
	PaperID       string   `json:"paper_id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Year          int      `json:"year"`
	Journal       string   `json:"journal"`
	DOI           string   `json:"doi,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
	Abstract      string   `json:"abstract,omitempty"`
	CitationCount int      `json:"citation_count"`
	Citations     []string `json:"citations,omitempty"`

	ClusterID   int     `json:"cluster_id"`
	Betweenness float64 `json:"betweenness"`
	PageRank    float64 `json:"pagerank"`
}

// HasKeyword reports whether the node carries the given keyword.
// Keywords are normalized to a sorted set by the builder.
func (n *CitationNode) HasKeyword(kw string) bool {
	i := sort.SearchStrings(n.Keywords, kw)
	return i < len(n.Keywords) && n.Keywords[i] == kw
}

// CitationEdge represents a relationship between two papers.
//
// Direct edges are directed (Source cites Target). Derived edges
// (co-citation, bibliographic coupling) are undirected; they are emitted
// once per unordered pair with Source < Target and are symmetric by
// contract: strength(A,B) == strength(B,A).
type CitationEdge struct {
	Source       string   `json:"source"`
	Target       string   `json:"target"`
	CitationType EdgeType `json:"citation_type"`
	Strength     float64  `json:"strength"`
}

// GraphOptions configures Graph behavior and limits.
type GraphOptions struct {
	// MaxNodes is the maximum number of nodes the graph can hold.
	// Default: 10,000
	MaxNodes int
}

// DefaultGraphOptions returns sensible defaults for graph configuration.
func DefaultGraphOptions() GraphOptions {
	return GraphOptions{
		MaxNodes: DefaultMaxNetworkSize,
	}
}

// GraphOption is a functional option for configuring Graph.
type GraphOption func(*GraphOptions)

// WithMaxNodes sets the maximum number of nodes the graph can hold.
func WithMaxNodes(n int) GraphOption {
	return func(o *GraphOptions) {
		o.MaxNodes = n
	}
}

// Graph is the citation network container.
//
// Thread Safety:
//
//	Graph is NOT safe for concurrent use during building. It is designed
//	for single-writer access during build, then read-only after Freeze().
//	After Freeze() is called, the graph can be safely read from multiple
//	goroutines, but no further modifications are allowed.
//
// Lifecycle:
//
//  1. Create with NewGraph()
//  2. Populate with AddNode() and AddEdge() calls
//  3. Call Freeze() to finalize
//  4. Query with Node(), NodeAt(), OutNeighbors(), etc.
type Graph struct {
	// nodes is the dense node arena. Index positions are stable for the
	// lifetime of the graph and serve as integer node handles.
	nodes []*CitationNode

	// index maps paper ID to arena index.
	index map[string]int

	// out and in hold adjacency as arena-index slices, parallel to nodes.
	out [][]int
	in  [][]int

	// edgeCount is the number of direct edges.
	edgeCount int

	state   GraphState
	options GraphOptions

	// BuiltAtMilli is the Unix timestamp in milliseconds when Freeze()
	// was called. Zero if the graph has not been frozen.
	BuiltAtMilli int64
}

// NewGraph creates a new empty citation graph.
//
// Description:
//
//	Creates a graph in the Building state, ready to accept AddNode and
//	AddEdge calls. The graph must be frozen with Freeze() before it is
//	handed to readers.
//
// Example:
//
//	// Default limits
//	g := graph.NewGraph()
//
//	// Custom limit
//	g := graph.NewGraph(graph.WithMaxNodes(500))
func NewGraph(opts ...GraphOption) *Graph {
	options := DefaultGraphOptions()
	for _, opt := range opts {
		opt(&options)
	}

	return &Graph{
		nodes:   make([]*CitationNode, 0),
		index:   make(map[string]int),
		out:     make([][]int, 0),
		in:      make([][]int, 0),
		state:   GraphStateBuilding,
		options: options,
	}
}

// State returns the current lifecycle state of the graph.
func (g *Graph) State() GraphState {
	return g.state
}

// IsFrozen returns true if the graph is in read-only mode.
func (g *Graph) IsFrozen() bool {
	return g.state == GraphStateReadOnly
}

// Freeze transitions the graph to read-only mode.
//
// After calling Freeze(), AddNode and AddEdge return ErrGraphFrozen.
// The operation is irreversible. After Freeze() returns, the graph can
// be read from multiple goroutines concurrently.
func (g *Graph) Freeze() {
	g.state = GraphStateReadOnly
	g.BuiltAtMilli = time.Now().UnixMilli()
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of direct citation edges in the graph.
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

// AddNode adds a paper to the graph.
//
// Description:
//
//	Appends the node to the arena and registers its paper ID in the
//	lookup index. The node's ClusterID is reset to ClusterUnassigned.
//
// Inputs:
//
//	node - The node to add. Must not be nil and must carry a paper ID.
//
// Outputs:
//
//	int - The arena index assigned to the node.
//	error - Non-nil if the graph is frozen, at capacity, or the node is
//	invalid or a duplicate.
//
// Ownership:
//
//	The graph stores the pointer directly. The caller must not mutate
//	identity fields (PaperID, Citations) after this call; analysis
//	attachments (ClusterID, centrality scores) are written by analyzers
//	only after the graph is frozen.
func (g *Graph) AddNode(node *CitationNode) (int, error) {
	if g.state == GraphStateReadOnly {
		return -1, ErrGraphFrozen
	}

	if node == nil || node.PaperID == "" {
		return -1, fmt.Errorf("%w: missing paper ID", ErrInvalidNode)
	}

	if len(g.nodes) >= g.options.MaxNodes {
		return -1, ErrMaxNodesExceeded
	}

	if _, exists := g.index[node.PaperID]; exists {
		return -1, fmt.Errorf("%w: %s", ErrDuplicateNode, node.PaperID)
	}

	node.ClusterID = ClusterUnassigned

	idx := len(g.nodes)
	g.nodes = append(g.nodes, node)
	g.index[node.PaperID] = idx
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)

	return idx, nil
}

// AddEdge creates a direct citation edge between two papers.
//
// Both papers must already exist in the graph; the builder is
// responsible for skipping dangling citation targets before calling.
// Duplicate edges between the same pair are collapsed. The target is
// recorded in the source node's Citations set when absent, so derived
// edges see the same relationships regardless of whether the graph was
// wired from records or through AddEdge directly.
func (g *Graph) AddEdge(sourceID, targetID string) error {
	if g.state == GraphStateReadOnly {
		return ErrGraphFrozen
	}

	si, ok := g.index[sourceID]
	if !ok {
		return fmt.Errorf("%w: source %s", ErrNodeNotFound, sourceID)
	}
	ti, ok := g.index[targetID]
	if !ok {
		return fmt.Errorf("%w: target %s", ErrNodeNotFound, targetID)
	}

	for _, existing := range g.out[si] {
		if existing == ti {
			return nil
		}
	}

	g.out[si] = append(g.out[si], ti)
	g.in[ti] = append(g.in[ti], si)
	g.edgeCount++

	// Keep Citations sorted and deduplicated (the builder's invariant).
	source := g.nodes[si]
	pos := sort.SearchStrings(source.Citations, targetID)
	if pos == len(source.Citations) || source.Citations[pos] != targetID {
		source.Citations = append(source.Citations, "")
		copy(source.Citations[pos+1:], source.Citations[pos:])
		source.Citations[pos] = targetID
	}

	return nil
}

// Node retrieves a node by its paper ID.
func (g *Graph) Node(paperID string) (*CitationNode, bool) {
	idx, ok := g.index[paperID]
	if !ok {
		return nil, false
	}
	return g.nodes[idx], true
}

// IndexOf returns the arena index for a paper ID.
func (g *Graph) IndexOf(paperID string) (int, bool) {
	idx, ok := g.index[paperID]
	return idx, ok
}

// NodeAt returns the node at the given arena index.
// Panics if the index is out of range, matching slice semantics.
func (g *Graph) NodeAt(idx int) *CitationNode {
	return g.nodes[idx]
}

// Nodes returns the node arena in insertion order.
// The returned slice must not be modified.
func (g *Graph) Nodes() []*CitationNode {
	return g.nodes
}

// SortedIDs returns all paper IDs in ascending order.
// Used to fix deterministic iteration order in analyses.
func (g *Graph) SortedIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for _, n := range g.nodes {
		ids = append(ids, n.PaperID)
	}
	sort.Strings(ids)
	return ids
}

// OutNeighbors returns the arena indexes cited by the node at idx.
// The returned slice must not be modified.
func (g *Graph) OutNeighbors(idx int) []int {
	return g.out[idx]
}

// InNeighbors returns the arena indexes citing the node at idx.
// The returned slice must not be modified.
func (g *Graph) InNeighbors(idx int) []int {
	return g.in[idx]
}

// DirectEdges materializes the authoritative edge list as CitationEdge
// values, ordered by source arena index then target arena index.
func (g *Graph) DirectEdges() []CitationEdge {
	edges := make([]CitationEdge, 0, g.edgeCount)
	for si, targets := range g.out {
		for _, ti := range targets {
			edges = append(edges, CitationEdge{
				Source:       g.nodes[si].PaperID,
				Target:       g.nodes[ti].PaperID,
				CitationType: EdgeTypeDirect,
				Strength:     1.0,
			})
		}
	}
	return edges
}

// UndirectedAdjacency builds the undirected projection of the direct
// citation graph as weighted neighbor maps, indexed by arena index.
//
// Mutual citations (A cites B and B cites A) yield weight 2 for the
// pair; a single direction yields weight 1. Community detection and the
// clustering coefficient operate on this projection.
func (g *Graph) UndirectedAdjacency() []map[int]float64 {
	adj := make([]map[int]float64, len(g.nodes))
	for i := range adj {
		adj[i] = make(map[int]float64)
	}
	for si, targets := range g.out {
		for _, ti := range targets {
			if si == ti {
				continue
			}
			adj[si][ti]++
			adj[ti][si]++
		}
	}
	return adj
}
