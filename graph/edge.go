// Package graph builds weighted adjacency graphs over scene elements for a
// downstream graph partitioner. Graphs are built either from pairwise
// relations between abstract nodes carrying a merge probability, or from the
// 4-neighborhood of an organized point cloud with color, normal angle and
// depth continuity signals.
package graph

import (
	"math"

	"gonum.org/v1/gonum/graph/simple"
)

// EdgeTypeSurface is the type of every edge built by this package.
const EdgeTypeSurface = 1

const (
	// AngleSentinel is the normal angle weight used when the angle between two
	// normals is undefined, roughly pi/2.
	AngleSentinel = 1.57
	// BorderColorDistance is the color distance used for the bottom-left
	// neighbor of points on the first column, which has no such neighbor.
	BorderColorDistance = 1.0
)

// Edge is a weighted connection between nodes A and B. W is the weight used
// as the partitioning cost. W2 carries the normal angle between the two
// endpoints when built from a point cloud and is zero otherwise.
type Edge struct {
	A, B uint
	Type int
	W    float64
	W2   float64
}

// ToWeightedGraph converts edges into a gonum undirected graph over nodes
// [0, nodeCount) weighted by W. Self loops are skipped and only the first of
// any parallel edges is kept.
func ToWeightedGraph(nodeCount int, edges []Edge) *simple.WeightedUndirectedGraph {
	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for i := 0; i < nodeCount; i++ {
		g.AddNode(simple.Node(i))
	}
	for _, e := range edges {
		if e.A == e.B || g.HasEdgeBetween(int64(e.A), int64(e.B)) {
			continue
		}
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(e.A), simple.Node(e.B), e.W))
	}
	return g
}
