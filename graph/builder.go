package graph

import (
	"context"

	"go.viam.com/segmentgraph/logging"
	"go.viam.com/segmentgraph/pointcloud"
)

// A GraphBuilder holds the inputs of both build modes together with the edges
// of the last build. Every build replaces the previous edges; a failed build
// leaves none. A GraphBuilder is not safe for concurrent use.
type GraphBuilder struct {
	logger logging.Logger

	nodeCount uint
	relations []Relation

	cloud   *pointcloud.Organized
	normals pointcloud.Normals

	edges            []Edge
	maxCurvature     float64
	maxColorDistance float64
}

// NewGraphBuilder returns a builder without any inputs.
func NewGraphBuilder(logger logging.Logger) *GraphBuilder {
	return &GraphBuilder{logger: logger}
}

// NewGraphBuilderFromRelations returns a builder for nodeCount nodes linked by relations.
func NewGraphBuilderFromRelations(nodeCount uint, relations []Relation, logger logging.Logger) *GraphBuilder {
	gb := NewGraphBuilder(logger)
	gb.SetRelations(nodeCount, relations)
	return gb
}

// SetRelations replaces the input of BuildFromRelations.
func (gb *GraphBuilder) SetRelations(nodeCount uint, relations []Relation) {
	gb.nodeCount = nodeCount
	gb.relations = relations
}

// SetPointCloud replaces the input of BuildFromPointCloud. The cloud and
// normals are referenced, not copied.
func (gb *GraphBuilder) SetPointCloud(cloud *pointcloud.Organized, normals pointcloud.Normals) {
	gb.cloud = cloud
	gb.normals = normals
}

// BuildFromRelations builds the graph from the current relations, see
// BuildFromRelations. On success the builder's relations are replaced by the
// repaired ones, including those added to connect every node to node 0.
func (gb *GraphBuilder) BuildFromRelations() ([]Edge, int, error) {
	gb.edges = nil
	edges, repaired, err := buildFromRelations(gb.nodeCount, gb.relations, gb.logger)
	if err != nil {
		return nil, 0, err
	}
	gb.relations = repaired
	gb.edges = edges
	return gb.edges, len(gb.edges), nil
}

// BuildFromPointCloud builds the graph from the current point cloud and
// normals, see BuildFromPointCloud.
func (gb *GraphBuilder) BuildFromPointCloud(ctx context.Context, conf *PointCloudConfig) ([]Edge, int, error) {
	gb.edges = nil
	gb.maxCurvature = 0
	gb.maxColorDistance = 0
	edges, stats, err := buildFromPointCloud(ctx, gb.cloud, gb.normals, conf, gb.logger)
	if err != nil {
		return nil, 0, err
	}
	gb.edges = edges
	gb.maxCurvature = stats.maxCurvature
	gb.maxColorDistance = stats.maxColorDistance
	return gb.edges, len(gb.edges), nil
}

// Edges returns the edges of the last successful build.
func (gb *GraphBuilder) Edges() []Edge {
	return gb.edges
}

// NumEdges returns the number of edges of the last successful build.
func (gb *GraphBuilder) NumEdges() int {
	return len(gb.edges)
}

// Relations returns the current relations.
func (gb *GraphBuilder) Relations() []Relation {
	return gb.relations
}

// MaxCurvature returns the largest curvature among valid points seen by the
// last point cloud build.
func (gb *GraphBuilder) MaxCurvature() float64 {
	return gb.maxCurvature
}

// MaxColorDistance returns the color distance that normalized the W of the
// last point cloud build.
func (gb *GraphBuilder) MaxColorDistance() float64 {
	return gb.maxColorDistance
}
