package graph

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/segmentgraph/logging"
	"go.viam.com/segmentgraph/pointcloud"
	"go.viam.com/segmentgraph/utils"
)

// direction is one of the neighbors every cell is linked to. Edges of a cell
// are emitted in this order.
type direction int

const (
	right direction = iota
	bottom
	bottomRight
	bottomLeft
	numDirections
)

func (d direction) neighbor(col, row int) (int, int) {
	switch d {
	case right:
		return col + 1, row
	case bottom:
		return col, row + 1
	case bottomRight:
		return col + 1, row + 1
	case bottomLeft:
		return col - 1, row + 1
	default:
		panic(errors.Errorf("unknown direction %d", d))
	}
}

// cloudStats are computed while building a graph from a point cloud.
type cloudStats struct {
	maxColorDistance float64
	maxCurvature     float64
}

// BuildFromPointCloud builds a graph over the points of an organized cloud.
// Every point (col, row) with col < width-1 and row < height-1 is linked to
// its right, bottom, bottom-right and bottom-left neighbors. Each edge carries
//
//   - W, the color distance normalized by the largest color distance of the cloud,
//   - W2, the angle between the two normals, or AngleSentinel when the source
//     has no depth or the angle is undefined.
//
// An edge is only emitted when both points have a depth and the depth jump is
// below conf.ZAdapt times the source depth. A nil conf uses DefaultPointCloudConfig.
func BuildFromPointCloud(
	ctx context.Context,
	cloud *pointcloud.Organized,
	normals pointcloud.Normals,
	conf *PointCloudConfig,
	logger logging.Logger,
) ([]Edge, error) {
	edges, _, err := buildFromPointCloud(ctx, cloud, normals, conf, logger)
	return edges, err
}

func buildFromPointCloud(
	ctx context.Context,
	cloud *pointcloud.Organized,
	normals pointcloud.Normals,
	conf *PointCloudConfig,
	logger logging.Logger,
) ([]Edge, cloudStats, error) {
	var stats cloudStats
	if conf == nil {
		conf = DefaultPointCloudConfig()
	}
	if err := conf.Validate(""); err != nil {
		return nil, stats, err
	}
	if cloud == nil {
		return nil, stats, errors.New("point cloud cannot be nil")
	}
	if cloud.Width() < 2 || cloud.Height() < 2 {
		return nil, stats, errors.Wrapf(pointcloud.ErrGridTooSmall, "need at least 2x2 points, got %dx%d", cloud.Width(), cloud.Height())
	}
	maxCurvature, err := pointcloud.MaxCurvature(cloud, normals)
	if err != nil {
		return nil, stats, err
	}
	stats.maxCurvature = maxCurvature
	logger.Debugf("max curvature: %5.5f", maxCurvature)

	cb := &cloudGraphBuilder{
		cloud:   cloud,
		points:  cloud.Points(),
		normals: normals,
		conf:    conf,
		cols:    cloud.Width() - 1,
		rows:    cloud.Height() - 1,
	}
	if err := cb.computeColorDistances(ctx); err != nil {
		return nil, stats, err
	}
	stats.maxColorDistance = cb.maxColorDistance
	logger.Debugf("max color distance: %5.5f", cb.maxColorDistance)

	edges, err := cb.buildEdges(ctx)
	if err != nil {
		return nil, stats, err
	}
	logger.Debugf("created %d edges from %dx%d points", len(edges), cloud.Width(), cloud.Height())
	return edges, stats, nil
}

// cloudGraphBuilder holds the state shared by the two passes over the grid.
// Cells are the points (col, row) with col < cols and row < rows.
type cloudGraphBuilder struct {
	cloud   *pointcloud.Organized
	points  []pointcloud.Point
	normals pointcloud.Normals
	conf    *PointCloudConfig

	cols, rows int

	colorDistances   [][numDirections]float64
	maxColorDistance float64
}

func (cb *cloudGraphBuilder) cell(col, row int) int {
	return row*cb.cols + col
}

// computeColorDistances fills in the color distance of every cell to each of
// its neighbors and reduces them to the largest one. The fixed distance of the
// missing bottom-left neighbor on the first column is not part of the maximum.
func (cb *cloudGraphBuilder) computeColorDistances(ctx context.Context) error {
	cb.colorDistances = make([][numDirections]float64, cb.cols*cb.rows)
	var groupMax []float64
	err := utils.GroupWorkParallel(
		ctx,
		cb.rows,
		func(numGroups int) {
			groupMax = make([]float64, numGroups)
		},
		func(groupNum, groupSize, from, to int) (utils.MemberWorkFunc, utils.GroupWorkDoneFunc) {
			localMax := 0.0
			return func(memberNum, row int) {
					for col := 0; col < cb.cols; col++ {
						src := cb.points[cb.cloud.Index(col, row)]
						dists := &cb.colorDistances[cb.cell(col, row)]
						for dir := right; dir < numDirections; dir++ {
							if dir == bottomLeft && col == 0 {
								dists[dir] = BorderColorDistance
								continue
							}
							nCol, nRow := dir.neighbor(col, row)
							dist := src.ColorDistance(cb.points[cb.cloud.Index(nCol, nRow)])
							dists[dir] = dist
							if dist > localMax {
								localMax = dist
							}
						}
					}
				}, func() {
					groupMax[groupNum] = localMax
				}
		},
	)
	if err != nil {
		return err
	}
	cb.maxColorDistance = floats.Max(groupMax)
	return nil
}

// buildEdges emits the admitted edges of every cell. Groups cover ordered row
// ranges so concatenating their edges keeps the row-major order.
func (cb *cloudGraphBuilder) buildEdges(ctx context.Context) ([]Edge, error) {
	var groupEdges [][]Edge
	err := utils.GroupWorkParallel(
		ctx,
		cb.rows,
		func(numGroups int) {
			groupEdges = make([][]Edge, numGroups)
		},
		func(groupNum, groupSize, from, to int) (utils.MemberWorkFunc, utils.GroupWorkDoneFunc) {
			edges := make([]Edge, 0, groupSize*cb.cols*int(numDirections))
			return func(memberNum, row int) {
					for col := 0; col < cb.cols; col++ {
						for dir := right; dir < numDirections; dir++ {
							if e, ok := cb.edge(col, row, dir); ok {
								edges = append(edges, e)
							}
						}
					}
				}, func() {
					groupEdges[groupNum] = edges
				}
		},
	)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, edges := range groupEdges {
		total += len(edges)
	}
	all := make([]Edge, 0, total)
	for _, edges := range groupEdges {
		all = append(all, edges...)
	}
	return all, nil
}

// edge returns the edge from (col, row) in the given direction and whether it
// passes the depth gate.
func (cb *cloudGraphBuilder) edge(col, row int, dir direction) (Edge, bool) {
	idx := cb.cloud.Index(col, row)
	src := cb.points[idx]

	if dir == bottomLeft && col == 0 {
		if !cb.conf.WrapBottomLeft {
			return Edge{}, false
		}
		// flat index arithmetic lands on the last column of the same row
		aliased := idx + cb.cloud.Width() - 1
		e := Edge{A: uint(idx), B: uint(aliased), Type: EdgeTypeSurface, W: BorderColorDistance, W2: AngleSentinel}
		return e, depthContinuous(src, cb.points[aliased], cb.conf.ZAdapt)
	}

	nCol, nRow := dir.neighbor(col, row)
	nIdx := cb.cloud.Index(nCol, nRow)

	w := 0.0
	if cb.maxColorDistance > 0 {
		w = cb.colorDistances[cb.cell(col, row)][dir] / cb.maxColorDistance
	}
	w2 := AngleSentinel
	if src.HasDepth() {
		if angle := cb.normals.Angle(idx, nIdx); !math.IsNaN(angle) {
			w2 = angle
		}
	}

	e := Edge{A: uint(idx), B: uint(nIdx), Type: EdgeTypeSurface, W: w, W2: w2}
	return e, depthContinuous(src, cb.points[nIdx], cb.conf.ZAdapt)
}

// depthContinuous is the depth gate between a source point and its neighbor.
func depthContinuous(src, dst pointcloud.Point, zAdapt float64) bool {
	if !src.HasDepth() || !dst.HasDepth() {
		return false
	}
	return math.Abs(src.Position.Z-dst.Position.Z) < zAdapt*src.Position.Z
}
