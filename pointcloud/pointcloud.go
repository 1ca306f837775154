// Package pointcloud defines an organized point cloud: a row-major grid of
// points, as produced by a depth camera, where every sample keeps its image
// row and column. Normals and curvature estimates are carried in a parallel
// slice indexed the same way.
package pointcloud

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

var (
	// ErrGridTooSmall is returned when a grid has fewer rows or columns than required.
	ErrGridTooSmall = errors.New("point cloud grid too small")
	// ErrDimensionMismatch is returned when the number of points or normals does not
	// match the grid dimensions.
	ErrDimensionMismatch = errors.New("point cloud dimension mismatch")
)

// MetaData is data about what's stored in the point cloud.
type MetaData struct {
	Width, Height int
	ValidDepth    int

	MinZ, MaxZ float64
}

// Organized is a point cloud whose points are stored row-major on a
// width x height grid. The linear index of (col, row) is row*width + col.
type Organized struct {
	width  int
	height int
	points []Point
}

// NewOrganized returns a width x height cloud where every point is invalid.
func NewOrganized(width, height int) (*Organized, error) {
	if width < 1 || height < 1 {
		return nil, errors.Wrapf(ErrGridTooSmall, "got %dx%d", width, height)
	}
	points := make([]Point, width*height)
	for i := range points {
		points[i] = InvalidPoint()
	}
	return &Organized{width: width, height: height, points: points}, nil
}

// NewOrganizedFromPoints wraps the given row-major points. The slice is not copied.
func NewOrganizedFromPoints(width, height int, points []Point) (*Organized, error) {
	if width < 1 || height < 1 {
		return nil, errors.Wrapf(ErrGridTooSmall, "got %dx%d", width, height)
	}
	if len(points) != width*height {
		return nil, errors.Wrapf(ErrDimensionMismatch, "%d points for a %dx%d grid", len(points), width, height)
	}
	return &Organized{width: width, height: height, points: points}, nil
}

// Width returns the number of columns.
func (cloud *Organized) Width() int {
	return cloud.width
}

// Height returns the number of rows.
func (cloud *Organized) Height() int {
	return cloud.height
}

// Size returns the number of points in the cloud.
func (cloud *Organized) Size() int {
	return len(cloud.points)
}

// Points returns the underlying row-major points.
func (cloud *Organized) Points() []Point {
	return cloud.points
}

// Index returns the linear index of (col, row).
func (cloud *Organized) Index(col, row int) int {
	return row*cloud.width + col
}

// Coordinate is the inverse of Index.
func (cloud *Organized) Coordinate(idx int) (col, row int) {
	return idx % cloud.width, idx / cloud.width
}

// InBounds returns whether (col, row) lies on the grid.
func (cloud *Organized) InBounds(col, row int) bool {
	return col >= 0 && col < cloud.width && row >= 0 && row < cloud.height
}

// At returns the point at (col, row). The position must be in bounds.
func (cloud *Organized) At(col, row int) Point {
	return cloud.points[cloud.Index(col, row)]
}

// Set places the given point at (col, row).
func (cloud *Organized) Set(col, row int, p Point) error {
	if !cloud.InBounds(col, row) {
		return errors.Errorf("(%d, %d) is outside of the %dx%d grid", col, row, cloud.width, cloud.height)
	}
	cloud.points[cloud.Index(col, row)] = p
	return nil
}

// ValidateNormals checks that normals has exactly one entry per point.
func (cloud *Organized) ValidateNormals(normals Normals) error {
	if normals.Len() != cloud.Size() {
		return errors.Wrapf(ErrDimensionMismatch, "%d normals for %d points", normals.Len(), cloud.Size())
	}
	return nil
}

// MetaData returns meta data about the depth readings of the cloud.
func (cloud *Organized) MetaData() MetaData {
	meta := MetaData{
		Width:  cloud.width,
		Height: cloud.height,
		MinZ:   math.MaxFloat64,
		MaxZ:   -math.MaxFloat64,
	}
	for _, p := range cloud.points {
		meta.Merge(p)
	}
	return meta
}

// Merge folds a point into the meta data.
func (meta *MetaData) Merge(p Point) {
	if !p.HasDepth() {
		return
	}
	meta.ValidDepth++
	if p.Position.Z > meta.MaxZ {
		meta.MaxZ = p.Position.Z
	}
	if p.Position.Z < meta.MinZ {
		meta.MinZ = p.Position.Z
	}
}

// MaxCurvature returns the largest curvature among points with a valid depth,
// or 0 when there is none larger.
func MaxCurvature(cloud *Organized, normals Normals) (float64, error) {
	if err := cloud.ValidateNormals(normals); err != nil {
		return 0, err
	}
	curvatures := []float64{0}
	for i, p := range cloud.points {
		if p.HasDepth() {
			curvatures = append(curvatures, normals[i].Curvature)
		}
	}
	return floats.Max(curvatures), nil
}
