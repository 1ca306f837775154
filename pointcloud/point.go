package pointcloud

import (
	"image/color"
	"math"

	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
)

// NewVector convenience method for creating a vector.
func NewVector(x, y, z float64) r3.Vector {
	return r3.Vector{X: x, Y: y, Z: z}
}

// Point is a single sample of an organized point cloud. A NaN Z component
// marks a sample without a valid depth reading.
type Point struct {
	Position r3.Vector
	Color    color.NRGBA
}

// NewPoint returns a point at the given position with the given 8-bit RGB color.
func NewPoint(x, y, z float64, r, g, b uint8) Point {
	return Point{Position: NewVector(x, y, z), Color: color.NRGBA{R: r, G: g, B: b, A: 255}}
}

// InvalidPoint returns a black point without depth.
func InvalidPoint() Point {
	return Point{Position: NewVector(math.NaN(), math.NaN(), math.NaN()), Color: color.NRGBA{A: 255}}
}

// HasDepth returns whether the depth (Z) of the point is valid.
func (p Point) HasDepth() bool {
	return !math.IsNaN(p.Position.Z)
}

// RGB255 returns the RGB components of the color.
func (p Point) RGB255() (uint8, uint8, uint8) {
	return p.Color.R, p.Color.G, p.Color.B
}

// Colorful returns the color of the point with each channel scaled to [0, 1].
func (p Point) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(p.Color.R) / 255.,
		G: float64(p.Color.G) / 255.,
		B: float64(p.Color.B) / 255.,
	}
}

// ColorDistance is the euclidean distance between the colors of two points
// with channels scaled to [0, 1]. It lies in [0, sqrt(3)].
func (p Point) ColorDistance(other Point) float64 {
	return p.Colorful().DistanceRgb(other.Colorful())
}

// Normal is the estimated unit surface normal at a point together with the
// surface curvature estimated alongside it.
type Normal struct {
	Vector    r3.Vector
	Curvature float64
}

// Normals holds one Normal per point of an organized cloud, indexed the same way.
type Normals []Normal

// Len returns the number of normals.
func (ns Normals) Len() int {
	return len(ns)
}

// Angle returns the angle in radians between the normals at i and j. The
// result is NaN when rounding pushes the dot product of two nearly parallel
// normals outside of [-1, 1].
func (ns Normals) Angle(i, j int) float64 {
	return math.Acos(ns[i].Vector.Dot(ns[j].Vector))
}

// UniformNormals returns n copies of the given normal with zero curvature.
func UniformNormals(n int, normal r3.Vector) Normals {
	ns := make(Normals, n)
	for i := range ns {
		ns[i] = Normal{Vector: normal}
	}
	return ns
}
