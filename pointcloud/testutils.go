package pointcloud

import (
	"image/color"
)

// MakeTestPlanarCloud creates a width x height cloud lying on the plane z = depth
// with one unit of spacing between neighboring points, every point colored c.
func MakeTestPlanarCloud(width, height int, depth float64, c color.NRGBA) *Organized {
	cloud, err := NewOrganized(width, height)
	if err != nil {
		return nil
	}
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			err = cloud.Set(col, row, Point{Position: NewVector(float64(col), float64(row), depth), Color: c})
			if err != nil {
				return nil
			}
		}
	}
	return cloud
}
