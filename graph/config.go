package graph

import (
	"math"

	"github.com/pkg/errors"

	"go.viam.com/segmentgraph/utils"
)

// DefaultZAdapt is the default relative depth tolerance: neighbors are
// connected when their depths differ by less than 1% of the source depth.
const DefaultZAdapt = 0.01

// PointCloudConfig holds the parameters of BuildFromPointCloud.
type PointCloudConfig struct {
	// ZAdapt scales the depth of the source point into the largest depth
	// jump still treated as a continuous surface.
	ZAdapt float64 `json:"z_adapt"`
	// WrapBottomLeft links points on the first column to the point at linear
	// index idx+width-1, the last column of the same row, in place of the
	// missing bottom-left neighbor. Such edges get a color weight of
	// BorderColorDistance and the AngleSentinel normal weight, and are still
	// subject to the depth gate. Off by default.
	WrapBottomLeft bool `json:"wrap_bottom_left"`
}

// DefaultPointCloudConfig returns the default config.
func DefaultPointCloudConfig() *PointCloudConfig {
	return &PointCloudConfig{ZAdapt: DefaultZAdapt}
}

// Validate ensures all parts of the config are valid.
func (conf *PointCloudConfig) Validate(path string) error {
	field := "z_adapt"
	if path != "" {
		field = path + "." + field
	}
	if math.IsNaN(conf.ZAdapt) || math.IsInf(conf.ZAdapt, 0) || conf.ZAdapt <= 0 {
		return errors.Errorf("%s must be a positive number, got %v", field, conf.ZAdapt)
	}
	return nil
}

// PointCloudConfigFromAttributes converts attributes into a validated config.
// Absent attributes take their default value.
func PointCloudConfigFromAttributes(attributes utils.AttributeMap) (*PointCloudConfig, error) {
	conf, err := utils.TransformAttributeMap[*PointCloudConfig](attributes)
	if err != nil {
		return nil, err
	}
	if !attributes.Has("z_adapt") {
		conf.ZAdapt = DefaultZAdapt
	}
	if err := conf.Validate(""); err != nil {
		return nil, err
	}
	return conf, nil
}
