package pipeline

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"
	"github.com/seqsense/pcgol/pc/filter/voxelgrid"

	"github.com/seqsense/pcdbeamdrop/filter"
	"github.com/seqsense/pcdbeamdrop/filter/beamdrop"
	"github.com/seqsense/pcdbeamdrop/filter/passthrough"
)

const (
	NameDropLidarBeams         = "drop_lidar_beams"
	NameMaskPointsOutsideRange = "mask_points_outside_range"
	NameVoxelGrid              = "voxel_grid"
)

var ErrUnknownProcessor = errors.New("unknown processor")

type builder func(ProcessorConfig, beamdrop.Host, zerolog.Logger) (filter.Filter, error)

var builders = map[string]builder{
	NameDropLidarBeams:         buildDropLidarBeams,
	"DropLidarBeams":           buildDropLidarBeams,
	NameMaskPointsOutsideRange: buildMaskPointsOutsideRange,
	NameVoxelGrid:              buildVoxelGrid,
}

func build(cfg ProcessorConfig, host beamdrop.Host, log zerolog.Logger) (Processor, error) {
	b, ok := builders[cfg.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProcessor, cfg.Name)
	}
	f, err := b(cfg, host, log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Name, err)
	}
	return NewFilterProcessor(cfg.Name, f), nil
}

func buildDropLidarBeams(cfg ProcessorConfig, host beamdrop.Host, log zerolog.Logger) (filter.Filter, error) {
	f := beamdrop.New(cfg.BeamDropOptions(), host)
	opts := f.Options()
	if !opts.DropPattern.Known() {
		log.Warn().
			Str("drop_pattern", string(opts.DropPattern)).
			Msg("unknown drop pattern, all points will be kept")
	}
	if opts.DropRatio > 0 && opts.DropRatio != beamdrop.DefaultDropRatio {
		log.Warn().
			Float64("drop_ratio", opts.DropRatio).
			Msg("drop ratio only enables the filter, half of the rings are dropped")
	}
	return f, nil
}

func buildMaskPointsOutsideRange(cfg ProcessorConfig, host beamdrop.Host, _ zerolog.Logger) (filter.Filter, error) {
	r := passthrough.FromRange(host.PointCloudRange)
	if cfg.PointCloudRange != nil {
		r = passthrough.Intersection(r, passthrough.FromRange(*cfg.PointCloudRange))
	}
	if !r.IsValid() {
		return nil, errors.New("empty point cloud range")
	}
	return passthrough.New([6]float32{
		r.Min[0], r.Min[1], r.Min[2],
		r.Max[0], r.Max[1], r.Max[2],
	}), nil
}

func buildVoxelGrid(cfg ProcessorConfig, _ beamdrop.Host, _ zerolog.Logger) (filter.Filter, error) {
	var leaf mat.Vec3
	switch len(cfg.VoxelSize) {
	case 1:
		leaf = mat.Vec3{cfg.VoxelSize[0], cfg.VoxelSize[0], cfg.VoxelSize[0]}
	case 3:
		leaf = mat.Vec3{cfg.VoxelSize[0], cfg.VoxelSize[1], cfg.VoxelSize[2]}
	default:
		return nil, fmt.Errorf("VOXEL_SIZE must have 1 or 3 elements, got %d", len(cfg.VoxelSize))
	}
	for _, l := range leaf {
		if l <= 0 {
			return nil, errors.New("VOXEL_SIZE must be positive")
		}
	}
	vg := voxelgrid.New(leaf)
	return filter.Func(func(pp *pc.PointCloud) (*pc.PointCloud, error) {
		if pp == nil || pp.Points == 0 {
			return pp, nil
		}
		return vg.Filter(pp)
	}), nil
}
