// Package beamdrop simulates a LiDAR with fewer beams by estimating the scan
// ring of every point from its elevation and dropping alternate rings.
//
// Rings are estimated per call: the elevation range of the given cloud is
// split into NumAssumedRings equal bins. No sensor calibration is used, so
// the same physical ring may be assigned different ids in different clouds.
package beamdrop

import (
	"math"

	"github.com/seqsense/pcgol/pc"
	"gonum.org/v1/gonum/floats"

	"github.com/seqsense/pcdbeamdrop/filter"
)

const (
	DefaultNumAssumedRings = 64
	DefaultDropRatio       = 0.5
	DefaultDropPattern     = PatternEven

	// epsilon keeps the highest point below NumAssumedRings and avoids zero
	// division on clouds with a single elevation.
	epsilon = 1e-6
)

type Pattern string

const (
	// PatternEven drops rings 0, 2, 4, ...
	PatternEven Pattern = "even"
	// PatternOdd drops rings 1, 3, 5, ...
	PatternOdd Pattern = "odd"
)

// Keep reports whether points on the ring should be kept.
// Unknown patterns keep all points.
func (p Pattern) Keep(ringID int) bool {
	switch p {
	case PatternEven:
		return ringID%2 != 0
	case PatternOdd:
		return ringID%2 == 0
	default:
		return true
	}
}

func (p Pattern) Known() bool {
	return p == PatternEven || p == PatternOdd
}

type Options struct {
	NumAssumedRings int
	// DropRatio only switches the filter on (> 0) or off (<= 0).
	// The drop fraction is fixed to a half by the even/odd pattern.
	DropRatio   float64
	DropPattern Pattern
}

func DefaultOptions() Options {
	return Options{
		NumAssumedRings: DefaultNumAssumedRings,
		DropRatio:       DefaultDropRatio,
		DropPattern:     DefaultDropPattern,
	}
}

// Host is the context given by the processing pipeline.
// It is kept for the pipeline and not used to drop beams.
type Host struct {
	PointCloudRange  [6]float32
	Training         bool
	NumPointFeatures int
}

type BeamDrop struct {
	opts Options
	host Host
}

var _ filter.Filter = (*BeamDrop)(nil)

// New creates a beam drop filter. Non-positive NumAssumedRings and empty
// DropPattern are replaced by the defaults.
func New(opts Options, host Host) *BeamDrop {
	if opts.NumAssumedRings <= 0 {
		opts.NumAssumedRings = DefaultNumAssumedRings
	}
	if opts.DropPattern == "" {
		opts.DropPattern = DefaultDropPattern
	}
	return &BeamDrop{
		opts: opts,
		host: host,
	}
}

func (f *BeamDrop) Options() Options {
	return f.opts
}

func (f *BeamDrop) Host() Host {
	return f.host
}

// Filter returns a new point cloud without the points on dropped rings.
// nil input and disabled filter return the input as is.
func (f *BeamDrop) Filter(pp *pc.PointCloud) (*pc.PointCloud, error) {
	if pp == nil {
		return nil, nil
	}
	if f.opts.DropRatio <= 0 {
		return pp, nil
	}

	ids, err := RingIDs(pp, f.opts.NumAssumedRings)
	if err != nil {
		return nil, err
	}
	keep := make([]bool, len(ids))
	for i, id := range ids {
		keep[i] = f.opts.DropPattern.Keep(id)
	}
	return filter.ByMask(pp, keep)
}

// RingIDs estimates the ring of each point by binning the elevation angle
// between the lowest and the highest point of the cloud into numRings bins.
func RingIDs(pp *pc.PointCloud, numRings int) ([]int, error) {
	if pp.Points == 0 {
		return []int{}, nil
	}
	angles, err := Elevations(pp)
	if err != nil {
		return nil, err
	}

	lo, hi := floats.Min(angles), floats.Max(angles)
	scale := float64(numRings) / (hi - lo + epsilon)

	ids := make([]int, len(angles))
	for i, a := range angles {
		id := int(math.Floor((a - lo) * scale))
		switch {
		case id < 0:
			id = 0
		case id > numRings-1:
			id = numRings - 1
		}
		ids[i] = id
	}
	return ids, nil
}

// Elevations returns the angle of each point above the sensor's
// horizontal plane in radians.
func Elevations(pp *pc.PointCloud) ([]float64, error) {
	if pp.Points == 0 {
		return []float64{}, nil
	}
	it, err := pp.Vec3Iterator()
	if err != nil {
		return nil, err
	}
	angles := make([]float64, pp.Points)
	for i := range angles {
		p := it.Vec3At(i)
		x, y, z := float64(p[0]), float64(p[1]), float64(p[2])
		angles[i] = math.Atan2(z, math.Sqrt(x*x+y*y))
	}
	return angles, nil
}

// Histogram counts the points on each of numRings rings.
func Histogram(ids []int, numRings int) []float64 {
	hist := make([]float64, numRings)
	for _, id := range ids {
		hist[id]++
	}
	return hist
}
