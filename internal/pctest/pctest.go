// Package pctest builds small point clouds for tests.
package pctest

import (
	"math"
	"testing"

	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"
)

// Header returns a header with x, y, z and a uint32 label channel.
func Header(n int) pc.PointCloudHeader {
	return pc.PointCloudHeader{
		Version: 0.7,
		Fields:  []string{"x", "y", "z", "label"},
		Size:    []int{4, 4, 4, 4},
		Type:    []string{"F", "F", "F", "U"},
		Count:   []int{1, 1, 1, 1},
		Width:   n,
		Height:  1,
	}
}

// New creates a point cloud with the given positions. Point i is labeled
// with labels[i], or with i when labels is nil.
func New(t *testing.T, vecs []mat.Vec3, labels []uint32) *pc.PointCloud {
	t.Helper()
	pp := &pc.PointCloud{
		PointCloudHeader: Header(len(vecs)),
		Points:           len(vecs),
	}
	pp.Data = make([]byte, len(vecs)*pp.Stride())
	if len(vecs) == 0 {
		return pp
	}

	it, err := pp.Vec3Iterator()
	if err != nil {
		t.Fatal(err)
	}
	lt, err := pp.Uint32Iterator("label")
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range vecs {
		it.SetVec3(v)
		if labels != nil {
			lt.SetUint32(labels[i])
		} else {
			lt.SetUint32(uint32(i))
		}
		it.Incr()
		lt.Incr()
	}
	return pp
}

// Elevated returns a point at the given range, azimuth and elevation
// (degrees).
func Elevated(r, azimuthDeg, elevationDeg float64) mat.Vec3 {
	az := azimuthDeg * math.Pi / 180
	el := elevationDeg * math.Pi / 180
	return mat.Vec3{
		float32(r * math.Cos(el) * math.Cos(az)),
		float32(r * math.Cos(el) * math.Sin(az)),
		float32(r * math.Sin(el)),
	}
}

// Vec3s returns the positions of all points.
func Vec3s(t *testing.T, pp *pc.PointCloud) []mat.Vec3 {
	t.Helper()
	if pp.Points == 0 {
		return nil
	}
	it, err := pp.Vec3Iterator()
	if err != nil {
		t.Fatal(err)
	}
	out := make([]mat.Vec3, 0, pp.Points)
	for i := 0; i < pp.Points; i++ {
		out = append(out, it.Vec3At(i))
	}
	return out
}

// Labels returns the label channel of all points.
func Labels(t *testing.T, pp *pc.PointCloud) []uint32 {
	t.Helper()
	if pp.Points == 0 {
		return nil
	}
	lt, err := pp.Uint32Iterator("label")
	if err != nil {
		t.Fatal(err)
	}
	out := make([]uint32, 0, pp.Points)
	for i := 0; i < pp.Points; i++ {
		out = append(out, lt.Uint32())
		lt.Incr()
	}
	return out
}
