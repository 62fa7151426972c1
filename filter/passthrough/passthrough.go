package passthrough

import (
	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"

	"github.com/seqsense/pcdbeamdrop/filter"
)

// Rect is an axis aligned box.
type Rect struct {
	Min, Max mat.Vec3
}

// FromRange converts [xmin ymin zmin xmax ymax zmax] to Rect.
func FromRange(r [6]float32) Rect {
	return Rect{
		Min: mat.Vec3{r[0], r[1], r[2]},
		Max: mat.Vec3{r[3], r[4], r[5]},
	}
}

func Intersection(a, b Rect) Rect {
	return Rect{
		Min: mat.Vec3{
			float32Max(a.Min[0], b.Min[0]),
			float32Max(a.Min[1], b.Min[1]),
			float32Max(a.Min[2], b.Min[2]),
		},
		Max: mat.Vec3{
			float32Min(a.Max[0], b.Max[0]),
			float32Min(a.Max[1], b.Max[1]),
			float32Min(a.Max[2], b.Max[2]),
		},
	}
}

func (r Rect) IsValid() bool {
	return !(r.Min[0] > r.Max[0] ||
		r.Min[1] > r.Max[1] ||
		r.Min[2] > r.Max[2])
}

func (r Rect) IsInside(v mat.Vec3) bool {
	return !(v[0] < r.Min[0] ||
		v[1] < r.Min[1] ||
		v[2] < r.Min[2] ||
		r.Max[0] < v[0] ||
		r.Max[1] < v[1] ||
		r.Max[2] < v[2])
}

type passThrough struct {
	rect Rect
}

// New returns a filter keeping the points inside the range
// [xmin ymin zmin xmax ymax zmax].
func New(r [6]float32) filter.Filter {
	return &passThrough{rect: FromRange(r)}
}

func (f *passThrough) Filter(pp *pc.PointCloud) (*pc.PointCloud, error) {
	if pp == nil {
		return nil, nil
	}
	return filter.PassThrough(pp, func(_ int, p mat.Vec3) bool {
		return f.rect.IsInside(p)
	})
}

func float32Min(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func float32Max(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
