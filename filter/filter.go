package filter

import (
	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"
)

type Filter interface {
	Filter(*pc.PointCloud) (*pc.PointCloud, error)
}

// Func adapts a plain function to Filter.
type Func func(*pc.PointCloud) (*pc.PointCloud, error)

func (f Func) Filter(pp *pc.PointCloud) (*pc.PointCloud, error) {
	return f(pp)
}

// Chain applies the filters in order.
// A nil point cloud returned by any filter stops the chain.
type Chain []Filter

func (c Chain) Filter(pp *pc.PointCloud) (*pc.PointCloud, error) {
	for _, f := range c {
		if pp == nil {
			return nil, nil
		}
		var err error
		if pp, err = f.Filter(pp); err != nil {
			return nil, err
		}
	}
	return pp, nil
}

// PassThrough returns a new point cloud containing the points for which fn
// returns true. Relative order of the points is kept.
func PassThrough(pp *pc.PointCloud, fn func(int, mat.Vec3) bool) (*pc.PointCloud, error) {
	if pp.Points == 0 {
		return empty(pp), nil
	}
	it, err := pp.Vec3Iterator()
	if err != nil {
		return nil, err
	}
	return passThroughImpl(pp, func(i int) bool {
		return fn(i, it.Vec3At(i))
	}), nil
}

// ByMask returns a new point cloud containing the points whose keep flag is
// set. len(keep) must be equal to pp.Points.
func ByMask(pp *pc.PointCloud, keep []bool) (*pc.PointCloud, error) {
	if len(keep) != pp.Points {
		return nil, ErrMaskSize
	}
	if pp.Points == 0 {
		return empty(pp), nil
	}
	return passThroughImpl(pp, func(i int) bool {
		return keep[i]
	}), nil
}

func passThroughImpl(pp *pc.PointCloud, fn func(int) bool) *pc.PointCloud {
	pcNew := &pc.PointCloud{
		PointCloudHeader: pp.PointCloudHeader.Clone(),
		Data:             make([]byte, pp.Points*pp.Stride()),
		Points:           pp.Points,
	}

	// Copy contiguous runs of kept points at once.
	j := 0
	is, js, cnt := 0, 0, 0
	for i := 0; i < pp.Points; i++ {
		if !fn(i) {
			if cnt > 0 {
				pc.Copy(pcNew, js, pp, is, cnt)
				cnt = 0
			}
			continue
		}
		if cnt == 0 {
			is, js = i, j
		}
		j++
		cnt++
	}
	if cnt > 0 {
		pc.Copy(pcNew, js, pp, is, cnt)
	}

	pcNew.Points = j
	pcNew.Width = j
	pcNew.Height = 1
	pcNew.Data = pcNew.Data[: j*pcNew.Stride() : j*pcNew.Stride()]
	return pcNew
}

func empty(pp *pc.PointCloud) *pc.PointCloud {
	pcNew := &pc.PointCloud{
		PointCloudHeader: pp.PointCloudHeader.Clone(),
		Data:             []byte{},
	}
	pcNew.Width = 0
	pcNew.Height = 1
	return pcNew
}
