package filter

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"

	"github.com/seqsense/pcdbeamdrop/internal/pctest"
)

func TestByMask(t *testing.T) {
	vecs := []mat.Vec3{
		{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0}, {4, 0, 0}, {5, 0, 0},
	}

	testCases := map[string]struct {
		keep     []bool
		expected []uint32
	}{
		"All": {
			keep:     []bool{true, true, true, true, true, true},
			expected: []uint32{0, 1, 2, 3, 4, 5},
		},
		"None": {
			keep:     []bool{false, false, false, false, false, false},
			expected: nil,
		},
		"Runs": {
			keep:     []bool{true, true, false, true, true, false},
			expected: []uint32{0, 1, 3, 4},
		},
		"Tail": {
			keep:     []bool{false, false, false, false, true, true},
			expected: []uint32{4, 5},
		},
		"Alternate": {
			keep:     []bool{false, true, false, true, false, true},
			expected: []uint32{1, 3, 5},
		},
	}

	for name, tt := range testCases {
		tt := tt
		t.Run(name, func(t *testing.T) {
			pp := pctest.New(t, vecs, nil)
			out, err := ByMask(pp, tt.keep)
			if err != nil {
				t.Fatal(err)
			}
			if out.Points != len(tt.expected) {
				t.Fatalf("Expected %d points, got %d", len(tt.expected), out.Points)
			}
			if out.Width != out.Points || out.Height != 1 {
				t.Errorf("Expected unorganized %dx1 cloud, got %dx%d", out.Points, out.Width, out.Height)
			}
			if len(out.Data) != out.Points*out.Stride() {
				t.Errorf("Expected %d bytes of data, got %d", out.Points*out.Stride(), len(out.Data))
			}
			if diff := cmp.Diff(tt.expected, pctest.Labels(t, out)); diff != "" {
				t.Errorf("Labels differ (-want +got):\n%s", diff)
			}
			for i, v := range pctest.Vec3s(t, out) {
				if e := vecs[tt.expected[i]]; !e.Equal(v) {
					t.Errorf("Expected point %d: %v, got: %v", i, e, v)
				}
			}
		})
	}
}

func TestByMask_WrongSize(t *testing.T) {
	pp := pctest.New(t, []mat.Vec3{{1, 2, 3}}, nil)
	if _, err := ByMask(pp, []bool{true, false}); !errors.Is(err, ErrMaskSize) {
		t.Errorf("Expected ErrMaskSize, got %v", err)
	}
}

func TestPassThrough(t *testing.T) {
	pp := pctest.New(t, []mat.Vec3{
		{0, 0, -1}, {0, 0, 1}, {0, 0, 2}, {0, 0, -3},
	}, nil)

	out, err := PassThrough(pp, func(i int, p mat.Vec3) bool {
		return p[2] > 0
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]uint32{1, 2}, pctest.Labels(t, out)); diff != "" {
		t.Errorf("Labels differ (-want +got):\n%s", diff)
	}
	if pp.Points != 4 {
		t.Error("Input point cloud must not be modified")
	}
}

func TestPassThrough_Empty(t *testing.T) {
	pp := pctest.New(t, nil, nil)
	out, err := PassThrough(pp, func(int, mat.Vec3) bool { return true })
	if err != nil {
		t.Fatal(err)
	}
	if out.Points != 0 {
		t.Errorf("Expected no points, got %d", out.Points)
	}
	if diff := cmp.Diff(pp.Fields, out.Fields); diff != "" {
		t.Errorf("Fields differ (-want +got):\n%s", diff)
	}
}

func TestChain(t *testing.T) {
	pp := pctest.New(t, []mat.Vec3{
		{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0},
	}, nil)

	dropFirst := Func(func(pp *pc.PointCloud) (*pc.PointCloud, error) {
		keep := make([]bool, pp.Points)
		for i := 1; i < len(keep); i++ {
			keep[i] = true
		}
		return ByMask(pp, keep)
	})

	t.Run("Order", func(t *testing.T) {
		out, err := Chain{dropFirst, dropFirst}.Filter(pp)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]uint32{2, 3}, pctest.Labels(t, out)); diff != "" {
			t.Errorf("Labels differ (-want +got):\n%s", diff)
		}
	})
	t.Run("NilStops", func(t *testing.T) {
		called := false
		out, err := Chain{
			Func(func(*pc.PointCloud) (*pc.PointCloud, error) { return nil, nil }),
			Func(func(pp *pc.PointCloud) (*pc.PointCloud, error) {
				called = true
				return pp, nil
			}),
		}.Filter(pp)
		if err != nil {
			t.Fatal(err)
		}
		if out != nil || called {
			t.Error("Chain must stop on nil point cloud")
		}
	})
	t.Run("Error", func(t *testing.T) {
		errDummy := errors.New("dummy")
		_, err := Chain{
			Func(func(*pc.PointCloud) (*pc.PointCloud, error) { return nil, errDummy }),
		}.Filter(pp)
		if !errors.Is(err, errDummy) {
			t.Errorf("Expected %v, got %v", errDummy, err)
		}
	})
}
