package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/seqsense/pcgol/pc"
	"gonum.org/v1/gonum/floats"

	"github.com/seqsense/pcdbeamdrop/filter/beamdrop"
	"github.com/seqsense/pcdbeamdrop/internal/pcdio"
	"github.com/seqsense/pcdbeamdrop/pipeline"
)

// processFile applies the pipeline to the point cloud file in and writes
// the result to out.
func processFile(ctx context.Context, p *pipeline.Pipeline, in, out string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	pp, err := pcdio.ReadFile(in)
	if err != nil {
		return fmt.Errorf("read %s: %w", in, err)
	}
	s, err := p.Process(pipeline.Sample{
		pipeline.KeyPoints: pp,
		"frame_id":         strings.TrimSuffix(filepath.Base(in), filepath.Ext(in)),
	})
	if err != nil {
		return fmt.Errorf("process %s: %w", in, err)
	}
	ppOut, ok, err := s.Points()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("process %s: no points left", in)
	}
	if err := pcdio.WriteFile(out, ppOut); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	return nil
}

// writeRings prints the number of points on each estimated ring.
func writeRings(w io.Writer, pp *pc.PointCloud, numRings int) error {
	if numRings <= 0 {
		numRings = beamdrop.DefaultNumAssumedRings
	}
	ids, err := beamdrop.RingIDs(pp, numRings)
	if err != nil {
		return err
	}
	hist := beamdrop.Histogram(ids, numRings)
	for i, n := range hist {
		if _, err := fmt.Fprintf(w, "%d %d\n", i, int(n)); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "total %d\n", int(floats.Sum(hist)))
	return err
}
