// Package pipeline applies a configured list of point cloud processors to
// samples. A sample is a mapping of named entries; processors built from
// filters only touch the "points" entry.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/seqsense/pcgol/pc"

	"github.com/seqsense/pcdbeamdrop/filter"
)

// KeyPoints is the sample entry holding the *pc.PointCloud.
const KeyPoints = "points"

var ErrPointsType = errors.New("points entry is not a point cloud")

type Sample map[string]interface{}

// Points returns the point cloud of the sample.
// ok is false if the entry is missing or nil.
func (s Sample) Points() (pp *pc.PointCloud, ok bool, err error) {
	v, found := s[KeyPoints]
	if !found || v == nil {
		return nil, false, nil
	}
	pp, isPC := v.(*pc.PointCloud)
	if !isPC {
		return nil, false, fmt.Errorf("%w: %T", ErrPointsType, v)
	}
	if pp == nil {
		return nil, false, nil
	}
	return pp, true, nil
}

type Processor interface {
	Name() string
	Process(Sample) (Sample, error)
}

type filterProcessor struct {
	name string
	f    filter.Filter
}

// NewFilterProcessor wraps a filter as a processor replacing the points
// entry. Samples without points are returned unchanged.
func NewFilterProcessor(name string, f filter.Filter) Processor {
	return &filterProcessor{name: name, f: f}
}

func (p *filterProcessor) Name() string {
	return p.name
}

func (p *filterProcessor) Process(s Sample) (Sample, error) {
	pp, ok, err := s.Points()
	if err != nil {
		return nil, err
	}
	if !ok {
		return s, nil
	}
	out, err := p.f.Filter(pp)
	if err != nil {
		return nil, err
	}
	s[KeyPoints] = out
	return s, nil
}

type Pipeline struct {
	processors []Processor
	log        zerolog.Logger
}

// New builds the processors listed in the configuration.
func New(cfg Config, log zerolog.Logger) (*Pipeline, error) {
	p := &Pipeline{log: log}
	host := cfg.Host()
	for i, pcfg := range cfg.DataProcessor {
		proc, err := build(pcfg, host, log)
		if err != nil {
			return nil, fmt.Errorf("DATA_PROCESSOR[%d]: %w", i, err)
		}
		p.processors = append(p.processors, proc)
	}
	return p, nil
}

// NewWithProcessors creates a pipeline from already built processors.
func NewWithProcessors(log zerolog.Logger, processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors, log: log}
}

func (p *Pipeline) Processors() []Processor {
	return p.processors
}

// Process applies all processors in order.
func (p *Pipeline) Process(s Sample) (Sample, error) {
	for _, proc := range p.processors {
		before := countPoints(s)
		var err error
		if s, err = proc.Process(s); err != nil {
			return nil, fmt.Errorf("%s: %w", proc.Name(), err)
		}
		p.log.Debug().
			Str("processor", proc.Name()).
			Int("points_in", before).
			Int("points_out", countPoints(s)).
			Msg("processed")
	}
	return s, nil
}

func countPoints(s Sample) int {
	pp, ok, _ := s.Points()
	if !ok {
		return -1
	}
	return pp.Points
}
