package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/seqsense/pcdbeamdrop/filter/beamdrop"
)

// Config describes the data processors applied to every sample.
type Config struct {
	PointCloudRange  [6]float32        `yaml:"POINT_CLOUD_RANGE" toml:"POINT_CLOUD_RANGE"`
	NumPointFeatures int               `yaml:"NUM_POINT_FEATURES" toml:"NUM_POINT_FEATURES"`
	Training         bool              `yaml:"TRAINING" toml:"TRAINING"`
	DataProcessor    []ProcessorConfig `yaml:"DATA_PROCESSOR" toml:"DATA_PROCESSOR"`
}

// ProcessorConfig holds the options of one processor.
// Pointer fields are nil when omitted.
type ProcessorConfig struct {
	Name string `yaml:"NAME" toml:"NAME"`

	// drop_lidar_beams
	NumAssumedRings *int     `yaml:"NUM_ASSUMED_RINGS,omitempty" toml:"NUM_ASSUMED_RINGS,omitempty"`
	DropRatio       *float64 `yaml:"DROP_RATIO,omitempty" toml:"DROP_RATIO,omitempty"`
	DropPattern     *string  `yaml:"DROP_PATTERN,omitempty" toml:"DROP_PATTERN,omitempty"`

	// mask_points_outside_range
	PointCloudRange *[6]float32 `yaml:"POINT_CLOUD_RANGE,omitempty" toml:"POINT_CLOUD_RANGE,omitempty"`

	// voxel_grid
	VoxelSize []float32 `yaml:"VOXEL_SIZE,omitempty" toml:"VOXEL_SIZE,omitempty"`
}

// BeamDropOptions returns the beam drop options with defaults applied to
// omitted values.
func (c ProcessorConfig) BeamDropOptions() beamdrop.Options {
	opts := beamdrop.DefaultOptions()
	if c.NumAssumedRings != nil {
		opts.NumAssumedRings = *c.NumAssumedRings
	}
	if c.DropRatio != nil {
		opts.DropRatio = *c.DropRatio
	}
	if c.DropPattern != nil {
		opts.DropPattern = beamdrop.Pattern(*c.DropPattern)
	}
	return opts
}

// Host returns the pipeline context passed to the processors.
func (c Config) Host() beamdrop.Host {
	return beamdrop.Host{
		PointCloudRange:  c.PointCloudRange,
		Training:         c.Training,
		NumPointFeatures: c.NumPointFeatures,
	}
}

// Format of the configuration file.
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
)

// FormatOf guesses the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return 0, fmt.Errorf("unknown config format: %q", path)
	}
}

func DecodeConfig(r io.Reader, format Format) (Config, error) {
	var cfg Config
	b, err := io.ReadAll(r)
	if err != nil {
		return cfg, err
	}
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && err != io.EOF {
			return cfg, err
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unknown config format: %d", format)
	}
	return cfg, nil
}

// LoadConfig reads a YAML or TOML configuration file.
func LoadConfig(path string) (Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Config{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	return DecodeConfig(f, format)
}
