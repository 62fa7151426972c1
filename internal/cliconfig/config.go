package cliconfig

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/seqsense/pcdbeamdrop/filter/beamdrop"
	"github.com/seqsense/pcdbeamdrop/pipeline"
)

const envPrefix = "PCDBEAMDROP_"

// Config holds CLI configuration for pcdbeamdrop.
type Config struct {
	ConfigPath string
	Output     string
	OutDir     string
	LogLevel   string
	Debounce   time.Duration

	NumAssumedRings int
	DropRatio       float64
	DropPattern     string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		LogLevel:        "info",
		Debounce:        200 * time.Millisecond,
		NumAssumedRings: beamdrop.DefaultNumAssumedRings,
		DropRatio:       beamdrop.DefaultDropRatio,
		DropPattern:     string(beamdrop.DefaultDropPattern),
	}
}

// Overrides are beam drop options given by environment variables or flags.
// They are applied to every drop_lidar_beams processor.
type Overrides struct {
	NumAssumedRings *int
	DropRatio       *float64
	DropPattern     *string
}

// ApplyEnvConfig applies PCDBEAMDROP_* environment variables.
// Values of explicitly changed flags are kept.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" && !changed["log-level"] {
		cfg.LogLevel = v
	}
	if v := os.Getenv(envPrefix + "NUM_ASSUMED_RINGS"); v != "" && !changed["num-assumed-rings"] {
		i, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %sNUM_ASSUMED_RINGS: %w", envPrefix, err)
		}
		cfg.NumAssumedRings = i
		changed["num-assumed-rings"] = true
	}
	if v := os.Getenv(envPrefix + "DROP_RATIO"); v != "" && !changed["drop-ratio"] {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse %sDROP_RATIO: %w", envPrefix, err)
		}
		cfg.DropRatio = f
		changed["drop-ratio"] = true
	}
	if v := os.Getenv(envPrefix + "DROP_PATTERN"); v != "" && !changed["drop-pattern"] {
		cfg.DropPattern = v
		changed["drop-pattern"] = true
	}
	return nil
}

// OverridesFrom collects the beam drop options set by flags or environment
// variables. changed must contain the names of the set flags.
func OverridesFrom(cfg Config, changed map[string]bool) Overrides {
	var o Overrides
	if changed["num-assumed-rings"] {
		v := cfg.NumAssumedRings
		o.NumAssumedRings = &v
	}
	if changed["drop-ratio"] {
		v := cfg.DropRatio
		o.DropRatio = &v
	}
	if changed["drop-pattern"] {
		v := cfg.DropPattern
		o.DropPattern = &v
	}
	return o
}

// PipelineConfig loads the pipeline configuration file and applies the
// overrides. Without a file, the pipeline drops beams only.
func PipelineConfig(cfg Config, o Overrides) (pipeline.Config, error) {
	pcfg := pipeline.Config{
		DataProcessor: []pipeline.ProcessorConfig{
			{Name: pipeline.NameDropLidarBeams},
		},
	}
	if cfg.ConfigPath != "" {
		var err error
		if pcfg, err = pipeline.LoadConfig(cfg.ConfigPath); err != nil {
			return pcfg, fmt.Errorf("load config: %w", err)
		}
	}
	for i := range pcfg.DataProcessor {
		p := &pcfg.DataProcessor[i]
		if p.Name != pipeline.NameDropLidarBeams && p.Name != "DropLidarBeams" {
			continue
		}
		if o.NumAssumedRings != nil {
			p.NumAssumedRings = o.NumAssumedRings
		}
		if o.DropRatio != nil {
			p.DropRatio = o.DropRatio
		}
		if o.DropPattern != nil {
			p.DropPattern = o.DropPattern
		}
	}
	return pcfg, nil
}
