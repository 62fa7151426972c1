package cliconfig

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/seqsense/pcdbeamdrop/pipeline"
)

func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }
func stringPtr(s string) *string  { return &s }

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		expected Overrides
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"PCDBEAMDROP_NUM_ASSUMED_RINGS": "32",
				"PCDBEAMDROP_DROP_RATIO":        "0",
				"PCDBEAMDROP_DROP_PATTERN":      "odd",
			},
			changed: map[string]bool{},
			expected: Overrides{
				NumAssumedRings: intPtr(32),
				DropRatio:       floatPtr(0),
				DropPattern:     stringPtr("odd"),
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"PCDBEAMDROP_DROP_PATTERN": "odd",
			},
			changed: map[string]bool{"drop-pattern": true},
			expected: Overrides{
				DropPattern: stringPtr("even"),
			},
		},
		{
			name:     "no env vars",
			changed:  map[string]bool{},
			expected: Overrides{},
		},
		{
			name: "invalid ring count",
			envVars: map[string]string{
				"PCDBEAMDROP_NUM_ASSUMED_RINGS": "many",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"NUM_ASSUMED_RINGS", "DROP_RATIO", "DROP_PATTERN", "LOG_LEVEL"} {
				t.Setenv(envPrefix+k, "")
			}
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}
			cfg := DefaultConfig()
			err := ApplyEnvConfig(&cfg, tt.changed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyEnvConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.expected, OverridesFrom(cfg, tt.changed)); diff != "" {
				t.Errorf("Overrides differ (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPipelineConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yaml")
	const yamlConfig = `
POINT_CLOUD_RANGE: [-75.2, -75.2, -2, 75.2, 75.2, 4]
DATA_PROCESSOR:
  - NAME: mask_points_outside_range
  - NAME: drop_lidar_beams
    NUM_ASSUMED_RINGS: 128
    DROP_PATTERN: odd
`
	if err := os.WriteFile(path, []byte(yamlConfig), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("NoFile", func(t *testing.T) {
		pcfg, err := PipelineConfig(DefaultConfig(), Overrides{DropRatio: floatPtr(0)})
		if err != nil {
			t.Fatal(err)
		}
		expected := []pipeline.ProcessorConfig{
			{Name: pipeline.NameDropLidarBeams, DropRatio: floatPtr(0)},
		}
		if diff := cmp.Diff(expected, pcfg.DataProcessor); diff != "" {
			t.Errorf("Processors differ (-want +got):\n%s", diff)
		}
	})
	t.Run("FileAndFlags", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ConfigPath = path
		pcfg, err := PipelineConfig(cfg, Overrides{NumAssumedRings: intPtr(32)})
		if err != nil {
			t.Fatal(err)
		}
		expected := []pipeline.ProcessorConfig{
			{Name: pipeline.NameMaskPointsOutsideRange},
			{
				Name:            pipeline.NameDropLidarBeams,
				NumAssumedRings: intPtr(32),
				DropPattern:     stringPtr("odd"),
			},
		}
		if diff := cmp.Diff(expected, pcfg.DataProcessor); diff != "" {
			t.Errorf("Processors differ (-want +got):\n%s", diff)
		}
	})
	t.Run("MissingFile", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ConfigPath = filepath.Join(dir, "missing.yaml")
		if _, err := PipelineConfig(cfg, Overrides{}); err == nil {
			t.Error("Expected error on missing config file")
		}
	})
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := newLogger(&buf, "warn")
	if err != nil {
		t.Fatal(err)
	}
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("Unexpected log output: %q", out)
	}

	if _, err := newLogger(&buf, "loud"); err == nil {
		t.Error("Expected error on unknown level")
	}
}
