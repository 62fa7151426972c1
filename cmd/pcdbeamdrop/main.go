package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/seqsense/pcdbeamdrop/internal/cliconfig"
	"github.com/seqsense/pcdbeamdrop/internal/pcdio"
	"github.com/seqsense/pcdbeamdrop/internal/watch"
	"github.com/seqsense/pcdbeamdrop/pipeline"
)

var exampleUsage = strings.TrimSpace(`
  pcdbeamdrop apply scan.pcd -o scan_32.pcd
  pcdbeamdrop apply scan.pcd -o scan_32.pcd --config pipeline.yaml --drop-pattern odd
  pcdbeamdrop rings scan.pcd --num-assumed-rings 64
  pcdbeamdrop watch ./raw --out ./dropped --config pipeline.toml
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	log, _ := cliconfig.Logger(cfg.LogLevel)

	// setup resolves logger and pipeline after flags are parsed.
	setup := func(cmd *cobra.Command) (*pipeline.Pipeline, error) {
		changed := map[string]bool{}
		cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

		if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
			return nil, err
		}
		var err error
		if log, err = cliconfig.Logger(cfg.LogLevel); err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		pcfg, err := cliconfig.PipelineConfig(cfg, cliconfig.OverridesFrom(cfg, changed))
		if err != nil {
			return nil, err
		}
		log.Debug().Interface("config", pcfg).Msg("pipeline configuration")
		return pipeline.New(pcfg, log)
	}

	root := &cobra.Command{
		Use:           "pcdbeamdrop",
		Short:         "Drop alternate LiDAR rings from PCD point clouds",
		Long:          "Estimate the scan ring of every point from its elevation angle and drop every other ring to simulate a sensor with fewer beams.",
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfg.ConfigPath, "config", "", "pipeline config file (.yaml, .yml or .toml)")
	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	root.PersistentFlags().IntVar(&cfg.NumAssumedRings, "num-assumed-rings", cfg.NumAssumedRings, "number of rings the elevation range is split into")
	root.PersistentFlags().Float64Var(&cfg.DropRatio, "drop-ratio", cfg.DropRatio, "drop beams if positive, disable the filter otherwise")
	root.PersistentFlags().StringVar(&cfg.DropPattern, "drop-pattern", cfg.DropPattern, "rings to drop (even, odd)")

	apply := &cobra.Command{
		Use:   "apply INPUT",
		Short: "Apply the pipeline to a PCD file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Output == "" {
				return errors.New("--output is required")
			}
			p, err := setup(cmd)
			if err != nil {
				return err
			}
			if err := processFile(cmd.Context(), p, args[0], cfg.Output); err != nil {
				return err
			}
			log.Info().Str("file", args[0]).Str("out", cfg.Output).Msg("processed")
			return nil
		},
	}
	apply.Flags().StringVarP(&cfg.Output, "output", "o", "", "output PCD file")

	rings := &cobra.Command{
		Use:   "rings INPUT",
		Short: "Print the number of points on each estimated ring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := setup(cmd); err != nil {
				return err
			}
			pp, err := pcdio.ReadFile(args[0])
			if err != nil {
				return err
			}
			return writeRings(cmd.OutOrStdout(), pp, cfg.NumAssumedRings)
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch DIR",
		Short: "Process PCD files written to a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.OutDir == "" {
				return errors.New("--out is required")
			}
			in, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			out, err := filepath.Abs(cfg.OutDir)
			if err != nil {
				return err
			}
			if in == out {
				return errors.New("output directory must differ from the watched directory")
			}
			if err := os.MkdirAll(out, 0o755); err != nil {
				return err
			}
			p, err := setup(cmd)
			if err != nil {
				return err
			}
			w := watch.New(in, out, cfg.Debounce, func(ctx context.Context, src, dst string) error {
				return processFile(ctx, p, src, dst)
			}, log)
			return w.Run(cmd.Context())
		},
	}
	watchCmd.Flags().StringVar(&cfg.OutDir, "out", "", "output directory")
	watchCmd.Flags().DurationVar(&cfg.Debounce, "debounce", cfg.Debounce, "delay after the last write before processing a file")

	root.AddCommand(apply, rings, watchCmd)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := root.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("pcdbeamdrop")
		cancel()
		os.Exit(1)
	}
}
