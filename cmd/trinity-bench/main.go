// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/gorse-io/trinity/algebra"
	"github.com/gorse-io/trinity/bench"
	"github.com/gorse-io/trinity/cmd/version"
	"github.com/gorse-io/trinity/common/log"
	"github.com/gorse-io/trinity/config"
	"github.com/gorse-io/trinity/dataset"
	"github.com/gorse-io/trinity/engine"
	_ "github.com/gorse-io/trinity/engine/morpheus"
	"github.com/gorse-io/trinity/storage/results"
	"github.com/juju/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "trinity-bench <meta> <task> <iterations> <outputDir> <mode> [<override> <tr> <fr>]",
		Short: "Benchmark materialized against normalized matrices.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 5 && len(args) != 8 {
				return errors.NotValidf("%d arguments, expected 5 or 8", len(args))
			}
			return nil
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := parseOptions(args)
			if err != nil {
				return errors.Trace(err)
			}
			return run(cmd, func(driver *bench.Driver) (*bench.Outcome, error) {
				return driver.Run(opts)
			}, opts.OutputDir, opts.Selector == bench.SelectTest)
		},
	}
	flags := rootCmd.PersistentFlags()
	log.AddFlags(flags)
	flags.Bool("debug", false, "use debug log mode")
	flags.BoolP("quiet", "q", false, "hide progress bars and tables")
	flags.StringP("config", "c", "", "configuration file path")
	flags.String("results-db", "", "store timings in a database, e.g. sqlite://results.db")
	flags.Int64("seed", 0, "seed of the random generator, overrides the configuration")

	sweepCmd := &cobra.Command{
		Use:          "sweep <meta> <task> <outputDir>",
		Short:        "Run every mode for every ratio pair.",
		Args:         cobra.ExactArgs(3),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			modes, _ := cmd.Flags().GetStringSlice("modes")
			trs, _ := cmd.Flags().GetFloat64Slice("trs")
			frs, _ := cmd.Flags().GetFloat64Slice("frs")
			opts := bench.Options{MetaPath: args[0], Selector: args[1], OutputDir: args[2]}
			return run(cmd, func(driver *bench.Driver) (*bench.Outcome, error) {
				return driver.Sweep(opts, modes, trs, frs)
			}, opts.OutputDir, opts.Selector == bench.SelectTest)
		},
	}
	sweepCmd.Flags().StringSlice("modes", []string{bench.ModeTrinity, bench.ModeMaterialized}, "representation modes")
	sweepCmd.Flags().Float64Slice("trs", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}, "tuple ratios")
	sweepCmd.Flags().Float64Slice("frs", []float64{1, 2, 3, 4, 5}, "feature ratios")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.BuildInfo())
		},
	}
	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of dataset metadata files.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := dataset.MetaSchema()
			if err != nil {
				return errors.Trace(err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return errors.Trace(err)
		},
	}
	rootCmd.AddCommand(sweepCmd, versionCmd, schemaCmd)
	return rootCmd
}

// parseOptions converts the positional arguments of the root command.
func parseOptions(args []string) (bench.Options, error) {
	opts := bench.Options{
		MetaPath:  args[0],
		Selector:  args[1],
		OutputDir: args[3],
		Mode:      args[4],
	}
	var err error
	if opts.Iterations, err = strconv.Atoi(args[2]); err != nil {
		return opts, errors.NewNotValid(err, "iterations")
	} else if opts.Iterations < 0 {
		return opts, errors.NotValidf("iterations %d", opts.Iterations)
	}
	if len(args) == 8 && args[5] == "T" {
		opts.Override = true
		if opts.TR, err = strconv.ParseFloat(args[6], 64); err != nil {
			return opts, errors.NewNotValid(err, "tuple ratio")
		}
		if opts.FR, err = strconv.ParseFloat(args[7], 64); err != nil {
			return opts, errors.NewNotValid(err, "feature ratio")
		}
	}
	return opts, nil
}

func run(cmd *cobra.Command, f func(*bench.Driver) (*bench.Outcome, error), outputDir string, testing bool) error {
	flags := cmd.Flags()
	debug, _ := flags.GetBool("debug")
	log.SetLogger(flags, debug)

	configPath, _ := flags.GetString("config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return errors.Trace(err)
	}
	if flags.Changed("seed") {
		cfg.Generator.Seed, _ = flags.GetInt64("seed")
	}
	if resultsDB, _ := flags.GetString("results-db"); resultsDB != "" {
		cfg.Database.ResultsStore = resultsDB
	}
	e, err := engine.Open(cfg.Engine.Name)
	if err != nil {
		return errors.Trace(err)
	}
	var store results.Store
	if cfg.Database.ResultsStore != "" {
		if store, err = results.Open(cfg.Database.ResultsStore); err != nil {
			return errors.Trace(err)
		}
		defer store.Close()
		if err = store.Init(); err != nil {
			return errors.Trace(err)
		}
	}
	if !testing {
		if err = os.MkdirAll(outputDir, 0o755); err != nil {
			return errors.Trace(err)
		}
	}

	var out io.Writer = cmd.ErrOrStderr()
	if quiet, _ := flags.GetBool("quiet"); quiet {
		out = nil
	}
	outcome, err := f(bench.NewDriver(cfg, algebra.NewBackend(e), store, out))
	if err != nil {
		return errors.Trace(err)
	}
	if out != nil {
		return errors.Trace(outcome.Render(cmd.OutOrStdout()))
	}
	return nil
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Logger().Fatal("failed to run benchmark", zap.Error(err))
	}
}
