/*
PURPOSE:
  Defines the root Cobra command for the rorb-fews adapter.
  Handles global flags, config loading and logger setup.

REQUIREMENTS:
  User-specified:
  - FEWS General Adapter calls one command per step with the run info
    path as the only argument.
  - Settings can be overridden by flags for manual runs.

  Implementation-discovered:
  - The log file lives in the model folder, which is only known once the
    run info has been read.

ARCHITECTURE INTEGRATION:
  - Called by: cmd/rorb-fews/main.go
  - Calls: Child commands (pre, launch, post, run, inspect, templates)

ERROR HANDLING:
  - Returns error to main.go for exit code handling.

IMPLEMENTATION RULES:
  - Use `PersistentFlags()` for settings available to all subcommands;
    their names must match config.flagKeys.

RELATED FILES:
  - cmd/rorb-fews/main.go
  - internal/config/config.go
*/

package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/daryltucker/rorb-fews/internal/config"
	"github.com/daryltucker/rorb-fews/internal/engine"
	"github.com/daryltucker/rorb-fews/internal/output"
	"github.com/daryltucker/rorb-fews/internal/pi"
)

var (
	// cfgFile stores the path to the config file (if specified via flag)
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "rorb-fews",
		Short: "Delft-FEWS adapter for the RORB runoff routing model",
		Long: `Translates Delft-FEWS PI-XML exports into RORB input files and RORB results
back into PI-XML imports. Each step takes the run info file written by the
FEWS General Adapter.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute executes the root command. An interrupt cancels the running step.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./rorb-fews.yaml)")
	pf.String("catalog", "", "RORB element catalog (rorb_config.yaml)")
	pf.String("conventions", "", "FEWS conventions document (fews_config.yaml)")
	pf.String("mapping", "", "gate-ops and transfer file mapping (file_mapping.yaml)")
	pf.String("template-dir", "", "template folder (default is <model folder>/templates)")
	pf.Int("state-index", 0, "index of the inputTimeSeriesFile holding the initial state")
	pf.String("exe", "", "RORB executable when the run info has no rorb_exe property")
	pf.Duration("exe-timeout", 30*time.Minute, "maximum engine run time")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text, json")
	pf.String("log-file", "", "log file, relative to the model folder")
	pf.Bool("csv", false, "also export parsed records as CSV")
	pf.Bool("manifest", false, "append written files to a JSON Lines manifest")
	pf.String("report", "", "RORB report file name inside the model folder")
}

// loadConfig loads the layered configuration for cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(cfgFile, cmd.Flags())
}

// setup loads the config, configures logging for the run described by
// runInfoPath and returns an engine. The closer releases the log file.
func setup(cmd *cobra.Command, runInfoPath string) (*engine.Engine, io.Closer, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	runID := output.NewRunID()
	_, closer, err := output.Configure(output.LogOptions{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   logPath(cfg.LogFile, runInfoPath),
		Stderr: cmd.ErrOrStderr(),
		RunID:  runID,
	})
	if err != nil {
		return nil, nil, err
	}
	output.Logger.Debug("Loaded config", "file", cfg.File, "catalog", cfg.Catalog, "command", cmd.Name())
	return engine.New(cfg, runID), closer, nil
}

// logPath places a relative log file in the run's model folder, falling
// back to the run info's folder when the run info cannot be read yet.
func logPath(file, runInfoPath string) string {
	if file == "" || filepath.IsAbs(file) {
		return file
	}
	dir := filepath.Dir(runInfoPath)
	if run, err := pi.ReadRunInfoFile(runInfoPath, time.UTC); err == nil {
		if folder, ok := run.Property(pi.PropModelFolder); ok {
			dir = folder
		} else if run.WorkDir != "" {
			dir = run.WorkDir
		}
	}
	return filepath.Join(dir, file)
}
