/*
PURPOSE:
  Defines the step subcommands FEWS calls: pre, launch, post, and run
  which chains all three.

REQUIREMENTS:
  User-specified:
  - Each step takes the run info path as its single argument.
  - A failed step exits non-zero so FEWS marks the run failed.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine (Pre, Launch, Post)
  - Uses: internal/config via setup()

ERROR HANDLING:
  - Returns the engine error unchanged; main prints it.

USAGE:
  rorb-fews pre  run_info.xml
  rorb-fews post run_info.xml
*/

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daryltucker/rorb-fews/internal/output"
)

var dryRun bool

var preCmd = &cobra.Command{
	Use:   "pre <run_info.xml>",
	Short: "Render RORB input files from FEWS exports",
	Long: `Reads the parameter, state and series exports named by the run info,
compiles them against the catalog and renders every RORB input file plus
the launch script into the model folder. Nothing is written unless every
file rendered.`,
	Example: `  # Forward step as called by the General Adapter
  rorb-fews pre D:\FEWS\Modules\RORB\run_info.xml

  # Check the exports without touching the model folder
  rorb-fews pre --dry-run run_info.xml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, closer, err := setup(cmd, args[0])
		if err != nil {
			return err
		}
		defer closer.Close()

		res, err := e.Pre(cmd.Context(), args[0], dryRun)
		if err != nil {
			return err
		}
		if dryRun {
			for _, p := range res.Paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
		}
		return nil
	},
}

var launchCmd = &cobra.Command{
	Use:   "launch <run_info.xml>",
	Short: "Run the RORB engine on the rendered files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, closer, err := setup(cmd, args[0])
		if err != nil {
			return err
		}
		defer closer.Close()
		return e.Launch(cmd.Context(), args[0])
	},
}

var postCmd = &cobra.Command{
	Use:   "post <run_info.xml>",
	Short: "Convert RORB results into FEWS PI-XML imports",
	Long: `Parses the RORB report and the gate-operation CSV traces and writes the
gauge flow, reservoir operation and rainfall excess series to the
outputTimeSeriesFile entries of the run info, in that order.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, closer, err := setup(cmd, args[0])
		if err != nil {
			return err
		}
		defer closer.Close()

		_, err = e.Post(cmd.Context(), args[0])
		return err
	},
}

var runCmd = &cobra.Command{
	Use:   "run <run_info.xml>",
	Short: "Run pre, launch and post in sequence",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, closer, err := setup(cmd, args[0])
		if err != nil {
			return err
		}
		defer closer.Close()

		ctx := cmd.Context()
		if _, err := e.Pre(ctx, args[0], false); err != nil {
			return err
		}
		if err := e.Launch(ctx, args[0]); err != nil {
			return err
		}
		res, err := e.Post(ctx, args[0])
		if err != nil {
			return err
		}
		output.Logger.Info("Run complete", "records", len(res.Records))
		return nil
	},
}

func init() {
	preCmd.Flags().BoolVar(&dryRun, "dry-run", false, "render in memory and list the files without writing")
	rootCmd.AddCommand(preCmd, launchCmd, postCmd, runCmd)
}
