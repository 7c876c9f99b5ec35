package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"mvdan.cc/sh/v3/syntax"

	"github.com/matzehuels/spm/pkg/pipeline"
)

// activateCommand creates the activate command.
func (c *CLI) activateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "activate",
		Short: "Print a shell command that puts installed extensions on the library path",
		Long: `activate prints an export line for the dynamic-library search path
(LD_LIBRARY_PATH, DYLD_LIBRARY_PATH or PATH) that appends the project's
preload directories and sqlite_extensions/ to the current value.

  eval "$(spm activate)"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.project()
			if err != nil {
				return err
			}
			name, value, err := c.localRunner().Environment(p)
			if err != nil {
				return err
			}
			line, err := exportLine(name, value)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
			return nil
		},
	}
}

// deactivateCommand creates the deactivate command.
func (c *CLI) deactivateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate",
		Short: "Print a shell command that unsets the library path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "unset %s\n", c.libraryPath.VariableName)
			return nil
		},
	}
}

// runCommand creates the run command.
func (c *CLI) runCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <program> [args...]",
		Short: "Run a program with installed extensions on the library path",
		Long: `run starts program with the library search path set as activate would
set it. Only the child's environment changes. spm exits with the
program's exit code.`,
		Example: `  spm run sqlite3 :memory: '.load vec0' 'select vec_version()'
  spm run python app.py`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.project()
			if err != nil {
				return err
			}
			code, err := c.localRunner().Run(cmd.Context(), p, args[0], args[1:], pipeline.Stdio{
				In:  os.Stdin,
				Out: cmd.OutOrStdout(),
				Err: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			if code != 0 {
				return &ExitError{Code: code}
			}
			return nil
		},
	}

	// Everything after the program name belongs to the program.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

// exportLine renders "export NAME=value" with value quoted for POSIX shells.
func exportLine(name, value string) (string, error) {
	quoted, err := syntax.Quote(value, syntax.LangPOSIX)
	if err != nil {
		return "", fmt.Errorf("cannot quote %s for the shell: %w", name, err)
	}
	return "export " + name + "=" + quoted, nil
}
