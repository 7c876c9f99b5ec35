package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/spm/pkg/pipeline"
)

// addCommand creates the add command.
func (c *CLI) addCommand() *cobra.Command {
	var prerelease bool

	cmd := &cobra.Command{
		Use:   "add <reference> [artifact...]",
		Short: "Add an extension to spm.toml and install it",
		Long: `Add resolves a package reference, records it in spm.toml, regenerates
spm.lock and installs every extension.

A reference names a GitHub repository that publishes spm.json with its
releases, in any of these forms:

  gh:asg017/sqlite-vec@v0.1.0
  github.com/asg017/sqlite-vec
  https://github.com/asg017/sqlite-vec

Without a version the latest release is used (--prerelease includes
prereleases). Artifact names restrict extraction to the listed libraries,
named without their file extension.`,
		Example: `  spm add gh:asg017/sqlite-vec
  spm add gh:asg017/sqlite-lines@v0.2.0 lines0
  spm add github.com/asg017/sqlite-http --prerelease`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.project()
			if err != nil {
				return err
			}
			runner, closeFn, err := c.newRunner(cmd.Context(), pipeline.Options{})
			if err != nil {
				return err
			}
			defer closeFn()

			prog := newProgress(c.Logger)
			spinner := newSpinnerWithContext(cmd.Context(), "Adding "+args[0]+"...")
			spinner.Start()
			res, err := runner.Add(cmd.Context(), p, args[0], args[1:], prerelease)
			spinner.Stop()
			if err != nil {
				return err
			}

			version := res.Resolution.Version
			if res.Resolution.Prerelease {
				version += " (prerelease)"
			}
			printSuccess("Added %s %s", StyleHighlight.Render(res.Key), version)
			printInstalled(res.Installed, prog)
			return nil
		},
	}

	cmd.Flags().BoolVar(&prerelease, "prerelease", false, "resolve to the latest release including prereleases")
	return cmd
}
