package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/spm/pkg/manifest"
	"github.com/matzehuels/spm/pkg/pipeline"
)

// initCommand creates the init command.
func (c *CLI) initCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create spm.toml and the sqlite_extensions directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.project()
			if err != nil {
				return err
			}

			res, err := c.localRunner().Init(p)
			if err != nil {
				return err
			}

			if res.CreatedManifest {
				printSuccess("Created %s", manifest.Filename)
			} else {
				printInfo("%s already exists", manifest.Filename)
			}
			if res.CreatedExtensionsDir {
				printSuccess("Created %s/", pipeline.ExtensionsDirName)
			}
			printDetail("Project: %s", p.Dir)
			printNextStep("Add an extension", "spm add gh:<owner>/<repo>")
			return nil
		},
	}
}

// localRunner returns a runner for commands that never touch the network.
func (c *CLI) localRunner() *pipeline.Runner {
	return pipeline.NewRunner(nil, pipeline.Options{LibraryPath: c.libraryPath}, c.Logger)
}
