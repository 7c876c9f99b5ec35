package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spm/pkg/install"
	"github.com/matzehuels/spm/pkg/pipeline"
	"github.com/matzehuels/spm/pkg/platform"
)

// platformFlags holds the --os/--cpu overrides shared by install and ci.
type platformFlags struct {
	os  string
	cpu string
}

func (f *platformFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.os, "os", "", "install artifacts built for this OS (linux, darwin, windows)")
	cmd.Flags().StringVar(&f.cpu, "cpu", "", "install artifacts built for this CPU (x86_64, aarch64, ...)")
}

func (f *platformFlags) options() pipeline.Options {
	return pipeline.Options{Platform: platform.Override(f.os, f.cpu)}
}

// installCommand creates the install command.
func (c *CLI) installCommand() *cobra.Command {
	var pf platformFlags

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Regenerate spm.lock from spm.toml and install all extensions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInstall(cmd, pf.options(), false)
		},
	}
	pf.register(cmd)
	return cmd
}

// ciCommand creates the ci command.
func (c *CLI) ciCommand() *cobra.Command {
	var pf platformFlags

	cmd := &cobra.Command{
		Use:   "ci",
		Short: "Install exactly the extensions recorded in spm.lock",
		Long: `ci installs from the existing spm.lock without resolving versions or
regenerating the lockfile, so every machine gets byte-identical artifacts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInstall(cmd, pf.options(), true)
		},
	}
	pf.register(cmd)
	return cmd
}

func (c *CLI) runInstall(cmd *cobra.Command, opts pipeline.Options, fromLock bool) error {
	p, err := c.project()
	if err != nil {
		return err
	}
	runner, closeFn, err := c.newRunner(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer closeFn()

	c.Logger.Debug("installing", "project", p.Dir, "platform", runner.Installer.Platform())

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(cmd.Context(), "Installing extensions...")
	spinner.Start()
	var installed []install.Installed
	if fromLock {
		installed, err = runner.CleanInstall(cmd.Context(), p)
	} else {
		installed, err = runner.Install(cmd.Context(), p)
	}
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done("install finished")

	if len(installed) == 0 {
		printInfo("No extensions in %s", p.ManifestPath())
		return nil
	}
	printInstalled(installed, prog)
	return nil
}

// printInstalled lists installed extensions and their files.
func printInstalled(installed []install.Installed, prog *progress) {
	for _, in := range installed {
		printSuccess("%s %s", StyleHighlight.Render(in.Ref), in.Version)
		for _, f := range in.Files {
			printFile(f)
		}
		if len(in.Files) == 0 {
			printWarning("no files matched in %s", in.Asset)
		}
	}
	printDetail("%s in %s", plural(len(installed), "extension"), prog.elapsed())
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
