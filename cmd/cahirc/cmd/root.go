package cmd

import (
	"context"
	"fmt"

	"github.com/Aelto/tw3-cahirc-language/internal/config"
	"github.com/Aelto/tw3-cahirc-language/internal/driver"
	"github.com/spf13/cobra"
)

// Version is set by build flags; it defaults to a development marker so a
// from-source build still prints something sensible for `cahirc version`.
var Version = "0.1.0-dev"

var rootCmd = &cobra.Command{
	Use:   "cahirc [directory]",
	Short: "Compile Dialect sources into Target",
	Long: `cahirc translates a project's Dialect (.wss) sources into plain Target
(.ws), expanding its preprocessor macros, generic specializations, lambda
captures, and for-in loops along the way.

It looks for a cahirc.toml in the given directory (the working directory
by default); the [package] table there names the source tree to compile
and the dist tree to write, and the [dependencies] table names any local
Dialect libraries the sources call into.`,
	Args:    cobra.MaximumNArgs(1),
	Version: Version,
	RunE:    runCompile,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "print per-file progress and the final summary line")
}

// Execute runs the root command; its error (if any) already carries enough
// context to print directly.
func Execute() error {
	return rootCmd.Execute()
}

func runCompile(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	proj, err := config.Load(dir)
	if err != nil {
		return err
	}

	var verbose bool
	if cmd != nil {
		verbose, _ = cmd.Flags().GetBool("verbose")
	}
	d := driver.New()
	d.Verbose = verbose
	if _, err := d.Compile(context.Background(), proj); err != nil {
		return fmt.Errorf("compile: %w", err)
	}
	return nil
}
