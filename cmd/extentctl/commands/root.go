// Package commands implements the CLI commands for extentctl, the local
// demonstration client for the extentvol extent-map core.
package commands

import (
	"os"

	"github.com/spf13/cobra"
)

// Version information injected at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Flags holds the global flags shared by every subcommand, synced from
// rootCmd's persistent flags in PersistentPreRun.
var Flags struct {
	ConfigPath string
	Output     string
	NoColor    bool
	Verbose    bool
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "extentctl",
	Short: "extentvol extent-map demonstration client",
	Long: `extentctl drives the extentvol extent-map core interactively.

It wires a pkg/extentmap.SliceTable against the in-memory reference
volume.Allocator and volume.Store and exercises divide-for-write,
divide-for-read, merge, and mark-written against them, so the four
primitives can be inspected from the command line without embedding them
in a full filesystem client.

Use "extentctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		Flags.ConfigPath, _ = cmd.Flags().GetString("config")
		Flags.Output, _ = cmd.Flags().GetString("output")
		Flags.NoColor, _ = cmd.Flags().GetBool("no-color")
		Flags.Verbose, _ = cmd.Flags().GetBool("verbose")
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: $XDG_CONFIG_HOME/extentvol/extentvol.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format (table|json|yaml)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose (debug) logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(completionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// Exit prints an error and exits with code 1.
func Exit(format string, args ...any) {
	PrintErr(format, args...)
	os.Exit(1)
}
