// Command pxrun runs sensor scenarios on the pxros executor, backed by a
// simulated kernel.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:          "pxrun",
	Short:        "Run pxasync task scenarios on a simulated kernel",
	SilenceUsage: true,
}

func main() {
	rootCmd.Version = version

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text|json)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
