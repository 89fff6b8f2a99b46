// Package cmd provides the command-line interface of vtester.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vtester",
	Short: "vtester runs clock scenarios on a virtual semiconductor tester.",
	Long: `vtester runs clock scenarios on a virtual semiconductor tester. ` +
		`Scenarios are YAML scripts of timeset and clock operations. Runs ` +
		`can be traced into a SQLite database and watched on a web monitor.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
