package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the version of vtester.
const Version = "0.7.41"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of vtester.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "vtester %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
