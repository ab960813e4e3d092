package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// set by -ldflags "-X github.com/annchain/settler/app/cmd.Version=..."
var (
	Version   = "dev"
	GitCommit = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "settler %s %s %s\n", Version, GitCommit, runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
