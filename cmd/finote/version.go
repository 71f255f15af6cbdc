package main

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/finote/internal/common"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of finote.",
		Run: func(cmd *cobra.Command, _ []string) {
			common.LoadVersionFromFile()
			cmd.Printf("finote CLI\n")
			cmd.Printf("  Version: %s\n", common.GetVersion())
			cmd.Printf("  Build:   %s\n", common.GetBuild())
			cmd.Printf("  Commit:  %s\n", common.GetGitCommit())
			cmd.Printf("  Runtime: %s\n", runtime.Version())
		},
	}
}
