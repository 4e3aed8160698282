package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/basuapi/adaptergen/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show adaptergen version information",
		Long: `Display version information for adaptergen.

This command shows:
  • CLI version, git commit hash, and build timestamp
  • Go runtime version`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.GetFullVersionInfo())
		},
	}
}
