package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/catcare"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of catcare",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "catcare version %s\n", strings.TrimSpace(catcare.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
