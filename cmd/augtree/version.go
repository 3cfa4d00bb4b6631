package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/augtree"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of augtree",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "augtree version %s\n", strings.TrimSpace(augtree.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
