package main

import (
	"github.com/aretw0/augtree/internal/cli"
	"github.com/aretw0/augtree/pkg/adapters/loam"
	"github.com/spf13/cobra"
)

var playbooksCmd = &cobra.Command{
	Use:   "playbooks",
	Short: "List the playbooks stored in a repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, _ := cmd.Flags().GetString("repo")
		source, err := loam.Open(repo)
		if err != nil {
			return err
		}
		return cli.ListPlaybooks(cmd.Context(), source, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(playbooksCmd)

	playbooksCmd.Flags().String("repo", ".", "Directory holding playbooks")
}
