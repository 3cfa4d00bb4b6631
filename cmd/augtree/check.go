package main

import (
	"github.com/aretw0/augtree/internal/cli"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [command...]",
	Short: "Parse a block of commands without running it",
	Long:  `Parses a command block and prints it in canonical form, or the first parse error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		block, err := cli.ReadBlock(cli.RunOptions{Args: args, File: file, Stdin: cmd.InOrStdin()})
		if err != nil {
			return err
		}
		return cli.Check(block, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringP("file", "f", "", "Read the command block from a file (- for stdin)")
}
