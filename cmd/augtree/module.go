package main

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/augtree/internal/cli"
	"github.com/spf13/cobra"
)

var moduleCmd = &cobra.Command{
	Use:   "module [args.json]",
	Short: "Run as a configuration-management module",
	Long: `Reads the argument dictionary as a JSON object from the given file (or
stdin) and prints {"changed", "result"} or {"failed", "msg"}. Exits 1 on failure.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, _, _, err := newStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		var in io.Reader = cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open module arguments: %w", err)
			}
			defer f.Close()
			in = f
		}
		return cli.Module(cmd.Context(), stack.Engine.Host(), in, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(moduleCmd)
}
