package main

import (
	"github.com/aretw0/augtree/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [command...]",
	Short: "Run a block of commands",
	Long: `Runs a command block and saves the tree once every command succeeded.
Each argument is one line of the block. Use --file to read the block from a
file ("-" for stdin), or --repo and --playbook to run a stored playbook.`,
	Example: `  augtree run 'set /files/etc/hosts/01/ipaddr 192.168.0.1' 'set /files/etc/hosts/01/canonical pigiron'
  augtree run --file changes.aug
  augtree run --repo ./playbooks --playbook hosts`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, _, _, err := newStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		file, _ := cmd.Flags().GetString("file")
		repo, _ := cmd.Flags().GetString("repo")
		playbook, _ := cmd.Flags().GetString("playbook")
		jsonMode, _ := cmd.Flags().GetBool("json")

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		return cli.Run(sigCtx, stack.Engine, cli.RunOptions{
			Args:     args,
			File:     file,
			Repo:     repo,
			Playbook: playbook,
			JSON:     jsonMode,
			Stdin:    cmd.InOrStdin(),
			Stdout:   cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("file", "f", "", "Read the command block from a file (- for stdin)")
	runCmd.Flags().String("repo", ".", "Directory holding playbooks")
	runCmd.Flags().String("playbook", "", "Run the named playbook from --repo")
	runCmd.Flags().Bool("json", false, "Print the result as JSON")
}
