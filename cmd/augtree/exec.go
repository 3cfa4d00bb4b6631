package main

import (
	"github.com/aretw0/augtree/internal/cli"
	"github.com/spf13/cobra"
)

// execFields are the flags forwarded to the host argument dictionary when set.
var execFields = []string{"path", "value", "label", "where", "lens", "file", "filter"}

var execCmd = &cobra.Command{
	Use:   "exec <command>",
	Short: "Run a single command given as named fields",
	Long: `Runs one command whose parameters are passed as flags, the way an
automation host calls augtree. The JSON response holds the bare result.`,
	Example: `  augtree exec set --path /files/etc/hosts/01/ipaddr --value 192.168.0.1
  augtree exec lensmatch --lens Hosts --file /etc/hosts --path '*/canonical'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, _, _, err := newStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		raw := map[string]any{"command": args[0]}
		for _, name := range execFields {
			if cmd.Flags().Changed(name) {
				raw[name], _ = cmd.Flags().GetString(name)
			}
		}
		return cli.Invoke(cmd.Context(), stack.Engine.Host(), raw, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(execCmd)

	execCmd.Flags().String("path", "", "Tree path the command operates on")
	execCmd.Flags().String("value", "", "Value for set")
	execCmd.Flags().String("label", "", "Label of the node created by ins")
	execCmd.Flags().String("where", "", "Placement for ins: before or after (default before)")
	execCmd.Flags().String("lens", "", "Lens for lensmatch and transform")
	execCmd.Flags().String("file", "", "File for lensmatch and transform")
	execCmd.Flags().String("filter", "", "incl or excl for transform")
}
