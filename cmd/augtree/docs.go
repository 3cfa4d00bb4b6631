package main

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/augtree/internal/cli"
	"github.com/spf13/cobra"
)

//go:embed docs/*.md
var docsFS embed.FS

var docsCmd = &cobra.Command{
	Use:   "docs [topic]",
	Short: "Show the command language reference",
	Long:  `Prints an embedded reference page. Without a topic, lists the available topics.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			topics, err := docTopics()
			if err != nil {
				return err
			}
			for _, t := range topics {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		}

		data, err := docsFS.ReadFile("docs/" + args[0] + ".md")
		if err != nil {
			return fmt.Errorf("unknown topic %q", args[0])
		}
		return cli.WriteDocs(cmd.OutOrStdout(), string(data))
	},
}

func docTopics() ([]string, error) {
	entries, err := docsFS.ReadDir("docs")
	if err != nil {
		return nil, err
	}
	topics := make([]string, 0, len(entries))
	for _, e := range entries {
		topics = append(topics, strings.TrimSuffix(e.Name(), ".md"))
	}
	sort.Strings(topics)
	return topics, nil
}

func init() {
	rootCmd.AddCommand(docsCmd)
}
