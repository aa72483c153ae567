package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// docsCmd writes Markdown documentation for every command
var docsCmd = &cobra.Command{
	Use:    "docs",
	Short:  "Generate Markdown documentation for the CLI",
	Hidden: true,
	Run: func(cmd *cobra.Command, args []string) {
		dir, _ := cmd.Flags().GetString("dir")
		if err := doc.GenMarkdownTree(rootCmd, dir); err != nil {
			log.Fatalf("failed to generate docs: %v", err)
		}
	},
}

func init() {
	docsCmd.Flags().String("dir", "./docs", "directory to write Markdown files to")

	rootCmd.AddCommand(docsCmd)
}
