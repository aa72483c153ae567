package cmd

import (
	"github.com/aaronmussig/sarand/internal/sarand"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// graphCmd loads and validates an assembly graph without extracting
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Validate an assembly graph and report its size",
	PreRun: func(cmd *cobra.Command, args []string) {
		viper.BindPFlag("gfa", cmd.Flags().Lookup("gfa"))
	},
	Run:                        sarand.GraphCmd,
	SuggestionsMinimumDistance: 2,
	Long: `Load an assembly graph from a GFA file, checking that every link references
a known segment, and report the number of segments and links.`,
}

// set flags
func init() {
	graphCmd.Flags().StringP("gfa", "g", "", "path to the assembly graph (GFA)")
	graphCmd.MarkFlagRequired("gfa")

	rootCmd.AddCommand(graphCmd)
}
