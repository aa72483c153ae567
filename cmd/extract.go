package cmd

import (
	"github.com/aaronmussig/sarand/internal/sarand"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// extractCmd runs the full neighborhood extraction pipeline
var extractCmd = &cobra.Command{
	Use:                        "extract",
	Short:                      "Extract AMR gene neighborhoods from an assembly graph",
	PreRun:                     bindExtractFlags,
	Run:                        sarand.ExtractCmd,
	SuggestionsMinimumDistance: 2,
	Long: `Extract the linear sequence surrounding each AMR gene in an assembly graph.

Each qualifying alignment hit seeds an independent extraction: the graph is
walked upstream and downstream of the hit until the target neighborhood length
is reached, the path's node count hits its bound, or the graph dead-ends.
Every extracted sequence is written with its traversed node path, the AMR span
lowercased within the surrounding neighborhood sequence.`,
}

// bindExtractFlags binds this command's flags to viper. Bound at run
// time, not init, so sibling commands sharing a key don't clobber it.
func bindExtractFlags(cmd *cobra.Command, args []string) {
	viper.BindPFlag("gfa", cmd.Flags().Lookup("gfa"))
	viper.BindPFlag("alignments", cmd.Flags().Lookup("alignments"))
	viper.BindPFlag("out", cmd.Flags().Lookup("out"))
	viper.BindPFlag("db", cmd.Flags().Lookup("db"))
	viper.BindPFlag("seq-len", cmd.Flags().Lookup("seq-len"))
	viper.BindPFlag("node-threshold", cmd.Flags().Lookup("node-threshold"))
	viper.BindPFlag("percent-threshold", cmd.Flags().Lookup("percent-threshold"))
	viper.BindPFlag("min-identity", cmd.Flags().Lookup("min-identity"))
	viper.BindPFlag("min-coverage", cmd.Flags().Lookup("min-coverage"))
	viper.BindPFlag("cores", cmd.Flags().Lookup("cores"))
}

// set flags
func init() {
	extractCmd.Flags().StringP("gfa", "g", "", "path to the assembly graph (GFA)")
	extractCmd.Flags().StringP("alignments", "a", "", "path to the AMR alignment records (TSV)")
	extractCmd.Flags().StringP("out", "o", ".", "directory to write artifacts to")
	extractCmd.Flags().String("db", "", "sqlite file to record outcomes in")
	extractCmd.Flags().IntP("seq-len", "l", 1000, "target neighborhood length on each side of the gene")
	extractCmd.Flags().IntP("node-threshold", "n", 1000, "maximum number of nodes in an extension path")
	extractCmd.Flags().Float64P("percent-threshold", "p", 90, "percent of seq-len after which branching stops")
	extractCmd.Flags().Float64("min-identity", 0.95, "minimum alignment identity fraction for a seed")
	extractCmd.Flags().Float64("min-coverage", 0.95, "minimum alignment coverage fraction for a seed")
	extractCmd.Flags().IntP("cores", "c", 4, "number of seeds extracted concurrently")

	// Mark required flags
	extractCmd.MarkFlagRequired("gfa")
	extractCmd.MarkFlagRequired("alignments")

	rootCmd.AddCommand(extractCmd)
}
