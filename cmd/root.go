// Package cmd is for command line interactions with the sarand application
package cmd

import (
	"log"

	"github.com/aaronmussig/sarand/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use: "sarand",
	Short: `Extract the genomic neighborhood of AMR genes from an assembly graph.
Genes are located via alignment hits and their surrounding sequence is
reconstructed by walking the graph in both directions`,
	Version: "1.0.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}

func init() {
	config.SetDefaults()

	// settings is an optional parameter for a settings file overriding the defaults
	rootCmd.PersistentFlags().StringP("settings", "s", "", "path to a YAML settings file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "whether to log at debug level")
	viper.BindPFlag("settings", rootCmd.PersistentFlags().Lookup("settings"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	cobra.OnInitialize(readSettings)
}

// readSettings loads the optional settings file into viper. Flags set
// on the command line still win over file values.
func readSettings() {
	settings := viper.GetString("settings")
	if settings == "" {
		return
	}

	viper.SetConfigFile(settings)
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("failed to read settings file %s: %v", settings, err)
	}
}
