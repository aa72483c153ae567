// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd)
package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config is the root-level settings struct and is a mix of settings
// available in an optional settings file and those from the command line
type Config struct {
	// the path to the assembly graph (GFA)
	GraphPath string `mapstructure:"gfa"`

	// the path to the AMR alignment records (TSV)
	AlignmentPath string `mapstructure:"alignments"`

	// the directory extraction artifacts are written to
	OutputDir string `mapstructure:"out"`

	// the path to the sqlite file extraction outcomes are recorded in.
	// empty means no database is written
	DBPath string `mapstructure:"db"`

	// the target neighborhood length on each side of the AMR gene
	SeqLength int `mapstructure:"seq-len"`

	// the maximum number of nodes in any extension path. after this many
	// nodes the path is accepted as-is, even if shorter than seq-len
	PathNodeThreshold int `mapstructure:"node-threshold"`

	// the percentage of seq-len after which branching stops and the
	// search completes through the longest remaining neighbor only
	PathSeqLenPercentThreshold float64 `mapstructure:"percent-threshold"`

	// the minimum alignment identity fraction for a hit to seed a search
	MinIdentity float64 `mapstructure:"min-identity"`

	// the minimum alignment coverage fraction for a hit to seed a search
	MinCoverage float64 `mapstructure:"min-coverage"`

	// the number of seeds extracted concurrently
	Cores int `mapstructure:"cores"`

	// whether to log at debug level
	Verbose bool `mapstructure:"verbose"`
}

// SetDefaults registers the default value of every setting with Viper.
// Called once from cmd before flags are bound.
func SetDefaults() {
	viper.SetDefault("out", ".")
	viper.SetDefault("seq-len", 1000)
	viper.SetDefault("node-threshold", 1000)
	viper.SetDefault("percent-threshold", 90.0)
	viper.SetDefault("min-identity", 0.95)
	viper.SetDefault("min-coverage", 0.95)
	viper.SetDefault("cores", 4)
}

// New returns a new Config struct populated by Viper settings
// (either from a settings file and/or command line arguments)
func New() Config {
	var c Config

	if err := viper.Unmarshal(&c); err != nil {
		log.Fatalf("unable to decode settings into struct, %v", err)
	}

	return c
}
