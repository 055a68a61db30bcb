package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version will be set during the build process using ldflags
var Version = "(dev) v0.0.0"

var rootCmd = &cobra.Command{
	Use:   "vls",
	Short: "Script analysis for single-file components",
	Long:  `vls serves editor features for the script blocks of single-file components and plain script files.`,
}

func main() {
	rootCmd.Version = Version
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)

	rootCmd.PersistentFlags().String("config", "", "TOML configuration file (default: vetur.toml in the working directory, if present)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
