package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandersn/vetur/internal/config"
)

const defaultConfigFile = "vetur.toml"

// loadConfig reads the --config file, falling back to vetur.toml in the
// working directory and then to the defaults.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); errors.Is(err, fs.ErrNotExist) {
			return config.Default(), nil
		}
		path = defaultConfigFile
	}
	return config.LoadFile(path)
}
