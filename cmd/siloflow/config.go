package main

import (
	"github.com/cuemby/siloflow/pkg/config"
	"github.com/spf13/cobra"
)

// loadConfig reads --config off cmd, falling back to
// config.DefaultConfig() when the flag is empty.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(path)
}
