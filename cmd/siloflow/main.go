package main

import (
	"fmt"
	"os"

	"github.com/cuemby/siloflow/pkg/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "siloflow",
	Short: "siloflow - a distributed log-ingestion pipeline",
	Long: `siloflow tails log files on edge hosts, uploads the raw bytes
through short-lived presigned credentials, and turns them into columnar
files with a fleet of ingress workers, all behind a raft-replicated
schema registry.`,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (defaults applied when omitted)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(controlCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(schemaCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}
