package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuemby/siloflow/pkg/agent"
	"github.com/cuemby/siloflow/pkg/control"
	"github.com/cuemby/siloflow/pkg/tailer"
	"github.com/cuemby/siloflow/pkg/uploader"
	"github.com/spf13/cobra"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run the Agent Loop (C6): tail a file and upload it through the Control Service",
}

var agentRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Start tailing the configured file and uploading buffers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if file, _ := cmd.Flags().GetString("file"); file != "" {
			cfg.Agent.File = file
		}
		if endpoint, _ := cmd.Flags().GetString("control"); endpoint != "" {
			cfg.Agent.ControlEndpoint = endpoint
		}
		if cfg.Agent.File == "" {
			return fmt.Errorf("agent.file is required (set via --file or config)")
		}
		if cfg.Agent.ControlEndpoint == "" {
			return fmt.Errorf("control.endpoint is required (set via --control or config)")
		}

		fmt.Println("Starting siloflow agent...")
		fmt.Printf("  File: %s\n", cfg.Agent.File)
		fmt.Printf("  Control endpoint: %s\n", cfg.Agent.ControlEndpoint)

		tl, err := tailer.New(cfg.Agent.File, cfg.Agent.BufferSize)
		if err != nil {
			return fmt.Errorf("failed to open tailed file: %w", err)
		}
		defer tl.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := control.Dial(ctx, cfg.Agent.ControlEndpoint)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to dial control service: %w", err)
		}
		defer client.Close()

		up := uploader.New(30 * time.Second)
		a := agent.New(agent.Config{
			MaxPending: cfg.Agent.MaxPending,
			MaxRetries: cfg.Agent.MaxUploadRetries,
		}, tl, client, up)

		runCtx, runCancel := context.WithCancel(context.Background())
		go a.Run(runCtx, cfg.Agent.TickInterval)

		fmt.Println("Agent is running. Press Ctrl+C to stop.")
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		fmt.Println("\nShutting down...")
		a.Stop()
		runCancel()
		fmt.Println("Shutdown complete")
		return nil
	},
}

func init() {
	agentCmd.AddCommand(agentRunCmd)
	agentRunCmd.Flags().String("file", "", "Path to the log file to tail")
	agentRunCmd.Flags().String("control", "", "Control Service address (host:port)")
}
