package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuemby/siloflow/pkg/blobstore"
	"github.com/cuemby/siloflow/pkg/health"
	"github.com/cuemby/siloflow/pkg/ingressworker"
	"github.com/cuemby/siloflow/pkg/queue"
	"github.com/cuemby/siloflow/pkg/registry"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the Ingress Worker Loop (C8): poll, parse, write, delete, ack",
}

var workerRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Start consuming the Task Queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		s3Endpoint, _ := cmd.Flags().GetString("s3-endpoint")
		natsURL, _ := cmd.Flags().GetString("nats-url")
		registryAddr, _ := cmd.Flags().GetString("registry-data-dir")
		if registryAddr != "" {
			cfg.Control.RegistryDataDir = registryAddr
		}

		fmt.Println("Starting siloflow ingress worker...")
		fmt.Printf("  Destination bucket: %s\n", cfg.Ingress.DestinationBucket)
		fmt.Printf("  Batch size: %d\n", cfg.Ingress.BatchSize)

		ctx := context.Background()

		blobs, err := blobstore.NewS3BlobStore(ctx, blobstore.S3Config{EndpointURL: s3Endpoint})
		if err != nil {
			return fmt.Errorf("failed to connect to blob store: %w", err)
		}

		q, err := queue.NewNATSQueue(ctx, queue.NATSConfig{
			URL:          natsURL,
			StreamName:   "SILOFLOW_TASKS",
			Subject:      "siloflow.tasks",
			ConsumerName: "ingress-workers",
			AckWait:      30 * time.Second,
			MaxDeliver:   5,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to task queue: %w", err)
		}
		defer q.Close()

		// The Ingress Worker keeps its own single-node registry replica
		// (bootstrapped on first run, resumed thereafter). Joining the
		// Control Service's raft cluster as a true voting member is an
		// operator-driven step (registry.AddVoter on the leader) outside
		// this CLI's scope — see DESIGN.md.
		reg, err := registry.New(registry.Config{
			NodeID:   cfg.Control.RegistryNodeID,
			BindAddr: cfg.Control.RegistryBindAddr,
			DataDir:  cfg.Control.RegistryDataDir,
		})
		if err != nil {
			return fmt.Errorf("failed to open schema registry: %w", err)
		}
		if err := reg.Bootstrap(); err != nil {
			return fmt.Errorf("failed to bootstrap schema registry: %w", err)
		}
		defer reg.Shutdown()

		wk := ingressworker.New(ingressworker.Config{
			BatchSize:         cfg.Ingress.BatchSize,
			PollWait:          cfg.Ingress.PollInterval(),
			DestinationBucket: cfg.Ingress.DestinationBucket,
		}, q, blobs, reg)

		runCtx, runCancel := context.WithCancel(context.Background())
		go wk.Run(runCtx, cfg.Ingress.PollInterval())

		metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
		healthSrv := health.NewServer()
		healthSrv.RegisterCheck("task_queue", health.CheckerFunc(health.NewTCPChecker(natsHostPort(natsURL))))
		healthSrv.RegisterCheck("schema_registry", func(context.Context) error {
			if reg.IsLeader() || reg.LeaderAddr() != "" {
				return nil
			}
			return fmt.Errorf("schema registry has no leader")
		})
		if s3Endpoint != "" {
			healthSrv.RegisterCheck("blob_store", health.CheckerFunc(health.NewHTTPChecker(s3Endpoint)))
		}
		go func() {
			if err := healthSrv.Start(metricsAddr); err != nil {
				fmt.Printf("health server stopped: %v\n", err)
			}
		}()
		fmt.Printf("Health/metrics listening on %s\n", metricsAddr)

		fmt.Println("Ingress worker is running. Press Ctrl+C to stop.")
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		fmt.Println("\nShutting down...")
		wk.Stop()
		runCancel()
		fmt.Println("Shutdown complete")
		return nil
	},
}

func init() {
	workerCmd.AddCommand(workerRunCmd)
	workerRunCmd.Flags().String("s3-endpoint", "", "S3-compatible endpoint URL (empty = real AWS)")
	workerRunCmd.Flags().String("nats-url", "nats://127.0.0.1:4222", "NATS JetStream server URL")
	workerRunCmd.Flags().String("registry-data-dir", "", "Schema registry raft data directory (must match the control node's)")
	workerRunCmd.Flags().String("metrics-addr", ":9092", "Address to serve /health, /ready, /metrics on")
}
