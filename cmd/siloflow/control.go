package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuemby/siloflow/pkg/blobstore"
	"github.com/cuemby/siloflow/pkg/control"
	"github.com/cuemby/siloflow/pkg/health"
	"github.com/cuemby/siloflow/pkg/queue"
	"github.com/cuemby/siloflow/pkg/registry"
	"github.com/spf13/cobra"
)

var controlCmd = &cobra.Command{
	Use:   "control",
	Short: "Run the Control Service (C7) and its embedded Schema Registry (C3)",
}

var controlServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve CreateKeys/DeleteKeys/GetAgentConfig over gRPC",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		s3Endpoint, _ := cmd.Flags().GetString("s3-endpoint")
		natsURL, _ := cmd.Flags().GetString("nats-url")

		fmt.Println("Starting siloflow control service...")
		fmt.Printf("  Listen: %s\n", cfg.Control.ListenAddr)
		fmt.Printf("  Source bucket: %s\n", cfg.Control.SourceBucket)

		ctx := context.Background()

		blobs, err := blobstore.NewS3BlobStore(ctx, blobstore.S3Config{
			EndpointURL: s3Endpoint,
			PutBucket:   cfg.Control.SourceBucket,
		})
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

		srv := control.NewServer(control.Config{
			ListenAddr:   cfg.Control.ListenAddr,
			SourceBucket: cfg.Control.SourceBucket,
			URLPoolSize:  cfg.Control.URLPoolSize,
			URLExpiry:    cfg.Control.URLExpiry,
		}, blobs, q)

		if err := srv.Listen(); err != nil {
			return fmt.Errorf("failed to bind listen address: %w", err)
		}
		go func() {
			if err := srv.Serve(); err != nil {
				fmt.Printf("control service stopped serving: %v\n", err)
			}
		}()
		fmt.Printf("Control service listening on %s. Press Ctrl+C to stop.\n", srv.Addr())

		metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
		healthSrv := health.NewServer()
		healthSrv.RegisterCheck("schema_registry", func(context.Context) error {
			if reg.IsLeader() || reg.LeaderAddr() != "" {
				return nil
			}
			return fmt.Errorf("schema registry has no leader")
		})
		healthSrv.RegisterCheck("task_queue", health.CheckerFunc(health.NewTCPChecker(natsHostPort(natsURL))))
		if s3Endpoint != "" {
			healthSrv.RegisterCheck("blob_store", health.CheckerFunc(health.NewHTTPChecker(s3Endpoint)))
		}
		go func() {
			if err := healthSrv.Start(metricsAddr); err != nil {
				fmt.Printf("health server stopped: %v\n", err)
			}
		}()
		fmt.Printf("Health/metrics listening on %s\n", metricsAddr)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		fmt.Println("\nShutting down...")
		srv.Stop()
		fmt.Println("Shutdown complete")
		return nil
	},
}

func init() {
	controlCmd.AddCommand(controlServeCmd)
	controlServeCmd.Flags().String("s3-endpoint", "", "S3-compatible endpoint URL (empty = real AWS)")
	controlServeCmd.Flags().String("nats-url", "nats://127.0.0.1:4222", "NATS JetStream server URL")
	controlServeCmd.Flags().String("metrics-addr", ":9091", "Address to serve /health, /ready, /metrics on")
}
