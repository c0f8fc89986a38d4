package control

import (
	"context"
	"net"
	"time"

	"github.com/cuemby/siloflow/pkg/blobstore"
	"github.com/cuemby/siloflow/pkg/log"
	"github.com/cuemby/siloflow/pkg/metrics"
	"github.com/cuemby/siloflow/pkg/queue"
	"github.com/cuemby/siloflow/pkg/types"
	"google.golang.org/grpc"
)

// Config configures a Server.
type Config struct {
	ListenAddr    string
	SourceBucket  string
	URLPoolSize   int
	URLExpiry     time.Duration
}

// Server implements the Control Service (C7): issues presigned upload
// URLs and, on DeleteKeys, derives and publishes one IngressTask per
// URL.
//
// Grounded on pkg/api/server.go's NewServer/grpc.NewServer/Serve/Stop
// shape and original_source/src/agent/presigned_url_repository.rs's
// produce/consume pair.
type Server struct {
	cfg   Config
	blobs blobstore.BlobStore
	q     queue.Queue
	grpc  *grpc.Server
	lis   net.Listener
}

// NewServer wires a Server against its Blob Store and Task Queue
// collaborators. Unlike the teacher's mTLS-everywhere manager API,
// this RPC surface issues short-lived, narrowly scoped credentials
// (presigned URLs) rather than node identity, so it runs without
// client certificates — see DESIGN.md's dropped-pkg/security note.
func NewServer(cfg Config, blobs blobstore.BlobStore, q queue.Queue) *Server {
	if cfg.URLPoolSize <= 0 {
		cfg.URLPoolSize = 5
	}
	if cfg.URLExpiry <= 0 {
		cfg.URLExpiry = 15 * time.Minute
	}

	s := &Server{cfg: cfg, blobs: blobs, q: q}
	s.grpc = grpc.NewServer(
		grpc.UnaryInterceptor(metricsInterceptor),
	)
	s.grpc.RegisterService(&serviceDesc, ControlServer(s))
	return s
}

func metricsInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	resp, err := handler(ctx, req)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.ControlRequestsTotal.WithLabelValues(info.FullMethod, status).Inc()
	return resp, err
}

// CreateKeys issues cfg.URLPoolSize presigned PUT URLs into the
// source bucket.
func (s *Server) CreateKeys(ctx context.Context, _ *CreateKeysRequest) (*CreateKeysResponse, error) {
	keys := make([]string, 0, s.cfg.URLPoolSize)
	for i := 0; i < s.cfg.URLPoolSize; i++ {
		u, err := s.blobs.PresignPut(ctx, s.cfg.SourceBucket, s.cfg.URLExpiry)
		if err != nil {
			return nil, err
		}
		keys = append(keys, u.URL)
	}
	return &CreateKeysResponse{Keys: keys}, nil
}

// DeleteKeys derives one IngressTask per URL and publishes it. Per
// spec.md §4.7 this is idempotent only at the URL level: publishing
// the same URL twice may produce two tasks, which the Ingress Worker
// tolerates (spec.md §4.8 idempotence).
func (s *Server) DeleteKeys(ctx context.Context, req *DeleteKeysRequest) (*DeleteKeysResponse, error) {
	for _, u := range req.Keys {
		bucket, key, err := deriveBucketKey(u)
		if err != nil {
			log.Errorf("rejecting malformed presigned url in DeleteKeys", err)
			continue
		}

		if err := s.q.Enqueue(ctx, types.IngressTask{Bucket: bucket, Key: key}); err != nil {
			return nil, err
		}
	}
	return &DeleteKeysResponse{}, nil
}

// GetAgentConfig is reserved, per spec.md §6.
func (s *Server) GetAgentConfig(_ context.Context, _ *GetAgentConfigRequest) (*GetAgentConfigResponse, error) {
	return &GetAgentConfigResponse{}, nil
}

// Listen binds cfg.ListenAddr (":0" picks an ephemeral port) without
// blocking, so callers that need to know the bound address — e.g.
// tests — can read it via Addr before calling Serve.
func (s *Server) Listen() error {
	lis, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return types.Wrap(types.KindPermanentIO, "listen on control address", err)
	}
	s.lis = lis
	return nil
}

// Addr returns the bound listener address. Valid only after Listen.
func (s *Server) Addr() string {
	if s.lis == nil {
		return ""
	}
	return s.lis.Addr().String()
}

// Serve blocks, accepting connections on the listener bound by Listen
// (binding one on cfg.ListenAddr first if Listen was not called).
func (s *Server) Serve() error {
	if s.lis == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	return s.grpc.Serve(s.lis)
}

// Stop gracefully stops the gRPC server, letting in-flight RPCs
// finish rather than cancelling them mid-transaction (spec.md §5).
func (s *Server) Stop() {
	s.grpc.GracefulStop()
}
