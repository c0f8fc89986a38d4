package control

import (
	"context"

	"github.com/cuemby/siloflow/pkg/types"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client is the Agent-side gRPC client for the three RPCs spec.md §6
// names.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to a Control Service at addr.
func Dial(ctx context.Context, addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, types.Wrap(types.KindTransientIO, "dial control service", err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) CreateKeys(ctx context.Context) (*CreateKeysResponse, error) {
	out := new(CreateKeysResponse)
	if err := c.conn.Invoke(ctx, "/"+serviceName+"/CreateKeys", &CreateKeysRequest{}, out); err != nil {
		return nil, types.Wrap(types.KindTransientIO, "call CreateKeys", err)
	}
	return out, nil
}

func (c *Client) DeleteKeys(ctx context.Context, keys []string) (*DeleteKeysResponse, error) {
	out := new(DeleteKeysResponse)
	if err := c.conn.Invoke(ctx, "/"+serviceName+"/DeleteKeys", &DeleteKeysRequest{Keys: keys}, out); err != nil {
		return nil, types.Wrap(types.KindTransientIO, "call DeleteKeys", err)
	}
	return out, nil
}

func (c *Client) GetAgentConfig(ctx context.Context) (*GetAgentConfigResponse, error) {
	out := new(GetAgentConfigResponse)
	if err := c.conn.Invoke(ctx, "/"+serviceName+"/GetAgentConfig", &GetAgentConfigRequest{}, out); err != nil {
		return nil, types.Wrap(types.KindTransientIO, "call GetAgentConfig", err)
	}
	return out, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
