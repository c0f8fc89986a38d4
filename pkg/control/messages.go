package control

// Wire messages for the three RPCs spec.md §6 names. These stand in
// for generated .pb.go types: protoc is unavailable in this
// environment, so pkg/control's jsonCodec carries these as JSON
// instead of a protobuf wire format.

type CreateKeysRequest struct{}

type CreateKeysResponse struct {
	Keys []string `json:"keys"`
}

type DeleteKeysRequest struct {
	Keys []string `json:"keys"`
}

type DeleteKeysResponse struct{}

type GetAgentConfigRequest struct{}

// GetAgentConfigResponse is reserved today, matching spec.md §6's
// "opaque" GetAgentConfig contract.
type GetAgentConfigResponse struct{}
