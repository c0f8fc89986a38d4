package control

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodec is a grpc/encoding.Codec that marshals messages as JSON.
// Its Name returns "proto", grpc-go's default content-subtype, so
// registering it overrides the built-in protobuf codec process-wide
// without either side needing to negotiate a content-subtype — this
// is the substitute for the generated .pb.go marshal/unmarshal code
// that protoc would otherwise produce.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string { return "proto" }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
