package control

import (
	"context"

	"google.golang.org/grpc"
)

// ControlServer is the service interface grpc.ServiceDesc dispatches
// to, standing in for the interface protoc-gen-go-grpc would
// generate from a control.proto.
type ControlServer interface {
	CreateKeys(ctx context.Context, req *CreateKeysRequest) (*CreateKeysResponse, error)
	DeleteKeys(ctx context.Context, req *DeleteKeysRequest) (*DeleteKeysResponse, error)
	GetAgentConfig(ctx context.Context, req *GetAgentConfigRequest) (*GetAgentConfigResponse, error)
}

const serviceName = "siloflow.control.Control"

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateKeys", Handler: createKeysHandler},
		{MethodName: "DeleteKeys", Handler: deleteKeysHandler},
		{MethodName: "GetAgentConfig", Handler: getAgentConfigHandler},
	},
	Metadata: "control.proto",
}

func createKeysHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CreateKeysRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServer).CreateKeys(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/CreateKeys"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ControlServer).CreateKeys(ctx, req.(*CreateKeysRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func deleteKeysHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(DeleteKeysRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServer).DeleteKeys(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/DeleteKeys"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ControlServer).DeleteKeys(ctx, req.(*DeleteKeysRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getAgentConfigHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetAgentConfigRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServer).GetAgentConfig(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/GetAgentConfig"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ControlServer).GetAgentConfig(ctx, req.(*GetAgentConfigRequest))
	}
	return interceptor(ctx, in, info, handler)
}
