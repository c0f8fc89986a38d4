/*
Package control implements the Control Service (C7).

Server issues presigned upload URLs (CreateKeys) and, on DeleteKeys,
derives one IngressTask per URL and publishes it to the Task Queue.
Client is the Agent-side counterpart. Since this module has no
generated .pb.go stubs, grpc.ServiceDesc is hand-assembled in grpc.go
and messages travel as JSON via the codec in codec.go rather than
protobuf wire format — see DESIGN.md for why.
*/
package control
