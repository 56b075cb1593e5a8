package policyserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "matchsticks.policy.v1.PolicyService"

	SuggestMoveMethod = "/" + ServiceName + "/SuggestMove"
	GetSnapshotMethod = "/" + ServiceName + "/GetSnapshot"
)

// PolicyServiceServer is the server API for the policy service. Requests
// and responses are well-known protobuf types so no generated code is
// needed.
type PolicyServiceServer interface {
	// SuggestMove returns the greedy take for a pile size
	SuggestMove(context.Context, *wrapperspb.Int32Value) (*wrapperspb.Int32Value, error)
	// GetSnapshot returns the served value table as a snapshot document
	GetSnapshot(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// ServiceDesc describes PolicyService for grpc.Server.RegisterService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PolicyServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SuggestMove",
			Handler:    suggestMoveHandler,
		},
		{
			MethodName: "GetSnapshot",
			Handler:    getSnapshotHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "matchsticks/policy/v1/policy.proto",
}

// RegisterPolicyServiceServer registers srv on s
func RegisterPolicyServiceServer(s grpc.ServiceRegistrar, srv PolicyServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func suggestMoveHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.Int32Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PolicyServiceServer).SuggestMove(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: SuggestMoveMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PolicyServiceServer).SuggestMove(ctx, req.(*wrapperspb.Int32Value))
	}
	return interceptor(ctx, in, info, handler)
}

func getSnapshotHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PolicyServiceServer).GetSnapshot(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: GetSnapshotMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PolicyServiceServer).GetSnapshot(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}
