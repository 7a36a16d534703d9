package server

import (
	"context"
	"encoding/json"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// TimelineServiceName is the fully qualified gRPC service name.
const TimelineServiceName = "casegraph.v1.TimelineService"

// TimelineServiceServer is the gRPC surface of the timeline core. Messages
// are google.protobuf.Struct values carrying the same JSON shapes as the
// HTTP API.
type TimelineServiceServer interface {
	// GetLayout takes {"case_id"} and returns the layout.
	GetLayout(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// GetSelection takes {"case_id", "node_id", "node_type"} and returns
	// {"highlight", "details"}.
	GetSelection(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// ComputePlacement takes a placement request and returns the placement.
	ComputePlacement(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// NewGRPCServer creates a gRPC server with standard interceptors and registers
// the timeline service, the health service and reflection.
func NewGRPCServer(cs *CaseGraphServer, authToken string) *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor,
			LoggingInterceptor,
			AuthInterceptor(authToken),
		),
	)

	RegisterTimelineServiceServer(srv, cs)
	hs := health.NewServer()
	hs.SetServingStatus(TimelineServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	return srv
}

// RegisterTimelineServiceServer registers impl on s.
func RegisterTimelineServiceServer(s grpc.ServiceRegistrar, impl TimelineServiceServer) {
	s.RegisterService(&timelineServiceDesc, impl)
}

var timelineServiceDesc = grpc.ServiceDesc{
	ServiceName: TimelineServiceName,
	HandlerType: (*TimelineServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetLayout", Handler: unaryHandler("GetLayout", TimelineServiceServer.GetLayout)},
		{MethodName: "GetSelection", Handler: unaryHandler("GetSelection", TimelineServiceServer.GetSelection)},
		{MethodName: "ComputePlacement", Handler: unaryHandler("ComputePlacement", TimelineServiceServer.ComputePlacement)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "casegraph/v1/timeline.proto",
}

type timelineMethod func(TimelineServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unaryHandler adapts a service method to the grpc.MethodDesc handler shape.
func unaryHandler(name string, method timelineMethod) grpc.MethodHandler {
	fullMethod := "/" + TimelineServiceName + "/" + name
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return method(srv.(TimelineServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return method(srv.(TimelineServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// GetLayout implements TimelineServiceServer.
func (s *CaseGraphServer) GetLayout(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct {
		CaseID string `json:"case_id"`
	}
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	gv, err := s.loadGraph(ctx, req.CaseID)
	if err != nil {
		return nil, grpcError(err, "case not found")
	}
	return toStruct(gv.Layout)
}

// GetSelection implements TimelineServiceServer.
func (s *CaseGraphServer) GetSelection(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct {
		CaseID   string `json:"case_id"`
		NodeID   string `json:"node_id"`
		NodeType string `json:"node_type"`
	}
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	sel, err := s.selection(ctx, req.CaseID, req.NodeID, req.NodeType)
	if err != nil {
		return nil, grpcError(err, "case not found")
	}
	return toStruct(sel)
}

// ComputePlacement implements TimelineServiceServer.
func (s *CaseGraphServer) ComputePlacement(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req PlacementRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	p, err := placement(req)
	if err != nil {
		return nil, grpcError(err, "")
	}
	return toStruct(p)
}

// grpcError maps a service error to a status error.
func grpcError(err error, notFound string) error {
	var ie inputError
	switch {
	case errors.As(err, &ie):
		return status.Error(codes.InvalidArgument, ie.Error())
	case isNotFound(err):
		return status.Error(codes.NotFound, notFound)
	default:
		return status.Errorf(codes.Internal, "%v", err)
	}
}

// fromStruct decodes a Struct into v through its JSON form.
func fromStruct(in *structpb.Struct, v any) error {
	data, err := protojson.Marshal(in)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "encoding request: %v", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return status.Errorf(codes.InvalidArgument, "decoding request: %v", err)
	}
	return nil
}

// toStruct encodes v as a Struct through its JSON form.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
	}
	return out, nil
}
