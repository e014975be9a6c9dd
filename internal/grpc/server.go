// Package grpc exposes the status engines and transitions over gRPC. The
// service uses protobuf well-known types, so clients need no generated code
// beyond the standard library of each language.
package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/tallerhub/taller-status/internal/core"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "taller.status.v1.StatusService"

// StatusServiceServer is the server API for the status service.
type StatusServiceServer interface {
	GetStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListStatuses(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	ValidateTransition(ctx context.Context, req *structpb.Struct) (*wrapperspb.BoolValue, error)
	Transition(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// Server implements StatusServiceServer on top of the engines and a backend.
type Server struct {
	engines *core.Engines
	backend core.Backend
	health  *health.Server
}

// New returns a Server. backend may be nil, in which case Transition is
// reported as unavailable.
func New(engines *core.Engines, backend core.Backend) *Server {
	return &Server{
		engines: engines,
		backend: backend,
		health:  health.NewServer(),
	}
}

// Register creates a Server and registers it, together with the standard
// health service, on s.
func Register(s *grpc.Server, engines *core.Engines, backend core.Backend) *Server {
	srv := New(engines, backend)
	s.RegisterService(&StatusServiceDesc, srv)
	healthpb.RegisterHealthServer(s, srv.health)
	srv.UpdateHealth()
	return srv
}

// UpdateHealth reports SERVING once every engine has a catalog.
func (s *Server) UpdateHealth() {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if s.engines.Ready() {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ServiceName, st)
	s.health.SetServingStatus("", st)
}

// Shutdown marks every service as not serving.
func (s *Server) Shutdown() {
	s.health.Shutdown()
}

func (s *Server) machine(name string) (*core.Engine, error) {
	e, ok := s.engines.Machine(name)
	if !ok {
		return nil, coreErrorToGRPC(core.NewNotFoundError("Machine", name))
	}
	return e, nil
}

// GetStatus returns the StatusInfo for {machine, id}.
func (s *Server) GetStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	e, err := s.machine(stringField(req, "machine"))
	if err != nil {
		return nil, err
	}
	id, err := intField(req, "id")
	if err != nil {
		return nil, coreErrorToGRPC(core.NewInvalidRequestError(err.Error(), nil))
	}
	return toStruct(e.StatusInfo(id))
}

// ListStatuses returns every status of the named machine.
func (s *Server) ListStatuses(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	e, err := s.machine(req.GetValue())
	if err != nil {
		return nil, err
	}
	return toStruct(map[string]any{
		"machine":  e.Name(),
		"statuses": e.AllStatuses(),
	})
}

// ValidateTransition reports whether {machine, from, to} is a legal edge.
func (s *Server) ValidateTransition(ctx context.Context, req *structpb.Struct) (*wrapperspb.BoolValue, error) {
	e, err := s.machine(stringField(req, "machine"))
	if err != nil {
		return nil, err
	}
	from, err := intField(req, "from")
	if err != nil {
		return nil, coreErrorToGRPC(core.NewInvalidRequestError(err.Error(), nil))
	}
	to, err := intField(req, "to")
	if err != nil {
		return nil, coreErrorToGRPC(core.NewInvalidRequestError(err.Error(), nil))
	}
	return wrapperspb.Bool(e.IsValidTransition(from, to)), nil
}

// Transition moves the entity {machine, id} to "to" (or "to_code").
func (s *Server) Transition(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.backend == nil {
		return nil, coreErrorToGRPC(core.NewUnavailableError("Transitions are not served by this endpoint."))
	}

	tr := &core.TransitionRequest{
		ToCode: stringField(req, "to_code"),
		Note:   stringField(req, "note"),
	}
	if _, ok := req.GetFields()["to"]; ok {
		to, err := intField(req, "to")
		if err != nil {
			return nil, coreErrorToGRPC(core.NewInvalidRequestError(err.Error(), nil))
		}
		tr.To = to
	}

	id := stringField(req, "id")
	if !core.IsValidEntityID(id) {
		return nil, coreErrorToGRPC(core.NewInvalidRequestError("The 'id' field must be a UUIDv7.", map[string]any{"field": "id"}))
	}
	switch machine := stringField(req, "machine"); machine {
	case core.MachineCars:
		v, err := s.backend.TransitionVehicle(ctx, id, tr)
		if err != nil {
			return nil, coreErrorToGRPC(err)
		}
		return toStruct(map[string]any{"vehicle": v})
	case core.MachineServiceRequests:
		sr, err := s.backend.TransitionServiceRequest(ctx, id, tr)
		if err != nil {
			return nil, coreErrorToGRPC(err)
		}
		return toStruct(map[string]any{"service_request": sr})
	default:
		return nil, coreErrorToGRPC(core.NewNotFoundError("Machine", machine))
	}
}

func _StatusService_GetStatus_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StatusServiceServer).GetStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/GetStatus"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(StatusServiceServer).GetStatus(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _StatusService_ListStatuses_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StatusServiceServer).ListStatuses(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/ListStatuses"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(StatusServiceServer).ListStatuses(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _StatusService_ValidateTransition_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StatusServiceServer).ValidateTransition(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/ValidateTransition"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(StatusServiceServer).ValidateTransition(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _StatusService_Transition_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StatusServiceServer).Transition(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Transition"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(StatusServiceServer).Transition(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// StatusServiceDesc describes the status service for grpc.Server.RegisterService.
var StatusServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StatusServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetStatus", Handler: _StatusService_GetStatus_Handler},
		{MethodName: "ListStatuses", Handler: _StatusService_ListStatuses_Handler},
		{MethodName: "ValidateTransition", Handler: _StatusService_ValidateTransition_Handler},
		{MethodName: "Transition", Handler: _StatusService_Transition_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "taller/status/v1/status.proto",
}
