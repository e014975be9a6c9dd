package grpc

import (
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tallerhub/taller-status/internal/core"
)

// toStruct converts any JSON-encodable value into a protobuf Struct.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

// intField reads a whole number from a Struct field.
func intField(s *structpb.Struct, name string) (int, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return 0, fmt.Errorf("field %q is required", name)
	}
	nv, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("field %q must be a number", name)
	}
	n := int(nv.NumberValue)
	if float64(n) != nv.NumberValue {
		return 0, fmt.Errorf("field %q must be an integer", name)
	}
	return n, nil
}

// stringField reads an optional string from a Struct field.
func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

// coreErrorToGRPC maps API error codes to gRPC status codes.
func coreErrorToGRPC(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *core.APIError
	if !errors.As(err, &apiErr) {
		return status.Errorf(codes.Internal, "%s", err.Error())
	}

	code := codes.Internal
	switch apiErr.Code {
	case core.ErrCodeInvalidRequest, core.ErrCodeValidationError:
		code = codes.InvalidArgument
	case core.ErrCodeNotFound:
		code = codes.NotFound
	case core.ErrCodeConflict:
		code = codes.Aborted
	case core.ErrCodeInvalidTransition:
		code = codes.FailedPrecondition
	case core.ErrCodeUnavailable:
		code = codes.Unavailable
	case core.ErrCodeUnauthorized:
		code = codes.Unauthenticated
	case core.ErrCodeForbidden:
		code = codes.PermissionDenied
	}
	return status.Errorf(code, "%s", apiErr.Message)
}
