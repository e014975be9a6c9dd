package repair

import (
	"context"

	"github.com/tallerhub/taller-status/internal/core"
	"github.com/tallerhub/taller-status/internal/state"
)

const resourceServiceRequest = "ServiceRequest"

// CreateServiceRequest opens a request for an existing vehicle in the
// PENDING status.
func (s *Service) CreateServiceRequest(ctx context.Context, req *core.CreateServiceRequestRequest) (*core.ServiceRequest, error) {
	if apiErr := req.Validate(); apiErr != nil {
		return nil, apiErr
	}
	if _, err := s.store.GetVehicle(ctx, req.VehicleID); err != nil {
		return nil, notFoundOr(err, resourceVehicle, req.VehicleID)
	}

	sr := &core.ServiceRequest{
		ID:          core.NewUUIDv7(),
		VehicleID:   req.VehicleID,
		ClientID:    req.ClientID,
		Description: req.Description,
		StatusID:    core.RequestStatusPending,
		CreatedAt:   core.NowFormatted(),
	}
	if err := s.store.PutServiceRequest(ctx, state.ServiceRequestToRecord(sr)); err != nil {
		return nil, err
	}

	s.logger.Info("service request opened", "id", sr.ID, "vehicle_id", sr.VehicleID)
	return s.decorateRequest(sr), nil
}

// GetServiceRequest returns one service request.
func (s *Service) GetServiceRequest(ctx context.Context, id string) (*core.ServiceRequest, error) {
	rec, err := s.store.GetServiceRequest(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, resourceServiceRequest, id)
	}
	return s.decorateRequest(state.RecordToServiceRequest(rec)), nil
}

// ListServiceRequests returns the requests matching filter, oldest first.
func (s *Service) ListServiceRequests(ctx context.Context, filter core.StatusFilter) ([]*core.ServiceRequest, error) {
	requests, err := s.allRequests(ctx)
	if err != nil {
		return nil, err
	}
	return core.FilterByStatus(requests, filter), nil
}

// ServiceRequestSummary counts requests per status.
func (s *Service) ServiceRequestSummary(ctx context.Context) ([]core.StatusCount, error) {
	requests, err := s.allRequests(ctx)
	if err != nil {
		return nil, err
	}
	return core.Summarize(s.engines.ServiceRequests, requests), nil
}

// TransitionServiceRequest moves a request to req.To, or to the status whose
// code is req.ToCode.
func (s *Service) TransitionServiceRequest(ctx context.Context, id string, req *core.TransitionRequest) (*core.ServiceRequest, error) {
	if apiErr := requireTarget(req); apiErr != nil {
		return nil, apiErr
	}

	e := s.engines.ServiceRequests
	to := req.To
	if to == 0 {
		st, ok := e.StatusByCode(req.ToCode)
		if !ok {
			return nil, core.NewValidationError("Unknown status code '"+req.ToCode+"'.", map[string]any{
				"field":    "to_code",
				"received": req.ToCode,
			})
		}
		to = st.ID
	}

	rec, err := s.store.GetServiceRequest(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, resourceServiceRequest, id)
	}
	from := rec.StatusID

	updatedAt, err := s.transition(ctx, e, resourceServiceRequest, id, from, to, s.store.UpdateServiceRequestStatus)
	if err != nil {
		return nil, err
	}

	sr := state.RecordToServiceRequest(rec)
	sr.StatusID = to
	sr.UpdatedAt = updatedAt
	s.publish(ctx, e, id, from, to, req.Note)
	return s.decorateRequest(sr), nil
}

func (s *Service) allRequests(ctx context.Context) ([]*core.ServiceRequest, error) {
	records, err := s.store.ListServiceRequests(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*core.ServiceRequest, 0, len(records))
	for _, rec := range records {
		out = append(out, s.decorateRequest(state.RecordToServiceRequest(rec)))
	}
	return out, nil
}

func (s *Service) decorateRequest(sr *core.ServiceRequest) *core.ServiceRequest {
	e := s.engines.ServiceRequests
	sr.StatusName = e.StatusName(sr.StatusID)
	if st, ok := e.Registry().Lookup(sr.StatusID); ok {
		sr.StatusCode = st.Code
	}
	return sr
}
