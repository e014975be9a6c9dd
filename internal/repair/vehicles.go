package repair

import (
	"context"

	"github.com/tallerhub/taller-status/internal/core"
	"github.com/tallerhub/taller-status/internal/state"
)

const resourceVehicle = "Vehicle"

// CreateVehicle registers a vehicle in the Entrada status.
func (s *Service) CreateVehicle(ctx context.Context, req *core.CreateVehicleRequest) (*core.Vehicle, error) {
	if apiErr := req.Validate(); apiErr != nil {
		return nil, apiErr
	}

	now := core.NowFormatted()
	v := &core.Vehicle{
		ID:         core.NewUUIDv7(),
		Plate:      req.Plate,
		Brand:      req.Brand,
		Model:      req.Model,
		Year:       req.Year,
		OwnerID:    req.OwnerID,
		MechanicID: req.MechanicID,
		StatusID:   core.CarStatusEntrada,
		CreatedAt:  now,
	}
	if err := s.store.PutVehicle(ctx, state.VehicleToRecord(v)); err != nil {
		return nil, err
	}

	s.logger.Info("vehicle registered", "id", v.ID, "plate", v.Plate)
	return s.decorateVehicle(v), nil
}

// GetVehicle returns one vehicle.
func (s *Service) GetVehicle(ctx context.Context, id string) (*core.Vehicle, error) {
	rec, err := s.store.GetVehicle(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, resourceVehicle, id)
	}
	return s.decorateVehicle(state.RecordToVehicle(rec)), nil
}

// ListVehicles returns the vehicles matching filter, oldest first.
func (s *Service) ListVehicles(ctx context.Context, filter core.StatusFilter) ([]*core.Vehicle, error) {
	vehicles, err := s.allVehicles(ctx)
	if err != nil {
		return nil, err
	}
	return core.FilterByStatus(vehicles, filter), nil
}

// VehicleSummary counts vehicles per status.
func (s *Service) VehicleSummary(ctx context.Context) ([]core.StatusCount, error) {
	vehicles, err := s.allVehicles(ctx)
	if err != nil {
		return nil, err
	}
	return core.Summarize(s.engines.Cars, vehicles), nil
}

// TransitionVehicle moves a vehicle to req.To if the car machine allows it.
func (s *Service) TransitionVehicle(ctx context.Context, id string, req *core.TransitionRequest) (*core.Vehicle, error) {
	if apiErr := requireTarget(req); apiErr != nil {
		return nil, apiErr
	}

	rec, err := s.store.GetVehicle(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, resourceVehicle, id)
	}

	e := s.engines.Cars
	from := rec.StatusID
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

	updatedAt, err := s.transition(ctx, e, resourceVehicle, id, from, to, s.store.UpdateVehicleStatus)
	if err != nil {
		return nil, err
	}

	v := state.RecordToVehicle(rec)
	v.StatusID = to
	v.UpdatedAt = updatedAt
	s.publish(ctx, e, id, from, to, req.Note)
	return s.decorateVehicle(v), nil
}

func (s *Service) allVehicles(ctx context.Context) ([]*core.Vehicle, error) {
	records, err := s.store.ListVehicles(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*core.Vehicle, 0, len(records))
	for _, rec := range records {
		out = append(out, s.decorateVehicle(state.RecordToVehicle(rec)))
	}
	return out, nil
}

func (s *Service) decorateVehicle(v *core.Vehicle) *core.Vehicle {
	v.StatusName = s.engines.Cars.StatusName(v.StatusID)
	return v
}
