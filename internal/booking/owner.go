package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/bookly/internal/cache"
	"github.com/julianstephens/bookly/internal/dates"
	"github.com/julianstephens/bookly/internal/models"
)

func validateServiceInput(in models.ServiceInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("service name is required")
	}
	if in.Price < 0 {
		return errors.New("price cannot be negative")
	}
	if in.DurationMinutes <= 0 {
		return errors.New("duration must be positive")
	}
	return nil
}

func (s *Service) CreateService(ctx context.Context, in models.ServiceInput) (*models.Service, error) {
	if err := validateServiceInput(in); err != nil {
		return nil, err
	}
	svc, err := s.backend.CreateService(ctx, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.ServicesKey(in.BusinessID))
	return svc, nil
}

func (s *Service) UpdateService(ctx context.Context, id string, in models.ServiceInput) (*models.Service, error) {
	if err := validateServiceInput(in); err != nil {
		return nil, err
	}
	svc, err := s.backend.UpdateService(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.ServicesKey(in.BusinessID))
	return svc, nil
}

func (s *Service) DeleteService(ctx context.Context, businessID, id string) error {
	if err := s.backend.DeleteService(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, cache.ServicesKey(businessID))
	return nil
}

func (s *Service) AddWorker(ctx context.Context, in models.WorkerInput) (*models.Worker, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, errors.New("staff name is required")
	}
	w, err := s.backend.CreateWorker(ctx, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.WorkersKey(in.BusinessID))
	return w, nil
}

func (s *Service) RemoveWorker(ctx context.Context, businessID, id string) error {
	if err := s.backend.DeleteWorker(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, cache.WorkersKey(businessID))
	return nil
}

// ShiftChange sets the open hours for one ISO weekday.
type ShiftChange struct {
	BusinessID string
	DayOfWeek  int
	Start      string
	End        string
	Active     bool
}

// SetShift creates or updates the shift for a weekday. Overnight windows
// (start after end) are accepted; equal start and end are not.
func (s *Service) SetShift(ctx context.Context, change ShiftChange) (*models.Shift, error) {
	if change.DayOfWeek < 1 || change.DayOfWeek > 7 {
		return nil, fmt.Errorf("day of week must be 1 (Monday) to 7 (Sunday), got %d", change.DayOfWeek)
	}
	start, err := dates.ParseTimeOfDay(change.Start)
	if err != nil {
		return nil, err
	}
	end, err := dates.ParseTimeOfDay(change.End)
	if err != nil {
		return nil, err
	}
	if start == end {
		return nil, errors.New("shift start and end cannot be equal")
	}

	in := models.ShiftInput{
		BusinessID: change.BusinessID,
		DayOfWeek:  change.DayOfWeek,
		IsActive:   change.Active,
		StartTime:  start.String(),
		EndTime:    end.String(),
	}

	existing, err := s.backend.ListShifts(ctx, change.BusinessID)
	if err != nil {
		return nil, err
	}

	var shift *models.Shift
	for _, sh := range existing {
		if sh.DayOfWeek == change.DayOfWeek {
			shift, err = s.backend.UpdateShift(ctx, sh.ID, in)
			break
		}
	}
	if shift == nil && err == nil {
		shift, err = s.backend.CreateShift(ctx, in)
	}
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.ShiftsKey(change.BusinessID))
	return shift, nil
}
