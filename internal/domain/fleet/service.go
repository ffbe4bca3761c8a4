package fleet

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/hoslink/hoslink/internal/errs"
	"github.com/hoslink/hoslink/internal/platform/keylock"
	"github.com/hoslink/hoslink/internal/platform/websocket"
)

// Service owns the ambulance state machine. Every mutating operation takes
// the ambulance's keyed lock, so a driver posting a manual position, a
// simulator tick, and a dispatch serialize per vehicle.
type Service struct {
	repo      Repository
	locations LocationRepository
	locks     *keylock.Keyed
	events    websocket.EventPublisher
	log       zerolog.Logger
}

// NewService wires the fleet service. The lock set is shared with the other
// entity services so one process has a single lock per key.
func NewService(repo Repository, locations LocationRepository, locks *keylock.Keyed, events websocket.EventPublisher, log zerolog.Logger) *Service {
	return &Service{repo: repo, locations: locations, locks: locks, events: events, log: log}
}

// Seed upserts the fleet registry.
func (s *Service) Seed(ctx context.Context) error {
	return Seed(ctx, s.repo)
}

// Get returns an ambulance by its registration.
func (s *Service) Get(ctx context.Context, ambulanceID string) (*Ambulance, error) {
	return s.repo.GetByID(ctx, ambulanceID)
}

// List returns a page of the fleet ordered by registration.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*Ambulance, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// ListByStatus returns a page of the fleet in the given state.
func (s *Service) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Ambulance, int, error) {
	if !ValidStatus(status) {
		return nil, 0, errs.Validationf("unknown status %q", status)
	}
	return s.repo.ListByStatus(ctx, status, limit, offset)
}

// All returns the entire fleet without pagination.
func (s *Service) All(ctx context.Context) ([]*Ambulance, error) {
	return s.repo.ListAll(ctx)
}

// Dispatch reserves an Available ambulance for the given patient. Any other
// state fails with errs.AmbulanceUnavailable carrying the offending status.
func (s *Service) Dispatch(ctx context.Context, ambulanceID, patientID string) (*Ambulance, error) {
	s.locks.Lock(ambulanceID)
	defer s.locks.Unlock(ambulanceID)

	a, err := s.repo.GetByID(ctx, ambulanceID)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusAvailable {
		return nil, errs.AmbulanceUnavailable(ambulanceID, a.Status)
	}

	a.Status = StatusOnTransfer
	a.CurrentPatient = &patientID
	a.MissionComplete = false
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	s.publish("status.changed", a)
	return a, nil
}

// SetRoute records the destination and estimated arrival of the active
// mission. No state change.
func (s *Service) SetRoute(ctx context.Context, ambulanceID, destination string, eta *time.Time) error {
	s.locks.Lock(ambulanceID)
	defer s.locks.Unlock(ambulanceID)

	a, err := s.repo.GetByID(ctx, ambulanceID)
	if err != nil {
		return err
	}
	a.Destination = &destination
	a.EstimatedArrival = eta
	return s.repo.Update(ctx, a)
}

// Release returns the ambulance to Available and closes out its mission
// fields. Patient state is never touched here.
func (s *Service) Release(ctx context.Context, ambulanceID string) (*Ambulance, error) {
	s.locks.Lock(ambulanceID)
	defer s.locks.Unlock(ambulanceID)

	a, err := s.repo.GetByID(ctx, ambulanceID)
	if err != nil {
		return nil, err
	}
	if err := s.release(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ReleaseIfCarrying releases the ambulance only when it still carries the
// given patient, returning false without writing otherwise. The natural end
// of a simulated run uses this so it cannot double-release a vehicle already
// completed or cancelled by other means.
func (s *Service) ReleaseIfCarrying(ctx context.Context, ambulanceID, patientID string) (bool, error) {
	s.locks.Lock(ambulanceID)
	defer s.locks.Unlock(ambulanceID)

	a, err := s.repo.GetByID(ctx, ambulanceID)
	if err != nil {
		return false, err
	}
	if a.CurrentPatient == nil || *a.CurrentPatient != patientID {
		return false, nil
	}
	if err := s.release(ctx, a); err != nil {
		return false, err
	}
	return true, nil
}

// release mutates a in place and persists it. Callers hold the lock.
func (s *Service) release(ctx context.Context, a *Ambulance) error {
	a.Status = StatusAvailable
	a.CurrentPatient = nil
	a.Destination = nil
	a.EstimatedArrival = nil
	a.MissionComplete = true
	if err := s.repo.Update(ctx, a); err != nil {
		return err
	}
	s.publish("status.changed", a)
	return nil
}

// SetMaintenanceState moves the ambulance to On Break or Maintenance. This is
// an administrative override: it applies from any state and clears the
// current patient so the mission link never dangles.
func (s *Service) SetMaintenanceState(ctx context.Context, ambulanceID, state string) (*Ambulance, error) {
	if state != StatusOnBreak && state != StatusMaintenance {
		return nil, errs.Validationf("state must be %q or %q", StatusOnBreak, StatusMaintenance)
	}

	s.locks.Lock(ambulanceID)
	defer s.locks.Unlock(ambulanceID)

	a, err := s.repo.GetByID(ctx, ambulanceID)
	if err != nil {
		return nil, err
	}
	a.Status = state
	a.CurrentPatient = nil
	a.Destination = nil
	a.EstimatedArrival = nil
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	s.publish("status.changed", a)
	return a, nil
}

// UpdateLocation appends a position sample and overwrites the ambulance's
// live coordinates. Legal in any state; repositioning while Available is a
// normal driver action.
func (s *Service) UpdateLocation(ctx context.Context, ambulanceID string, lat, lng float64, label string, patientID *string) (*LocationUpdate, error) {
	s.locks.Lock(ambulanceID)
	defer s.locks.Unlock(ambulanceID)

	a, err := s.repo.GetByID(ctx, ambulanceID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	lu := &LocationUpdate{
		AmbulanceID:  ambulanceID,
		Latitude:     lat,
		Longitude:    lng,
		LocationName: label,
		PatientID:    patientID,
		Timestamp:    now,
	}
	if err := s.locations.Append(ctx, lu); err != nil {
		return nil, err
	}

	a.Latitude = lat
	a.Longitude = lng
	if label != "" {
		a.CurrentLocation = label
	}
	a.LastLocationUpdate = &now
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}

	s.publishLocation(lu)
	return lu, nil
}

// CurrentPosition returns the newest position sample, falling back to the
// ambulance row's own coordinates when none have been recorded yet.
func (s *Service) CurrentPosition(ctx context.Context, ambulanceID string) (*LocationUpdate, error) {
	a, err := s.repo.GetByID(ctx, ambulanceID)
	if err != nil {
		return nil, err
	}

	lu, err := s.locations.LatestByAmbulance(ctx, ambulanceID)
	if errs.IsNotFound(err) {
		fallback := &LocationUpdate{
			AmbulanceID:  a.AmbulanceID,
			Latitude:     a.Latitude,
			Longitude:    a.Longitude,
			LocationName: a.CurrentLocation,
		}
		if a.LastLocationUpdate != nil {
			fallback.Timestamp = *a.LastLocationUpdate
		}
		return fallback, nil
	}
	if err != nil {
		return nil, err
	}
	return lu, nil
}

// LocationHistory returns position samples, newest first.
func (s *Service) LocationHistory(ctx context.Context, ambulanceID string, limit, offset int) ([]*LocationUpdate, int, error) {
	if _, err := s.repo.GetByID(ctx, ambulanceID); err != nil {
		return nil, 0, err
	}
	return s.locations.ListByAmbulance(ctx, ambulanceID, limit, offset)
}

func (s *Service) publish(eventType string, a *Ambulance) {
	payload := map[string]interface{}{
		"ambulance_id":    a.AmbulanceID,
		"status":          a.Status,
		"current_patient": a.CurrentPatient,
	}
	for _, topic := range []string{websocket.TopicFleet, websocket.AmbulanceTopic(a.AmbulanceID)} {
		ev := websocket.NewEvent(eventType, topic, a.AmbulanceID, payload)
		if err := s.events.Publish(context.Background(), ev); err != nil {
			s.log.Warn().Err(err).Str("ambulance_id", a.AmbulanceID).Msg("event publish failed")
		}
	}
}

func (s *Service) publishLocation(lu *LocationUpdate) {
	payload := map[string]interface{}{
		"ambulance_id": lu.AmbulanceID,
		"latitude":     lu.Latitude,
		"longitude":    lu.Longitude,
		"location":     lu.LocationName,
		"timestamp":    lu.Timestamp,
	}
	for _, topic := range []string{websocket.TopicFleet, websocket.AmbulanceTopic(lu.AmbulanceID)} {
		ev := websocket.NewEvent("location.updated", topic, lu.AmbulanceID, payload)
		if err := s.events.Publish(context.Background(), ev); err != nil {
			s.log.Warn().Err(err).Str("ambulance_id", lu.AmbulanceID).Msg("event publish failed")
		}
	}
}
