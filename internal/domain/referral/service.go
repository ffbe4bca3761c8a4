package referral

import (
	"context"
	"time"

	"github.com/hoslink/hoslink/internal/errs"
)

// Service records and reads the assignment audit trail.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record appends an audit entry capturing the patient's status at the moment
// of the event. An empty ambulanceID records an event with no vehicle linked;
// an empty actor is stored as null.
func (s *Service) Record(ctx context.Context, patientID, ambulanceID, status, actor string) error {
	if patientID == "" {
		return errs.Validationf("patient id is required")
	}
	if status == "" {
		return errs.Validationf("status is required")
	}
	e := &Entry{
		PatientID: patientID,
		Status:    status,
		Timestamp: time.Now().UTC(),
	}
	if ambulanceID != "" {
		e.AmbulanceID = &ambulanceID
	}
	if actor != "" {
		e.CreatedBy = &actor
	}
	return s.repo.Create(ctx, e)
}

// List returns audit entries across all patients, newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*Entry, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// ListByPatient returns one patient's audit entries, newest first.
func (s *Service) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*Entry, int, error) {
	if patientID == "" {
		return nil, 0, errs.Validationf("patient id is required")
	}
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}
