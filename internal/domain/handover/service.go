package handover

import (
	"context"

	"github.com/google/uuid"
)

// Service exposes read access to completed handover forms. Creation goes
// through the patient service, which owns the completion state change.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Form, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Form, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*Form, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}
