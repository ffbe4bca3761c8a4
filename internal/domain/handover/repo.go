package handover

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists handover forms. Append-only: no update or delete.
type Repository interface {
	Create(ctx context.Context, f *Form) error
	GetByID(ctx context.Context, id uuid.UUID) (*Form, error)
	List(ctx context.Context, limit, offset int) ([]*Form, int, error)
	ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*Form, int, error)
}
