package referral

import "context"

// Repository persists audit entries. Append-only: no update or delete.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	List(ctx context.Context, limit, offset int) ([]*Entry, int, error)
	ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*Entry, int, error)
}
