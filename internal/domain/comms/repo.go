package comms

import "context"

// Repository persists the communications log. Append-only.
type Repository interface {
	Create(ctx context.Context, m *Message) error
	List(ctx context.Context, limit, offset int) ([]*Message, int, error)
	ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*Message, int, error)
	ListByAmbulance(ctx context.Context, ambulanceID string, limit, offset int) ([]*Message, int, error)
}
