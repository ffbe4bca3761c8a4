package fleet

import "context"

// Repository persists ambulance rows. The fleet is fixed: rows are
// upserted at seed time and updated in place, never deleted.
type Repository interface {
	Upsert(ctx context.Context, a *Ambulance) error
	GetByID(ctx context.Context, id string) (*Ambulance, error)
	Update(ctx context.Context, a *Ambulance) error
	List(ctx context.Context, limit, offset int) ([]*Ambulance, int, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Ambulance, int, error)
	ListAll(ctx context.Context) ([]*Ambulance, error)
}

// LocationRepository persists position samples. Append-only.
type LocationRepository interface {
	Append(ctx context.Context, lu *LocationUpdate) error
	LatestByAmbulance(ctx context.Context, ambulanceID string) (*LocationUpdate, error)
	ListByAmbulance(ctx context.Context, ambulanceID string, limit, offset int) ([]*LocationUpdate, int, error)
}
