package hospital

import "context"

type Repository interface {
	Upsert(ctx context.Context, h *Hospital) error
	GetByName(ctx context.Context, name string) (*Hospital, error)
	List(ctx context.Context, limit, offset int) ([]*Hospital, int, error)
	Names(ctx context.Context) ([]string, error)
}
