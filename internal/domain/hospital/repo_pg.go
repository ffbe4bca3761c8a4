package hospital

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hoslink/hoslink/internal/errs"
	"github.com/hoslink/hoslink/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const hospitalCols = `facility_name, latitude, longitude, facility_type, capacity, ambulance_services, contact_number`

func scanHospital(row pgx.Row) (*Hospital, error) {
	var h Hospital
	err := row.Scan(&h.FacilityName, &h.Latitude, &h.Longitude, &h.FacilityType,
		&h.Capacity, &h.AmbulanceServices, &h.ContactNumber)
	return &h, err
}

func (r *repoPG) Upsert(ctx context.Context, h *Hospital) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO hospitals (facility_name, latitude, longitude, facility_type, capacity, ambulance_services, contact_number)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (facility_name) DO UPDATE SET
			latitude=EXCLUDED.latitude, longitude=EXCLUDED.longitude,
			facility_type=EXCLUDED.facility_type, capacity=EXCLUDED.capacity,
			ambulance_services=EXCLUDED.ambulance_services, contact_number=EXCLUDED.contact_number`,
		h.FacilityName, h.Latitude, h.Longitude, h.FacilityType,
		h.Capacity, h.AmbulanceServices, h.ContactNumber)
	return err
}

func (r *repoPG) GetByName(ctx context.Context, name string) (*Hospital, error) {
	h, err := scanHospital(r.conn(ctx).QueryRow(ctx,
		`SELECT `+hospitalCols+` FROM hospitals WHERE facility_name = $1`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NotFound("hospital", name)
	}
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Hospital, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM hospitals`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+hospitalCols+` FROM hospitals ORDER BY facility_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Hospital
	for rows.Next() {
		h, err := scanHospital(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, h)
	}
	return items, total, nil
}

func (r *repoPG) Names(ctx context.Context) ([]string, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT facility_name FROM hospitals ORDER BY facility_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}
