package fleet

import (
	"context"
	"errors"

	"github.com/google/uuid"
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

// =========== Ambulance Repository ===========

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const ambulanceCols = `ambulance_id, current_location, latitude, longitude, status, driver_name,
	driver_contact, ambulance_type, equipment, current_patient, destination,
	mission_complete, estimated_arrival, last_location_update`

func (r *repoPG) scanAmbulance(row pgx.Row) (*Ambulance, error) {
	var a Ambulance
	err := row.Scan(&a.AmbulanceID, &a.CurrentLocation, &a.Latitude, &a.Longitude, &a.Status, &a.DriverName,
		&a.DriverContact, &a.AmbulanceType, &a.Equipment, &a.CurrentPatient, &a.Destination,
		&a.MissionComplete, &a.EstimatedArrival, &a.LastLocationUpdate)
	return &a, err
}

func (r *repoPG) Upsert(ctx context.Context, a *Ambulance) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO ambulances (ambulance_id, current_location, latitude, longitude, status, driver_name,
			driver_contact, ambulance_type, equipment, current_patient, destination,
			mission_complete, estimated_arrival, last_location_update)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (ambulance_id) DO UPDATE SET
			current_location = EXCLUDED.current_location,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			driver_name = EXCLUDED.driver_name,
			driver_contact = EXCLUDED.driver_contact,
			ambulance_type = EXCLUDED.ambulance_type,
			equipment = EXCLUDED.equipment`,
		a.AmbulanceID, a.CurrentLocation, a.Latitude, a.Longitude, a.Status, a.DriverName,
		a.DriverContact, a.AmbulanceType, a.Equipment, a.CurrentPatient, a.Destination,
		a.MissionComplete, a.EstimatedArrival, a.LastLocationUpdate)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id string) (*Ambulance, error) {
	a, err := r.scanAmbulance(r.conn(ctx).QueryRow(ctx, `SELECT `+ambulanceCols+` FROM ambulances WHERE ambulance_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NotFound("ambulance", id)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *repoPG) Update(ctx context.Context, a *Ambulance) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE ambulances SET current_location=$2, latitude=$3, longitude=$4, status=$5,
			current_patient=$6, destination=$7, mission_complete=$8,
			estimated_arrival=$9, last_location_update=$10
		WHERE ambulance_id = $1`,
		a.AmbulanceID, a.CurrentLocation, a.Latitude, a.Longitude, a.Status,
		a.CurrentPatient, a.Destination, a.MissionComplete,
		a.EstimatedArrival, a.LastLocationUpdate)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Ambulance, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM ambulances`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+ambulanceCols+` FROM ambulances ORDER BY ambulance_id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Ambulance
	for rows.Next() {
		a, err := r.scanAmbulance(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Ambulance, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM ambulances WHERE status = $1`, status).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+ambulanceCols+` FROM ambulances WHERE status = $1 ORDER BY ambulance_id LIMIT $2 OFFSET $3`, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Ambulance
	for rows.Next() {
		a, err := r.scanAmbulance(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListAll(ctx context.Context) ([]*Ambulance, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+ambulanceCols+` FROM ambulances ORDER BY ambulance_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Ambulance
	for rows.Next() {
		a, err := r.scanAmbulance(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// =========== Location Repository ===========

type locationRepoPG struct{ pool *pgxpool.Pool }

func NewLocationRepoPG(pool *pgxpool.Pool) LocationRepository { return &locationRepoPG{pool: pool} }

func (r *locationRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const locationCols = `id, ambulance_id, latitude, longitude, location_name, patient_id, timestamp`

func (r *locationRepoPG) scanLocation(row pgx.Row) (*LocationUpdate, error) {
	var lu LocationUpdate
	err := row.Scan(&lu.ID, &lu.AmbulanceID, &lu.Latitude, &lu.Longitude, &lu.LocationName, &lu.PatientID, &lu.Timestamp)
	return &lu, err
}

func (r *locationRepoPG) Append(ctx context.Context, lu *LocationUpdate) error {
	lu.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO location_updates (id, ambulance_id, latitude, longitude, location_name, patient_id, timestamp)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		lu.ID, lu.AmbulanceID, lu.Latitude, lu.Longitude, lu.LocationName, lu.PatientID, lu.Timestamp)
	return err
}

func (r *locationRepoPG) LatestByAmbulance(ctx context.Context, ambulanceID string) (*LocationUpdate, error) {
	lu, err := r.scanLocation(r.conn(ctx).QueryRow(ctx,
		`SELECT `+locationCols+` FROM location_updates WHERE ambulance_id = $1 ORDER BY timestamp DESC LIMIT 1`, ambulanceID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NotFound("location update", ambulanceID)
	}
	if err != nil {
		return nil, err
	}
	return lu, nil
}

func (r *locationRepoPG) ListByAmbulance(ctx context.Context, ambulanceID string, limit, offset int) ([]*LocationUpdate, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM location_updates WHERE ambulance_id = $1`, ambulanceID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+locationCols+` FROM location_updates WHERE ambulance_id = $1 ORDER BY timestamp DESC LIMIT $2 OFFSET $3`,
		ambulanceID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*LocationUpdate
	for rows.Next() {
		lu, err := r.scanLocation(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, lu)
	}
	return items, total, rows.Err()
}
