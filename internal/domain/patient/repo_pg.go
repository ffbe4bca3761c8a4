package patient

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

const patientCols = `patient_id, name, age, condition, referring_hospital, receiving_hospital,
	referring_physician, receiving_physician, notes, vital_signs, medical_history,
	current_medications, allergies, referral_time, status, assigned_ambulance,
	created_by, updated_at, referring_hospital_lat, referring_hospital_lng,
	receiving_hospital_lat, receiving_hospital_lng`

func (r *repoPG) scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.PatientID, &p.Name, &p.Age, &p.Condition, &p.ReferringHospital, &p.ReceivingHospital,
		&p.ReferringPhysician, &p.ReceivingPhysician, &p.Notes, &p.VitalSigns, &p.MedicalHistory,
		&p.CurrentMedications, &p.Allergies, &p.ReferralTime, &p.Status, &p.AssignedAmbulance,
		&p.CreatedBy, &p.UpdatedAt, &p.ReferringHospitalLat, &p.ReferringHospitalLng,
		&p.ReceivingHospitalLat, &p.ReceivingHospitalLng)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	if p.PatientID == "" {
		p.PatientID = NewPatientID()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patients (patient_id, name, age, condition, referring_hospital, receiving_hospital,
			referring_physician, receiving_physician, notes, vital_signs, medical_history,
			current_medications, allergies, referral_time, status, assigned_ambulance,
			created_by, updated_at, referring_hospital_lat, referring_hospital_lng,
			receiving_hospital_lat, receiving_hospital_lng)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,NOW(),$18,$19,$20,$21)`,
		p.PatientID, p.Name, p.Age, p.Condition, p.ReferringHospital, p.ReceivingHospital,
		p.ReferringPhysician, p.ReceivingPhysician, p.Notes, p.VitalSigns, p.MedicalHistory,
		p.CurrentMedications, p.Allergies, p.ReferralTime, p.Status, p.AssignedAmbulance,
		p.CreatedBy, p.ReferringHospitalLat, p.ReferringHospitalLng,
		p.ReceivingHospitalLat, p.ReceivingHospitalLng)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id string) (*Patient, error) {
	p, err := r.scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE patient_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NotFound("patient", id)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET name=$2, age=$3, condition=$4, receiving_physician=$5, notes=$6,
			vital_signs=$7, medical_history=$8, current_medications=$9, allergies=$10,
			status=$11, assigned_ambulance=$12, updated_at=NOW()
		WHERE patient_id = $1`,
		p.PatientID, p.Name, p.Age, p.Condition, p.ReceivingPhysician, p.Notes,
		p.VitalSigns, p.MedicalHistory, p.CurrentMedications, p.Allergies,
		p.Status, p.AssignedAmbulance)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patients ORDER BY referral_time DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := r.scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients WHERE status = $1`, status).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patients WHERE status = $1 ORDER BY referral_time DESC LIMIT $2 OFFSET $3`, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := r.scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListByHospital(ctx context.Context, facility string, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients WHERE referring_hospital = $1 OR receiving_hospital = $1`, facility).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patients WHERE referring_hospital = $1 OR receiving_hospital = $1 ORDER BY referral_time DESC LIMIT $2 OFFSET $3`, facility, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := r.scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListAll(ctx context.Context) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patients ORDER BY referral_time DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := r.scanPatient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
