package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hoslink/hoslink/internal/domain/handover"
	"github.com/hoslink/hoslink/internal/domain/hospital"
	"github.com/hoslink/hoslink/internal/errs"
	"github.com/hoslink/hoslink/internal/platform/keylock"
	"github.com/hoslink/hoslink/internal/platform/metrics"
	"github.com/hoslink/hoslink/internal/platform/notification"
	"github.com/hoslink/hoslink/internal/platform/websocket"
)

// Facilities resolves referral endpoints against the facility registry.
type Facilities interface {
	Get(ctx context.Context, name string) (*hospital.Hospital, error)
}

// AuditLog appends immutable referral audit rows. An empty ambulanceID
// records an unassigned referral.
type AuditLog interface {
	Record(ctx context.Context, patientID, ambulanceID, status, actor string) error
}

// CommLog appends rows to the communications log.
type CommLog interface {
	Append(ctx context.Context, patientID, ambulanceID, sender, receiver, message, messageType string) error
}

// HandoverStore persists completed handover forms.
type HandoverStore interface {
	Create(ctx context.Context, f *handover.Form) error
}

// Notifier delivers out-of-band notifications to facilities.
type Notifier interface {
	Notify(ctx context.Context, recipient, message string, kind notification.Kind) bool
}

// Service owns the referral lifecycle: creation, status progression,
// handover completion and vitals recording. Assignment runs through the
// dispatch coordinator, which calls the assignment half here. Every
// read-modify-write takes the patient's keyed lock so concurrent status and
// vitals updates serialize per record.
type Service struct {
	repo      Repository
	registry  Facilities
	audit     AuditLog
	comms     CommLog
	handovers HandoverStore
	notifier  Notifier
	locks     *keylock.Keyed
	events    websocket.EventPublisher
	log       zerolog.Logger
}

func NewService(repo Repository, registry Facilities, audit AuditLog, comms CommLog,
	handovers HandoverStore, notifier Notifier, locks *keylock.Keyed,
	events websocket.EventPublisher, log zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		registry:  registry,
		audit:     audit,
		comms:     comms,
		handovers: handovers,
		notifier:  notifier,
		locks:     locks,
		events:    events,
		log:       log,
	}
}

// Create validates and persists a new referral. The patient starts in
// Referred with no ambulance; assignment is a separate coordinator step.
func (s *Service) Create(ctx context.Context, p *Patient) error {
	if p.Name == "" {
		return errs.Validationf("patient name is required")
	}
	if p.Age <= 0 {
		return errs.Validationf("patient age must be positive")
	}
	if p.Condition == "" {
		return errs.Validationf("condition is required")
	}
	if p.ReferringPhysician == "" {
		return errs.Validationf("referring physician is required")
	}
	if p.ReferringHospital == "" {
		return errs.Validationf("referring hospital is required")
	}
	if p.ReceivingHospital == "" {
		return errs.Validationf("receiving hospital is required")
	}
	if p.ReferringHospital == p.ReceivingHospital {
		return errs.Validationf("referring and receiving hospital must differ")
	}

	ref, err := s.registry.Get(ctx, p.ReferringHospital)
	if err != nil {
		if errs.IsNotFound(err) {
			return errs.Validationf("unknown referring hospital %q", p.ReferringHospital)
		}
		return err
	}
	recv, err := s.registry.Get(ctx, p.ReceivingHospital)
	if err != nil {
		if errs.IsNotFound(err) {
			return errs.Validationf("unknown receiving hospital %q", p.ReceivingHospital)
		}
		return err
	}
	p.ReferringHospitalLat, p.ReferringHospitalLng = &ref.Latitude, &ref.Longitude
	p.ReceivingHospitalLat, p.ReceivingHospitalLng = &recv.Latitude, &recv.Longitude

	p.Status = StatusReferred
	p.AssignedAmbulance = nil
	if p.ReferralTime.IsZero() {
		p.ReferralTime = time.Now().UTC()
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	metrics.ReferralsCreatedTotal.Inc()

	if err := s.audit.Record(ctx, p.PatientID, "", p.Status, strVal(p.CreatedBy)); err != nil {
		s.log.Warn().Err(err).Str("patient_id", p.PatientID).Msg("referral audit write failed")
	}
	s.notifier.Notify(ctx, p.ReceivingHospital,
		fmt.Sprintf("New patient referral: %s - %s", p.Name, p.Condition), notification.KindReferral)
	s.publish("referral.created", p)
	return nil
}

func (s *Service) Get(ctx context.Context, patientID string) (*Patient, error) {
	if patientID == "" {
		return nil, errs.Validationf("patient id is required")
	}
	return s.repo.GetByID(ctx, patientID)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Patient, int, error) {
	if !ValidStatus(status) {
		return nil, 0, errs.Validationf("unknown status %q", status)
	}
	return s.repo.ListByStatus(ctx, status, limit, offset)
}

func (s *Service) ListByHospital(ctx context.Context, facility string, limit, offset int) ([]*Patient, int, error) {
	return s.repo.ListByHospital(ctx, facility, limit, offset)
}

// All returns the whole referral collection, newest first. Used by the
// analytics and export snapshots, which aggregate over every row.
func (s *Service) All(ctx context.Context) ([]*Patient, error) {
	return s.repo.ListAll(ctx)
}

// Transition moves a referral forward along the journey. The target must be
// strictly later than the current status; skipping intermediate states is
// allowed, moving backward or revisiting is not.
func (s *Service) Transition(ctx context.Context, patientID, target string) (*Patient, error) {
	if !ValidStatus(target) {
		return nil, errs.Validationf("unknown status %q", target)
	}

	s.locks.Lock(patientID)
	defer s.locks.Unlock(patientID)

	p, err := s.repo.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(p.Status, target) {
		return nil, errs.InvalidState("patient", patientID, p.Status, fmt.Sprintf("set status %q on", target))
	}
	p.Status = target
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.publish("status.changed", p)
	return p, nil
}

// AssignAmbulance performs the patient-side half of an assignment. Callers
// go through the dispatch coordinator, which owns the fleet-side half and
// rolls this back when that half fails.
func (s *Service) AssignAmbulance(ctx context.Context, patientID, ambulanceID string) (*Patient, error) {
	if ambulanceID == "" {
		return nil, errs.Validationf("ambulance id is required")
	}

	s.locks.Lock(patientID)
	defer s.locks.Unlock(patientID)

	p, err := s.repo.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(p.Status, StatusAssigned) {
		return nil, errs.InvalidState("patient", patientID, p.Status, fmt.Sprintf("assign ambulance %s to", ambulanceID))
	}
	p.AssignedAmbulance = &ambulanceID
	p.Status = StatusAssigned
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// RevertAssignment is the compensating write for a failed assignment: the
// status returns to its pre-assign value and the ambulance link is cleared.
func (s *Service) RevertAssignment(ctx context.Context, patientID, prevStatus string) error {
	s.locks.Lock(patientID)
	defer s.locks.Unlock(patientID)

	p, err := s.repo.GetByID(ctx, patientID)
	if err != nil {
		return err
	}
	p.Status = prevStatus
	p.AssignedAmbulance = nil
	return s.repo.Update(ctx, p)
}

// HandoverInput carries the fields captured at the receiving bedside.
type HandoverInput struct {
	ReceivingPhysician string            `json:"receiving_physician"`
	VitalSigns         map[string]string `json:"vital_signs"`
	Notes              string            `json:"notes"`
	Actor              string            `json:"-"`
}

// CompleteHandover writes the immutable handover form and closes the
// referral. Requires the patient to have arrived; on a state or validation
// failure the patient record is untouched.
func (s *Service) CompleteHandover(ctx context.Context, patientID string, in HandoverInput) (*handover.Form, error) {
	if in.ReceivingPhysician == "" {
		return nil, errs.Validationf("receiving physician is required")
	}

	s.locks.Lock(patientID)
	defer s.locks.Unlock(patientID)

	p, err := s.repo.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusArrived {
		return nil, errs.InvalidState("patient", patientID, p.Status, "complete handover for")
	}

	form := &handover.Form{
		PatientID:          p.PatientID,
		PatientName:        p.Name,
		Condition:          &p.Condition,
		ReferringHospital:  p.ReferringHospital,
		ReceivingHospital:  p.ReceivingHospital,
		ReferringPhysician: &p.ReferringPhysician,
		ReceivingPhysician: &in.ReceivingPhysician,
		VitalSigns:         in.VitalSigns,
		AmbulanceID:        p.AssignedAmbulance,
		TransferTime:       time.Now().UTC(),
	}
	if in.Notes != "" {
		form.Notes = &in.Notes
	}
	if in.Actor != "" {
		form.CreatedBy = &in.Actor
	}
	if err := s.handovers.Create(ctx, form); err != nil {
		return nil, err
	}

	p.ReceivingPhysician = &in.ReceivingPhysician
	p.Status = StatusCompleted
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.publish("status.changed", p)
	return form, nil
}

// RecordVitals overwrites the patient's vitals snapshot and announces the
// reading to both facilities on the referral.
func (s *Service) RecordVitals(ctx context.Context, patientID string, vitals map[string]string, actor string) (*Patient, error) {
	if len(vitals) == 0 {
		return nil, errs.Validationf("vital signs are required")
	}

	s.locks.Lock(patientID)
	defer s.locks.Unlock(patientID)

	p, err := s.repo.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	p.VitalSigns = vitals
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Vitals updated: BP %s, HR %sbpm, SpO2 %s%%",
		vitals[handover.VitalBloodPressure], vitals[handover.VitalHeartRate], vitals[handover.VitalOxygenSaturation])
	for _, facility := range []string{p.ReferringHospital, p.ReceivingHospital} {
		if err := s.comms.Append(ctx, p.PatientID, strVal(p.AssignedAmbulance), actor, facility, msg, "vitals_update"); err != nil {
			s.log.Warn().Err(err).Str("patient_id", p.PatientID).Msg("vitals communication write failed")
		}
	}
	return p, nil
}

func (s *Service) publish(eventType string, p *Patient) {
	ev := websocket.NewEvent(eventType, websocket.TopicReferrals, p.PatientID, map[string]interface{}{
		"patient_id": p.PatientID,
		"status":     p.Status,
		"progress":   Progress(p.Status),
	})
	if err := s.events.Publish(context.Background(), ev); err != nil {
		s.log.Warn().Err(err).Str("patient_id", p.PatientID).Msg("event publish failed")
	}
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
