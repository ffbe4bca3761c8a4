package comms

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hoslink/hoslink/internal/domain/patient"
	"github.com/hoslink/hoslink/internal/errs"
	"github.com/hoslink/hoslink/internal/platform/notification"
)

// Referrals resolves the hospitals on a mission.
type Referrals interface {
	Get(ctx context.Context, patientID string) (*patient.Patient, error)
}

// Notifier raises the out-of-band alert paired with an emergency broadcast.
type Notifier interface {
	Notify(ctx context.Context, recipient, message string, kind notification.Kind) bool
}

// Service owns the communications log shared by drivers and hospital desks.
type Service struct {
	repo      Repository
	referrals Referrals
	notifier  Notifier
	log       zerolog.Logger
}

func NewService(repo Repository, referrals Referrals, notifier Notifier, log zerolog.Logger) *Service {
	return &Service{repo: repo, referrals: referrals, notifier: notifier, log: log}
}

// Send validates and appends one message.
func (s *Service) Send(ctx context.Context, m *Message) error {
	if m.Sender == "" {
		return errs.Validationf("sender is required")
	}
	if m.Receiver == "" {
		return errs.Validationf("receiver is required")
	}
	if m.Message == "" {
		return errs.Validationf("message is required")
	}
	if !ValidType(m.MessageType) {
		return errs.Validationf("unknown message type %q", m.MessageType)
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	return s.repo.Create(ctx, m)
}

// Append writes a pipeline-generated row. Empty patient and ambulance ids
// are stored as null. Satisfies the patient service's communications hook.
func (s *Service) Append(ctx context.Context, patientID, ambulanceID, sender, receiver, message, messageType string) error {
	m := &Message{
		Sender:      sender,
		Receiver:    receiver,
		Message:     message,
		MessageType: messageType,
	}
	if patientID != "" {
		m.PatientID = &patientID
	}
	if ambulanceID != "" {
		m.AmbulanceID = &ambulanceID
	}
	return s.Send(ctx, m)
}

// EmergencyAlert fans the canonical distress message out to both hospitals
// on the mission and the control center, then raises the emergency
// notification. Returns the appended rows.
func (s *Service) EmergencyAlert(ctx context.Context, patientID, ambulanceID, sender string) ([]*Message, error) {
	if ambulanceID == "" {
		return nil, errs.Validationf("ambulance id is required")
	}
	p, err := s.referrals.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if sender == "" {
		sender = "Driver"
	}

	text := fmt.Sprintf("EMERGENCY: Ambulance %s requires immediate assistance!", ambulanceID)
	recipients := []string{p.ReferringHospital, p.ReceivingHospital, ControlCenter}
	sent := make([]*Message, 0, len(recipients))
	for _, recipient := range recipients {
		m := &Message{
			PatientID:   &p.PatientID,
			AmbulanceID: &ambulanceID,
			Sender:      sender,
			Receiver:    recipient,
			Message:     text,
			MessageType: TypeEmergency,
			Timestamp:   time.Now().UTC(),
		}
		if err := s.repo.Create(ctx, m); err != nil {
			return sent, err
		}
		sent = append(sent, m)
	}

	s.notifier.Notify(ctx, ControlCenter, text, notification.KindEmergency)
	s.log.Warn().Str("ambulance_id", ambulanceID).Str("patient_id", p.PatientID).Msg("emergency alert raised")
	return sent, nil
}

// List returns log rows across all missions, newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*Message, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// ListByPatient returns one patient's rows, newest first.
func (s *Service) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*Message, int, error) {
	if patientID == "" {
		return nil, 0, errs.Validationf("patient id is required")
	}
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

// ListByAmbulance returns one vehicle's rows, newest first.
func (s *Service) ListByAmbulance(ctx context.Context, ambulanceID string, limit, offset int) ([]*Message, int, error) {
	if ambulanceID == "" {
		return nil, 0, errs.Validationf("ambulance id is required")
	}
	return s.repo.ListByAmbulance(ctx, ambulanceID, limit, offset)
}
