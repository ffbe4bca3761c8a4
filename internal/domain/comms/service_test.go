package comms

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hoslink/hoslink/internal/domain/patient"
	"github.com/hoslink/hoslink/internal/errs"
	"github.com/hoslink/hoslink/internal/platform/notification"
)

// -- Mock Repositories --

type mockMessageRepo struct {
	rows []*Message
}

func (m *mockMessageRepo) Create(_ context.Context, msg *Message) error {
	msg.ID = uuid.New()
	cp := *msg
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *mockMessageRepo) List(_ context.Context, limit, offset int) ([]*Message, int, error) {
	return page(m.rows, limit, offset)
}

func (m *mockMessageRepo) ListByPatient(_ context.Context, patientID string, limit, offset int) ([]*Message, int, error) {
	var matched []*Message
	for _, msg := range m.rows {
		if msg.PatientID != nil && *msg.PatientID == patientID {
			matched = append(matched, msg)
		}
	}
	return page(matched, limit, offset)
}

func (m *mockMessageRepo) ListByAmbulance(_ context.Context, ambulanceID string, limit, offset int) ([]*Message, int, error) {
	var matched []*Message
	for _, msg := range m.rows {
		if msg.AmbulanceID != nil && *msg.AmbulanceID == ambulanceID {
			matched = append(matched, msg)
		}
	}
	return page(matched, limit, offset)
}

func page(rows []*Message, limit, offset int) ([]*Message, int, error) {
	total := len(rows)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	items := make([]*Message, end-offset)
	for i := range items {
		cp := *rows[offset+i]
		items[i] = &cp
	}
	return items, total, nil
}

type mockReferrals struct {
	patients map[string]*patient.Patient
}

func (m *mockReferrals) Get(_ context.Context, patientID string) (*patient.Patient, error) {
	if patientID == "" {
		return nil, errs.Validationf("patient id is required")
	}
	p, ok := m.patients[patientID]
	if !ok {
		return nil, errs.NotFound("patient", patientID)
	}
	cp := *p
	return &cp, nil
}

type notifyCall struct {
	recipient string
	message   string
	kind      string
}

type mockAlertNotifier struct {
	calls []notifyCall
}

func (m *mockAlertNotifier) Notify(_ context.Context, recipient, message string, kind notification.Kind) bool {
	m.calls = append(m.calls, notifyCall{recipient, message, string(kind)})
	return true
}

func newTestService() (*Service, *mockMessageRepo, *mockAlertNotifier) {
	repo := &mockMessageRepo{}
	notifier := &mockAlertNotifier{}
	referrals := &mockReferrals{patients: map[string]*patient.Patient{
		"PAT1A2B3C4D": {
			PatientID:         "PAT1A2B3C4D",
			Name:              "John Doe",
			ReferringHospital: "Ahero Sub-County Hospital",
			ReceivingHospital: "Kisumu County Referral Hospital",
		},
	}}
	return NewService(repo, referrals, notifier, zerolog.Nop()), repo, notifier
}

// -- Tests --

func TestSend(t *testing.T) {
	svc, repo, _ := newTestService()

	m := &Message{
		Sender:      "Dr. Achieng",
		Receiver:    "Kisumu County Referral Hospital",
		Message:     "Patient history faxed over",
		MessageType: TypeHospitalHospital,
	}
	if err := svc.Send(context.Background(), m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(repo.rows))
	}
	if repo.rows[0].Timestamp.IsZero() {
		t.Error("expected a timestamp")
	}
}

func TestSend_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name string
		msg  Message
	}{
		{"missing sender", Message{Receiver: "JOOTRH", Message: "hi", MessageType: TypeSystem}},
		{"missing receiver", Message{Sender: "Driver", Message: "hi", MessageType: TypeSystem}},
		{"missing message", Message{Sender: "Driver", Receiver: "JOOTRH", MessageType: TypeSystem}},
		{"unknown type", Message{Sender: "Driver", Receiver: "JOOTRH", Message: "hi", MessageType: "fax"}},
		{"empty type", Message{Sender: "Driver", Receiver: "JOOTRH", Message: "hi"}},
	}
	for _, tc := range cases {
		msg := tc.msg
		if err := svc.Send(ctx, &msg); !errs.IsValidation(err) {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestAppend(t *testing.T) {
	svc, repo, _ := newTestService()

	err := svc.Append(context.Background(), "PAT1A2B3C4D", "KBA 453D", "Driver",
		"Kisumu County Referral Hospital", "Quick update: Patient condition is stable during transport", TypeDriverHospital)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := repo.rows[0]
	if m.PatientID == nil || *m.PatientID != "PAT1A2B3C4D" {
		t.Errorf("unexpected patient link: %v", m.PatientID)
	}
	if m.AmbulanceID == nil || *m.AmbulanceID != "KBA 453D" {
		t.Errorf("unexpected ambulance link: %v", m.AmbulanceID)
	}
}

func TestAppend_NoLinks(t *testing.T) {
	svc, repo, _ := newTestService()

	if err := svc.Append(context.Background(), "", "", "system", ControlCenter, "daily digest", TypeSystem); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := repo.rows[0]
	if m.PatientID != nil || m.AmbulanceID != nil {
		t.Errorf("expected null links, got %v / %v", m.PatientID, m.AmbulanceID)
	}
}

func TestEmergencyAlert(t *testing.T) {
	svc, repo, notifier := newTestService()

	sent, err := svc.EmergencyAlert(context.Background(), "PAT1A2B3C4D", "KBA 453D", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sent) != 3 || len(repo.rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(repo.rows))
	}

	wantText := "EMERGENCY: Ambulance KBA 453D requires immediate assistance!"
	wantReceivers := []string{"Ahero Sub-County Hospital", "Kisumu County Referral Hospital", ControlCenter}
	for i, m := range repo.rows {
		if m.Receiver != wantReceivers[i] {
			t.Errorf("row %d: expected receiver %q, got %q", i, wantReceivers[i], m.Receiver)
		}
		if m.Message != wantText {
			t.Errorf("row %d: unexpected message %q", i, m.Message)
		}
		if m.MessageType != TypeEmergency {
			t.Errorf("row %d: unexpected type %q", i, m.MessageType)
		}
		if m.Sender != "Driver" {
			t.Errorf("row %d: expected default sender Driver, got %q", i, m.Sender)
		}
	}

	if len(notifier.calls) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.calls))
	}
	call := notifier.calls[0]
	if call.recipient != ControlCenter || call.message != wantText || call.kind != "emergency" {
		t.Errorf("unexpected notification: %+v", call)
	}
}

func TestEmergencyAlert_UnknownPatient(t *testing.T) {
	svc, repo, notifier := newTestService()

	_, err := svc.EmergencyAlert(context.Background(), "PAT00000000", "KBA 453D", "driver")
	if !errs.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(repo.rows) != 0 {
		t.Errorf("expected no rows written, got %d", len(repo.rows))
	}
	if len(notifier.calls) != 0 {
		t.Errorf("expected no notifications, got %d", len(notifier.calls))
	}
}

func TestEmergencyAlert_MissingAmbulance(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.EmergencyAlert(context.Background(), "PAT1A2B3C4D", "", "driver"); !errs.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListByPatient(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.EmergencyAlert(ctx, "PAT1A2B3C4D", "KBA 453D", "driver"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Append(ctx, "", "", "system", ControlCenter, "digest", TypeSystem); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, total, err := svc.ListByPatient(ctx, "PAT1A2B3C4D", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Errorf("expected the 3 emergency rows, got total %d, page %d", total, len(items))
	}

	if _, _, err := svc.ListByPatient(ctx, "", 20, 0); !errs.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}
