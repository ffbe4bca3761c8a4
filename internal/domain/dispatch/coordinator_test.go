package dispatch

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hoslink/hoslink/internal/domain/fleet"
	"github.com/hoslink/hoslink/internal/domain/patient"
	"github.com/hoslink/hoslink/internal/errs"
	"github.com/hoslink/hoslink/internal/platform/notification"
	"github.com/hoslink/hoslink/internal/platform/websocket"
)

const (
	testPatientID = "PAT1A2B3C4D"
	testAmbulance = "KBA 453D"
	jootrh        = "Jaramogi Oginga Odinga Teaching & Referral Hospital"
	ahero         = "Ahero Sub-County Hospital"
)

// -- Mock Services --

type mockPatients struct {
	mu   sync.Mutex
	byID map[string]*patient.Patient
}

func (m *mockPatients) Get(_ context.Context, patientID string) (*patient.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[patientID]
	if !ok {
		return nil, errs.NotFound("patient", patientID)
	}
	cp := *p
	return &cp, nil
}

func (m *mockPatients) AssignAmbulance(_ context.Context, patientID, ambulanceID string) (*patient.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[patientID]
	if !ok {
		return nil, errs.NotFound("patient", patientID)
	}
	if !patient.CanTransition(p.Status, patient.StatusAssigned) {
		return nil, errs.InvalidState("patient", patientID, p.Status, "assign ambulance to")
	}
	p.AssignedAmbulance = &ambulanceID
	p.Status = patient.StatusAssigned
	cp := *p
	return &cp, nil
}

func (m *mockPatients) RevertAssignment(_ context.Context, patientID, prevStatus string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[patientID]
	if !ok {
		return errs.NotFound("patient", patientID)
	}
	p.Status = prevStatus
	p.AssignedAmbulance = nil
	return nil
}

func (m *mockPatients) Transition(_ context.Context, patientID, target string) (*patient.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[patientID]
	if !ok {
		return nil, errs.NotFound("patient", patientID)
	}
	if !patient.CanTransition(p.Status, target) {
		return nil, errs.InvalidState("patient", patientID, p.Status, "set status on")
	}
	p.Status = target
	cp := *p
	return &cp, nil
}

func (m *mockPatients) status(t *testing.T, patientID string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[patientID]
	if !ok {
		t.Fatalf("patient %s missing", patientID)
	}
	return p.Status
}

type mockFleet struct {
	mu       sync.Mutex
	byID     map[string]*fleet.Ambulance
	samples  []*fleet.LocationUpdate
	failNext int
	releases int
}

func (m *mockFleet) Get(_ context.Context, ambulanceID string) (*fleet.Ambulance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[ambulanceID]
	if !ok {
		return nil, errs.NotFound("ambulance", ambulanceID)
	}
	cp := *a
	return &cp, nil
}

func (m *mockFleet) Dispatch(_ context.Context, ambulanceID, patientID string) (*fleet.Ambulance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[ambulanceID]
	if !ok {
		return nil, errs.NotFound("ambulance", ambulanceID)
	}
	if a.Status != fleet.StatusAvailable {
		return nil, errs.AmbulanceUnavailable(ambulanceID, a.Status)
	}
	a.Status = fleet.StatusOnTransfer
	a.CurrentPatient = &patientID
	a.MissionComplete = false
	cp := *a
	return &cp, nil
}

func (m *mockFleet) SetRoute(_ context.Context, ambulanceID, destination string, eta *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[ambulanceID]
	if !ok {
		return errs.NotFound("ambulance", ambulanceID)
	}
	a.Destination = &destination
	a.EstimatedArrival = eta
	return nil
}

func (m *mockFleet) ReleaseIfCarrying(_ context.Context, ambulanceID, patientID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[ambulanceID]
	if !ok {
		return false, errs.NotFound("ambulance", ambulanceID)
	}
	if a.CurrentPatient == nil || *a.CurrentPatient != patientID {
		return false, nil
	}
	a.Status = fleet.StatusAvailable
	a.CurrentPatient = nil
	a.Destination = nil
	a.EstimatedArrival = nil
	a.MissionComplete = true
	m.releases++
	return true, nil
}

func (m *mockFleet) CurrentPosition(_ context.Context, ambulanceID string) (*fleet.LocationUpdate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[ambulanceID]
	if !ok {
		return nil, errs.NotFound("ambulance", ambulanceID)
	}
	for i := len(m.samples) - 1; i >= 0; i-- {
		if m.samples[i].AmbulanceID == ambulanceID {
			cp := *m.samples[i]
			return &cp, nil
		}
	}
	return &fleet.LocationUpdate{
		AmbulanceID:  ambulanceID,
		Latitude:     a.Latitude,
		Longitude:    a.Longitude,
		LocationName: a.CurrentLocation,
	}, nil
}

func (m *mockFleet) UpdateLocation(_ context.Context, ambulanceID string, lat, lng float64, label string, patientID *string) (*fleet.LocationUpdate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[ambulanceID]
	if !ok {
		return nil, errs.NotFound("ambulance", ambulanceID)
	}
	if m.failNext > 0 {
		m.failNext--
		return nil, fmt.Errorf("store unavailable")
	}
	lu := &fleet.LocationUpdate{
		AmbulanceID:  ambulanceID,
		Latitude:     lat,
		Longitude:    lng,
		LocationName: label,
		PatientID:    patientID,
		Timestamp:    time.Now().UTC(),
	}
	m.samples = append(m.samples, lu)
	a.Latitude = lat
	a.Longitude = lng
	a.CurrentLocation = label
	cp := *lu
	return &cp, nil
}

func (m *mockFleet) sampleCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.samples)
}

func (m *mockFleet) sampleLabels() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	labels := make([]string, 0, len(m.samples))
	for _, lu := range m.samples {
		labels = append(labels, lu.LocationName)
	}
	return labels
}

func (m *mockFleet) vehicle(t *testing.T, ambulanceID string) fleet.Ambulance {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[ambulanceID]
	if !ok {
		t.Fatalf("ambulance %s missing", ambulanceID)
	}
	return *a
}

func (m *mockFleet) releaseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.releases
}

type commRow struct {
	patientID, ambulanceID, sender, receiver, message, messageType string
}

type mockCommLog struct {
	mu   sync.Mutex
	rows []commRow
}

func (m *mockCommLog) Append(_ context.Context, patientID, ambulanceID, sender, receiver, message, messageType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, commRow{patientID, ambulanceID, sender, receiver, message, messageType})
	return nil
}

func (m *mockCommLog) byType(messageType string) []commRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []commRow
	for _, r := range m.rows {
		if r.messageType == messageType {
			out = append(out, r)
		}
	}
	return out
}

type auditRow struct {
	patientID, ambulanceID, status, actor string
}

type mockAuditLog struct {
	mu   sync.Mutex
	rows []auditRow
}

func (m *mockAuditLog) Record(_ context.Context, patientID, ambulanceID, status, actor string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, auditRow{patientID, ambulanceID, status, actor})
	return nil
}

type notifyCall struct {
	recipient, message string
	kind               notification.Kind
}

type mockNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
}

func (m *mockNotifier) Notify(_ context.Context, recipient, message string, kind notification.Kind) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, notifyCall{recipient, message, kind})
	return true
}

type fixture struct {
	coord    *Coordinator
	patients *mockPatients
	vehicles *mockFleet
	comms    *mockCommLog
	audit    *mockAuditLog
	notes    *mockNotifier
}

func fptr(f float64) *float64 { return &f }

func newFixture(opts Options) *fixture {
	patients := &mockPatients{byID: map[string]*patient.Patient{
		testPatientID: {
			PatientID:            testPatientID,
			Name:                 "Jane Achieng",
			Age:                  52,
			Condition:            "Cardiac Emergency",
			ReferringHospital:    ahero,
			ReceivingHospital:    jootrh,
			ReferringPhysician:   "Dr. Otieno",
			Status:               patient.StatusReferred,
			ReferringHospitalLat: fptr(-0.1743),
			ReferringHospitalLng: fptr(34.9169),
			ReceivingHospitalLat: fptr(-0.0754),
			ReceivingHospitalLng: fptr(34.7695),
		},
	}}
	vehicles := &mockFleet{byID: map[string]*fleet.Ambulance{
		testAmbulance: {
			AmbulanceID:     testAmbulance,
			CurrentLocation: ahero,
			Latitude:        -0.1743,
			Longitude:       34.9169,
			Status:          fleet.StatusAvailable,
			DriverName:      "John Omondi",
			DriverContact:   "+254712345678",
			AmbulanceType:   fleet.TypeAdvanced,
		},
		"KBC 217F": {
			AmbulanceID:     "KBC 217F",
			CurrentLocation: jootrh,
			Latitude:        -0.0754,
			Longitude:       34.7695,
			Status:          fleet.StatusAvailable,
			DriverName:      "Mary Achieng",
			DriverContact:   "+254712345679",
			AmbulanceType:   fleet.TypeBasic,
		},
	}}
	commLog := &mockCommLog{}
	audit := &mockAuditLog{}
	notes := &mockNotifier{}
	coord := NewCoordinator(patients, vehicles, commLog, audit, notes, websocket.NewHub(), opts, zerolog.Nop())
	return &fixture{coord: coord, patients: patients, vehicles: vehicles, comms: commLog, audit: audit, notes: notes}
}

func fastOptions() Options {
	return Options{Steps: 20, Tick: time.Millisecond, AutoStatus: true}
}

func slowOptions() Options {
	return Options{Steps: 20, Tick: time.Hour, AutoStatus: true}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

// -- Assignment --

func TestAssign(t *testing.T) {
	f := newFixture(slowOptions())

	p, err := f.coord.Assign(context.Background(), testPatientID, testAmbulance, "nurse.jootrh")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != patient.StatusAssigned {
		t.Errorf("expected %q, got %q", patient.StatusAssigned, p.Status)
	}
	if p.AssignedAmbulance == nil || *p.AssignedAmbulance != testAmbulance {
		t.Errorf("expected ambulance link, got %v", p.AssignedAmbulance)
	}

	a := f.vehicles.vehicle(t, testAmbulance)
	if a.Status != fleet.StatusOnTransfer {
		t.Errorf("expected %q, got %q", fleet.StatusOnTransfer, a.Status)
	}
	if a.CurrentPatient == nil || *a.CurrentPatient != testPatientID {
		t.Errorf("expected patient link, got %v", a.CurrentPatient)
	}

	if len(f.audit.rows) != 1 {
		t.Fatalf("expected 1 audit row, got %d", len(f.audit.rows))
	}
	row := f.audit.rows[0]
	if row.patientID != testPatientID || row.ambulanceID != testAmbulance ||
		row.status != patient.StatusAssigned || row.actor != "nurse.jootrh" {
		t.Errorf("unexpected audit row: %+v", row)
	}

	if len(f.notes.calls) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(f.notes.calls))
	}
	if call := f.notes.calls[0]; call.recipient != jootrh || call.kind != notification.KindDispatch {
		t.Errorf("unexpected notification: %+v", call)
	}
}

func TestAssign_RollbackOnUnavailable(t *testing.T) {
	f := newFixture(slowOptions())
	busy := "PAT99999999"
	f.vehicles.byID[testAmbulance].Status = fleet.StatusOnTransfer
	f.vehicles.byID[testAmbulance].CurrentPatient = &busy

	_, err := f.coord.Assign(context.Background(), testPatientID, testAmbulance, "nurse.jootrh")
	if !errs.IsAmbulanceUnavailable(err) {
		t.Fatalf("expected ambulance unavailable, got %v", err)
	}

	p, err := f.patients.Get(context.Background(), testPatientID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != patient.StatusReferred {
		t.Errorf("expected status restored to %q, got %q", patient.StatusReferred, p.Status)
	}
	if p.AssignedAmbulance != nil {
		t.Errorf("expected ambulance link cleared, got %v", p.AssignedAmbulance)
	}

	a := f.vehicles.vehicle(t, testAmbulance)
	if a.CurrentPatient == nil || *a.CurrentPatient != busy {
		t.Errorf("expected original mission untouched, got %v", a.CurrentPatient)
	}
	if len(f.audit.rows) != 0 || len(f.notes.calls) != 0 {
		t.Errorf("expected no audit or notifications after rollback")
	}
}

func TestAssign_RollbackOnMissingAmbulance(t *testing.T) {
	f := newFixture(slowOptions())

	_, err := f.coord.Assign(context.Background(), testPatientID, "KXX 000A", "nurse.jootrh")
	if !errs.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	p, err := f.patients.Get(context.Background(), testPatientID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != patient.StatusReferred || p.AssignedAmbulance != nil {
		t.Errorf("expected pre-assign state, got %q %v", p.Status, p.AssignedAmbulance)
	}
}

func TestAssign_PatientNotFound(t *testing.T) {
	f := newFixture(slowOptions())

	if _, err := f.coord.Assign(context.Background(), "PAT404", testAmbulance, ""); !errs.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

// -- Mission flow --

func TestAcceptMission(t *testing.T) {
	f := newFixture(fastOptions())
	ctx := context.Background()
	if _, err := f.coord.Assign(ctx, testPatientID, testAmbulance, "nurse.jootrh"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := f.coord.AcceptMission(ctx, testAmbulance, "driver.omondi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != patient.StatusDispatched {
		t.Errorf("expected %q, got %q", patient.StatusDispatched, p.Status)
	}

	a := f.vehicles.vehicle(t, testAmbulance)
	if a.Destination == nil || *a.Destination != jootrh {
		t.Errorf("expected route to %q, got %v", jootrh, a.Destination)
	}
	if a.EstimatedArrival == nil {
		t.Error("expected an arrival estimate")
	}

	system := f.comms.byType("system")
	if len(system) != 2 {
		t.Fatalf("expected 2 system messages, got %d", len(system))
	}
	if system[0].receiver != ahero || system[1].receiver != jootrh {
		t.Errorf("unexpected receivers: %+v", system)
	}

	// The simulator walks the full route and releases the vehicle.
	waitFor(t, func() bool {
		return f.vehicles.vehicle(t, testAmbulance).Status == fleet.StatusAvailable
	})
	if got := f.vehicles.sampleCount(); got != 21 {
		t.Errorf("expected 21 samples, got %d", got)
	}

	labels := f.vehicles.sampleLabels()
	if labels[0] != "En route - Step 0/20" || labels[len(labels)-1] != "En route - Step 20/20" {
		t.Errorf("unexpected labels: first %q last %q", labels[0], labels[len(labels)-1])
	}

	a = f.vehicles.vehicle(t, testAmbulance)
	if a.CurrentPatient != nil || !a.MissionComplete {
		t.Errorf("expected released vehicle, got %+v", a)
	}
	waitFor(t, func() bool {
		return f.patients.status(t, testPatientID) == patient.StatusArrived
	})
}

func TestAcceptMission_RouteEndpoints(t *testing.T) {
	f := newFixture(fastOptions())
	ctx := context.Background()
	if _, err := f.coord.Assign(ctx, testPatientID, testAmbulance, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.coord.AcceptMission(ctx, testAmbulance, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	waitFor(t, func() bool { return f.vehicles.sampleCount() == 21 })

	f.vehicles.mu.Lock()
	first, last := f.vehicles.samples[0], f.vehicles.samples[20]
	f.vehicles.mu.Unlock()
	if first.Latitude != -0.1743 || first.Longitude != 34.9169 {
		t.Errorf("expected start at the ambulance position, got (%v, %v)", first.Latitude, first.Longitude)
	}
	if !almostEqual(last.Latitude, -0.0754) || !almostEqual(last.Longitude, 34.7695) {
		t.Errorf("expected end at the receiving hospital, got (%v, %v)", last.Latitude, last.Longitude)
	}
	if first.PatientID == nil || *first.PatientID != testPatientID {
		t.Errorf("expected samples tagged with the patient, got %v", first.PatientID)
	}
}

func TestAcceptMission_RequiresDispatch(t *testing.T) {
	f := newFixture(slowOptions())

	_, err := f.coord.AcceptMission(context.Background(), testAmbulance, "driver.omondi")
	if !errs.IsInvalidState(err) {
		t.Fatalf("expected invalid state, got %v", err)
	}
}

func TestAcceptMission_NoAutoStatus(t *testing.T) {
	f := newFixture(Options{Steps: 5, Tick: time.Millisecond, AutoStatus: false})
	ctx := context.Background()
	if _, err := f.coord.Assign(ctx, testPatientID, testAmbulance, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := f.coord.AcceptMission(ctx, testAmbulance, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != patient.StatusAssigned {
		t.Errorf("expected status untouched, got %q", p.Status)
	}

	waitFor(t, func() bool {
		return f.vehicles.vehicle(t, testAmbulance).Status == fleet.StatusAvailable
	})
	// With the policy off the journey is driven manually.
	if got := f.patients.status(t, testPatientID); got != patient.StatusAssigned {
		t.Errorf("expected status untouched after the route, got %q", got)
	}
}

func TestCompleteMission(t *testing.T) {
	f := newFixture(slowOptions())
	ctx := context.Background()
	if _, err := f.coord.Assign(ctx, testPatientID, testAmbulance, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.coord.AcceptMission(ctx, testAmbulance, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := f.coord.CompleteMission(ctx, testAmbulance, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != patient.StatusArrived {
		t.Errorf("expected %q, got %q", patient.StatusArrived, p.Status)
	}

	a := f.vehicles.vehicle(t, testAmbulance)
	if a.Status != fleet.StatusAvailable || a.CurrentPatient != nil || !a.MissionComplete {
		t.Errorf("expected released vehicle, got %+v", a)
	}

	arrivals := f.comms.byType("arrival_notification")
	if len(arrivals) != 2 {
		t.Fatalf("expected 2 arrival messages, got %d", len(arrivals))
	}
	wantText := "Patient Jane Achieng has arrived via ambulance KBA 453D"
	if arrivals[0].message != wantText || arrivals[0].sender != "Driver" {
		t.Errorf("unexpected arrival row: %+v", arrivals[0])
	}
	if arrivals[0].receiver != ahero || arrivals[1].receiver != jootrh {
		t.Errorf("unexpected receivers: %+v", arrivals)
	}

	last := f.notes.calls[len(f.notes.calls)-1]
	if last.recipient != jootrh || last.kind != notification.KindArrival || last.message != wantText {
		t.Errorf("unexpected notification: %+v", last)
	}

	if got := f.vehicles.releaseCount(); got != 1 {
		t.Errorf("expected exactly one release, got %d", got)
	}
}

func TestCompleteMission_NoMission(t *testing.T) {
	f := newFixture(slowOptions())

	_, err := f.coord.CompleteMission(context.Background(), testAmbulance, "")
	if !errs.IsInvalidState(err) {
		t.Fatalf("expected invalid state, got %v", err)
	}
}

func TestCompleteMission_AfterNaturalFinish(t *testing.T) {
	f := newFixture(Options{Steps: 5, Tick: time.Millisecond, AutoStatus: true})
	ctx := context.Background()
	if _, err := f.coord.Assign(ctx, testPatientID, testAmbulance, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.coord.AcceptMission(ctx, testAmbulance, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitFor(t, func() bool {
		return f.vehicles.vehicle(t, testAmbulance).Status == fleet.StatusAvailable
	})

	// The mission is gone, so a late confirmation has nothing to complete.
	if _, err := f.coord.CompleteMission(ctx, testAmbulance, ""); !errs.IsInvalidState(err) {
		t.Fatalf("expected invalid state, got %v", err)
	}
	if got := f.vehicles.releaseCount(); got != 1 {
		t.Errorf("expected exactly one release, got %d", got)
	}
}

func TestCompleteMission_RacingSimulator(t *testing.T) {
	f := newFixture(fastOptions())
	ctx := context.Background()
	if _, err := f.coord.Assign(ctx, testPatientID, testAmbulance, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.coord.AcceptMission(ctx, testAmbulance, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	_, err := f.coord.CompleteMission(ctx, testAmbulance, "")
	if err != nil && !errs.IsInvalidState(err) {
		t.Fatalf("unexpected error: %v", err)
	}

	waitFor(t, func() bool {
		return f.vehicles.vehicle(t, testAmbulance).Status == fleet.StatusAvailable
	})
	f.coord.Shutdown()

	// Whichever side won, the vehicle was released exactly once.
	if got := f.vehicles.releaseCount(); got != 1 {
		t.Errorf("expected exactly one release, got %d", got)
	}
	if got := f.patients.status(t, testPatientID); got != patient.StatusArrived {
		t.Errorf("expected %q, got %q", patient.StatusArrived, got)
	}
}

func TestCancelMission(t *testing.T) {
	f := newFixture(slowOptions())
	ctx := context.Background()
	if _, err := f.coord.Assign(ctx, testPatientID, testAmbulance, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.coord.AcceptMission(ctx, testAmbulance, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitFor(t, func() bool { return f.vehicles.sampleCount() >= 1 })

	if !f.coord.CancelMission(ctx, testAmbulance) {
		t.Fatal("expected a running simulation")
	}
	written := f.vehicles.sampleCount()
	time.Sleep(20 * time.Millisecond)
	if got := f.vehicles.sampleCount(); got != written {
		t.Errorf("expected no writes after cancel, got %d more", got-written)
	}

	// Cancel stops the movement only; the mission state is untouched.
	a := f.vehicles.vehicle(t, testAmbulance)
	if a.Status != fleet.StatusOnTransfer || a.CurrentPatient == nil {
		t.Errorf("expected mission left in place, got %+v", a)
	}
	if got := f.patients.status(t, testPatientID); got != patient.StatusDispatched {
		t.Errorf("expected %q, got %q", patient.StatusDispatched, got)
	}

	if f.coord.CancelMission(ctx, testAmbulance) {
		t.Error("expected no simulation on second cancel")
	}
}

func TestSimulator_WriteFailureRetries(t *testing.T) {
	f := newFixture(fastOptions())
	ctx := context.Background()
	if _, err := f.coord.Assign(ctx, testPatientID, testAmbulance, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.vehicles.mu.Lock()
	f.vehicles.failNext = 3
	f.vehicles.mu.Unlock()
	if _, err := f.coord.AcceptMission(ctx, testAmbulance, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	waitFor(t, func() bool {
		return f.vehicles.vehicle(t, testAmbulance).Status == fleet.StatusAvailable
	})
	labels := f.vehicles.sampleLabels()
	if len(labels) != 21 {
		t.Fatalf("expected 21 samples despite failures, got %d", len(labels))
	}
	for i, label := range labels {
		if want := fmt.Sprintf("En route - Step %d/20", i); label != want {
			t.Fatalf("expected %q at %d, got %q", want, i, label)
		}
	}
}

func TestShutdown_StopsSimulations(t *testing.T) {
	f := newFixture(slowOptions())
	ctx := context.Background()
	if _, err := f.coord.Assign(ctx, testPatientID, testAmbulance, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.coord.AcceptMission(ctx, testAmbulance, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitFor(t, func() bool { return f.vehicles.sampleCount() >= 1 })

	done := make(chan struct{})
	go func() {
		f.coord.Shutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown did not finish")
	}

	// Shutdown interrupts movement but never completes missions.
	a := f.vehicles.vehicle(t, testAmbulance)
	if a.Status != fleet.StatusOnTransfer {
		t.Errorf("expected mission left in place, got %q", a.Status)
	}
	if got := f.vehicles.releaseCount(); got != 0 {
		t.Errorf("expected no releases, got %d", got)
	}
}
