// Package dispatch coordinates referrals and the ambulance fleet: the
// two-sided assignment contract, driver mission flow, and the simulated
// movement that feeds live tracking.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hoslink/hoslink/internal/domain/analytics"
	"github.com/hoslink/hoslink/internal/domain/comms"
	"github.com/hoslink/hoslink/internal/domain/fleet"
	"github.com/hoslink/hoslink/internal/domain/patient"
	"github.com/hoslink/hoslink/internal/errs"
	"github.com/hoslink/hoslink/internal/platform/metrics"
	"github.com/hoslink/hoslink/internal/platform/notification"
	"github.com/hoslink/hoslink/internal/platform/websocket"
)

// Referrals is the patient-side surface the coordinator drives.
type Referrals interface {
	Get(ctx context.Context, patientID string) (*patient.Patient, error)
	AssignAmbulance(ctx context.Context, patientID, ambulanceID string) (*patient.Patient, error)
	RevertAssignment(ctx context.Context, patientID, prevStatus string) error
	Transition(ctx context.Context, patientID, target string) (*patient.Patient, error)
}

// Fleet is the ambulance-side surface the coordinator drives.
type Fleet interface {
	Get(ctx context.Context, ambulanceID string) (*fleet.Ambulance, error)
	Dispatch(ctx context.Context, ambulanceID, patientID string) (*fleet.Ambulance, error)
	SetRoute(ctx context.Context, ambulanceID, destination string, eta *time.Time) error
	ReleaseIfCarrying(ctx context.Context, ambulanceID, patientID string) (bool, error)
	CurrentPosition(ctx context.Context, ambulanceID string) (*fleet.LocationUpdate, error)
	UpdateLocation(ctx context.Context, ambulanceID string, lat, lng float64, label string, patientID *string) (*fleet.LocationUpdate, error)
}

// CommLog appends rows to the communications log.
type CommLog interface {
	Append(ctx context.Context, patientID, ambulanceID, sender, receiver, message, messageType string) error
}

// AuditLog appends immutable referral audit rows.
type AuditLog interface {
	Record(ctx context.Context, patientID, ambulanceID, status, actor string) error
}

// Notifier delivers out-of-band notifications to facilities.
type Notifier interface {
	Notify(ctx context.Context, recipient, message string, kind notification.Kind) bool
}

// Options configure mission behavior.
type Options struct {
	// Steps is the number of route segments per simulated transfer.
	Steps int
	// Tick is the delay between position samples.
	Tick time.Duration
	// AutoStatus moves the patient along the journey as the mission
	// progresses (Ambulance Dispatched on accept, Arrived at Destination
	// on end of route).
	AutoStatus bool
}

// Coordinator owns cross-entity mission flow. Assignment writes both the
// patient and the ambulance; when the fleet side fails the patient side is
// compensated, so no partial assignment is ever observable.
type Coordinator struct {
	patients   Referrals
	fleet      Fleet
	comms      CommLog
	audit      AuditLog
	notifier   Notifier
	events     websocket.EventPublisher
	sim        *simulator
	super      *supervisor
	autoStatus bool
	log        zerolog.Logger
}

func NewCoordinator(patients Referrals, vehicles Fleet, commLog CommLog, audit AuditLog,
	notifier Notifier, events websocket.EventPublisher, opts Options, log zerolog.Logger) *Coordinator {
	if opts.Steps <= 0 {
		opts.Steps = 20
	}
	if opts.Tick <= 0 {
		opts.Tick = 5 * time.Second
	}
	return &Coordinator{
		patients:   patients,
		fleet:      vehicles,
		comms:      commLog,
		audit:      audit,
		notifier:   notifier,
		events:     events,
		sim:        &simulator{fleet: vehicles, steps: opts.Steps, tick: opts.Tick, log: log},
		super:      newSupervisor(),
		autoStatus: opts.AutoStatus,
		log:        log,
	}
}

// Assign links a referral and an ambulance. The patient-side write happens
// first; if the fleet-side dispatch then fails, the patient is restored to
// its pre-assign state with a compensating write.
func (c *Coordinator) Assign(ctx context.Context, patientID, ambulanceID, actor string) (*patient.Patient, error) {
	prev, err := c.patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	prevStatus := prev.Status

	p, err := c.patients.AssignAmbulance(ctx, patientID, ambulanceID)
	if err != nil {
		return nil, err
	}

	if _, err := c.fleet.Dispatch(ctx, ambulanceID, patientID); err != nil {
		metrics.DispatchRollbacksTotal.Inc()
		if rbErr := c.patients.RevertAssignment(ctx, patientID, prevStatus); rbErr != nil {
			c.log.Error().Err(rbErr).
				Str("patient_id", patientID).
				Str("ambulance_id", ambulanceID).
				Msg("assignment rollback failed")
		}
		return nil, err
	}

	metrics.DispatchAssignmentsTotal.Inc()
	if err := c.audit.Record(ctx, patientID, ambulanceID, patient.StatusAssigned, actor); err != nil {
		c.log.Error().Err(err).Str("patient_id", patientID).Msg("audit append failed")
	}
	c.notifier.Notify(ctx, p.ReceivingHospital,
		fmt.Sprintf("Ambulance %s dispatched for patient %s", ambulanceID, p.Name),
		notification.KindDispatch)
	c.publishReferral("referral.assigned", p)

	c.log.Info().
		Str("patient_id", patientID).
		Str("ambulance_id", ambulanceID).
		Str("actor", actor).
		Msg("ambulance assigned")
	return p, nil
}

// AcceptMission is the driver's confirmation of a dispatch. It requires
// the ambulance to be on transfer with a patient, optionally moves the
// patient to Ambulance Dispatched, records the route, and starts the
// movement simulator toward the receiving hospital.
func (c *Coordinator) AcceptMission(ctx context.Context, ambulanceID, actor string) (*patient.Patient, error) {
	a, err := c.fleet.Get(ctx, ambulanceID)
	if err != nil {
		return nil, err
	}
	if a.Status != fleet.StatusOnTransfer || a.CurrentPatient == nil {
		return nil, errs.InvalidState("ambulance", ambulanceID, a.Status, "accept a mission for")
	}
	patientID := *a.CurrentPatient

	p, err := c.patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if c.autoStatus {
		moved, err := c.patients.Transition(ctx, patientID, patient.StatusDispatched)
		switch {
		case err == nil:
			p = moved
		case errs.IsInvalidState(err):
			// Already at or past Ambulance Dispatched; keep going.
		default:
			return nil, err
		}
	}

	eta := time.Now().UTC().Add(analytics.ETAMinutes * time.Minute)
	if err := c.fleet.SetRoute(ctx, ambulanceID, p.ReceivingHospital, &eta); err != nil {
		return nil, err
	}

	if p.ReceivingHospitalLat != nil && p.ReceivingHospitalLng != nil {
		pos, err := c.fleet.CurrentPosition(ctx, ambulanceID)
		if err != nil {
			return nil, err
		}
		start := Point{Lat: pos.Latitude, Lng: pos.Longitude}
		end := Point{Lat: *p.ReceivingHospitalLat, Lng: *p.ReceivingHospitalLng}
		c.startSimulation(ambulanceID, patientID, start, end)
	} else {
		c.log.Info().
			Str("patient_id", patientID).
			Msg("no destination coordinates, mission runs without simulation")
	}

	text := fmt.Sprintf("Ambulance %s accepted the transfer of patient %s", ambulanceID, p.Name)
	for _, facility := range []string{p.ReferringHospital, p.ReceivingHospital} {
		if err := c.comms.Append(ctx, patientID, ambulanceID, comms.ControlCenter, facility, text, comms.TypeSystem); err != nil {
			c.log.Error().Err(err).Str("patient_id", patientID).Msg("communication append failed")
		}
	}
	c.publishMission("mission.accepted", ambulanceID, patientID)

	c.log.Info().
		Str("patient_id", patientID).
		Str("ambulance_id", ambulanceID).
		Str("actor", actor).
		Msg("mission accepted")
	return p, nil
}

// CompleteMission is the driver's delivery confirmation: the patient is
// marked arrived, the ambulance released, and both hospitals get the
// arrival message. Any running simulator for the vehicle is stopped first.
func (c *Coordinator) CompleteMission(ctx context.Context, ambulanceID, actor string) (*patient.Patient, error) {
	a, err := c.fleet.Get(ctx, ambulanceID)
	if err != nil {
		return nil, err
	}
	if a.CurrentPatient == nil {
		return nil, errs.InvalidState("ambulance", ambulanceID, a.Status, "complete a mission for")
	}
	patientID := *a.CurrentPatient

	if t := c.super.Stop(ambulanceID); t != nil {
		// Claim the completion guard so an end-of-route finish that is
		// racing this call backs off.
		t.complete.Do(func() {})
	}

	released, err := c.fleet.ReleaseIfCarrying(ctx, ambulanceID, patientID)
	if err != nil {
		return nil, err
	}

	p, err := c.patients.Transition(ctx, patientID, patient.StatusArrived)
	if err != nil {
		if !errs.IsInvalidState(err) {
			return nil, err
		}
		// The journey already reached arrival; fall through to the
		// notifications with the stored record.
		if p, err = c.patients.Get(ctx, patientID); err != nil {
			return nil, err
		}
	}

	if released {
		metrics.MissionsCompletedTotal.Inc()
	}

	sender := actor
	if sender == "" {
		sender = "Driver"
	}
	text := fmt.Sprintf("Patient %s has arrived via ambulance %s", p.Name, ambulanceID)
	for _, facility := range []string{p.ReferringHospital, p.ReceivingHospital} {
		if err := c.comms.Append(ctx, patientID, ambulanceID, sender, facility, text, comms.TypeArrivalNotification); err != nil {
			c.log.Error().Err(err).Str("patient_id", patientID).Msg("communication append failed")
		}
	}
	c.notifier.Notify(ctx, p.ReceivingHospital, text, notification.KindArrival)
	c.publishMission("mission.completed", ambulanceID, patientID)

	c.log.Info().
		Str("patient_id", patientID).
		Str("ambulance_id", ambulanceID).
		Str("actor", actor).
		Msg("mission completed")
	return p, nil
}

// CancelMission stops the ambulance's simulator without touching the
// referral or the vehicle; release stays an explicit administrative step.
// It reports whether a simulation was running.
func (c *Coordinator) CancelMission(_ context.Context, ambulanceID string) bool {
	t := c.super.Stop(ambulanceID)
	if t == nil {
		return false
	}
	t.complete.Do(func() {})
	c.log.Info().Str("ambulance_id", ambulanceID).Msg("mission simulation cancelled")
	return true
}

// Shutdown stops every running simulation and waits for the tasks to
// finish. Called during server teardown.
func (c *Coordinator) Shutdown() {
	c.super.Shutdown()
}

func (c *Coordinator) startSimulation(ambulanceID, patientID string, start, end Point) {
	c.super.Start(ambulanceID, patientID, func(ctx context.Context, t *task) {
		if !c.sim.Run(ctx, ambulanceID, patientID, start, end) {
			return
		}
		c.finishRoute(ctx, t, ambulanceID, patientID)
	})
}

// finishRoute is the end-of-route completion. The task guard and the
// assignment re-check together ensure the release happens exactly once,
// whichever of the simulator or a manual completion gets there first.
func (c *Coordinator) finishRoute(ctx context.Context, t *task, ambulanceID, patientID string) {
	t.complete.Do(func() {
		released, err := c.fleet.ReleaseIfCarrying(ctx, ambulanceID, patientID)
		if err != nil {
			c.log.Error().Err(err).
				Str("ambulance_id", ambulanceID).
				Msg("end-of-route release failed")
			return
		}
		if !released {
			return
		}
		metrics.MissionsCompletedTotal.Inc()
		if c.autoStatus {
			if _, err := c.patients.Transition(ctx, patientID, patient.StatusArrived); err != nil {
				c.log.Warn().Err(err).
					Str("patient_id", patientID).
					Msg("arrival transition failed")
			}
		}
		c.publishMission("mission.completed", ambulanceID, patientID)
		c.log.Info().
			Str("patient_id", patientID).
			Str("ambulance_id", ambulanceID).
			Msg("route finished, ambulance released")
	})
}

func (c *Coordinator) publishMission(eventType, ambulanceID, patientID string) {
	payload := map[string]interface{}{
		"ambulance_id": ambulanceID,
		"patient_id":   patientID,
	}
	for _, topic := range []string{websocket.TopicFleet, websocket.AmbulanceTopic(ambulanceID)} {
		ev := websocket.NewEvent(eventType, topic, ambulanceID, payload)
		if err := c.events.Publish(context.Background(), ev); err != nil {
			c.log.Warn().Err(err).Str("ambulance_id", ambulanceID).Msg("event publish failed")
		}
	}
}

func (c *Coordinator) publishReferral(eventType string, p *patient.Patient) {
	ev := websocket.NewEvent(eventType, websocket.TopicReferrals, p.PatientID, p)
	if err := c.events.Publish(context.Background(), ev); err != nil {
		c.log.Warn().Err(err).Str("patient_id", p.PatientID).Msg("event publish failed")
	}
}
