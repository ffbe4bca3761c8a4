// Package analytics derives dashboard metrics and CSV snapshots from the
// referral and fleet collections.
package analytics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/hoslink/hoslink/internal/domain/fleet"
	"github.com/hoslink/hoslink/internal/domain/patient"
	"github.com/hoslink/hoslink/internal/platform/export"
)

// ETAMinutes is the fixed transfer estimate. Missions do not report a
// measured clock, so both the in-transit ETA and the response-time sample
// of an arrived referral use this constant.
const ETAMinutes = 15

// Referrals is the patient collection view the reports read from.
type Referrals interface {
	Get(ctx context.Context, patientID string) (*patient.Patient, error)
	All(ctx context.Context) ([]*patient.Patient, error)
}

// Fleet is the ambulance collection view the reports read from.
type Fleet interface {
	All(ctx context.Context) ([]*fleet.Ambulance, error)
}

// KPISnapshot carries the dashboard header metrics.
type KPISnapshot struct {
	TotalReferrals      int    `json:"total_referrals"`
	ActiveReferrals     int    `json:"active_referrals"`
	AvailableAmbulances int    `json:"available_ambulances"`
	AvgResponseTime     string `json:"avg_response_time"`
	CompletionRate      string `json:"completion_rate"`
}

// MissionProgress describes how far along a referral's journey is.
type MissionProgress struct {
	PatientID  string `json:"patient_id"`
	Status     string `json:"status"`
	Progress   int    `json:"progress"`
	ETAMinutes int    `json:"eta_minutes"`
}

// Service computes reports over full collection snapshots. The fleet is
// fixed-size and referral volume is small, so no incremental bookkeeping.
type Service struct {
	referrals Referrals
	fleet     Fleet
}

func NewService(referrals Referrals, fleet Fleet) *Service {
	return &Service{referrals: referrals, fleet: fleet}
}

// KPIs computes the dashboard metrics. A referral is active until it
// reaches Arrived at Destination; each arrived referral that had an
// ambulance contributes one constant response-time sample.
func (s *Service) KPIs(ctx context.Context) (*KPISnapshot, error) {
	patients, err := s.referrals.All(ctx)
	if err != nil {
		return nil, err
	}
	ambulances, err := s.fleet.All(ctx)
	if err != nil {
		return nil, err
	}

	k := &KPISnapshot{TotalReferrals: len(patients)}
	samples := 0
	for _, p := range patients {
		if p.Status != patient.StatusArrived && p.Status != patient.StatusCompleted {
			k.ActiveReferrals++
		}
		if p.AssignedAmbulance != nil && p.Status == patient.StatusArrived {
			samples++
		}
	}
	for _, a := range ambulances {
		if a.Status == fleet.StatusAvailable {
			k.AvailableAmbulances++
		}
	}

	avg := 0.0
	if samples > 0 {
		avg = ETAMinutes // every sample is the constant estimate
	}
	k.AvgResponseTime = fmt.Sprintf("%.1f min", avg)
	if k.TotalReferrals > 0 {
		completed := k.TotalReferrals - k.ActiveReferrals
		k.CompletionRate = fmt.Sprintf("%.1f%%", float64(completed)/float64(k.TotalReferrals)*100)
	} else {
		k.CompletionRate = "0%"
	}
	return k, nil
}

// Progress reports the journey percentage and the fixed arrival estimate
// for a referral.
func (s *Service) Progress(ctx context.Context, patientID string) (*MissionProgress, error) {
	p, err := s.referrals.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return &MissionProgress{
		PatientID:  p.PatientID,
		Status:     p.Status,
		Progress:   patient.Progress(p.Status),
		ETAMinutes: ETAMinutes,
	}, nil
}

var referralHeader = []string{
	"patient_id", "name", "age", "condition",
	"referring_hospital", "receiving_hospital",
	"referring_physician", "receiving_physician",
	"notes", "medical_history", "current_medications", "allergies",
	"referral_time", "status", "assigned_ambulance", "created_by", "updated_at",
}

// ReferralsTable renders the patient collection for CSV export. The
// vital-signs map is the only field left out; everything else flattens
// to a column.
func (s *Service) ReferralsTable(ctx context.Context) (*export.Table, error) {
	patients, err := s.referrals.All(ctx)
	if err != nil {
		return nil, err
	}
	t := &export.Table{Header: referralHeader, Rows: make([][]string, 0, len(patients))}
	for _, p := range patients {
		t.Rows = append(t.Rows, []string{
			p.PatientID, p.Name, strconv.Itoa(p.Age), p.Condition,
			p.ReferringHospital, p.ReceivingHospital,
			p.ReferringPhysician, str(p.ReceivingPhysician),
			str(p.Notes), str(p.MedicalHistory), str(p.CurrentMedications), str(p.Allergies),
			stamp(p.ReferralTime), p.Status, str(p.AssignedAmbulance), str(p.CreatedBy), stamp(p.UpdatedAt),
		})
	}
	return t, nil
}

var ambulanceHeader = []string{
	"ambulance_id", "current_location", "latitude", "longitude", "status",
	"driver_name", "driver_contact", "ambulance_type", "equipment",
	"current_patient", "destination", "mission_complete",
	"estimated_arrival", "last_location_update",
}

// AmbulancesTable renders the fleet for CSV export.
func (s *Service) AmbulancesTable(ctx context.Context) (*export.Table, error) {
	ambulances, err := s.fleet.All(ctx)
	if err != nil {
		return nil, err
	}
	t := &export.Table{Header: ambulanceHeader, Rows: make([][]string, 0, len(ambulances))}
	for _, a := range ambulances {
		t.Rows = append(t.Rows, []string{
			a.AmbulanceID, a.CurrentLocation, coord(a.Latitude), coord(a.Longitude), a.Status,
			a.DriverName, a.DriverContact, a.AmbulanceType, a.Equipment,
			str(a.CurrentPatient), str(a.Destination), strconv.FormatBool(a.MissionComplete),
			stampPtr(a.EstimatedArrival), stampPtr(a.LastLocationUpdate),
		})
	}
	return t, nil
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func stampPtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return stamp(*t)
}

func coord(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
