package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hoslink/hoslink/internal/platform/metrics"
)

// Point is a coordinate pair on a simulated route.
type Point struct {
	Lat float64
	Lng float64
}

// Route interpolates a straight line from start to end in steps equal
// segments. The result holds steps+1 points; the first equals start and
// the last equals end.
func Route(start, end Point, steps int) []Point {
	latStep := (end.Lat - start.Lat) / float64(steps)
	lngStep := (end.Lng - start.Lng) / float64(steps)
	pts := make([]Point, 0, steps+1)
	for step := 0; step <= steps; step++ {
		pts = append(pts, Point{
			Lat: start.Lat + latStep*float64(step),
			Lng: start.Lng + lngStep*float64(step),
		})
	}
	return pts
}

// simulator walks an ambulance along an interpolated route, writing one
// position sample per tick through the fleet service. There is no real
// GPS; missions replay a straight line between the endpoints.
type simulator struct {
	fleet Fleet
	steps int
	tick  time.Duration
	log   zerolog.Logger
}

// Run writes the route samples for a mission until the route is exhausted
// or ctx is cancelled, and reports whether the full route was written.
// A failed write is retried on the next tick at the same step, so a
// transient store failure delays the route instead of aborting it.
func (s *simulator) Run(ctx context.Context, ambulanceID, patientID string, start, end Point) bool {
	route := Route(start, end, s.steps)
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for step := 0; step < len(route); {
		pt := route[step]
		label := fmt.Sprintf("En route - Step %d/%d", step, s.steps)
		if _, err := s.fleet.UpdateLocation(ctx, ambulanceID, pt.Lat, pt.Lng, label, &patientID); err != nil {
			metrics.SimulatorWriteFailuresTotal.Inc()
			s.log.Warn().Err(err).
				Str("ambulance_id", ambulanceID).
				Int("step", step).
				Msg("position write failed, retrying next tick")
		} else {
			metrics.SimulatorTicksTotal.Inc()
			step++
		}
		if step == len(route) {
			break
		}
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
	return true
}
