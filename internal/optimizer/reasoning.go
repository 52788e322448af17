package optimizer

import (
	"fmt"

	"github.com/kmra/induction/internal/domain"
)

// reason produces the per-trainset reasoning string every driver attaches
// to its result: fitness, work-order, branding, and mileage notes plus the
// final position.
func reason(v domain.TrainsetView, position int, fleetMeanMileage float64) string {
	notes := make([]string, 0, 5)

	if v.FitnessValid {
		notes = append(notes, "fitness certificate valid")
	} else {
		notes = append(notes, "fitness certificate invalid")
	}

	if v.PendingWorkOrders > 0 {
		notes = append(notes, fmt.Sprintf("%d pending work order(s)", v.PendingWorkOrders))
	}

	if v.BrandingPriority > 3 {
		notes = append(notes, fmt.Sprintf("high branding priority (%d)", v.BrandingPriority))
	}

	if fleetMeanMileage > 0 {
		ratio := v.CurrentMileage / fleetMeanMileage
		switch {
		case ratio < 0.9:
			notes = append(notes, "low mileage - suitable for service")
		case ratio > 1.1:
			notes = append(notes, "high mileage - consider for maintenance")
		}
	}

	notes = append(notes, fmt.Sprintf("assigned position %d", position))

	out := notes[0]
	for _, n := range notes[1:] {
		out += "; " + n
	}
	return out
}

// reasoningFor builds the full per-trainset reasoning map for an assignment.
func reasoningFor(views map[string]domain.TrainsetView, a domain.Assignment, fleetMeanMileage float64) map[string]string {
	out := make(map[string]string, len(a))
	for id, pos := range a {
		if v, ok := views[id]; ok {
			out[id] = reason(v, pos, fleetMeanMileage)
		}
	}
	return out
}

func viewsByID(views []domain.TrainsetView) map[string]domain.TrainsetView {
	out := make(map[string]domain.TrainsetView, len(views))
	for _, v := range views {
		out[v.ID] = v
	}
	return out
}
