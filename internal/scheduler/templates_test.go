package scheduler

import (
	"testing"

	"github.com/kmra/induction/internal/domain"
)

func TestDeriveScheduleType(t *testing.T) {
	cases := []struct {
		name string
		tp   timeParts
		want domain.ScheduleType
	}{
		{"saturday", timeParts{Hour: 10, Weekday: 6}, domain.ScheduleWeekend},
		{"sunday", timeParts{Hour: 10, Weekday: 0}, domain.ScheduleWeekend},
		{"morning peak", timeParts{Hour: 7, Weekday: 2}, domain.SchedulePeakHour},
		{"evening peak", timeParts{Hour: 18, Weekday: 2}, domain.SchedulePeakHour},
		{"late night", timeParts{Hour: 23, Weekday: 2}, domain.ScheduleNightService},
		// Hours 1-5 fall inside night-service's "hour < 6" clause, which is
		// checked first, so clock-derived schedules never get the
		// maintenance-window type.
		{"early morning inside night-service range", timeParts{Hour: 2, Weekday: 2}, domain.ScheduleNightService},
		{"off peak", timeParts{Hour: 11, Weekday: 2}, domain.ScheduleOffPeak},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := deriveScheduleType(tc.tp); got != tc.want {
				t.Fatalf("deriveScheduleType(%+v) = %v, want %v", tc.tp, got, tc.want)
			}
		})
	}
}

func TestAllDerivedTypesHaveTemplates(t *testing.T) {
	// MaintenanceWindow carries a template too even though
	// deriveScheduleType itself never returns it — see the note in
	// TestDeriveScheduleType.
	all := []domain.ScheduleType{
		domain.ScheduleWeekend, domain.SchedulePeakHour, domain.ScheduleNightService,
		domain.ScheduleMaintenanceWindow, domain.ScheduleOffPeak,
	}
	for _, st := range all {
		if _, ok := templates[st]; !ok {
			t.Fatalf("no template for schedule type %v", st)
		}
	}
}
