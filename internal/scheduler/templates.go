package scheduler

import "github.com/kmra/induction/internal/domain"

// ScheduleTemplate bounds and prioritizes one schedule type.
type ScheduleTemplate struct {
	MinTrainsets     int
	MaxTrainsets     int
	FrequencyMinutes int
	EnergyCapPerTrainsetKWh float64
	Priority         domain.SchedulePriority
}

// templates covers the four schedule types deriveScheduleType returns plus
// MaintenanceWindow, which it never returns (its hours fall inside the
// night-service clause checked first). EmergencyResponse and Holiday have
// no template.
var templates = map[domain.ScheduleType]ScheduleTemplate{
	domain.SchedulePeakHour: {
		MinTrainsets: 10, MaxTrainsets: 25, FrequencyMinutes: 5,
		EnergyCapPerTrainsetKWh: 150, Priority: domain.PriorityPassengerComfort,
	},
	domain.ScheduleOffPeak: {
		MinTrainsets: 6, MaxTrainsets: 18, FrequencyMinutes: 10,
		EnergyCapPerTrainsetKWh: 120, Priority: domain.PriorityEfficiency,
	},
	domain.ScheduleNightService: {
		MinTrainsets: 3, MaxTrainsets: 10, FrequencyMinutes: 20,
		EnergyCapPerTrainsetKWh: 80, Priority: domain.PriorityEnergy,
	},
	domain.ScheduleWeekend: {
		MinTrainsets: 8, MaxTrainsets: 20, FrequencyMinutes: 10,
		EnergyCapPerTrainsetKWh: 100, Priority: domain.PriorityCostReduction,
	},
	domain.ScheduleMaintenanceWindow: {
		MinTrainsets: 2, MaxTrainsets: 8, FrequencyMinutes: 30,
		EnergyCapPerTrainsetKWh: 60, Priority: domain.PriorityMaintenanceOptimization,
	},
}

// deriveScheduleType maps the clock onto a schedule type.
func deriveScheduleType(now timeParts) domain.ScheduleType {
	if now.Weekday == 0 || now.Weekday == 6 {
		return domain.ScheduleWeekend
	}
	if (now.Hour >= 6 && now.Hour < 10) || (now.Hour >= 17 && now.Hour < 21) {
		return domain.SchedulePeakHour
	}
	if now.Hour >= 22 || now.Hour < 6 {
		return domain.ScheduleNightService
	}
	if now.Hour >= 1 && now.Hour < 5 {
		return domain.ScheduleMaintenanceWindow
	}
	return domain.ScheduleOffPeak
}

// timeParts avoids threading a full time.Time through pure derivation
// helpers, and is the seam tests use to exercise every branch without
// constructing real calendar dates.
type timeParts struct {
	Hour    int
	Minute  int
	Weekday int // 0=Sunday .. 6=Saturday, matching time.Weekday
}
