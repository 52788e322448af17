package scheduler

// DayKind classifies which demand-index table applies to a day.
// Weather and calendar lookups are external collaborators;
// the caller supplies DayKind and a Weather value already resolved.
type DayKind int

const (
	DayWeekday DayKind = iota
	DayWeekend
	DayHoliday
)

const (
	trainsetCapacityFactor = 15
	perTrainsetCapacity    = 1000
)

// weekdayDemandIndex, weekendDemandIndex, holidayDemandIndex are 24-element
// hourly demand indices in [0,1]: typical metro ridership with two weekday
// commute peaks, a flatter weekend curve, and a suppressed holiday curve.
var weekdayDemandIndex = [24]float64{
	0.05, 0.03, 0.02, 0.02, 0.05, 0.20, // 0-5
	0.55, 0.90, 1.00, 0.75, 0.50, 0.45, // 6-11
	0.50, 0.55, 0.50, 0.55, 0.70, 0.95, // 12-17
	1.00, 0.80, 0.55, 0.35, 0.20, 0.10, // 18-23
}

var weekendDemandIndex = [24]float64{
	0.05, 0.03, 0.02, 0.02, 0.03, 0.08, // 0-5
	0.15, 0.25, 0.40, 0.55, 0.65, 0.70, // 6-11
	0.75, 0.78, 0.75, 0.72, 0.70, 0.68, // 12-17
	0.60, 0.50, 0.40, 0.30, 0.20, 0.10, // 18-23
}

var holidayDemandIndex = [24]float64{
	0.03, 0.02, 0.01, 0.01, 0.02, 0.05, // 0-5
	0.10, 0.18, 0.28, 0.38, 0.45, 0.48, // 6-11
	0.50, 0.50, 0.48, 0.45, 0.42, 0.40, // 12-17
	0.35, 0.28, 0.20, 0.15, 0.10, 0.05, // 18-23
}

// demandIndex looks up the hourly index for a day kind, clamping hour to
// [0,23].
func demandIndex(hour int, kind DayKind) float64 {
	if hour < 0 {
		hour = 0
	}
	if hour > 23 {
		hour = 23
	}
	switch kind {
	case DayWeekend:
		return weekendDemandIndex[hour]
	case DayHoliday:
		return holidayDemandIndex[hour]
	default:
		return weekdayDemandIndex[hour]
	}
}

// DemandForecast computes the raw demand figure: index * 15 * 1000.
// Weather is applied by the caller composing the ScheduleRequest, since
// weather lookups are an external collaborator.
func DemandForecast(hour int, kind DayKind) float64 {
	return demandIndex(hour, kind) * trainsetCapacityFactor * perTrainsetCapacity
}

// Weather is the resolved condition for one scheduling cycle, supplied by
// the external weather-lookup collaborator.
type Weather int

const (
	WeatherSunny Weather = iota
	WeatherCloudy
	WeatherRainy
	WeatherHeavyRain
	WeatherStormy
)

// Multiplier returns the demand multiplier for the condition.
func (w Weather) Multiplier() float64 {
	switch w {
	case WeatherRainy:
		return 1.15
	case WeatherHeavyRain:
		return 1.3
	case WeatherStormy:
		return 1.4
	default: // sunny, cloudy
		return 1.0
	}
}
