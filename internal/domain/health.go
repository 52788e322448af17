package domain

import "time"

// Component is one of the fixed, tracked trainset subsystems.
type Component string

const (
	ComponentEngine        Component = "engine"
	ComponentBrakes        Component = "brakes"
	ComponentDoors         Component = "doors"
	ComponentHVAC          Component = "hvac"
	ComponentBattery       Component = "battery"
	ComponentSuspension    Component = "suspension"
	ComponentElectrical    Component = "electrical"
	ComponentCommunication Component = "communication"
)

// Components is the fixed, ordered component set the Health Assessor
// always reports on.
var Components = []Component{
	ComponentEngine, ComponentBrakes, ComponentDoors, ComponentHVAC,
	ComponentBattery, ComponentSuspension, ComponentElectrical, ComponentCommunication,
}

// HealthPrediction is one component-level health estimate.
type HealthPrediction struct {
	TrainsetID        string
	Component         Component
	PredictedFailure  *time.Time
	RemainingUsefulLife int // days, positive
	Status            HealthStatus
	Urgency           float64 // [0,1]
	Confidence        float64 // [0,1]
	RecommendedAction string
	CostEstimate      float64
	RiskSubScores     map[string]float64
}

// TelemetrySample is one reading ingested for a trainset.
type TelemetrySample struct {
	TrainsetID        string
	Timestamp         time.Time
	Mileage           float64
	EngineTemperature float64
	BrakePressure     float64
	DoorCycles        int
	HVACEfficiency    float64
	BatteryVoltage    float64
	VibrationLevel    float64
	NoiseLevel        float64
	PowerConsumption  float64
	SpeedProfile      []float64
	FailureCodes      []string // component-tagged, e.g. "engine:P0128"
}

// FailureCodeFor reports whether a failure code tagged for component c is
// present in the sample.
func (s TelemetrySample) FailureCodeFor(c Component) bool {
	prefix := string(c) + ":"
	for _, code := range s.FailureCodes {
		if len(code) >= len(prefix) && code[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
