// Package daemon manages the induction service's lifecycle and
// configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all service configuration.
type Config struct {
	API        APIConfig        `toml:"api"`
	Storage    StorageConfig    `toml:"storage"`
	Logging    LoggingConfig    `toml:"logging"`
	Telemetry  TelemetryConfig  `toml:"telemetry"`
	Thresholds ThresholdsConfig `toml:"thresholds"`
	Optimizer  OptimizerConfig  `toml:"optimizer"`
	Scheduler  SchedulerConfig  `toml:"scheduler"`
	Fleet      FleetConfig      `toml:"fleet"`
}

// APIConfig controls the ambient read-only HTTP surface.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig controls the SQLite-backed history store.
type StorageConfig struct {
	Dir string `toml:"dir"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// TelemetryConfig controls observability.
type TelemetryConfig struct {
	Prometheus     bool `toml:"prometheus"`
	PrometheusPort int  `toml:"prometheus_port"`
}

// ThresholdsConfig holds the threshold settings. ConfidenceThreshold and
// MaxAutonomousTrainsets configure the Decision Engine's evaluator. The
// Intelligent Scheduler does not read this section: its two adaptive
// thresholds start from scheduler.DefaultThresholds. AutoExecutionThreshold
// is not read by any component.
type ThresholdsConfig struct {
	ConfidenceThreshold    float64 `toml:"confidence_threshold"`
	AutoExecutionThreshold float64 `toml:"auto_execution_threshold"`
	MaxAutonomousTrainsets int     `toml:"max_autonomous_trainsets"`
}

// OptimizerConfig controls the Assignment Optimizer's bounded concurrency
// and global position cap.
type OptimizerConfig struct {
	MaxPositions       int `toml:"max_positions"`
	MaxConcurrent      int `toml:"max_concurrent_optimizations"`
	QueueSize          int `toml:"optimization_queue_size"`
	DefaultTimeoutSecs int `toml:"default_timeout_seconds"`
}

// SchedulerConfig parameterizes the scheduling-need predicate's hour sets.
type SchedulerConfig struct {
	CriticalHours []int `toml:"critical_hours"`
	RegenHours    []int `toml:"schedule_regen_hours"`
}

// FleetConfig names the seed fixture for the reference in-memory fleet
// adapter.
type FleetConfig struct {
	SeedFile string `toml:"seed_file"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	homeDir := inductionHome()
	return Config{
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8088,
		},
		Storage: StorageConfig{
			Dir: homeDir,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(homeDir, "induction.log"),
		},
		Telemetry: TelemetryConfig{
			Prometheus:     true,
			PrometheusPort: 9090,
		},
		Thresholds: ThresholdsConfig{
			ConfidenceThreshold:    0.75,
			AutoExecutionThreshold: 0.85,
			MaxAutonomousTrainsets: 10,
		},
		Optimizer: OptimizerConfig{
			MaxPositions:       40,
			MaxConcurrent:      5,
			QueueSize:          20,
			DefaultTimeoutSecs: 30,
		},
		Scheduler: SchedulerConfig{
			CriticalHours: []int{5, 6, 9, 12, 16, 17, 20, 22},
			RegenHours:    []int{0, 4, 8, 12, 16, 20},
		},
		Fleet: FleetConfig{
			SeedFile: "",
		},
	}
}

// LoadConfig reads config from ~/.induction/config.toml, falling back to
// defaults when no file exists yet.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(inductionHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the config to ~/.induction/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(inductionHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// inductionHome returns the induction service's data directory.
func inductionHome() string {
	if env := os.Getenv("INDUCTION_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".induction")
}

// InductionHome is exported for use by other packages (e.g. the CLI's
// default fixture lookup).
func InductionHome() string {
	return inductionHome()
}
