package daemon

import (
	"reflect"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "127.0.0.1")
	}
	if cfg.API.Port != 8088 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 8088)
	}
	if cfg.Thresholds.ConfidenceThreshold != 0.75 {
		t.Errorf("Thresholds.ConfidenceThreshold = %v, want 0.75", cfg.Thresholds.ConfidenceThreshold)
	}
	if cfg.Thresholds.AutoExecutionThreshold != 0.85 {
		t.Errorf("Thresholds.AutoExecutionThreshold = %v, want 0.85", cfg.Thresholds.AutoExecutionThreshold)
	}
	if cfg.Optimizer.MaxPositions != 40 {
		t.Errorf("Optimizer.MaxPositions = %d, want 40", cfg.Optimizer.MaxPositions)
	}
	if cfg.Optimizer.MaxConcurrent != 5 {
		t.Errorf("Optimizer.MaxConcurrent = %d, want 5", cfg.Optimizer.MaxConcurrent)
	}
	if len(cfg.Scheduler.CriticalHours) != 8 || len(cfg.Scheduler.RegenHours) != 6 {
		t.Errorf("Scheduler hour sets = %v / %v, want 8 critical and 6 regeneration hours",
			cfg.Scheduler.CriticalHours, cfg.Scheduler.RegenHours)
	}
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("INDUCTION_HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("LoadConfig() with no file on disk = %+v, want defaults %+v", cfg, DefaultConfig())
	}
}

func TestSaveThenLoadConfigRoundTrips(t *testing.T) {
	t.Setenv("INDUCTION_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.API.Port = 9999
	cfg.Thresholds.ConfidenceThreshold = 0.8

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	got, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.API.Port != 9999 {
		t.Errorf("API.Port = %d, want 9999", got.API.Port)
	}
	if got.Thresholds.ConfidenceThreshold != 0.8 {
		t.Errorf("Thresholds.ConfidenceThreshold = %v, want 0.8", got.Thresholds.ConfidenceThreshold)
	}
}
