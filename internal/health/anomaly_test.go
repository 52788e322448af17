package health

import "testing"

func TestAnomalyDetectorRequiresMinSamples(t *testing.T) {
	d := NewAnomalyDetector()
	for i := 0; i < MinSamplesForProfile-1; i++ {
		if outlier, _ := d.Observe("T1", "engine", 70); outlier {
			t.Fatal("should never flag an outlier before min samples")
		}
	}
}

func TestAnomalyDetectorFlagsFarOutlier(t *testing.T) {
	d := NewAnomalyDetector()
	for i := 0; i < MinSamplesForProfile+5; i++ {
		d.Observe("T1", "engine", 70)
	}
	outlier, score := d.Observe("T1", "engine", 500)
	if !outlier {
		t.Fatal("expected 500 to be flagged as an outlier against a tight profile around 70")
	}
	if score < 0.99 {
		t.Fatalf("anomaly score = %v, want clamped near 1", score)
	}
}

func TestAnomalyDetectorStableValuesNeverFlagged(t *testing.T) {
	d := NewAnomalyDetector()
	for i := 0; i < 50; i++ {
		if outlier, _ := d.Observe("T1", "engine", 70); outlier {
			t.Fatalf("constant input flagged as outlier at iteration %d", i)
		}
	}
}

func TestAnomalyDetectorKeyedPerTrainsetAndComponent(t *testing.T) {
	d := NewAnomalyDetector()
	for i := 0; i < MinSamplesForProfile+2; i++ {
		d.Observe("T1", "engine", 70)
	}
	// A different trainset/component pair starts with a fresh profile.
	if outlier, _ := d.Observe("T2", "engine", 500); outlier {
		t.Fatal("fresh profile should not flag before min samples")
	}
}
