package health

import (
	"math"
	"sync"
)

// SigmaThreshold is the number of standard deviations for a statistical
// outlier.
const SigmaThreshold = 3.0

// MinSamplesForProfile is how many samples a component needs before the
// z-score check activates.
const MinSamplesForProfile = 5

// componentProfile tracks a running mean/variance for one (trainset,
// component) pair using Welford's online algorithm.
type componentProfile struct {
	count int
	mean  float64
	m2    float64
}

func (p *componentProfile) update(x float64) {
	p.count++
	delta := x - p.mean
	p.mean += delta / float64(p.count)
	delta2 := x - p.mean
	p.m2 += delta * delta2
}

func (p *componentProfile) stddev() float64 {
	if p.count < 2 {
		return 0
	}
	return math.Sqrt(p.m2 / float64(p.count-1))
}

// AnomalyDetector flags trained-back-end feature values that fall outside
// SigmaThreshold standard deviations of a component's running profile.
// Thread-safe.
type AnomalyDetector struct {
	mu       sync.Mutex
	profiles map[string]*componentProfile // "<trainsetID>/<component>" -> profile
}

// NewAnomalyDetector constructs an empty detector.
func NewAnomalyDetector() *AnomalyDetector {
	return &AnomalyDetector{profiles: make(map[string]*componentProfile)}
}

// Observe folds x into the running profile for (trainsetID, component) and
// reports whether x is an outlier along with a signed anomaly score in
// [-1,1] (0 when the profile doesn't have enough samples yet).
func (d *AnomalyDetector) Observe(trainsetID string, component string, x float64) (isOutlier bool, anomalyScore float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := trainsetID + "/" + component
	p, ok := d.profiles[key]
	if !ok {
		p = &componentProfile{}
		d.profiles[key] = p
	}

	if p.count < MinSamplesForProfile {
		p.update(x)
		return false, 0
	}

	stddev := p.stddev()
	var zScore float64
	if stddev > 0 {
		zScore = (x - p.mean) / stddev
	} else if x != p.mean {
		zScore = math.Copysign(math.Inf(1), x-p.mean)
	}
	p.update(x)

	if math.Abs(zScore) > SigmaThreshold {
		score := zScore / SigmaThreshold
		if score > 1 {
			score = 1
		}
		if score < -1 {
			score = -1
		}
		return true, score
	}
	return false, zScore / SigmaThreshold
}
