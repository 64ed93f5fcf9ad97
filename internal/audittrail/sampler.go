package audittrail

import (
	"math/rand"
	"sync"
)

// Sampler provides configurable per-category sampling for audit records,
// adapted from the teacher's ops publisher sampler.
type Sampler struct {
	mu             sync.RWMutex
	defaultRate    float64
	rateByCategory map[string]float64
}

// NewSampler constructs a Sampler with the given default keep-rate in
// [0,1].
func NewSampler(defaultRate float64) *Sampler {
	return &Sampler{defaultRate: clampRate(defaultRate), rateByCategory: make(map[string]float64)}
}

// ShouldSample reports whether a record in category should be kept.
func (s *Sampler) ShouldSample(category string) bool {
	return rand.Float64() < s.rateFor(category) //nolint:gosec // sampling doesn't need crypto rand
}

// SetRate overrides the keep-rate for one category.
func (s *Sampler) SetRate(category string, rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rateByCategory[category] = clampRate(rate)
}

func (s *Sampler) rateFor(category string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rate, ok := s.rateByCategory[category]; ok {
		return rate
	}
	return s.defaultRate
}

func clampRate(rate float64) float64 {
	if rate < 0 {
		return 0
	}
	if rate > 1 {
		return 1
	}
	return rate
}
