package behavior

import "math/rand"

// deterministicRNG wraps math/rand behind the narrow surface Forest
// construction needs, so tree structure (and therefore scores) is
// reproducible for a fixed seed — the model build is deterministic, only
// inference is exercised at request time.
type deterministicRNG struct {
	r *rand.Rand
}

func newDeterministicRNG(seed int64) *deterministicRNG {
	return &deterministicRNG{r: rand.New(rand.NewSource(seed))}
}

func (d *deterministicRNG) float64() float64 {
	return d.r.Float64()
}

func (d *deterministicRNG) perm(n int) []int {
	return d.r.Perm(n)
}

// sampleWithoutReplacement draws n distinct indices from points.
func (d *deterministicRNG) sampleWithoutReplacement(points []FeatureVector, n int) []FeatureVector {
	idx := d.r.Perm(len(points))[:n]
	out := make([]FeatureVector, n)
	for i, j := range idx {
		out[i] = points[j]
	}
	return out
}
