package behavior

import "math"

// Model is an unsupervised anomaly detector over a fixed-width feature
// vector. The only implementation in this package is an isolation-forest
// equivalent; no third-party Go isolation-forest package exists anywhere
// in the reference corpus, so this is hand-rolled against the standard
// library (documented as a stdlib exception in DESIGN.md). Training is out
// of scope per spec.md §1 — Build here is the one-time construction of a
// ready-to-serve model from a benign reference sample, analogous to
// loading a pre-trained artifact at boot, not an online training loop.
type Model interface {
	// Score returns a raw anomaly score in roughly [-0.5, +0.5]; more
	// negative means more anomalous. Trained reports whether the model has
	// a reference sample to score against.
	Score(f FeatureVector) (raw float64, trained bool)
}

// isolationTree is one tree of the forest: a random axis-aligned partition
// of the training sample, descended at score time until the target point
// is isolated or maxDepth is reached.
type isolationTree struct {
	splitFeature int
	splitValue   float64
	left, right  *isolationTree
	// size is the number of training points that reached this node; used
	// as the path-length correction for unsplit leaves (standard
	// isolation-forest convergence factor c(n)).
	size int
}

// Forest is a small isolation forest: contamination controls nothing about
// structure (that only matters for picking a decision threshold, which
// this package does not use — see §4.4, the raw score is normalized by a
// fixed affine map instead), it is retained on the struct purely so
// ANOMALY_CONTAMINATION is visibly wired per spec §6.
type Forest struct {
	trees        []*isolationTree
	contamination float64
	sampleSize   int
	trained      bool
}

const (
	defaultTreeCount  = 100
	defaultSampleSize = 256
	defaultMaxDepth   = 12
)

// Build constructs a Forest from a reference sample of benign feature
// vectors, using rng for the randomized axis/split selection standard to
// isolation forests. An empty sample yields an untrained Forest (§4.4:
// "If the model is untrained, the component is neutral").
func Build(sample []FeatureVector, contamination float64, rng *deterministicRNG) *Forest {
	if len(sample) == 0 {
		return &Forest{contamination: contamination}
	}
	sampleSize := defaultSampleSize
	if sampleSize > len(sample) {
		sampleSize = len(sample)
	}
	trees := make([]*isolationTree, 0, defaultTreeCount)
	for i := 0; i < defaultTreeCount; i++ {
		sub := rng.sampleWithoutReplacement(sample, sampleSize)
		trees = append(trees, buildTree(sub, 0, defaultMaxDepth, rng))
	}
	return &Forest{trees: trees, contamination: contamination, sampleSize: sampleSize, trained: true}
}

func buildTree(points []FeatureVector, depth, maxDepth int, rng *deterministicRNG) *isolationTree {
	node := &isolationTree{size: len(points)}
	if depth >= maxDepth || len(points) <= 1 {
		return node
	}

	feature, splitValue, ok := pickSplit(points, rng)
	if !ok {
		return node
	}

	var left, right []FeatureVector
	for _, p := range points {
		if p[feature] < splitValue {
			left = append(left, p)
		} else {
			right = append(right, p)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return node
	}

	node.splitFeature = feature
	node.splitValue = splitValue
	node.left = buildTree(left, depth+1, maxDepth, rng)
	node.right = buildTree(right, depth+1, maxDepth, rng)
	return node
}

// pickSplit chooses a random feature with non-degenerate range and a
// uniform split point inside it.
func pickSplit(points []FeatureVector, rng *deterministicRNG) (feature int, value float64, ok bool) {
	order := rng.perm(FeatureCount)
	for _, feature := range order {
		lo, hi := points[0][feature], points[0][feature]
		for _, p := range points {
			if p[feature] < lo {
				lo = p[feature]
			}
			if p[feature] > hi {
				hi = p[feature]
			}
		}
		if hi <= lo {
			continue
		}
		return feature, lo + rng.float64()*(hi-lo), true
	}
	return 0, 0, false
}

// pathLength walks f down the tree, returning the isolation depth plus the
// c(n) correction at whichever leaf it lands on.
func pathLength(t *isolationTree, f FeatureVector, depth int) float64 {
	if t.left == nil || t.right == nil {
		return float64(depth) + cFactor(t.size)
	}
	if f[t.splitFeature] < t.splitValue {
		return pathLength(t.left, f, depth+1)
	}
	return pathLength(t.right, f, depth+1)
}

// cFactor is the standard isolation-forest average path length of an
// unsuccessful BST search over n points, used to normalize leaves reached
// before full isolation.
func cFactor(n int) float64 {
	if n <= 1 {
		return 0
	}
	h := math.Log(float64(n-1)) + 0.5772156649
	return 2*h - 2*float64(n-1)/float64(n)
}

// Score implements Model. s(x,n) = 2^(-E(h(x))/c(n)) is the classic
// isolation-forest anomaly score in (0,1], 1 meaning certainly anomalous.
// We re-center it to spec §4.4's convention (raw in roughly [-0.5,+0.5],
// more negative = more anomalous) via raw = 0.5 - s(x,n).
func (f *Forest) Score(fv FeatureVector) (float64, bool) {
	if !f.trained || len(f.trees) == 0 {
		return 0, false
	}
	var total float64
	for _, t := range f.trees {
		total += pathLength(t, fv, 0)
	}
	avg := total / float64(len(f.trees))
	c := cFactor(f.sampleSize)
	if c <= 0 {
		return 0, false
	}
	s := math.Pow(2, -avg/c)
	return 0.5 - s, true
}
