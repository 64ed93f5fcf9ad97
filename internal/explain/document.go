package explain

import (
	"math/rand"
	"sort"
	"strings"

	"vigil/internal/domain"
	"vigil/internal/sensitivity"
)

// DefaultPerturbations is the default sample count for the perturbation-based
// document explainer (§4.8: "500 perturbations default").
const DefaultPerturbations = 500

// maskDropProbability is the Bernoulli probability a given token is
// dropped in one perturbed sample, standard for LIME-style bag-of-words
// sampling (roughly half the vocabulary present per sample).
const maskDropProbability = 0.5

// DocumentAttribution is the explainer's ranked token-level output.
type DocumentAttribution struct {
	Tokens []domain.TokenAttribution
}

// ExplainDocument runs a perturbation-based explainer over classifier's own
// probability function: classify(content) sets the predicted class; then
// repeated random token-drop perturbations are reclassified, and each
// token's signed weight is the average shift in the predicted class's risk
// score between samples that kept it and samples that dropped it — the
// standard LIME bag-of-words occlusion estimator (§4.8).
func ExplainDocument(classifier *sensitivity.Classifier, content string, seed int64) DocumentAttribution {
	tokens := tokenize(content)
	if len(tokens) == 0 {
		return DocumentAttribution{}
	}

	predicted := classifier.Classify(content)
	targetLevel := predicted.Level

	presentSum := make([]float64, len(tokens))
	presentCount := make([]int, len(tokens))
	absentSum := make([]float64, len(tokens))
	absentCount := make([]int, len(tokens))

	rng := rand.New(rand.NewSource(seed))
	mask := make([]bool, len(tokens))
	for p := 0; p < DefaultPerturbations; p++ {
		for i := range mask {
			mask[i] = rng.Float64() >= maskDropProbability
		}
		sample := maskedContent(tokens, mask)
		result := classifier.Classify(sample)
		score := scoreForLevel(result, targetLevel)

		for i, kept := range mask {
			if kept {
				presentSum[i] += score
				presentCount[i]++
			} else {
				absentSum[i] += score
				absentCount[i]++
			}
		}
	}

	attributions := make([]domain.TokenAttribution, 0, len(tokens))
	for i, tok := range tokens {
		var presentAvg, absentAvg float64
		if presentCount[i] > 0 {
			presentAvg = presentSum[i] / float64(presentCount[i])
		}
		if absentCount[i] > 0 {
			absentAvg = absentSum[i] / float64(absentCount[i])
		}
		weight := presentAvg - absentAvg
		direction := "against predicted"
		if weight >= 0 {
			direction = "supports predicted"
		}
		attributions = append(attributions, domain.TokenAttribution{Token: tok, Weight: weight, Direction: direction})
	}

	sort.SliceStable(attributions, func(i, j int) bool {
		return absFloat(attributions[i].Weight) > absFloat(attributions[j].Weight)
	})

	return DocumentAttribution{Tokens: attributions}
}

// scoreForLevel returns the [0,1] risk contribution of result if it still
// predicts targetLevel, or 0 otherwise — a perturbation that flips the
// predicted class contributes no support for the original prediction.
func scoreForLevel(result sensitivity.Result, targetLevel domain.Sensitivity) float64 {
	if result.Level != targetLevel {
		return 0
	}
	return result.RiskScore()
}

func maskedContent(tokens []string, keep []bool) string {
	var b strings.Builder
	for i, tok := range tokens {
		if !keep[i] {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(tok)
	}
	return b.String()
}

func tokenize(content string) []string {
	return strings.FieldsFunc(content, func(r rune) bool {
		return r == ' ' || r == '\n' || r == '\t' || r == '\r'
	})
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
