package sensitivity

import (
	"regexp"
	"strings"

	"vigil/internal/domain"
	pstrings "vigil/pkg/platform/strings"
)

// lexicon maps each sensitivity level to the phrases whose presence counts
// as evidence for it (§4.5 tier 1). Phrases are matched case-insensitively
// as whole words or phrases.
var lexicon = map[domain.Sensitivity][]string{
	domain.SensitivityPublic: {
		"press release", "public announcement", "marketing", "brochure",
		"website", "blog post", "newsletter",
	},
	domain.SensitivityInternal: {
		"internal use only", "employee handbook", "meeting notes", "memo",
		"project plan", "roadmap", "org chart",
	},
	domain.SensitivityConfidential: {
		"ssn", "social security", "nda", "non-disclosure", "merger",
		"acquisition", "salary", "compensation", "layoff", "termination",
		"trade secret", "confidential", "proprietary", "legal privilege",
		"whistleblower", "litigation hold",
	},
}

// regexBonuses are regex patterns whose match adds a fixed bonus to the
// confidential tally, independent of the phrase lexicon (§4.5 tier 1).
var regexBonuses = []struct {
	pattern *regexp.Regexp
	bonus   int
}{
	{regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), 3},                 // SSN-like
	{regexp.MustCompile(`\b(?:\d[ -]*?){13,16}\b`), 3},               // credit-card-like
	{regexp.MustCompile(`(?i)\b(sk|api|key)[-_][A-Za-z0-9]{12,}\b`), 3}, // api-key-like
	{regexp.MustCompile(`(?i)password\s*:`), 2},                     // "password:" lines
	{regexp.MustCompile(`\$\s?\d[\d,]*(\.\d{2})?\b`), 1},             // money
	{regexp.MustCompile(`\b\d{1,3}(\.\d+)?\s?%\b`), 1},               // percentages
}

// wordBoundary wraps a literal phrase as a case-insensitive whole-word (or
// whole-phrase) regex.
func wordBoundary(phrase string) *regexp.Regexp {
	escaped := regexp.QuoteMeta(phrase)
	return regexp.MustCompile(`(?i)\b` + escaped + `\b`)
}

var compiledLexicon = func() map[domain.Sensitivity][]*regexp.Regexp {
	out := make(map[domain.Sensitivity][]*regexp.Regexp, len(lexicon))
	for level, phrases := range lexicon {
		patterns := make([]*regexp.Regexp, 0, len(phrases))
		for _, p := range phrases {
			patterns = append(patterns, wordBoundary(p))
		}
		out[level] = patterns
	}
	return out
}()

func countMatches(content string, patterns []*regexp.Regexp) int {
	count := 0
	for _, p := range patterns {
		count += len(p.FindAllStringIndex(content, -1))
	}
	return count
}

func countRegexBonus(content string) int {
	bonus := 0
	for _, rb := range regexBonuses {
		if rb.pattern.MatchString(content) {
			bonus += rb.bonus
		}
	}
	return bonus
}

// lexiconTier classifies content via the mandatory phrase/regex tier,
// returning level tallies and the matched evidence strings.
func lexiconTier(content string) (tallies map[domain.Sensitivity]int, evidence []string) {
	tallies = map[domain.Sensitivity]int{
		domain.SensitivityPublic:       countMatches(content, compiledLexicon[domain.SensitivityPublic]),
		domain.SensitivityInternal:     countMatches(content, compiledLexicon[domain.SensitivityInternal]),
		domain.SensitivityConfidential: countMatches(content, compiledLexicon[domain.SensitivityConfidential]),
	}
	tallies[domain.SensitivityConfidential] += countRegexBonus(content)

	for _, patterns := range compiledLexicon {
		for _, p := range patterns {
			for _, m := range p.FindAllString(content, -1) {
				evidence = append(evidence, strings.ToLower(m))
			}
		}
	}
	// Content repeating a phrase ("confidential... confidential...") would
	// otherwise pad matched_evidence with one entry per occurrence; callers
	// want the distinct terms that fired, not a multiset.
	return tallies, pstrings.DedupeAndTrim(evidence)
}
