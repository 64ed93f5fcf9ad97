// Package modification computes the character-level diff between a
// document's baseline and a post-modify submission (§3 ModificationRecord).
//
// No diff library in the reference corpus is imported by any example repo
// (github.com/sergi/go-diff does not appear anywhere in the pack); this is
// a standard-library LCS implementation, documented as a stdlib exception
// in DESIGN.md.
package modification

// CharDiff is the added/removed character counts between original and
// modified, computed from a longest-common-subsequence alignment
// (equivalent in spirit to Python's difflib.SequenceMatcher, which is what
// the original implementation this spec was distilled from used).
type CharDiff struct {
	CharsAdded   int
	CharsRemoved int
}

// Diff computes the LCS-based char diff between original and modified. Both
// are treated as rune sequences so multi-byte UTF-8 content is counted in
// characters, not bytes.
func Diff(original, modified string) CharDiff {
	a := []rune(original)
	b := []rune(modified)
	lcs := longestCommonSubsequenceLength(a, b)
	return CharDiff{
		CharsAdded:   len(b) - lcs,
		CharsRemoved: len(a) - lcs,
	}
}

// longestCommonSubsequenceLength runs the classic O(len(a)*len(b)) DP. This
// is fine for the document sizes this service expects to diff (monitored
// office documents, not multi-megabyte blobs).
func longestCommonSubsequenceLength(a, b []rune) int {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return 0
	}

	prev := make([]int, m+1)
	curr := make([]int, m+1)

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[m]
}
