// Package budget implements the token budget policy for retrieval responses.
//
// Token counts are approximated as ceil(len/4). The approximation is
// deliberately not tokenizer-accurate: it is deterministic and needs no
// external dependency, and the gap between the pass-through ceiling and the
// compression ceiling absorbs the estimation error.
package budget

const (
	// PassThroughCeiling is the estimated token count below which a document
	// is returned unmodified.
	PassThroughCeiling = 8000

	// CompressionCeiling is the hard upper bound demanded of the compressor's
	// output. It sits below PassThroughCeiling because both the input and the
	// compressed output are measured with the same approximate counter.
	CompressionCeiling = 7000
)

// Estimate returns the approximate token count of text.
func Estimate(text string) int {
	return (len(text) + 3) / 4
}

// UnderCeiling reports whether text's estimated token count is strictly
// below ceiling.
func UnderCeiling(text string, ceiling int) bool {
	return Estimate(text) < ceiling
}
