package budget

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimate(t *testing.T) {
	assert.Equal(t, 0, Estimate(""))
	assert.Equal(t, 1, Estimate("a"))
	assert.Equal(t, 1, Estimate("abcd"))
	assert.Equal(t, 2, Estimate("abcde"))
	assert.Equal(t, 1000, Estimate(strings.Repeat("x", 4000)))
	assert.Equal(t, 1000, Estimate(strings.Repeat("x", 3999)))
}

func TestUnderCeiling(t *testing.T) {
	assert.True(t, UnderCeiling("", PassThroughCeiling))

	// 32000 chars -> 8000 tokens, exactly at the ceiling
	atCeiling := strings.Repeat("x", PassThroughCeiling*4)
	assert.False(t, UnderCeiling(atCeiling, PassThroughCeiling))

	justUnder := strings.Repeat("x", PassThroughCeiling*4-4)
	assert.True(t, UnderCeiling(justUnder, PassThroughCeiling))
}

func TestCeilingMargin(t *testing.T) {
	// The compression target must leave room under the pass-through
	// threshold, otherwise compressed output could still fail the size check.
	assert.Less(t, CompressionCeiling, PassThroughCeiling)
}
