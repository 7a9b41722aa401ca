package rand

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStr(t *testing.T) {
	data := []struct {
		inputStrLen          int
		outputStrExpectedLen int
	}{
		{0, 0},
		{1, 1},
		{6, 6},
		{12, 12},
		{100, 100},
	}

	for _, d := range data {
		t.Run(fmt.Sprintf("Length %d", d.inputStrLen), func(t *testing.T) {
			randomStr := Str(d.inputStrLen)
			assert.Equal(t, d.outputStrExpectedLen, len(randomStr), fmt.Sprintf("Expected string of length %d, but got length %d", d.outputStrExpectedLen, len(randomStr)))
		})
	}

	t.Run("AlphabetMembership", func(t *testing.T) {
		randomStr := Str(1000)
		for _, c := range randomStr {
			assert.True(t, strings.ContainsRune(Alphabet, c), fmt.Sprintf("Character %q is not part of the alphabet", c))
		}
	})

	// Additional test to check for randomness
	t.Run("RandomnessTest", func(t *testing.T) {
		randomStr1 := Str(10)
		randomStr2 := Str(10)

		assert.NotEqual(t, randomStr1, randomStr2, fmt.Sprintf("Random strings are not unique: %s and %s", randomStr1, randomStr2))
	})
}

func TestGeneratorCoversAlphabet(t *testing.T) {
	// A long enough sample must hit every character of a small alphabet,
	// including the ones whose indices require a rejected redraw.
	gen := NewGenerator("ABC")

	seen := map[rune]bool{}
	for _, c := range gen.Str(10000) {
		seen[c] = true
	}

	assert.Len(t, seen, 3, "Expected every alphabet character to appear in the sample")
}

func TestGeneratorPoolRefill(t *testing.T) {
	// Generating far more characters than one entropy pool holds forces
	// multiple transparent refills.
	gen := NewGenerator(Alphabet)

	randomStr := gen.Str(poolSize * 4)
	assert.Equal(t, poolSize*4, len(randomStr))
}

func TestNewGeneratorInvalidAlphabet(t *testing.T) {
	assert.Panics(t, func() { NewGenerator("") })
}
