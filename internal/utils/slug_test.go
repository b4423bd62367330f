package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Teak Dining Table":   "teak-dining-table",
		"  Oak & Ash Shelf  ": "oak-ash-shelf",
		"Chaise---Longue":     "chaise-longue",
		"Model 42":            "model-42",
		"UPPER":               "upper",
	}
	for input, want := range tests {
		assert.Equal(t, want, Slugify(input), "input %q", input)
	}
}
