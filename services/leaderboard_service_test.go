package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateOnlineBounds(t *testing.T) {
	assert.Equal(t, int64(0), estimateOnline(0))

	for i := 0; i < 50; i++ {
		got := estimateOnline(1000)
		assert.GreaterOrEqual(t, got, int64(300))
		assert.LessOrEqual(t, got, int64(600))
	}

	// Tiny player bases collapse to the low bound instead of going negative.
	assert.Equal(t, int64(0), estimateOnline(1))
}
