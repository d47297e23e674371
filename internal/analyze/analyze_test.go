package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToReasonableBPMRejectsNonPositive(t *testing.T) {
	_, err := toReasonableBPM(0)
	assert.ErrorIs(t, err, ErrUnanalyzable)

	_, err = toReasonableBPM(-5)
	assert.ErrorIs(t, err, ErrUnanalyzable)
}

func TestToReasonableBPMFoldsHighEvenValues(t *testing.T) {
	cands, err := toReasonableBPM(200)
	require.NoError(t, err)
	// 200 -> 100 (even, >180? no: 200>180 even -> 100; 100<=180 stop)
	for _, c := range cands {
		assert.LessOrEqual(t, c, 180.0, "candidate exceeds folding ceiling")
	}
	assert.NotEmpty(t, cands)
}

func TestToReasonableBPMDoublesLowValues(t *testing.T) {
	cands, err := toReasonableBPM(40)
	require.NoError(t, err)
	for _, c := range cands {
		assert.GreaterOrEqual(t, c, 70.0, "candidate below the 70bpm floor")
	}
}

func TestToReasonableBPMIsSorted(t *testing.T) {
	cands, err := toReasonableBPM(72)
	require.NoError(t, err)
	for i := 1; i < len(cands); i++ {
		assert.GreaterOrEqual(t, cands[i], cands[i-1], "candidates not sorted: %v", cands)
	}
}

func TestToReasonableBPMReturnsLargestAsLastCandidate(t *testing.T) {
	cands, err := toReasonableBPM(80)
	require.NoError(t, err)
	require.NotEmpty(t, cands)
	last := cands[len(cands)-1]
	for _, c := range cands {
		assert.LessOrEqual(t, c, last, "last candidate is not the largest")
	}
}
