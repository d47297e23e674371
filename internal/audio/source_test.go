package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSourcePeakNormalizes(t *testing.T) {
	pcm := []int16{16384, -32768, 8192, 0}
	src := NewSource(pcm, 2)
	assert.Equal(t, 2, src.Len())

	block := src.Stream(0, 2)
	assert.Equal(t, float32(-1), block[1], "peak sample should normalize to -1")
	assert.Greater(t, block[0], float32(0))
	assert.Less(t, block[0], float32(1))
}

func TestStreamZeroPadsOutOfBounds(t *testing.T) {
	src := NewSource([]int16{100, 100, 200, 200}, 2)

	before := src.Stream(-1, 3)
	assert.Equal(t, float32(0), before[0])
	assert.Equal(t, float32(0), before[1])

	after := src.Stream(1, 3)
	assert.Equal(t, float32(0), after[4])
	assert.Equal(t, float32(0), after[5])

	fullyOut := src.Stream(10, 4)
	for _, v := range fullyOut {
		assert.Equal(t, float32(0), v, "expected all-zero block for fully out-of-range read")
	}
}

func TestChannel0PadsShortSources(t *testing.T) {
	src := NewSource([]int16{100, 200}, 1)
	out := src.Channel0(4)
	assert.Len(t, out, 4)
	assert.Equal(t, 0.0, out[1])
	assert.Equal(t, 0.0, out[2])
	assert.Equal(t, 0.0, out[3])
}
