package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryOrderIsStableAndComplete(t *testing.T) {
	r, err := NewRegistry("")
	require.NoError(t, err)
	want := []string{"vol", "lpf", "hpf", "dly", "rev", "noise"}
	assert.Equal(t, want, r.Order())
}

func TestVolumeIsEqualPowerGain(t *testing.T) {
	v := NewVolume()
	input := []float32{1, 1, 1, 1}
	output := make([]float32, 4)
	param := []float32{0.25, 1.0}
	v.Apply(input, output, param, 130)

	assert.InDelta(t, 0.5, output[0], 1e-6, "gain at param=0.25")
	assert.InDelta(t, 1.0, output[2], 1e-6, "gain at param=1.0")
}

func TestVolumeZeroParamSilences(t *testing.T) {
	v := NewVolume()
	input := []float32{0.7, -0.7}
	output := make([]float32, 2)
	v.Apply(input, output, []float32{0}, 130)
	assert.Equal(t, float32(0), output[0])
	assert.Equal(t, float32(0), output[1])
}

func TestLowPassAndHighPassDefaultValues(t *testing.T) {
	lp := NewLowPass()
	assert.Equal(t, float32(1.0), lp.DefaultValue())
	hp := NewHighPass()
	assert.Equal(t, float32(0.0), hp.DefaultValue())
}

func TestNilAssetEffectsArePassthroughOrSilent(t *testing.T) {
	rev := NewReverb(nil)
	input := []float32{0.5, -0.5, 0.25, -0.25}
	output := make([]float32, 4)
	rev.Apply(input, output, []float32{1, 1}, 130)
	assert.Equal(t, input, output, "Reverb with nil IR should pass through")

	noise := NewNoise(nil)
	out2 := make([]float32, 4)
	noise.Apply(input, out2, []float32{0, 0}, 130)
	assert.Equal(t, input, out2, "Noise with nil clip should pass input through at param=0")
}
