package effects

import (
	"math"

	"github.com/sscholbe/autodj/internal/dsp"
)

// dynamicIIR is the shared implementation behind LowPass, HighPass and
// Noise: a precomputed table of biquad coefficients indexed by a
// discretised [0,1] cutoff parameter, applied sample-by-sample with filter
// memory carried across the whole call.
type dynamicIIR struct {
	id         string
	defaultVal float32
	table      []dsp.Biquad
}

const tableResolution = 256

func newDynamicIIR(id string, defaultVal float32, knots []float64, highpass bool) *dynamicIIR {
	table := make([]dsp.Biquad, tableResolution)
	for i := 0; i < tableResolution; i++ {
		p := float64(i) / float64(tableResolution-1)
		table[i] = designIIR(knots, p, highpass)
	}
	return &dynamicIIR{id: id, defaultVal: defaultVal, table: table}
}

// designIIR mirrors the Python designer lambdas: special-case the fully
// open/closed ends where `scipy.signal.butter` would be undefined, and
// otherwise warp the raw [0,1] param through the knot table before
// designing a 2nd-order Butterworth section.
func designIIR(knots []float64, p float64, highpass bool) dsp.Biquad {
	passthrough := dsp.Biquad{B0: 1}
	allStop := dsp.Biquad{}
	if highpass {
		if p == 0 {
			return passthrough
		}
		if p == 1 {
			return allStop
		}
		return dsp.ButterworthHighpass(dsp.Warp(knots, p))
	}
	if p == 0 {
		return allStop
	}
	if p == 1 {
		return passthrough
	}
	return dsp.ButterworthLowpass(dsp.Warp(knots, p))
}

func (f *dynamicIIR) ID() string            { return f.id }
func (f *dynamicIIR) DefaultValue() float32 { return f.defaultVal }

// apply filters a stereo block from input into output, selecting a coefficient set per
// sample from the precomputed table and keeping independent left/right
// filter memory across the whole call.
func (f *dynamicIIR) apply(input, output []float32, param []float32) {
	n := len(param)
	var stL, stR dsp.BiquadState
	res := len(f.table)
	for i := 0; i < n; i++ {
		idx := int(math.Round(float64(param[i]) * float64(res-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= res {
			idx = res - 1
		}
		c := f.table[idx]
		output[i*2] = float32(c.Step(&stL, float64(input[i*2])))
		output[i*2+1] = float32(c.Step(&stR, float64(input[i*2+1])))
	}
}
