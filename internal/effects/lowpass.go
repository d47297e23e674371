package effects

// cutoffKnots are the warped cutoff-frequency knots (Hz, normalised to the
// 24kHz Nyquist of a 48kHz stream) shared by LowPass and HighPass, giving
// an exponential-feeling response to a linear [0,1] param.
var cutoffKnots = []float64{0, 30, 60, 120, 250, 500, 1000, 2000, 4000, 16000, 24000}

func normalizedKnots(hz []float64) []float64 {
	out := make([]float64, len(hz))
	for i, v := range hz {
		out[i] = v / 24000
	}
	return out
}

// LowPass is a dynamic 2nd-order Butterworth lowpass filter whose cutoff is
// driven by the transition curve's per-sample parameter.
type LowPass struct{ *dynamicIIR }

func NewLowPass() *LowPass {
	return &LowPass{newDynamicIIR("lpf", 1.0, normalizedKnots(cutoffKnots), false)}
}

func (f *LowPass) Apply(input, output []float32, param []float32, bpm float64) {
	f.apply(input, output, param)
}
