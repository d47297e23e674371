package effects

// HighPass is a dynamic 2nd-order Butterworth highpass filter sharing
// LowPass's cutoff warp table.
type HighPass struct{ *dynamicIIR }

func NewHighPass() *HighPass {
	return &HighPass{newDynamicIIR("hpf", 0.0, normalizedKnots(cutoffKnots), true)}
}

func (f *HighPass) Apply(input, output []float32, param []float32, bpm float64) {
	f.apply(input, output, param)
}
