package effects

import "github.com/sscholbe/autodj/internal/dsp"

// Reverb is a convolution reverb against a fixed impulse response, mixed
// dry/wet by param.
type Reverb struct {
	ir []float32 // interleaved stereo IR, normalised so both channels together sum to one
	n  int        // IR length in frames
}

func NewReverb(ir []float32) *Reverb {
	return &Reverb{ir: ir, n: len(ir) / 2}
}

func (r *Reverb) ID() string            { return "rev" }
func (r *Reverb) DefaultValue() float32 { return 0.0 }

func (r *Reverb) Apply(input, output []float32, param []float32, bpm float64) {
	frames := len(param)
	if r.n == 0 {
		copy(output, input[:frames*2])
		return
	}
	for ch := 0; ch < 2; ch++ {
		dry := make([]float64, frames)
		ir := make([]float64, r.n)
		for i := 0; i < frames; i++ {
			dry[i] = float64(input[i*2+ch])
		}
		for i := 0; i < r.n; i++ {
			ir[i] = float64(r.ir[i*2+ch])
		}
		wet := dsp.Convolve(dry, ir)
		for i := 0; i < frames; i++ {
			p := param[i]
			output[i*2+ch] = float32(wet[i])*p + input[i*2+ch]*(1-p)
		}
	}
}
