package effects

// Noise simulates a riser: a fixed noise clip is tiled and folded to the
// block length, lowpass-filtered through its own warp table, then linearly
// mixed against the dry input.
type Noise struct {
	iir   *dynamicIIR
	noise []float32 // interleaved stereo clip
	clipN int       // frames in noise
}

var noiseKnots = []float64{1, 500, 1000, 2500, 5000}

func NewNoise(clip []float32) *Noise {
	return &Noise{
		iir:   newDynamicIIR("noise", 0.0, normalizedKnots(noiseKnots), false),
		noise: clip,
		clipN: len(clip) / 2,
	}
}

func (n *Noise) ID() string            { return "noise" }
func (n *Noise) DefaultValue() float32 { return 0.0 }

func (n *Noise) Apply(input, output []float32, param []float32, bpm float64) {
	frames := len(param)
	tiled := n.tileAndFold(frames)
	filtered := make([]float32, frames*2)
	n.iir.apply(tiled, filtered, param)
	for i := 0; i < frames; i++ {
		p := param[i]
		output[i*2] = filtered[i*2]*p + input[i*2]*(1-p)
		output[i*2+1] = filtered[i*2+1]*p + input[i*2+1]*(1-p)
	}
}

// tileAndFold repeats the noise clip to cover `frames` samples, then folds
// it with its time-reverse (`x <- (x + reverse(x))/2`) so the riser has no
// audible seam at the tile boundary.
func (n *Noise) tileAndFold(frames int) []float32 {
	out := make([]float32, frames*2)
	if n.clipN == 0 {
		return out
	}
	for i := 0; i < frames; i++ {
		src := (i % n.clipN) * 2
		out[i*2] = n.noise[src]
		out[i*2+1] = n.noise[src+1]
	}
	for i := 0; i < frames; i++ {
		j := frames - 1 - i
		if i >= j {
			break
		}
		for ch := 0; ch < 2; ch++ {
			a := out[i*2+ch]
			b := out[j*2+ch]
			avg := (a + b) / 2
			out[i*2+ch] = avg
			out[j*2+ch] = avg
		}
	}
	return out
}
