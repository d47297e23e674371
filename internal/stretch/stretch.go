// Package stretch implements a phase-vocoder time-stretcher: the in-process
// stand-in for the reference implementation's external rubberband call,
// built on the same FFT dependency the analyzer uses.
package stretch

import (
	"math"

	"github.com/sscholbe/autodj/internal/dsp"
	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	frameSize   = 2048
	analysisHop = frameSize / 4
)

// Stretch time-scales a stereo interleaved signal by factor speed: the
// output holds approximately frames/speed samples (speed > 1 plays back
// faster/shorter, speed < 1 slower/longer), preserving pitch. Each channel
// is processed independently with a standard overlap-add phase vocoder.
func Stretch(input []float32, frames int, speed float64) []float32 {
	if frames < frameSize || speed <= 0 {
		// Too short to frame; fall back to a plain resample, which is
		// inaudibly different for sub-frame inputs.
		return resample(input, frames, speed)
	}
	left := make([]float64, frames)
	right := make([]float64, frames)
	for i := 0; i < frames; i++ {
		left[i] = float64(input[i*2])
		right[i] = float64(input[i*2+1])
	}

	synthesisHop := int(math.Round(analysisHop / speed))
	if synthesisHop < 1 {
		synthesisHop = 1
	}

	outL, outN := stretchChannel(left, synthesisHop)
	outR, _ := stretchChannel(right, synthesisHop)

	out := make([]float32, outN*2)
	for i := 0; i < outN; i++ {
		out[i*2] = float32(outL[i])
		out[i*2+1] = float32(outR[i])
	}
	return out
}

func stretchChannel(x []float64, synthesisHop int) ([]float64, int) {
	win := dsp.Hann(frameSize)

	nFrames := 0
	if len(x) >= frameSize {
		nFrames = (len(x)-frameSize)/analysisHop + 1
	}
	if nFrames == 0 {
		return append([]float64(nil), x...), len(x)
	}

	outLen := (nFrames-1)*synthesisHop + frameSize
	out := make([]float64, outLen)
	norm := make([]float64, outLen)

	fft := fourier.NewCmplxFFT(frameSize)
	prevPhase := make([]float64, frameSize)
	outPhase := make([]float64, frameSize)
	omega := make([]float64, frameSize)
	for k := range omega {
		omega[k] = 2 * math.Pi * float64(k) / float64(frameSize)
	}

	buf := make([]complex128, frameSize)
	for f := 0; f < nFrames; f++ {
		start := f * analysisHop
		for i := 0; i < frameSize; i++ {
			buf[i] = complex(x[start+i]*win[i], 0)
		}
		spec := fft.Coefficients(nil, buf)

		mag := make([]float64, frameSize)
		phase := make([]float64, frameSize)
		for k, c := range spec {
			mag[k] = math.Hypot(real(c), imag(c))
			phase[k] = math.Atan2(imag(c), real(c))
		}

		if f == 0 {
			copy(outPhase, phase)
		} else {
			for k := 0; k < frameSize; k++ {
				delta := phase[k] - prevPhase[k] - omega[k]*float64(analysisHop)
				delta = wrapPhase(delta)
				trueFreq := omega[k] + delta/float64(analysisHop)
				outPhase[k] += trueFreq * float64(synthesisHop)
			}
		}
		copy(prevPhase, phase)

		for k := 0; k < frameSize; k++ {
			buf[k] = complexFromPolar(mag[k], outPhase[k])
		}
		synth := fft.Sequence(nil, buf)

		synthStart := f * synthesisHop
		for i := 0; i < frameSize; i++ {
			v := real(synth[i]) / float64(frameSize)
			out[synthStart+i] += v * win[i]
			norm[synthStart+i] += win[i] * win[i]
		}
	}

	for i := range out {
		if norm[i] > 1e-8 {
			out[i] /= norm[i]
		}
	}
	return out, outLen
}

func wrapPhase(p float64) float64 {
	return math.Mod(p+math.Pi, 2*math.Pi) - math.Pi
}

func complexFromPolar(r, theta float64) complex128 {
	return complex(r*math.Cos(theta), r*math.Sin(theta))
}

// resample performs simple linear-interpolation resampling, used only as a
// fallback for inputs shorter than one analysis frame.
func resample(input []float32, frames int, speed float64) []float32 {
	if speed <= 0 {
		speed = 1
	}
	outN := int(float64(frames) / speed)
	out := make([]float32, outN*2)
	for i := 0; i < outN; i++ {
		srcPos := float64(i) * speed
		i0 := int(srcPos)
		if i0 >= frames-1 {
			i0 = frames - 2
			if i0 < 0 {
				i0 = 0
			}
		}
		frac := float32(srcPos - float64(i0))
		for ch := 0; ch < 2; ch++ {
			a := input[i0*2+ch]
			b := a
			if i0+1 < frames {
				b = input[(i0+1)*2+ch]
			}
			out[i*2+ch] = a + frac*(b-a)
		}
	}
	return out
}
