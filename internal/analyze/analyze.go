// Package analyze implements the pure Song analyzer: AudioSource -> (bpm,
// offset). The algorithm is a direct port of the reference implementation's
// autocorrelation/BPM-folding pipeline.
package analyze

import (
	"errors"
	"math"

	"github.com/sscholbe/autodj/internal/audio"
	"github.com/sscholbe/autodj/internal/dsp"
)

// ErrUnanalyzable is returned when the signal yields a non-positive BPM
// candidate; callers treat this as an UnanalyzableSong error.
var ErrUnanalyzable = errors.New("analyze: unanalyzable song")

const (
	nperseg = 256
	hop     = 128
)

// Analyze computes (bpm, offset_samples) from the first 60 seconds of
// channel 0 of src.
func Analyze(src *audio.Source) (bpm float64, offset int64, err error) {
	inp := src.Channel0(audio.SampleRate * 60)

	lp := dsp.ButterworthLowpass(0.01)
	inp = dsp.LFilter(lp, inp)

	sxx, t := dsp.Spectrogram(inp, audio.SampleRate, nperseg, hop)

	bpm, err = detectBPM(sxx)
	if err != nil {
		return 0, 0, err
	}
	offset = detectOffset(sxx, t, bpm)
	return bpm, offset, nil
}

func detectBPM(sxx [][]float64) (float64, error) {
	flat := dsp.SumAxis0(sxx)

	corr := dsp.FullAutocorrelate(flat)
	corr = dsp.GaussianFilter1D(corr, 10)
	corr = corr[len(corr)/2:]

	x := arangeF(len(corr))
	trend := dsp.PolyFitEval(x, corr, 3)
	for i := range corr {
		corr[i] -= trend[i]
	}

	mag := dsp.FFTMagnitude(corr)
	mag = mag[:len(mag)/2]

	acc := dsp.PWFunc{}
	l := float64(len(mag))
	d := 1
	for l >= 2 {
		xs := make([]float64, len(mag))
		for i := range xs {
			xs[i] = float64(i) / float64(d)
		}
		acc = dsp.AddPW(acc, dsp.PWFunc{X: xs, Y: mag})
		l /= 2
		d++
	}

	var abx, aby []float64
	for i, v := range acc.X {
		if v >= 30 && v <= 180 {
			abx = append(abx, v)
			aby = append(aby, acc.Y[i])
		}
	}
	if len(abx) == 0 {
		return 0, ErrUnanalyzable
	}
	trend2 := dsp.PolyFitEval(abx, aby, 2)
	for i := range aby {
		aby[i] -= trend2[i]
	}
	bpmCandidate := abx[dsp.ArgMax(aby)]

	cands, err := toReasonableBPM(bpmCandidate)
	if err != nil {
		return 0, err
	}
	return cands[len(cands)-1], nil
}

// toReasonableBPM folds a raw BPM estimate into the [70, 360] range and
// offers double/half alternatives, matching `_to_reasonable_bpm`.
func toReasonableBPM(bpm float64) ([]float64, error) {
	if bpm <= 0 {
		return nil, ErrUnanalyzable
	}
	for bpm > 180 && math.Mod(bpm, 2) == 0 {
		bpm = math.Floor(bpm / 2)
	}
	for bpm < 70 {
		bpm *= 2
	}
	cands := []float64{bpm}
	if math.Mod(bpm, 2) == 0 && bpm >= 140 {
		cands = append(cands, math.Floor(bpm/2))
	}
	if bpm <= 90 {
		cands = append(cands, bpm*2)
	}
	for i := 1; i < len(cands); i++ {
		for j := i; j > 0 && cands[j-1] > cands[j]; j-- {
			cands[j-1], cands[j] = cands[j], cands[j-1]
		}
	}
	return cands, nil
}

func detectOffset(sxx [][]float64, t []float64, bpm float64) int64 {
	bass := sxx[0]
	barSec := (60 / bpm) * 4
	bar := dsp.NearestIndex(t, barSec)

	acc := make([]float64, bar)
	for i := 0; i < 2048; i++ {
		off := dsp.NearestIndex(t, barSec*float64(i))
		if off+bar >= len(bass) {
			break
		}
		seg := normalize(bass[off : off+bar])
		for k, v := range seg {
			acc[k] += v
		}
	}
	peakIdx := dsp.ArgMax(acc)
	secs := math.Mod(t[peakIdx], 60/bpm)
	return int64(math.Round(secs * audio.SampleRate))
}

// normalize subtracts a 2nd-degree polynomial trend and L2-normalises,
// matching `normalize(x)`.
func normalize(x []float64) []float64 {
	p := arangeF(len(x))
	trend := dsp.PolyFitEval(p, x, 2)
	y := make([]float64, len(x))
	for i := range x {
		y[i] = x[i] - trend[i]
	}
	if l := dsp.Norm2(y); l != 0 {
		for i := range y {
			y[i] /= l
		}
	}
	return y
}

func arangeF(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}
