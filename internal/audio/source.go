// Package audio implements the immutable in-memory PCM source every other
// component reads from.
package audio

import "math"

// SampleRate is the fixed rate every Source is normalised to. The external
// decoder boundary (internal/decode) is responsible for resampling whatever
// it is handed into this rate before a Source is constructed.
const SampleRate = 48000

// Source is an immutable, peak-normalised stereo PCM signal. Once built it
// never mutates, so it may be shared freely between decks (see
// internal/deck) without copying.
type Source struct {
	signal []float32 // interleaved L,R
	length int       // frames
}

// NewSource converts a canonical stereo interleaved 16-bit PCM stream into a
// peak-normalised Source. pcm must contain length*2 samples, left and right
// channels interleaved.
func NewSource(pcm []int16, length int) *Source {
	signal := make([]float32, length*2)
	var peak float32
	for i, s := range pcm[:length*2] {
		f := float32(s) / 32768
		signal[i] = f
		if a := float32(math.Abs(float64(f))); a > peak {
			peak = a
		}
	}
	if peak > 0 {
		for i := range signal {
			signal[i] /= peak
		}
	}
	return &Source{signal: signal, length: length}
}

// Len returns the number of stereo frames in the source.
func (s *Source) Len() int { return s.length }

// Stream returns a freshly allocated len*2 float32 block starting at pos
// (in frames). Regions outside [0, Len()) are zero-padded.
func (s *Source) Stream(pos, length int) []float32 {
	out := make([]float32, length*2)
	if length <= 0 || pos+length <= 0 || pos >= s.length {
		return out
	}
	fromInp := pos
	if fromInp < 0 {
		fromInp = 0
	}
	toInp := pos + length
	if toInp > s.length {
		toInp = s.length
	}
	fromOut := -pos
	if fromOut < 0 {
		fromOut = 0
	}
	n := toInp - fromInp
	copy(out[fromOut*2:(fromOut+n)*2], s.signal[fromInp*2:toInp*2])
	return out
}

// Channel0 returns the first n frames of the left channel, zero-padded if
// the source is shorter. Used by the analyzer, which only ever looks at one
// channel of one minute of signal.
func (s *Source) Channel0(n int) []float64 {
	out := make([]float64, n)
	lim := n
	if s.length < lim {
		lim = s.length
	}
	for i := 0; i < lim; i++ {
		out[i] = float64(s.signal[i*2])
	}
	return out
}
