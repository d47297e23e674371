// Package dsp holds the numeric building blocks shared by the analyzer and
// the effect chain: FFT, Butterworth filter design, polynomial detrending
// and piecewise-linear curve arithmetic.
package dsp

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"
)

// Biquad holds direct-form-II-transposed coefficients for a 2nd-order IIR
// section: b0,b1,b2 numerator, a1,a2 denominator (a0 is normalised to 1).
type Biquad struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// BiquadState carries the two delay elements of a direct-form-II-transposed
// section across successive Step calls, so a filter can be applied one
// sample at a time while preserving continuity across calls.
type BiquadState struct {
	Z1, Z2 float64
}

// Step filters a single sample and advances the state in place.
func (c Biquad) Step(st *BiquadState, x float64) float64 {
	y := c.B0*x + st.Z1
	st.Z1 = c.B1*x - c.A1*y + st.Z2
	st.Z2 = c.B2*x - c.A2*y
	return y
}

// ButterworthLowpass designs a 2nd-order Butterworth lowpass via the
// bilinear transform, cutoff normalised to [0,1] of the Nyquist frequency.
// cutoff == 0 yields an all-stop filter (the caller special-cases this, as
// the bilinear transform is undefined at Wn=0).
func ButterworthLowpass(cutoff float64) Biquad {
	return butterworthBilinear(cutoff, false)
}

// ButterworthHighpass designs a 2nd-order Butterworth highpass the same way.
func ButterworthHighpass(cutoff float64) Biquad {
	return butterworthBilinear(cutoff, true)
}

func butterworthBilinear(cutoff float64, high bool) Biquad {
	// Pre-warp the cutoff for the bilinear transform, analog prototype with
	// Q = 1/sqrt(2) (Butterworth).
	wa := 2 * math.Tan(math.Pi*cutoff/2)
	const sqrt2 = math.Sqrt2
	// Analog lowpass prototype: H(s) = wa^2 / (s^2 + sqrt2*wa*s + wa^2)
	k := 2.0 // bilinear transform sample-rate-normalised constant (fs=2)
	wa2 := wa * wa
	norm := k*k + sqrt2*wa*k + wa2
	if high {
		// s -> wa^2/s swap for highpass prototype before the transform is
		// algebraically equivalent to swapping b coefficients below.
		b0 := k * k / norm
		b1 := -2 * k * k / norm
		b2 := k * k / norm
		a1 := (2*wa2 - 2*k*k) / norm
		a2 := (k*k - sqrt2*wa*k + wa2) / norm
		return Biquad{B0: b0, B1: b1, B2: b2, A1: a1, A2: a2}
	}
	b0 := wa2 / norm
	b1 := 2 * wa2 / norm
	b2 := wa2 / norm
	a1 := (2*wa2 - 2*k*k) / norm
	a2 := (k*k - sqrt2*wa*k + wa2) / norm
	return Biquad{B0: b0, B1: b1, B2: b2, A1: a1, A2: a2}
}

// LFilter applies a biquad to a full signal with zero initial state,
// matching the one-shot use of scipy.signal.lfilter in the analyzer's
// pre-filtering step.
func LFilter(c Biquad, x []float64) []float64 {
	out := make([]float64, len(x))
	var st BiquadState
	for i, v := range x {
		out[i] = c.Step(&st, v)
	}
	return out
}

// Hann returns an n-point Hann window.
func Hann(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

// Spectrogram computes a power (squared-magnitude) STFT of x with the given window length
// and hop size, returning one row per frequency bin (DC first) and one
// column per time frame, plus the frame center times in seconds.
func Spectrogram(x []float64, sampleRate, nperseg, hop int) (sxx [][]float64, t []float64) {
	win := Hann(nperseg)
	fft := fourier.NewFFT(nperseg)
	nbins := nperseg/2 + 1
	nframes := 0
	if len(x) >= nperseg {
		nframes = (len(x)-nperseg)/hop + 1
	}
	sxx = make([][]float64, nbins)
	for i := range sxx {
		sxx[i] = make([]float64, nframes)
	}
	t = make([]float64, nframes)
	buf := make([]float64, nperseg)
	for f := 0; f < nframes; f++ {
		start := f * hop
		for i := 0; i < nperseg; i++ {
			buf[i] = x[start+i] * win[i]
		}
		coeffs := fft.Coefficients(nil, buf)
		for b := 0; b < nbins; b++ {
			m := cmplxAbs(coeffs[b])
			sxx[b][f] = m * m
		}
		t[f] = (float64(start) + float64(nperseg)/2) / float64(sampleRate)
	}
	return sxx, t
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

// SumAxis0 sums a [bins][frames] matrix down to a single [frames] row,
// mirroring numpy's `np.sum(Sxx, axis=0)`.
func SumAxis0(sxx [][]float64) []float64 {
	if len(sxx) == 0 {
		return nil
	}
	out := make([]float64, len(sxx[0]))
	for _, row := range sxx {
		for i, v := range row {
			out[i] += v
		}
	}
	return out
}

// FullAutocorrelate computes the full (length 2n-1) linear autocorrelation
// of x via FFT-based convolution, matching `np.correlate(x, x, 'full')`.
func FullAutocorrelate(x []float64) []float64 {
	n := len(x)
	size := 1
	for size < 2*n-1 {
		size *= 2
	}
	fft := fourier.NewFFT(size)
	padded := make([]float64, size)
	copy(padded, x)
	freq := fft.Coefficients(nil, padded)
	for i, c := range freq {
		freq[i] = c * complex(real(c), -imag(c))
	}
	full := fft.Sequence(nil, freq)
	out := make([]float64, 2*n-1)
	// np.correlate full output is centered so that out[n-1] is the zero-lag
	// term; the cyclic convolution above places zero-lag at index 0, so we
	// rotate: lags 0..n-1 come from indices 0..n-1, lags -(n-1)..-1 come
	// from the tail of the padded cyclic result.
	for lag := 0; lag < n; lag++ {
		out[n-1+lag] = full[lag] / float64(size)
	}
	for lag := 1; lag < n; lag++ {
		out[n-1-lag] = full[size-lag] / float64(size)
	}
	return out
}

// GaussianFilter1D smooths x with a truncated discrete Gaussian kernel of
// the given sigma (reflecting at the boundaries), matching
// scipy.ndimage.gaussian_filter's default mode for a 1-D array closely
// enough for the analyzer's smoothing step.
func GaussianFilter1D(x []float64, sigma float64) []float64 {
	radius := int(4*sigma + 0.5)
	kernel := make([]float64, 2*radius+1)
	var sum float64
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	n := len(x)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var acc float64
		for k := -radius; k <= radius; k++ {
			idx := reflectIndex(i+k, n)
			acc += kernel[k+radius] * x[idx]
		}
		out[i] = acc
	}
	return out
}

func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i - 1
		}
		if i >= n {
			i = 2*n - i - 1
		}
	}
	return i
}

// PolyFitEval fits a degree-d polynomial to (x,y) by least squares (the
// Vandermonde system solved by QR factorisation via gonum/mat) and returns y's polynomial trend
// evaluated at x, matching `np.polyval(np.polyfit(x, y, d), x)`.
func PolyFitEval(x, y []float64, degree int) []float64 {
	n := len(x)
	cols := degree + 1
	a := mat.NewDense(n, cols, nil)
	for i := 0; i < n; i++ {
		p := 1.0
		for c := cols - 1; c >= 0; c-- {
			a.Set(i, c, p)
			p *= x[i]
		}
	}
	b := mat.NewVecDense(n, y)
	var coeffs mat.VecDense
	var qr mat.QR
	qr.Factorize(a)
	if err := qr.SolveVecTo(&coeffs, false, b); err != nil {
		return make([]float64, n)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var v float64
		p := 1.0
		for c := cols - 1; c >= 0; c-- {
			v += coeffs.AtVec(c) * p
			p *= x[i]
		}
		out[i] = v
	}
	return out
}

// Norm2 returns the Euclidean norm of x.
func Norm2(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += v * v
	}
	return math.Sqrt(s)
}

// PWFunc is a piecewise-linear function given by sorted, unique x
// coordinates and matching y values. It evaluates to 0 outside [x0, xn-1].
type PWFunc struct {
	X, Y []float64
}

// Eval linearly interpolates at t, returning 0 outside the support.
func (f PWFunc) Eval(t float64) float64 {
	n := len(f.X)
	if n == 0 || t < f.X[0] || t > f.X[n-1] {
		return 0
	}
	i := sort.SearchFloat64s(f.X, t)
	if i < n && f.X[i] == t {
		return f.Y[i]
	}
	// i is the insertion point; interpolate between i-1 and i.
	if i == 0 {
		return f.Y[0]
	}
	x0, x1 := f.X[i-1], f.X[i]
	y0, y1 := f.Y[i-1], f.Y[i]
	if x1 == x0 {
		return y0
	}
	frac := (t - x0) / (x1 - x0)
	return y0 + frac*(y1-y0)
}

// AddPW adds two piecewise-linear functions, returning a function sampled
// on the sorted union of both supports, matching `add_pw_functions`.
func AddPW(a, b PWFunc) PWFunc {
	seen := make(map[float64]bool, len(a.X)+len(b.X))
	xs := make([]float64, 0, len(a.X)+len(b.X))
	for _, x := range a.X {
		if !seen[x] {
			seen[x] = true
			xs = append(xs, x)
		}
	}
	for _, x := range b.X {
		if !seen[x] {
			seen[x] = true
			xs = append(xs, x)
		}
	}
	sort.Float64s(xs)
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = a.Eval(x) + b.Eval(x)
	}
	return PWFunc{X: xs, Y: ys}
}

// ArgMax returns the index of the largest value in x.
func ArgMax(x []float64) int {
	best := 0
	for i, v := range x {
		if v > x[best] {
			best = i
		}
	}
	return best
}

// FFTMagnitude returns the magnitude of the full (length-n) complex DFT of
// a real signal x, matching `np.abs(scipy.fft.fft(x))`.
func FFTMagnitude(x []float64) []float64 {
	n := len(x)
	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, x)
	out := make([]float64, n)
	// fourier.FFT only returns the non-redundant half (n/2+1 bins) for a
	// real input; mirror the conjugate-symmetric upper half to recover the
	// full-length spectrum numpy's fft would produce.
	half := len(coeffs)
	for i := 0; i < half; i++ {
		out[i] = cmplxAbs(coeffs[i])
	}
	for i := half; i < n; i++ {
		out[i] = cmplxAbs(coeffs[n-i])
	}
	return out
}

// Convolve returns the full linear convolution of x and h (length
// len(x)+len(h)-1), computed via zero-padded FFT multiplication.
func Convolve(x, h []float64) []float64 {
	n := len(x) + len(h) - 1
	size := 1
	for size < n {
		size *= 2
	}
	fft := fourier.NewFFT(size)
	px := make([]float64, size)
	copy(px, x)
	ph := make([]float64, size)
	copy(ph, h)
	fx := fft.Coefficients(nil, px)
	fh := fft.Coefficients(nil, ph)
	for i := range fx {
		fx[i] *= fh[i]
	}
	full := fft.Sequence(nil, fx)
	out := make([]float64, n)
	for i := range out {
		out[i] = full[i] / float64(size)
	}
	return out
}

// Warp linearly interpolates knots (evenly spaced over [0,1] on the
// x-axis) at position p in [0,1], matching the piecewise-linear cutoff
// warp tables used by the dynamic filter effects.
func Warp(knots []float64, p float64) float64 {
	n := len(knots)
	if n == 1 {
		return knots[0]
	}
	pos := p * float64(n-1)
	i := int(pos)
	if i >= n-1 {
		return knots[n-1]
	}
	if i < 0 {
		return knots[0]
	}
	frac := pos - float64(i)
	return knots[i] + frac*(knots[i+1]-knots[i])
}

// NearestIndex returns the index of the value in x closest to target.
func NearestIndex(x []float64, target float64) int {
	best := 0
	bestDiff := math.Abs(x[0] - target)
	for i, v := range x {
		if d := math.Abs(v - target); d < bestDiff {
			best = i
			bestDiff = d
		}
	}
	return best
}
