package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPWFuncEvalOutsideSupportIsZero(t *testing.T) {
	f := PWFunc{X: []float64{1, 2, 3}, Y: []float64{10, 20, 30}}
	assert.Zero(t, f.Eval(0), "before support")
	assert.Zero(t, f.Eval(4), "after support")
	assert.InDelta(t, 15, f.Eval(1.5), 1e-9, "midpoint")
}

func TestAddPWUnionsSupports(t *testing.T) {
	a := PWFunc{X: []float64{0, 1}, Y: []float64{1, 1}}
	b := PWFunc{X: []float64{0.5, 1.5}, Y: []float64{2, 2}}
	sum := AddPW(a, b)

	assert.InDelta(t, 1, sum.Eval(0), 1e-9, "only a covers this point")
	assert.InDelta(t, 2, sum.Eval(1.5), 1e-9, "only b covers this point")
	assert.InDelta(t, 3, sum.Eval(0.75), 0.2, "both cover this point")
}

func TestPolyFitEvalRecoversLinearFunction(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{1, 3, 5, 7, 9} // y = 2x + 1

	got := PolyFitEval(x, y, 1)
	for i := range x {
		assert.InDelta(t, y[i], got[i], 1e-6, "PolyFitEval at x=%v", x[i])
	}
}

func TestArgMaxFindsPeak(t *testing.T) {
	x := []float64{0, 3, -5, 9, 2}
	assert.Equal(t, 3, ArgMax(x))
}

func TestButterworthLowpassIsStable(t *testing.T) {
	b := ButterworthLowpass(0.1)
	x := make([]float64, 256)
	x[0] = 1
	y := LFilter(b, x)
	for _, v := range y {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "unstable filter output: %v", v)
	}
}

func TestWarpInterpolatesAcrossKnots(t *testing.T) {
	knots := []float64{0, 10, 20}
	assert.Equal(t, 0.0, Warp(knots, 0))
	assert.Equal(t, 20.0, Warp(knots, 1))
	assert.Equal(t, 10.0, Warp(knots, 0.5))
}
