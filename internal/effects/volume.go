package effects

import "math"

// Volume is an equal-power gain control: output = input * sqrt(param).
type Volume struct{}

func NewVolume() *Volume { return &Volume{} }

func (v *Volume) ID() string            { return "vol" }
func (v *Volume) DefaultValue() float32 { return 1.0 }

func (v *Volume) Apply(input, output []float32, param []float32, bpm float64) {
	for i, p := range param {
		gain := float32(math.Sqrt(float64(p)))
		output[i*2] = input[i*2] * gain
		output[i*2+1] = input[i*2+1] * gain
	}
}
