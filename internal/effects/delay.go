package effects

import (
	"math"

	"github.com/sscholbe/autodj/internal/audio"
)

// Delay is a stereo offset echo built on the same dynamic highpass kernel
// as HighPass: the signal is highpassed first to keep the echo from
// muddying the bass, then added back to itself offset by an eighth note at
// the global BPM (left channel) and a quarter note (right channel).
type Delay struct {
	hp *dynamicIIR
}

func NewDelay() *Delay {
	return &Delay{hp: newDynamicIIR("dly", 0.0, normalizedKnots(cutoffKnots), true)}
}

func (d *Delay) ID() string            { return "dly" }
func (d *Delay) DefaultValue() float32 { return 0.0 }

func (d *Delay) Apply(input, output []float32, param []float32, bpm float64) {
	n := len(param)
	half := make([]float32, n)
	for i := range half {
		half[i] = 0.5
	}
	tmp := make([]float32, n*2)
	d.hp.apply(input, tmp, half)

	off := int(math.Round(60 / bpm * audio.SampleRate / 2))
	if off > 0 {
		for i := n - 1; i >= off; i-- {
			tmp[i*2] += tmp[(i-off)*2]
		}
	}
	off2 := off * 2
	if off2 > 0 {
		for i := n - 1; i >= off2; i-- {
			tmp[i*2+1] += tmp[(i-off2)*2+1]
		}
	}

	for i := 0; i < n; i++ {
		output[i*2] = input[i*2] + tmp[i*2]*param[i]
		output[i*2+1] = input[i*2+1] + tmp[i*2+1]*param[i]
	}
}
