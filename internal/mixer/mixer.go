// Package mixer implements the real-time audio producer and the finite
// state machine that governs which transitions may be queued when.
package mixer

import (
	"math"
	"sync"

	"github.com/sscholbe/autodj/internal/audio"
	"github.com/sscholbe/autodj/internal/deck"
	"github.com/sscholbe/autodj/internal/effects"
	"github.com/sscholbe/autodj/internal/song"
	"github.com/sscholbe/autodj/internal/stretch"
)

// BufferSize is the number of stereo frames the producer emits per pull.
const BufferSize = 12000

// TransientSize is the length of the cross-fade window used to hide
// stretcher discontinuities at block boundaries.
const TransientSize = 1000

// Mixer owns both decks, the global transport clock, the effect registry
// and the FSM, and drives one block of output on each pull from the audio
// sink. A single mutex serialises it against operator commands.
type Mixer struct {
	mu sync.Mutex

	GlobalTime float64
	GlobalBPM  int
	Decks      [2]*deck.Deck
	Registry   *effects.Registry
	FSM        *FSM

	fadeIn, fadeOut []float32

	// Reusable scratch buffers, sized for the worst case (2*BufferSize
	// stereo frames), so the per-block effect chain ping-pong and param
	// sampling don't allocate.
	scratchA, scratchB, scratchParam []float32
}

// New builds a Mixer with both decks empty, global BPM defaulted to 130
// (the reference implementation's default) and the FSM in INIT_A.
func New(registry *effects.Registry) *Mixer {
	m := &Mixer{
		GlobalBPM: 130,
		Decks:     [2]*deck.Deck{deck.New(), deck.New()},
		Registry:  registry,
		fadeIn:      make([]float32, TransientSize),
		fadeOut:     make([]float32, TransientSize),
		scratchA:    make([]float32, 2*BufferSize*2),
		scratchB:    make([]float32, 2*BufferSize*2),
		scratchParam: make([]float32, 2*BufferSize),
	}
	for k := 0; k < TransientSize; k++ {
		x := float64(k) / float64(TransientSize-1)
		m.fadeIn[k] = float32(math.Sqrt(x))
		m.fadeOut[k] = float32(math.Sqrt(1 - x))
	}
	m.FSM = newFSM(m)
	return m
}

// Lock acquires the mixer lock for the duration of an operator command or
// the producer's own block.
func (m *Mixer) Lock() { m.mu.Lock() }

// Unlock releases the mixer lock.
func (m *Mixer) Unlock() { m.mu.Unlock() }

// FindLoadedSong returns a song already held by either deck whose File
// matches path, so a load command can reuse it instead of re-decoding and
// re-analyzing. Callers must hold the mixer lock.
func (m *Mixer) FindLoadedSong(path string) *song.Song {
	for _, d := range m.Decks {
		if d.Song != nil && d.Song.File == path {
			return d.Song
		}
	}
	return nil
}

// Produce renders the next BufferSize-frame stereo block. It acquires the
// mixer lock for its whole duration, matching the audio callback's
// contention with operator commands.
func (m *Mixer) Produce() []float32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	master := make([]float32, BufferSize*2)

	for _, d := range m.Decks {
		if !d.IsPlaying {
			continue
		}
		m.produceDeck(d, master)
	}

	m.GlobalTime += float64(BufferSize) / audio.SampleRate
	m.FSM.update()

	for i, v := range master {
		if v > 1 {
			master[i] = 1
		} else if v < -1 {
			master[i] = -1
		}
	}
	return master
}

func (m *Mixer) produceDeck(d *deck.Deck, master []float32) {
	speed := chooseSpeed(float64(m.GlobalBPM), d.Song.BPM)

	pos := int(math.Floor(d.Time * audio.SampleRate))
	src := d.Song.Stream(pos, 2*BufferSize)

	stretched := stretch.Stretch(src, 2*BufferSize, speed)
	need := (BufferSize + TransientSize) * 2
	if len(stretched) < need {
		padded := make([]float32, need)
		copy(padded, stretched)
		stretched = padded
	}
	inp := append([]float32(nil), stretched[:BufferSize*2]...)
	newTransient := append([]float32(nil), stretched[BufferSize*2:need]...)

	if d.Transient != nil {
		for k := 0; k < TransientSize; k++ {
			for ch := 0; ch < 2; ch++ {
				i := k*2 + ch
				inp[i] = inp[i]*m.fadeIn[k] + d.Transient[i]*m.fadeOut[k]
			}
		}
	}
	d.Transient = newTransient

	if d.Last == nil {
		d.Last = make([]float32, BufferSize*2)
	}
	doubled := m.scratchA[:2*BufferSize*2]
	copy(doubled, d.Last)
	copy(doubled[BufferSize*2:], inp)
	d.Last = append([]float32(nil), inp...)

	tAxis := make([]float64, 2*BufferSize)
	for k := range tAxis {
		tAxis[k] = d.Time + float64(k)*speed/audio.SampleRate
	}

	cur := doubled
	scratch := m.scratchB[:2*BufferSize*2]
	param := m.scratchParam[:2*BufferSize]
	for _, fx := range d.Transition.Order {
		curve := d.Transition.Curves[fx]
		effect, ok := m.Registry.Get(fx)
		if !ok {
			continue
		}
		for k, t := range tAxis {
			param[k] = float32(curve.Eval(t))
		}
		effect.Apply(cur, scratch, param, float64(m.GlobalBPM))
		cur, scratch = scratch, cur
	}

	d.Time += float64(BufferSize) * speed / audio.SampleRate

	for i := 0; i < BufferSize*2; i++ {
		master[i] += cur[BufferSize*2+i]
	}
}

// chooseSpeed picks the playback rate whose absolute distance to 1 is
// smallest among the song's natural speed, half-time and double-time.
func chooseSpeed(globalBPM, songBPM float64) float64 {
	s1 := globalBPM / songBPM
	candidates := [3]float64{s1, s1 / 2, s1 * 2}
	best := candidates[0]
	bestDiff := math.Abs(1 - best)
	for _, s := range candidates[1:] {
		if d := math.Abs(1 - s); d < bestDiff {
			best = s
			bestDiff = d
		}
	}
	return best
}
