// Package deck implements one logical playback channel: its song, read
// head, active transition automation and the pre-context state the mixer
// needs to avoid audible seams at block boundaries.
package deck

import (
	"github.com/sscholbe/autodj/internal/song"
	"github.com/sscholbe/autodj/internal/transition"
)

// Stage is the relation of a deck's current playhead to its transition
// window.
type Stage int

const (
	None Stage = iota
	Pre
	Mix
	Post
)

func (s Stage) String() string {
	switch s {
	case None:
		return "NONE"
	case Pre:
		return "PRE"
	case Mix:
		return "MIX"
	case Post:
		return "POST"
	default:
		return "INVALID"
	}
}

// Deck is mutable playback state for one logical channel.
type Deck struct {
	Song           *song.Song
	Time           float64
	IsPlaying      bool
	Transition     transition.Set
	TransitionBars []int // [start_bar, end_bar] or nil

	Transient []float32 // last TRANSIENT_SIZE stretched stereo frames
	Last      []float32 // previous block's raw (pre-effect) stereo frames
}

// New returns an empty, unloaded deck.
func New() *Deck { return &Deck{} }

// Clear resets the deck to its zero state, as if never loaded.
func (d *Deck) Clear() {
	*d = Deck{}
}

// Load installs a new song, discarding all playback and transition state.
func (d *Deck) Load(s *song.Song) {
	d.Clear()
	d.Song = s
}

// ClearTransition drops the active transition without touching playback.
func (d *Deck) ClearTransition() {
	d.Transition = transition.Set{}
	d.TransitionBars = nil
}

// Play sets the read head and marks the deck as playing.
func (d *Deck) Play(time float64) {
	d.Time = time
	d.IsPlaying = true
}

// StageNow returns the deck's current TransitionStage.
func (d *Deck) StageNow() Stage {
	if !d.IsPlaying || d.Song == nil {
		return None
	}
	if d.TransitionBars == nil {
		return Post
	}
	bar := d.Song.TimeToBar(d.Time)
	if bar < float64(d.TransitionBars[0]) {
		return Pre
	}
	if bar >= float64(d.TransitionBars[1]+1) {
		return Post
	}
	return Mix
}
