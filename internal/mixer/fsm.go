package mixer

import (
	"github.com/sscholbe/autodj/internal/deck"
	"github.com/sscholbe/autodj/internal/song"
	"github.com/sscholbe/autodj/internal/transition"
)

// TargetChannel identifies which deck a dry-run FSM command would affect, or
// Invalid if the command's preconditions are not met. Non-dry calls always
// return Invalid.
type TargetChannel int

const (
	Invalid TargetChannel = iota
	A
	B
)

func (t TargetChannel) String() string {
	switch t {
	case A:
		return "A"
	case B:
		return "B"
	default:
		return "INVALID"
	}
}

// Stage is the mixer's overall transition-control mode.
type Stage int

const (
	InitA Stage = iota
	AToB
	BToA
	InvalidStage
)

func (s Stage) String() string {
	switch s {
	case InitA:
		return "INIT_A"
	case AToB:
		return "A_TO_B"
	case BToA:
		return "B_TO_A"
	default:
		return "INVALID"
	}
}

// QueueData carries the two sides of a requested transition: the outgoing
// ("src") and incoming ("dst") TransitionDefs and their bar selections.
type QueueData struct {
	TransitionSrc, TransitionDst transition.Def
	SelectionSrc, SelectionDst   [2]int
}

// FSM implements the three-state controller that regulates when songs may
// be loaded and transitions queued or cancelled. It borrows both decks from
// its owning Mixer for the duration of each call; callers must hold the
// Mixer's lock.
type FSM struct {
	mixer *Mixer
	Stage Stage
}

func newFSM(m *Mixer) *FSM {
	return &FSM{mixer: m, Stage: InitA}
}

func (f *FSM) deckA() *deck.Deck { return f.mixer.Decks[0] }
func (f *FSM) deckB() *deck.Deck { return f.mixer.Decks[1] }

// update advances INIT_A to A_TO_B once A has finished its initial fade-in
// and B has a song loaded. Called once per produced block, after all
// per-deck audio work.
func (f *FSM) update() {
	a, b := f.deckA(), f.deckB()
	if f.Stage == InitA && a.StageNow() == deck.Post && b.Song != nil {
		f.Stage = AToB
	}
}

// MasterChannel returns the deck currently considered audible-dominant.
func (f *FSM) MasterChannel() TargetChannel {
	a, b := f.deckA(), f.deckB()
	switch f.Stage {
	case InitA:
		return A
	case AToB:
		bs := b.StageNow()
		if bs == deck.None || bs == deck.Pre {
			return A
		}
		return B
	case BToA:
		as := a.StageNow()
		if as == deck.None || as == deck.Pre {
			return B
		}
		return A
	}
	return Invalid
}

// Load decides which deck should receive s (an already-resolved Song; the
// caller is responsible for reusing an already-loaded Song with the same
// file rather than re-decoding). dry reports the target without mutating
// any state.
func (f *FSM) Load(s *song.Song, dry bool) TargetChannel {
	a, b := f.deckA(), f.deckB()

	switch f.Stage {
	case InitA:
		if a.Song == nil {
			if dry {
				return A
			}
			a.Load(s)
			return Invalid
		}
		if a.StageNow() == deck.None {
			if dry {
				return A
			}
			a.Load(s)
			return Invalid
		}
		if dry {
			return B
		}
		b.Load(s)
		if a.StageNow() == deck.Post {
			f.Stage = AToB
		}
		return Invalid
	case AToB:
		if a.StageNow() == deck.Post {
			switch b.StageNow() {
			case deck.None:
				if dry {
					return B
				}
				b.Load(s)
				return Invalid
			case deck.Post:
				if dry {
					return A
				}
				a.Load(s)
				f.Stage = BToA
				return Invalid
			}
		}
	case BToA:
		if b.StageNow() == deck.Post {
			switch a.StageNow() {
			case deck.None:
				if dry {
					return A
				}
				a.Load(s)
				return Invalid
			case deck.Post:
				if dry {
					return B
				}
				b.Load(s)
				f.Stage = AToB
				return Invalid
			}
		}
	}
	if dry {
		return Invalid
	}
	return Invalid
}

// Cancel clears a queued-but-not-yet-started transition, legal only when
// the incoming deck's stage is Pre.
func (f *FSM) Cancel(dry bool) TargetChannel {
	a, b := f.deckA(), f.deckB()

	switch f.Stage {
	case AToB:
		if a.StageNow() == deck.Pre {
			if dry {
				return B
			}
			a.ClearTransition()
			b.Load(b.Song)
			return Invalid
		}
	case BToA:
		if b.StageNow() == deck.Pre {
			if dry {
				return A
			}
			b.ClearTransition()
			a.Load(a.Song)
			return Invalid
		}
	}
	if dry {
		return Invalid
	}
	return Invalid
}

// Queue applies a requested transition if the current deck stages make it
// legal. dry reports the mixer stage that *would* result without mutating
// anything, or InvalidStage if the command is illegal. Non-dry calls always
// return InvalidStage.
func (f *FSM) Queue(qd QueueData, dry bool) Stage {
	a, b := f.deckA(), f.deckB()

	switch f.Stage {
	case InitA:
		if a.Song != nil && b.Song == nil && a.StageNow() == deck.None {
			if dry {
				return InitA
			}
			p := a.Song.BarToTime(float64(qd.SelectionSrc[0]))
			q := a.Song.BarToTime(float64(qd.SelectionSrc[1] + 1))
			a.TransitionBars = []int{qd.SelectionSrc[0], qd.SelectionSrc[1]}
			a.Transition = transition.Build(f.mixer.Registry, qd.TransitionSrc, p, q, true)
			a.Play(p)
		}
		return InvalidStage
	case AToB:
		as, bs := a.StageNow(), b.StageNow()
		if as == deck.Post && bs == deck.None {
			if dry {
				return AToB
			}
			f.applyTransition(qd, a, b)
			return InvalidStage
		}
		if as == deck.Post && bs == deck.Post {
			if dry {
				return BToA
			}
			f.applyTransition(qd, b, a)
			f.Stage = BToA
			return InvalidStage
		}
	case BToA:
		as, bs := a.StageNow(), b.StageNow()
		if as == deck.None && bs == deck.Post {
			if dry {
				return BToA
			}
			f.applyTransition(qd, b, a)
			return InvalidStage
		}
		if as == deck.Post && bs == deck.Post {
			if dry {
				return AToB
			}
			f.applyTransition(qd, a, b)
			f.Stage = AToB
			return InvalidStage
		}
	}
	if dry {
		return InvalidStage
	}
	return InvalidStage
}

// applyTransition installs a src->dst transition: the source deck's window
// ends at selection_src[1]+1 bars, the destination starts so that
// selection_src[0] and selection_dst[0] align on the global timeline.
func (f *FSM) applyTransition(qd QueueData, src, dst *deck.Deck) {
	songSrc, songDst := src.Song, dst.Song

	pa := songSrc.BarToTime(float64(qd.SelectionSrc[0]))
	pb := songDst.BarToTime(float64(qd.SelectionDst[0]))
	qa := songSrc.BarToTime(float64(qd.SelectionSrc[1] + 1))
	qb := songDst.BarToTime(float64(qd.SelectionDst[1] + 1))

	src.TransitionBars = []int{qd.SelectionSrc[0], qd.SelectionSrc[1]}
	dst.TransitionBars = []int{qd.SelectionDst[0], qd.SelectionDst[1]}

	src.Transition = transition.Build(f.mixer.Registry, qd.TransitionSrc, pa, qa, false)
	dst.Transition = transition.Build(f.mixer.Registry, qd.TransitionDst, pb, qb, true)

	barsToTransition := float64(qd.SelectionSrc[0]) - songSrc.TimeToBar(src.Time)
	dst.Play(songDst.BarToTime(float64(qd.SelectionDst[0]) - barsToTransition))
}
