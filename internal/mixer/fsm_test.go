package mixer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sscholbe/autodj/internal/audio"
	"github.com/sscholbe/autodj/internal/deck"
	"github.com/sscholbe/autodj/internal/song"
	"github.com/sscholbe/autodj/internal/transition"
)

func newFSMSong(t *testing.T, bpm float64) *song.Song {
	t.Helper()
	src := audio.NewSource(make([]int16, 48000*2*60), 48000*60)
	return song.New("x.wav", src, bpm, 0)
}

func TestFSMLoadIntoEmptyInitAGoesToDeckA(t *testing.T) {
	m := New(newRegistry(t))
	s := newFSMSong(t, 120)

	dryTarget := m.FSM.Load(s, true)
	assert.Equal(t, A, dryTarget, "dry Load target")
	assert.Nil(t, m.Decks[0].Song, "dry run must not mutate state")

	m.FSM.Load(s, false)
	assert.Same(t, s, m.Decks[0].Song, "Load did not install song into deck A")
}

func TestFSMCancelIllegalWithNoTransitionQueued(t *testing.T) {
	m := New(newRegistry(t))
	assert.Equal(t, Invalid, m.FSM.Cancel(true))
}

// TestFSMQueueOneSidedInitAFadeIn covers the InitA branch of Queue: a
// transition queued for deck A before it has ever played, which both
// starts playback and installs A's own fade-in window.
func TestFSMQueueOneSidedInitAFadeIn(t *testing.T) {
	m := New(newRegistry(t))
	a := newFSMSong(t, 120)
	m.FSM.Load(a, false)

	qd := QueueData{
		TransitionSrc: transition.Def{"vol": {{TNorm: 0, Value: 0}, {TNorm: 1, Value: 1}}},
		SelectionSrc:  [2]int{0, 3},
	}

	dryStage := m.FSM.Queue(qd, true)
	assert.Equal(t, InitA, dryStage, "dry Queue stage")
	assert.True(t, m.Decks[0].Transition.Empty(), "dry Queue call must not mutate deck A")
	assert.False(t, m.Decks[0].IsPlaying, "dry Queue call must not mutate deck A")

	m.FSM.Queue(qd, false)
	assert.True(t, m.Decks[0].IsPlaying, "Queue must start deck A playing")
	assert.False(t, m.Decks[0].Transition.Empty(), "Queue must install a transition on deck A")
}

// TestFSMQueueCyclesAToBThenBToA walks through a full A->B transition
// followed by a B->A transition, checking that FSM.Stage advances exactly
// when both decks have settled into POST, matching the FSM's stage tables.
func TestFSMQueueCyclesAToBThenBToA(t *testing.T) {
	m := New(newRegistry(t))
	a := newFSMSong(t, 120)
	b := newFSMSong(t, 120)

	m.FSM.Load(a, false)
	m.Decks[0].Play(0)
	m.FSM.update()
	require.Equal(t, InitA, m.FSM.Stage, "stage before B has a song")

	m.FSM.Load(b, false)
	require.Equal(t, AToB, m.FSM.Stage, "stage once B has a song and A is Post")

	qd := QueueData{
		TransitionSrc: transition.Def{"vol": {{TNorm: 0, Value: 1}, {TNorm: 1, Value: 0}}},
		TransitionDst: transition.Def{"vol": {{TNorm: 0, Value: 0}, {TNorm: 1, Value: 1}}},
		SelectionSrc:  [2]int{0, 3},
		SelectionDst:  [2]int{0, 3},
	}

	// a is Post (no transition yet), b is None (never played): the
	// one-sided "start the incoming deck" branch of AToB.
	dryStage := m.FSM.Queue(qd, true)
	assert.Equal(t, AToB, dryStage, "dry Queue stage while B has not started yet")
	m.FSM.Queue(qd, false)
	assert.Equal(t, AToB, m.FSM.Stage, "stage after first Queue (still mid-transition)")
	assert.NotNil(t, m.Decks[1].TransitionBars, "expected deck B to receive a transition window")
	assert.True(t, m.Decks[1].IsPlaying, "expected deck B to start playing")

	// Advance both decks past their transition windows so FSM sees both as Post.
	m.Decks[0].Time = a.BarToTime(5)
	m.Decks[1].Time = b.BarToTime(5)
	require.Equal(t, deck.Post, m.Decks[0].StageNow())
	require.Equal(t, deck.Post, m.Decks[1].StageNow())

	dryStage2 := m.FSM.Queue(qd, true)
	assert.Equal(t, BToA, dryStage2, "dry Queue stage once both decks are Post")
	m.FSM.Queue(qd, false)
	assert.Equal(t, BToA, m.FSM.Stage, "stage after second Queue")
	assert.NotNil(t, m.Decks[0].TransitionBars, "expected deck A to receive a fresh transition window for the B->A leg")
}

func TestFSMQueueDryRunDoesNotMutate(t *testing.T) {
	m := New(newRegistry(t))
	a := newFSMSong(t, 120)
	m.FSM.Load(a, false)

	qd := QueueData{SelectionSrc: [2]int{0, 3}}
	m.FSM.Queue(qd, true)
	assert.False(t, m.Decks[0].IsPlaying, "dry Queue call must not install a transition or start playback")
	assert.True(t, m.Decks[0].Transition.Empty())
}
