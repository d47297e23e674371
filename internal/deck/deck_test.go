package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sscholbe/autodj/internal/audio"
	"github.com/sscholbe/autodj/internal/song"
)

func newTestSong(bpm float64) *song.Song {
	src := audio.NewSource(make([]int16, 48000*2*20), 48000*20)
	return song.New("test.wav", src, bpm, 0)
}

func TestStageNowUnloadedIsNone(t *testing.T) {
	d := New()
	assert.Equal(t, None, d.StageNow())
}

func TestStageNowWithoutTransitionIsPost(t *testing.T) {
	d := New()
	d.Load(newTestSong(120))
	d.Play(0)
	assert.Equal(t, Post, d.StageNow())
}

func TestStageNowTracksTransitionBars(t *testing.T) {
	d := New()
	s := newTestSong(120)
	d.Load(s)
	d.TransitionBars = []int{4, 8}

	d.Play(s.BarToTime(0))
	assert.Equal(t, Pre, d.StageNow(), "before window")

	d.Time = s.BarToTime(6)
	assert.Equal(t, Mix, d.StageNow(), "inside window")

	d.Time = s.BarToTime(9)
	assert.Equal(t, Post, d.StageNow(), "after window")
}

func TestClearTransitionDropsWindowButKeepsPlayback(t *testing.T) {
	d := New()
	s := newTestSong(120)
	d.Load(s)
	d.TransitionBars = []int{0, 4}
	d.Play(0)

	d.ClearTransition()
	assert.Nil(t, d.TransitionBars)
	assert.True(t, d.Transition.Empty(), "expected Transition to be empty after ClearTransition")
	assert.True(t, d.IsPlaying, "ClearTransition must not stop playback")
	assert.Equal(t, Post, d.StageNow(), "StageNow once the transition window is gone")
}
