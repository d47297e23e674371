package mixer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sscholbe/autodj/internal/audio"
	"github.com/sscholbe/autodj/internal/effects"
	"github.com/sscholbe/autodj/internal/song"
)

func TestChooseSpeedPicksClosestToUnity(t *testing.T) {
	cases := []struct {
		globalBPM, songBPM, want float64
	}{
		{140, 70, 1.0},  // 140/70=2 vs 1 vs 4; |1-1|=0 wins
		{130, 130, 1.0},
		{130, 65, 1.0},  // 2 vs 1 vs 4
		{180, 100, 0.9}, // s1=1.8 -> |1-1.8|=.8; s1/2=.9->.1 wins; s1*2=3.6->2.6
	}
	for _, c := range cases {
		got := chooseSpeed(c.globalBPM, c.songBPM)
		assert.InDelta(t, c.want, got, 1e-9, "chooseSpeed(%v, %v)", c.globalBPM, c.songBPM)
	}
}

func newRegistry(t *testing.T) *effects.Registry {
	t.Helper()
	r, err := effects.NewRegistry("")
	require.NoError(t, err)
	return r
}

func TestProduceWithNoDecksIsSilent(t *testing.T) {
	m := New(newRegistry(t))
	block := m.Produce()
	require.Len(t, block, BufferSize*2)
	for _, v := range block {
		assert.Zero(t, v, "expected all-zero output with no decks playing")
	}
}

func TestProduceClipsToUnitRange(t *testing.T) {
	m := New(newRegistry(t))
	pcm := make([]int16, 48000*2*30)
	for i := range pcm {
		pcm[i] = 32767
	}
	src := audio.NewSource(pcm, 48000*30)
	s := song.New("loud.wav", src, float64(m.GlobalBPM), 0)
	m.Decks[0].Load(s)
	m.Decks[0].Play(0)

	block := m.Produce()
	for _, v := range block {
		assert.LessOrEqual(t, v, float32(1))
		assert.GreaterOrEqual(t, v, float32(-1))
	}
}
