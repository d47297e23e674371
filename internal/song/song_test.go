package song

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sscholbe/autodj/internal/audio"
)

func TestArtistAndTitleSplitsOnFirstDash(t *testing.T) {
	cases := []struct {
		file, artist, title string
	}{
		{"/data/songs/Daft Punk - One More Time.wav", "Daft Punk", "One More Time"},
		{"NoDashHere.mp3", "", "NoDashHere"},
		{"A - B - C.wav", "A", "B - C"},
	}
	for _, c := range cases {
		artist, title := ArtistAndTitle(c.file)
		assert.Equal(t, c.artist, artist, "artist for %q", c.file)
		assert.Equal(t, c.title, title, "title for %q", c.file)
	}
}

func TestBarTimeRoundTrip(t *testing.T) {
	src := audio.NewSource(make([]int16, 48000*2*10), 48000*10)
	s := New("song.wav", src, 120, 24000)

	for _, bar := range []float64{-2, 0, 0.5, 1, 8.25} {
		tm := s.BarToTime(bar)
		got := s.TimeToBar(tm)
		assert.InDelta(t, bar, got, 1e-9)
	}
}

func TestPeakEnvelopeBucketCount(t *testing.T) {
	src := audio.NewSource(make([]int16, 1000*2), 1000)
	s := New("song.wav", src, 120, 0)
	env := s.PeakEnvelope(16)
	require.Len(t, env, 16)
}
