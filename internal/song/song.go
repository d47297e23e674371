// Package song wraps an audio.Source with the musical metadata (tempo,
// downbeat offset, artist/title) the rest of the engine reasons about in
// bars rather than seconds.
package song

import (
	"path/filepath"
	"strings"

	"github.com/sscholbe/autodj/internal/audio"
)

// Song is an AudioSource plus analysis results and musical time mapping.
type Song struct {
	*audio.Source

	File   string
	Artist string
	Title  string
	BPM    float64 // beats per minute, expected in [70, 180]
	Offset int64   // samples from start to the first downbeat
}

// New builds a Song from an already-decoded Source and the analyzer's
// result for it.
func New(file string, src *audio.Source, bpm float64, offset int64) *Song {
	artist, title := ArtistAndTitle(file)
	return &Song{Source: src, File: file, Artist: artist, Title: title, BPM: bpm, Offset: offset}
}

// ArtistAndTitle splits a file's base name at the first '-', the artist on
// the left and the title on the right. With no separator the whole stem is
// the title.
func ArtistAndTitle(file string) (artist, title string) {
	name := filepath.Base(file)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	idx := strings.Index(name, "-")
	if idx == -1 {
		return "", strings.TrimSpace(name)
	}
	return strings.TrimSpace(name[:idx]), strings.TrimSpace(name[idx+1:])
}

// barDuration is the length of one bar (four beats) in seconds.
func (s *Song) barDuration() float64 {
	return 4 * 60 / s.BPM
}

// TimeToBar converts a time in source seconds to a (possibly fractional and
// negative) bar index.
func (s *Song) TimeToBar(t float64) float64 {
	return (t - float64(s.Offset)/audio.SampleRate) / s.barDuration()
}

// BarToTime is the exact inverse of TimeToBar.
func (s *Song) BarToTime(bar float64) float64 {
	return float64(s.Offset)/audio.SampleRate + bar*s.barDuration()
}

// PeakEnvelope downsamples the signal into the given number of buckets,
// each the peak absolute sample value within it, for collaborators that
// want a cheap numeric summary of the waveform without rendering it.
func (s *Song) PeakEnvelope(buckets int) []float32 {
	out := make([]float32, buckets)
	if buckets <= 0 || s.Len() == 0 {
		return out
	}
	bucketLen := s.Len() / buckets
	if bucketLen == 0 {
		bucketLen = 1
	}
	block := s.Stream(0, s.Len())
	for b := 0; b < buckets; b++ {
		start := b * bucketLen
		end := start + bucketLen
		if end > s.Len() {
			end = s.Len()
		}
		var peak float32
		for i := start; i < end; i++ {
			for ch := 0; ch < 2; ch++ {
				v := block[i*2+ch]
				if v < 0 {
					v = -v
				}
				if v > peak {
					peak = v
				}
			}
		}
		out[b] = peak
	}
	return out
}
