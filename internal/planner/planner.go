// Package planner orders a set of songs into a playlist and chooses, for
// each adjacent pair, which catalog transition asset and which bar offsets
// to queue. It is adapted from the teacher's greedy nearest-neighbour
// playlist sorter and weighted scenario search, re-grounded on bar-aligned
// transition.Def selections instead of raw-seconds TransitionSpecs since
// key detection (and therefore camelot-wheel distance) is out of scope.
package planner

import (
	"math"

	"github.com/sscholbe/autodj/internal/audio"
	"github.com/sscholbe/autodj/internal/catalog"
	"github.com/sscholbe/autodj/internal/song"
)

// Weights tunes how strongly each transition asset and bar-length choice is
// preferred, mirroring the teacher's user-editable type/bar weight file.
type Weights struct {
	TransitionWeights map[string]float64
	BarWeights        map[int]float64
}

// DefaultWeights returns the factory defaults: "cut" assets weighted highest
// and "crossfade" lowest (below the 1.0 given to unnamed assets), and 8-bar
// transitions preferred, 4 and 16 bars equal, and 32 bars least.
func DefaultWeights() Weights {
	return Weights{
		TransitionWeights: map[string]float64{
			"crossfade": 0.5,
			"cut":       1.2,
			"filter":    1.0,
		},
		BarWeights: map[int]float64{4: 1.0, 8: 1.3, 16: 1.0, 32: 0.6},
	}
}

func (w Weights) transitionWeight(name string) float64 {
	if v, ok := w.TransitionWeights[name]; ok {
		return v
	}
	return 1.0
}

func (w Weights) barWeight(bars int) float64 {
	if v, ok := w.BarWeights[bars]; ok {
		return v
	}
	return 0.5
}

// defaultBarOptions are the transition lengths, in bars, a candidate may
// pick from when no narrower option is given.
var defaultBarOptions = []int{4, 8, 16, 32}

// Candidate is one scored way to transition from song a into song b using a
// specific catalog asset over a specific number of bars.
type Candidate struct {
	Asset  catalog.TransitionAsset
	Bars   int
	SrcBar int
	DstBar int
	Score  float64
}

// PairTransition is the chosen candidate for one adjacent pair in a plan.
type PairTransition struct {
	Asset  catalog.TransitionAsset
	SrcBar int
	DstBar int
}

// Plan is a fully ordered playlist with one chosen transition between each
// consecutive pair of songs.
type Plan struct {
	Order       []*song.Song
	Transitions []PairTransition
}

// energy approximates the teacher's avgEnergy using the mean of the song's
// peak envelope, a cheap stand-in for spectral energy that needs no
// additional analysis pass.
func energy(s *song.Song) float64 {
	env := s.PeakEnvelope(64)
	if len(env) == 0 {
		return 0.5
	}
	var sum float64
	for _, v := range env {
		sum += float64(v)
	}
	return sum / float64(len(env))
}

// idealEnergy traces the same bell-shaped energy arc across a playlist that
// the teacher targets: build gradually, peak about 56% through, taper out.
func idealEnergy(position float64) float64 {
	return math.Sin(position*math.Pi*0.9)*0.6 + 0.4
}

// SortPlaylist orders songs by greedy nearest-neighbour over BPM closeness
// and the energy arc, the same heuristic the teacher used plus camelot key
// distance, minus the key term since no key is detected in this pipeline.
func SortPlaylist(songs []*song.Song) []*song.Song {
	if len(songs) == 0 {
		return nil
	}
	energies := make(map[*song.Song]float64, len(songs))
	for _, s := range songs {
		energies[s] = energy(s)
	}

	sorted := []*song.Song{songs[0]}
	remaining := append([]*song.Song(nil), songs[1:]...)

	for len(remaining) > 0 {
		current := sorted[len(sorted)-1]
		position := float64(len(sorted)) / float64(len(songs))
		target := idealEnergy(position)

		bestIdx := 0
		bestScore := math.Inf(-1)
		for i, cand := range remaining {
			score := 0.0
			bpmDiff := math.Abs(cand.BPM - current.BPM)
			score += math.Max(0, 20-bpmDiff)

			penalty := math.Abs(energies[cand] - target)
			score += math.Max(0, 20-penalty*20)

			if len(sorted) >= 2 {
				trend := current.BPM - sorted[len(sorted)-2].BPM
				if trend > 0 && cand.BPM > current.BPM {
					score += 5
				} else if trend < 0 && cand.BPM < current.BPM {
					score += 5
				}
			}

			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		sorted = append(sorted, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return sorted
}

// generateCandidates enumerates one candidate per (asset, bar option) pair,
// scored by the asset's transition weight, the bar-length weight, and a
// penalty for large BPM gaps (since long transitions compound time-stretch
// artifacts on mismatched tempos).
func generateCandidates(a, b *song.Song, assets []catalog.TransitionAsset, w Weights) []Candidate {
	bpmDiff := math.Abs(a.BPM - b.BPM)
	var out []Candidate
	for _, asset := range assets {
		for _, bars := range defaultBarOptions {
			score := w.transitionWeight(asset.Name) + w.barWeight(bars)
			score -= bpmDiff * float64(bars) / 64.0

			srcBar := int(a.TimeToBar(duration(a))) - bars
			if srcBar < 0 {
				srcBar = 0
			}
			out = append(out, Candidate{
				Asset:  asset,
				Bars:   bars,
				SrcBar: srcBar,
				DstBar: 0,
				Score:  score,
			})
		}
	}
	return out
}

// selectBest returns the highest-scoring candidate, or nil if none exist
// (an empty catalog of transition assets).
func selectBest(cands []Candidate) *Candidate {
	if len(cands) == 0 {
		return nil
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if c.Score > best.Score {
			best = c
		}
	}
	return &best
}

// duration returns the song's length in seconds, used only by the planner
// to anchor the outgoing transition near the end of a track.
func duration(s *song.Song) float64 {
	return float64(s.Len()) / audio.SampleRate
}

// Build orders songs with SortPlaylist and picks the best-scoring candidate
// for each adjacent pair, in a single deterministic pass. numScenarios is
// accepted for parity with the teacher's weighted scenario search but does
// not change the result: only one pass runs.
func Build(songs []*song.Song, assets []catalog.TransitionAsset, w Weights, numScenarios int) Plan {
	if len(songs) < 2 {
		return Plan{Order: songs}
	}
	if numScenarios <= 0 {
		numScenarios = 1
	}

	sorted := SortPlaylist(songs)
	var transitions []PairTransition
	for i := 0; i < len(sorted)-1; i++ {
		cands := generateCandidates(sorted[i], sorted[i+1], assets, w)
		best := selectBest(cands)
		if best == nil {
			continue
		}
		transitions = append(transitions, PairTransition{
			Asset:  best.Asset,
			SrcBar: best.SrcBar,
			DstBar: best.DstBar,
		})
	}
	return Plan{Order: sorted, Transitions: transitions}
}
