// Package catalog is the on-disk song/transition discovery collaborator:
// a thin, opaque reader over data/songs and data/transitions, treated by
// the core engine as a source of blobs rather than something it reasons
// about.
package catalog

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sscholbe/autodj/internal/song"
	"github.com/sscholbe/autodj/internal/transition"
)

// songExtensions are the container formats the catalog will list; decoding
// support for all of them is the external decoder's problem, not ours.
var songExtensions = []string{".wav", ".mp3", ".mp4"}

// SongEntry is one catalog song, before it has been decoded or analyzed.
type SongEntry struct {
	File   string `json:"file"`
	Artist string `json:"artist"`
	Title  string `json:"title"`
}

// TransitionAsset is a serialised TransitionDef plus display metadata, the
// on-disk shape a catalog transition file takes.
type TransitionAsset struct {
	File string                    `yaml:"-" json:"file"`
	Name string                    `yaml:"name" json:"name"`
	Def  map[string][][2]float64   `yaml:"def" json:"def"`
}

// ToDef converts the YAML-friendly [][2]float64 point list into the
// engine's transition.Def.
func (a TransitionAsset) ToDef() transition.Def {
	def := make(transition.Def, len(a.Def))
	for fx, points := range a.Def {
		pts := make([]transition.Point, len(points))
		for i, p := range points {
			pts[i] = transition.Point{TNorm: p[0], Value: p[1]}
		}
		def[fx] = pts
	}
	return def
}

// Catalog lists songs and transitions under a data directory with the
// conventional data/songs and data/transitions layout.
type Catalog struct {
	DataDir string
}

// Songs enumerates every song file under DataDir/songs, deriving artist and
// title from the file name the same way song.ArtistAndTitle does.
func (c Catalog) Songs() ([]SongEntry, error) {
	dir := filepath.Join(c.DataDir, "songs")
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []SongEntry
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if !containsExt(songExtensions, ext) {
			continue
		}
		file := filepath.Join(dir, e.Name())
		artist, title := song.ArtistAndTitle(file)
		out = append(out, SongEntry{File: file, Artist: artist, Title: title})
	}
	return out, nil
}

// Transitions enumerates every transition asset under DataDir/transitions.
func (c Catalog) Transitions() ([]TransitionAsset, error) {
	dir := filepath.Join(c.DataDir, "transitions")
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []TransitionAsset
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		file := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		var asset TransitionAsset
		if err := yaml.Unmarshal(data, &asset); err != nil {
			return nil, err
		}
		asset.File = file
		out = append(out, asset)
	}
	return out, nil
}

func containsExt(exts []string, ext string) bool {
	for _, e := range exts {
		if e == ext {
			return true
		}
	}
	return false
}
