// Package config loads the optional YAML configuration file that overrides
// the engine's directories, ffmpeg path, listen address, the global-BPM
// bounds and the effect registry's asset directory; the mixer's buffer sizes
// are fixed constants and are not configurable. It is the same kind of sidecar file the teacher kept a JSON weights
// file for, generalised to YAML.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full set of operator-tunable settings for a running engine.
type Config struct {
	DataDir   string `yaml:"data_dir"`
	AssetsDir string `yaml:"assets_dir"`
	CacheDir  string `yaml:"cache_dir"`
	FFmpeg    string `yaml:"ffmpeg"`
	Listen    string `yaml:"listen"`

	MinBPM int `yaml:"min_bpm"`
	MaxBPM int `yaml:"max_bpm"`
}

// Default returns the engine's built-in defaults, used whenever no config
// file is present or a field is left unset.
func Default() Config {
	return Config{
		DataDir:   "data",
		AssetsDir: "data/fx",
		CacheDir:  "data/cache",
		FFmpeg:    "ffmpeg",
		Listen:    ":0",
		MinBPM:    60,
		MaxBPM:    200,
	}
}

// Load reads a YAML config file, falling back to Default for any field left
// zero-valued in the file (and for a missing file entirely).
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return cfg, err
	}
	merge(&cfg, override)
	return cfg, nil
}

func merge(base *Config, override Config) {
	if override.DataDir != "" {
		base.DataDir = override.DataDir
	}
	if override.AssetsDir != "" {
		base.AssetsDir = override.AssetsDir
	}
	if override.CacheDir != "" {
		base.CacheDir = override.CacheDir
	}
	if override.FFmpeg != "" {
		base.FFmpeg = override.FFmpeg
	}
	if override.Listen != "" {
		base.Listen = override.Listen
	}
	if override.MinBPM != 0 {
		base.MinBPM = override.MinBPM
	}
	if override.MaxBPM != 0 {
		base.MaxBPM = override.MaxBPM
	}
}
