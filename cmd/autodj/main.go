// Command autodj runs the mixing engine: it loads configuration, builds the
// effect registry and mixer, starts the pull-based audio driver loop, and
// serves the operator command surface over HTTP.
package main

import (
	"encoding/binary"
	"io"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/sscholbe/autodj/internal/audio"
	"github.com/sscholbe/autodj/internal/catalog"
	"github.com/sscholbe/autodj/internal/config"
	"github.com/sscholbe/autodj/internal/decode"
	"github.com/sscholbe/autodj/internal/effects"
	"github.com/sscholbe/autodj/internal/library"
	"github.com/sscholbe/autodj/internal/mixer"
	"github.com/sscholbe/autodj/internal/server"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a YAML config file")
	dataDir := pflag.StringP("data-dir", "d", "", "root directory for songs, transitions and cache")
	ffmpegPath := pflag.StringP("ffmpeg", "f", "", "path to the ffmpeg executable")
	listen := pflag.StringP("listen", "l", "", "HTTP listen address (\":0\" for a random free port)")
	silent := pflag.Bool("silent", false, "do not write produced audio to stdout")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *ffmpegPath != "" {
		cfg.FFmpeg = *ffmpegPath
	}
	if *listen != "" {
		cfg.Listen = *listen
	}

	registry, err := effects.NewRegistry(cfg.AssetsDir)
	if err != nil {
		log.Fatalf("effects: %v", err)
	}

	mx := mixer.New(registry)
	loader := &library.Loader{
		Decoder:  decode.FFmpegDecoder{Path: cfg.FFmpeg},
		CacheDir: cfg.CacheDir,
	}
	cat := catalog.Catalog{DataDir: cfg.DataDir}

	srv := server.New(mx, loader, cat, cfg.MinBPM, cfg.MaxBPM)

	go runProducer(mx, *silent)

	log.Printf("autodj: data dir %s, listening on %s", cfg.DataDir, cfg.Listen)
	if err := srv.ListenAndServe(cfg.Listen); err != nil {
		log.Fatalf("server: %v", err)
	}
}

// runProducer drives the mixer at the audio sink's nominal pull cadence
// (BUFFER_SIZE / sample rate), writing raw interleaved float32 stereo PCM
// to stdout unless silent is set. This stands in for the external audio
// device driver, which is out of scope for the core engine itself.
func runProducer(mx *mixer.Mixer, silent bool) {
	period := time.Duration(float64(mixer.BufferSize) / audio.SampleRate * float64(time.Second))
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var out io.Writer = os.Stdout
	buf := make([]byte, mixer.BufferSize*2*4)

	for {
		select {
		case <-sigCh:
			return
		case <-ticker.C:
			block := mx.Produce()
			if silent {
				continue
			}
			for i, v := range block {
				binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
			}
			if _, err := out.Write(buf); err != nil {
				log.Printf("producer: write: %v", err)
			}
		}
	}
}
