// Package decode is the external decoder boundary: it shells out to ffmpeg
// to turn any supported container into canonical PCM, the one piece of the
// engine that talks to a collaborator process rather than doing DSP
// in-process.
package decode

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os/exec"

	"github.com/sscholbe/autodj/internal/audio"
)

// Decoder converts an audio file on disk into canonical stereo 16-bit PCM
// at audio.SampleRate.
type Decoder interface {
	Decode(ctx context.Context, path string) (pcm []int16, frames int, err error)
}

// FFmpegDecoder shells out to an ffmpeg binary with the reference
// implementation's output flags (`-acodec pcm_s16le -ar 48000 -ac 2 -f wav`),
// adding `-y` and the `+bitexact` format/codec flags and writing to pipe:1.
type FFmpegDecoder struct {
	// Path to the ffmpeg binary; defaults to "ffmpeg" on the PATH.
	Path string
}

func (d FFmpegDecoder) binPath() string {
	if d.Path == "" {
		return "ffmpeg"
	}
	return d.Path
}

// Decode runs ffmpeg and parses the resulting WAV container into raw PCM
// samples, interleaved stereo int16.
func (d FFmpegDecoder) Decode(ctx context.Context, path string) ([]int16, int, error) {
	cmd := exec.CommandContext(ctx, d.binPath(),
		"-y", "-i", path,
		"-fflags", "+bitexact", "-flags", "+bitexact",
		"-acodec", "pcm_s16le",
		"-ar", fmt.Sprintf("%d", audio.SampleRate),
		"-ac", "2",
		"-f", "wav", "pipe:1",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, 0, fmt.Errorf("decode %s: ffmpeg: %w: %s", path, err, stderr.String())
	}
	return parseWAVPCM16(stdout.Bytes())
}

// parseWAVPCM16 extracts the interleaved int16 data chunk from a canonical
// RIFF/WAVE container, skipping whatever chunks precede "data".
func parseWAVPCM16(buf []byte) ([]int16, int, error) {
	if len(buf) < 12 || string(buf[0:4]) != "RIFF" || string(buf[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("decode: not a RIFF/WAVE stream")
	}
	pos := 12
	for pos+8 <= len(buf) {
		id := string(buf[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(buf[pos+4 : pos+8]))
		pos += 8
		if pos+size > len(buf) {
			break
		}
		if id == "data" {
			n := size / 2
			pcm := make([]int16, n)
			for i := 0; i < n; i++ {
				pcm[i] = int16(binary.LittleEndian.Uint16(buf[pos+i*2 : pos+i*2+2]))
			}
			return pcm, n / 2, nil
		}
		pos += size
		if size%2 == 1 {
			pos++
		}
	}
	return nil, 0, fmt.Errorf("decode: no data chunk found")
}
