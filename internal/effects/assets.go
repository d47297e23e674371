package effects

import (
	"os"
	"path/filepath"

	"github.com/go-audio/wav"
)

// loadNoiseClip loads the fixed noise riser clip (noise.wav) as interleaved
// stereo float32 in [-1,1]. A missing assetsDir yields a silent clip so the
// engine still runs (with the Noise effect permanently silent) in tests
// that don't exercise it.
func loadNoiseClip(assetsDir string) ([]float32, error) {
	if assetsDir == "" {
		return nil, nil
	}
	return loadWAVStereo(filepath.Join(assetsDir, "noise.wav"))
}

// loadReverbIR loads the fixed convolution impulse response (reverb.wav),
// truncated to one second at 48kHz and normalised so all samples across
// both channels sum to one.
func loadReverbIR(assetsDir string) ([]float32, error) {
	if assetsDir == "" {
		return nil, nil
	}
	ir, err := loadWAVStereo(filepath.Join(assetsDir, "reverb.wav"))
	if err != nil {
		return nil, err
	}
	const maxFrames = 48000
	if len(ir)/2 > maxFrames {
		ir = ir[:maxFrames*2]
	}
	var sum float64
	for _, v := range ir {
		sum += float64(v)
	}
	if sum != 0 {
		for i := range ir {
			ir[i] = float32(float64(ir[i]) / sum)
		}
	}
	return ir, nil
}

func loadWAVStereo(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	ch := buf.Format.NumChannels
	bits := buf.SourceBitDepth
	if bits == 0 {
		bits = 16
	}
	scale := float32(int(1) << (bits - 1))
	frames := len(buf.Data) / ch
	out := make([]float32, frames*2)
	for i := 0; i < frames; i++ {
		l := float32(buf.Data[i*ch]) / scale
		r := l
		if ch > 1 {
			r = float32(buf.Data[i*ch+1]) / scale
		}
		out[i*2] = l
		out[i*2+1] = r
	}
	return out, nil
}
