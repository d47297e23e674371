// Package effects implements the per-channel effect chain: volume, the two
// dynamic Butterworth filters, delay, convolution reverb and the noise
// riser, each driven by a per-sample automation curve from internal/transition.
package effects

// Effect processes a contiguous stereo block given a per-sample parameter
// curve and the current global BPM, writing into an equal-length output
// block. Implementations are stateless across calls; any continuity needed
// across block boundaries is supplied by the caller as pre-roll context.
type Effect interface {
	ID() string
	DefaultValue() float32
	Apply(input, output []float32, param []float32, bpm float64)
}

// Registry is the set of available effects keyed by identifier.
type Registry struct {
	effects map[string]Effect
	order   []string
}

// NewRegistry builds the fixed effect registry. assetsDir is searched for
// the two fixed assets (noise.wav, reverb.wav) the Noise and Reverb effects
// need; a zero-value assetsDir loads nothing: Reverb then passes its input
// through unchanged, and Noise mixes in silence, scaling its input by
// 1-param. This is sufficient for tests that never queue them.
func NewRegistry(assetsDir string) (*Registry, error) {
	noise, err := loadNoiseClip(assetsDir)
	if err != nil {
		return nil, err
	}
	ir, err := loadReverbIR(assetsDir)
	if err != nil {
		return nil, err
	}

	all := []Effect{
		NewVolume(),
		NewLowPass(),
		NewHighPass(),
		NewDelay(),
		NewReverb(ir),
		NewNoise(noise),
	}
	r := &Registry{effects: make(map[string]Effect, len(all))}
	for _, fx := range all {
		r.effects[fx.ID()] = fx
		r.order = append(r.order, fx.ID())
	}
	return r, nil
}

// Get looks up an effect by id. ok is false if no such effect is registered.
func (r *Registry) Get(id string) (Effect, bool) {
	fx, ok := r.effects[id]
	return fx, ok
}

// Order returns the stable registration order of effect ids, used when a
// caller needs to iterate the full registry deterministically.
func (r *Registry) Order() []string {
	return r.order
}
