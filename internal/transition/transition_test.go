package transition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sscholbe/autodj/internal/effects"
)

func registry(t *testing.T) *effects.Registry {
	t.Helper()
	r, err := effects.NewRegistry("")
	require.NoError(t, err)
	return r
}

func TestBuildOrderFollowsRegistryRegistrationOrder(t *testing.T) {
	r := registry(t)
	def := Def{
		"noise": {{TNorm: 0, Value: 0}},
		"vol":   {{TNorm: 0, Value: 1}},
		"lpf":   {{TNorm: 0, Value: 1}},
	}
	set := Build(r, def, 0, 10, true)

	full := r.Order()
	var want []string
	for _, id := range full {
		if _, ok := def[id]; ok {
			want = append(want, id)
		}
	}
	assert.Equal(t, want, set.Order)
}

func TestCurveClampsOutsideWindow(t *testing.T) {
	r := registry(t)
	def := Def{"vol": {{TNorm: 0, Value: 0.2}, {TNorm: 1, Value: 0.8}}}

	incoming := Build(r, def, 10, 20, true)
	c := incoming.Curves["vol"]
	assert.Equal(t, 0.0, c.Eval(0), "incoming left clamp")
	assert.Equal(t, 1.0, c.Eval(30), "incoming right clamp")

	outgoing := Build(r, def, 10, 20, false)
	c = outgoing.Curves["vol"]
	assert.Equal(t, 1.0, c.Eval(0), "outgoing left clamp")
	assert.Equal(t, 0.0, c.Eval(30), "outgoing right clamp")
}

func TestCurveInterpolatesLinearly(t *testing.T) {
	r := registry(t)
	def := Def{"vol": {{TNorm: 0, Value: 0}, {TNorm: 1, Value: 1}}}
	set := Build(r, def, 0, 10, true)
	c := set.Curves["vol"]
	assert.InDelta(t, 0.5, c.Eval(5), 0.01)
}

func TestEmptyDefProducesEmptySet(t *testing.T) {
	r := registry(t)
	set := Build(r, Def{}, 0, 10, true)
	assert.True(t, set.Empty())
}
