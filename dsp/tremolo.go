package dsp

import (
	"github.com/pedalworks/multifx/base"
	"github.com/pedalworks/multifx/fixed"
)

// Tremolo modulates the signal amplitude with a triangle LFO. In
// stereo the right channel runs 180 degrees out of phase so the
// effect pans instead of pulsing.
type Tremolo struct {
	lfo   fixed.LFO
	depth fixed.Q16
}

func NewTremolo() *Tremolo { return &Tremolo{} }

func (t *Tremolo) Configure(ctx *Context) {
	const id = base.EffectTremolo

	// Direct pot-count scaling of the increment, with a floor so the
	// LFO never fully stalls.
	speed := ctx.Pot(id, 0)
	if speed < 20 {
		speed = 20
	}
	t.lfo.Inc = uint32(speed) * 250

	depth := ctx.Pot(id, 1)
	if depth < 20 {
		t.depth = 20
	} else {
		t.depth = fixed.MapPotQ16(depth, base.PotMax, 0, fixed.Q16One)
	}
}

func (t *Tremolo) Reset() {
	t.lfo.Phase = 0
}

func (t *Tremolo) ProcessBlock(ctx *Context, l, r []int32) {
	var phaseOff uint32
	if ctx.Stereo() {
		phaseOff = fixed.PhaseOffset180
	}
	oneMinusDepth := fixed.Q16One - t.depth
	for i := range l {
		lfoL := fixed.ShapeQ16(t.lfo.Phase, fixed.ShapeTriangle)
		lfoR := fixed.ShapeQ16(t.lfo.Phase+phaseOff, fixed.ShapeTriangle)

		// amplitude = (1 - depth) + lfo*depth
		ampL := oneMinusDepth + fixed.Q16((uint64(lfoL)*uint64(t.depth))>>16)
		ampR := oneMinusDepth + fixed.Q16((uint64(lfoR)*uint64(t.depth))>>16)

		l[i] = fixed.MulQ16(l[i], ampL)
		r[i] = fixed.MulQ16(r[i], ampR)

		t.lfo.Phase += t.lfo.Inc
	}
}
