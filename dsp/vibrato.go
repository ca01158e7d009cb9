package dsp

import (
	"github.com/pedalworks/multifx/base"
	"github.com/pedalworks/multifx/fixed"
)

// Vibrato applies a gentle periodic amplitude wobble driven by a sine
// LFO, the same curve on both channels.
type Vibrato struct {
	lfo   fixed.LFO
	depth fixed.Q16
}

func NewVibrato() *Vibrato { return &Vibrato{} }

func (v *Vibrato) Configure(ctx *Context) {
	const id = base.EffectVibrato

	hz := fixed.MapPotRange(ctx.Pot(id, 1), base.PotMax, 0, 5.0)
	v.lfo.SetRate(hz, ctx.SampleRate)
	v.depth = fixed.MapPotQ16(ctx.Pot(id, 0), base.PotMax, 0, fixed.Q16One)
}

func (v *Vibrato) Reset() {
	v.lfo.Phase = 0
}

func (v *Vibrato) ProcessBlock(ctx *Context, l, r []int32) {
	for i := range l {
		lfoVal := v.lfo.Step(fixed.ShapeSine)

		// mod = 1 + depth*(lfo-0.5)*0.1, a few percent either way.
		centered := int64(lfoVal) - int64(fixed.Q16One)/2
		swing := (centered * int64(v.depth)) >> 16
		mod := int64(fixed.Q16One) + swing/10

		l[i] = int32((int64(l[i]) * mod) >> 16)
		r[i] = int32((int64(r[i]) * mod) >> 16)
	}
}
