package dsp

import (
	"github.com/pedalworks/multifx/base"
	"github.com/pedalworks/multifx/fixed"
)

// EQ is the standalone tonestack: the same 3-band mix the waveshaper
// family ends with, behind an input pad, plus a sweepable output LPF.
type EQ struct {
	tone toneStack
	lpf  fixed.OnePole
}

func NewEQ() *EQ { return &EQ{} }

func (e *EQ) Configure(ctx *Context) {
	const id = base.EffectEQ
	volume := fixed.MapPotQ24(ctx.Pot(id, 5), base.PotMax,
		fixed.FromFloat(0.1), fixed.FromFloat(8.0))
	e.tone.configure(ctx,
		ctx.Pot(id, 0), ctx.Pot(id, 1), ctx.Pot(id, 2), ctx.Pot(id, 3),
		300, 1000, volume)
	e.lpf.Alpha = fixed.MapPotQ24(ctx.Pot(id, 4), base.PotMax,
		fixed.AlphaFromHz(3000, ctx.SampleRate),
		fixed.AlphaFromHz(16000, ctx.SampleRate))
	e.lpf.Reset()
}

func (e *EQ) Reset() {
	e.tone.reset()
	e.lpf.Reset()
}

func (e *EQ) ProcessBlock(ctx *Context, l, r []int32) {
	for i := range l {
		l[i] = e.processChannel(l[i], 0)
		r[i] = e.processChannel(r[i], 1)
	}
}

func (e *EQ) processChannel(s int32, ch int) int32 {
	// -12 dB input pad so boosted bands have headroom.
	s = e.tone.process(s>>2, ch)
	return fixed.Clamp24(e.lpf.Lowpass(s, ch))
}
