package dsp

import (
	"github.com/pedalworks/multifx/base"
	"github.com/pedalworks/multifx/fixed"
)

const phaserStages = 4

// Phaser sweeps the coefficient of four cascaded first-order allpass
// stages per channel between two corner frequencies, with negative
// feedback around the cascade.
type Phaser struct {
	lfo fixed.LFO

	lowAlpha  fixed.Q24
	highAlpha fixed.Q24
	feedback  fixed.Q24
	mix       fixed.Q24
	volume    fixed.Q24

	stagesL [phaserStages]int32
	stagesR [phaserStages]int32
	fbL     int32
	fbR     int32
}

func NewPhaser() *Phaser { return &Phaser{} }

func (p *Phaser) Configure(ctx *Context) {
	const id = base.EffectPhaser

	hz := fixed.MapPotRange(ctx.Pot(id, 0), base.PotMax, 0.05, 4.0)
	p.lfo.SetRate(hz, ctx.SampleRate)

	lowHz := int(fixed.MapPotRange(ctx.Pot(id, 1), base.PotMax, 100, 1000))
	highHz := int(fixed.MapPotRange(ctx.Pot(id, 2), base.PotMax, 1500, 6000))
	p.lowAlpha = fixed.AlphaFromHz(lowHz, ctx.SampleRate)
	p.highAlpha = fixed.AlphaFromHz(highHz, ctx.SampleRate)
	if p.highAlpha < p.lowAlpha {
		p.lowAlpha, p.highAlpha = p.highAlpha, p.lowAlpha
	}

	// Squared taper keeps low pot settings gentle.
	norm := fixed.MapPotQ24(ctx.Pot(id, 3), base.PotMax, 0, fixed.Q24One)
	p.feedback = fixed.MulQ24(fixed.MulQ24(norm, norm), fixed.FromFloat(0.95))

	p.mix = fixed.MapPotQ24(ctx.Pot(id, 4), base.PotMax, 0, fixed.Q24One)
	p.volume = fixed.MapPotQ24(ctx.Pot(id, 5), base.PotMax,
		fixed.FromFloat(0.1), fixed.FromFloat(4.0))

	p.zeroState()
}

func (p *Phaser) Reset() {
	p.lfo.Phase = 0
	p.zeroState()
}

func (p *Phaser) zeroState() {
	p.stagesL = [phaserStages]int32{}
	p.stagesR = [phaserStages]int32{}
	p.fbL, p.fbR = 0, 0
}

func (p *Phaser) ProcessBlock(ctx *Context, l, r []int32) {
	stereo := ctx.Stereo()
	for i := range l {
		p.lfo.Phase += p.lfo.Inc

		coeffL := p.sweptCoeff(p.lfo.Phase)
		coeffR := coeffL
		if stereo {
			coeffR = p.sweptCoeff(p.lfo.Phase + fixed.PhaseOffset180)
		}

		// -6 dB internal headroom before the cascade.
		xL := (l[i] >> 1) - p.fbL
		xR := (r[i] >> 1) - p.fbR

		for s := 0; s < phaserStages; s++ {
			xL = allpassStage(xL, coeffL, &p.stagesL[s])
			xR = allpassStage(xR, coeffR, &p.stagesR[s])
		}

		p.fbL = fixed.Scale(xL, p.feedback)
		p.fbR = fixed.Scale(xR, p.feedback)

		mixedL := fixed.Scale(l[i], fixed.Q24One-p.mix) + fixed.Scale(xL, p.mix)
		mixedR := fixed.Scale(r[i], fixed.Q24One-p.mix) + fixed.Scale(xR, p.mix)
		l[i] = fixed.Clamp24(fixed.Scale(mixedL, p.volume))
		r[i] = fixed.Clamp24(fixed.Scale(mixedR, p.volume))
	}
}

// sweptCoeff interpolates the allpass coefficient between the two
// corners along a smoothed triangle.
func (p *Phaser) sweptCoeff(phase uint32) fixed.Q24 {
	tri := fixed.Q24(fixed.ShapeQ16(phase, fixed.ShapeTriangleSmooth)) << 8
	sweep := int64(p.lowAlpha)*int64(fixed.Q24One-tri) + int64(p.highAlpha)*int64(tri)
	return fixed.Q24(sweep >> 24)
}

func allpassStage(x int32, alpha fixed.Q24, z1 *int32) int32 {
	*z1 += fixed.Scale(x-*z1, alpha)
	return *z1
}
