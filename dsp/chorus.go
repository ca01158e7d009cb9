package dsp

import (
	"math"
	"sync/atomic"

	"github.com/pedalworks/multifx/base"
	"github.com/pedalworks/multifx/fixed"
)

const (
	chorusBufSamples = 256
	chorusMinDelay   = 16
)

// Chorus reads up to three modulated taps from a short mono delay
// line. Tap phases depend on the voice layout: three taps 120 degrees
// apart, two taps in opposition, or a single mono tap.
type Chorus struct {
	buf      [chorusBufSamples]int32
	writePos int

	lfo [3]fixed.LFO

	// Requested voice layout, written by the control domain; applied
	// holds what the tap phases currently reflect.
	mode    atomic.Int32
	applied base.ChorusMode

	depth fixed.Q16
	mix   fixed.Q16

	lpfCoeff fixed.Q16
	apL, apR int32
	lpL, lpR int32

	volume fixed.Q24
}

func NewChorus() *Chorus {
	c := &Chorus{}
	c.applyMode(base.ChorusStereo3)
	return c
}

// SetMode requests a voice layout change. The audio domain re-derives
// the tap phases at the next block boundary, from the current base
// phase, so a live switch stays continuous.
func (c *Chorus) SetMode(mode base.ChorusMode) { c.mode.Store(int32(mode)) }

func (c *Chorus) Mode() base.ChorusMode { return base.ChorusMode(c.mode.Load()) }

func (c *Chorus) applyMode(mode base.ChorusMode) {
	c.applied = mode
	basePhase := c.lfo[0].Phase
	switch mode {
	case base.ChorusStereo3:
		c.lfo[1].Phase = basePhase + fixed.PhaseOffset120
		c.lfo[2].Phase = basePhase + fixed.PhaseOffset240
	case base.ChorusStereo2:
		c.lfo[1].Phase = basePhase + fixed.PhaseOffset180
		c.lfo[2].Phase = basePhase
	default:
		c.lfo[1].Phase = basePhase
		c.lfo[2].Phase = basePhase
	}
}

func (c *Chorus) Configure(ctx *Context) {
	const id = base.EffectChorus

	hz := fixed.MapPotRange(ctx.Pot(id, 0), base.PotMax, 0.05, 5.0)
	for i := range c.lfo {
		c.lfo[i].SetRate(hz, ctx.SampleRate)
	}
	c.depth = fixed.MapPotQ16(ctx.Pot(id, 1), base.PotMax, 0, fixed.Q16One)
	c.mix = fixed.MapPotQ16(ctx.Pot(id, 3), base.PotMax, 0, fixed.Q16One)
	c.lpfCoeff = smootherFromCutoff(ctx, ctx.Pot(id, 4))
	c.volume = fixed.MapPotQ24(ctx.Pot(id, 5), base.PotMax,
		fixed.FromFloat(0.1), fixed.FromFloat(3.0))

	c.apL, c.apR = 0, 0
	c.lpL, c.lpR = 0, 0
}

func (c *Chorus) Reset() {
	c.buf = [chorusBufSamples]int32{}
	c.writePos = 0
	c.lfo[0].Phase = 0
	c.applyMode(c.applied)
	c.apL, c.apR = 0, 0
	c.lpL, c.lpR = 0, 0
}

func (c *Chorus) ProcessBlock(ctx *Context, l, r []int32) {
	mode := base.ChorusMode(c.mode.Load())
	if mode != c.applied {
		c.applyMode(mode)
	}
	for i := range l {
		c.processFrame(&l[i], &r[i], mode)
	}
}

func (c *Chorus) processFrame(l, r *int32, mode base.ChorusMode) {
	for i := range c.lfo {
		c.lfo[i].Phase += c.lfo[i].Inc
	}

	tap0 := c.tap(0)
	var tap1, tap2 int32
	if mode != base.ChorusMono {
		tap1 = c.tap(1)
		if mode == base.ChorusStereo3 {
			tap2 = c.tap(2)
		}
	}

	// The line carries the mono sum of the dry input.
	c.buf[c.writePos] = (*l >> 1) + (*r >> 1)
	c.writePos = (c.writePos + 1) % chorusBufSamples

	var wetL, wetR int32
	switch mode {
	case base.ChorusMono:
		wetL, wetR = tap0, tap0
	case base.ChorusStereo2:
		wetL, wetR = tap0, tap1
	default:
		wetL = (tap0 >> 1) + (tap1 >> 1)
		wetR = (tap2 >> 1) + (tap1 >> 1)
	}

	const apCoeff = 0x8000
	wetL = fixed.AllpassQ16Step(wetL, &c.apL, apCoeff)
	wetR = fixed.AllpassQ16Step(wetR, &c.apR, apCoeff)
	wetL = fixed.LowpassQ16Step(wetL, &c.lpL, c.lpfCoeff)
	wetR = fixed.LowpassQ16Step(wetR, &c.lpR, c.lpfCoeff)

	mixL := mixWetDry(*l, wetL, c.mix)
	mixR := mixWetDry(*r, wetR, c.mix)
	*l = fixed.Clamp24(fixed.Scale(mixL, c.volume))
	*r = fixed.Clamp24(fixed.Scale(mixR, c.volume))
}

// tap reads one cubic-interpolated modulated tap from the line. The
// tap position carries fractional bits; the fraction feeds the
// interpolator.
func (c *Chorus) tap(n int) int32 {
	const maxDepth = chorusBufSamples - chorusMinDelay - 4

	lfoVal := fixed.ShapeQ16(c.lfo[n].Phase, fixed.ShapeTriangle)
	scaled := (uint32(lfoVal) * uint32(c.depth)) >> 16
	delayQ16 := uint32(chorusMinDelay<<16) + maxDepth*scaled
	delay := int(delayQ16 >> 16)
	frac := fixed.Q16(delayQ16 & 0xFFFF)

	pos := (c.writePos + chorusBufSamples - delay - 1) % chorusBufSamples
	prev := (pos - 1 + chorusBufSamples) % chorusBufSamples
	next := (pos + 1) % chorusBufSamples
	next2 := (pos + 2) % chorusBufSamples

	return fixed.CubicQ16(c.buf[prev], c.buf[pos], c.buf[next], c.buf[next2], frac)
}

// mixWetDry is the shared (1-mix)*dry + mix*wet blend in Q16.
func mixWetDry(dry, wet int32, mix fixed.Q16) int32 {
	return int32((int64(dry)*int64(fixed.Q16One-mix) + int64(wet)*int64(mix)) >> 16)
}

// smootherFromCutoff maps a cutoff pot (100 Hz..8 kHz, log taper)
// onto the Q16 smoother coefficient a = exp(-2*pi*fc/fs).
func smootherFromCutoff(ctx *Context, pot int) fixed.Q16 {
	hz := fixed.MapPotLog(pot, base.PotMax, 100, 8000)
	alpha := math.Exp(-2.0 * math.Pi * hz / float64(ctx.SampleRate))
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	return fixed.Q16FromFloat(alpha)
}
