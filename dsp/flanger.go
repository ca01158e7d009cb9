package dsp

import (
	"github.com/pedalworks/multifx/base"
	"github.com/pedalworks/multifx/fixed"
)

const (
	flangerBufSamples = 256
	flangerMinDelay   = 8
)

// Flanger sweeps a short per-channel delay with feedback into the
// line. In stereo the right LFO runs 180 degrees behind the left.
type Flanger struct {
	bufL     [flangerBufSamples]int32
	bufR     [flangerBufSamples]int32
	writePos int

	lfo      fixed.LFO
	depth    fixed.Q16
	feedback fixed.Q16
	mix      fixed.Q16
	lpfCoeff fixed.Q16
	volume   fixed.Q24

	apL, apR int32
	lpL, lpR int32
}

func NewFlanger() *Flanger { return &Flanger{} }

func (f *Flanger) Configure(ctx *Context) {
	const id = base.EffectFlanger

	hz := fixed.MapPotRange(ctx.Pot(id, 0), base.PotMax, 0.05, 5.0)
	f.lfo.SetRate(hz, ctx.SampleRate)
	f.depth = fixed.MapPotQ16(ctx.Pot(id, 1), base.PotMax, 0, fixed.Q16One)
	f.feedback = fixed.MapPotQ16(ctx.Pot(id, 2), base.PotMax, 0, fixed.Q16FromFloat(0.9))
	f.mix = fixed.MapPotQ16(ctx.Pot(id, 3), base.PotMax, 0, fixed.Q16One)
	f.lpfCoeff = smootherFromCutoff(ctx, ctx.Pot(id, 4))
	f.volume = fixed.MapPotQ24(ctx.Pot(id, 5), base.PotMax,
		fixed.FromFloat(0.1), fixed.FromFloat(3.0))

	f.apL, f.apR = 0, 0
	f.lpL, f.lpR = 0, 0
}

func (f *Flanger) Reset() {
	f.bufL = [flangerBufSamples]int32{}
	f.bufR = [flangerBufSamples]int32{}
	f.writePos = 0
	f.lfo.Phase = 0
	f.apL, f.apR = 0, 0
	f.lpL, f.lpR = 0, 0
}

func (f *Flanger) ProcessBlock(ctx *Context, l, r []int32) {
	var phaseOff uint32
	if ctx.Stereo() {
		phaseOff = fixed.PhaseOffset180
	}
	for i := range l {
		f.processFrame(&l[i], &r[i], phaseOff)
	}
}

func (f *Flanger) processFrame(l, r *int32, phaseOff uint32) {
	f.lfo.Phase += f.lfo.Inc

	delayedL := f.readTap(f.bufL[:], f.lfo.Phase)
	delayedR := f.readTap(f.bufR[:], f.lfo.Phase+phaseOff)

	// Feedback into the line.
	fbL := int32((int64(delayedL) * int64(f.feedback)) >> 16)
	fbR := int32((int64(delayedR) * int64(f.feedback)) >> 16)
	f.bufL[f.writePos] = *l + fbL
	f.bufR[f.writePos] = *r + fbR

	// Allpass at half energy, then the LPF restores it.
	const apCoeff = 0x8000
	delayedL = fixed.AllpassQ16Step(delayedL>>1, &f.apL, apCoeff)
	delayedR = fixed.AllpassQ16Step(delayedR>>1, &f.apR, apCoeff)
	delayedL = fixed.LowpassQ16Step(delayedL<<1, &f.lpL, f.lpfCoeff)
	delayedR = fixed.LowpassQ16Step(delayedR<<1, &f.lpR, f.lpfCoeff)

	mixL := mixWetDry(*l, delayedL, f.mix)
	mixR := mixWetDry(*r, delayedR, f.mix)
	*l = fixed.Clamp24(fixed.Scale(mixL, f.volume))
	*r = fixed.Clamp24(fixed.Scale(mixR, f.volume))

	f.writePos = (f.writePos + 1) % flangerBufSamples
}

func (f *Flanger) readTap(buf []int32, phase uint32) int32 {
	const maxDepth = flangerBufSamples - flangerMinDelay - 4

	lfoVal := fixed.ShapeQ16(phase, fixed.ShapeTriangle)
	scaled := (uint32(lfoVal) * uint32(f.depth)) >> 16
	delayQ16 := uint32(flangerMinDelay<<16) + maxDepth*scaled
	delay := int(delayQ16 >> 16)
	frac := fixed.Q16(delayQ16 & 0xFFFF)

	pos := (f.writePos + flangerBufSamples - delay - 1) % flangerBufSamples
	prev := (pos - 1 + flangerBufSamples) % flangerBufSamples
	next := (pos + 1) % flangerBufSamples
	next2 := (pos + 2) % flangerBufSamples

	return fixed.CubicQ16(buf[prev], buf[pos], buf[next], buf[next2], frac)
}
