package dsp

import (
	"sync/atomic"
	"time"

	"github.com/pedalworks/multifx/base"
	"github.com/pedalworks/multifx/fixed"
	"github.com/pedalworks/multifx/utils"
)

// Engine runs the three-slot effect chain. One instance of every
// effect exists for the whole process lifetime; slots select by id.
// Process is the audio domain's only entry point and allocates
// nothing.
type Engine struct {
	ctx *Context

	slots [base.NumSlots]atomic.Int32

	modules [base.NumEffects]Module
	delay   *DelayLine
	reverb  *Reverb

	bufL []int32
	bufR []int32
}

// NewEngine builds the module registry. The delay line is constructed
// by the caller because it needs the external RAM bus.
func NewEngine(ctx *Context, delay *DelayLine) *Engine {
	e := &Engine{
		ctx:   ctx,
		delay: delay,
		bufL:  make([]int32, ctx.BlockFrames),
		bufR:  make([]int32, ctx.BlockFrames),
	}

	for id := base.EffectID(0); id < base.NumEffects; id++ {
		switch id {
		case base.EffectChorus:
			e.modules[id] = NewChorus()
		case base.EffectCompressor:
			e.modules[id] = NewCompressor()
		case base.EffectDelay:
			e.modules[id] = delay
		case base.EffectDistortion:
			e.modules[id] = NewDistortion()
		case base.EffectEQ:
			e.modules[id] = NewEQ()
		case base.EffectFlanger:
			e.modules[id] = NewFlanger()
		case base.EffectFuzz:
			e.modules[id] = NewFuzz()
		case base.EffectOverdrive:
			e.modules[id] = NewOverdrive()
		case base.EffectPhaser:
			e.modules[id] = NewPhaser()
		case base.EffectPreamp:
			// The clean preamp is a straight wire for now.
			e.modules[id] = nil
		case base.EffectReverb:
			e.reverb = NewReverb()
			e.modules[id] = e.reverb
		case base.EffectCabSim:
			e.modules[id] = NewCabSim()
		case base.EffectTremolo:
			e.modules[id] = NewTremolo()
		case base.EffectVibrato:
			e.modules[id] = NewVibrato()
		}
	}

	for _, m := range e.modules {
		if m != nil {
			m.Configure(ctx)
		}
	}

	e.slots[0].Store(int32(base.EffectNone))
	e.slots[1].Store(int32(base.EffectNone))
	e.slots[2].Store(int32(base.EffectNone))
	return e
}

// SetSlot assigns an effect to a slot. Out-of-range ids become
// passthrough rather than faulting.
func (e *Engine) SetSlot(slot int, id base.EffectID) {
	if slot < 0 || slot >= base.NumSlots {
		return
	}
	if !id.Valid() {
		id = base.EffectNone
	}
	e.slots[slot].Store(int32(id))
}

func (e *Engine) Slot(slot int) base.EffectID {
	if slot < 0 || slot >= base.NumSlots {
		return base.EffectNone
	}
	return base.EffectID(e.slots[slot].Load())
}

// Delay exposes the delay line for the control domain's clear trigger
// and UI readouts.
func (e *Engine) Delay() *DelayLine { return e.delay }

// Chorus is the control domain's handle for voice-layout changes.
func (e *Engine) Chorus() *Chorus {
	ch, _ := e.modules[base.EffectChorus].(*Chorus)
	return ch
}

// ClearReverbMemory is the control domain's reverb wipe trigger.
func (e *Engine) ClearReverbMemory() {
	if e.reverb != nil {
		e.reverb.ClearMemory()
	}
}

// Process consumes one interleaved input block and fills the output
// block. Frames arrive right-then-left, the convention of the codec
// the engine was built against.
func (e *Engine) Process(in, out []int32) {
	started := time.Now()

	frames := len(in) / 2
	utils.Assert(frames <= len(e.bufL), "block of %d frames exceeds engine capacity %d", frames, len(e.bufL))
	utils.Assert(len(out) >= frames*2, "output block too short: %d for %d frames", len(out), frames)

	if id, ok := e.ctx.takeStaged(); ok {
		if m := e.modules[id]; m != nil {
			m.Configure(e.ctx)
		}
	}

	l := e.bufL[:frames]
	r := e.bufR[:frames]
	stereo := e.ctx.Stereo()
	for i := 0; i < frames; i++ {
		r[i] = in[2*i]
		l[i] = in[2*i+1]
		if !stereo {
			r[i] = l[i]
		}
	}

	mask := e.ctx.EnabledMask()
	for slot := 0; slot < base.NumSlots; slot++ {
		if mask&(1<<uint(slot)) == 0 {
			continue
		}
		id := base.EffectID(e.slots[slot].Load())
		if !id.Valid() {
			continue
		}
		if m := e.modules[id]; m != nil {
			m.ProcessBlock(e.ctx, l, r)
		}
	}

	volume := e.ctx.MasterVolume()
	for i := 0; i < frames; i++ {
		lo := fixed.Clamp24(fixed.MulQ16(l[i], volume))
		ro := fixed.Clamp24(fixed.MulQ16(r[i], volume))
		e.ctx.notePeaks(lo, ro)
		out[2*i] = ro
		out[2*i+1] = lo
	}

	e.ctx.setCPU(time.Since(started).Microseconds())
}
