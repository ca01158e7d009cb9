package dsp

import (
	"sync/atomic"

	"github.com/pedalworks/multifx/base"
	"github.com/pedalworks/multifx/fixed"
)

// Context is the shared state between the audio domain and the
// control domain. The audio domain owns the authoritative pot table;
// the control domain hands over parameter changes through a staged
// snapshot published behind a single apply flag, so the audio side
// never sees a torn multi-word update. Everything else crossing the
// boundary is a single atomic word.
type Context struct {
	SampleRate  int
	BlockFrames int

	// Authoritative per-effect pot values. Audio domain only.
	pots [base.NumEffects][base.NumFuncPots]uint16

	// Staged reconfiguration from the control domain. stagedPots and
	// stagedEffect are written only while applyPending is false and
	// read only while it is true, alternating ownership.
	stagedPots   [base.NumFuncPots]uint16
	stagedEffect int32
	applyPending atomic.Bool

	masterVolume atomic.Uint32 // Q16.16
	enabledMask  atomic.Uint32 // bit per slot
	stereo       atomic.Bool

	peakL atomic.Int32
	peakR atomic.Int32

	cpuLastMicros atomic.Int64
	cpuPeakMicros atomic.Int64
	cpuAvgMicros  atomic.Int64

	// Current delay lengths, exported for the UI.
	delayViewL atomic.Uint32
	delayViewR atomic.Uint32

	// Compressor gain reduction, exported for the VU display.
	compGainL atomic.Int32
	compGainR atomic.Int32
}

func NewContext(sampleRate, blockFrames int) *Context {
	ctx := &Context{
		SampleRate:  sampleRate,
		BlockFrames: blockFrames,
		pots:        base.FactoryPots,
	}
	ctx.masterVolume.Store(uint32(fixed.Q16One))
	ctx.stereo.Store(true)
	return ctx
}

// Pot returns the authoritative pot value for an effect. Called by
// module Configure methods on the audio domain.
func (c *Context) Pot(id base.EffectID, pot int) int {
	return int(c.pots[id][pot])
}

// LoadPots replaces the whole pot table, before the audio domain
// starts (restore from persistence).
func (c *Context) LoadPots(pots [base.NumEffects][base.NumFuncPots]uint16) {
	c.pots = pots
}

// Pots returns a copy of the pot table for persistence.
func (c *Context) Pots() [base.NumEffects][base.NumFuncPots]uint16 {
	return c.pots
}

// StageParams hands a full pot set for one effect to the audio
// domain. Returns false if a previous update has not been applied
// yet; the caller retries on its next loop iteration.
func (c *Context) StageParams(id base.EffectID, pots [base.NumFuncPots]uint16) bool {
	if !id.Valid() || c.applyPending.Load() {
		return false
	}
	c.stagedPots = pots
	c.stagedEffect = int32(id)
	c.applyPending.Store(true)
	return true
}

// takeStaged claims a pending update, if any. Audio domain only.
func (c *Context) takeStaged() (base.EffectID, bool) {
	if !c.applyPending.Load() {
		return base.EffectNone, false
	}
	id := base.EffectID(c.stagedEffect)
	c.pots[id] = c.stagedPots
	c.applyPending.Store(false)
	return id, true
}

func (c *Context) SetMasterVolume(v fixed.Q16) { c.masterVolume.Store(uint32(v)) }
func (c *Context) MasterVolume() fixed.Q16     { return fixed.Q16(c.masterVolume.Load()) }

func (c *Context) SetEnabledMask(mask uint32) { c.enabledMask.Store(mask) }
func (c *Context) EnabledMask() uint32        { return c.enabledMask.Load() }

// SetSlotEnabled flips one slot's bit in the enabled mask.
func (c *Context) SetSlotEnabled(slot int, on bool) {
	for {
		old := c.enabledMask.Load()
		var next uint32
		if on {
			next = old | 1<<uint(slot)
		} else {
			next = old &^ (1 << uint(slot))
		}
		if c.enabledMask.CompareAndSwap(old, next) {
			return
		}
	}
}

func (c *Context) SetStereo(on bool) { c.stereo.Store(on) }
func (c *Context) Stereo() bool      { return c.stereo.Load() }

// notePeaks folds one frame into the peak meters.
func (c *Context) notePeaks(l, r int32) {
	if l < 0 {
		l = -l
	}
	if r < 0 {
		r = -r
	}
	if l > c.peakL.Load() {
		c.peakL.Store(l)
	}
	if r > c.peakR.Load() {
		c.peakR.Store(r)
	}
}

// TakePeaks returns the current peak meters and resets them, so the
// control domain sees per-poll peaks.
func (c *Context) TakePeaks() (l, r int32) {
	return c.peakL.Swap(0), c.peakR.Swap(0)
}

func (c *Context) setCPU(lastMicros int64) {
	c.cpuLastMicros.Store(lastMicros)
	if lastMicros > c.cpuPeakMicros.Load() {
		c.cpuPeakMicros.Store(lastMicros)
	}
	// Exponential running average, 1/16 weight per block.
	avg := c.cpuAvgMicros.Load()
	c.cpuAvgMicros.Store(avg + (lastMicros-avg)/16)
}

// CPUMicros reports the last, peak and average block processing time.
func (c *Context) CPUMicros() (last, peak, avg int64) {
	return c.cpuLastMicros.Load(), c.cpuPeakMicros.Load(), c.cpuAvgMicros.Load()
}

func (c *Context) setDelayView(l, r int) {
	c.delayViewL.Store(uint32(l))
	c.delayViewR.Store(uint32(r))
}

// DelayView reports the current delay lengths in samples.
func (c *Context) DelayView() (l, r int) {
	return int(c.delayViewL.Load()), int(c.delayViewR.Load())
}

func (c *Context) setCompGain(l, r fixed.Q24) {
	c.compGainL.Store(int32(l))
	c.compGainR.Store(int32(r))
}

// CompGain reports the compressor's current gain reduction.
func (c *Context) CompGain() (l, r fixed.Q24) {
	return fixed.Q24(c.compGainL.Load()), fixed.Q24(c.compGainR.Load())
}
