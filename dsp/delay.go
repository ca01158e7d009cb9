package dsp

import (
	"sync/atomic"

	"github.com/pedalworks/multifx/base"
	"github.com/pedalworks/multifx/fixed"
	"github.com/pedalworks/multifx/spiram"
)

// MaxDelaySamples is the per-channel logical buffer length, about two
// seconds at 48 kHz. The usable delay tops out at half of it so the
// read cursor never laps the write-behind block.
const MaxDelaySamples = 98304

// DelayLine is the one module whose working set lives off-chip: each
// channel circulates through a spiram.BlockStore region instead of an
// in-memory ring. The left region starts at address 0, the right
// region directly after it.
//
// The repeat-shaping low-pass sits before the write, so every trip
// around the loop darkens the repeat once more. Its state survives
// ordinary reconfiguration; only ClearMemory flattens an in-flight
// decay.
type DelayLine struct {
	left  *spiram.BlockStore
	right *spiram.BlockStore

	mode atomic.Int32

	delayL int
	delayR int

	writeL int
	writeR int
	readL  int
	readR  int

	feedback fixed.Q16
	mix      fixed.Q16
	dry      fixed.Q16
	volume   fixed.Q16

	lpfAlpha  fixed.Q16
	lpfStateL int32
	lpfStateR int32
}

func NewDelayLine(bus spiram.Bus, capacity, blockSamples int) (*DelayLine, error) {
	left, err := spiram.NewBlockStore(bus, 0, capacity, blockSamples)
	if err != nil {
		return nil, err
	}
	right, err := spiram.NewBlockStore(bus, uint32(capacity*4), capacity, blockSamples)
	if err != nil {
		return nil, err
	}

	d := &DelayLine{
		left:     left,
		right:    right,
		delayL:   48000,
		delayR:   48000,
		feedback: fixed.Q16One / 4,
		mix:      fixed.Q16One / 2,
		dry:      fixed.Q16One / 2,
		volume:   fixed.Q16One,
		lpfAlpha: fixed.Q16One / 4,
	}
	d.seekCursors()
	return d, nil
}

// seekCursors places the write cursor delay_samples ahead of read
// index zero, so the first reads return the zeroed region.
func (d *DelayLine) seekCursors() {
	cap := d.left.Capacity()
	d.writeL = d.delayL % cap
	d.writeR = d.delayR % cap
	d.readL = 0
	d.readR = 0
	d.left.SeekWrite(d.writeL)
	d.right.SeekWrite(d.writeR)
}

// SetMode selects the feedback topology. Safe to call from the
// control domain; the audio path reads it once per block.
func (d *DelayLine) SetMode(m base.DelayMode) {
	d.mode.Store(int32(m))
}

func (d *DelayLine) Mode() base.DelayMode {
	return base.DelayMode(d.mode.Load())
}

func (d *DelayLine) Configure(ctx *Context) {
	const id = base.EffectDelay
	cap := d.left.Capacity()
	minDelay := ctx.SampleRate / 1000
	maxDelay := cap / 2

	d.delayL = fixed.MapPotInt(ctx.Pot(id, 0), base.PotMax, minDelay, maxDelay)
	d.delayR = fixed.MapPotInt(ctx.Pot(id, 1), base.PotMax, minDelay, maxDelay)
	d.feedback = fixed.MapPotQ16(ctx.Pot(id, 2), base.PotMax, 0, fixed.Q16One)
	d.mix = fixed.MapPotQ16(ctx.Pot(id, 3), base.PotMax, 0, fixed.Q16One)
	d.dry = fixed.Q16One - d.mix
	d.lpfAlpha = fixed.Q16FromFloat(
		fixed.MapPotRange(ctx.Pot(id, 4), base.PotMax, 0.05, 1.0))
	d.volume = fixed.Q16FromFloat(
		fixed.MapPotRange(ctx.Pot(id, 5), base.PotMax, 0.1, 2.5))

	// The read cursors derive from the write cursors every time the
	// delay length changes; they never free-run.
	d.readL = (d.writeL + cap - d.delayL) % cap
	d.readR = (d.writeR + cap - d.delayR) % cap
	ctx.setDelayView(d.delayL, d.delayR)
}

// ClearMemory zero-fills both external regions, reseeds the cursors
// and flattens the repeat filters. Invoked when the delay is disabled
// or swapped out of a slot so stale audio cannot resurface.
func (d *DelayLine) ClearMemory() error {
	if err := d.left.Clear(); err != nil {
		return err
	}
	if err := d.right.Clear(); err != nil {
		return err
	}
	d.lpfStateL = 0
	d.lpfStateR = 0
	d.seekCursors()
	return nil
}

func (d *DelayLine) Reset() {
	// Bus faults during the wipe are already counted by the stores.
	_ = d.ClearMemory()
}

// Faults reports accumulated bus faults on both stores.
func (d *DelayLine) Faults() (reads, writes uint64) {
	return d.left.ReadFaults + d.right.ReadFaults,
		d.left.WriteFaults + d.right.WriteFaults
}

func (d *DelayLine) ProcessBlock(ctx *Context, l, r []int32) {
	mode := base.DelayMode(d.mode.Load())
	cap := d.left.Capacity()

	for i := range l {
		delayedL := d.left.Sample(d.readL)
		delayedR := d.right.Sample(d.readR)

		var preL, preR int32
		switch mode {
		case base.DelayCrossed:
			preL = l[i] + fixed.MulQ16(delayedR, d.feedback)
			preR = r[i] + fixed.MulQ16(delayedL, d.feedback)
		case base.DelayMixed:
			fb := fixed.MulQ16((delayedL+delayedR)>>1, d.feedback)
			preL = l[i] + fb
			preR = r[i] + fb
		case base.DelayPingPong:
			// One shared bounce: mono input enters the left line,
			// the right line carries feedback only.
			mono := (l[i] >> 1) + (r[i] >> 1)
			preL = mono + fixed.MulQ16(delayedR, d.feedback)
			preR = fixed.MulQ16(delayedL, d.feedback)
		default: // DelayParallel
			preL = l[i] + fixed.MulQ16(delayedL, d.feedback)
			preR = r[i] + fixed.MulQ16(delayedR, d.feedback)
		}

		d.lpfStateL += fixed.MulQ16(preL-d.lpfStateL, d.lpfAlpha)
		d.lpfStateR += fixed.MulQ16(preR-d.lpfStateR, d.lpfAlpha)
		d.left.Push(d.lpfStateL)
		d.right.Push(d.lpfStateR)

		l[i] = fixed.MulQ16(l[i], d.dry) + fixed.MulQ16(delayedL, d.mix)
		r[i] = fixed.MulQ16(r[i], d.dry) + fixed.MulQ16(delayedR, d.mix)
		l[i] = fixed.MulQ16(l[i], d.volume)
		r[i] = fixed.MulQ16(r[i], d.volume)

		d.writeL = (d.writeL + 1) % cap
		d.readL = (d.writeL + cap - d.delayL) % cap
		d.writeR = (d.writeR + 1) % cap
		d.readR = (d.writeR + cap - d.delayR) % cap
	}
}
