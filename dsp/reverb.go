package dsp

import (
	"github.com/pedalworks/multifx/base"
	"github.com/pedalworks/multifx/fixed"
)

// Comb lengths are mutually prime and differ per channel so the two
// channels decorrelate. The room-size pot shrinks the effective
// lengths down to half.
var (
	combSizesL = [5]int{1597, 1499, 1423, 1301, 1187}
	combSizesR = [5]int{1613, 1483, 1409, 1289, 1213}
	apSizes    = [3]int{929, 701, 499}
)

const combMinSize = 100

// comb is one damped feedback comb filter.
type comb struct {
	buf  []int32
	size int
	idx  int
	damp int32
}

func (c *comb) process(in int32, feedback, damping fixed.Q24) int32 {
	delayed := c.buf[c.idx]

	c.damp += int32((int64(delayed-c.damp) * int64(damping)) >> 24)
	fb := (int64(c.damp) * int64(feedback)) >> 24
	c.buf[c.idx] = int32(int64(in) + fb)

	c.idx++
	if c.idx >= c.size {
		c.idx = 0
	}
	return delayed
}

// allpassDiffuser smears without coloring: unity-magnitude feedback
// around a fixed delay.
type allpassDiffuser struct {
	buf []int32
	idx int
}

func (a *allpassDiffuser) process(in int32, feedback fixed.Q24) int32 {
	out := a.buf[a.idx]
	a.buf[a.idx] = in + fixed.Scale(out, feedback)
	y := out - fixed.Scale(a.buf[a.idx], feedback)

	a.idx++
	if a.idx >= len(a.buf) {
		a.idx = 0
	}
	return y
}

type reverbChannel struct {
	combs [5]comb
	aps   [3]allpassDiffuser
}

// Reverb: five damped combs in parallel, summed and fed through three
// cascaded allpass diffusers, independently per channel.
type Reverb struct {
	left  reverbChannel
	right reverbChannel

	combFeedback fixed.Q24
	apFeedback   fixed.Q24
	damping      fixed.Q24
	wetGain      fixed.Q24
	dryGain      fixed.Q24
	outputGain   fixed.Q24
}

func NewReverb() *Reverb {
	rv := &Reverb{}
	for i := range rv.left.combs {
		rv.left.combs[i].buf = make([]int32, combSizesL[i])
		rv.left.combs[i].size = combSizesL[i]
		rv.right.combs[i].buf = make([]int32, combSizesR[i])
		rv.right.combs[i].size = combSizesR[i]
	}
	for i := range rv.left.aps {
		rv.left.aps[i].buf = make([]int32, apSizes[i])
		rv.right.aps[i].buf = make([]int32, apSizes[i])
	}
	return rv
}

func (rv *Reverb) Configure(ctx *Context) {
	const id = base.EffectReverb

	mix := fixed.MapPotQ24(ctx.Pot(id, 0), base.PotMax, 0, fixed.Q24One)
	rv.combFeedback = fixed.MapPotQ24(ctx.Pot(id, 1), base.PotMax,
		fixed.FromFloat(0.80), fixed.FromFloat(0.96))
	rv.apFeedback = fixed.MapPotQ24(ctx.Pot(id, 2), base.PotMax,
		fixed.FromFloat(0.25), fixed.FromFloat(0.80))
	rv.damping = fixed.MapPotQ24(ctx.Pot(id, 3), base.PotMax,
		fixed.FromFloat(0.20), fixed.FromFloat(0.90))

	roomScale := 0.52 + fixed.MapPotRange(ctx.Pot(id, 4), base.PotMax, 0, 0.5)
	for i := range rv.left.combs {
		rv.left.combs[i].size = scaleCombSize(combSizesL[i], roomScale)
		rv.right.combs[i].size = scaleCombSize(combSizesR[i], roomScale)
	}

	rv.outputGain = fixed.MapPotQ24(ctx.Pot(id, 5), base.PotMax,
		fixed.FromFloat(0.1), fixed.FromFloat(4.0))
	rv.wetGain = mix << 2 // wet side is boosted
	rv.dryGain = fixed.Q24One - mix
}

func scaleCombSize(full int, scale float64) int {
	size := int(float64(full) * scale)
	if size < combMinSize {
		size = combMinSize
	}
	if size > full {
		size = full
	}
	return size
}

// ClearMemory zeroes every comb and allpass buffer and all damping
// state, exposed for the control domain's clear trigger.
func (rv *Reverb) ClearMemory() {
	for _, ch := range []*reverbChannel{&rv.left, &rv.right} {
		for i := range ch.combs {
			for j := range ch.combs[i].buf {
				ch.combs[i].buf[j] = 0
			}
			ch.combs[i].idx = 0
			ch.combs[i].damp = 0
		}
		for i := range ch.aps {
			for j := range ch.aps[i].buf {
				ch.aps[i].buf[j] = 0
			}
			ch.aps[i].idx = 0
		}
	}
}

func (rv *Reverb) Reset() {
	rv.ClearMemory()
}

func (rv *Reverb) ProcessBlock(ctx *Context, l, r []int32) {
	for i := range l {
		l[i] = rv.processChannel(&rv.left, l[i])
		r[i] = rv.processChannel(&rv.right, r[i])
	}
}

func (rv *Reverb) processChannel(ch *reverbChannel, in int32) int32 {
	combIn := in >> 4
	var combSum int32
	for i := range ch.combs {
		combSum += ch.combs[i].process(combIn, rv.combFeedback, rv.damping)
	}
	combSum >>= 2

	out := combSum
	for i := range ch.aps {
		out = ch.aps[i].process(out, rv.apFeedback)
	}

	wet := (int64(out) * int64(rv.wetGain)) >> 24
	dry := (int64(in) * int64(rv.dryGain)) >> 24
	mix := (dry + wet) * int64(rv.outputGain)
	return fixed.Clamp24From64(mix >> 24)
}
