package dsp

import (
	"testing"

	"github.com/pedalworks/multifx/base"
	"github.com/pedalworks/multifx/fixed"
	"github.com/pedalworks/multifx/spiram"
)

func newTestEngine(t *testing.T, blockFrames int) (*Engine, *Context) {
	t.Helper()
	ctx := NewContext(48000, blockFrames)
	bus := spiram.NewRAM(spiram.NewMemPort(1 << 20))
	delay, err := NewDelayLine(bus, 4096, 32)
	if err != nil {
		t.Fatal(err)
	}
	return NewEngine(ctx, delay), ctx
}

func interleave(l, r []int32) []int32 {
	out := make([]int32, 2*len(l))
	for i := range l {
		out[2*i] = r[i]
		out[2*i+1] = l[i]
	}
	return out
}

// A slot holding no effect, an invalid id, or a disabled effect must
// pass audio through untouched.
func TestEnginePassthrough(t *testing.T) {
	const frames = 100
	e, ctx := newTestEngine(t, frames)

	l := make([]int32, frames)
	r := make([]int32, frames)
	for i := range l {
		l[i] = int32(i*1000 - 50000)
		r[i] = int32(50000 - i*1000)
	}
	in := interleave(l, r)
	out := make([]int32, len(in))

	cases := []func(){
		func() {}, // all slots empty
		func() { e.SetSlot(0, base.EffectID(99)); ctx.SetSlotEnabled(0, true) },
		func() { e.SetSlot(1, base.EffectDistortion) }, // enabled bit not set
	}
	for n, setup := range cases {
		setup()
		e.Process(in, out)
		for i := range in {
			if out[i] != in[i] {
				t.Fatalf("case %d: out[%d] = %d, want %d\n", n, i, out[i], in[i])
			}
		}
	}
}

func TestEngineMasterVolumeSaturates(t *testing.T) {
	const frames = 32
	e, ctx := newTestEngine(t, frames)
	ctx.SetMasterVolume(fixed.Q16One * 8)

	in := make([]int32, frames*2)
	for i := range in {
		in[i] = fixed.SampleMax / 2
	}
	out := make([]int32, len(in))
	e.Process(in, out)
	for i := range out {
		if out[i] != fixed.SampleMax {
			t.Fatalf("out[%d] = %d, want saturated %d\n", i, out[i], fixed.SampleMax)
		}
	}

	for i := range in {
		in[i] = fixed.SampleMin / 2
	}
	e.Process(in, out)
	for i := range out {
		if out[i] != fixed.SampleMin {
			t.Fatalf("out[%d] = %d, want saturated %d\n", i, out[i], fixed.SampleMin)
		}
	}
}

// Mono input mode duplicates the left channel into the right before
// the chain runs.
func TestEngineMonoDuplicatesLeft(t *testing.T) {
	const frames = 16
	e, ctx := newTestEngine(t, frames)
	ctx.SetStereo(false)

	in := make([]int32, frames*2)
	for i := 0; i < frames; i++ {
		in[2*i] = 0x7000      // right, to be discarded
		in[2*i+1] = int32(-i) // left
	}
	out := make([]int32, len(in))
	e.Process(in, out)
	for i := 0; i < frames; i++ {
		if out[2*i] != out[2*i+1] {
			t.Fatalf("frame %d not mono: r=%d l=%d\n", i, out[2*i], out[2*i+1])
		}
		if out[2*i+1] != int32(-i) {
			t.Fatalf("frame %d: left = %d, want %d\n", i, out[2*i+1], int32(-i))
		}
	}
}

// Staged parameters take effect on the next block, exactly once.
func TestEngineAppliesStagedParams(t *testing.T) {
	const frames = 32
	e, ctx := newTestEngine(t, frames)

	pots := [base.NumFuncPots]uint16{100, 200, 300, 400, 500, 600}
	if !ctx.StageParams(base.EffectDelay, pots) {
		t.Fatalf("staging rejected with no update pending\n")
	}
	if ctx.StageParams(base.EffectDelay, pots) {
		t.Fatalf("second staging accepted before the first was applied\n")
	}

	in := make([]int32, frames*2)
	out := make([]int32, len(in))
	e.Process(in, out)

	if got := ctx.Pot(base.EffectDelay, 3); got != 400 {
		t.Fatalf("pot 3 = %d after apply, want 400\n", got)
	}
	if !ctx.StageParams(base.EffectDelay, pots) {
		t.Fatalf("staging still blocked after the update was applied\n")
	}
}

func TestEnginePeakMeters(t *testing.T) {
	const frames = 8
	e, ctx := newTestEngine(t, frames)

	in := make([]int32, frames*2)
	in[0] = -0x300000 // right
	in[1] = 0x200000  // left
	out := make([]int32, len(in))
	e.Process(in, out)

	l, r := ctx.TakePeaks()
	if l != 0x200000 || r != 0x300000 {
		t.Fatalf("peaks = (%d, %d), want (%d, %d)\n", l, r, 0x200000, 0x300000)
	}
	l, r = ctx.TakePeaks()
	if l != 0 || r != 0 {
		t.Fatalf("peaks not reset after TakePeaks: (%d, %d)\n", l, r)
	}
}

func TestEngineCPUAccounting(t *testing.T) {
	const frames = 32
	e, ctx := newTestEngine(t, frames)
	e.SetSlot(0, base.EffectReverb)
	ctx.SetSlotEnabled(0, true)

	in := make([]int32, frames*2)
	out := make([]int32, len(in))
	for i := 0; i < 64; i++ {
		e.Process(in, out)
	}
	_, peak, _ := ctx.CPUMicros()
	if peak < 0 {
		t.Fatalf("negative peak CPU time %d\n", peak)
	}
}
