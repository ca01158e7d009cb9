package dsp

import (
	"testing"

	"github.com/pedalworks/multifx/base"
	"github.com/pedalworks/multifx/fixed"
)

func setPots(ctx *Context, id base.EffectID, pots [base.NumFuncPots]uint16) {
	ctx.pots[id] = pots
}

// The gain computer runs every fourth sample; between updates the
// cached gain must hold still.
func TestCompressorGainCadence(t *testing.T) {
	ctx := NewContext(48000, 32)
	c := NewCompressor()
	setPots(ctx, base.EffectCompressor, [base.NumFuncPots]uint16{
		0,           // threshold at the bottom, -20 dB
		base.PotMax, // ratio 20:1
		0,           // fastest attack
		0, 0, 0,
	})
	c.Configure(ctx)

	const n = 16
	gains := make([]fixed.Q24, n)
	for i := 0; i < n; i++ {
		l := []int32{0x700000}
		r := []int32{0x700000}
		c.ProcessBlock(ctx, l, r)
		gains[i] = c.gainL
	}

	for i := 1; i < n; i++ {
		if (i+1)%gainInterval != 0 && gains[i] != gains[i-1] {
			t.Fatalf("gain moved between updates at sample %d: %d -> %d\n",
				i, gains[i-1], gains[i])
		}
	}
	if gains[n-1] >= fixed.Q24One {
		t.Fatalf("loud input produced no gain reduction (gain %d)\n", gains[n-1])
	}
}

// Mode changes are staged by the control domain and take effect at
// the next block; the tap phases must land at the layout's offsets.
func TestChorusModePhaseSpacing(t *testing.T) {
	ctx := NewContext(48000, 32)
	c := NewChorus()
	c.Configure(ctx)
	l := make([]int32, 32)
	r := make([]int32, 32)

	step := func(mode base.ChorusMode) {
		c.SetMode(mode)
		c.ProcessBlock(ctx, l, r)
	}

	step(base.ChorusStereo3)
	if d := c.lfo[1].Phase - c.lfo[0].Phase; d != fixed.PhaseOffset120 {
		t.Fatalf("three-voice spacing: lfo1 off by %#x, want %#x\n", d, fixed.PhaseOffset120)
	}
	if d := c.lfo[2].Phase - c.lfo[0].Phase; d != fixed.PhaseOffset240 {
		t.Fatalf("three-voice spacing: lfo2 off by %#x, want %#x\n", d, fixed.PhaseOffset240)
	}

	step(base.ChorusStereo2)
	if d := c.lfo[1].Phase - c.lfo[0].Phase; d != fixed.PhaseOffset180 {
		t.Fatalf("two-voice spacing: lfo1 off by %#x, want %#x\n", d, fixed.PhaseOffset180)
	}

	step(base.ChorusMono)
	if c.lfo[1].Phase != c.lfo[0].Phase || c.lfo[2].Phase != c.lfo[0].Phase {
		t.Fatalf("mono mode must collapse all voices onto one phase\n")
	}
}

func TestTremoloFullDepthModulates(t *testing.T) {
	ctx := NewContext(48000, 32)
	tr := NewTremolo()
	setPots(ctx, base.EffectTremolo, [base.NumFuncPots]uint16{
		base.PotMax, base.PotMax, 0, 0, 0, 0,
	})
	tr.Configure(ctx)

	const in = 0x400000
	var lo, hi int32 = in, 0
	for i := 0; i < 8192; i += 32 {
		l := make([]int32, 32)
		r := make([]int32, 32)
		for j := range l {
			l[j], r[j] = in, in
		}
		tr.ProcessBlock(ctx, l, r)
		for _, s := range l {
			if s < lo {
				lo = s
			}
			if s > hi {
				hi = s
			}
			if s < 0 || s > in {
				t.Fatalf("tremolo pushed %d outside [0, %d]\n", s, in)
			}
		}
	}
	if lo > in/4 || hi < in*3/4 {
		t.Fatalf("full depth barely modulated: range [%d, %d] of %d\n", lo, hi, in)
	}
}

func TestTremoloMonoChannelsTrack(t *testing.T) {
	ctx := NewContext(48000, 32)
	ctx.SetStereo(false)
	tr := NewTremolo()
	setPots(ctx, base.EffectTremolo, [base.NumFuncPots]uint16{
		2000, base.PotMax, 0, 0, 0, 0,
	})
	tr.Configure(ctx)

	l := make([]int32, 512)
	r := make([]int32, 512)
	for i := range l {
		l[i], r[i] = 0x200000, 0x200000
	}
	tr.ProcessBlock(ctx, l, r)
	for i := range l {
		if l[i] != r[i] {
			t.Fatalf("mono tremolo diverged at %d: l=%d r=%d\n", i, l[i], r[i])
		}
	}
}

// Every clip curve must keep a full-scale ramp inside the sample
// range after makeup gain and the tonestack.
func TestWaveshaperOutputBounded(t *testing.T) {
	for _, tc := range []struct {
		name string
		mk   func() *Waveshaper
	}{
		{"distortion", NewDistortion},
		{"overdrive", NewOverdrive},
		{"fuzz", NewFuzz},
	} {
		ctx := NewContext(48000, 32)
		w := tc.mk()
		setPots(ctx, w.id, [base.NumFuncPots]uint16{
			base.PotMax, base.PotMax, base.PotMax, base.PotMax, base.PotMax, base.PotMax,
		})
		w.Configure(ctx)

		l := make([]int32, 4096)
		r := make([]int32, 4096)
		for i := range l {
			v := int32((i%64 - 32) * (fixed.SampleMax / 32))
			l[i], r[i] = v, -v
		}
		w.ProcessBlock(ctx, l, r)
		for i := range l {
			if l[i] > fixed.SampleMax || l[i] < fixed.SampleMin ||
				r[i] > fixed.SampleMax || r[i] < fixed.SampleMin {
				t.Fatalf("%s: sample %d out of range: l=%d r=%d\n", tc.name, i, l[i], r[i])
			}
		}
	}
}

func TestEQSilenceStaysSilent(t *testing.T) {
	ctx := NewContext(48000, 32)
	eq := NewEQ()
	setPots(ctx, base.EffectEQ, [base.NumFuncPots]uint16{
		base.PotMax, base.PotMax, 2000, base.PotMax, 2000, base.PotMax,
	})
	eq.Configure(ctx)

	l := make([]int32, 1024)
	r := make([]int32, 1024)
	eq.ProcessBlock(ctx, l, r)
	for i := range l {
		if l[i] != 0 || r[i] != 0 {
			t.Fatalf("silence produced %d/%d at sample %d\n", l[i], r[i], i)
		}
	}
}

func TestReverbImpulseRingsAndClears(t *testing.T) {
	ctx := NewContext(48000, 32)
	rv := NewReverb()
	setPots(ctx, base.EffectReverb, [base.NumFuncPots]uint16{
		base.PotMax,     // wet only
		base.PotMax / 2, // comb feedback
		base.PotMax / 2, // allpass feedback
		1000,            // damping
		base.PotMax,     // full room
		2000,            // output gain
	})
	rv.Configure(ctx)

	l := make([]int32, 4096)
	r := make([]int32, 4096)
	l[0], r[0] = 0x400000, 0x400000
	for i := 0; i < len(l); i += 32 {
		rv.ProcessBlock(ctx, l[i:i+32], r[i:i+32])
	}

	var rang bool
	for i := 1024; i < len(l); i++ {
		if l[i] != 0 || r[i] != 0 {
			rang = true
			break
		}
	}
	if !rang {
		t.Fatalf("impulse produced no tail\n")
	}

	rv.ClearMemory()
	quietL := make([]int32, 2048)
	quietR := make([]int32, 2048)
	for i := 0; i < len(quietL); i += 32 {
		rv.ProcessBlock(ctx, quietL[i:i+32], quietR[i:i+32])
	}
	for i := range quietL {
		if quietL[i] != 0 || quietR[i] != 0 {
			t.Fatalf("tail survived ClearMemory at sample %d\n", i)
		}
	}
}

// The cabinet chain is high-passed end to end, so a DC step must die
// out.
func TestCabSimBlocksDC(t *testing.T) {
	ctx := NewContext(48000, 32)
	cs := NewCabSim()
	setPots(ctx, base.EffectCabSim, [base.NumFuncPots]uint16{
		0, 2000, 2000, 2000, base.PotMax, base.PotMax,
	})
	cs.Configure(ctx)

	l := make([]int32, 48000)
	r := make([]int32, 48000)
	for i := range l {
		l[i], r[i] = 0x200000, 0x200000
	}
	cs.ProcessBlock(ctx, l, r)

	tail := l[len(l)-1]
	if tail < 0 {
		tail = -tail
	}
	if tail > 0x1000 {
		t.Fatalf("DC leaked through the cabinet: tail %d\n", tail)
	}
}

// Every module must survive a Configure/Reset cycle and keep silence
// silent (the modulation effects read an empty line).
func TestModulationEffectsSilence(t *testing.T) {
	ctx := NewContext(48000, 32)
	mods := []struct {
		name string
		m    Module
		id   base.EffectID
	}{
		{"chorus", NewChorus(), base.EffectChorus},
		{"flanger", NewFlanger(), base.EffectFlanger},
		{"phaser", NewPhaser(), base.EffectPhaser},
		{"vibrato", NewVibrato(), base.EffectVibrato},
	}
	for _, tc := range mods {
		setPots(ctx, tc.id, base.FactoryPots[tc.id])
		tc.m.Configure(ctx)
		tc.m.Reset()

		l := make([]int32, 512)
		r := make([]int32, 512)
		tc.m.ProcessBlock(ctx, l, r)
		for i := range l {
			if l[i] != 0 || r[i] != 0 {
				t.Fatalf("%s: silence produced %d/%d at sample %d\n",
					tc.name, l[i], r[i], i)
			}
		}
	}
}
