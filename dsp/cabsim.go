package dsp

import (
	"github.com/pedalworks/multifx/base"
	"github.com/pedalworks/multifx/fixed"
)

// CabSim approximates a closed-back guitar cabinet: a highpass rolls
// off thump, three bell sections shape body, scoop and presence, and
// a double lowpass fakes the cone's treble collapse.
type CabSim struct {
	hpf      fixed.OnePole
	body     fixed.BandPair
	scoop    fixed.BandPair
	presence fixed.BandPair
	air      fixed.OnePole
	air2     fixed.OnePole

	outputGain fixed.Q24
}

// fixed makeup for the level lost in the band chain, about +2 dB
const cabMakeup = fixed.Q24(0x1420000)

func NewCabSim() *CabSim {
	return &CabSim{}
}

func (cs *CabSim) Configure(ctx *Context) {
	const id = base.EffectCabSim
	fs := ctx.SampleRate

	// pot up = bigger cabinet = lower low cut
	lowCut := fixed.MapPotInt(base.PotMax-ctx.Pot(id, 0), base.PotMax, 30, 200)
	cs.hpf.Alpha = fixed.AlphaFromHz(lowCut, fs)

	cs.body.HPF.Alpha = fixed.AlphaFromHz(90, fs)
	cs.body.LPF.Alpha = fixed.AlphaFromHz(350, fs)
	cs.body.Gain = fixed.FromDB(fixed.MapPotRange(ctx.Pot(id, 1), base.PotMax, -6, 12))

	cs.scoop.HPF.Alpha = fixed.AlphaFromHz(350, fs)
	cs.scoop.LPF.Alpha = fixed.AlphaFromHz(1200, fs)
	cs.scoop.Gain = fixed.FromDB(fixed.MapPotRange(ctx.Pot(id, 2), base.PotMax, -14, 0))

	cs.presence.HPF.Alpha = fixed.AlphaFromHz(1200, fs)
	cs.presence.LPF.Alpha = fixed.AlphaFromHz(4500, fs)
	cs.presence.Gain = fixed.FromDB(fixed.MapPotRange(ctx.Pot(id, 3), base.PotMax, -6, 12))

	airHz := int(fixed.MapPotLog(ctx.Pot(id, 4), base.PotMax, 3000, 10000))
	cs.air.Alpha = fixed.AlphaFromHz(airHz, fs)
	cs.air2.Alpha = cs.air.Alpha

	cs.outputGain = fixed.MapPotQ24(ctx.Pot(id, 5), base.PotMax,
		fixed.FromFloat(0.1), fixed.FromFloat(2.0))
}

func (cs *CabSim) Reset() {
	cs.hpf.Reset()
	cs.body.Reset()
	cs.scoop.Reset()
	cs.presence.Reset()
	cs.air.Reset()
	cs.air2.Reset()
}

func (cs *CabSim) ProcessBlock(ctx *Context, l, r []int32) {
	for i := range l {
		l[i] = cs.processChannel(l[i], 0)
		r[i] = cs.processChannel(r[i], 1)
	}
}

func (cs *CabSim) processChannel(s int32, ch int) int32 {
	hp := cs.hpf.Highpass(s, ch)

	bands := cs.body.Bandpass(hp, ch)>>1 +
		cs.scoop.Bandpass(hp, ch)>>1 +
		cs.presence.Bandpass(hp, ch)>>1

	sum := int64(hp>>1) + int64(bands>>1)
	sum = (sum * int64(cabMakeup)) >> 24

	out := cs.air.Lowpass(fixed.Clamp24From64(sum), ch)
	out = cs.air2.Lowpass(out, ch)
	return fixed.Clamp24From64((int64(out) * int64(cs.outputGain)) >> 24)
}
