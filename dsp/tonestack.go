package dsp

import (
	"github.com/pedalworks/multifx/base"
	"github.com/pedalworks/multifx/fixed"
)

// Fixed corner frequencies shared by the waveshaper family and the
// EQ: low shelf at 120 Hz, treble shelf at 3.2 kHz, pre-clip HPF at
// 90 Hz, post-clip LPF at 6.5 kHz. The mid band is pot-swept.
const (
	bassHz   = 120
	trebleHz = 3200
	rumbleHz = 90
	fizzHz   = 6500
)

// toneStack is the 3-band shelf/band mix at the tail of every
// waveshaper: low shelf + swept mid band-pass + high shelf, each with
// its own gain, summed and scaled by an output volume.
type toneStack struct {
	lowGain  fixed.Q24
	midGain  fixed.Q24
	highGain fixed.Q24
	volume   fixed.Q24

	low   fixed.OnePole
	midHP fixed.OnePole
	midLP fixed.OnePole
	high  fixed.OnePole
}

// configure maps the four tone pots (bass, mid, mid-frequency,
// treble) plus a volume gain and resets all band state. The mid band
// sweeps between midLoHz and midHiHz.
func (t *toneStack) configure(ctx *Context, bassPot, midPot, midFreqPot, treblePot int, midLoHz, midHiHz int, volume fixed.Q24) {
	t.lowGain = fixed.MapPotQ24(bassPot, base.PotMax, fixed.FromFloat(0.25), fixed.FromFloat(2.0))
	t.midGain = fixed.MapPotQ24(midPot, base.PotMax, fixed.FromFloat(0.25), fixed.FromFloat(3.0))
	midAlpha := fixed.MapPotQ24(midFreqPot, base.PotMax,
		fixed.AlphaFromHz(midLoHz, ctx.SampleRate),
		fixed.AlphaFromHz(midHiHz, ctx.SampleRate))
	t.highGain = fixed.MapPotQ24(treblePot, base.PotMax, fixed.FromFloat(0.25), fixed.FromFloat(2.0))
	t.volume = volume

	t.low.Alpha = fixed.AlphaFromHz(bassHz, ctx.SampleRate)
	t.midHP.Alpha = midAlpha
	t.midLP.Alpha = midAlpha
	t.high.Alpha = fixed.AlphaFromHz(trebleHz, ctx.SampleRate)
	t.reset()
}

func (t *toneStack) reset() {
	t.low.Reset()
	t.midHP.Reset()
	t.midLP.Reset()
	t.high.Reset()
}

// process runs one sample of one channel through the three bands and
// the output volume. The result is clamped.
func (t *toneStack) process(s int32, ch int) int32 {
	low := fixed.Scale(t.low.Lowpass(s, ch), t.lowGain)
	mid := fixed.Scale(t.midLP.Lowpass(t.midHP.Highpass(s, ch), ch), t.midGain)
	high := fixed.Scale(t.high.Highpass(s, ch), t.highGain)

	y := int64(low) + int64(mid) + int64(high)
	y = (y * int64(t.volume)) >> 24
	return fixed.Clamp24From64(y)
}
