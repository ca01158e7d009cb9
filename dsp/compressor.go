package dsp

import (
	"github.com/pedalworks/multifx/base"
	"github.com/pedalworks/multifx/fixed"
)

// Gain is recomputed every gainInterval samples, not every sample;
// between updates the cached gain is applied. The envelope follower
// still runs per sample.
const gainInterval = 4

const kneeWidth = fixed.Q24(0x0019999A) // ~0.1, soft knee span

// Compressor is a per-channel envelope follower feeding a soft-knee
// gain computer, with makeup gain.
type Compressor struct {
	threshold fixed.Q24
	invRatio  fixed.Q24
	makeup    fixed.Q24
	attack    fixed.Q24
	release   fixed.Q24

	envL, envR   fixed.Q24
	gainL, gainR fixed.Q24
	counter      int
}

func NewCompressor() *Compressor {
	return &Compressor{gainL: fixed.Q24One, gainR: fixed.Q24One}
}

func (c *Compressor) Configure(ctx *Context) {
	const id = base.EffectCompressor

	threshDB := fixed.MapPotRange(ctx.Pot(id, 0), base.PotMax, -20, 20)
	c.threshold = fixed.FromDB(threshDB)

	ratio := fixed.MapPotRange(ctx.Pot(id, 1), base.PotMax, 1.1, 20.0)
	c.invRatio = fixed.FromFloat(1.0 / ratio)

	attackMs := fixed.MapPotRange(ctx.Pot(id, 2), base.PotMax, 1, 100)
	c.attack = fixed.CoeffFromMs(attackMs, ctx.SampleRate)
	releaseMs := fixed.MapPotRange(ctx.Pot(id, 3), base.PotMax, 20, 500)
	c.release = fixed.CoeffFromMs(releaseMs, ctx.SampleRate)

	makeupDB := fixed.MapPotRange(ctx.Pot(id, 5), base.PotMax, 0, 20)
	c.makeup = fixed.FromDB(makeupDB)

	c.Reset()
}

func (c *Compressor) Reset() {
	c.envL, c.envR = 0, 0
	c.gainL, c.gainR = fixed.Q24One, fixed.Q24One
	c.counter = 0
}

func (c *Compressor) ProcessBlock(ctx *Context, l, r []int32) {
	for i := range l {
		c.envL = c.follow(c.envL, l[i])
		c.envR = c.follow(c.envR, r[i])

		c.counter++
		if c.counter >= gainInterval {
			c.counter = 0
			c.gainL = c.computeGain(c.envL)
			c.gainR = c.computeGain(c.envR)
			ctx.setCompGain(c.gainL, c.gainR)
		}

		l[i] = fixed.Clamp24(fixed.Scale(fixed.Scale(l[i], c.gainL), c.makeup))
		r[i] = fixed.Clamp24(fixed.Scale(fixed.Scale(r[i], c.gainR), c.makeup))
	}
}

// follow advances the envelope with the attack coefficient when the
// signal rises and the release coefficient when it falls.
func (c *Compressor) follow(env fixed.Q24, x int32) fixed.Q24 {
	if x < 0 {
		x = -x
	}
	coeff := c.release
	if fixed.Q24(x) > env {
		coeff = c.attack
	}
	return fixed.Q24((int64(env)*int64(coeff) + int64(x)*int64(fixed.Q24One-coeff)) >> 24)
}

// computeGain maps the envelope to a gain factor: unity below the
// knee, the full-ratio line above it, blended across the knee span.
func (c *Compressor) computeGain(env fixed.Q24) fixed.Q24 {
	if env <= 0 || c.invRatio >= fixed.Q24One {
		return fixed.Q24One
	}

	kneeHalf := kneeWidth >> 1
	kneeStart := c.threshold - kneeHalf
	kneeEnd := c.threshold + kneeHalf

	if env <= kneeStart {
		return fixed.Q24One
	}

	ratioDelta := fixed.Q24One - c.invRatio
	overThresh := env - c.threshold
	frac := fixed.DivQ24(overThresh, env)
	if frac > fixed.Q24One {
		frac = fixed.Q24One
	}
	gainEnd := fixed.Q24One - fixed.MulQ24(frac, ratioDelta)

	if env >= kneeEnd {
		return gainEnd
	}

	t := fixed.Q16((int64(env-kneeStart) << 16) / int64(kneeWidth))
	return fixed.Q24(fixed.Lerp(int32(fixed.Q24One), int32(gainEnd), t))
}
