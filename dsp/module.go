package dsp

// Module is one effect unit. The engine calls Configure when the
// module's parameters change, ProcessBlock once per audio block on
// the channel arrays in place, and Reset when the module is swapped
// out of a slot.
//
// ProcessBlock runs on the audio domain: amortized O(1) per frame,
// no allocation, no blocking. Mode-like parameters are read once per
// block, never per sample. Configure re-zeroes filter state so a
// parameter change cannot click; the delay line's damping filter is
// the one documented exception.
type Module interface {
	Configure(ctx *Context)
	ProcessBlock(ctx *Context, l, r []int32)
	Reset()
}
