package driver

// DoubleBuffer is the ping-pong pair of interleaved blocks behind the
// acquisition loop: one half fills while the other is processed.
type DoubleBuffer struct {
	ping   []int32
	pong   []int32
	active int
}

func NewDoubleBuffer(frames int) *DoubleBuffer {
	return &DoubleBuffer{
		ping: make([]int32, frames*2),
		pong: make([]int32, frames*2),
	}
}

// Active returns the half currently being filled.
func (b *DoubleBuffer) Active() []int32 {
	if b.active == 0 {
		return b.ping
	}
	return b.pong
}

func (b *DoubleBuffer) ActiveIndex() int { return b.active }

// Flip hands the filled half over and exposes the other for filling.
func (b *DoubleBuffer) Flip() []int32 {
	filled := b.Active()
	b.active ^= 1
	return filled
}
