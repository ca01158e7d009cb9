package driver

import (
	"github.com/faiface/beep"
)

// ProcessFunc is one engine invocation: consume a filled interleaved
// half, fill the output block. Frames are right-then-left.
type ProcessFunc func(in, out []int32)

// Driver paces the audio path: every filled buffer half triggers
// exactly one process call, never more, never less. The returned
// block is valid until the next RunBlock.
type Driver struct {
	process ProcessFunc
	buf     *DoubleBuffer
	out     []int32
	frames  int
}

func New(frames int, process ProcessFunc) *Driver {
	return &Driver{
		process: process,
		buf:     NewDoubleBuffer(frames),
		out:     make([]int32, frames*2),
		frames:  frames,
	}
}

func (d *Driver) BlockFrames() int { return d.frames }

// RunBlock fills the active half through fill, which reports how many
// frames it produced. A short fill still processes (the tail of a
// file); a zero fill ends the stream.
func (d *Driver) RunBlock(fill func(dst []int32) int) ([]int32, int) {
	in := d.buf.Active()
	frames := fill(in)
	if frames == 0 {
		return nil, 0
	}
	filled := d.buf.Flip()
	d.process(filled[:frames*2], d.out[:frames*2])
	return d.out[:frames*2], frames
}

const sampleScale = 1 << 23

func floatToSample(f float64) int32 {
	if f >= 1.0 {
		return sampleScale - 1
	}
	if f <= -1.0 {
		return -sampleScale
	}
	return int32(f * sampleScale)
}

func sampleToFloat(s int32) float64 {
	return float64(s) / sampleScale
}

// Streamer runs the driver inside beep's pull model, so the processed
// chain can feed the speaker or a wav encoder.
type Streamer struct {
	driver  *Driver
	source  beep.Streamer
	scratch [][2]float64

	block  []int32
	frames int
	pos    int
	done   bool
}

func NewStreamer(d *Driver, source beep.Streamer) *Streamer {
	return &Streamer{
		driver:  d,
		source:  source,
		scratch: make([][2]float64, d.BlockFrames()),
	}
}

func (s *Streamer) Stream(samples [][2]float64) (int, bool) {
	n := 0
	for n < len(samples) {
		if s.pos >= s.frames {
			if !s.refill() {
				return n, n > 0
			}
		}
		samples[n][0] = sampleToFloat(s.block[2*s.pos+1]) // left
		samples[n][1] = sampleToFloat(s.block[2*s.pos])   // right
		s.pos++
		n++
	}
	return n, true
}

func (s *Streamer) refill() bool {
	if s.done {
		return false
	}
	block, frames := s.driver.RunBlock(func(dst []int32) int {
		got, ok := s.source.Stream(s.scratch)
		if !ok {
			s.done = true
		}
		for i := 0; i < got; i++ {
			dst[2*i] = floatToSample(s.scratch[i][1])   // right
			dst[2*i+1] = floatToSample(s.scratch[i][0]) // left
		}
		return got
	})
	if frames == 0 {
		s.done = true
		return false
	}
	s.block = block
	s.frames = frames
	s.pos = 0
	return true
}

func (s *Streamer) Err() error {
	return s.source.Err()
}
