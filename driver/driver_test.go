package driver

import (
	"testing"
)

// Each RunBlock must process the half that was just filled, and the
// halves must strictly alternate.
func TestDriverAlternatesHalves(t *testing.T) {
	const frames = 32
	var ptrs []*int32
	var calls int
	d := New(frames, func(in, out []int32) {
		calls++
		ptrs = append(ptrs, &in[0])
		copy(out, in)
	})

	for i := 0; i < 8; i++ {
		block, got := d.RunBlock(func(dst []int32) int {
			for j := range dst {
				dst[j] = int32(i*1000 + j)
			}
			return frames
		})
		if got != frames {
			t.Fatalf("block %d: processed %d frames, want %d\n", i, got, frames)
		}
		for j, s := range block {
			if s != int32(i*1000+j) {
				t.Fatalf("block %d: out[%d] = %d, want %d\n", i, j, s, i*1000+j)
			}
		}
	}

	if calls != 8 {
		t.Fatalf("process ran %d times for 8 blocks\n", calls)
	}
	distinct := map[*int32]bool{}
	for i, p := range ptrs {
		distinct[p] = true
		if i > 0 && p == ptrs[i-1] {
			t.Fatalf("halves did not alternate at block %d\n", i)
		}
	}
	if len(distinct) != 2 {
		t.Fatalf("driver used %d buffers, want 2\n", len(distinct))
	}
}

func TestDriverZeroFillEndsStream(t *testing.T) {
	d := New(16, func(in, out []int32) {
		t.Fatalf("process ran on an empty fill\n")
	})
	block, frames := d.RunBlock(func(dst []int32) int { return 0 })
	if block != nil || frames != 0 {
		t.Fatalf("empty fill returned %d frames\n", frames)
	}
}

type sliceStreamer struct {
	data [][2]float64
	pos  int
}

func (ss *sliceStreamer) Stream(samples [][2]float64) (int, bool) {
	n := copy(samples, ss.data[ss.pos:])
	ss.pos += n
	return n, ss.pos < len(ss.data)
}

func (ss *sliceStreamer) Err() error { return nil }

// A passthrough chain behind the beep adapter must reproduce the
// source, including a final partial block.
func TestStreamerPassthrough(t *testing.T) {
	const frames = 32
	src := &sliceStreamer{}
	for i := 0; i < frames*3+7; i++ {
		src.data = append(src.data, [2]float64{
			float64(i) / 1000,
			-float64(i) / 1000,
		})
	}

	d := New(frames, func(in, out []int32) { copy(out, in) })
	st := NewStreamer(d, src)

	var got [][2]float64
	buf := make([][2]float64, 24)
	for {
		n, ok := st.Stream(buf)
		got = append(got, buf[:n]...)
		if !ok {
			break
		}
	}

	if len(got) != len(src.data) {
		t.Fatalf("streamed %d frames, want %d\n", len(got), len(src.data))
	}
	for i := range got {
		for ch := 0; ch < 2; ch++ {
			want := floatToSample(src.data[i][ch])
			if floatToSample(got[i][ch]) != want {
				t.Fatalf("frame %d ch %d: %f, want %f\n", i, ch, got[i][ch], src.data[i][ch])
			}
		}
	}
}
