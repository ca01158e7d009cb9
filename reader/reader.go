package reader

import (
	"os"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/pkg/errors"
)

// ReadWAV opens a wav file for streaming into the engine. The caller
// closes the returned file when done streaming.
func ReadWAV(filename string) (*os.File, beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, beep.Format{}, errors.Wrapf(err, "opening %q", filename)
	}

	stream, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, nil, beep.Format{}, errors.Wrapf(err, "decoding %q", filename)
	}

	return f, stream, format, nil
}

// Silence is an endless zero-sample source, used when the chain runs
// against the speaker with no input file (the delay and reverb tails
// still ring out).
type Silence struct{}

func (Silence) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		samples[i][0] = 0
		samples[i][1] = 0
	}
	return len(samples), true
}

func (Silence) Err() error { return nil }
