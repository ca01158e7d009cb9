package writer

import (
	"fmt"
	"os"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/pkg/errors"
)

// WriteStreamer replays captured frames into beep's wav encoder.
type WriteStreamer struct {
	Data           [][2]float64
	SamplesWritten int
}

func (ws *WriteStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	for i := 0; i < len(samples); i++ {
		if ws.SamplesWritten+i >= len(ws.Data) {
			ws.SamplesWritten += i
			return i, false
		}

		samples[i][0] = ws.Data[ws.SamplesWritten+i][0]
		samples[i][1] = ws.Data[ws.SamplesWritten+i][1]
	}

	ws.SamplesWritten += len(samples)
	return len(samples), ws.SamplesWritten < len(ws.Data)
}

func (ws *WriteStreamer) Err() error {
	return nil
}

// SaveAsWAV writes the processed frames to a wav file.
func SaveAsWAV(filename string, wavFormat beep.Format, samples [][2]float64) error {
	fmt.Printf("* Writing to '%s' (%d samples)\n", filename, len(samples))
	outWAVFile, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "creating %q", filename)
	}
	defer outWAVFile.Close()

	outStream := &WriteStreamer{Data: samples}
	if err := wav.Encode(outWAVFile, outStream, wavFormat); err != nil {
		return errors.Wrapf(err, "encoding %q", filename)
	}
	return nil
}
