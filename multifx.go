package main

import (
	"flag"
	"fmt"
	"syscall"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"

	"github.com/pedalworks/multifx/control"
	"github.com/pedalworks/multifx/coord"
	"github.com/pedalworks/multifx/driver"
	"github.com/pedalworks/multifx/dsp"
	"github.com/pedalworks/multifx/persist"
	"github.com/pedalworks/multifx/reader"
	"github.com/pedalworks/multifx/settings"
	"github.com/pedalworks/multifx/spiram"
	"github.com/pedalworks/multifx/utils"
	"github.com/pedalworks/multifx/writer"
)

func parseCommandLineParameters() {
	flag.StringVar(&settings.InputWav, "in", settings.InputWav, "Input wav-file")
	flag.StringVar(&settings.OutputWav, "out", settings.OutputWav, "Output wav-file")
	flag.BoolVar(&settings.Stream, "stream", settings.Stream, "Play result on the speaker")
	flag.BoolVar(&settings.Monitor, "monitor", settings.Monitor, "Interactive monitor UI")
	flag.StringVar(&settings.SettingsFile, "settings", settings.SettingsFile,
		"Journaled settings file (empty disables persistence)")
	flag.BoolVar(&settings.StereoInput, "stereo", settings.StereoInput, "Treat input as stereo")
	flag.Float64Var(&settings.TrailSeconds, "trail", settings.TrailSeconds,
		"Seconds of silence after the input, for tails")
	flag.BoolVar(&settings.PrintDebug, "debug", settings.PrintDebug, "Print debug info")
	flag.BoolVar(&settings.TraceParking, "traceparking", settings.TraceParking,
		"Trace the park/save handshake")
	flag.Parse()
}

func main() {
	fmt.Printf("* multifx v%s\n", settings.Version)
	parseCommandLineParameters()

	if settings.InputWav == "" && !settings.Stream {
		fmt.Println("No input wav specified. Use the '-in' parameter, or '-stream' for live output.")
		syscall.Exit(-1)
	}

	ctx := dsp.NewContext(settings.SampleRate, settings.BlockFrames)
	ctx.SetStereo(settings.StereoInput)

	bus := spiram.NewRAM(spiram.NewMemPort(1 << 21))
	if err := bus.Probe(); err != nil {
		fmt.Printf("Delay memory probe failed: %s\n", err)
		syscall.Exit(-1)
	}
	delay, err := dsp.NewDelayLine(bus, dsp.MaxDelaySamples, settings.BlockFrames)
	if err != nil {
		fmt.Printf("Delay memory layout failed: %s\n", err)
		syscall.Exit(-1)
	}
	engine := dsp.NewEngine(ctx, delay)

	store := persist.NewStore(settings.SettingsFile)
	loop := control.NewLoop(ctx, engine, coord.New(), store)

	snap := persist.DefaultSnapshot()
	if settings.SettingsFile != "" {
		var stored bool
		snap, stored = store.Load()
		if stored {
			utils.Debug("Restored settings from '%s'", settings.SettingsFile)
		}
	}
	loop.Apply(snap)

	d := driver.New(settings.BlockFrames, engine.Process)
	source, cleanup, format, err := openSource()
	if err != nil {
		fmt.Printf("Opening input failed: %s\n", err)
		syscall.Exit(-1)
	}
	defer cleanup()
	stream := driver.NewStreamer(d, source)

	if settings.Stream {
		runLive(loop, stream, format)
		return
	}
	runOffline(loop, stream, format)
}

// openSource builds the input chain: a decoded wav plus an optional
// silent trail, or endless silence in live mode.
func openSource() (beep.Streamer, func(), beep.Format, error) {
	format := beep.Format{
		SampleRate:  beep.SampleRate(settings.SampleRate),
		NumChannels: 2,
		Precision:   3,
	}

	if settings.InputWav == "" {
		return reader.Silence{}, func() {}, format, nil
	}

	f, stream, format, err := reader.ReadWAV(settings.InputWav)
	if err != nil {
		return nil, nil, format, err
	}

	var source beep.Streamer = stream
	if settings.TrailSeconds > 0 {
		trail := int(settings.TrailSeconds * float64(format.SampleRate))
		source = beep.Seq(stream, beep.Silence(trail))
	}
	return source, func() { f.Close() }, format, nil
}

func runLive(loop *control.Loop, stream beep.Streamer, format beep.Format) {
	if err := speaker.Init(format.SampleRate, settings.BlockFrames*4); err != nil {
		fmt.Printf("Speaker init failed: %s\n", err)
		syscall.Exit(-1)
	}
	speaker.Play(stream)

	// Blocks until the user quits; playback dies with the process.
	if err := runControl(loop); err != nil {
		fmt.Printf("Control loop failed: %s\n", err)
	}
}

func runOffline(loop *control.Loop, stream beep.Streamer, format beep.Format) {
	started := time.Now()

	var processed [][2]float64
	buf := make([][2]float64, settings.BlockFrames)
	for {
		n, ok := stream.Stream(buf)
		processed = append(processed, buf[:n]...)
		if !ok {
			break
		}
	}

	last, peak, avg := loop.Context().CPUMicros()
	utils.Debug("Rendered %d frames in %s (block us last/peak/avg: %d/%d/%d)",
		len(processed), time.Since(started), last, peak, avg)

	if err := writer.SaveAsWAV(settings.OutputWav, format, processed); err != nil {
		fmt.Printf("Writing output failed: %s\n", err)
		syscall.Exit(-1)
	}
}

func runControl(loop *control.Loop) error {
	if settings.Monitor {
		return loop.Run()
	}
	return loop.RunPrompt()
}
