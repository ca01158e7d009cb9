package control

import (
	"fmt"
	"time"

	"github.com/eiannone/keyboard"
	"github.com/fatih/color"

	"github.com/pedalworks/multifx/base"
	"github.com/pedalworks/multifx/fixed"
)

type keyEvent struct {
	char rune
	key  keyboard.Key
	err  error
}

const promptLine = "< (1-3) Toggle slot | (d) Delay mode | (x) Chorus voices | (c/r) Clear delay/reverb | (w) Save | (v) View | (q) Quit >"

// RunPrompt is the monitor-less control loop for plain terminals:
// single-key commands, state dumps on demand.
func (l *Loop) RunPrompt() error {
	if err := keyboard.Open(); err != nil {
		return err
	}
	defer keyboard.Close()

	stop := make(chan struct{})
	defer close(stop)
	go l.runSupervisor(stop)

	// Keys are drained on a separate goroutine so this loop reaches
	// its parking poll point on a bounded cadence even while the
	// terminal is idle.
	keys := make(chan keyEvent)
	go func() {
		for {
			char, key, err := keyboard.GetKey()
			select {
			case keys <- keyEvent{char, key, err}:
			case <-stop:
				return
			}
			if err != nil {
				return
			}
		}
	}()

	token := l.coord.Token()
	tick := time.NewTicker(refreshInterval)
	defer tick.Stop()
	color.Yellow(promptLine)

	for {
		token.Poll()

		var char rune
		select {
		case e := <-keys:
			if e.err != nil {
				return e.err
			}
			if e.key == keyboard.KeyEsc || e.char == 'q' {
				return nil
			}
			char = e.char
		case <-tick.C:
			continue
		}

		switch char {
		case '1', '2', '3':
			slot := int(char - '1')
			on := l.ctx.EnabledMask()&(1<<uint(slot)) == 0
			l.ctx.SetSlotEnabled(slot, on)
			color.Cyan("Slot %d: %v", slot+1, on)
		case 'd':
			d := l.engine.Delay()
			d.SetMode((d.Mode() + 1) % 4)
			color.Cyan("Delay mode: %s", d.Mode())
		case 'x':
			ch := l.engine.Chorus()
			ch.SetMode((ch.Mode() + 1) % base.NumChorusModes)
			color.Cyan("Chorus voices: %s", ch.Mode())
		case 'c':
			if err := l.engine.Delay().ClearMemory(); err != nil {
				color.Red("Clearing delay memory failed: %s", err)
			} else {
				color.Cyan("Delay memory cleared")
			}
		case 'r':
			l.engine.ClearReverbMemory()
			color.Cyan("Reverb memory cleared")
		case 'w':
			l.coord.RequestSave()
			color.Cyan("Save requested")
		case 'v':
			l.printState()
			color.Yellow(promptLine)
		}
	}
}

func (l *Loop) printState() {
	peakL, peakR := l.ctx.TakePeaks()
	last, peak, avg := l.ctx.CPUMicros()
	dl, dr := l.ctx.DelayView()

	mask := l.ctx.EnabledMask()
	for slot := 0; slot < base.NumSlots; slot++ {
		id := l.engine.Slot(slot)
		name := "(empty)"
		if id.Valid() {
			name = id.String()
		}
		state := "off"
		if mask&(1<<uint(slot)) != 0 {
			state = "ON"
		}
		fmt.Printf("  Slot %d: %-12s %s\n", slot+1, name, state)
	}
	fmt.Printf("  Peaks: %.3f / %.3f   Volume: %.2f\n",
		float64(peakL)/(1<<23), float64(peakR)/(1<<23),
		fixed.Q16ToFloat(l.ctx.MasterVolume()))
	fmt.Printf("  Delay: %d/%d smp (%s)\n", dl, dr, l.engine.Delay().Mode())
	fmt.Printf("  CPU: %d us (peak %d, avg %d)\n", last, peak, avg)
}
