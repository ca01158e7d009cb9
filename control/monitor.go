package control

import (
	"fmt"

	termui "github.com/gizak/termui/v3"
	ui "github.com/gizak/termui/v3"
	widgets "github.com/gizak/termui/v3/widgets"

	"github.com/pedalworks/multifx/base"
	"github.com/pedalworks/multifx/dsp"
	"github.com/pedalworks/multifx/fixed"
	"github.com/pedalworks/multifx/settings"
	"github.com/pedalworks/multifx/utils"
)

type monitorState struct {
	terminalWidth  int
	terminalHeight int

	vuLeftView   *widgets.Gauge
	vuRightView  *widgets.Gauge
	slotsView    *widgets.Paragraph
	delayView    *widgets.Paragraph
	cpuView      *widgets.Paragraph
	helpLineView *widgets.Paragraph
}

var monState monitorState

var boxTitleStyle = termui.NewStyle(termui.ColorRed, termui.ColorBlue)

func initMonitor() error {
	if err := termui.Init(); err != nil {
		return err
	}
	width, height := termui.TerminalDimensions()
	monState.terminalWidth = width
	monState.terminalHeight = height
	return nil
}

func closeMonitor() {
	termui.Close()
}

func resizeMonitor() {
	width, height := termui.TerminalDimensions()
	monState.terminalWidth = width
	monState.terminalHeight = height
}

func updateScreen(l *Loop) {
	updateVUViews(l.ctx)
	updateSlotsView(l)
	updateDelayView(l.ctx, l.engine)
	updateCPUView(l.ctx)
	updateHelpLineView()

	ui.Render(monState.vuLeftView, monState.vuRightView, monState.slotsView,
		monState.delayView, monState.cpuView, monState.helpLineView)
}

// peakPercent maps a 24-bit peak onto 0..100 for the gauges.
func peakPercent(peak int32) int {
	utils.Assert(peak >= 0, "negative peak %d", peak)
	pct := int(int64(peak) * 100 / int64(fixed.SampleMax))
	if pct > 100 {
		pct = 100
	}
	return pct
}

func updateVUViews(ctx *dsp.Context) {
	width := monState.terminalWidth
	peakL, peakR := ctx.TakePeaks()

	left := widgets.NewGauge()
	left.Title = "  Out L  "
	left.TitleStyle = boxTitleStyle
	left.Percent = peakPercent(peakL)
	left.BarColor = termui.ColorGreen
	if left.Percent > 90 {
		left.BarColor = termui.ColorRed
	}
	left.SetRect(0, 0, width, 3)

	right := widgets.NewGauge()
	right.Title = "  Out R  "
	right.TitleStyle = boxTitleStyle
	right.Percent = peakPercent(peakR)
	right.BarColor = termui.ColorGreen
	if right.Percent > 90 {
		right.BarColor = termui.ColorRed
	}
	right.SetRect(0, 3, width, 6)

	monState.vuLeftView = left
	monState.vuRightView = right
}

func updateSlotsView(l *Loop) {
	mask := l.ctx.EnabledMask()

	text := ""
	for slot := 0; slot < base.NumSlots; slot++ {
		id := l.engine.Slot(slot)
		name := "(empty)"
		if id.Valid() {
			name = id.String()
		}
		state := "[off](fg:red)"
		if mask&(1<<uint(slot)) != 0 {
			state = "[ON](fg:green)"
		}
		focus := " "
		if slot == l.focusSlot {
			focus = "[>](fg:magenta)"
		}
		text += fmt.Sprintf("%s[Slot %d:](fg:yellow) %-12s %s\n", focus, slot+1, name, state)
	}
	text += fmt.Sprintf("\n [Pot %d:](fg:magenta) %d", l.focusPot, l.focusedPotValue())
	text += fmt.Sprintf("   [Volume:](fg:cyan) %.2f   [Stereo:](fg:cyan) %v\n",
		fixed.Q16ToFloat(l.ctx.MasterVolume()), l.ctx.Stereo())

	p := widgets.NewParagraph()
	p.Title = "  Chain  "
	p.TitleStyle = boxTitleStyle
	p.BorderStyle = termui.NewStyle(termui.ColorGreen)
	p.Text = text
	p.SetRect(0, 6, monState.terminalWidth/2, 14)

	monState.slotsView = p
}

func updateDelayView(ctx *dsp.Context, engine *dsp.Engine) {
	dl, dr := ctx.DelayView()
	gl, gr := ctx.CompGain()
	reads, writes := engine.Delay().Faults()

	text := fmt.Sprintf(" [Delay L:](fg:yellow) %d smp (%.0f ms)\n",
		dl, 1000*float64(dl)/float64(ctx.SampleRate))
	text += fmt.Sprintf(" [Delay R:](fg:yellow) %d smp (%.0f ms)\n",
		dr, 1000*float64(dr)/float64(ctx.SampleRate))
	text += fmt.Sprintf(" [Mode:](fg:yellow) %s\n", engine.Delay().Mode())
	text += fmt.Sprintf(" [Bus faults:](fg:yellow) %d read / %d write\n", reads, writes)
	text += fmt.Sprintf("\n [Comp gain:](fg:cyan) %.2f / %.2f\n",
		fixed.ToFloat(gl), fixed.ToFloat(gr))

	p := widgets.NewParagraph()
	p.Title = "  Delay / Dynamics  "
	p.TitleStyle = boxTitleStyle
	p.BorderStyle = termui.NewStyle(termui.ColorGreen)
	p.Text = text
	p.SetRect(monState.terminalWidth/2, 6, monState.terminalWidth, 14)

	monState.delayView = p
}

func updateCPUView(ctx *dsp.Context) {
	last, peak, avg := ctx.CPUMicros()
	budget := 1e6 * float64(ctx.BlockFrames) / float64(ctx.SampleRate)

	text := fmt.Sprintf(" [Block:](fg:yellow) %d us   [Peak:](fg:yellow) %d us   "+
		"[Avg:](fg:yellow) %d us\n [Load:](fg:cyan) %.1f%% of %.0f us budget\n",
		last, peak, avg, 100*float64(avg)/budget, budget)

	p := widgets.NewParagraph()
	p.Title = "  CPU  "
	p.TitleStyle = boxTitleStyle
	p.Text = text
	p.SetRect(0, 14, monState.terminalWidth, 18)

	monState.cpuView = p
}

func updateHelpLineView() {
	width, height := monState.terminalWidth, monState.terminalHeight
	helpLine := widgets.NewParagraph()
	helpLine.Text =
		"[ESC/q:](fg:black) Quit [|](fg:white,bg:black) " +
			"[1-3:](fg:black) Toggle slot [|](fg:white,bg:black) " +
			"[d:](fg:black) Delay mode [|](fg:white,bg:black) " +
			"[x:](fg:black) Chorus voices [|](fg:white,bg:black) " +
			"[c/r:](fg:black) Clear delay/reverb [|](fg:white,bg:black) " +
			"[w:](fg:black) Save [|](fg:white,bg:black) " +
			"[Tab/p/[]:](fg:black) Pot edit [|](fg:white,bg:black) " +
			"[+/-:](fg:black) Volume v" + settings.Version
	helpLine.Border = false
	helpLine.TextStyle = boxTitleStyle
	helpLine.SetRect(0, height-1, width, height)

	monState.helpLineView = helpLine
}
