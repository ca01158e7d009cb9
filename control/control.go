// Package control runs the non-real-time domain: the terminal
// monitor, key handling, parameter staging and the save supervisor.
// Every loop iteration starts at the parking token's poll point, so a
// pending persistence write quiesces this domain's terminal and file
// traffic without touching the audio path.
package control

import (
	"time"

	ui "github.com/gizak/termui/v3"

	"github.com/pedalworks/multifx/base"
	"github.com/pedalworks/multifx/coord"
	"github.com/pedalworks/multifx/dsp"
	"github.com/pedalworks/multifx/fixed"
	"github.com/pedalworks/multifx/persist"
	"github.com/pedalworks/multifx/utils"
)

const refreshInterval = 100 * time.Millisecond

type Loop struct {
	ctx    *dsp.Context
	engine *dsp.Engine
	coord  *coord.Coordinator
	store  *persist.Store

	// Pot editing focus for the monitor.
	focusSlot int
	focusPot  int
}

func NewLoop(ctx *dsp.Context, engine *dsp.Engine, c *coord.Coordinator, store *persist.Store) *Loop {
	return &Loop{ctx: ctx, engine: engine, coord: c, store: store}
}

func (l *Loop) Context() *dsp.Context { return l.ctx }
func (l *Loop) Engine() *dsp.Engine   { return l.engine }

// Snapshot captures the current control-domain state for persistence.
func (l *Loop) Snapshot() persist.Snapshot {
	snap := persist.Snapshot{
		Pots:         l.ctx.Pots(),
		EnabledMask:  uint8(l.ctx.EnabledMask()),
		MasterVolume: l.ctx.MasterVolume(),
		Stereo:       l.ctx.Stereo(),
	}
	for slot := 0; slot < base.NumSlots; slot++ {
		snap.Slots[slot] = l.engine.Slot(slot)
	}
	return snap
}

// Apply pushes a snapshot into the live state, before the audio
// domain starts.
func (l *Loop) Apply(snap persist.Snapshot) {
	l.ctx.LoadPots(snap.Pots)
	for slot := 0; slot < base.NumSlots; slot++ {
		l.engine.SetSlot(slot, snap.Slots[slot])
	}
	l.ctx.SetEnabledMask(uint32(snap.EnabledMask))
	l.ctx.SetMasterVolume(snap.MasterVolume)
	l.ctx.SetStereo(snap.Stereo)
}

// runSupervisor watches for save requests and runs the park/commit
// handshake around each one. It runs beside, never inside, the audio
// path.
func (l *Loop) runSupervisor(stop <-chan struct{}) {
	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-stop:
			return
		case <-tick.C:
			if !l.coord.SaveRequested() {
				continue
			}
			snap := l.Snapshot()
			utils.TracePark("parking peripherals for save")
			// Errors surface on the next monitor refresh via the
			// store; a failed save never brings the chain down.
			err := l.coord.ExecuteSave(func() error {
				return l.store.Save(snap)
			})
			utils.TracePark("save done, peripherals resumed (err=%v)", err)
		}
	}
}

// Run drives the monitor until the user quits. Blocks.
func (l *Loop) Run() error {
	if err := initMonitor(); err != nil {
		return err
	}
	defer closeMonitor()

	stop := make(chan struct{})
	defer close(stop)
	go l.runSupervisor(stop)

	token := l.coord.Token()
	events := ui.PollEvents()
	tick := time.NewTicker(refreshInterval)
	defer tick.Stop()

	for {
		// Peripheral quiescence point: blocks while a save runs.
		token.Poll()

		select {
		case e := <-events:
			if !l.handleEvent(e) {
				return nil
			}
		case <-tick.C:
			updateScreen(l)
		}
	}
}

func (l *Loop) handleEvent(e ui.Event) bool {
	switch e.ID {
	case "q", "<C-c>", "<Escape>":
		return false
	case "1", "2", "3":
		slot := int(e.ID[0] - '1')
		on := l.ctx.EnabledMask()&(1<<uint(slot)) == 0
		l.ctx.SetSlotEnabled(slot, on)
	case "d":
		d := l.engine.Delay()
		d.SetMode((d.Mode() + 1) % 4)
	case "x":
		ch := l.engine.Chorus()
		ch.SetMode((ch.Mode() + 1) % base.NumChorusModes)
	case "c":
		_ = l.engine.Delay().ClearMemory()
	case "r":
		l.engine.ClearReverbMemory()
	case "w":
		l.coord.RequestSave()
	case "+", "=":
		l.nudgeVolume(volumeStep)
	case "-":
		l.nudgeVolume(-volumeStep)
	case "m":
		l.ctx.SetStereo(!l.ctx.Stereo())
	case "<Tab>":
		l.focusSlot = (l.focusSlot + 1) % base.NumSlots
	case "p":
		l.focusPot = (l.focusPot + 1) % base.NumFuncPots
	case "[":
		l.nudgePot(-potStep)
	case "]":
		l.nudgePot(potStep)
	case "<Resize>":
		resizeMonitor()
		updateScreen(l)
	}
	return true
}

const (
	potStep    = 64
	volumeStep = int64(fixed.Q16One) / 16
)

// nudgePot stages a change to the focused pot of the focused slot's
// effect. The audio domain reconfigures the module at the next block
// boundary; while a previous staging is still pending the change is
// dropped, which the next keypress repairs.
func (l *Loop) nudgePot(delta int) {
	id := l.engine.Slot(l.focusSlot)
	if !id.Valid() {
		return
	}
	pots := l.ctx.Pots()[id]
	v := int(pots[l.focusPot]) + delta
	if v < 0 {
		v = 0
	}
	if v > base.PotMax {
		v = base.PotMax
	}
	pots[l.focusPot] = uint16(v)
	l.ctx.StageParams(id, pots)
}

func (l *Loop) focusedPotValue() int {
	id := l.engine.Slot(l.focusSlot)
	if !id.Valid() {
		return 0
	}
	return l.ctx.Pot(id, l.focusPot)
}

// nudgeVolume moves the master volume by a signed Q16.16 step,
// clamped to [0, 4x] before converting back to the unsigned gain.
func (l *Loop) nudgeVolume(delta int64) {
	v := int64(l.ctx.MasterVolume()) + delta
	if v < 0 {
		v = 0
	}
	if max := 4 * int64(fixed.Q16One); v > max {
		v = max
	}
	l.ctx.SetMasterVolume(fixed.Q16(v))
}
