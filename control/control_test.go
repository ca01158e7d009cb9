package control

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/pedalworks/multifx/base"
	"github.com/pedalworks/multifx/coord"
	"github.com/pedalworks/multifx/dsp"
	"github.com/pedalworks/multifx/fixed"
	"github.com/pedalworks/multifx/persist"
	"github.com/pedalworks/multifx/spiram"
)

func newTestLoop(t *testing.T) *Loop {
	t.Helper()
	ctx := dsp.NewContext(48000, 32)
	bus := spiram.NewRAM(spiram.NewMemPort(1 << 20))
	delay, err := dsp.NewDelayLine(bus, 4096, 32)
	if err != nil {
		t.Fatal(err)
	}
	engine := dsp.NewEngine(ctx, delay)
	store := persist.NewStore(filepath.Join(t.TempDir(), "settings.bin"))
	return NewLoop(ctx, engine, coord.New(), store)
}

func TestSnapshotApplyRoundTrip(t *testing.T) {
	l := newTestLoop(t)

	snap := persist.DefaultSnapshot()
	snap.Slots = [base.NumSlots]base.EffectID{
		base.EffectCompressor, base.EffectOverdrive, base.EffectCabSim,
	}
	snap.EnabledMask = 0x03
	snap.MasterVolume = fixed.Q16One / 4
	snap.Stereo = false
	snap.Pots[base.EffectOverdrive][0] = 777

	l.Apply(snap)
	if got := l.Snapshot(); got != snap {
		t.Fatalf("round trip mismatch:\ngot  %+v\nwant %+v\n", got, snap)
	}
}

// Stepping the volume below zero must clamp at silence, never wrap
// the unsigned gain up to the cap.
func TestNudgeVolumeClampsAtBothEnds(t *testing.T) {
	l := newTestLoop(t)

	l.ctx.SetMasterVolume(fixed.Q16One / 32)
	l.nudgeVolume(-volumeStep)
	if got := l.ctx.MasterVolume(); got != 0 {
		t.Fatalf("volume below a step down = %d, want 0\n", got)
	}
	l.nudgeVolume(-volumeStep)
	if got := l.ctx.MasterVolume(); got != 0 {
		t.Fatalf("volume at zero moved on step down (got %d)\n", got)
	}

	l.ctx.SetMasterVolume(4 * fixed.Q16One)
	l.nudgeVolume(volumeStep)
	if got := l.ctx.MasterVolume(); got != 4*fixed.Q16One {
		t.Fatalf("volume above the cap = %d, want %d\n", got, 4*fixed.Q16One)
	}
}

// A staged pot change must stay invisible to the audio domain until
// it claims the update at a block boundary.
func TestNudgePotStagesForAudioDomain(t *testing.T) {
	l := newTestLoop(t)
	l.Apply(persist.DefaultSnapshot())
	l.focusSlot = 1 // delay in the factory chain
	l.focusPot = 2

	id := l.engine.Slot(l.focusSlot)
	before := l.ctx.Pot(id, l.focusPot)
	l.nudgePot(potStep)

	if got := l.ctx.Pot(id, l.focusPot); got != before {
		t.Fatalf("pot changed before the audio domain ran: %d -> %d\n", before, got)
	}

	in := make([]int32, 2*32)
	out := make([]int32, 2*32)
	l.engine.Process(in, out)

	if got := l.ctx.Pot(id, l.focusPot); got != before+potStep {
		t.Fatalf("pot after block = %d, want %d\n", got, before+potStep)
	}
}

// A requested save must park the control loop, commit through the
// store and unwind, with the audio side untouched the whole time.
func TestSupervisorCommitsRequestedSave(t *testing.T) {
	l := newTestLoop(t)
	l.Apply(persist.DefaultSnapshot())
	l.ctx.LoadPots(func() [base.NumEffects][base.NumFuncPots]uint16 {
		pots := base.FactoryPots
		pots[base.EffectFuzz][1] = 999
		return pots
	}())

	stop := make(chan struct{})
	defer close(stop)
	go l.runSupervisor(stop)

	l.coord.RequestSave()

	token := l.coord.Token()
	deadline := time.Now().Add(5 * time.Second)
	for l.coord.SaveRequested() {
		token.Poll()
		if time.Now().After(deadline) {
			t.Fatalf("save never completed\n")
		}
		time.Sleep(time.Millisecond)
	}

	snap, stored := l.store.Load()
	if !stored {
		t.Fatalf("no record on disk after save\n")
	}
	if snap.Pots[base.EffectFuzz][1] != 999 {
		t.Fatalf("saved snapshot missing live pot change\n")
	}
}
