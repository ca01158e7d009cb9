package fixed

import (
	"math"
	"testing"
)

const potMax = 4095

func TestMapPotQ16Endpoints(t *testing.T) {
	if got := MapPotQ16(0, potMax, 0, Q16One); got != 0 {
		t.Fatalf("pot=0 != min (got %d)\n", got)
	}
	if got := MapPotQ16(potMax, potMax, 0, Q16One); got != Q16One {
		t.Fatalf("pot=max != max (got %d)\n", got)
	}
	if got := MapPotQ16(potMax/2, potMax, 0, Q16One); got < Q16One/2-32 || got > Q16One/2+32 {
		t.Fatalf("pot midpoint far from 0.5 (got %d)\n", got)
	}
}

func TestMapPotClampsOutOfRange(t *testing.T) {
	if got := MapPotInt(-100, potMax, 10, 20); got != 10 {
		t.Fatalf("negative pot not clamped (got %d)\n", got)
	}
	if got := MapPotInt(potMax+500, potMax, 10, 20); got != 20 {
		t.Fatalf("oversize pot not clamped (got %d)\n", got)
	}
}

func TestMapPotEven(t *testing.T) {
	for p := 0; p <= potMax; p += 17 {
		v := MapPotEven(p, potMax, 2, 16)
		if v%2 != 0 || v < 2 || v > 16 {
			t.Fatalf("MapPotEven(%d) gave %d\n", p, v)
		}
	}
}

func TestMapPotLog(t *testing.T) {
	lo := MapPotLog(0, potMax, 100, 8000)
	hi := MapPotLog(potMax, potMax, 100, 8000)
	if math.Abs(lo-100) > 1e-9 || math.Abs(hi-8000) > 1e-6 {
		t.Fatalf("log taper endpoints off: %f, %f\n", lo, hi)
	}
	// Geometric midpoint, not arithmetic.
	mid := MapPotLog(potMax/2, potMax, 100, 8000)
	if mid < 850 || mid > 950 {
		t.Fatalf("log taper midpoint not geometric (got %f)\n", mid)
	}
}
