// Package coord carries the two-domain handshake that lets the
// control side quiesce its peripheral traffic while a blocking
// persistence write runs. The audio path is never paused; only the
// control loop parks. The flags are plain polled booleans on purpose:
// the protocol encodes a timing contract (the audio domain must never
// block), not a lock.
package coord

import (
	"runtime"
	"sync/atomic"
)

// Coordinator holds the four cross-domain flags.
//
// Ownership is one-directional per flag: saveRequested, parkRequested
// and saveInProgress are written by the supervisor side only,
// parkAcknowledged by the control loop only. Each side polls the
// other's flags.
type Coordinator struct {
	saveRequested    atomic.Bool
	parkRequested    atomic.Bool
	parkAcknowledged atomic.Bool
	saveInProgress   atomic.Bool
}

func New() *Coordinator {
	return &Coordinator{}
}

// RequestSave marks that a persistence write should happen. The
// supervisor picks it up on its next iteration.
func (c *Coordinator) RequestSave() {
	c.saveRequested.Store(true)
}

func (c *Coordinator) SaveRequested() bool  { return c.saveRequested.Load() }
func (c *Coordinator) SaveInProgress() bool { return c.saveInProgress.Load() }

// ExecuteSave runs the full handshake around commit:
// saveInProgress goes up before parkRequested so the control loop can
// never observe a park without knowing a save caused it; the commit
// runs only after the control loop acknowledged the park; the park is
// lifted before the bookkeeping flags drop.
//
// The wait for acknowledgment has no timeout. The control loop
// reaches its poll point within one iteration, and every blocking
// call inside that iteration is itself bounded.
func (c *Coordinator) ExecuteSave(commit func() error) error {
	c.saveInProgress.Store(true)
	c.parkRequested.Store(true)

	for !c.parkAcknowledged.Load() {
		runtime.Gosched()
	}

	err := commit()

	c.parkRequested.Store(false)
	for c.parkAcknowledged.Load() {
		runtime.Gosched()
	}

	c.saveInProgress.Store(false)
	c.saveRequested.Store(false)
	return err
}

// Token is the control loop's side of the handshake. The loop calls
// Poll once per iteration, before touching any shared peripheral;
// Poll returns only when no park is pending, so peripheral access
// after it is always safe.
type Token struct {
	c *Coordinator
}

func (c *Coordinator) Token() *Token {
	return &Token{c: c}
}

// Poll acknowledges a pending park and spins until it is lifted.
func (t *Token) Poll() {
	if !t.c.parkRequested.Load() {
		return
	}
	t.c.parkAcknowledged.Store(true)
	for t.c.parkRequested.Load() {
		runtime.Gosched()
	}
	t.c.parkAcknowledged.Store(false)
}

// PollStep is the non-blocking variant for deterministic tests: it
// advances the handshake by at most one transition and reports
// whether the loop may currently touch peripherals.
func (t *Token) PollStep() bool {
	if t.c.parkRequested.Load() {
		t.c.parkAcknowledged.Store(true)
		return false
	}
	if t.c.parkAcknowledged.Load() {
		t.c.parkAcknowledged.Store(false)
	}
	return true
}
