package spiram

import "github.com/pkg/errors"

// MemPort is an in-memory serial RAM behind the Port interface. It
// decodes the same command framing the hardware device expects, so
// everything above it is tested against the real wire layout. Tests
// use the failure knobs to simulate a bus that misses its window.
type MemPort struct {
	mem []byte

	// Fail the next n transactions.
	failNext int
	// Fail every nth transaction (0 disables).
	failEvery int
	count     int

	Transactions int
}

// ErrBusTimeout is what a failed transaction reports.
var ErrBusTimeout = errors.New("spiram: bus transaction timed out")

func NewMemPort(size int) *MemPort {
	if size <= 0 || size > AddrSpace {
		size = AddrSpace
	}
	return &MemPort{mem: make([]byte, size)}
}

// FailNext makes the next n transactions fail without transferring.
func (m *MemPort) FailNext(n int) { m.failNext = n }

// FailEvery makes every nth transaction fail. 0 disables.
func (m *MemPort) FailEvery(n int) { m.failEvery = n; m.count = 0 }

func (m *MemPort) Transaction(out []byte, in []byte) error {
	m.Transactions++
	m.count++
	if m.failNext > 0 {
		m.failNext--
		return ErrBusTimeout
	}
	if m.failEvery > 0 && m.count%m.failEvery == 0 {
		return ErrBusTimeout
	}

	if len(out) < 4 {
		return errors.Errorf("spiram: short frame (%d bytes)", len(out))
	}
	cmd := out[0]
	addr := int(out[1])<<16 | int(out[2])<<8 | int(out[3])
	payload := out[4:]

	switch cmd {
	case cmdWrite:
		if addr+len(payload) > len(m.mem) {
			return errors.Errorf("spiram: write past end @0x%06x+%d", addr, len(payload))
		}
		copy(m.mem[addr:], payload)
	case cmdRead:
		if addr+len(in) > len(m.mem) {
			return errors.Errorf("spiram: read past end @0x%06x+%d", addr, len(in))
		}
		copy(in, m.mem[addr:])
	default:
		return errors.Errorf("spiram: unknown command 0x%02x", cmd)
	}
	return nil
}
