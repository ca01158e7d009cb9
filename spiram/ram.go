// Package spiram models the external serial delay memory: the
// command framing of the RAM device and a paging block store that
// maps a logical circular sample buffer onto burst transfers.
package spiram

import (
	"bytes"

	"github.com/pkg/errors"
)

// Serial RAM command set.
const (
	cmdRead  = 0x03
	cmdWrite = 0x02

	// Addresses are 24-bit.
	AddrSpace = 1 << 24
)

// Port is one chip-select transaction on the serial bus: assert,
// shift out the command/address/data bytes, shift in the reply,
// deassert. A Port implementation may fail a transaction, in which
// case nothing is transferred.
type Port interface {
	Transaction(out []byte, in []byte) error
}

// RAM frames read/write bursts for a serial RAM wired to a Port.
// Not safe for concurrent use; the audio domain owns it exclusively.
type RAM struct {
	port    Port
	scratch []byte
}

func NewRAM(port Port) *RAM {
	return &RAM{port: port}
}

func header(cmd byte, addr uint32) [4]byte {
	return [4]byte{
		cmd,
		byte(addr >> 16),
		byte(addr >> 8),
		byte(addr),
	}
}

// ReadBurst fills p from the device starting at addr.
func (r *RAM) ReadBurst(addr uint32, p []byte) error {
	hdr := header(cmdRead, addr)
	if err := r.port.Transaction(hdr[:], p); err != nil {
		return errors.Wrapf(err, "read burst @0x%06x len %d", addr, len(p))
	}
	return nil
}

// WriteBurst writes p to the device starting at addr.
func (r *RAM) WriteBurst(addr uint32, p []byte) error {
	hdr := header(cmdWrite, addr)
	// Reuse the scratch buffer so steady-state writes do not allocate.
	if cap(r.scratch) < len(hdr)+len(p) {
		r.scratch = make([]byte, 0, len(hdr)+len(p))
	}
	out := append(r.scratch[:0], hdr[:]...)
	out = append(out, p...)
	if err := r.port.Transaction(out, nil); err != nil {
		return errors.Wrapf(err, "write burst @0x%06x len %d", addr, len(p))
	}
	return nil
}

// Probe writes a test pattern to address 0 and reads it back, to
// verify the device answers before audio starts.
func (r *RAM) Probe() error {
	pattern := []byte{0xAA, 0x55, 0xCC, 0x33}
	if err := r.WriteBurst(0, pattern); err != nil {
		return errors.Wrap(err, "probe write")
	}
	got := make([]byte, len(pattern))
	if err := r.ReadBurst(0, got); err != nil {
		return errors.Wrap(err, "probe read")
	}
	if !bytes.Equal(pattern, got) {
		return errors.Errorf("probe mismatch: wrote %x, read %x", pattern, got)
	}
	return nil
}
