// Package persist stores the control-domain settings as a journaled
// ring of fixed-size record slots inside one settings file. Each save
// appends to the next slot with an increasing sequence number; the
// ring wraps by rewriting the whole area, the file analogue of a
// sector erase. Load picks the highest-sequence record with a valid
// checksum and falls back to built-in defaults rather than refusing
// to start.
package persist

import (
	"encoding/binary"
	"os"

	"github.com/pkg/errors"

	"github.com/pedalworks/multifx/base"
	"github.com/pedalworks/multifx/fixed"
)

const (
	slotSize = 256
	numSlots = 16
	areaSize = slotSize * numSlots

	// seq(4) + crc(4) + pots + slots(3) + mask(1) + volume(4) + stereo(1)
	recordSize = 8 + int(base.NumEffects)*base.NumFuncPots*2 + base.NumSlots + 1 + 4 + 1

	crcOffset = 4
	noEffect  = 0xFF
)

// Snapshot is everything the control domain persists.
type Snapshot struct {
	Pots         [base.NumEffects][base.NumFuncPots]uint16
	Slots        [base.NumSlots]base.EffectID
	EnabledMask  uint8
	MasterVolume fixed.Q16
	Stereo       bool
}

// DefaultSnapshot is the factory state: preamp, delay and reverb
// loaded, only the reverb slot enabled.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Pots: base.FactoryPots,
		Slots: [base.NumSlots]base.EffectID{
			base.EffectPreamp, base.EffectDelay, base.EffectReverb,
		},
		EnabledMask:  0x04,
		MasterVolume: fixed.Q16One,
		Stereo:       true,
	}
}

// Store journals snapshots into one file. Not safe for concurrent
// use; the control domain owns it.
type Store struct {
	path      string
	lastSaved []byte
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the most recent valid snapshot, or the defaults when
// the file is missing, truncated or corrupt. The bool reports whether
// a stored record was used.
func (s *Store) Load() (Snapshot, bool) {
	area, err := os.ReadFile(s.path)
	if err != nil || len(area) < slotSize {
		return DefaultSnapshot(), false
	}

	best := findLatest(area)
	if best < 0 {
		return DefaultSnapshot(), false
	}
	rec := area[best*slotSize : best*slotSize+recordSize]
	s.lastSaved = append(s.lastSaved[:0], rec...)
	return unmarshalRecord(rec), true
}

// Save journals a snapshot. A snapshot identical to the last one
// saved (or loaded) is skipped.
func (s *Store) Save(snap Snapshot) error {
	area, err := os.ReadFile(s.path)
	if err != nil || len(area) != areaSize {
		area = freshArea()
	}

	var maxSeq uint32
	last := findLatest(area)
	if last >= 0 {
		maxSeq = binary.LittleEndian.Uint32(area[last*slotSize:])
	}

	rec := marshalRecord(snap, maxSeq+1)
	if s.lastSaved != nil && sameRecord(rec, s.lastSaved) {
		return nil
	}

	next := 0
	if last >= 0 {
		next = (last + 1) % numSlots
	}
	if next == 0 {
		// Ring wrapped: start over on a blank area.
		area = freshArea()
	}
	copy(area[next*slotSize:], rec)

	if err := os.WriteFile(s.path, area, 0644); err != nil {
		return errors.Wrapf(err, "writing settings file %q", s.path)
	}
	s.lastSaved = append(s.lastSaved[:0], rec...)
	return nil
}

func freshArea() []byte {
	area := make([]byte, areaSize)
	for i := range area {
		area[i] = 0xFF
	}
	return area
}

// findLatest returns the slot index holding the valid record with the
// highest sequence number, ties going to the later slot, or -1.
func findLatest(area []byte) int {
	best := -1
	var maxSeq uint32
	for i := 0; i+slotSize <= len(area); i += slotSize {
		rec := area[i : i+recordSize]
		if binary.LittleEndian.Uint32(rec[crcOffset:]) != recordSum(rec) {
			continue
		}
		seq := binary.LittleEndian.Uint32(rec)
		if seq >= maxSeq {
			maxSeq = seq
			best = i / slotSize
		}
	}
	return best
}

// recordSum is a plain byte sum over the record, skipping the
// checksum's own bytes.
func recordSum(rec []byte) uint32 {
	var sum uint32
	for i, b := range rec {
		if i >= crcOffset && i < crcOffset+4 {
			continue
		}
		sum += uint32(b)
	}
	return sum
}

func sameRecord(a, b []byte) bool {
	// Sequence numbers differ between saves; compare payload only.
	if len(a) != len(b) {
		return false
	}
	for i := 8; i < len(a); i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func marshalRecord(snap Snapshot, seq uint32) []byte {
	rec := make([]byte, recordSize)
	binary.LittleEndian.PutUint32(rec, seq)

	off := 8
	for e := 0; e < int(base.NumEffects); e++ {
		for p := 0; p < base.NumFuncPots; p++ {
			binary.LittleEndian.PutUint16(rec[off:], snap.Pots[e][p])
			off += 2
		}
	}
	for i := 0; i < base.NumSlots; i++ {
		id := snap.Slots[i]
		if !id.Valid() {
			rec[off] = noEffect
		} else {
			rec[off] = byte(id)
		}
		off++
	}
	rec[off] = snap.EnabledMask
	off++
	binary.LittleEndian.PutUint32(rec[off:], uint32(snap.MasterVolume))
	off += 4
	if snap.Stereo {
		rec[off] = 1
	}

	binary.LittleEndian.PutUint32(rec[crcOffset:], recordSum(rec))
	return rec
}

func unmarshalRecord(rec []byte) Snapshot {
	var snap Snapshot
	off := 8
	for e := 0; e < int(base.NumEffects); e++ {
		for p := 0; p < base.NumFuncPots; p++ {
			snap.Pots[e][p] = binary.LittleEndian.Uint16(rec[off:])
			off += 2
		}
	}
	for i := 0; i < base.NumSlots; i++ {
		if rec[off] == noEffect {
			snap.Slots[i] = base.EffectNone
		} else {
			id := base.EffectID(rec[off])
			if !id.Valid() {
				id = base.EffectNone
			}
			snap.Slots[i] = id
		}
		off++
	}
	snap.EnabledMask = rec[off]
	off++
	snap.MasterVolume = fixed.Q16(binary.LittleEndian.Uint32(rec[off:]))
	off += 4
	snap.Stereo = rec[off] == 1
	return snap
}
