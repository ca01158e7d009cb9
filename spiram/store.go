package spiram

import "github.com/pkg/errors"

// Bus is the burst-transfer surface the block store needs. *RAM
// satisfies it.
type Bus interface {
	ReadBurst(addr uint32, p []byte) error
	WriteBurst(addr uint32, p []byte) error
}

// BlockStore maps a logical circular sample buffer onto a region of
// the external RAM, transferring fixed-size blocks only. Writes
// accumulate in a write-behind block that is burst out when full;
// reads are served from a read-ahead block fetched when the read
// cursor crosses a block boundary. One store serves one channel.
//
// Bus faults never stall the caller: a failed write drops that block,
// a failed read serves the previous (stale) cache for the remainder
// of the block. Fault counters are exposed for diagnostics.
type BlockStore struct {
	bus          Bus
	base         uint32
	capacity     int
	blockSamples int
	blockCount   int

	writeBuf   []int32
	writePos   int
	writeBlock int

	readBuf   []int32
	readBlock int

	packed []byte

	ReadFaults  uint64
	WriteFaults uint64
}

// NewBlockStore lays a circular buffer of capacity samples over the
// RAM region starting at base. capacity must be a whole number of
// blocks.
func NewBlockStore(bus Bus, base uint32, capacity, blockSamples int) (*BlockStore, error) {
	if blockSamples <= 0 || capacity <= 0 || capacity%blockSamples != 0 {
		return nil, errors.Errorf("spiram: capacity %d not divisible into %d-sample blocks",
			capacity, blockSamples)
	}
	if int(base)+capacity*4 > AddrSpace {
		return nil, errors.Errorf("spiram: region @0x%06x+%d samples exceeds address space",
			base, capacity)
	}
	return &BlockStore{
		bus:          bus,
		base:         base,
		capacity:     capacity,
		blockSamples: blockSamples,
		blockCount:   capacity / blockSamples,
		writeBuf:     make([]int32, blockSamples),
		readBuf:      make([]int32, blockSamples),
		readBlock:    -1,
		packed:       make([]byte, blockSamples*4),
	}, nil
}

func (s *BlockStore) Capacity() int     { return s.capacity }
func (s *BlockStore) BlockSamples() int { return s.blockSamples }

func (s *BlockStore) blockAddr(block int) uint32 {
	return s.base + uint32(block*s.blockSamples*4)
}

// SeekWrite positions the write cursor at an absolute sample index in
// the logical buffer. Pending unflushed samples are discarded.
func (s *BlockStore) SeekWrite(index int) {
	index %= s.capacity
	s.writeBlock = index / s.blockSamples
	s.writePos = index % s.blockSamples
}

// Push appends one sample at the write cursor. When the write-behind
// block fills, it is burst-written and the cursor advances to the
// next block, wrapping at the region end.
func (s *BlockStore) Push(x int32) {
	s.writeBuf[s.writePos] = x
	s.writePos++
	if s.writePos < s.blockSamples {
		return
	}
	packSamples(s.writeBuf, s.packed)
	if err := s.bus.WriteBurst(s.blockAddr(s.writeBlock), s.packed); err != nil {
		s.WriteFaults++
	}
	s.writeBlock = (s.writeBlock + 1) % s.blockCount
	s.writePos = 0
}

// Sample returns the sample at an absolute index in the logical
// buffer. Indices inside the pending write-behind block are served
// from it directly, so a read cursor trailing the write cursor by
// less than one block never sees pre-flush device contents. Crossing
// into a new block otherwise triggers one burst read; a read fault
// leaves the previous cache in place for the rest of the block.
func (s *BlockStore) Sample(index int) int32 {
	index %= s.capacity
	block := index / s.blockSamples
	off := index % s.blockSamples
	if block == s.writeBlock && off < s.writePos {
		return s.writeBuf[off]
	}
	if block != s.readBlock {
		if err := s.bus.ReadBurst(s.blockAddr(block), s.packed); err != nil {
			s.ReadFaults++
		} else {
			unpackSamples(s.packed, s.readBuf)
		}
		s.readBlock = block
	}
	return s.readBuf[off]
}

// Clear zero-fills the whole region and resets both cursors and
// caches, so stale audio cannot resurface after the store is reused.
func (s *BlockStore) Clear() error {
	for i := range s.packed {
		s.packed[i] = 0
	}
	var firstErr error
	for b := 0; b < s.blockCount; b++ {
		if err := s.bus.WriteBurst(s.blockAddr(b), s.packed); err != nil && firstErr == nil {
			firstErr = errors.Wrap(err, "clear region")
		}
	}
	for i := range s.writeBuf {
		s.writeBuf[i] = 0
	}
	for i := range s.readBuf {
		s.readBuf[i] = 0
	}
	s.writePos = 0
	s.writeBlock = 0
	s.readBlock = -1
	return firstErr
}

// Samples are packed big-endian, 32 bits each, matching the burst
// layout the hardware expects.
func packSamples(src []int32, dst []byte) {
	for i, v := range src {
		dst[i*4+0] = byte(uint32(v) >> 24)
		dst[i*4+1] = byte(uint32(v) >> 16)
		dst[i*4+2] = byte(uint32(v) >> 8)
		dst[i*4+3] = byte(uint32(v))
	}
}

func unpackSamples(src []byte, dst []int32) {
	for i := range dst {
		dst[i] = int32(uint32(src[i*4+0])<<24 |
			uint32(src[i*4+1])<<16 |
			uint32(src[i*4+2])<<8 |
			uint32(src[i*4+3]))
	}
}
