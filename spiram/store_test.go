package spiram

import "testing"

func newTestStore(t *testing.T, capacity, blockSamples int) (*BlockStore, *MemPort) {
	t.Helper()
	port := NewMemPort(1 << 20)
	store, err := NewBlockStore(NewRAM(port), 0, capacity, blockSamples)
	if err != nil {
		t.Fatal(err)
	}
	return store, port
}

func TestNewBlockStoreRejectsRaggedCapacity(t *testing.T) {
	_, err := NewBlockStore(NewRAM(NewMemPort(1<<20)), 0, 100, 32)
	if err == nil {
		t.Fatalf("capacity not divisible by block size must be rejected\n")
	}
}

// A sample pushed at index i must come back from Sample(i) once its
// block has been flushed, for any block granularity.
func TestStoreRoundTripAcrossBlockSizes(t *testing.T) {
	for _, bs := range []int{8, 32, 64, 256} {
		store, _ := newTestStore(t, 4096, bs)
		store.SeekWrite(0)
		for i := 0; i < 4096; i++ {
			store.Push(int32(i - 2048))
		}
		for i := 0; i < 4096; i++ {
			if got := store.Sample(i); got != int32(i-2048) {
				t.Fatalf("bs=%d: Sample(%d) = %d, want %d\n", bs, i, got, i-2048)
			}
		}
	}
}

func TestStoreWrapsAtCapacity(t *testing.T) {
	store, _ := newTestStore(t, 256, 32)
	store.SeekWrite(0)
	// Two full passes; the second overwrites the first.
	for i := 0; i < 512; i++ {
		store.Push(int32(i))
	}
	if got := store.Sample(0); got != 256 {
		t.Fatalf("wrapped sample 0 = %d, want 256\n", got)
	}
	if got := store.Sample(255); got != 511 {
		t.Fatalf("wrapped sample 255 = %d, want 511\n", got)
	}
}

func TestStoreSeekWriteMidBlock(t *testing.T) {
	store, _ := newTestStore(t, 256, 32)
	store.SeekWrite(40)
	for i := 0; i < 64; i++ {
		store.Push(int32(1000 + i))
	}
	if got := store.Sample(40); got != 1000 {
		t.Fatalf("Sample(40) = %d, want 1000\n", got)
	}
	if got := store.Sample(103); got != 1063 {
		t.Fatalf("Sample(103) = %d, want 1063\n", got)
	}
}

// A failed block fetch must serve the previous cache rather than
// block or zero out, and must retry on the next boundary crossing.
func TestStoreStaleCacheOnReadFault(t *testing.T) {
	store, port := newTestStore(t, 256, 32)
	store.SeekWrite(0)
	for i := 0; i < 256; i++ {
		store.Push(int32(i))
	}

	// Prime the cache with block 0.
	if got := store.Sample(0); got != 0 {
		t.Fatalf("priming read failed (got %d)\n", got)
	}

	// Crossing into block 1 fails: block 0's data is served stale.
	port.FailNext(1)
	if got := store.Sample(32); got != 0 {
		t.Fatalf("stale read: Sample(32) = %d, want block-0 value 0\n", got)
	}
	if store.ReadFaults != 1 {
		t.Fatalf("read fault not counted (got %d)\n", store.ReadFaults)
	}

	// Next crossing succeeds and the store recovers.
	if got := store.Sample(64); got != 64 {
		t.Fatalf("recovery read: Sample(64) = %d, want 64\n", got)
	}
}

func TestStoreWriteFaultDropsBlockAndContinues(t *testing.T) {
	store, port := newTestStore(t, 256, 32)
	store.SeekWrite(0)
	port.FailEvery(2)
	for i := 0; i < 256; i++ {
		store.Push(int32(i))
	}
	port.FailEvery(0)
	if store.WriteFaults == 0 {
		t.Fatalf("write faults not counted\n")
	}
	// The store must still be usable; indices did not desync.
	store.SeekWrite(0)
	for i := 0; i < 256; i++ {
		store.Push(int32(i))
	}
	if got := store.Sample(100); got != 100 {
		t.Fatalf("store desynced after write faults (got %d)\n", got)
	}
}

func TestStoreClear(t *testing.T) {
	store, _ := newTestStore(t, 256, 32)
	store.SeekWrite(0)
	for i := 0; i < 256; i++ {
		store.Push(int32(i + 1))
	}
	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 256; i += 31 {
		if got := store.Sample(i); got != 0 {
			t.Fatalf("Sample(%d) after Clear = %d, want 0\n", i, got)
		}
	}
}

func TestStoreRegionsIsolated(t *testing.T) {
	port := NewMemPort(1 << 20)
	ram := NewRAM(port)
	left, err := NewBlockStore(ram, 0, 256, 32)
	if err != nil {
		t.Fatal(err)
	}
	right, err := NewBlockStore(ram, 256*4, 256, 32)
	if err != nil {
		t.Fatal(err)
	}
	left.SeekWrite(0)
	right.SeekWrite(0)
	for i := 0; i < 256; i++ {
		left.Push(111)
		right.Push(222)
	}
	if got := left.Sample(10); got != 111 {
		t.Fatalf("left region corrupted (got %d)\n", got)
	}
	if got := right.Sample(10); got != 222 {
		t.Fatalf("right region corrupted (got %d)\n", got)
	}
}
