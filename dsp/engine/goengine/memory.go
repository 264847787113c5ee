package goengine

import (
	"log/slog"
	"math/bits"
	"sync"
	"unsafe"
)

// Alignment is the byte alignment of every region returned by Malloc.
const Alignment = 64

const (
	minClassShift = 6  // 64 bytes
	maxClassShift = 26 // 64 MiB; larger requests bypass the pools
	numClasses    = maxClassShift - minClassShift + 1
)

type allocation struct {
	backing []byte
	off     int
	size    int
	class   int // -1 when not pooled
}

// arena hands out aligned regions and recycles their backing arrays through
// size-class pools. It tracks live regions so Free can ignore foreign or
// already freed memory.
type arena struct {
	mu     sync.Mutex
	live   map[uintptr]allocation
	inUse  int
	limit  int
	pools  [numClasses]sync.Pool
	logger *slog.Logger
}

func newArena(limit int, logger *slog.Logger) *arena {
	return &arena{live: make(map[uintptr]allocation), limit: limit, logger: logger}
}

func classOf(n int) int {
	if n <= 1<<minClassShift {
		return 0
	}
	shift := bits.Len(uint(n - 1))
	if shift > maxClassShift {
		return -1
	}
	return shift - minClassShift
}

func (a *arena) get(n int) ([]byte, int) {
	class := classOf(n)
	if class < 0 {
		return make([]byte, n), -1
	}
	if p, ok := a.pools[class].Get().(*[]byte); ok {
		return *p, class
	}
	return make([]byte, 1<<(class+minClassShift)), class
}

func (a *arena) malloc(size int) []byte {
	if size < 0 {
		return nil
	}
	if size == 0 {
		return []byte{}
	}

	a.mu.Lock()
	if a.limit > 0 && a.inUse+size > a.limit {
		inUse := a.inUse
		a.mu.Unlock()
		a.logger.Debug("engine memory limit reached",
			slog.Int("size", size), slog.Int("in_use", inUse), slog.Int("limit", a.limit))
		return nil
	}
	a.inUse += size
	a.mu.Unlock()

	backing, class := a.get(size + Alignment)
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(backing)))
	off := int((Alignment - addr%Alignment) % Alignment)
	mem := backing[off : off+size : off+size]
	clear(mem)

	key := uintptr(unsafe.Pointer(unsafe.SliceData(mem)))
	a.mu.Lock()
	a.live[key] = allocation{backing: backing, off: off, size: size, class: class}
	a.mu.Unlock()

	return mem
}

func (a *arena) free(mem []byte) {
	if cap(mem) == 0 {
		return
	}
	key := uintptr(unsafe.Pointer(unsafe.SliceData(mem)))

	a.mu.Lock()
	al, ok := a.live[key]
	if ok {
		delete(a.live, key)
		a.inUse -= al.size
	}
	a.mu.Unlock()
	if !ok {
		return
	}

	// Stale specs and states must fail their header check.
	clear(al.backing[al.off : al.off+min(al.size, headerSize)])

	if al.class >= 0 {
		backing := al.backing
		a.pools[al.class].Put(&backing)
	}
}

func (a *arena) stats() (live, bytes int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live), a.inUse
}
