package native

import "github.com/cwbudde/algo-ipp/dsp/engine"

// Buffer is a region of engine memory owned by exactly one context.
// A Buffer is released at most once; after release Bytes returns nil.
type Buffer struct {
	mem      []byte
	size     int
	id       uint64
	released bool
}

// Bytes returns the underlying memory, or nil once the buffer was released.
// A zero-size buffer returns an empty slice that must not be indexed.
func (b *Buffer) Bytes() []byte {
	if b == nil || b.released {
		return nil
	}
	return b.mem
}

// Len returns the size requested at acquisition time.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return b.size
}

// ID returns the allocator-assigned identifier, useful in logs.
func (b *Buffer) ID() uint64 {
	if b == nil {
		return 0
	}
	return b.id
}

// Released reports whether the buffer was handed back to its allocator.
// A nil buffer counts as released.
func (b *Buffer) Released() bool {
	return b == nil || b.released
}

// View reinterprets the buffer as a slice of T.
func View[T engine.Element](b *Buffer) []T {
	return engine.View[T](b.Bytes())
}
