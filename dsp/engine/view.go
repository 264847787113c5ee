package engine

import "unsafe"

// Element is a fixed-size value type that may live in engine memory.
type Element interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 |
		~float32 | ~float64 | ~complex64 | ~complex128
}

// View reinterprets mem as a slice of T. Trailing bytes that do not fill a
// whole element are ignored. mem must be aligned for T, which engine
// allocations always are.
func View[T Element](mem []byte) []T {
	var zero T
	n := len(mem) / int(unsafe.Sizeof(zero))
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(mem))), n)
}

// SizeOf returns the byte size of n elements of T.
func SizeOf[T Element](n int) int {
	var zero T
	return n * int(unsafe.Sizeof(zero))
}
