package engine

import (
	"errors"
	"fmt"
)

// ErrorKind is the category of a failed engine or context operation.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	// KindAllocation means the engine allocator ran out of memory.
	KindAllocation
	// KindSize covers invalid sizes and parameters, including
	// non-power-of-two lengths for fixed-size transforms.
	KindSize
	// KindContextMismatch means an execute call did not match the bound
	// parameters or the context was not ready.
	KindContextMismatch
	// KindEngine is an engine failure that has no dedicated category.
	// The raw status is kept in StatusError.
	KindEngine
	// KindNotSupported means the engine does not implement the requested mode.
	KindNotSupported
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindAllocation:
		return "allocation"
	case KindSize:
		return "size"
	case KindContextMismatch:
		return "context mismatch"
	case KindEngine:
		return "engine"
	case KindNotSupported:
		return "not supported"
	default:
		return "unknown"
	}
}

var (
	// ErrAllocation indicates the engine allocator could not satisfy a request.
	ErrAllocation = errors.New("engine: native allocation failed")
	// ErrUnsupportedSize indicates a size the engine cannot handle.
	ErrUnsupportedSize = errors.New("engine: unsupported size")
	// ErrContextMismatch indicates a call inconsistent with the bound context.
	ErrContextMismatch = errors.New("engine: context mismatch")
	// ErrEngine indicates an unclassified engine failure.
	ErrEngine = errors.New("engine: engine failure")
	// ErrNotSupported indicates an unsupported mode or flag.
	ErrNotSupported = errors.New("engine: not supported")
)

// Sentinel returns the sentinel error that represents k.
func (k ErrorKind) Sentinel() error {
	switch k {
	case KindAllocation:
		return ErrAllocation
	case KindSize:
		return ErrUnsupportedSize
	case KindContextMismatch:
		return ErrContextMismatch
	case KindNotSupported:
		return ErrNotSupported
	case KindEngine:
		return ErrEngine
	default:
		return nil
	}
}

// StatusError wraps a raw engine status together with the operation that
// produced it.
type StatusError struct {
	Op     string
	Status Status
	Kind   ErrorKind
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Status, int32(e.Status))
}

// Unwrap returns the kind sentinel so errors.Is works against ErrAllocation,
// ErrUnsupportedSize and friends.
func (e *StatusError) Unwrap() error {
	return e.Kind.Sentinel()
}

// Errorf builds a StatusError of kind k without a raw engine status.
// It is used by the context layer for failures it detects itself.
func Errorf(k ErrorKind, op, format string, args ...any) error {
	return fmt.Errorf("%s: %s: %w", op, fmt.Sprintf(format, args...), k.Sentinel())
}

// KindOf returns the category of err, or KindNone when err is nil.
// Errors that match no sentinel are reported as KindEngine.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Kind
	}
	switch {
	case errors.Is(err, ErrAllocation):
		return KindAllocation
	case errors.Is(err, ErrUnsupportedSize):
		return KindSize
	case errors.Is(err, ErrContextMismatch):
		return KindContextMismatch
	case errors.Is(err, ErrNotSupported):
		return KindNotSupported
	default:
		return KindEngine
	}
}

// StatusOf extracts the raw engine status from err. It returns StatusOK for a
// nil error and false when err carries no raw status.
func StatusOf(err error) (Status, bool) {
	if err == nil {
		return StatusOK, true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status, true
	}
	return 0, false
}
