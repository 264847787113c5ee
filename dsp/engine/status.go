package engine

import "fmt"

// Status is the signed result code returned by every engine entry point.
//
// Negative values are hard failures, zero is success and positive values are
// successful calls that carry an advisory (for example a degenerate input that
// turned the call into a no-op).
type Status int32

const (
	StatusNotSupportedMode  Status = -9999
	StatusResizeNoOperation Status = -201
	StatusLength            Status = -119
	StatusNumChannels       Status = -53
	StatusRelFreq           Status = -27
	StatusFIRLen            Status = -26
	StatusContextMatch      Status = -17
	StatusFFTFlag           Status = -16
	StatusFFTOrder          Status = -15
	StatusStep              Status = -14
	StatusMemAlloc          Status = -9
	StatusNullPtr           Status = -8
	StatusSize              Status = -6
	StatusBadArg            Status = -5
	StatusNoMem             Status = -4

	StatusOK Status = 0

	StatusNoOperation      Status = 1
	StatusMisalignedBuffer Status = 2
)

var statusNames = map[Status]string{
	StatusNotSupportedMode:  "not supported mode",
	StatusResizeNoOperation: "resize no operation",
	StatusLength:            "length error",
	StatusNumChannels:       "number of channels error",
	StatusRelFreq:           "relative frequency error",
	StatusFIRLen:            "FIR length error",
	StatusContextMatch:      "context mismatch",
	StatusFFTFlag:           "FFT flag error",
	StatusFFTOrder:          "FFT order error",
	StatusStep:              "step error",
	StatusMemAlloc:          "memory allocation error",
	StatusNullPtr:           "null pointer",
	StatusSize:              "size error",
	StatusBadArg:            "bad argument",
	StatusNoMem:             "out of memory",
	StatusOK:                "no error",
	StatusNoOperation:       "no operation",
	StatusMisalignedBuffer:  "misaligned buffer",
}

// String returns a short description of s.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	if s < 0 {
		return fmt.Sprintf("error %d", int32(s))
	}
	if s > 0 {
		return fmt.Sprintf("warning %d", int32(s))
	}
	return "no error"
}

// IsError reports whether s is a hard failure.
func (s Status) IsError() bool { return s < 0 }

// IsWarning reports whether s is a success that carries an advisory.
func (s Status) IsWarning() bool { return s > 0 }

// Kind maps s onto the small closed set of error categories.
// Non-negative statuses map to KindNone.
func (s Status) Kind() ErrorKind {
	switch {
	case s >= 0:
		return KindNone
	case s == StatusNoMem || s == StatusMemAlloc:
		return KindAllocation
	case s == StatusSize || s == StatusFFTOrder || s == StatusFIRLen ||
		s == StatusLength || s == StatusRelFreq || s == StatusStep ||
		s == StatusNumChannels || s == StatusBadArg:
		return KindSize
	case s == StatusContextMatch || s == StatusNullPtr:
		return KindContextMismatch
	case s == StatusNotSupportedMode || s == StatusFFTFlag:
		return KindNotSupported
	default:
		return KindEngine
	}
}

// Err converts s into an error for operation op. It returns nil for
// non-negative statuses.
func (s Status) Err(op string) error {
	if s >= 0 {
		return nil
	}
	return &StatusError{Op: op, Status: s, Kind: s.Kind()}
}
