// Package engine defines the contract between the context layer and the
// computation engine that performs the actual signal and image processing.
//
// Every stateful operation follows the same two-phase protocol:
//
//  1. a GetSize call reports how many bytes of engine memory are needed,
//  2. the caller allocates that memory through [Memory.Malloc],
//  3. an Init call binds the memory to a parameter signature,
//  4. execute calls consume the bound memory,
//  5. the caller returns the memory through [Memory.Free].
//
// Engine calls report a [Status]. Negative values are failures and are turned
// into errors with [Status.Err]; the resulting [StatusError] unwraps to one of
// a small set of sentinels ([ErrAllocation], [ErrUnsupportedSize],
// [ErrContextMismatch], [ErrEngine], [ErrNotSupported]) so callers never have
// to match individual status codes.
//
// The pure Go reference implementation lives in package goengine.
package engine
