// Package native manages engine-owned memory buffers.
//
// Every context in this module acquires its spec, state, init and work
// blocks through an Allocator and releases them on every exit path, either
// through a Scope during initialization or from Close. Buffers are never
// released by finalizers.
package native
