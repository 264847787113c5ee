package native

// Scope tracks buffers acquired during a multi-step initialization. Unless
// Keep is called, Close releases every buffer the scope acquired, so a
// deferred Close covers all early returns.
//
//	s := native.NewScope(alloc)
//	defer s.Close()
//	spec, err := s.Acquire(n)
//	...
//	s.Keep()
type Scope struct {
	alloc Allocator
	bufs  []*Buffer
	kept  bool
}

// NewScope returns an empty scope drawing from alloc.
func NewScope(alloc Allocator) *Scope {
	return &Scope{alloc: alloc}
}

// Acquire acquires a buffer owned by the scope until Keep is called.
func (s *Scope) Acquire(size int) (*Buffer, error) {
	b, err := s.alloc.Acquire(size)
	if err != nil {
		return nil, err
	}
	s.bufs = append(s.bufs, b)
	return b, nil
}

// Release releases b immediately and drops it from the scope.
func (s *Scope) Release(b *Buffer) {
	for i, held := range s.bufs {
		if held == b {
			s.bufs = append(s.bufs[:i], s.bufs[i+1:]...)
			break
		}
	}
	s.alloc.Release(b)
}

// Keep transfers ownership of the acquired buffers to the caller.
func (s *Scope) Keep() {
	s.kept = true
}

// Close releases all buffers unless Keep was called. It is idempotent.
func (s *Scope) Close() {
	if s.kept {
		return
	}
	for i := len(s.bufs) - 1; i >= 0; i-- {
		s.alloc.Release(s.bufs[i])
	}
	s.bufs = nil
}

// ReleaseAll releases every non-nil buffer pointed to by bufs and clears the
// pointers. It is the teardown helper used by context Close methods.
func ReleaseAll(alloc Allocator, bufs ...**Buffer) {
	for _, p := range bufs {
		if p == nil || *p == nil {
			continue
		}
		alloc.Release(*p)
		*p = nil
	}
}
