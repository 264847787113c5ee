package native

// Counting wraps an Allocator and counts successful acquisitions and
// effective releases. It is meant for tests and diagnostics; it is not safe
// for concurrent use, like the contexts it instruments.
type Counting struct {
	inner    Allocator
	acquired int
	released int
	failed   int
	bytes    int
	live     map[*Buffer]struct{}
}

// NewCounting wraps inner.
func NewCounting(inner Allocator) *Counting {
	return &Counting{inner: inner, live: make(map[*Buffer]struct{})}
}

// Acquire forwards to the wrapped allocator and records the outcome.
func (c *Counting) Acquire(size int) (*Buffer, error) {
	b, err := c.inner.Acquire(size)
	if err != nil {
		c.failed++
		return nil, err
	}
	c.acquired++
	c.bytes += size
	c.live[b] = struct{}{}
	return b, nil
}

// Release forwards to the wrapped allocator. Only the first release of a
// live buffer is counted.
func (c *Counting) Release(b *Buffer) {
	if _, ok := c.live[b]; ok {
		delete(c.live, b)
		c.released++
		c.bytes -= b.Len()
	}
	c.inner.Release(b)
}

// Acquired returns the number of successful acquisitions.
func (c *Counting) Acquired() int { return c.acquired }

// ReleasedCount returns the number of buffers handed back.
func (c *Counting) ReleasedCount() int { return c.released }

// Failed returns the number of failed acquisitions.
func (c *Counting) Failed() int { return c.failed }

// Outstanding returns the number of live buffers.
func (c *Counting) Outstanding() int { return len(c.live) }

// OutstandingBytes returns the byte total of live buffers.
func (c *Counting) OutstandingBytes() int { return c.bytes }

// Balanced reports whether every acquired buffer was released.
func (c *Counting) Balanced() bool { return c.acquired == c.released }
