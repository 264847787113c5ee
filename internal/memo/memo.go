// Package memo remembers the outcome of the last computation for a
// comparable parameter signature.
package memo

// Cache holds the signature of the last computation and whether it
// succeeded. The zero value is empty and ready to use. A Cache is not safe
// for concurrent use.
type Cache[S comparable] struct {
	sig   S
	valid bool
	err   error
	force bool
}

// Do runs compute unless the previous call had an equal signature, succeeded
// and no Force is pending. It reports whether compute ran.
func (c *Cache[S]) Do(sig S, compute func() error) (bool, error) {
	if c.valid && c.err == nil && !c.force && c.sig == sig {
		return false, nil
	}
	err := compute()
	c.sig = sig
	c.valid = true
	c.err = err
	c.force = false
	return true, err
}

// Force makes the next Do recompute regardless of its signature.
func (c *Cache[S]) Force() { c.force = true }

// Invalidate forgets the last computation.
func (c *Cache[S]) Invalidate() {
	var zero S
	c.sig = zero
	c.valid = false
	c.err = nil
	c.force = false
}

// Last returns the signature and error of the last computation. ok is false
// when nothing was computed since construction or Invalidate.
func (c *Cache[S]) Last() (sig S, err error, ok bool) {
	return c.sig, c.err, c.valid
}
