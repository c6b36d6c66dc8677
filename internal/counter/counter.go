// Package counter provides a small atomic counter type for the kernel's
// access statistics. The simulator's single-threaded cooperative loop
// (see the kernel package) never actually contends on these counters, but
// the atomic form costs nothing and is what a parallel rewrite of the
// kernel loop (noted as a deliberate non-goal) would need unchanged.
package counter

import "sync/atomic"

// Counter is a monotone statistical counter.
type Counter struct {
	v atomic.Int64
}

// Inc increments the counter by one.
func (c *Counter) Inc() {
	c.v.Add(1)
}

// Load returns the current value.
func (c *Counter) Load() int64 {
	return c.v.Load()
}
