// Package clock provides the tick source for the mining contracts. The tick
// is the block height of the chain.
package clock

import "sync/atomic"

// Chain represents the block height of the chain. It only moves forward.
type Chain struct {
	height atomic.Uint64
}

// New constructs a chain clock starting at the specified height.
func New(height uint64) *Chain {
	var c Chain
	c.height.Store(height)
	return &c
}

// CurrentTick returns the current block height.
func (c *Chain) CurrentTick() uint64 {
	return c.height.Load()
}

// Advance mines n blocks and returns the new height.
func (c *Chain) Advance(n uint64) uint64 {
	return c.height.Add(n)
}

// MineTo moves the height forward to the specified block. A height that is
// not ahead of the current one is ignored. The resulting height is returned.
func (c *Chain) MineTo(height uint64) uint64 {
	for {
		current := c.height.Load()
		if height <= current {
			return current
		}
		if c.height.CompareAndSwap(current, height) {
			return height
		}
	}
}
