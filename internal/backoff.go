package internal

import (
	"math/rand/v2"
	"time"
)

// ExponentialCounter produces doubling delays capped at a maximum, each
// jittered by up to ±1/32 of the current base.
type ExponentialCounter struct {
	base float64
	max  float64
	rand func() float64
}

// NewExponentialCounter creates a counter starting at one second.
func NewExponentialCounter(maxSeconds float64) *ExponentialCounter {
	return &ExponentialCounter{base: 1, max: maxSeconds, rand: rand.Float64}
}

// Next returns the jittered delay for the current base and doubles the base.
func (c *ExponentialCounter) Next() time.Duration {
	maxJitter := c.base / 16
	value := c.base + c.rand()*maxJitter - maxJitter/2
	c.base = min(c.base*2, c.max)
	return time.Duration(value * float64(time.Second))
}

// Reset returns the counter to its initial one second base.
func (c *ExponentialCounter) Reset() {
	c.base = 1
}
