package crawl

import (
	"sync"
)

// ConcLimiter runs at most cap(Pool) footprint computations at once and
// lets the crawler wait for those in flight.
type ConcLimiter struct {
	sync.WaitGroup
	Pool chan struct{}
}

func NewConcLimiter(cLevel int) *ConcLimiter {
	if cLevel < 1 {
		cLevel = 1
	}
	return &ConcLimiter{Pool: make(chan struct{}, cLevel)}
}

// Go blocks until a slot is free, then runs f in its own goroutine.
func (c *ConcLimiter) Go(f func()) {
	c.Add(1)
	c.Pool <- struct{}{}
	go func() {
		defer func() {
			<-c.Pool
			c.Done()
		}()
		f()
	}()
}
