package core

import "sync/atomic"

// EdgeCounter tallies rising edges of the encoder signal over one
// measurement window.
//
// The tally may be fed from the main loop (Sample), from a pin interrupt
// (OnEdge) or from a hardware counter (Add). The previous sampled level is
// owned by the main loop. No debounce is applied.
type EdgeCounter struct {
	count uint32
	last  bool
}

// Sample feeds one polled encoder level and reports whether it completed a
// rising edge. A level held high is counted once.
func (e *EdgeCounter) Sample(level bool) bool {
	rising := level && !e.last
	e.last = level
	if rising {
		atomic.AddUint32(&e.count, 1)
	}
	return rising
}

// OnEdge counts one edge. Safe to call from interrupt context.
func (e *EdgeCounter) OnEdge() {
	atomic.AddUint32(&e.count, 1)
}

// Add counts n edges reported by a hardware counter
func (e *EdgeCounter) Add(n uint32) {
	if n != 0 {
		atomic.AddUint32(&e.count, n)
	}
}

// Count returns the edges seen in the current window
func (e *EdgeCounter) Count() uint32 {
	return atomic.LoadUint32(&e.count)
}

// Take returns the tally and starts a new window
func (e *EdgeCounter) Take() uint32 {
	return atomic.SwapUint32(&e.count, 0)
}
