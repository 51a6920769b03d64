package core

import "sync/atomic"

// Setpoint is the operator-adjusted target, nudged by the up/down buttons.
// Only the button handlers write it; the main loop reads it once per cycle.
type Setpoint struct {
	value int32
	step  int32
	limit int32
}

// NewSetpoint creates a setpoint at zero adjusting by step within ±limit
func NewSetpoint(step, limit int) *Setpoint {
	return &Setpoint{step: int32(step), limit: int32(limit)}
}

// Value returns the current setpoint
func (s *Setpoint) Value() int {
	return int(atomic.LoadInt32(&s.value))
}

// Increase raises the setpoint by one step. Safe to call from interrupt context.
func (s *Setpoint) Increase() int {
	return s.adjust(s.step)
}

// Decrease lowers the setpoint by one step. Safe to call from interrupt context.
func (s *Setpoint) Decrease() int {
	return s.adjust(-s.step)
}

func (s *Setpoint) adjust(delta int32) int {
	for {
		old := atomic.LoadInt32(&s.value)
		next := old + delta
		if next > s.limit {
			next = s.limit
		} else if next < -s.limit {
			next = -s.limit
		}
		if atomic.CompareAndSwapInt32(&s.value, old, next) {
			return int(next)
		}
	}
}
