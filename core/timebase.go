package core

import "sync/atomic"

// TicksPerSecond returns how many overflows of a timer of the given width
// fit in one second, truncated. A 1 MHz clock with a /8 prescaler on an
// 8-bit timer overflows every 2.048 ms, giving 488.
func TicksPerSecond(clockHz, prescaler uint32, timerBits uint8) uint32 {
	perOverflow := uint64(prescaler) << timerBits
	if perOverflow == 0 {
		return 0
	}
	return uint32(uint64(clockHz) / perOverflow)
}

// OverflowPeriodUS returns the overflow period of the same timer in microseconds
func OverflowPeriodUS(clockHz, prescaler uint32, timerBits uint8) uint32 {
	if clockHz == 0 {
		return 0
	}
	return uint32((uint64(prescaler) << timerBits) * 1000000 / uint64(clockHz))
}

// TimeBase counts fixed-period ticks and marks the measurement cycle
// boundary once threshold ticks have accumulated. The truncation error of
// the threshold is not compensated.
type TimeBase struct {
	ticks     uint32
	threshold uint32

	// Emulated overflow interrupt for targets that drive ticks from the
	// firmware scheduler
	timer  Timer
	period uint32
}

// NewTimeBase creates a time base with the given boundary threshold
func NewTimeBase(threshold uint32) *TimeBase {
	return &TimeBase{threshold: threshold}
}

// OnTick is the timer overflow callback. Safe to call from interrupt context.
func (tb *TimeBase) OnTick() {
	atomic.AddUint32(&tb.ticks, 1)
}

// Ticks returns the ticks accumulated in the current window
func (tb *TimeBase) Ticks() uint32 {
	return atomic.LoadUint32(&tb.ticks)
}

// Threshold returns the tick count that marks a cycle boundary
func (tb *TimeBase) Threshold() uint32 {
	return tb.threshold
}

// Elapsed reports whether the current window has reached the boundary
func (tb *TimeBase) Elapsed() bool {
	return tb.Ticks() >= tb.threshold
}

// Reset starts a new window
func (tb *TimeBase) Reset() {
	atomic.StoreUint32(&tb.ticks, 0)
}

// Start schedules a periodic timer calling OnTick every periodTicks of
// system time
func (tb *TimeBase) Start(periodTicks uint32) {
	if periodTicks == 0 {
		return
	}
	tb.period = periodTicks
	tb.timer.Next = nil
	tb.timer.WakeTime = GetTime() + periodTicks
	tb.timer.Handler = tb.tickEvent
	ScheduleTimer(&tb.timer)
}

// Stop cancels the periodic timer
func (tb *TimeBase) Stop() {
	CancelTimer(&tb.timer)
}

func (tb *TimeBase) tickEvent(t *Timer) uint8 {
	tb.OnTick()
	t.WakeTime += tb.period
	return SF_RESCHEDULE
}
