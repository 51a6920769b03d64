package core

// DefaultTimerFreq is the rate of the RP2040 microsecond timer
const DefaultTimerFreq = 1000000

var (
	timerFreq uint32 = DefaultTimerFreq
	bootTime  uint32 // Time at boot for uptime calculation
)

// SetTimerFreq sets the rate system time advances at, in ticks per second
func SetTimerFreq(hz uint32) {
	if hz != 0 {
		timerFreq = hz
	}
}

// TimerFreq returns the system timer rate in ticks per second
func TimerFreq() uint32 {
	return timerFreq
}

// GetTime returns the current system time in timer ticks
func GetTime() uint32 {
	return getSystemTicks()
}

// SetTime sets the current system time (for testing/hardware integration)
func SetTime(ticks uint32) {
	setSystemTicks(ticks)
}

// GetUptime returns timer ticks since TimerInit
func GetUptime() uint32 {
	return GetTime() - bootTime
}

// TimerFromUS converts microseconds to timer ticks
func TimerFromUS(us uint32) uint32 {
	return uint32(uint64(us) * uint64(timerFreq) / 1000000)
}

// TimerToUS converts timer ticks to microseconds
func TimerToUS(ticks uint32) uint32 {
	return uint32(uint64(ticks) * 1000000 / uint64(timerFreq))
}

// TimerInit initializes the system timer
func TimerInit() {
	bootTime = GetTime()
}

// ProcessTimers runs every scheduled timer that is due
func ProcessTimers() {
	currentTime = GetTime()
	TimerDispatch()
}
