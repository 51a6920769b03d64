//go:build tinygo

package core

import "sync/atomic"

// systemTicks is written from the clock update path and read from
// interrupt handlers, so it is accessed atomically on hardware.
var systemTicks uint32

func getSystemTicks() uint32 {
	return atomic.LoadUint32(&systemTicks)
}

func setSystemTicks(ticks uint32) {
	atomic.StoreUint32(&systemTicks, ticks)
}
