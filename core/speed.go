package core

// RPM converts the pulses of a one second window into revolutions per
// minute, truncating. A zero pulsesPerRev yields 0 rather than trapping.
func RPM(pulses, pulsesPerRev uint32) uint32 {
	if pulsesPerRev == 0 {
		return 0
	}
	return pulses * 60 / pulsesPerRev
}
