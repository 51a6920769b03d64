package sim

import (
	"math"
	"time"
)

// Motor is a first-order DC motor driven through an H-bridge. Speed
// approaches Gain*drive with time constant Tau. The shaft carries an
// optical encoder disk with PulsesPerRev slots.
type Motor struct {
	Gain         float64       // Free-running speed at full drive, in RPM
	Tau          time.Duration // Mechanical time constant
	PulsesPerRev uint32

	rpm   float64 // Signed, positive is forward
	angle float64 // Revolutions
}

// NewMotor creates a motor at rest
func NewMotor(gain float64, tau time.Duration, pulsesPerRev uint32) *Motor {
	return &Motor{Gain: gain, Tau: tau, PulsesPerRev: pulsesPerRev}
}

// Step advances the motor by dt with drive in [-1, 1]
func (m *Motor) Step(drive float64, dt time.Duration) {
	if drive > 1 {
		drive = 1
	} else if drive < -1 {
		drive = -1
	}

	k := 1.0
	if m.Tau > 0 {
		k = math.Min(dt.Seconds()/m.Tau.Seconds(), 1)
	}
	m.rpm += (m.Gain*drive - m.rpm) * k
	m.angle += m.rpm / 60 * dt.Seconds()
}

// RPM returns the signed shaft speed
func (m *Motor) RPM() float64 {
	return m.rpm
}

// Revolutions returns the signed shaft position
func (m *Motor) Revolutions() float64 {
	return m.angle
}

// EncoderLevel is high for the first half of every slot
func (m *Motor) EncoderLevel() bool {
	pos := m.angle * float64(m.PulsesPerRev)
	return pos-math.Floor(pos) < 0.5
}
