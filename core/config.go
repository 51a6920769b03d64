package core

import (
	"errors"
	"math"
)

// EncoderMode selects how encoder edges reach the EdgeCounter
type EncoderMode uint8

const (
	// EncoderPoll samples the encoder level once per main-loop iteration
	EncoderPoll EncoderMode = iota
	// EncoderInterrupt counts rising edges from a pin interrupt
	EncoderInterrupt
	// EncoderExternal takes counts from a registered PulseSource
	EncoderExternal
)

var encoderModeNames = [...]string{"poll", "interrupt", "external"}

func (m EncoderMode) String() string {
	if int(m) < len(encoderModeNames) {
		return encoderModeNames[m]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler
func (m EncoderMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *EncoderMode) UnmarshalText(text []byte) error {
	for i, name := range encoderModeNames {
		if string(text) == name {
			*m = EncoderMode(i)
			return nil
		}
	}
	return ErrEncoderMode
}

var (
	ErrPulsesPerRev  = errors.New("pulses per revolution must be positive")
	ErrThreshold     = errors.New("cycle threshold must be positive")
	ErrSetpointStep  = errors.New("setpoint step must be positive and fit in int32")
	ErrSetpointLimit = errors.New("setpoint limit must be positive and fit in int32")
	ErrEncoderMode   = errors.New("unknown encoder mode")
)

// Config describes the speed loop and its wiring
type Config struct {
	PulsesPerRev  uint32 // Encoder slots per shaft revolution
	Threshold     uint32 // Ticks per measurement cycle
	TickPeriodUS  uint32 // Scheduler-driven tick period; 0 when ticks come from a hardware interrupt
	SetpointStep  int    // Button adjustment step
	SetpointLimit int    // Setpoint range is [-limit, limit]
	Gains         Gains

	EncoderMode EncoderMode
	EncoderPin  GPIOPin
	UpPin       GPIOPin // Setpoint increase button
	DownPin     GPIOPin // Setpoint decrease button
	ForwardPin  GPIOPin
	ReversePin  GPIOPin
	PWMPin      PWMPin
	PWMCycleUS  uint32 // PWM period

	Banner string // Shown on the display before the first cycle
}

// Timer0 of the reference board: 1 MHz clock, /8 prescaler, 8-bit counter
const (
	refClockHz   = 1000000
	refPrescaler = 8
	refTimerBits = 8
)

// DefaultConfig returns the reference board configuration
func DefaultConfig() Config {
	return Config{
		PulsesPerRev:  20,
		Threshold:     TicksPerSecond(refClockHz, refPrescaler, refTimerBits),
		TickPeriodUS:  OverflowPeriodUS(refClockHz, refPrescaler, refTimerBits),
		SetpointStep:  25,
		SetpointLimit: 255,
		Gains:         DefaultGains,
		EncoderMode:   EncoderPoll,
		EncoderPin:    2,
		UpPin:         3,
		DownPin:       4,
		ForwardPin:    6,
		ReversePin:    7,
		PWMPin:        8,
		PWMCycleUS:    1000,
	}
}

// Validate checks the values the control path divides or steps by
func (c Config) Validate() error {
	if c.PulsesPerRev == 0 {
		return ErrPulsesPerRev
	}
	if c.Threshold == 0 {
		return ErrThreshold
	}
	if c.SetpointStep <= 0 || int64(c.SetpointStep) > math.MaxInt32 {
		return ErrSetpointStep
	}
	if c.SetpointLimit <= 0 || int64(c.SetpointLimit) > math.MaxInt32 {
		return ErrSetpointLimit
	}
	if c.EncoderMode > EncoderExternal {
		return ErrEncoderMode
	}
	return nil
}
