package sim

import (
	"errors"
	"time"

	"pidmotor/core"
)

// ErrPinNotConfigured is returned for operations on pins Init never set up
var ErrPinNotConfigured = errors.New("pin not configured")

const pwmMax = 255

type edgeHandler struct {
	edge    core.Edge
	handler core.EdgeHandler
}

// Board is a virtual controller wired to a Motor. It implements the GPIO,
// PWM and display drivers the control loop runs against, and doubles as
// a hardware pulse counter for the external encoder mode.
//
// Interrupt handlers run synchronously on the goroutine that calls
// Advance or Press.
type Board struct {
	motor *Motor
	cfg   core.Config

	outputs  map[core.GPIOPin]bool
	inputs   map[core.GPIOPin]bool
	handlers map[core.GPIOPin]edgeHandler
	pwm      map[core.PWMPin]bool
	duty     core.PWMValue

	encoder bool
	pulses  uint32 // Rising edges since the last TakePulses

	text   string
	prints int
}

// NewBoard wires a board for cfg's pin assignment to motor
func NewBoard(cfg core.Config, motor *Motor) *Board {
	return &Board{
		motor:    motor,
		cfg:      cfg,
		outputs:  make(map[core.GPIOPin]bool),
		inputs:   make(map[core.GPIOPin]bool),
		handlers: make(map[core.GPIOPin]edgeHandler),
		pwm:      make(map[core.PWMPin]bool),
		encoder:  motor.EncoderLevel(),
	}
}

// ConfigureOutput configures a pin as a digital output, initially low
func (b *Board) ConfigureOutput(pin core.GPIOPin) error {
	b.outputs[pin] = false
	return nil
}

// ConfigureInputPullUp configures an input; it idles high
func (b *Board) ConfigureInputPullUp(pin core.GPIOPin) error {
	b.inputs[pin] = true
	return nil
}

// SetPin drives an output pin
func (b *Board) SetPin(pin core.GPIOPin, value bool) error {
	if _, ok := b.outputs[pin]; !ok {
		return ErrPinNotConfigured
	}
	b.outputs[pin] = value
	return nil
}

// ReadPin samples a pin. The encoder pin follows the motor shaft.
func (b *Board) ReadPin(pin core.GPIOPin) bool {
	if pin == b.cfg.EncoderPin {
		return b.encoder
	}
	if v, ok := b.inputs[pin]; ok {
		return v
	}
	return b.outputs[pin]
}

// SetEdgeInterrupt registers handler for edge transitions on pin
func (b *Board) SetEdgeInterrupt(pin core.GPIOPin, edge core.Edge, handler core.EdgeHandler) error {
	if _, ok := b.inputs[pin]; !ok {
		return ErrPinNotConfigured
	}
	b.handlers[pin] = edgeHandler{edge: edge, handler: handler}
	return nil
}

// ConfigureHardwarePWM enables PWM on pin
func (b *Board) ConfigureHardwarePWM(pin core.PWMPin, cycleTicks uint32) (uint32, error) {
	b.pwm[pin] = true
	return cycleTicks, nil
}

// SetDutyCycle sets the bridge enable duty; values above full scale saturate
func (b *Board) SetDutyCycle(pin core.PWMPin, value core.PWMValue) error {
	if !b.pwm[pin] {
		return ErrPinNotConfigured
	}
	if pin == b.cfg.PWMPin {
		if value > pwmMax {
			value = pwmMax
		}
		b.duty = value
	}
	return nil
}

// GetMaxValue returns the full-scale duty value
func (b *Board) GetMaxValue() uint32 {
	return pwmMax
}

// Clear blanks the virtual display
func (b *Board) Clear() error {
	b.text = ""
	return nil
}

// Print appends s to the virtual display
func (b *Board) Print(s string) error {
	b.text += s
	b.prints++
	return nil
}

// Text returns what the display currently shows
func (b *Board) Text() string {
	return b.text
}

// Prints returns how many times the display was written
func (b *Board) Prints() int {
	return b.prints
}

// Duty returns the current PWM duty on the bridge enable
func (b *Board) Duty() core.PWMValue {
	return b.duty
}

// Drive returns the bridge output as a fraction of full scale. Both
// direction lines high or both low brakes the motor.
func (b *Board) Drive() float64 {
	fwd := b.outputs[b.cfg.ForwardPin]
	rev := b.outputs[b.cfg.ReversePin]
	level := float64(b.duty) / pwmMax
	switch {
	case fwd && !rev:
		return level
	case rev && !fwd:
		return -level
	}
	return 0
}

// Advance steps the motor by dt and raises an encoder interrupt on a
// rising edge.
func (b *Board) Advance(dt time.Duration) {
	b.motor.Step(b.Drive(), dt)

	level := b.motor.EncoderLevel()
	rising := level && !b.encoder
	falling := !level && b.encoder
	b.encoder = level

	if rising {
		b.pulses++
	}
	if rising || falling {
		b.fire(b.cfg.EncoderPin, rising)
	}
}

// Press pushes and releases a button wired to pin
func (b *Board) Press(pin core.GPIOPin) {
	b.setInput(pin, false)
	b.setInput(pin, true)
}

func (b *Board) setInput(pin core.GPIOPin, level bool) {
	prev, ok := b.inputs[pin]
	if !ok || prev == level {
		return
	}
	b.inputs[pin] = level
	b.fire(pin, level)
}

func (b *Board) fire(pin core.GPIOPin, rising bool) {
	h, ok := b.handlers[pin]
	if !ok {
		return
	}
	if (h.edge == core.EdgeRising) == rising {
		h.handler(pin)
	}
}

// TakePulses returns the rising encoder edges since the previous call
func (b *Board) TakePulses() uint32 {
	n := b.pulses
	b.pulses = 0
	return n
}
