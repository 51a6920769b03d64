//go:build rp2040

package main

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// buildCounterProgram creates a rising-edge counter. X counts down from
// 0xffffffff so ~X is the running total, pushed after every edge.
// Jump targets are relative to the load offset.
func buildCounterProgram() []uint16 {
	return []uint16{
		// .wrap_target
		rp2pio.EncodeWaitPin(false, 0),                          // 0: wait 0 pin 0
		rp2pio.EncodeWaitPin(true, 0),                           // 1: wait 1 pin 0
		rp2pio.EncodeJmp(3, rp2pio.JmpXNZeroDec),                // 2: jmp x--, 3
		rp2pio.EncodeMovNot(rp2pio.SrcDestISR, rp2pio.SrcDestX), // 3: mov isr, ~x
		rp2pio.EncodePush(false, false),                         // 4: push noblock
		// .wrap
	}
}

const counterPIOOrigin = -1 // Relocatable

// PIOEdgeCounter counts encoder edges in a PIO state machine so the CPU
// never misses a pulse. It implements core.PulseSource.
type PIOEdgeCounter struct {
	pio    *rp2pio.PIO
	sm     rp2pio.StateMachine
	pin    machine.Pin
	offset uint8
	last   uint32 // Total at the previous TakePulses
}

// NewPIOEdgeCounter creates a counter on the given PIO block (0 or 1)
// and state machine (0-3)
func NewPIOEdgeCounter(pioNum, smNum uint8) *PIOEdgeCounter {
	pioHW := rp2pio.PIO0
	if pioNum != 0 {
		pioHW = rp2pio.PIO1
	}
	return &PIOEdgeCounter{
		pio: pioHW,
		sm:  pioHW.StateMachine(smNum),
	}
}

// Init loads the program and starts counting edges on pin
func (c *PIOEdgeCounter) Init(pin machine.Pin) error {
	c.pin = pin
	c.sm.TryClaim()

	program := buildCounterProgram()
	offset, err := c.pio.AddProgram(program, counterPIOOrigin)
	if err != nil {
		return err
	}
	c.offset = offset

	// PIO reads input levels whatever the pin function is
	c.pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetInPins(c.pin)
	cfg.SetWrap(offset, offset+uint8(len(program))-1)

	c.sm.Init(offset, cfg)
	c.sm.SetX(0xffffffff)
	c.sm.SetEnabled(true)
	return nil
}

// TakePulses drains the RX FIFO and returns the edges counted since the
// previous call. Only the newest total matters; older entries are skipped.
func (c *PIOEdgeCounter) TakePulses() uint32 {
	if c.sm.IsRxFIFOEmpty() {
		return 0
	}
	var total uint32
	for !c.sm.IsRxFIFOEmpty() {
		total = c.sm.RxGet()
	}
	n := total - c.last
	c.last = total
	return n
}
