// Package sim runs the speed control loop against a simulated motor in
// virtual time.
package sim

import (
	"sort"
	"time"

	"pidmotor/core"
)

// Button identifies a setpoint button
type Button uint8

const (
	ButtonUp Button = iota
	ButtonDown
)

func (b Button) String() string {
	if b == ButtonDown {
		return "down"
	}
	return "up"
}

// Press is a button press at a virtual time
type Press struct {
	At     time.Duration
	Button Button
}

// Sample is one completed control cycle as seen from outside the board
type Sample struct {
	core.CycleResult
	Time     time.Duration // Virtual time of the cycle
	MotorRPM float64       // True signed shaft speed
	Display  string
}

// Harness drives a Loop, a Board and a Motor together. The control
// loop uses package-level drivers and timers, so only one Harness may
// run at a time.
type Harness struct {
	Loop  *core.Loop
	Board *Board
	Motor *Motor

	step    time.Duration
	now     time.Duration
	presses []Press
	samples []Sample

	// OnSample, when set, observes every sample as it is produced
	OnSample func(Sample)
}

// NewHarness registers a fresh board as the active drivers and
// initializes a loop for cfg.
func NewHarness(cfg core.Config, plant Plant) (*Harness, error) {
	motor := NewMotor(plant.Gain, plant.Tau, cfg.PulsesPerRev)
	board := NewBoard(cfg, motor)

	core.SetGPIODriver(board)
	core.SetPWMDriver(board)
	core.SetDisplayDriver(board)
	core.ResetTimers()
	core.ClearTimingRing()
	core.SetTime(0)
	core.TimerInit()

	loop := core.NewLoop(cfg)
	if cfg.EncoderMode == core.EncoderExternal {
		loop.SetPulseSource(board)
	}
	if err := loop.Init(); err != nil {
		return nil, err
	}

	h := &Harness{
		Loop:  loop,
		Board: board,
		Motor: motor,
		step:  plant.Step,
	}
	loop.OnCycle = h.record
	return h, nil
}

// Now returns the virtual time
func (h *Harness) Now() time.Duration {
	return h.now
}

// Press schedules button presses
func (h *Harness) Press(p ...Press) {
	h.presses = append(h.presses, p...)
	sort.SliceStable(h.presses, func(i, j int) bool {
		return h.presses[i].At < h.presses[j].At
	})
}

// Run advances virtual time by d and returns the samples produced
func (h *Harness) Run(d time.Duration) []Sample {
	start := len(h.samples)
	end := h.now + d
	for h.now < end {
		h.now += h.step
		h.pressDue()
		h.Board.Advance(h.step)

		core.SetTime(core.TimerFromUS(uint32(h.now.Microseconds())))
		core.ProcessTimers()
		h.Loop.Poll()
	}
	return h.samples[start:]
}

// Samples returns every sample since the harness was created
func (h *Harness) Samples() []Sample {
	return h.samples
}

func (h *Harness) pressDue() {
	cfg := h.Loop.Config()
	for len(h.presses) > 0 && h.presses[0].At <= h.now {
		pin := cfg.UpPin
		if h.presses[0].Button == ButtonDown {
			pin = cfg.DownPin
		}
		h.Board.Press(pin)
		h.presses = h.presses[1:]
	}
}

func (h *Harness) record(res core.CycleResult) {
	s := Sample{
		CycleResult: res,
		Time:        h.now,
		MotorRPM:    h.Motor.RPM(),
		Display:     h.Board.Text(),
	}
	h.samples = append(h.samples, s)
	if h.OnSample != nil {
		h.OnSample(s)
	}
}
