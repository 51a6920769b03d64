package core

import (
	"context"
	"runtime"
)

// PulseSource is a hardware edge counter polled by the main loop.
// TakePulses returns the edges seen since the previous call.
type PulseSource interface {
	TakePulses() uint32
}

// CycleResult is what one measurement cycle computed and applied
type CycleResult struct {
	Cycle     uint32
	Pulses    uint32
	RPM       uint32
	Setpoint  int
	Output    int
	Direction Direction
	Magnitude uint32
	Err       error // First HAL error of the cycle, if any
}

// Loop is the speed control loop.
//
// Ownership of shared state:
//   - Edges: counted by the encoder feed, zeroed by Cycle
//   - Clock: ticked by the timer interrupt, zeroed by Cycle
//   - Setpoint: written by the button interrupts, read by Cycle
//   - PID, measured speed and output: main loop only
//
// Cycle zeroes the two counters inside a critical section so a tick or
// edge landing between the read and the reset is not lost.
type Loop struct {
	cfg Config

	Edges    *EdgeCounter
	Clock    *TimeBase
	Setpoint *Setpoint
	PID      *PIDController
	Motor    *Actuator

	source     PulseSource
	timeSource func() uint32

	speed  uint32
	output int
	cycles uint32
	panics uint32

	// OnCycle, when set, observes every completed cycle
	OnCycle func(CycleResult)
}

// NewLoop builds a loop from cfg. Hardware is not touched until Init.
func NewLoop(cfg Config) *Loop {
	return &Loop{
		cfg:      cfg,
		Edges:    &EdgeCounter{},
		Clock:    NewTimeBase(cfg.Threshold),
		Setpoint: NewSetpoint(cfg.SetpointStep, cfg.SetpointLimit),
		PID:      NewPIDController(cfg.Gains),
		Motor: &Actuator{
			ForwardPin: cfg.ForwardPin,
			ReversePin: cfg.ReversePin,
			PWM:        cfg.PWMPin,
		},
	}
}

// Config returns the loop configuration
func (l *Loop) Config() Config {
	return l.cfg
}

// SetPulseSource registers the hardware counter used in EncoderExternal mode
func (l *Loop) SetPulseSource(src PulseSource) {
	l.source = src
}

// SetTimeSource registers the function Run uses to refresh system time
func (l *Loop) SetTimeSource(now func() uint32) {
	l.timeSource = now
}

// Init configures the pins, wires the interrupt handlers, puts the motor in
// neutral and shows the banner.
func (l *Loop) Init() error {
	if err := l.cfg.Validate(); err != nil {
		return err
	}
	gpio := MustGPIO()

	if err := l.Motor.Init(TimerFromUS(l.cfg.PWMCycleUS)); err != nil {
		return err
	}

	if err := gpio.ConfigureInputPullUp(l.cfg.UpPin); err != nil {
		return err
	}
	if err := gpio.ConfigureInputPullUp(l.cfg.DownPin); err != nil {
		return err
	}
	// Buttons pull the line low when pressed
	if err := gpio.SetEdgeInterrupt(l.cfg.UpPin, EdgeFalling, l.onUpButton); err != nil {
		return err
	}
	if err := gpio.SetEdgeInterrupt(l.cfg.DownPin, EdgeFalling, l.onDownButton); err != nil {
		return err
	}

	switch l.cfg.EncoderMode {
	case EncoderPoll, EncoderInterrupt:
		if err := gpio.ConfigureInputPullUp(l.cfg.EncoderPin); err != nil {
			return err
		}
		if l.cfg.EncoderMode == EncoderInterrupt {
			if err := gpio.SetEdgeInterrupt(l.cfg.EncoderPin, EdgeRising, l.onEncoderEdge); err != nil {
				return err
			}
		}
	}

	if l.cfg.TickPeriodUS != 0 {
		l.Clock.Start(TimerFromUS(l.cfg.TickPeriodUS))
	}

	if d := Display(); d != nil && l.cfg.Banner != "" {
		if err := d.Print(l.cfg.Banner); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loop) onUpButton(GPIOPin) {
	l.Setpoint.Increase()
}

func (l *Loop) onDownButton(GPIOPin) {
	l.Setpoint.Decrease()
}

func (l *Loop) onEncoderEdge(GPIOPin) {
	l.Edges.OnEdge()
}

// Poll runs one main-loop iteration: feed the encoder and, on a cycle
// boundary, run Cycle. The second result reports whether a cycle ran.
func (l *Loop) Poll() (CycleResult, bool) {
	switch l.cfg.EncoderMode {
	case EncoderPoll:
		l.Edges.Sample(MustGPIO().ReadPin(l.cfg.EncoderPin))
	case EncoderExternal:
		if l.source != nil {
			l.Edges.Add(l.source.TakePulses())
		}
	}

	if !l.Clock.Elapsed() {
		return CycleResult{}, false
	}
	return l.Cycle(), true
}

// Cycle closes the current measurement window, updates the controller
// and applies the new output.
func (l *Loop) Cycle() CycleResult {
	state := disableInterrupts()
	pulses := l.Edges.Take()
	l.Clock.Reset()
	restoreInterrupts(state)

	l.cycles++
	now := GetTime()

	l.speed = RPM(pulses, l.cfg.PulsesPerRev)
	setpoint := l.Setpoint.Value()
	l.output = l.PID.Update(setpoint, l.speed)

	res := CycleResult{
		Cycle:    l.cycles,
		Pulses:   pulses,
		RPM:      l.speed,
		Setpoint: setpoint,
		Output:   l.output,
	}
	RecordTiming(EvtCycle, l.cycles, now, l.speed, pulses)
	RecordTiming(EvtControl, l.cycles, now, uint32(int32(setpoint)), uint32(int32(l.output)))

	res.Err = l.Motor.Apply(l.output)
	res.Direction, res.Magnitude = l.Motor.State()
	RecordTiming(EvtActuate, l.cycles, now, uint32(res.Direction), res.Magnitude)

	if d := Display(); d != nil {
		res.Err = firstErr(res.Err, d.Clear(), d.Print(FormatRPM(l.speed)))
	}

	if res.Err != nil {
		RecordTiming(EvtFault, l.cycles, now, 0, 0)
		DebugAsync("cycle " + utoa(l.cycles) + ": " + res.Err.Error())
	}

	if l.OnCycle != nil {
		l.OnCycle(res)
	}
	return res
}

// Speed returns the RPM measured in the last cycle
func (l *Loop) Speed() uint32 {
	return l.speed
}

// Output returns the control output of the last cycle
func (l *Loop) Output() int {
	return l.output
}

// Cycles returns the number of completed cycles
func (l *Loop) Cycles() uint32 {
	return l.cycles
}

// Panics returns how many main-loop panics were recovered
func (l *Loop) Panics() uint32 {
	return l.panics
}

// Run polls until ctx is done. Each iteration refreshes system time,
// dispatches due timers and polls the loop, then yields so the debug
// output goroutine gets scheduled. A panic in an iteration is recorded
// and the loop continues.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		l.step()
		runtime.Gosched()
	}
}

func (l *Loop) step() {
	defer func() {
		if r := recover(); r != nil {
			l.panics++
			RecordTiming(EvtPanic, l.cycles, GetTime(), l.panics, 0)
		}
	}()

	if l.timeSource != nil {
		SetTime(l.timeSource())
	}
	ProcessTimers()
	l.Poll()
}
