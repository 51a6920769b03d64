package core

// Direction of motor drive
type Direction uint8

const (
	DirNeutral Direction = iota // both bridge inputs low
	DirForward
	DirReverse
)

func (d Direction) String() string {
	switch d {
	case DirForward:
		return "forward"
	case DirReverse:
		return "reverse"
	default:
		return "neutral"
	}
}

// Split maps a signed control value onto a drive direction and a PWM
// magnitude. The magnitude is not bounded here.
func Split(v int) (Direction, uint32) {
	switch {
	case v > 0:
		return DirForward, uint32(v)
	case v < 0:
		return DirReverse, uint32(-v)
	default:
		return DirNeutral, 0
	}
}

// Actuator drives an H-bridge through two direction lines and a PWM pin
type Actuator struct {
	ForwardPin GPIOPin
	ReversePin GPIOPin
	PWM        PWMPin

	dir       Direction
	magnitude uint32
}

// Init configures the bridge pins and leaves the motor in neutral
func (a *Actuator) Init(cycleTicks uint32) error {
	gpio := MustGPIO()
	if err := gpio.ConfigureOutput(a.ForwardPin); err != nil {
		return err
	}
	if err := gpio.ConfigureOutput(a.ReversePin); err != nil {
		return err
	}
	if _, err := MustPWM().ConfigureHardwarePWM(a.PWM, cycleTicks); err != nil {
		return err
	}
	return a.Apply(0)
}

// Apply writes a signed control value to the bridge
func (a *Actuator) Apply(v int) error {
	dir, mag := Split(v)
	gpio := MustGPIO()

	// Drop the opposing line before raising the active one
	var err error
	switch dir {
	case DirForward:
		err = firstErr(gpio.SetPin(a.ReversePin, false), gpio.SetPin(a.ForwardPin, true))
	case DirReverse:
		err = firstErr(gpio.SetPin(a.ForwardPin, false), gpio.SetPin(a.ReversePin, true))
	default:
		err = firstErr(gpio.SetPin(a.ForwardPin, false), gpio.SetPin(a.ReversePin, false))
	}
	err = firstErr(err, MustPWM().SetDutyCycle(a.PWM, PWMValue(mag)))

	a.dir = dir
	a.magnitude = mag
	return err
}

// State returns the last applied direction and magnitude
func (a *Actuator) State() (Direction, uint32) {
	return a.dir, a.magnitude
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
