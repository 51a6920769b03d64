package core

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// Edge selects which pin transition raises an interrupt
type Edge uint8

const (
	EdgeRising Edge = iota
	EdgeFalling
)

// EdgeHandler is invoked from interrupt context when a configured edge arrives
type EdgeHandler func(pin GPIOPin)

// GPIODriver is the abstract GPIO interface that core code uses.
// Platform-specific implementations handle actual hardware control.
type GPIODriver interface {
	// ConfigureOutput configures a pin as a digital output
	ConfigureOutput(pin GPIOPin) error

	// ConfigureInputPullUp configures a pin as a digital input with pull-up resistor
	ConfigureInputPullUp(pin GPIOPin) error

	// SetPin sets the pin to high (true) or low (false)
	SetPin(pin GPIOPin, value bool) error

	// ReadPin samples the current pin level
	ReadPin(pin GPIOPin) bool

	// SetEdgeInterrupt registers handler to run in interrupt context on
	// each transition of an input pin matching edge
	SetEdgeInterrupt(pin GPIOPin, edge Edge, handler EdgeHandler) error
}

// Global singleton used by core code.
var gpioDriver GPIODriver

// SetGPIODriver is called by target-specific code to register its driver.
func SetGPIODriver(d GPIODriver) {
	gpioDriver = d
}

// MustGPIO returns the configured driver or panics if missing.
func MustGPIO() GPIODriver {
	if gpioDriver == nil {
		panic("GPIO driver not configured")
	}
	return gpioDriver
}
