package core

// Gains are the fixed PID coefficients
type Gains struct {
	Kp float64
	Ki float64
	Kd float64
}

// DefaultGains are the tuned gains of the speed loop
var DefaultGains = Gains{Kp: 1, Ki: 0.1, Kd: 0.05}

// PIDController holds the state for a PID controller.
//
// It is evaluated once per measurement cycle, so the integral and
// derivative terms are per-cycle sums and differences with no time
// scaling. The integral is unbounded (no anti-windup) and the output is
// not clamped.
type PIDController struct {
	Gains
	integral  float64
	prevError float64
}

// NewPIDController creates and initializes a new PIDController.
func NewPIDController(g Gains) *PIDController {
	return &PIDController{Gains: g}
}

// Update runs one cycle of the control law and returns the output
// truncated toward zero.
func (pid *PIDController) Update(setpoint int, measured uint32) int {
	err := float64(setpoint) - float64(measured)

	pid.integral += err
	derivative := err - pid.prevError
	pid.prevError = err

	output := pid.Kp*err + pid.Ki*pid.integral + pid.Kd*derivative
	return int(output)
}

// Integral returns the accumulated error
func (pid *PIDController) Integral() float64 {
	return pid.integral
}

// PrevError returns the error of the last update
func (pid *PIDController) PrevError() float64 {
	return pid.prevError
}

// Reset clears the controller state. Only used at start-up.
func (pid *PIDController) Reset() {
	pid.integral = 0
	pid.prevError = 0
}
