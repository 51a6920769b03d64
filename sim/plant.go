package sim

import (
	"fmt"
	"strconv"
	"time"

	"pidmotor/config"
)

// Plant describes the simulated motor and the harness step
type Plant struct {
	Gain float64       // Free-running RPM at full drive
	Tau  time.Duration // Mechanical time constant
	Step time.Duration // Virtual time per main-loop iteration
}

// DefaultPlant is a small hobby gear motor polled every 100us
var DefaultPlant = Plant{
	Gain: 600,
	Tau:  200 * time.Millisecond,
	Step: 100 * time.Microsecond,
}

// LoadPlant reads a plant section. Absent keys keep DefaultPlant values.
// Sample config:
//
//	[plant]
//	gain=600      # RPM at full drive
//	tau=200ms     # time constant
//	step=100us    # main-loop period
func LoadPlant(f *config.File, section string) (Plant, error) {
	p := DefaultPlant
	s := f.Section(section)
	if s == nil {
		return p, nil
	}
	if v, err := s.GetArg("gain"); err == nil {
		g, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return p, fmt.Errorf("gain: %v", err)
		}
		p.Gain = g
	}
	for _, d := range []struct {
		key string
		dst *time.Duration
	}{{"tau", &p.Tau}, {"step", &p.Step}} {
		v, err := s.GetArg(d.key)
		if err != nil {
			continue
		}
		if *d.dst, err = time.ParseDuration(v); err != nil {
			return p, fmt.Errorf("%s: %v", d.key, err)
		}
	}
	if p.Step <= 0 {
		return p, fmt.Errorf("step must be positive")
	}
	return p, nil
}
