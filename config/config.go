// Package config loads the speed loop configuration.
//
// Two formats are accepted: JSON (LoadConfig), for configuration embedded
// in a firmware image, and sectioned key=value files (ParseFile) for host
// tools. Optional keys that are absent keep the reference board defaults.
package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aamcrae/config"

	"pidmotor/core"
)

// LoadConfig parses a JSON configuration and returns the loop config
func LoadConfig(jsonData []byte) (*core.Config, error) {
	cfg := core.DefaultConfig()

	err := json.Unmarshal(jsonData, &cfg)
	if err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in values that were explicitly zeroed but must be
// positive. A zero TickPeriodUS is kept: ticks then come from a hardware
// interrupt.
func applyDefaults(cfg *core.Config) {
	def := core.DefaultConfig()

	if cfg.Threshold == 0 {
		cfg.Threshold = def.Threshold
	}
	if cfg.SetpointLimit == 0 {
		cfg.SetpointLimit = def.SetpointLimit
	}
	if cfg.PWMCycleUS == 0 {
		cfg.PWMCycleUS = def.PWMCycleUS
	}
	if cfg.Gains == (core.Gains{}) {
		cfg.Gains = def.Gains
	}
}

// File is a parsed sectioned configuration file
type File struct {
	conf *config.Config
}

// ParseFile reads a sectioned configuration file
func ParseFile(path string) (*File, error) {
	conf, err := config.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return &File{conf: conf}, nil
}

// Section returns a raw section, or nil if it is absent
func (f *File) Section(name string) *config.Section {
	return f.conf.GetSection(name)
}

// Loop reads the loop configuration from a section. The gains and pins
// lines are required, everything else falls back to the defaults.
// Sample config:
//
//	[motor]
//	gains=1,0.1,0.05       # Kp, Ki, Kd
//	pins=2,3,4,6,7,8       # encoder, up, down, forward, reverse, pwm
//	pulses_per_rev=20      # encoder slots per revolution
//	clock=1000000          # timer input clock in Hz
//	prescaler=8            # timer prescaler
//	bits=8                 # timer width, with clock and prescaler derives threshold and tick
//	threshold=488          # overrides the derived threshold
//	tick=2048us            # overrides the derived tick period
//	step=25                # setpoint button step
//	limit=255              # setpoint range
//	encoder=poll           # poll, interrupt or external
//	pwm_period=1ms
//	banner=Speed loop
func (f *File) Loop(section string) (*core.Config, error) {
	s := f.conf.GetSection(section)
	if s == nil {
		return nil, fmt.Errorf("no config for %s", section)
	}
	cfg := core.DefaultConfig()

	var g core.Gains
	n, err := s.Parse("gains", "%f,%f,%f", &g.Kp, &g.Ki, &g.Kd)
	if err != nil {
		return nil, fmt.Errorf("gains: %v", err)
	}
	if n != 3 {
		return nil, fmt.Errorf("gains: argument count")
	}
	cfg.Gains = g

	var enc, up, down, fwd, rev, pwm int
	n, err = s.Parse("pins", "%d,%d,%d,%d,%d,%d", &enc, &up, &down, &fwd, &rev, &pwm)
	if err != nil {
		return nil, fmt.Errorf("pins: %v", err)
	}
	if n != 6 {
		return nil, fmt.Errorf("pins: argument count")
	}
	cfg.EncoderPin = core.GPIOPin(enc)
	cfg.UpPin = core.GPIOPin(up)
	cfg.DownPin = core.GPIOPin(down)
	cfg.ForwardPin = core.GPIOPin(fwd)
	cfg.ReversePin = core.GPIOPin(rev)
	cfg.PWMPin = core.PWMPin(pwm)

	if err := uintArg(s, "pulses_per_rev", &cfg.PulsesPerRev); err != nil {
		return nil, err
	}

	timer := [3]uint32{1000000, 8, 8}
	_, hasClock := arg(s, "clock")
	for i, key := range []string{"clock", "prescaler", "bits"} {
		if err := uintArg(s, key, &timer[i]); err != nil {
			return nil, err
		}
	}
	if hasClock {
		cfg.Threshold = core.TicksPerSecond(timer[0], timer[1], uint8(timer[2]))
		cfg.TickPeriodUS = core.OverflowPeriodUS(timer[0], timer[1], uint8(timer[2]))
	}

	if err := uintArg(s, "threshold", &cfg.Threshold); err != nil {
		return nil, err
	}
	if err := durationArg(s, "tick", &cfg.TickPeriodUS); err != nil {
		return nil, err
	}
	if err := intArg(s, "step", &cfg.SetpointStep); err != nil {
		return nil, err
	}
	if err := intArg(s, "limit", &cfg.SetpointLimit); err != nil {
		return nil, err
	}
	if v, ok := arg(s, "encoder"); ok {
		if err := cfg.EncoderMode.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("encoder: %w", err)
		}
	}
	if err := durationArg(s, "pwm_period", &cfg.PWMCycleUS); err != nil {
		return nil, err
	}
	if v, ok := arg(s, "banner"); ok {
		cfg.Banner = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", section, err)
	}
	return &cfg, nil
}

func uintArg(s *config.Section, key string, dst *uint32) error {
	v, ok := arg(s, key)
	if !ok {
		return nil
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return fmt.Errorf("%s: %v", key, err)
	}
	*dst = uint32(n)
	return nil
}

func intArg(s *config.Section, key string, dst *int) error {
	v, ok := arg(s, key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %v", key, err)
	}
	*dst = n
	return nil
}

// durationArg stores a duration key in microseconds
func durationArg(s *config.Section, key string, dst *uint32) error {
	v, ok := arg(s, key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %v", key, err)
	}
	*dst = uint32(d.Microseconds())
	return nil
}

// arg returns the trimmed value of key and whether it is present
func arg(s *config.Section, key string) (string, bool) {
	v, err := s.GetArg(key)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(v), true
}
