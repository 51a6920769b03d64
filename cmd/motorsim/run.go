package main

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pidmotor/config"
	"pidmotor/core"
	"pidmotor/sim"
)

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the loop for a stretch of virtual time.",
		Long: "`run --duration 10s --press up@1s --press down@5s` presses the " +
			"setpoint buttons at the given times and prints every cycle.",
		RunE: runSim,
	}
	runCmd.Flags().String("config", envDefault("MOTORSIM_CONFIG", ""),
		"Sectioned config file; built-in defaults when empty")
	runCmd.Flags().String("section", envDefault("MOTORSIM_SECTION", "motor"),
		"Config section holding the loop settings")
	runCmd.Flags().String("plant", "plant", "Config section holding the motor model")
	runCmd.Flags().String("encoder", "", "Override the encoder mode (poll, interrupt, external)")
	runCmd.Flags().Duration("duration", 10*time.Second, "Virtual time to simulate")
	runCmd.Flags().StringArray("press", nil, "Button press as button@time, e.g. up@1s")
	runCmd.Flags().String("plot", envDefault("MOTORSIM_PLOT", ""), "Write a PNG plot of the run")
	runCmd.Flags().String("trace", envDefault("MOTORSIM_TRACE", ""),
		"Record cycles to <name>.sqlite3; use auto for a generated name")
	runCmd.Flags().Bool("timing", false, "Dump the timing ring after the run")
	return runCmd
}

func runSim(cmd *cobra.Command, args []string) (err error) {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	section, _ := flags.GetString("section")
	plantSection, _ := flags.GetString("plant")
	encoder, _ := flags.GetString("encoder")
	duration, _ := flags.GetDuration("duration")
	pressArgs, _ := flags.GetStringArray("press")
	plotPath, _ := flags.GetString("plot")
	trace, _ := flags.GetString("trace")
	timing, _ := flags.GetBool("timing")

	cfg, plant, err := loadSetup(configPath, section, plantSection)
	if err != nil {
		return err
	}
	if encoder != "" {
		if err := cfg.EncoderMode.UnmarshalText([]byte(encoder)); err != nil {
			return fmt.Errorf("encoder: %w", err)
		}
	}

	presses := make([]sim.Press, 0, len(pressArgs))
	for _, a := range pressArgs {
		p, err := parsePress(a)
		if err != nil {
			return err
		}
		presses = append(presses, p)
	}

	core.SetDebugWriter(func(s string) { log.Print(s) })
	core.SetDebugEnabled(true)
	core.InitAsyncDebug()

	h, err := sim.NewHarness(cfg, plant)
	if err != nil {
		return err
	}
	h.Press(presses...)

	var rec *sim.Recorder
	if trace != "" {
		if trace == "auto" {
			trace = ""
		}
		rec = sim.NewRecorder(trace)
		if err := rec.Init(); err != nil {
			return err
		}
		defer func() {
			if cerr := rec.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("trace: %w", cerr)
			}
		}()
		log.Printf("Recording run %s to %s", rec.RunID(), rec.Filename())
	}

	var writeErr error
	h.OnSample = func(s sim.Sample) {
		fmt.Fprintf(cmd.OutOrStdout(),
			"%8.3fs cycle=%d pulses=%d rpm=%d setpoint=%d output=%d %s/%d motor=%.1f\n",
			s.Time.Seconds(), s.Cycle, s.Pulses, s.RPM, s.Setpoint, s.Output,
			s.Direction, s.Magnitude, s.MotorRPM)
		if rec != nil && writeErr == nil {
			writeErr = rec.Write(s)
		}
	}
	samples := h.Run(duration)
	if writeErr != nil {
		return fmt.Errorf("trace: %w", writeErr)
	}

	if timing {
		core.DumpTimingRing()
	}
	if plotPath != "" {
		if err := sim.SavePlot(samples, plotPath, 800, 400); err != nil {
			return err
		}
		log.Printf("Plot written to %s", plotPath)
	}
	return nil
}

// loadSetup returns the loop and plant settings, from configPath when set
func loadSetup(configPath, section, plantSection string) (core.Config, sim.Plant, error) {
	if configPath == "" {
		return core.DefaultConfig(), sim.DefaultPlant, nil
	}
	f, err := config.ParseFile(configPath)
	if err != nil {
		return core.Config{}, sim.Plant{}, err
	}
	cfg, err := f.Loop(section)
	if err != nil {
		return core.Config{}, sim.Plant{}, err
	}
	plant, err := sim.LoadPlant(f, plantSection)
	if err != nil {
		return core.Config{}, sim.Plant{}, err
	}
	return *cfg, plant, nil
}

// parsePress parses button@time, e.g. up@1.5s
func parsePress(s string) (sim.Press, error) {
	name, at, ok := strings.Cut(s, "@")
	if !ok {
		return sim.Press{}, fmt.Errorf("press %q: want button@time", s)
	}
	var p sim.Press
	switch strings.ToLower(name) {
	case "up", "+":
		p.Button = sim.ButtonUp
	case "down", "-":
		p.Button = sim.ButtonDown
	default:
		return sim.Press{}, fmt.Errorf("press %q: unknown button %q", s, name)
	}
	d, err := time.ParseDuration(at)
	if err != nil {
		return sim.Press{}, fmt.Errorf("press %q: %w", s, err)
	}
	if d < 0 {
		return sim.Press{}, fmt.Errorf("press %q: negative time", s)
	}
	p.At = d
	return p, nil
}
