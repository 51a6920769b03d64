package sim

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"pidmotor/core"
)

var _ = Describe("Harness", func() {
	var cfg core.Config

	BeforeEach(func() {
		cfg = core.DefaultConfig()
		cfg.EncoderMode = core.EncoderInterrupt
		cfg.Banner = "Speed loop"
	})

	newHarness := func() *Harness {
		h, err := NewHarness(cfg, DefaultPlant)
		Expect(err).NotTo(HaveOccurred())
		return h
	}

	It("should show the banner and idle in neutral", func() {
		h := newHarness()
		Expect(h.Board.Text()).To(Equal("Speed loop"))
		Expect(h.Board.Drive()).To(Equal(0.0))
	})

	It("should run one cycle per second of virtual time", func() {
		h := newHarness()
		samples := h.Run(5 * time.Second)
		Expect(samples).To(HaveLen(5))
		for i, s := range samples {
			Expect(s.Cycle).To(Equal(uint32(i + 1)))
		}
		Expect(h.Now()).To(Equal(5 * time.Second))
	})

	It("should drive forward toward a raised setpoint", func() {
		h := newHarness()
		h.Press(Press{At: 0, Button: ButtonUp})
		samples := h.Run(2 * time.Second)
		Expect(samples).To(HaveLen(2))

		first := samples[0]
		Expect(first.Setpoint).To(Equal(25))
		Expect(first.Pulses).To(BeZero())
		Expect(first.RPM).To(BeZero())
		Expect(first.Output).To(Equal(28))
		Expect(first.Direction).To(Equal(core.DirForward))
		Expect(first.Magnitude).To(Equal(uint32(28)))
		Expect(first.Display).To(Equal(" rpm: 0"))

		second := samples[1]
		Expect(second.MotorRPM).To(BeNumerically(">", 0))
		Expect(second.Pulses).To(BeNumerically(">", 0))
		Expect(second.RPM).To(Equal(second.Pulses * 3))
		Expect(second.Display).To(Equal(core.FormatRPM(second.RPM)))
	})

	It("should reverse for a negative setpoint while measuring unsigned speed", func() {
		h := newHarness()
		h.Press(Press{At: 0, Button: ButtonDown}, Press{At: 0, Button: ButtonDown})
		samples := h.Run(2 * time.Second)
		Expect(samples).To(HaveLen(2))

		Expect(samples[0].Setpoint).To(Equal(-50))
		Expect(samples[0].Output).To(Equal(-57))
		Expect(samples[0].Direction).To(Equal(core.DirReverse))
		Expect(h.Board.Duty()).NotTo(BeZero())

		Expect(samples[1].MotorRPM).To(BeNumerically("<", 0))
		Expect(samples[1].RPM).To(BeNumerically(">", 0))
	})

	It("should clamp the setpoint", func() {
		h := newHarness()
		for i := 0; i < 12; i++ {
			h.Press(Press{At: time.Duration(i) * time.Millisecond, Button: ButtonUp})
		}
		h.Run(20 * time.Millisecond)
		Expect(h.Loop.Setpoint.Value()).To(Equal(255))
	})

	It("should apply presses in time order", func() {
		h := newHarness()
		h.Press(Press{At: 1500 * time.Millisecond, Button: ButtonDown}, Press{At: 0, Button: ButtonUp})
		samples := h.Run(2 * time.Second)
		Expect(samples[0].Setpoint).To(Equal(25))
		Expect(samples[1].Setpoint).To(Equal(0))
	})

	It("should report samples to OnSample", func() {
		h := newHarness()
		var seen []Sample
		h.OnSample = func(s Sample) { seen = append(seen, s) }
		h.Run(3 * time.Second)
		Expect(seen).To(Equal(h.Samples()))
	})

	It("should count the startup level as an edge when polling", func() {
		cfg.EncoderMode = core.EncoderPoll
		h := newHarness()
		samples := h.Run(time.Second)
		Expect(samples).To(HaveLen(1))
		Expect(samples[0].Pulses).To(Equal(uint32(1)))
		Expect(samples[0].RPM).To(Equal(uint32(3)))
	})

	It("should take pulses from the board counter in external mode", func() {
		cfg.EncoderMode = core.EncoderExternal
		h := newHarness()
		h.Press(Press{At: 0, Button: ButtonUp})
		samples := h.Run(2 * time.Second)
		Expect(samples[0].Pulses).To(BeZero())
		Expect(samples[1].Pulses).To(BeNumerically(">", 0))
	})

	It("should see one extra edge in the first polled window", func() {
		run := func(mode core.EncoderMode) []Sample {
			cfg.EncoderMode = mode
			h := newHarness()
			h.Press(Press{At: 0, Button: ButtonUp})
			return h.Run(2 * time.Second)
		}
		polled := run(core.EncoderPoll)
		counted := run(core.EncoderExternal)
		Expect(polled[0].Pulses).To(Equal(counted[0].Pulses + 1))
	})

	It("should reject an invalid configuration", func() {
		cfg.PulsesPerRev = 0
		_, err := NewHarness(cfg, DefaultPlant)
		Expect(err).To(MatchError(core.ErrPulsesPerRev))
	})
})
