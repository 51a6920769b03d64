package sim

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"pidmotor/core"
)

var _ = Describe("Board", func() {
	var (
		cfg   core.Config
		motor *Motor
		board *Board
	)

	BeforeEach(func() {
		cfg = core.DefaultConfig()
		motor = NewMotor(600, 0, cfg.PulsesPerRev)
		board = NewBoard(cfg, motor)
		Expect(board.ConfigureOutput(cfg.ForwardPin)).To(Succeed())
		Expect(board.ConfigureOutput(cfg.ReversePin)).To(Succeed())
		_, err := board.ConfigureHardwarePWM(cfg.PWMPin, 1000)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should map direction lines and duty to drive", func() {
		Expect(board.SetDutyCycle(cfg.PWMPin, 51)).To(Succeed())
		Expect(board.Drive()).To(Equal(0.0))

		Expect(board.SetPin(cfg.ForwardPin, true)).To(Succeed())
		Expect(board.Drive()).To(BeNumerically("~", 0.2, 1e-9))

		Expect(board.SetPin(cfg.ForwardPin, false)).To(Succeed())
		Expect(board.SetPin(cfg.ReversePin, true)).To(Succeed())
		Expect(board.Drive()).To(BeNumerically("~", -0.2, 1e-9))

		// Both lines high brakes
		Expect(board.SetPin(cfg.ForwardPin, true)).To(Succeed())
		Expect(board.Drive()).To(Equal(0.0))
	})

	It("should saturate duty at full scale", func() {
		Expect(board.SetDutyCycle(cfg.PWMPin, 400)).To(Succeed())
		Expect(board.Duty()).To(Equal(core.PWMValue(255)))
	})

	It("should reject unconfigured pins", func() {
		Expect(board.SetPin(30, true)).To(MatchError(ErrPinNotConfigured))
		Expect(board.SetDutyCycle(31, 10)).To(MatchError(ErrPinNotConfigured))
		Expect(board.SetEdgeInterrupt(cfg.UpPin, core.EdgeFalling, func(core.GPIOPin) {})).
			To(MatchError(ErrPinNotConfigured))
	})

	It("should fire falling-edge handlers on a button press", func() {
		Expect(board.ConfigureInputPullUp(cfg.UpPin)).To(Succeed())
		Expect(board.ReadPin(cfg.UpPin)).To(BeTrue())

		var got []core.GPIOPin
		Expect(board.SetEdgeInterrupt(cfg.UpPin, core.EdgeFalling, func(pin core.GPIOPin) {
			got = append(got, pin)
		})).To(Succeed())

		board.Press(cfg.UpPin)
		board.Press(cfg.UpPin)
		Expect(got).To(Equal([]core.GPIOPin{cfg.UpPin, cfg.UpPin}))
		Expect(board.ReadPin(cfg.UpPin)).To(BeTrue())
	})

	It("should count encoder edges and raise rising-edge interrupts", func() {
		Expect(board.ConfigureInputPullUp(cfg.EncoderPin)).To(Succeed())
		interrupts := 0
		Expect(board.SetEdgeInterrupt(cfg.EncoderPin, core.EdgeRising, func(core.GPIOPin) {
			interrupts++
		})).To(Succeed())

		Expect(board.SetPin(cfg.ForwardPin, true)).To(Succeed())
		Expect(board.SetDutyCycle(cfg.PWMPin, 255)).To(Succeed())

		// 600 RPM is 10 rev/s, 200 edges/s
		for i := 0; i < 10000; i++ {
			board.Advance(100 * time.Microsecond)
		}
		pulses := board.TakePulses()
		Expect(pulses).To(BeNumerically("~", 200, 1))
		Expect(interrupts).To(Equal(int(pulses)))
		Expect(board.TakePulses()).To(BeZero())
	})

	It("should act as a display", func() {
		Expect(board.Print("hello")).To(Succeed())
		Expect(board.Clear()).To(Succeed())
		Expect(board.Print(" rpm: 3")).To(Succeed())
		Expect(board.Text()).To(Equal(" rpm: 3"))
		Expect(board.Prints()).To(Equal(2))
	})
})
