package sim

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Motor", func() {
	It("should start at rest with the encoder high", func() {
		m := NewMotor(600, 200*time.Millisecond, 20)
		Expect(m.RPM()).To(Equal(0.0))
		Expect(m.EncoderLevel()).To(BeTrue())
	})

	It("should approach gain times drive", func() {
		m := NewMotor(600, 100*time.Millisecond, 20)
		for i := 0; i < 1000; i++ {
			m.Step(0.5, time.Millisecond)
		}
		Expect(m.RPM()).To(BeNumerically("~", 300, 0.1))
	})

	It("should lag by the time constant", func() {
		m := NewMotor(600, 100*time.Millisecond, 20)
		for i := 0; i < 100; i++ {
			m.Step(1, time.Millisecond)
		}
		// One time constant reaches about 63%
		Expect(m.RPM()).To(BeNumerically("~", 600*0.63, 10))
	})

	It("should spin backwards on negative drive", func() {
		m := NewMotor(600, 0, 20)
		m.Step(-1, time.Millisecond)
		Expect(m.RPM()).To(Equal(-600.0))
		Expect(m.Revolutions()).To(BeNumerically("<", 0))
	})

	It("should clamp drive to full scale", func() {
		m := NewMotor(600, 0, 20)
		m.Step(3, time.Millisecond)
		Expect(m.RPM()).To(Equal(600.0))
	})

	It("should produce pulsesPerRev rising edges per revolution", func() {
		m := NewMotor(60, 0, 20)
		last := m.EncoderLevel()
		edges := 0
		for i := 0; i < 1000; i++ {
			m.Step(1, time.Millisecond)
			level := m.EncoderLevel()
			if level && !last {
				edges++
			}
			last = level
		}
		Expect(m.Revolutions()).To(BeNumerically("~", 1, 0.001))
		Expect(edges).To(BeNumerically("~", 20, 1))
	})
})
