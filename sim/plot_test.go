package sim

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"pidmotor/core"
)

var _ = Describe("Plot", func() {
	samples := []Sample{
		{CycleResult: core.CycleResult{Cycle: 1, Setpoint: 25, Output: 28}, Time: time.Second},
		{CycleResult: core.CycleResult{Cycle: 2, RPM: 57, Setpoint: 25, Output: -10}, Time: 2 * time.Second, MotorRPM: 60},
	}

	It("should render at the requested size", func() {
		img := Plot(samples, 320, 240)
		Expect(img.Bounds().Dx()).To(Equal(320))
		Expect(img.Bounds().Dy()).To(Equal(240))
	})

	It("should render an empty run", func() {
		img := Plot(nil, 100, 100)
		Expect(img.Bounds().Dx()).To(Equal(100))
	})

	It("should save a PNG", func() {
		path := filepath.Join(GinkgoT().TempDir(), "run.png")
		Expect(SavePlot(samples, path, 320, 240)).To(Succeed())
		info, err := os.Stat(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Size()).To(BeNumerically(">", 0))
	})
})
