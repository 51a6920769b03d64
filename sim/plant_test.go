package sim

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"pidmotor/config"
)

var _ = Describe("LoadPlant", func() {
	parse := func(body string) *config.File {
		path := filepath.Join(GinkgoT().TempDir(), "sim.conf")
		Expect(os.WriteFile(path, []byte(body), 0o644)).To(Succeed())
		f, err := config.ParseFile(path)
		Expect(err).NotTo(HaveOccurred())
		return f
	}

	It("should read the plant section", func() {
		f := parse("[plant]\ngain=300\ntau=50ms\n")
		p, err := LoadPlant(f, "plant")
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Gain).To(Equal(300.0))
		Expect(p.Tau).To(Equal(50 * time.Millisecond))
		Expect(p.Step).To(Equal(DefaultPlant.Step))
	})

	It("should default a missing section", func() {
		f := parse("[motor]\ngains=1,0.1,0.05\n")
		p, err := LoadPlant(f, "plant")
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(DefaultPlant))
	})

	It("should reject bad values", func() {
		f := parse("[plant]\ntau=soon\n")
		_, err := LoadPlant(f, "plant")
		Expect(err).To(HaveOccurred())

		f = parse("[plant]\nstep=0s\n")
		_, err = LoadPlant(f, "plant")
		Expect(err).To(HaveOccurred())
	})
})
