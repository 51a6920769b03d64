package sim

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"pidmotor/core"
)

var _ = Describe("Recorder", func() {
	var (
		dir string
		r   *Recorder
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		r = NewRecorder(filepath.Join(dir, "trace"))
		Expect(r.Init()).To(Succeed())
	})

	AfterEach(func() {
		Expect(r.Close()).To(Succeed())
	})

	count := func(query string, args ...any) int {
		db, err := sql.Open("sqlite3", r.Filename())
		Expect(err).NotTo(HaveOccurred())
		defer db.Close()
		var n int
		Expect(db.QueryRow(query, args...).Scan(&n)).To(Succeed())
		return n
	}

	It("should create the database file", func() {
		Expect(r.Filename()).To(Equal(filepath.Join(dir, "trace.sqlite3")))
		_, err := os.Stat(r.Filename())
		Expect(err).NotTo(HaveOccurred())
		Expect(r.RunID()).NotTo(BeEmpty())
	})

	It("should buffer until flushed", func() {
		Expect(r.Write(Sample{CycleResult: core.CycleResult{Cycle: 1}, Time: time.Second})).To(Succeed())
		Expect(r.Write(Sample{CycleResult: core.CycleResult{Cycle: 2}, Time: 2 * time.Second})).To(Succeed())
		Expect(count(`SELECT COUNT(*) FROM cycle`)).To(Equal(0))

		Expect(r.Flush()).To(Succeed())
		Expect(count(`SELECT COUNT(*) FROM cycle WHERE run_id = ?`, r.RunID())).To(Equal(2))
	})

	It("should store the cycle fields", func() {
		Expect(r.Write(Sample{
			CycleResult: core.CycleResult{
				Cycle: 3, Pulses: 20, RPM: 60, Setpoint: 25, Output: -12,
				Direction: core.DirReverse, Magnitude: 12,
				Err: errors.New("bridge fault"),
			},
			Time:     3 * time.Second,
			MotorRPM: -58.5,
			Display:  " rpm: 60",
		})).To(Succeed())
		Expect(r.Flush()).To(Succeed())

		Expect(count(`SELECT COUNT(*) FROM cycle
			WHERE time_us = 3000000 AND rpm = 60 AND output = -12
			AND direction = 'reverse' AND error = 'bridge fault'`)).To(Equal(1))
	})

	It("should flush a full batch on write", func() {
		r.batchSize = 2
		Expect(r.Write(Sample{CycleResult: core.CycleResult{Cycle: 1}})).To(Succeed())
		Expect(r.Write(Sample{CycleResult: core.CycleResult{Cycle: 2}})).To(Succeed())
		Expect(count(`SELECT COUNT(*) FROM cycle`)).To(Equal(2))
	})

	It("should report a failed batch flush", func() {
		r.batchSize = 1
		Expect(r.DB.Close()).To(Succeed())
		Expect(r.Write(Sample{CycleResult: core.CycleResult{Cycle: 1}})).To(HaveOccurred())
		r.pending = nil
	})

	It("should refuse to overwrite an existing trace", func() {
		other := NewRecorder(filepath.Join(dir, "trace"))
		Expect(other.Init()).To(MatchError(ContainSubstring("already exists")))
	})
})
