package util

import (
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
)

// PerfStats provides a snapshot of time and memory allocation at a given point
// in time.
type PerfStats struct {
	// Starting time
	startTime time.Time
	// Starting total memory allocation
	startMem uint64
	// Starting number of gc events
	startGc uint32
}

// NewPerfStats creates a new snapshot of the current amount of memory allocated.
func NewPerfStats() *PerfStats {
	var m runtime.MemStats
	//
	runtime.ReadMemStats(&m)
	//
	return &PerfStats{time.Now(), m.TotalAlloc, m.NumGC}
}

// Elapsed returns the time passed since the snapshot was taken.
func (p *PerfStats) Elapsed() time.Duration {
	return time.Since(p.startTime)
}

// Log logs (at debug level) the difference between the state now and as it was
// when the PerfStats object was created.  Allocation is reported in megabytes.
func (p *PerfStats) Log(phase string) {
	var m runtime.MemStats
	//
	runtime.ReadMemStats(&m)
	//
	var (
		alloc = (m.TotalAlloc - p.startMem) / 1024 / 1024
		gcs   = m.NumGC - p.startGc
	)
	//
	log.Debugf("%s took %0.2fs using %v Mb (%v GC events)", phase, p.Elapsed().Seconds(), alloc, gcs)
}
