package monitor

import (
	"runtime"
	"time"
)

// PlatformTimer abstracts the host timing counters the monitor samples at
// each lifecycle phase. CPU time and allocation counters are cumulative;
// the monitor only ever uses deltas between two samples.
type PlatformTimer interface {
	// Now returns the current wall-clock time.
	Now() time.Time

	// CPUTime returns the process CPU time consumed since an arbitrary
	// fixed origin.
	CPUTime() time.Duration

	// AllocatedBytes returns the cumulative bytes allocated on the heap
	// since process start.
	AllocatedBytes() uint64
}

// systemTimer reads the real host counters.
type systemTimer struct{}

// SystemTimer returns the default PlatformTimer backed by the host process
// counters.
func SystemTimer() PlatformTimer {
	return systemTimer{}
}

func (systemTimer) Now() time.Time {
	return time.Now()
}

func (systemTimer) CPUTime() time.Duration {
	return processCPUTime()
}

func (systemTimer) AllocatedBytes() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.TotalAlloc
}
