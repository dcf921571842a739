//go:build !unix

package monitor

import "time"

// processCPUTime is unavailable on this platform; CPU-time deltas read as
// zero and the corresponding event field stays unset.
func processCPUTime() time.Duration {
	return 0
}
