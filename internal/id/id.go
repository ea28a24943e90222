package id

import (
	"strconv"
	"sync"
	"time"
)

var (
	mu   sync.Mutex
	last int64
)

// NewTimeID returns a millisecond-timestamp ID. IDs requested within the same
// millisecond are bumped forward so they stay unique within the process.
func NewTimeID(now time.Time) string {
	mu.Lock()
	defer mu.Unlock()

	ms := now.UnixMilli()
	if ms <= last {
		ms = last + 1
	}
	last = ms
	return strconv.FormatInt(ms, 10)
}
