package task

import "time"

// SetNow replaces the clock a CleanupBody computes its cutoff from.
func (b *CleanupBody) SetNow(now func() time.Time) {
	b.now = now
}
