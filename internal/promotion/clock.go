// File: internal/promotion/clock.go
package promotion

import "time"

// Clock abstracts wall-clock time so expiry logic can be tested with a
// fixed instant.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }
