//go:build !unix

package terminal

import "time"

// inputReady cannot wait on a console handle; only buffered input counts.
func inputReady(int, time.Duration) bool {
	return false
}
