//go:build linux

package gzp

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// pinCurrentGoroutine locks the calling goroutine to its current OS
// thread and restricts that thread to a single CPU, so a worker's
// codec doesn't get bounced across cores mid-stream. It must be called
// from the goroutine that will do the encoding/decoding work, before
// any blocking channel operation gives the scheduler a chance to move
// it.
func pinCurrentGoroutine(cpu int) error {
	runtime.LockOSThread()
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}
