//go:build !linux && !windows

// hioload-exec/internal/concurrency/pin_other.go
// Author: momentics <momentics@gmail.com>

package concurrency

// PinCurrentThread is unsupported on this platform.
func PinCurrentThread(cpuID int) error {
	return ErrAffinityNotSupported
}
