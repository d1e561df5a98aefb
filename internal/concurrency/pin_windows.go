//go:build windows

// File: internal/concurrency/pin_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Windows CPU pinning through SetThreadAffinityMask.

package concurrency

import (
	"runtime"

	"golang.org/x/sys/windows"
)

var (
	modkernel32               = windows.NewLazySystemDLL("kernel32.dll")
	procSetThreadAffinityMask = modkernel32.NewProc("SetThreadAffinityMask")
)

// PinCurrentThread binds the calling OS thread to cpuID modulo the number of
// CPUs. The caller must have locked its goroutine to the thread.
func PinCurrentThread(cpuID int) error {
	mask := uintptr(1) << uint(cpuID%runtime.NumCPU())
	r, _, err := procSetThreadAffinityMask.Call(uintptr(windows.CurrentThread()), mask)
	if r == 0 {
		return err
	}
	return nil
}
