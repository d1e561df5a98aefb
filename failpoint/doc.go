// Package failpoint
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Named pause-and-count hooks for making concurrent transitions observable
// in tests. A FailPoint is an ordinary value injected into the component
// under test; there is no process-wide registry. Instrumented code calls
// Pause at the hook site; while the fail point is enabled Pause counts an
// entry and blocks until the fail point is disabled. Tests enable it, drive
// the component from another goroutine, wait until the entry counter
// reaches a target, then disable it to let execution continue.
//
// A nil *FailPoint is valid and never pauses, so production wiring simply
// leaves hooks unset.
package failpoint
