// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the task event loop used by async-capable
// executors: bounded-time driving, posted and dispatched work, timers on a
// pluggable clock, and deterministic draining at teardown.
//
// A Loop performs no threading of its own. Whichever goroutine calls Run,
// RunFor or Drain drives it, locked to its OS thread for the duration.
package reactor
