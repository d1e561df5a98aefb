// Package executor
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Service executors decide when and on which thread a unit of server work
// runs. They sit between the session layer ("a session has work ready")
// and the code that handles it ("a thread executes that work").
//
// Two strategies are provided:
//   - Synchronous runs every accepted task inline on the caller.
//   - Fixed owns a fixed-size pool of dedicated worker threads fed from a
//     FIFO queue.
//
// Both follow the same lifecycle (NotStarted, Running, ShuttingDown,
// Shutdown; transitions only move forward) and never fail to the caller of
// Schedule: a task that cannot be accepted is invoked with a rejection
// status instead. Shutdown deadlines are soft; work still running past the
// deadline is never interrupted.
//
// Lifecycle-critical code paths of Fixed are instrumented with fail points
// (see Hooks) so tests can observe start and shutdown races
// deterministically.
package executor
