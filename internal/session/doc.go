// Package session
// Author: momentics <momentics@gmail.com>
//
// Transport-side sessions and their registry. A Session is the producer
// half of the readiness contract consumed by executors: the transport
// signals available data, executors register one-shot callbacks.
//
// Sessions are kept in a sharded Manager so that creation and lookup from
// many connections do not contend on a single lock.

package session
